package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/storefront/backend/internal/application/identity"
)

// UserHandler handles profile and admin user management endpoints
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile godoc
// @Summary      Get the caller's profile
// @Tags         users
// @Produce      json
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Security     BearerAuth
// @Router       /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateProfile godoc
// @Summary      Update the caller's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body identityapp.UpdateProfileRequest true "Changes"
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req identityapp.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// List godoc
// @Summary      List user accounts
// @Tags         users
// @Produce      json
// @Param        search    query string false "Username or email filter"
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} dto.Response{data=identityapp.UserListResponse}
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var query identityapp.ListUsersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.userService.ListUsers(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result, result.Total, result.Page, result.PageSize)
}

// SetAdmin godoc
// @Summary      Grant or revoke admin rights
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id      path string                       true "User ID"
// @Param        request body identityapp.SetAdminRequest  true "Admin flag"
// @Success      200 {object} dto.Response{data=identityapp.UserResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id}/admin [put]
func (h *UserHandler) SetAdmin(c *gin.Context) {
	actorID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req identityapp.SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.userService.SetAdmin(c.Request.Context(), actorID, id, *req.IsAdmin)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Delete godoc
// @Summary      Delete a customer account
// @Description  Admin accounts cannot be deleted
// @Tags         users
// @Param        id path string true "User ID"
// @Success      204
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
