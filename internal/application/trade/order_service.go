package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// DefaultCaptureTTL is how long a processed PayPal capture id is remembered
const DefaultCaptureTTL = 30 * 24 * time.Hour

const captureKeyPrefix = "paypal:capture:"

var (
	ErrPaymentAlreadyProcessed = shared.NewDomainError("PAYMENT_ALREADY_PROCESSED", "This payment capture has already been processed")
	ErrPaymentNotVerified      = shared.NewDomainError("PAYMENT_NOT_VERIFIED", "Payment could not be verified with PayPal")
	ErrDeliverForbidden        = shared.NewDomainError("FORBIDDEN", "Only admins can mark orders as delivered")
	ErrOrderForbidden          = shared.NewDomainError("FORBIDDEN", "You do not have access to this order")
)

// Caller identifies the authenticated user making a request
type Caller struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// CanAccess reports whether the caller owns the order or is an admin
func (c Caller) CanAccess(order *trade.Order) bool {
	return c.IsAdmin || order.IsOwnedBy(c.UserID)
}

// CaptureVerifier confirms a PayPal capture against the PayPal Orders API
type CaptureVerifier interface {
	VerifyCapture(ctx context.Context, paypalOrderID string, expected decimal.Decimal) (*payment.CaptureVerification, error)
}

// PaymentRejectionRecorder counts captures that failed verification
type PaymentRejectionRecorder interface {
	RecordPaymentRejected(ctx context.Context, reason string)
}

// OrderService handles checkout, payment and delivery of orders
type OrderService struct {
	orderRepo   trade.OrderRepository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	idempotency shared.IdempotencyStore
	publisher   shared.EventPublisher
	pricing     trade.PricingPolicy
	display     *DisplayPricer
	verifier    CaptureVerifier
	rejections  PaymentRejectionRecorder
	captureTTL  time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

// OrderServiceOption configures an OrderService
type OrderServiceOption func(*OrderService)

// WithDisplayPricer adds a display block to every order response
func WithDisplayPricer(p *DisplayPricer) OrderServiceOption {
	return func(s *OrderService) { s.display = p }
}

// WithCaptureVerifier verifies captures with PayPal before marking orders paid.
// Without a verifier the client-reported capture is trusted.
func WithCaptureVerifier(v CaptureVerifier) OrderServiceOption {
	return func(s *OrderService) { s.verifier = v }
}

// WithPaymentRejectionRecorder reports verification failures to metrics
func WithPaymentRejectionRecorder(r PaymentRejectionRecorder) OrderServiceOption {
	return func(s *OrderService) { s.rejections = r }
}

// WithPricingPolicy overrides trade.DefaultPricingPolicy
func WithPricingPolicy(p trade.PricingPolicy) OrderServiceOption {
	return func(s *OrderService) { s.pricing = p }
}

// WithCaptureTTL overrides DefaultCaptureTTL
func WithCaptureTTL(ttl time.Duration) OrderServiceOption {
	return func(s *OrderService) { s.captureTTL = ttl }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *OrderService) { s.now = now }
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo trade.OrderRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	idempotency shared.IdempotencyStore,
	publisher shared.EventPublisher,
	zapLogger *zap.Logger,
	opts ...OrderServiceOption,
) *OrderService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	s := &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		idempotency: idempotency,
		publisher:   publisher,
		pricing:     trade.DefaultPricingPolicy(),
		captureTTL:  DefaultCaptureTTL,
		now:         time.Now,
		logger:      zapLogger.Named("order_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create places an order for the caller. Names, images and prices are
// taken from the catalog, never from the request.
func (s *OrderService) Create(ctx context.Context, caller Caller, req CreateOrderRequest) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "OrderService", "Create",
		attribute.Int("order.lines", len(req.OrderItems)))
	defer func() { telemetry.EndSpan(span, err) }()

	if len(req.OrderItems) == 0 {
		return nil, trade.ErrNoOrderItems
	}

	ids := make([]uuid.UUID, 0, len(req.OrderItems))
	requested := make(map[uuid.UUID]int, len(req.OrderItems))
	for _, line := range req.OrderItems {
		if line.Qty < 1 || line.Qty > trade.MaxItemQty {
			return nil, trade.ErrInvalidQuantity
		}
		merged, seen := requested[line.Product]
		if !seen {
			ids = append(ids, line.Product)
		}
		// both operands are capped so the sum cannot overflow
		if merged+line.Qty > trade.MaxItemQty {
			return nil, trade.ErrInvalidQuantity
		}
		requested[line.Product] = merged + line.Qty
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]trade.OrderItem, 0, len(req.OrderItems))
	for _, line := range req.OrderItems {
		product, ok := byID[line.Product]
		if !ok {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %s not found", line.Product))
		}
		if !product.HasStock(requested[line.Product]) {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
				fmt.Sprintf("Only %d of %s in stock", product.CountInStock, product.Name))
		}
		item, err := trade.NewOrderItem(product.ID, product.Name, product.Image, line.Qty, product.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	address, err := valueobject.NewShippingAddress(
		req.ShippingAddress.Address,
		req.ShippingAddress.City,
		req.ShippingAddress.PostalCode,
		req.ShippingAddress.Country,
	)
	if err != nil {
		return nil, err
	}

	order, err := trade.NewOrder(caller.UserID, items, address, req.PaymentMethod, s.pricing)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, order)

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", caller.UserID.String()),
		zap.String("total_price", order.TotalPrice.StringFixed(2)))

	return s.respond(ctx, order)
}

// Get returns an order to its owner or an admin
func (s *OrderService) Get(ctx context.Context, caller Caller, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order) {
		return nil, ErrOrderForbidden
	}
	return s.respond(ctx, order)
}

// ListMine returns the caller's orders, newest first
func (s *OrderService) ListMine(ctx context.Context, caller Caller) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByUser(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.respondMany(ctx, orders)
}

// List returns all orders, paginated. Admin only.
func (s *OrderService) List(ctx context.Context, caller Caller, query ListOrdersQuery) (*OrderListResponse, error) {
	if !caller.IsAdmin {
		return nil, shared.ErrForbidden
	}

	filter := shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
		Filters:  map[string]interface{}{},
	}.Normalize(100)
	if query.IsPaid != nil {
		filter.Filters["is_paid"] = *query.IsPaid
	}
	if query.IsDelivered != nil {
		filter.Filters["is_delivered"] = *query.IsDelivered
	}

	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses, err := s.respondMany(ctx, orders)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &OrderListResponse{
		Orders:   page.Items,
		Page:     page.Page,
		Pages:    page.TotalPages,
		PageSize: page.PageSize,
		Total:    page.Total,
	}, nil
}

// Pay records a PayPal capture on the order. The capture id is claimed in
// the idempotency store first; it is released again if anything after
// that fails, so the shopper can retry.
func (s *OrderService) Pay(ctx context.Context, caller Caller, id uuid.UUID, req PayOrderRequest) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "OrderService", "Pay",
		attribute.String("order.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order) {
		return nil, ErrOrderForbidden
	}
	if order.IsPaid {
		return nil, trade.ErrOrderAlreadyPaid
	}

	key := captureKeyPrefix + req.ID
	isNew, err := s.idempotency.MarkProcessed(ctx, key, s.captureTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment capture: %w", err)
	}
	if !isNew {
		s.logger.Warn("Duplicate payment capture",
			zap.String("order_id", id.String()),
			zap.String("capture_id", req.ID))
		return nil, ErrPaymentAlreadyProcessed
	}
	defer func() {
		// a capture already stored on another order stays claimed
		if err == nil || errors.Is(err, ErrPaymentAlreadyProcessed) {
			return
		}
		if releaseErr := s.idempotency.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
			s.logger.Error("Failed to release payment capture", zap.String("capture_id", req.ID), zap.Error(releaseErr))
		}
	}()

	result := trade.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.Payer.EmailAddress,
	}

	if s.verifier != nil {
		verification, verr := s.verifier.VerifyCapture(ctx, req.ID, order.TotalPrice)
		if verr != nil {
			reason := rejectionReason(verr)
			if s.rejections != nil {
				s.rejections.RecordPaymentRejected(ctx, reason)
			}
			s.logger.Warn("Payment verification failed",
				zap.String("order_id", id.String()),
				zap.String("capture_id", req.ID),
				zap.String("reason", reason),
				zap.Error(verr))
			return nil, ErrPaymentNotVerified
		}
		result.Status = verification.Status
		if verification.UpdateTime != "" {
			result.UpdateTime = verification.UpdateTime
		}
		if verification.PayerEmail != "" {
			result.EmailAddress = verification.PayerEmail
		}
	}

	if err := order.MarkPaid(result, s.now()); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			s.logger.Warn("Payment capture already settles another order",
				zap.String("order_id", id.String()),
				zap.String("capture_id", req.ID))
			return nil, ErrPaymentAlreadyProcessed
		}
		return nil, err
	}
	s.publish(ctx, order)

	s.logger.Info("Order paid",
		zap.String("order_id", id.String()),
		zap.String("capture_id", req.ID),
		zap.Bool("verified", s.verifier != nil))

	return s.respond(ctx, order)
}

// Deliver marks a paid order as delivered. Admin only.
func (s *OrderService) Deliver(ctx context.Context, caller Caller, id uuid.UUID) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "OrderService", "Deliver",
		attribute.String("order.id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if !caller.IsAdmin {
		s.logger.Warn("Non-admin attempted to deliver order",
			zap.String("order_id", id.String()),
			zap.String("user_id", caller.UserID.String()))
		return nil, ErrDeliverForbidden
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.MarkDelivered(s.now()); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}
	s.publish(ctx, order)

	s.logger.Info("Order delivered", zap.String("order_id", id.String()))
	return s.respond(ctx, order)
}

func (s *OrderService) respond(ctx context.Context, order *trade.Order) (*OrderResponse, error) {
	user, err := s.userRepo.FindByID(ctx, order.UserID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	resp := s.toResponse(order, user)
	return &resp, nil
}

func (s *OrderService) respondMany(ctx context.Context, orders []trade.Order) ([]OrderResponse, error) {
	responses := make([]OrderResponse, len(orders))
	if len(orders) == 0 {
		return responses, nil
	}

	seen := make(map[uuid.UUID]struct{})
	userIDs := make([]uuid.UUID, 0)
	for i := range orders {
		if _, ok := seen[orders[i].UserID]; !ok {
			seen[orders[i].UserID] = struct{}{}
			userIDs = append(userIDs, orders[i].UserID)
		}
	}
	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*identity.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	for i := range orders {
		responses[i] = s.toResponse(&orders[i], byID[orders[i].UserID])
	}
	return responses, nil
}

func (s *OrderService) toResponse(order *trade.Order, user *identity.User) OrderResponse {
	resp := ToOrderResponse(order, user)
	if s.display != nil {
		resp.Display = s.display.Price(order)
	}
	return resp
}

func (s *OrderService) publish(ctx context.Context, order *trade.Order) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, payment.ErrCaptureNotCompleted):
		return "not_completed"
	case errors.Is(err, payment.ErrAmountMismatch):
		return "amount_mismatch"
	case errors.Is(err, payment.ErrPayPalOrderNotFound):
		return "not_found"
	case errors.Is(err, payment.ErrGatewayUnavailable):
		return "gateway_unavailable"
	default:
		return "gateway_error"
	}
}
