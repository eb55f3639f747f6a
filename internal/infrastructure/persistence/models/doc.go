// Package models contains GORM persistence models for the SQL backends.
// Models are kept apart from domain entities so the domain stays free of
// ORM tags. Each model has ToDomain and FromDomain mappers, and the
// repositories in the parent package only ever touch models.
//
// Tables:
//   - products     (catalog.Product)
//   - users        (identity.User)
//   - orders       (trade.Order)
//   - order_items  (trade.OrderItem, one row per line, ordered by line_no)
package models
