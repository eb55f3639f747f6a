package telemetry

import (
	"context"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// StorefrontMetrics records order and payment activity. It subscribes to
// the order events on the event bus; rejected payments are reported by
// the order service directly.
type StorefrontMetrics struct {
	currency string
	logger   *zap.Logger

	ordersCreated   *Counter
	ordersPaid      *Counter
	ordersDelivered *Counter
	revenue         *FloatCounter
	orderValue      *Histogram
	paymentRejected *Counter
}

// NewStorefrontMetrics registers the storefront instruments on meter.
// currency labels the revenue counter.
func NewStorefrontMetrics(meter metric.Meter, currency string, logger *zap.Logger) (*StorefrontMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &StorefrontMetrics{currency: currency, logger: logger}

	var err error
	if m.ordersCreated, err = NewCounter(meter, "storefront_orders_created_total", "Orders placed", "{orders}"); err != nil {
		return nil, err
	}
	if m.ordersPaid, err = NewCounter(meter, "storefront_orders_paid_total", "Orders paid", "{orders}"); err != nil {
		return nil, err
	}
	if m.ordersDelivered, err = NewCounter(meter, "storefront_orders_delivered_total", "Orders marked delivered", "{orders}"); err != nil {
		return nil, err
	}
	if m.revenue, err = NewFloatCounter(meter, "storefront_revenue_total", "Captured revenue", "{"+currency+"}"); err != nil {
		return nil, err
	}
	if m.orderValue, err = NewHistogram(meter, "storefront_order_value", "Total price of placed orders", "{"+currency+"}", OrderValueBuckets); err != nil {
		return nil, err
	}
	if m.paymentRejected, err = NewCounter(meter, "storefront_payments_rejected_total", "Payment captures that failed verification", "{payments}"); err != nil {
		return nil, err
	}
	return m, nil
}

// EventTypes implements shared.EventHandler
func (m *StorefrontMetrics) EventTypes() []string {
	return []string{trade.EventTypeOrderCreated, trade.EventTypeOrderPaid, trade.EventTypeOrderDelivered}
}

// Handle implements shared.EventHandler
func (m *StorefrontMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.OrderCreatedEvent:
		method := AttrPaymentMethod.String(e.PaymentMethod)
		m.ordersCreated.Inc(ctx, method)
		m.orderValue.Record(ctx, e.TotalPrice.InexactFloat64(), method)
	case *trade.OrderPaidEvent:
		method := AttrPaymentMethod.String(e.PaymentMethod)
		m.ordersPaid.Inc(ctx, method)
		m.revenue.Add(ctx, e.TotalPrice.InexactFloat64(), method, AttrCurrency.String(m.currency))
	case *trade.OrderDeliveredEvent:
		m.ordersDelivered.Inc(ctx)
	default:
		m.logger.Debug("Unexpected event type for metrics", zap.String("event_type", event.EventType()))
	}
	return nil
}

// RecordPaymentRejected counts a capture that could not be verified
func (m *StorefrontMetrics) RecordPaymentRejected(ctx context.Context, reason string) {
	m.paymentRejected.Inc(ctx, AttrReason.String(reason))
}

var _ shared.EventHandler = (*StorefrontMetrics)(nil)
