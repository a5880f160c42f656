// Package notification mails customers when their orders change.
package notification

import (
	"context"

	"github.com/example/ec-fulfillment/internal/domain/account"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/email"
	"github.com/example/ec-fulfillment/internal/infrastructure/eventbus"
	"github.com/example/ec-fulfillment/internal/logger"
	"github.com/shopspring/decimal"
)

// Mailer is satisfied by *email.Service.
type Mailer interface {
	SendOrderConfirmation(to, orderID string, total decimal.Decimal, items []email.OrderItem) error
	SendPaymentReceived(to, orderID string, amount decimal.Decimal, method string) error
	SendOrderShipped(to, orderID, trackingNumber string) error
}

// Handler processes events for sending notifications
type Handler struct {
	mailer   Mailer
	orders   order.Repository
	accounts account.Repository
	log      *logger.Logger
}

func NewHandler(mailer Mailer, orders order.Repository, accounts account.Repository, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		mailer:   mailer,
		orders:   orders,
		accounts: accounts,
		log:      log.With("component", "notifier"),
	}
}

// HandleEvent processes one envelope from Kafka or watermill. Events that
// need no mail are ignored. Missing accounts or orders are logged and skipped
// so a redelivery cannot succeed where this attempt failed.
func (h *Handler) HandleEvent(ctx context.Context, _, value []byte) error {
	env, err := eventbus.DecodeEnvelope(value)
	if err != nil {
		h.log.Error("decode event", "error", err)
		return err
	}

	switch env.EventType {
	case order.EventOrderPlaced:
		return h.handleOrderPlaced(ctx, env)
	case order.EventOrderPaid:
		return h.handleOrderPaid(ctx, env)
	case order.EventOrderShipped:
		return h.handleOrderShipped(ctx, env)
	}
	return nil
}

func (h *Handler) handleOrderPlaced(ctx context.Context, env eventbus.Envelope) error {
	var e order.OrderPlaced
	if err := env.Decode(&e); err != nil {
		h.log.Error("decode payload", "event_type", env.EventType, "error", err)
		return err
	}

	to, ok, err := h.recipient(ctx, e.AccountID)
	if err != nil || !ok {
		return err
	}

	items := make([]email.OrderItem, len(e.Items))
	for i, item := range e.Items {
		items[i] = email.OrderItem{
			ProductID: string(item.ProductID),
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	if err := h.mailer.SendOrderConfirmation(to, string(e.OrderID), e.TotalAmount, items); err != nil {
		h.log.Error("send order confirmation", "order_id", e.OrderID, "error", err)
		return err
	}
	h.log.Info("order confirmation sent", "order_id", e.OrderID, "to", to)
	return nil
}

func (h *Handler) handleOrderPaid(ctx context.Context, env eventbus.Envelope) error {
	var e order.OrderPaid
	if err := env.Decode(&e); err != nil {
		h.log.Error("decode payload", "event_type", env.EventType, "error", err)
		return err
	}

	to, ok, err := h.orderRecipient(ctx, e.OrderID)
	if err != nil || !ok {
		return err
	}

	if err := h.mailer.SendPaymentReceived(to, string(e.OrderID), e.Amount, e.PaymentMethod); err != nil {
		h.log.Error("send payment receipt", "order_id", e.OrderID, "error", err)
		return err
	}
	h.log.Info("payment receipt sent", "order_id", e.OrderID, "to", to)
	return nil
}

func (h *Handler) handleOrderShipped(ctx context.Context, env eventbus.Envelope) error {
	var e order.OrderShipped
	if err := env.Decode(&e); err != nil {
		h.log.Error("decode payload", "event_type", env.EventType, "error", err)
		return err
	}

	to, ok, err := h.orderRecipient(ctx, e.OrderID)
	if err != nil || !ok {
		return err
	}

	if err := h.mailer.SendOrderShipped(to, string(e.OrderID), e.TrackingNumber); err != nil {
		h.log.Error("send shipping notice", "order_id", e.OrderID, "error", err)
		return err
	}
	h.log.Info("shipping notice sent", "order_id", e.OrderID, "to", to)
	return nil
}

// orderRecipient resolves the owner of an order to a mail address.
func (h *Handler) orderRecipient(ctx context.Context, id shared.OrderID) (string, bool, error) {
	o, ok, err := h.orders.FindByID(ctx, id)
	if err != nil {
		h.log.Error("load order", "order_id", id, "error", err)
		return "", false, err
	}
	if !ok {
		h.log.Warn("order not found", "order_id", id)
		return "", false, nil
	}
	return h.recipient(ctx, o.AccountID())
}

func (h *Handler) recipient(ctx context.Context, id shared.AccountID) (string, bool, error) {
	a, ok, err := h.accounts.FindByID(ctx, id)
	if err != nil {
		h.log.Error("load account", "account_id", id, "error", err)
		return "", false, err
	}
	if !ok {
		h.log.Warn("account not found", "account_id", id)
		return "", false, nil
	}
	return a.Email().String(), true, nil
}
