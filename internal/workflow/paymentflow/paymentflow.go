// Package paymentflow drives a payment through its lifecycle and keeps the
// order it pays for in step.
package paymentflow

import (
	"context"
	"errors"

	"github.com/example/ec-fulfillment/internal/apperr"
	"github.com/example/ec-fulfillment/internal/domain/factory"
	"github.com/example/ec-fulfillment/internal/domain/order"
	"github.com/example/ec-fulfillment/internal/domain/payment"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/example/ec-fulfillment/internal/workflow"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotPayable   = errors.New("order is not awaiting payment")
	ErrPaymentInProgress = errors.New("order already has an active payment")
)

type Deps struct {
	Payments payment.Repository
	Orders   order.Repository
	Factory  *factory.Factory
}

func loadPayment(ctx context.Context, repo payment.Repository, id shared.PaymentID) (payment.Payment, error) {
	p, ok, err := repo.FindByID(ctx, id)
	return workflow.Found(p, ok, err, payment.ErrPaymentNotFound)
}

func loadOrder(ctx context.Context, repo order.Repository, id shared.OrderID) (order.Order, error) {
	o, ok, err := repo.FindByID(ctx, id)
	return workflow.Found(o, ok, err, order.ErrOrderNotFound)
}

// active reports whether p still holds or may still take the customer's
// money.
func active(p payment.Payment) bool {
	switch p.Status() {
	case payment.StatusFailed, payment.StatusCancelled, payment.StatusRefunded:
		return false
	}
	return true
}

// =============================================================================
// InitiatePayment
// =============================================================================

type InitiateInput struct {
	Actor   workflow.Actor
	OrderID shared.OrderID
	Method  string
}

type initiateFound struct {
	in       InitiateInput
	order    order.Order
	existing []payment.Payment
}

type initiateValidated struct {
	in    InitiateInput
	order order.Order
}

type InitiatePayment struct {
	deps Deps
	run  workflow.Step[InitiateInput, workflow.Result[payment.Payment]]
}

func NewInitiatePayment(d Deps) *InitiatePayment {
	w := &InitiatePayment{deps: d}
	w.run = workflow.Chain4(w.find, w.validate, w.mutate, w.persist)
	return w
}

// Execute opens a payment for the order's full amount.
func (w *InitiatePayment) Execute(ctx context.Context, in InitiateInput) (workflow.Result[payment.Payment], error) {
	return w.run(ctx, in)
}

func (w *InitiatePayment) find(ctx context.Context, in InitiateInput) (initiateFound, error) {
	o, err := loadOrder(ctx, w.deps.Orders, in.OrderID)
	if err != nil {
		return initiateFound{}, err
	}
	existing, err := w.deps.Payments.FindByOrder(ctx, o.ID())
	if err != nil {
		return initiateFound{}, err
	}
	return initiateFound{in: in, order: o, existing: existing}, nil
}

func (w *InitiatePayment) validate(_ context.Context, f initiateFound) (initiateValidated, error) {
	if err := workflow.Authorize(f.in.Actor, f.order); err != nil {
		return initiateValidated{}, err
	}
	if f.order.Status() != order.StatusCreated {
		return initiateValidated{}, workflow.Rule(ErrOrderNotPayable)
	}
	for _, p := range f.existing {
		if active(p) {
			return initiateValidated{}, apperr.Conflict(ErrPaymentInProgress)
		}
	}
	return initiateValidated{in: f.in, order: f.order}, nil
}

func (w *InitiatePayment) mutate(_ context.Context, v initiateValidated) (payment.Payment, error) {
	p, err := w.deps.Factory.NewPayment(v.order.ID(), v.order.AccountID(), v.order.TotalAmount(), v.in.Method)
	return p, workflow.Rule(err)
}

func (w *InitiatePayment) persist(ctx context.Context, p payment.Payment) (workflow.Result[payment.Payment], error) {
	return workflow.Persist(ctx, w.deps.Payments.Save, p)
}

// =============================================================================
// Single-payment transitions
// =============================================================================

// transition is the shape shared by the gateway-side use cases that load one
// payment, check the actor is an admin, apply one mutator and save it.
type transition[In any] struct {
	deps    Deps
	id      func(In) shared.PaymentID
	actor   func(In) workflow.Actor
	mutator func(payment.Payment, In, shared.Clock) (payment.Payment, error)
	run     workflow.Step[In, workflow.Result[payment.Payment]]
}

type loaded[In any] struct {
	in      In
	payment payment.Payment
}

func newTransition[In any](
	d Deps,
	id func(In) shared.PaymentID,
	actor func(In) workflow.Actor,
	mutator func(payment.Payment, In, shared.Clock) (payment.Payment, error),
) *transition[In] {
	t := &transition[In]{deps: d, id: id, actor: actor, mutator: mutator}
	t.run = workflow.Chain4(t.find, t.validate, t.mutate, t.persist)
	return t
}

func (t *transition[In]) find(ctx context.Context, in In) (loaded[In], error) {
	p, err := loadPayment(ctx, t.deps.Payments, t.id(in))
	if err != nil {
		return loaded[In]{}, err
	}
	return loaded[In]{in: in, payment: p}, nil
}

func (t *transition[In]) validate(_ context.Context, l loaded[In]) (loaded[In], error) {
	if err := workflow.RequireAdmin(t.actor(l.in)); err != nil {
		return loaded[In]{}, err
	}
	return l, nil
}

func (t *transition[In]) mutate(_ context.Context, l loaded[In]) (payment.Payment, error) {
	p, err := t.mutator(l.payment, l.in, t.deps.Factory)
	return p, workflow.Rule(err)
}

func (t *transition[In]) persist(ctx context.Context, p payment.Payment) (workflow.Result[payment.Payment], error) {
	return workflow.Persist(ctx, t.deps.Payments.Save, p)
}

type AuthorizeInput struct {
	Actor        workflow.Actor
	PaymentID    shared.PaymentID
	ExternalTxID string
}

type AuthorizePayment struct {
	t *transition[AuthorizeInput]
}

func NewAuthorizePayment(d Deps) *AuthorizePayment {
	return &AuthorizePayment{t: newTransition(d,
		func(in AuthorizeInput) shared.PaymentID { return in.PaymentID },
		func(in AuthorizeInput) workflow.Actor { return in.Actor },
		func(p payment.Payment, in AuthorizeInput, c shared.Clock) (payment.Payment, error) {
			return p.Authorize(in.ExternalTxID, c.Now())
		},
	)}
}

func (w *AuthorizePayment) Execute(ctx context.Context, in AuthorizeInput) (workflow.Result[payment.Payment], error) {
	return w.t.run(ctx, in)
}

type FailInput struct {
	Actor     workflow.Actor
	PaymentID shared.PaymentID
	Code      string
	Message   string
}

type FailPayment struct {
	t *transition[FailInput]
}

func NewFailPayment(d Deps) *FailPayment {
	return &FailPayment{t: newTransition(d,
		func(in FailInput) shared.PaymentID { return in.PaymentID },
		func(in FailInput) workflow.Actor { return in.Actor },
		func(p payment.Payment, in FailInput, c shared.Clock) (payment.Payment, error) {
			return p.Fail(in.Code, in.Message, c.Now())
		},
	)}
}

func (w *FailPayment) Execute(ctx context.Context, in FailInput) (workflow.Result[payment.Payment], error) {
	return w.t.run(ctx, in)
}

type RefundInput struct {
	Actor        workflow.Actor
	PaymentID    shared.PaymentID
	Amount       decimal.Decimal
	Reason       string
	ExternalTxID string
}

type RefundPayment struct {
	t *transition[RefundInput]
}

// NewRefundPayment refunds part or all of a captured payment. Refunds never
// sum past the payment amount; after a partial refund only the remaining
// balance can be refunded.
func NewRefundPayment(d Deps) *RefundPayment {
	return &RefundPayment{t: newTransition(d,
		func(in RefundInput) shared.PaymentID { return in.PaymentID },
		func(in RefundInput) workflow.Actor { return in.Actor },
		func(p payment.Payment, in RefundInput, c shared.Clock) (payment.Payment, error) {
			return p.Refund(in.Amount, in.Reason, in.ExternalTxID, c.Now())
		},
	)}
}

func (w *RefundPayment) Execute(ctx context.Context, in RefundInput) (workflow.Result[payment.Payment], error) {
	return w.t.run(ctx, in)
}

// =============================================================================
// CapturePayment
// =============================================================================

type CaptureInput struct {
	Actor        workflow.Actor
	PaymentID    shared.PaymentID
	ExternalTxID string
}

type captureFound struct {
	in      CaptureInput
	payment payment.Payment
	order   order.Order
}

type captureMutated struct {
	payment payment.Payment
	order   order.Order
}

type CapturePayment struct {
	deps Deps
	run  workflow.Step[CaptureInput, workflow.Result[payment.Payment]]
}

func NewCapturePayment(d Deps) *CapturePayment {
	w := &CapturePayment{deps: d}
	w.run = workflow.Chain4(w.find, w.validate, w.mutate, w.persist)
	return w
}

// Execute captures an authorized payment and marks its order paid. The
// payment is saved before the order.
func (w *CapturePayment) Execute(ctx context.Context, in CaptureInput) (workflow.Result[payment.Payment], error) {
	return w.run(ctx, in)
}

func (w *CapturePayment) find(ctx context.Context, in CaptureInput) (captureFound, error) {
	p, err := loadPayment(ctx, w.deps.Payments, in.PaymentID)
	if err != nil {
		return captureFound{}, err
	}
	o, err := loadOrder(ctx, w.deps.Orders, p.OrderID())
	if err != nil {
		return captureFound{}, err
	}
	return captureFound{in: in, payment: p, order: o}, nil
}

func (w *CapturePayment) validate(_ context.Context, f captureFound) (captureFound, error) {
	if err := workflow.RequireAdmin(f.in.Actor); err != nil {
		return captureFound{}, err
	}
	return f, nil
}

func (w *CapturePayment) mutate(_ context.Context, f captureFound) (captureMutated, error) {
	now := w.deps.Factory.Now()
	p, err := f.payment.Capture(f.in.ExternalTxID, now)
	if err != nil {
		return captureMutated{}, workflow.Rule(err)
	}
	o, err := f.order.MarkPaid(p.ID(), p.Method(), now)
	if err != nil {
		return captureMutated{}, workflow.Rule(err)
	}
	return captureMutated{payment: p, order: o}, nil
}

func (w *CapturePayment) persist(ctx context.Context, m captureMutated) (workflow.Result[payment.Payment], error) {
	events := workflow.Collect(m.payment, m.order)
	saved, err := w.deps.Payments.Save(ctx, m.payment)
	if err != nil {
		return workflow.Result[payment.Payment]{}, workflow.Persisted(err)
	}
	if _, err := w.deps.Orders.Save(ctx, m.order); err != nil {
		return workflow.Result[payment.Payment]{}, workflow.Persisted(err)
	}
	return workflow.Result[payment.Payment]{Value: saved, Events: events}, nil
}
