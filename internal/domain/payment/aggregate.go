package payment

import (
	"errors"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const AggregateType = "Payment"

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrInvalidAmount        = errors.New("payment amount must be greater than zero")
	ErrMethodRequired       = errors.New("payment method is required")
	ErrInvalidRefundAmount  = errors.New("refund amount must be greater than zero")
	ErrRefundExceedsAmount  = errors.New("refund amount exceeds payment amount")
	ErrRefundExceedsBalance = errors.New("refund amount exceeds remaining refundable balance")
	ErrReasonRequired       = errors.New("reason is required")
	ErrFailureCodeRequired  = errors.New("failure code is required")
)

type State struct {
	ID                    shared.PaymentID `json:"id"`
	OrderID               shared.OrderID   `json:"order_id"`
	AccountID             shared.AccountID `json:"account_id"`
	Amount                decimal.Decimal  `json:"amount"`
	Status                Status           `json:"status"`
	PaymentMethod         string           `json:"payment_method"`
	ExternalTransactionID string           `json:"external_transaction_id,omitempty"`
	ErrorCode             string           `json:"error_code,omitempty"`
	ErrorMessage          string           `json:"error_message,omitempty"`

	// Refunds is the refund history. Further refunds are bounded by it.
	Refunds []PaymentRefunded `json:"refunds,omitempty"`
	shared.AuditInfo
}

type Payment struct {
	aggregate.Root
	s State
}

// Initiate starts a PENDING payment for an order.
func Initiate(id shared.PaymentID, orderID shared.OrderID, accountID shared.AccountID, amount decimal.Decimal, method string, now time.Time) (Payment, error) {
	if err := shared.RequireNonBlank("payment_id", string(id)); err != nil {
		return Payment{}, err
	}
	if err := shared.RequireNonBlank("order_id", string(orderID)); err != nil {
		return Payment{}, err
	}
	if !amount.IsPositive() {
		return Payment{}, ErrInvalidAmount
	}
	if shared.RequireNonBlank("payment_method", method) != nil {
		return Payment{}, ErrMethodRequired
	}

	s := State{
		ID:            id,
		OrderID:       orderID,
		AccountID:     accountID,
		Amount:        amount,
		Status:        StatusPending,
		PaymentMethod: method,
		AuditInfo:     shared.NewAuditInfo(now),
	}
	return Payment{}.next(s, EventPaymentInitiated, PaymentInitiated{
		PaymentID:     id,
		OrderID:       orderID,
		AccountID:     accountID,
		Amount:        amount,
		PaymentMethod: method,
		InitiatedAt:   now,
	}, now), nil
}

func Reconstruct(s State, version int) Payment {
	return Payment{Root: aggregate.Rehydrate(version), s: s}
}

func (p Payment) ID() shared.PaymentID { return p.s.ID }
func (p Payment) OrderID() shared.OrderID { return p.s.OrderID }
func (p Payment) AccountID() shared.AccountID { return p.s.AccountID }
func (p Payment) BelongsTo(a shared.AccountID) bool { return p.s.AccountID == a }
func (p Payment) Status() Status { return p.s.Status }
func (p Payment) Amount() decimal.Decimal { return p.s.Amount }
func (p Payment) Method() string { return p.s.PaymentMethod }
func (p Payment) State() State {
	s := p.s
	s.Refunds = append([]PaymentRefunded(nil), p.s.Refunds...)
	return s
}

func (p Payment) Refunded() decimal.Decimal { return RefundedTotal(p.s.Refunds) }

// Refundable is the amount minus every refund so far.
func (p Payment) Refundable() decimal.Decimal {
	return p.s.Amount.Sub(p.Refunded())
}

func (p Payment) CanTransitionTo(next Status) bool {
	return CanTransitionTo(p.s.Status, next)
}

func (p Payment) Authorize(externalTxID string, now time.Time) (Payment, error) {
	if err := p.transition(StatusAuthorized); err != nil {
		return Payment{}, err
	}
	s := p.s
	s.Status = StatusAuthorized
	s.ExternalTransactionID = shared.FirstNonBlank(externalTxID, s.ExternalTransactionID)
	s.AuditInfo = s.Touch(now)
	return p.next(s, EventPaymentAuthorized, PaymentAuthorized{
		PaymentID:             s.ID,
		OrderID:               s.OrderID,
		ExternalTransactionID: s.ExternalTransactionID,
		AuthorizedAt:          now,
	}, now), nil
}

func (p Payment) Capture(externalTxID string, now time.Time) (Payment, error) {
	if err := p.transition(StatusCaptured); err != nil {
		return Payment{}, err
	}
	s := p.s
	s.Status = StatusCaptured
	s.ExternalTransactionID = shared.FirstNonBlank(externalTxID, s.ExternalTransactionID)
	s.AuditInfo = s.Touch(now)
	return p.next(s, EventPaymentCaptured, PaymentCaptured{
		PaymentID:             s.ID,
		OrderID:               s.OrderID,
		Amount:                s.Amount,
		ExternalTransactionID: s.ExternalTransactionID,
		CapturedAt:            now,
	}, now), nil
}

func (p Payment) Fail(code, message string, now time.Time) (Payment, error) {
	if err := p.transition(StatusFailed); err != nil {
		return Payment{}, err
	}
	if shared.RequireNonBlank("error_code", code) != nil {
		return Payment{}, ErrFailureCodeRequired
	}
	s := p.s
	s.Status = StatusFailed
	s.ErrorCode = code
	s.ErrorMessage = message
	s.AuditInfo = s.Touch(now)
	return p.next(s, EventPaymentFailed, PaymentFailed{
		PaymentID:    s.ID,
		OrderID:      s.OrderID,
		ErrorCode:    code,
		ErrorMessage: message,
		FailedAt:     now,
	}, now), nil
}

func (p Payment) Cancel(reason string, now time.Time) (Payment, error) {
	if err := p.transition(StatusCancelled); err != nil {
		return Payment{}, err
	}
	if shared.RequireNonBlank("reason", reason) != nil {
		return Payment{}, ErrReasonRequired
	}
	s := p.s
	s.Status = StatusCancelled
	s.AuditInfo = s.Touch(now)
	return p.next(s, EventPaymentCancelled, PaymentCancelled{
		PaymentID:   s.ID,
		OrderID:     s.OrderID,
		Reason:      reason,
		CancelledAt: now,
	}, now), nil
}

// Refund returns amount to the customer. A refund of the whole remaining
// balance ends REFUNDED, anything less ends PARTIALLY_REFUNDED. On a payment
// with no refunds yet the balance is the full amount. The target status must be
// reachable from the current one, so after a partial refund only the rest of
// the balance can be refunded.
func (p Payment) Refund(amount decimal.Decimal, reason, externalTxID string, now time.Time) (Payment, error) {
	if !amount.IsPositive() {
		return Payment{}, ErrInvalidRefundAmount
	}
	if amount.GreaterThan(p.s.Amount) {
		return Payment{}, ErrRefundExceedsAmount
	}
	remaining := p.Refundable()
	if amount.GreaterThan(remaining) {
		return Payment{}, ErrRefundExceedsBalance
	}
	if shared.RequireNonBlank("reason", reason) != nil {
		return Payment{}, ErrReasonRequired
	}

	target := StatusPartiallyRefunded
	if amount.Equal(remaining) {
		target = StatusRefunded
	}
	if err := p.transition(target); err != nil {
		return Payment{}, err
	}

	refund := PaymentRefunded{
		PaymentID:             p.s.ID,
		OrderID:               p.s.OrderID,
		Amount:                amount,
		Reason:                reason,
		ExternalTransactionID: externalTxID,
		ResultStatus:          target,
		RefundedAt:            now,
	}
	s := p.State()
	s.Status = target
	s.ExternalTransactionID = shared.FirstNonBlank(externalTxID, s.ExternalTransactionID)
	s.Refunds = append(s.Refunds, refund)
	s.AuditInfo = s.Touch(now)
	return p.next(s, EventPaymentRefunded, refund, now), nil
}

func (p Payment) transition(to Status) error {
	return aggregate.CheckTransition(AggregateType, validTransitions, p.s.Status, to)
}

func (p Payment) next(s State, eventType string, data any, now time.Time) Payment {
	return Payment{
		Root: p.With(aggregate.Event{
			AggregateID:   string(s.ID),
			AggregateType: AggregateType,
			EventType:     eventType,
			Data:          data,
			OccurredAt:    now,
		}),
		s: s,
	}
}
