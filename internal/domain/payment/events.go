package payment

import (
	"time"

	"github.com/example/ec-fulfillment/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventPaymentInitiated  = "PaymentInitiated"
	EventPaymentAuthorized = "PaymentAuthorized"
	EventPaymentCaptured   = "PaymentCaptured"
	EventPaymentFailed     = "PaymentFailed"
	EventPaymentCancelled  = "PaymentCancelled"
	EventPaymentRefunded   = "PaymentRefunded"
)

type PaymentInitiated struct {
	PaymentID     shared.PaymentID `json:"payment_id"`
	OrderID       shared.OrderID   `json:"order_id"`
	AccountID     shared.AccountID `json:"account_id"`
	Amount        decimal.Decimal  `json:"amount"`
	PaymentMethod string           `json:"payment_method"`
	InitiatedAt   time.Time        `json:"initiated_at"`
}

type PaymentAuthorized struct {
	PaymentID             shared.PaymentID `json:"payment_id"`
	OrderID               shared.OrderID   `json:"order_id"`
	ExternalTransactionID string           `json:"external_transaction_id,omitempty"`
	AuthorizedAt          time.Time        `json:"authorized_at"`
}

type PaymentCaptured struct {
	PaymentID             shared.PaymentID `json:"payment_id"`
	OrderID               shared.OrderID   `json:"order_id"`
	Amount                decimal.Decimal  `json:"amount"`
	ExternalTransactionID string           `json:"external_transaction_id,omitempty"`
	CapturedAt            time.Time        `json:"captured_at"`
}

type PaymentFailed struct {
	PaymentID    shared.PaymentID `json:"payment_id"`
	OrderID      shared.OrderID   `json:"order_id"`
	ErrorCode    string           `json:"error_code"`
	ErrorMessage string           `json:"error_message"`
	FailedAt     time.Time        `json:"failed_at"`
}

type PaymentCancelled struct {
	PaymentID   shared.PaymentID `json:"payment_id"`
	OrderID     shared.OrderID   `json:"order_id"`
	Reason      string           `json:"reason"`
	CancelledAt time.Time        `json:"cancelled_at"`
}

type PaymentRefunded struct {
	PaymentID             shared.PaymentID `json:"payment_id"`
	OrderID               shared.OrderID   `json:"order_id"`
	Amount                decimal.Decimal  `json:"amount"`
	Reason                string           `json:"reason"`
	ExternalTransactionID string           `json:"external_transaction_id,omitempty"`
	ResultStatus          Status           `json:"result_status"`
	RefundedAt            time.Time        `json:"refunded_at"`
}

// RefundedTotal sums the refund amounts in events.
func RefundedTotal(events []PaymentRefunded) decimal.Decimal {
	total := decimal.Zero
	for _, e := range events {
		total = total.Add(e.Amount)
	}
	return total
}
