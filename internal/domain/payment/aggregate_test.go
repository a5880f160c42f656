package payment

import (
	"errors"
	"testing"
	"time"

	"github.com/example/ec-fulfillment/internal/domain/aggregate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestPayment(t *testing.T) Payment {
	t.Helper()
	p, err := Initiate("pay-1", "order-1", "acct-1", dec("2700"), "card", now)
	require.NoError(t, err)
	return Reconstruct(p.State(), 1)
}

func paymentIn(t *testing.T, status Status) Payment {
	t.Helper()
	s := newTestPayment(t).State()
	s.Status = status
	return Reconstruct(s, 2)
}

// ============================================
// Initiate Tests
// ============================================

func TestInitiate_Success(t *testing.T) {
	p, err := Initiate("pay-1", "order-1", "acct-1", dec("10.50"), "card", now)

	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status())
	require.Len(t, p.Events(), 1)
	assert.Equal(t, EventPaymentInitiated, p.Events()[0].EventType)
	data := p.Events()[0].Data.(PaymentInitiated)
	assert.True(t, dec("10.50").Equal(data.Amount))
}

func TestInitiate_Validation(t *testing.T) {
	_, err := Initiate("pay-1", "order-1", "acct-1", decimal.Zero, "card", now)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Initiate("pay-1", "order-1", "acct-1", dec("-1"), "card", now)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Initiate("pay-1", "order-1", "acct-1", dec("1"), " ", now)
	assert.ErrorIs(t, err, ErrMethodRequired)
}

// ============================================
// State Machine Tests
// ============================================

func TestCanTransitionTo_Table(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:           {StatusAuthorized, StatusFailed, StatusCancelled},
		StatusAuthorized:        {StatusCaptured, StatusFailed, StatusCancelled},
		StatusCaptured:          {StatusRefunded, StatusPartiallyRefunded},
		StatusPartiallyRefunded: {StatusRefunded},
	}

	for _, from := range Statuses {
		for _, to := range Statuses {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, CanTransitionTo(from, to), "%s -> %s", from, to)
		}
	}
}

func applyTransition(p Payment, to Status) (Payment, error) {
	switch to {
	case StatusAuthorized:
		return p.Authorize("tx-1", now)
	case StatusCaptured:
		return p.Capture("tx-1", now)
	case StatusFailed:
		return p.Fail("card_declined", "declined", now)
	case StatusCancelled:
		return p.Cancel("customer request", now)
	case StatusRefunded:
		return p.Refund(p.Amount(), "return", "rf-1", now)
	case StatusPartiallyRefunded:
		return p.Refund(dec("1"), "return", "rf-1", now)
	}
	return Payment{}, errors.New("no method for status")
}

func TestPayment_TransitionMethods_FollowTable(t *testing.T) {
	for _, from := range Statuses {
		for _, to := range Statuses {
			if to == StatusPending {
				continue
			}
			p := paymentIn(t, from)

			next, err := applyTransition(p, to)

			if CanTransitionTo(from, to) {
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, next.Status())
				assert.Len(t, next.Events(), 1)
			} else {
				assert.ErrorIs(t, err, aggregate.ErrIllegalTransition, "%s -> %s", from, to)
			}
		}
	}
}

// ============================================
// Refund Tests
// ============================================

func TestPayment_Refund_FullAmount(t *testing.T) {
	p := paymentIn(t, StatusCaptured)

	next, err := p.Refund(dec("2700.00"), "returned", "rf-1", now)

	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, next.Status())
	data := next.Events()[0].Data.(PaymentRefunded)
	assert.Equal(t, StatusRefunded, data.ResultStatus)
	assert.Equal(t, "rf-1", next.State().ExternalTransactionID)
}

func TestPayment_Refund_PartialAmount(t *testing.T) {
	for _, amount := range []string{"0.01", "1", "2699.99"} {
		next, err := paymentIn(t, StatusCaptured).Refund(dec(amount), "partial", "", now)

		require.NoError(t, err, amount)
		assert.Equal(t, StatusPartiallyRefunded, next.Status(), amount)
	}
}

func TestPayment_Refund_InvalidAmounts(t *testing.T) {
	p := paymentIn(t, StatusCaptured)

	_, err := p.Refund(decimal.Zero, "r", "", now)
	assert.ErrorIs(t, err, ErrInvalidRefundAmount)

	_, err = p.Refund(dec("-5"), "r", "", now)
	assert.ErrorIs(t, err, ErrInvalidRefundAmount)

	_, err = p.Refund(dec("2700.01"), "r", "", now)
	assert.ErrorIs(t, err, ErrRefundExceedsAmount)

	assert.Equal(t, StatusCaptured, p.Status())
}

func TestPayment_Refund_AfterPartialOnlyRemainderIsLegal(t *testing.T) {
	p, err := paymentIn(t, StatusCaptured).Refund(dec("2000"), "first", "", now)
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyRefunded, p.Status())
	assert.True(t, p.Refundable().Equal(dec("700")))

	_, err = p.Refund(dec("2700"), "again", "", now)
	assert.ErrorIs(t, err, ErrRefundExceedsBalance)

	_, err = p.Refund(dec("100"), "again", "", now)
	assert.ErrorIs(t, err, aggregate.ErrIllegalTransition)

	next, err := p.Refund(dec("700"), "rest", "", now)
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, next.Status())
	assert.True(t, next.Refunded().Equal(dec("2700")))
	assert.True(t, next.Refundable().IsZero())
	assert.Len(t, next.State().Refunds, 2)
}

func TestPayment_Refund_HistorySurvivesReconstruct(t *testing.T) {
	p, err := paymentIn(t, StatusCaptured).Refund(dec("2000"), "first", "rf-1", now)
	require.NoError(t, err)

	loaded := Reconstruct(p.State(), 3)

	assert.True(t, loaded.Refunded().Equal(dec("2000")))
	_, err = loaded.Refund(dec("2500"), "second", "", now)
	assert.ErrorIs(t, err, ErrRefundExceedsBalance)
}

func TestPayment_State_CopiesRefunds(t *testing.T) {
	p, err := paymentIn(t, StatusCaptured).Refund(dec("5"), "first", "", now)
	require.NoError(t, err)

	s := p.State()
	s.Refunds[0].Amount = dec("2700")

	assert.True(t, p.Refunded().Equal(dec("5")))
}

func TestPayment_Refund_RequiresReason(t *testing.T) {
	_, err := paymentIn(t, StatusCaptured).Refund(dec("1"), "", "", now)
	assert.ErrorIs(t, err, ErrReasonRequired)
}

func TestPayment_ExternalTransactionMerge(t *testing.T) {
	authorized, err := newTestPayment(t).Authorize("tx-auth", now)
	require.NoError(t, err)

	captured, err := authorized.Capture("", now)
	require.NoError(t, err)
	assert.Equal(t, "tx-auth", captured.State().ExternalTransactionID)

	captured2, err := authorized.Capture("tx-cap", now)
	require.NoError(t, err)
	assert.Equal(t, "tx-cap", captured2.State().ExternalTransactionID)
}

func TestPayment_Fail_RecordsError(t *testing.T) {
	next, err := newTestPayment(t).Fail("insufficient_funds", "not enough money", now)

	require.NoError(t, err)
	s := next.State()
	assert.Equal(t, "insufficient_funds", s.ErrorCode)
	assert.Equal(t, "not enough money", s.ErrorMessage)

	_, err = newTestPayment(t).Fail("", "x", now)
	assert.ErrorIs(t, err, ErrFailureCodeRequired)
}

func TestRefundedTotal(t *testing.T) {
	total := RefundedTotal([]PaymentRefunded{{Amount: dec("1.5")}, {Amount: dec("2")}})
	assert.True(t, dec("3.5").Equal(total))
	assert.True(t, RefundedTotal(nil).IsZero())
}
