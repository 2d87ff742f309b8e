package payment_test

import (
	"testing"
	"time"

	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/payment"
	"storefront/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOnlinePayment(t *testing.T) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(
		kernel.NewUUID(), kernel.NewUUID(), payment.Online,
		decimal.NewFromInt(2500), time.Now(),
	)
	require.NoError(t, err)
	require.NoError(t, p.AttachExternalReference("pay_abc123"))
	return p
}

func TestNewPayment(t *testing.T) {
	t.Run("should create pending payment", func(t *testing.T) {
		p := newOnlinePayment(t)

		assert.Equal(t, payment.Pending, p.Status())
		assert.True(t, p.Amount().Equal(decimal.NewFromInt(2500)))
		assert.Nil(t, p.PaidAt())
	})

	t.Run("should reject non-positive amount", func(t *testing.T) {
		_, err := payment.NewPayment(
			kernel.NewUUID(), kernel.NewUUID(), payment.Online,
			decimal.Zero, time.Now(),
		)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "amount")
	})

	t.Run("should reject unknown method", func(t *testing.T) {
		_, err := payment.NewPayment(
			kernel.NewUUID(), kernel.NewUUID(), payment.MethodUnknown,
			decimal.NewFromInt(100), time.Now(),
		)

		require.Error(t, err)
	})
}

func TestPayment_AttachExternalReference(t *testing.T) {
	t.Run("reference is set at most once", func(t *testing.T) {
		p := newOnlinePayment(t)

		err := p.AttachExternalReference("pay_other")

		require.ErrorIs(t, err, payment.ErrReferenceAlreadySet)
		assert.Equal(t, "pay_abc123", *p.ExternalReference())
	})

	t.Run("cod payments have no gateway session", func(t *testing.T) {
		p, err := payment.NewPayment(
			kernel.NewUUID(), kernel.NewUUID(), payment.CashOnDelivery,
			decimal.NewFromInt(100), time.Now(),
		)
		require.NoError(t, err)

		require.ErrorIs(t, p.AttachExternalReference("pay_x"), payment.ErrNotOnlinePayment)
	})
}

func TestPayment_VerifyAmount(t *testing.T) {
	t.Run("matching amount passes", func(t *testing.T) {
		p := newOnlinePayment(t)

		require.NoError(t, p.VerifyAmount(decimal.NewFromInt(2500)))
	})

	t.Run("mismatch is a callback rejection", func(t *testing.T) {
		p := newOnlinePayment(t)

		err := p.VerifyAmount(decimal.NewFromInt(2400))

		require.ErrorIs(t, err, errs.ErrCallbackRejected)
		assert.Contains(t, err.Error(), "amount mismatch")
	})
}

func TestPayment_ApplyGatewayStatus(t *testing.T) {
	now := time.Now()

	t.Run("should walk pending through processing to paid", func(t *testing.T) {
		p := newOnlinePayment(t)

		applied, err := p.ApplyGatewayStatus(payment.Processing, "", now)
		require.NoError(t, err)
		assert.True(t, applied)

		applied, err = p.ApplyGatewayStatus(payment.Paid, "RCP-1", now)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, payment.Paid, p.Status())
		require.NotNil(t, p.PaidAt())
		assert.Equal(t, "RCP-1", *p.ReceiptNumber())
	})

	t.Run("duplicate paid callback is a no-op", func(t *testing.T) {
		p := newOnlinePayment(t)
		_, err := p.ApplyGatewayStatus(payment.Paid, "RCP-1", now)
		require.NoError(t, err)
		paidAt := *p.PaidAt()

		applied, err := p.ApplyGatewayStatus(payment.Paid, "RCP-1", now.Add(time.Minute))

		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, payment.Paid, p.Status())
		assert.Equal(t, paidAt, *p.PaidAt())
	})

	t.Run("stale processing after paid is rejected against current status", func(t *testing.T) {
		p := newOnlinePayment(t)
		_, err := p.ApplyGatewayStatus(payment.Paid, "RCP-1", now)
		require.NoError(t, err)

		_, err = p.ApplyGatewayStatus(payment.Processing, "", now)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, payment.Paid, p.Status())
	})

	t.Run("failed is retryable", func(t *testing.T) {
		p := newOnlinePayment(t)
		_, err := p.ApplyGatewayStatus(payment.Failed, "", now)
		require.NoError(t, err)

		applied, err := p.ApplyGatewayStatus(payment.Processing, "", now)

		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, payment.Processing, p.Status())
	})

	t.Run("cod payment is never advanced by the machine", func(t *testing.T) {
		p, err := payment.NewPayment(
			kernel.NewUUID(), kernel.NewUUID(), payment.CashOnDelivery,
			decimal.NewFromInt(100), time.Now(),
		)
		require.NoError(t, err)

		_, err = p.ApplyGatewayStatus(payment.Paid, "RCP-1", now)

		require.ErrorIs(t, err, payment.ErrNotOnlinePayment)
		assert.Equal(t, payment.Pending, p.Status())
	})
}

func TestPayment_Refund(t *testing.T) {
	t.Run("paid payment can be refunded", func(t *testing.T) {
		p := newOnlinePayment(t)
		_, err := p.ApplyGatewayStatus(payment.Paid, "RCP-1", time.Now())
		require.NoError(t, err)

		require.NoError(t, p.Refund())
		assert.Equal(t, payment.Refunded, p.Status())
	})

	t.Run("unpaid payment cannot be refunded", func(t *testing.T) {
		p := newOnlinePayment(t)

		err := p.Refund()

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, payment.Pending, p.Status())
	})
}
