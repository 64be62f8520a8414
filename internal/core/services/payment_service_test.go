package services

import (
	"context"
	"sync"
	"testing"

	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitPayment(t *testing.T, svc *PaymentService, memberID uint, amount float64) *models.PendingPayment {
	t.Helper()
	payment, err := svc.Submit(context.Background(), memberID, &SubmitPaymentInput{
		Amount: amount,
		Method: "eft",
		Date:   "2026-08-01",
	})
	require.NoError(t, err)
	return payment
}

func TestSubmitPayment(t *testing.T) {
	db := newTestDB(t)
	svc, _, _ := newPaymentService(db)
	member := seedMember(t, db, "Thandi", models.RoleMember, true)
	ctx := context.Background()

	t.Run("creates a pending payment without touching the balance", func(t *testing.T) {
		payment := submitPayment(t, svc, member.ID, 500)

		assert.Equal(t, models.PaymentStatusPending, payment.Status)
		assert.Equal(t, member.Name, payment.MemberName)

		var fresh models.Member
		require.NoError(t, db.First(&fresh, member.ID).Error)
		assert.Zero(t, fresh.Balance)

		var contributions int64
		require.NoError(t, db.Model(&models.Contribution{}).Count(&contributions).Error)
		assert.Zero(t, contributions)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := svc.Submit(ctx, member.ID, &SubmitPaymentInput{Amount: 0, Method: "eft", Date: "2026-08-01"})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = svc.Submit(ctx, member.ID, &SubmitPaymentInput{Amount: -50, Method: "eft", Date: "2026-08-01"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("rejects a missing method and a bad date", func(t *testing.T) {
		_, err := svc.Submit(ctx, member.ID, &SubmitPaymentInput{Amount: 100, Date: "2026-08-01"})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = svc.Submit(ctx, member.ID, &SubmitPaymentInput{Amount: 100, Method: "eft", Date: "01/08/2026"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("refuses unapproved members", func(t *testing.T) {
		pending := seedMember(t, db, "Sipho", models.RoleMember, false)
		_, err := svc.Submit(ctx, pending.ID, &SubmitPaymentInput{Amount: 100, Method: "eft", Date: "2026-08-01"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("repeated idempotency key returns the original submission", func(t *testing.T) {
		first, err := svc.Submit(ctx, member.ID, &SubmitPaymentInput{
			Amount: 250, Method: "eft", Date: "2026-08-01", IdempotencyKey: "sub-42",
		})
		require.NoError(t, err)

		second, err := svc.Submit(ctx, member.ID, &SubmitPaymentInput{
			Amount: 250, Method: "eft", Date: "2026-08-01", IdempotencyKey: "sub-42",
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		var count int64
		require.NoError(t, db.Model(&models.PendingPayment{}).
			Where("idempotency_key = ?", "sub-42").Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
}

func TestApprovePayment(t *testing.T) {
	db := newTestDB(t)
	svc, paymentRepo, _ := newPaymentService(db)
	member := seedMember(t, db, "Thandi", models.RoleMember, true)
	treasurer := domain.Identity{MemberID: 99, Name: "Treasurer", Role: models.RoleTreasurer}
	ctx := context.Background()

	t.Run("credits the balance and writes exactly one contribution", func(t *testing.T) {
		payment := submitPayment(t, svc, member.ID, 500)

		approved, err := svc.Approve(ctx, payment.ID, treasurer)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusConfirmed, approved.Status)
		assert.Equal(t, treasurer.Name, approved.ConfirmedBy)
		require.NotNil(t, approved.ConfirmedDate)

		var fresh models.Member
		require.NoError(t, db.First(&fresh, member.ID).Error)
		assert.InDelta(t, 500, fresh.Balance, 1e-9)
		assert.Equal(t, models.MemberStatusCurrent, fresh.Status)
		require.NotNil(t, fresh.LastPayment)

		// Balance reconciles with the contribution ledger.
		total, err := paymentRepo.SumContributions(ctx, member.ID)
		require.NoError(t, err)
		assert.InDelta(t, fresh.Balance, total, 1e-9)

		var contributions []models.Contribution
		require.NoError(t, db.Where("payment_id = ?", payment.ID).Find(&contributions).Error)
		require.Len(t, contributions, 1)
		assert.Equal(t, payment.Amount, contributions[0].Amount)
		assert.Equal(t, treasurer.Name, contributions[0].RecordedBy)
	})

	t.Run("second approval fails and the balance moves once", func(t *testing.T) {
		payment := submitPayment(t, svc, member.ID, 300)

		_, err := svc.Approve(ctx, payment.ID, treasurer)
		require.NoError(t, err)

		var before models.Member
		require.NoError(t, db.First(&before, member.ID).Error)

		_, err = svc.Approve(ctx, payment.ID, treasurer)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

		var after models.Member
		require.NoError(t, db.First(&after, member.ID).Error)
		assert.Equal(t, before.Balance, after.Balance)

		var count int64
		require.NoError(t, db.Model(&models.Contribution{}).
			Where("payment_id = ?", payment.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("approving a rejected payment fails", func(t *testing.T) {
		payment := submitPayment(t, svc, member.ID, 100)
		_, err := svc.Reject(ctx, payment.ID, treasurer, "no proof attached")
		require.NoError(t, err)

		_, err = svc.Approve(ctx, payment.ID, treasurer)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("unknown payment", func(t *testing.T) {
		_, err := svc.Approve(ctx, 987654, treasurer)
		assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	})
}

func TestApprovePaymentConcurrent(t *testing.T) {
	db := newTestDB(t)
	svc, paymentRepo, _ := newPaymentService(db)
	member := seedMember(t, db, "Thandi", models.RoleMember, true)
	treasurer := domain.Identity{MemberID: 99, Name: "Treasurer", Role: models.RoleTreasurer}
	ctx := context.Background()

	const n = 10
	payments := make([]*models.PendingPayment, 0, n)
	var want float64
	for i := 0; i < n; i++ {
		amount := float64(100 * (i + 1))
		payments = append(payments, submitPayment(t, svc, member.ID, amount))
		want += amount
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, payment := range payments {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := svc.Approve(ctx, id, treasurer)
			errs <- err
		}(payment.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var fresh models.Member
	require.NoError(t, db.First(&fresh, member.ID).Error)
	assert.InDelta(t, want, fresh.Balance, 1e-9)

	total, err := paymentRepo.SumContributions(ctx, member.ID)
	require.NoError(t, err)
	assert.InDelta(t, want, total, 1e-9)
}

func TestRejectPayment(t *testing.T) {
	db := newTestDB(t)
	svc, _, _ := newPaymentService(db)
	member := seedMember(t, db, "Thandi", models.RoleMember, true)
	treasurer := domain.Identity{MemberID: 99, Name: "Treasurer", Role: models.RoleTreasurer}
	ctx := context.Background()

	t.Run("records the reason and leaves the ledger alone", func(t *testing.T) {
		payment := submitPayment(t, svc, member.ID, 777)

		rejected, err := svc.Reject(ctx, payment.ID, treasurer, "reference does not match")
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusRejected, rejected.Status)
		assert.Equal(t, "reference does not match", rejected.RejectedReason)

		var fresh models.Member
		require.NoError(t, db.First(&fresh, member.ID).Error)
		assert.Zero(t, fresh.Balance)

		var count int64
		require.NoError(t, db.Model(&models.Contribution{}).
			Where("payment_id = ?", payment.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("rejecting a confirmed payment fails", func(t *testing.T) {
		payment := submitPayment(t, svc, member.ID, 50)
		_, err := svc.Approve(ctx, payment.ID, treasurer)
		require.NoError(t, err)

		_, err = svc.Reject(ctx, payment.ID, treasurer, "too late")
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})
}

func TestListPendingPayments(t *testing.T) {
	db := newTestDB(t)
	svc, _, _ := newPaymentService(db)
	member := seedMember(t, db, "Thandi", models.RoleMember, true)
	treasurer := domain.Identity{MemberID: 99, Name: "Treasurer", Role: models.RoleTreasurer}
	ctx := context.Background()

	first := submitPayment(t, svc, member.ID, 100)
	second := submitPayment(t, svc, member.ID, 200)
	third := submitPayment(t, svc, member.ID, 300)

	_, err := svc.Approve(ctx, second.ID, treasurer)
	require.NoError(t, err)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	// Oldest first, confirmed payments excluded.
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, third.ID, pending[1].ID)

	mine, err := svc.ListByMember(ctx, member.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}
