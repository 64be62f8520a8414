package services

import (
	"context"
	"testing"

	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/adapters/persistence/repositories"
	"masonko-stokvel/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutstanding(t *testing.T) {
	// Simple interest pro-rated over the term in weeks.
	assert.Equal(t, 1100.0, Outstanding(1000, 10, 52))
	assert.Equal(t, 1050.0, Outstanding(1000, 10, 26))
	assert.Equal(t, 500.0, Outstanding(500, 10, 0))
}

func TestLoanApply(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newLoanService(db)
	member := seedMember(t, db, "Thandi", models.RoleMember, true)
	ctx := context.Background()

	t.Run("snapshots the rate and fixes the outstanding up front", func(t *testing.T) {
		loan, err := svc.Apply(ctx, member.ID, &ApplyInput{Amount: 1000, Term: 52})
		require.NoError(t, err)

		assert.Equal(t, models.LoanStatusPending, loan.Status)
		assert.Equal(t, DefaultInterestRate, loan.Interest)
		assert.Equal(t, 1100.0, loan.Outstanding)
		assert.Nil(t, loan.NextPayment)
	})

	t.Run("uses the configured interest rate", func(t *testing.T) {
		settingRepo := repositories.NewSettingRepository(db)
		require.NoError(t, settingRepo.Set(ctx, models.SettingLoanInterestRate, "20"))

		loan, err := svc.Apply(ctx, member.ID, &ApplyInput{Amount: 1000, Term: 26})
		require.NoError(t, err)
		assert.Equal(t, 20.0, loan.Interest)
		assert.Equal(t, 1100.0, loan.Outstanding)

		require.NoError(t, settingRepo.Set(ctx, models.SettingLoanInterestRate, "10"))
	})

	t.Run("validates amount and term", func(t *testing.T) {
		_, err := svc.Apply(ctx, member.ID, &ApplyInput{Amount: 0, Term: 52})
		assert.ErrorIs(t, err, domain.ErrValidation)

		_, err = svc.Apply(ctx, member.ID, &ApplyInput{Amount: 1000, Term: 0})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("refuses unapproved members", func(t *testing.T) {
		pending := seedMember(t, db, "Sipho", models.RoleMember, false)
		_, err := svc.Apply(ctx, pending.ID, &ApplyInput{Amount: 1000, Term: 52})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestLoanVisibility(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newLoanService(db)
	alice := seedMember(t, db, "Alice", models.RoleMember, true)
	bob := seedMember(t, db, "Bob", models.RoleMember, true)
	ctx := context.Background()

	aliceLoan, err := svc.Apply(ctx, alice.ID, &ApplyInput{Amount: 1000, Term: 52})
	require.NoError(t, err)
	_, err = svc.Apply(ctx, bob.ID, &ApplyInput{Amount: 500, Term: 26})
	require.NoError(t, err)

	officer := domain.Identity{MemberID: 50, Name: "Officer", Role: models.RoleLoanOfficer}
	asAlice := domain.Identity{MemberID: alice.ID, Name: alice.Name, Role: models.RoleMember}
	asBob := domain.Identity{MemberID: bob.ID, Name: bob.Name, Role: models.RoleMember}

	all, err := svc.List(ctx, officer)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.List(ctx, asAlice)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, aliceLoan.ID, own[0].ID)

	_, err = svc.GetByID(ctx, aliceLoan.ID, asBob)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.GetByID(ctx, aliceLoan.ID, officer)
	assert.NoError(t, err)
}

func TestLoanApproveReject(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newLoanService(db)
	member := seedMember(t, db, "Thandi", models.RoleMember, true)
	officer := domain.Identity{MemberID: 50, Name: "Officer", Role: models.RoleLoanOfficer}
	ctx := context.Background()

	t.Run("approve schedules the first payment", func(t *testing.T) {
		loan, err := svc.Apply(ctx, member.ID, &ApplyInput{Amount: 1000, Term: 52})
		require.NoError(t, err)

		approved, err := svc.Approve(ctx, loan.ID, officer)
		require.NoError(t, err)
		assert.Equal(t, models.LoanStatusApproved, approved.Status)
		require.NotNil(t, approved.ApprovedBy)
		assert.Equal(t, officer.MemberID, *approved.ApprovedBy)
		require.NotNil(t, approved.NextPayment)

		// Only pending loans can be approved.
		_, err = svc.Approve(ctx, loan.ID, officer)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("reject is terminal", func(t *testing.T) {
		loan, err := svc.Apply(ctx, member.ID, &ApplyInput{Amount: 1000, Term: 52})
		require.NoError(t, err)

		rejected, err := svc.Reject(ctx, loan.ID, officer, "insufficient contribution history")
		require.NoError(t, err)
		assert.Equal(t, models.LoanStatusRejected, rejected.Status)
		assert.Equal(t, "insufficient contribution history", rejected.RejectedReason)

		_, err = svc.Approve(ctx, loan.ID, officer)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("unknown loan", func(t *testing.T) {
		_, err := svc.Approve(ctx, 987654, officer)
		assert.ErrorIs(t, err, domain.ErrLoanNotFound)
	})
}

func TestLoanRepayment(t *testing.T) {
	db := newTestDB(t)
	svc, loanRepo := newLoanService(db)
	member := seedMember(t, db, "Thandi", models.RoleMember, true)
	officer := domain.Identity{MemberID: 50, Name: "Officer", Role: models.RoleLoanOfficer}
	ctx := context.Background()

	newApprovedLoan := func(t *testing.T) *models.Loan {
		t.Helper()
		loan, err := svc.Apply(ctx, member.ID, &ApplyInput{Amount: 1000, Term: 26})
		require.NoError(t, err)
		approved, err := svc.Approve(ctx, loan.ID, officer)
		require.NoError(t, err)
		return approved
	}

	t.Run("partial repayment activates the loan", func(t *testing.T) {
		loan := newApprovedLoan(t) // outstanding 1050

		updated, err := svc.RecordRepayment(ctx, loan.ID, 500, officer)
		require.NoError(t, err)
		assert.Equal(t, models.LoanStatusActive, updated.Status)
		assert.InDelta(t, 550, updated.Outstanding, 1e-9)
		require.NotNil(t, updated.NextPayment)

		repayments, err := loanRepo.ListRepayments(ctx, loan.ID)
		require.NoError(t, err)
		require.Len(t, repayments, 1)
		assert.Equal(t, 500.0, repayments[0].Amount)
		assert.Equal(t, officer.Name, repayments[0].RecordedBy)
	})

	t.Run("paying off the balance derives the repaid state", func(t *testing.T) {
		loan := newApprovedLoan(t)

		_, err := svc.RecordRepayment(ctx, loan.ID, 1000, officer)
		require.NoError(t, err)

		updated, err := svc.RecordRepayment(ctx, loan.ID, 50, officer)
		require.NoError(t, err)
		assert.Equal(t, models.LoanStatusRepaid, updated.Status)
		assert.Zero(t, updated.Outstanding)
		assert.Nil(t, updated.NextPayment)

		// No further repayments once repaid.
		_, err = svc.RecordRepayment(ctx, loan.ID, 10, officer)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("overpayment is refused", func(t *testing.T) {
		loan := newApprovedLoan(t)

		_, err := svc.RecordRepayment(ctx, loan.ID, 2000, officer)
		assert.ErrorIs(t, err, domain.ErrValidation)

		fresh, err := loanRepo.GetByID(ctx, loan.ID)
		require.NoError(t, err)
		assert.InDelta(t, 1050, fresh.Outstanding, 1e-9)
	})

	t.Run("repayments against a pending loan are refused", func(t *testing.T) {
		loan, err := svc.Apply(ctx, member.ID, &ApplyInput{Amount: 1000, Term: 26})
		require.NoError(t, err)

		_, err = svc.RecordRepayment(ctx, loan.ID, 100, officer)
		assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	})

	t.Run("non-positive amounts are refused", func(t *testing.T) {
		loan := newApprovedLoan(t)
		_, err := svc.RecordRepayment(ctx, loan.ID, 0, officer)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
