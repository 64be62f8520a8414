package repositories

import (
	"context"
	"time"

	"masonko-stokvel/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// LoanRepository handles loan and repayment data access.
type LoanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

// InTx runs fn inside a single database transaction, with the passed
// repository bound to it.
func (r *LoanRepository) InTx(ctx context.Context, fn func(tx *LoanRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LoanRepository{db: tx})
	})
}

// Create creates a new loan
func (r *LoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

// GetByID gets a loan by ID
func (r *LoanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// List lists all loans, newest first
func (r *LoanRepository) List(ctx context.Context) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

// ListByMember lists loans belonging to a member, newest first
func (r *LoanRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

// MarkApproved transitions a loan pending -> approved. The status guard
// runs in the WHERE clause so of two racing reviewers exactly one sees
// a row updated.
func (r *LoanRepository) MarkApproved(ctx context.Context, id, approverID uint, at, nextPayment time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND status = ?", id, models.LoanStatusPending).
		Updates(map[string]interface{}{
			"status":       models.LoanStatusApproved,
			"approved_by":  approverID,
			"approved_at":  at,
			"next_payment": nextPayment,
		})
	return result.RowsAffected, result.Error
}

// MarkRejected transitions a loan pending -> rejected, with the same
// guarded-update contract as MarkApproved.
func (r *LoanRepository) MarkRejected(ctx context.Context, id uint, reason string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND status = ?", id, models.LoanStatusPending).
		Updates(map[string]interface{}{
			"status":          models.LoanStatusRejected,
			"rejected_reason": reason,
		})
	return result.RowsAffected, result.Error
}

// DecrementOutstanding applies a repayment against the loan balance.
// The guard admits only approved or active loans with enough outstanding
// to absorb the amount, and the decrement runs in SQL so concurrent
// repayments never lose updates. Zero rows affected means the caller
// must re-read the loan to see which guard failed.
func (r *LoanRepository) DecrementOutstanding(ctx context.Context, id uint, amount float64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND status IN ? AND outstanding >= ?", id,
			[]string{models.LoanStatusApproved, models.LoanStatusActive}, amount).
		Updates(map[string]interface{}{
			"outstanding": gorm.Expr("outstanding - ?", amount),
			"status":      models.LoanStatusActive,
		})
	return result.RowsAffected, result.Error
}

// Update updates a loan
func (r *LoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

// CreateRepayment appends a repayment ledger entry
func (r *LoanRepository) CreateRepayment(ctx context.Context, repayment *models.LoanRepayment) error {
	return r.db.WithContext(ctx).Create(repayment).Error
}

// ListRepayments lists repayments for a loan, oldest first
func (r *LoanRepository) ListRepayments(ctx context.Context, loanID uint) ([]*models.LoanRepayment, error) {
	var repayments []*models.LoanRepayment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("created_at ASC").
		Find(&repayments).Error
	return repayments, err
}
