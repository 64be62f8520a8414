package repositories

import (
	"context"
	"time"

	"masonko-stokvel/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// PaymentRepository handles pending payment and contribution data access.
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// InTx runs fn inside a single database transaction. The repository
// passed to fn is bound to that transaction; every write it performs is
// committed or rolled back as one unit.
func (r *PaymentRepository) InTx(ctx context.Context, fn func(tx *PaymentRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PaymentRepository{db: tx})
	})
}

// Create creates a new pending payment
func (r *PaymentRepository) Create(ctx context.Context, payment *models.PendingPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByID gets a pending payment by ID
func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*models.PendingPayment, error) {
	var payment models.PendingPayment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByIdempotencyKey gets a pending payment by its idempotency key
func (r *PaymentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*models.PendingPayment, error) {
	var payment models.PendingPayment
	err := r.db.WithContext(ctx).Where("idempotency_key = ?", key).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListPending lists payments still awaiting review, oldest first
func (r *PaymentRepository) ListPending(ctx context.Context) ([]*models.PendingPayment, error) {
	var payments []*models.PendingPayment
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PaymentStatusPending).
		Order("submitted_date ASC").
		Find(&payments).Error
	return payments, err
}

// ListByMember lists all payments submitted by a member
func (r *PaymentRepository) ListByMember(ctx context.Context, memberID uint) ([]*models.PendingPayment, error) {
	var payments []*models.PendingPayment
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("submitted_date DESC").
		Find(&payments).Error
	return payments, err
}

// MarkConfirmed transitions a payment pending -> confirmed. The status
// guard lives in the WHERE clause, so of two racing approvers exactly
// one sees a row updated; the other gets zero and must treat the
// payment as terminal.
func (r *PaymentRepository) MarkConfirmed(ctx context.Context, id uint, approver string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.PendingPayment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":         models.PaymentStatusConfirmed,
			"confirmed_by":   approver,
			"confirmed_date": at,
		})
	return result.RowsAffected, result.Error
}

// MarkRejected transitions a payment pending -> rejected, with the same
// guarded-update contract as MarkConfirmed.
func (r *PaymentRepository) MarkRejected(ctx context.Context, id uint, approver, reason string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.PendingPayment{}).
		Where("id = ? AND status = ?", id, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":          models.PaymentStatusRejected,
			"confirmed_by":    approver,
			"confirmed_date":  at,
			"rejected_reason": reason,
		})
	return result.RowsAffected, result.Error
}

// CreateContribution appends a contribution ledger entry
func (r *PaymentRepository) CreateContribution(ctx context.Context, contribution *models.Contribution) error {
	return r.db.WithContext(ctx).Create(contribution).Error
}

// ListContributionsByMember lists contributions for a member, newest first
func (r *PaymentRepository) ListContributionsByMember(ctx context.Context, memberID uint) ([]*models.Contribution, error) {
	var contributions []*models.Contribution
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("date DESC").
		Find(&contributions).Error
	return contributions, err
}

// SumContributions sums confirmed contribution amounts for a member
func (r *PaymentRepository) SumContributions(ctx context.Context, memberID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Contribution{}).
		Where("member_id = ?", memberID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// ApplyBalance credits a confirmed payment to the member's account.
// The increment runs in SQL so concurrent approvals for the same member
// never lose updates.
func (r *PaymentRepository) ApplyBalance(ctx context.Context, memberID uint, amount float64, paymentDate time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ?", memberID).
		Updates(map[string]interface{}{
			"balance":      gorm.Expr("balance + ?", amount),
			"last_payment": paymentDate,
			"status":       models.MemberStatusCurrent,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
