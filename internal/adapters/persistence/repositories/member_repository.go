package repositories

import (
	"context"
	"time"

	"masonko-stokvel/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// memberRepository implements MemberRepository interface
type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

// Create creates a new member
func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetByID gets a member by ID
func (r *memberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// GetByEmailOrPhone gets a member by email or phone (login identifier)
func (r *memberRepository) GetByEmailOrPhone(ctx context.Context, identifier string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("email = ? OR phone = ?", identifier, identifier).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// ExistsByEmailOrPhone checks whether a member with the given email or phone exists
func (r *memberRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("email = ? OR phone = ?", email, phone).
		Count(&count).Error
	return count > 0, err
}

// ListApproved lists approved members
func (r *memberRepository) ListApproved(ctx context.Context) ([]*models.Member, error) {
	var members []*models.Member
	err := r.db.WithContext(ctx).
		Where("approved = ?", true).
		Order("name ASC").
		Find(&members).Error
	return members, err
}

// ListApprovedPaged lists a page of approved members plus the total count
func (r *memberRepository) ListApprovedPaged(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("approved = ?", true).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []*models.Member
	err := r.db.WithContext(ctx).
		Where("approved = ?", true).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&members).Error
	return members, total, err
}

// ListPending lists members awaiting approval
func (r *memberRepository) ListPending(ctx context.Context) ([]*models.Member, error) {
	var members []*models.Member
	err := r.db.WithContext(ctx).
		Where("approved = ?", false).
		Order("created_at ASC").
		Find(&members).Error
	return members, err
}

// Approve marks a member approved and current
func (r *memberRepository) Approve(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"approved": true,
			"status":   models.MemberStatusCurrent,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Update updates a member
func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

// ListPaidBefore lists approved, current members whose last confirmed
// payment is missing or older than the cutoff. Used by the reminder job.
func (r *memberRepository) ListPaidBefore(ctx context.Context, cutoff time.Time) ([]*models.Member, error) {
	var members []*models.Member
	err := r.db.WithContext(ctx).
		Where("approved = ? AND status = ?", true, models.MemberStatusCurrent).
		Where("last_payment IS NULL OR last_payment < ?", cutoff).
		Find(&members).Error
	return members, err
}

// MarkLate flags a member as late
func (r *memberRepository) MarkLate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ?", id).
		Update("status", models.MemberStatusLate).Error
}
