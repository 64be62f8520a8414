package repositories

import (
	"context"
	"time"

	"masonko-stokvel/internal/adapters/persistence/models"
)

// MemberRepository defines member data access. Services depend on the
// interface so tests can swap implementations.
type MemberRepository interface {
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByEmailOrPhone(ctx context.Context, identifier string) (*models.Member, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	ListApproved(ctx context.Context) ([]*models.Member, error)
	ListApprovedPaged(ctx context.Context, offset, limit int) ([]*models.Member, int64, error)
	ListPending(ctx context.Context) ([]*models.Member, error)
	Approve(ctx context.Context, id uint) error
	Update(ctx context.Context, member *models.Member) error
	ListPaidBefore(ctx context.Context, cutoff time.Time) ([]*models.Member, error)
	MarkLate(ctx context.Context, id uint) error
}

// SettingRepository defines settings data access.
type SettingRepository interface {
	Get(ctx context.Context, key string) (string, error)
	GetFloat(ctx context.Context, key string, fallback float64) float64
	GetInt(ctx context.Context, key string, fallback int) int
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context) ([]*models.Setting, error)
}
