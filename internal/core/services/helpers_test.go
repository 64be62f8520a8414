package services

import (
	"fmt"
	"testing"
	"time"

	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/adapters/persistence/repositories"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database per test. SQLite gets a
// single connection so concurrent transactions queue instead of failing
// with a busy error.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func seedMember(t *testing.T, db *gorm.DB, name, role string, approved bool) *models.Member {
	t.Helper()

	member := &models.Member{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()),
		Phone:    uuid.NewString()[:15],
		Password: "not-a-real-hash",
		Role:     role,
		Tier:     1,
		Shares:   1,
		Joined:   time.Now(),
		Status:   models.MemberStatusCurrent,
		Approved: approved,
	}
	require.NoError(t, db.Create(member).Error)
	return member
}

func newPaymentService(db *gorm.DB) (*PaymentService, *repositories.PaymentRepository, repositories.MemberRepository) {
	paymentRepo := repositories.NewPaymentRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	notifyRepo := repositories.NewNotificationRepository(db)
	notify := NewNotificationService(notifyRepo)
	return NewPaymentService(paymentRepo, memberRepo, notify), paymentRepo, memberRepo
}

func newLoanService(db *gorm.DB) (*LoanService, *repositories.LoanRepository) {
	loanRepo := repositories.NewLoanRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	settingRepo := repositories.NewSettingRepository(db)
	notifyRepo := repositories.NewNotificationRepository(db)
	notify := NewNotificationService(notifyRepo)
	return NewLoanService(loanRepo, memberRepo, settingRepo, notify), loanRepo
}
