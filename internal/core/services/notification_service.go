package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/adapters/persistence/repositories"
)

// Notification types
const (
	NotifyTypePayment  = "payment"
	NotifyTypeLoan     = "loan"
	NotifyTypeMember   = "member"
	NotifyTypeReminder = "reminder"
)

// NotificationService writes user-facing notifications. Failures are
// logged and swallowed: a missed notification never fails the operation
// that produced it.
type NotificationService struct {
	notificationRepo *repositories.NotificationRepository
}

// NewNotificationService creates a new notification service
func NewNotificationService(notificationRepo *repositories.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

func (s *NotificationService) create(ctx context.Context, userID *uint, notifyType, title, message string) {
	notification := &models.Notification{
		UserID:  userID,
		Type:    notifyType,
		Title:   title,
		Message: message,
		Time:    time.Now().Format("2006-01-02 15:04"),
		Unread:  true,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		log.Printf("Failed to create notification %q: %v", title, err)
	}
}

// NotifyPaymentConfirmed tells a member their payment was confirmed
func (s *NotificationService) NotifyPaymentConfirmed(ctx context.Context, payment *models.PendingPayment) {
	s.create(ctx, &payment.MemberID, NotifyTypePayment,
		"Payment confirmed",
		fmt.Sprintf("Your payment of R%.2f (%s) has been confirmed.", payment.Amount, payment.Method))
}

// NotifyPaymentRejected tells a member their payment was rejected
func (s *NotificationService) NotifyPaymentRejected(ctx context.Context, payment *models.PendingPayment, reason string) {
	s.create(ctx, &payment.MemberID, NotifyTypePayment,
		"Payment rejected",
		fmt.Sprintf("Your payment of R%.2f was rejected: %s", payment.Amount, reason))
}

// NotifyLoanApproved tells a member their loan was approved
func (s *NotificationService) NotifyLoanApproved(ctx context.Context, loan *models.Loan) {
	s.create(ctx, &loan.MemberID, NotifyTypeLoan,
		"Loan approved",
		fmt.Sprintf("Your loan of R%.2f over %d weeks has been approved.", loan.Amount, loan.Term))
}

// NotifyLoanRejected tells a member their loan was rejected
func (s *NotificationService) NotifyLoanRejected(ctx context.Context, loan *models.Loan, reason string) {
	s.create(ctx, &loan.MemberID, NotifyTypeLoan,
		"Loan rejected",
		fmt.Sprintf("Your loan application of R%.2f was rejected: %s", loan.Amount, reason))
}

// NotifyMemberApproved welcomes a newly approved member
func (s *NotificationService) NotifyMemberApproved(ctx context.Context, member *models.Member) {
	s.create(ctx, &member.ID, NotifyTypeMember,
		"Membership approved",
		fmt.Sprintf("Welcome %s, your membership has been approved. You can now log in.", member.Name))
}

// NotifyPaymentLate warns a member their contribution is overdue
func (s *NotificationService) NotifyPaymentLate(ctx context.Context, member *models.Member) {
	s.create(ctx, &member.ID, NotifyTypeReminder,
		"Contribution overdue",
		"Your monthly contribution is overdue. Please submit your payment to avoid a late fee.")
}

// ListForUser lists a user's notifications plus broadcasts
func (s *NotificationService) ListForUser(ctx context.Context, userID uint) ([]*models.Notification, error) {
	return s.notificationRepo.ListForUser(ctx, userID)
}

// MarkRead marks a notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id uint) error {
	return s.notificationRepo.MarkRead(ctx, id)
}
