package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/adapters/persistence/repositories"
	"masonko-stokvel/internal/core/domain"

	"gorm.io/gorm"
)

// PaymentService handles the payment confirmation workflow: submission,
// review and the atomic approval transition that moves money from a
// pending claim into the contribution ledger and the member's balance.
type PaymentService struct {
	paymentRepo   *repositories.PaymentRepository
	memberRepo    repositories.MemberRepository
	notifyService *NotificationService
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo *repositories.PaymentRepository,
	memberRepo repositories.MemberRepository,
	notifyService *NotificationService,
) *PaymentService {
	return &PaymentService{
		paymentRepo:   paymentRepo,
		memberRepo:    memberRepo,
		notifyService: notifyService,
	}
}

// SubmitPaymentInput represents payment submission input
type SubmitPaymentInput struct {
	Amount         float64 `json:"amount" validate:"required,gt=0"`
	Method         string  `json:"method" validate:"required"`
	Reference      string  `json:"reference,omitempty"`
	Date           string  `json:"date" validate:"required"`
	Notes          string  `json:"notes,omitempty"`
	ProofPath      string  `json:"-"`
	IdempotencyKey string  `json:"idempotency_key,omitempty"`
}

// Submit records a member's claim that a contribution was made. The
// payment lands in the pending queue with no effect on the member's
// balance or the contribution ledger until an approver confirms it.
// A repeated idempotency key returns the earlier submission instead of
// creating a duplicate.
func (s *PaymentService) Submit(ctx context.Context, memberID uint, input *SubmitPaymentInput) (*models.PendingPayment, error) {
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", domain.ErrValidation)
	}
	if input.Method == "" {
		return nil, fmt.Errorf("%w: method is required", domain.ErrValidation)
	}

	date, err := time.Parse("2006-01-02", input.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date format, use YYYY-MM-DD", domain.ErrValidation)
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	if !member.Approved {
		return nil, fmt.Errorf("%w: account not yet approved", domain.ErrForbidden)
	}

	if input.IdempotencyKey != "" {
		existing, err := s.paymentRepo.GetByIdempotencyKey(ctx, input.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	payment := &models.PendingPayment{
		MemberID:   member.ID,
		MemberName: member.Name,
		Amount:     input.Amount,
		Method:     input.Method,
		Reference:  input.Reference,
		Date:       date,
		Notes:      input.Notes,
		ProofPath:  input.ProofPath,
		Status:     models.PaymentStatusPending,
	}
	if input.IdempotencyKey != "" {
		payment.IdempotencyKey = &input.IdempotencyKey
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	log.Printf("Payment submitted: #%d by %s (%.2f via %s)", payment.ID, member.Name, payment.Amount, payment.Method)
	return payment, nil
}

// ListPending lists payments awaiting review, oldest first.
func (s *PaymentService) ListPending(ctx context.Context) ([]*models.PendingPayment, error) {
	return s.paymentRepo.ListPending(ctx)
}

// ListByMember lists a member's own submissions.
func (s *PaymentService) ListByMember(ctx context.Context, memberID uint) ([]*models.PendingPayment, error) {
	return s.paymentRepo.ListByMember(ctx, memberID)
}

// Approve confirms a pending payment. The whole transition runs as one
// database transaction:
//
//  1. the payment moves pending -> confirmed through a guarded update,
//     so of two racing approvers exactly one wins and the other gets
//     ErrInvalidStateTransition,
//  2. a contribution ledger entry is appended, and
//  3. the member's balance is credited in SQL.
//
// On any failure the store rolls everything back and the payment stays
// pending; the caller sees ErrTransactionFailed and may retry.
func (s *PaymentService) Approve(ctx context.Context, paymentID uint, approver domain.Identity) (*models.PendingPayment, error) {
	var approved *models.PendingPayment

	err := s.paymentRepo.InTx(ctx, func(tx *repositories.PaymentRepository) error {
		payment, err := tx.GetByID(ctx, paymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPaymentNotFound
			}
			return err
		}

		now := time.Now()
		n, err := tx.MarkConfirmed(ctx, paymentID, approver.Name, now)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: payment #%d is not pending", domain.ErrInvalidStateTransition, payment.ID)
		}

		payment.Status = models.PaymentStatusConfirmed
		payment.ConfirmedBy = approver.Name
		payment.ConfirmedDate = &now

		contribution := &models.Contribution{
			MemberID:   payment.MemberID,
			PaymentID:  payment.ID,
			Amount:     payment.Amount,
			Method:     payment.Method,
			Reference:  payment.Reference,
			ProofPath:  payment.ProofPath,
			Date:       payment.Date,
			RecordedBy: approver.Name,
			Status:     models.PaymentStatusConfirmed,
		}
		if err := tx.CreateContribution(ctx, contribution); err != nil {
			return err
		}

		if err := tx.ApplyBalance(ctx, payment.MemberID, payment.Amount, payment.Date); err != nil {
			return err
		}

		approved = payment
		return nil
	})

	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) || errors.Is(err, domain.ErrInvalidStateTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
	}

	if s.notifyService != nil {
		s.notifyService.NotifyPaymentConfirmed(ctx, approved)
	}

	log.Printf("Payment approved: #%d by %s (%.2f)", approved.ID, approver.Name, approved.Amount)
	return approved, nil
}

// Reject moves a pending payment to the rejected terminal state. No
// contribution is written and the member's balance is untouched.
func (s *PaymentService) Reject(ctx context.Context, paymentID uint, approver domain.Identity, reason string) (*models.PendingPayment, error) {
	var rejected *models.PendingPayment

	err := s.paymentRepo.InTx(ctx, func(tx *repositories.PaymentRepository) error {
		payment, err := tx.GetByID(ctx, paymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPaymentNotFound
			}
			return err
		}

		now := time.Now()
		n, err := tx.MarkRejected(ctx, paymentID, approver.Name, reason, now)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: payment #%d is not pending", domain.ErrInvalidStateTransition, payment.ID)
		}

		payment.Status = models.PaymentStatusRejected
		payment.ConfirmedBy = approver.Name
		payment.ConfirmedDate = &now
		payment.RejectedReason = reason

		rejected = payment
		return nil
	})

	if err != nil {
		if errors.Is(err, domain.ErrPaymentNotFound) || errors.Is(err, domain.ErrInvalidStateTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
	}

	if s.notifyService != nil {
		s.notifyService.NotifyPaymentRejected(ctx, rejected, reason)
	}

	log.Printf("Payment rejected: #%d by %s (%s)", rejected.ID, approver.Name, reason)
	return rejected, nil
}

// ListContributions lists the confirmed contribution ledger for a member.
func (s *PaymentService) ListContributions(ctx context.Context, memberID uint) ([]*models.Contribution, error) {
	return s.paymentRepo.ListContributionsByMember(ctx, memberID)
}
