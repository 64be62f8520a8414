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

// DefaultInterestRate is the annual loan interest percentage used when
// the setting is absent.
const DefaultInterestRate = 10.0

// LoanService handles loan applications and the loan lifecycle:
// pending -> approved -> active -> repaid, or pending -> rejected.
type LoanService struct {
	loanRepo      *repositories.LoanRepository
	memberRepo    repositories.MemberRepository
	settingRepo   repositories.SettingRepository
	notifyService *NotificationService
}

// NewLoanService creates a new loan service
func NewLoanService(
	loanRepo *repositories.LoanRepository,
	memberRepo repositories.MemberRepository,
	settingRepo repositories.SettingRepository,
	notifyService *NotificationService,
) *LoanService {
	return &LoanService{
		loanRepo:      loanRepo,
		memberRepo:    memberRepo,
		settingRepo:   settingRepo,
		notifyService: notifyService,
	}
}

// Outstanding computes the total owed on a loan: simple non-compounding
// interest pro-rated over the term in weeks.
func Outstanding(amount, annualRate float64, termWeeks int) float64 {
	return amount * (1 + (annualRate/100)*(float64(termWeeks)/52))
}

// ApplyInput represents loan application input
type ApplyInput struct {
	Amount  float64 `json:"amount" validate:"required,gt=0"`
	Term    int     `json:"term" validate:"required,gt=0"`
	Details string  `json:"application_details,omitempty"`
}

// Apply submits a loan application. The interest rate is snapshotted
// from settings at application time and the outstanding total is fixed
// up front; the loan stays pending until a reviewer acts on it.
func (s *LoanService) Apply(ctx context.Context, memberID uint, input *ApplyInput) (*models.Loan, error) {
	if input.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", domain.ErrValidation)
	}
	if input.Term <= 0 {
		return nil, fmt.Errorf("%w: term must be greater than 0", domain.ErrValidation)
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

	rate := DefaultInterestRate
	if s.settingRepo != nil {
		rate = s.settingRepo.GetFloat(ctx, models.SettingLoanInterestRate, DefaultInterestRate)
	}

	loan := &models.Loan{
		MemberID:           member.ID,
		Amount:             input.Amount,
		Term:               input.Term,
		Interest:           rate,
		Outstanding:        Outstanding(input.Amount, rate, input.Term),
		Status:             models.LoanStatusPending,
		ApplicationDate:    time.Now(),
		ApplicationDetails: input.Details,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, err
	}

	log.Printf("Loan application submitted: #%d by %s (%.2f over %d weeks)", loan.ID, member.Name, loan.Amount, loan.Term)
	return loan, nil
}

// List returns the loans visible to the caller: admins and loan
// officers see every loan, everyone else only their own.
func (s *LoanService) List(ctx context.Context, caller domain.Identity) ([]*models.Loan, error) {
	if caller.IsLoanReviewer() {
		return s.loanRepo.List(ctx)
	}
	return s.loanRepo.ListByMember(ctx, caller.MemberID)
}

// GetByID returns a loan, enforcing the same visibility rule as List.
func (s *LoanService) GetByID(ctx context.Context, loanID uint, caller domain.Identity) (*models.Loan, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	if !caller.IsLoanReviewer() && loan.MemberID != caller.MemberID {
		return nil, domain.ErrForbidden
	}
	return loan, nil
}

// Approve moves a pending loan to approved. Only pending loans can be
// approved; anything else is ErrInvalidStateTransition and a no-op.
func (s *LoanService) Approve(ctx context.Context, loanID uint, approver domain.Identity) (*models.Loan, error) {
	var approved *models.Loan

	err := s.loanRepo.InTx(ctx, func(tx *repositories.LoanRepository) error {
		loan, err := tx.GetByID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}

		now := time.Now()
		next := now.AddDate(0, 0, 7)
		n, err := tx.MarkApproved(ctx, loanID, approver.MemberID, now, next)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: loan #%d is not pending", domain.ErrInvalidStateTransition, loan.ID)
		}

		loan.Status = models.LoanStatusApproved
		loan.ApprovedBy = &approver.MemberID
		loan.ApprovedAt = &now
		loan.NextPayment = &next

		approved = loan
		return nil
	})

	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) || errors.Is(err, domain.ErrInvalidStateTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
	}

	if s.notifyService != nil {
		s.notifyService.NotifyLoanApproved(ctx, approved)
	}

	log.Printf("Loan approved: #%d by %s", approved.ID, approver.Name)
	return approved, nil
}

// Reject moves a pending loan to the rejected terminal state.
func (s *LoanService) Reject(ctx context.Context, loanID uint, approver domain.Identity, reason string) (*models.Loan, error) {
	var rejected *models.Loan

	err := s.loanRepo.InTx(ctx, func(tx *repositories.LoanRepository) error {
		loan, err := tx.GetByID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}

		n, err := tx.MarkRejected(ctx, loanID, reason)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: loan #%d is not pending", domain.ErrInvalidStateTransition, loan.ID)
		}

		loan.Status = models.LoanStatusRejected
		loan.RejectedReason = reason

		rejected = loan
		return nil
	})

	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) || errors.Is(err, domain.ErrInvalidStateTransition) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
	}

	if s.notifyService != nil {
		s.notifyService.NotifyLoanRejected(ctx, rejected, reason)
	}

	log.Printf("Loan rejected: #%d by %s (%s)", rejected.ID, approver.Name, reason)
	return rejected, nil
}

// RecordRepayment applies a repayment to an approved or active loan.
// Runs as one transaction: the repayment ledger entry and the
// outstanding decrement commit together. When the outstanding reaches
// zero the loan derives the repaid state.
func (s *LoanService) RecordRepayment(ctx context.Context, loanID uint, amount float64, recorder domain.Identity) (*models.Loan, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be greater than 0", domain.ErrValidation)
	}

	var updated *models.Loan

	err := s.loanRepo.InTx(ctx, func(tx *repositories.LoanRepository) error {
		loan, err := tx.GetByID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return err
		}

		n, err := tx.DecrementOutstanding(ctx, loanID, amount)
		if err != nil {
			return err
		}
		if n == 0 {
			// Which guard failed: wrong state, or overpayment.
			if loan.Status != models.LoanStatusApproved && loan.Status != models.LoanStatusActive {
				return fmt.Errorf("%w: loan #%d is %s", domain.ErrInvalidStateTransition, loan.ID, loan.Status)
			}
			return fmt.Errorf("%w: repayment %.2f exceeds outstanding %.2f", domain.ErrValidation, amount, loan.Outstanding)
		}

		repayment := &models.LoanRepayment{
			LoanID:     loan.ID,
			Amount:     amount,
			RecordedBy: recorder.Name,
			Date:       time.Now(),
		}
		if err := tx.CreateRepayment(ctx, repayment); err != nil {
			return err
		}

		loan, err = tx.GetByID(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.Outstanding <= 0 {
			loan.Outstanding = 0
			loan.Status = models.LoanStatusRepaid
			loan.NextPayment = nil
		} else {
			next := time.Now().AddDate(0, 0, 7)
			loan.NextPayment = &next
		}
		if err := tx.Update(ctx, loan); err != nil {
			return err
		}

		updated = loan
		return nil
	})

	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) ||
			errors.Is(err, domain.ErrInvalidStateTransition) ||
			errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
	}

	log.Printf("Loan repayment recorded: #%d %.2f by %s (outstanding %.2f)", updated.ID, amount, recorder.Name, updated.Outstanding)
	return updated, nil
}

// ListRepayments lists repayments for a loan the caller may see.
func (s *LoanService) ListRepayments(ctx context.Context, loanID uint, caller domain.Identity) ([]*models.LoanRepayment, error) {
	if _, err := s.GetByID(ctx, loanID, caller); err != nil {
		return nil, err
	}
	return s.loanRepo.ListRepayments(ctx, loanID)
}
