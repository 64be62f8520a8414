package services

import (
	"context"
	"errors"
	"log"

	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/adapters/persistence/repositories"
	"masonko-stokvel/internal/core/domain"

	"gorm.io/gorm"
)

// MemberService handles membership record operations.
type MemberService struct {
	memberRepo    repositories.MemberRepository
	notifyService *NotificationService
}

// NewMemberService creates a new member service
func NewMemberService(memberRepo repositories.MemberRepository, notifyService *NotificationService) *MemberService {
	return &MemberService{
		memberRepo:    memberRepo,
		notifyService: notifyService,
	}
}

// ListApproved lists approved members.
func (s *MemberService) ListApproved(ctx context.Context) ([]*models.Member, error) {
	return s.memberRepo.ListApproved(ctx)
}

// ListApprovedPaged lists a page of approved members plus the total count.
func (s *MemberService) ListApprovedPaged(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	return s.memberRepo.ListApprovedPaged(ctx, offset, limit)
}

// ListPending lists members awaiting approval.
func (s *MemberService) ListPending(ctx context.Context) ([]*models.Member, error) {
	return s.memberRepo.ListPending(ctx)
}

// Approve marks a pending registration approved; the member can log in
// from then on.
func (s *MemberService) Approve(ctx context.Context, memberID uint) (*models.Member, error) {
	if err := s.memberRepo.Approve(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}

	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if s.notifyService != nil {
		s.notifyService.NotifyMemberApproved(ctx, member)
	}

	log.Printf("Member approved: %s", member.Name)
	return member, nil
}

// GetProfile returns a member's own record.
func (s *MemberService) GetProfile(ctx context.Context, memberID uint) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}
