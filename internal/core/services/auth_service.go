package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/adapters/persistence/repositories"
	"masonko-stokvel/internal/config"
	"masonko-stokvel/internal/core/domain"
	"masonko-stokvel/internal/pkg/jwt"
	"masonko-stokvel/internal/pkg/password"

	"gorm.io/gorm"
)

// AuthService handles registration and login.
type AuthService struct {
	memberRepo repositories.MemberRepository
	cfg        *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(memberRepo repositories.MemberRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		memberRepo: memberRepo,
		cfg:        cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Tier     int    `json:"tier" validate:"required,min=1,max=3"`
}

// LoginInput represents login input. Identifier is email or phone.
type LoginInput struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Member *models.MemberResponse `json:"user"`
	Token  string                 `json:"token"`
}

// Register creates an unapproved member account. Shares equal the
// chosen tier; the account stays pending until an approver confirms it
// and cannot log in before then.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.Member, error) {
	if input.Name == "" || input.Email == "" || input.Phone == "" {
		return nil, fmt.Errorf("%w: name, email and phone are required", domain.ErrValidation)
	}
	if input.Tier < 1 || input.Tier > 3 {
		return nil, fmt.Errorf("%w: tier must be between 1 and 3", domain.ErrValidation)
	}
	if !password.Validate(input.Password) {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, password.MinLength)
	}

	exists, err := s.memberRepo.ExistsByEmailOrPhone(ctx, input.Email, input.Phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAccountExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	member := &models.Member{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: hashed,
		Role:     models.RoleMember,
		Tier:     input.Tier,
		Shares:   input.Tier,
		Balance:  0,
		Joined:   time.Now(),
		Status:   models.MemberStatusPending,
		Approved: false,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	log.Printf("Member registered: %s (tier %d), awaiting approval", member.Name, member.Tier)
	return member, nil
}

// Login authenticates a member by email or phone. Unapproved accounts
// are refused before the password check result is revealed.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	member, err := s.memberRepo.GetByEmailOrPhone(ctx, input.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !member.Approved {
		return nil, domain.ErrAccountPending
	}

	if !password.Verify(input.Password, member.Password) {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := jwt.GenerateAccessToken(member.ID, member.Name, member.Role, s.cfg.JWT.Secret, s.cfg.JWT.ExpiryHours)
	if err != nil {
		return nil, err
	}

	log.Printf("Member logged in: %s (%s)", member.Name, member.Role)
	return &AuthResponse{
		Member: member.ToResponse(),
		Token:  token,
	}, nil
}
