package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Membership
// ============================================================

// Member roles
const (
	RoleMember      = "member"
	RoleTreasurer   = "treasurer"
	RoleAdmin       = "admin"
	RoleLoanOfficer = "loan-officer"
)

// Member statuses
const (
	MemberStatusPending = "pending"
	MemberStatusCurrent = "current"
	MemberStatusLate    = "late"
)

// Member represents the members table. A member record doubles as the
// login account; Approved gates login until an admin or treasurer
// confirms the registration.
type Member struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Email       string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone       string         `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	Password    string         `gorm:"size:255;not null" json:"-"`
	Role        string         `gorm:"size:20;not null;default:'member'" json:"role"`
	Tier        int            `gorm:"not null" json:"tier"`
	Shares      int            `gorm:"not null" json:"shares"`
	Balance     float64        `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	Joined      time.Time      `gorm:"type:date;not null" json:"joined"`
	LastPayment *time.Time     `gorm:"type:date" json:"last_payment"`
	Status      string         `gorm:"size:20;not null;default:'current'" json:"status"`
	Approved    bool           `gorm:"default:false" json:"approved"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Member) TableName() string {
	return "members"
}

// MemberResponse DTO
type MemberResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Role        string     `json:"role"`
	Tier        int        `json:"tier"`
	Shares      int        `json:"shares"`
	Balance     float64    `json:"balance"`
	Joined      time.Time  `json:"joined"`
	LastPayment *time.Time `json:"last_payment"`
	Status      string     `json:"status"`
	Approved    bool       `json:"approved"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (m *Member) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		Role:        m.Role,
		Tier:        m.Tier,
		Shares:      m.Shares,
		Balance:     m.Balance,
		Joined:      m.Joined,
		LastPayment: m.LastPayment,
		Status:      m.Status,
		Approved:    m.Approved,
		CreatedAt:   m.CreatedAt,
	}
}

// IsApprover reports whether the member may review payments and pending
// registrations.
func (m *Member) IsApprover() bool {
	return m.Role == RoleAdmin || m.Role == RoleTreasurer
}

// ============================================================
// Payment workflow
// ============================================================

// PendingPayment statuses. A payment is mutable only while pending;
// confirmed and rejected are terminal.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusRejected  = "rejected"
)

// PendingPayment represents the pending_payments table: a member's claim
// that a contribution was made, awaiting treasurer review.
type PendingPayment struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	MemberID       uint       `gorm:"not null;index" json:"member_id"`
	MemberName     string     `gorm:"size:100;not null" json:"member_name"`
	Amount         float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Method         string     `gorm:"size:50;not null" json:"method"`
	Reference      string     `gorm:"size:100" json:"reference"`
	Date           time.Time  `gorm:"type:date;not null" json:"date"`
	Notes          string     `gorm:"type:text" json:"notes"`
	ProofPath      string     `gorm:"size:255" json:"proof_path"`
	IdempotencyKey *string    `gorm:"size:64;uniqueIndex" json:"idempotency_key,omitempty"`
	Status         string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	SubmittedDate  time.Time  `gorm:"autoCreateTime" json:"submitted_date"`
	ConfirmedBy    string     `gorm:"size:100" json:"confirmed_by,omitempty"`
	ConfirmedDate  *time.Time `json:"confirmed_date,omitempty"`
	RejectedReason string     `gorm:"type:text" json:"rejected_reason,omitempty"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (PendingPayment) TableName() string {
	return "pending_payments"
}

// IsTerminal reports whether the payment has reached a final state.
func (p *PendingPayment) IsTerminal() bool {
	return p.Status != PaymentStatusPending
}

// Contribution represents the contributions table: the append-only
// ledger of confirmed payments. Exactly one row exists per confirmed
// PendingPayment (PaymentID is unique).
type Contribution struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MemberID   uint      `gorm:"not null;index" json:"member_id"`
	PaymentID  uint      `gorm:"not null;uniqueIndex" json:"payment_id"`
	Amount     float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	Method     string    `gorm:"size:50;not null" json:"method"`
	Reference  string    `gorm:"size:100" json:"reference"`
	ProofPath  string    `gorm:"size:255" json:"proof_path"`
	Date       time.Time `gorm:"type:date;not null" json:"date"`
	RecordedBy string    `gorm:"size:100" json:"recorded_by"`
	Status     string    `gorm:"size:20;not null;default:'confirmed'" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

func (Contribution) TableName() string {
	return "contributions"
}

// ============================================================
// Loans
// ============================================================

// Loan statuses
const (
	LoanStatusPending  = "pending"
	LoanStatusApproved = "approved"
	LoanStatusRejected = "rejected"
	LoanStatusActive   = "active"
	LoanStatusRepaid   = "repaid"
)

// Loan represents the loans table. Interest is the annual rate
// snapshotted at application time; Outstanding carries the simple
// pro-rated total and is decremented by repayments.
type Loan struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	MemberID           uint       `gorm:"not null;index" json:"member_id"`
	Amount             float64    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Term               int        `gorm:"not null" json:"term"`
	Interest           float64    `gorm:"type:decimal(5,2);not null" json:"interest"`
	Outstanding        float64    `gorm:"type:decimal(15,2);not null" json:"outstanding"`
	NextPayment        *time.Time `gorm:"type:date" json:"next_payment"`
	Status             string     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ApplicationDate    time.Time  `gorm:"type:date;not null" json:"application_date"`
	ApplicationDetails string     `gorm:"type:text" json:"application_details"`
	ApprovedBy         *uint      `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	RejectedReason     string     `gorm:"type:text" json:"rejected_reason,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Member     *Member         `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Repayments []LoanRepayment `gorm:"foreignKey:LoanID" json:"repayments,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// IsTerminal reports whether the loan can no longer change state.
func (l *Loan) IsTerminal() bool {
	return l.Status == LoanStatusRejected || l.Status == LoanStatusRepaid
}

// LoanRepayment represents the loan_repayments table: the append-only
// ledger of repayment events against a loan.
type LoanRepayment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LoanID     uint      `gorm:"not null;index" json:"loan_id"`
	Amount     float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	RecordedBy string    `gorm:"size:100" json:"recorded_by"`
	Date       time.Time `gorm:"type:date;not null" json:"date"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Loan *Loan `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
}

func (LoanRepayment) TableName() string {
	return "loan_repayments"
}

// ============================================================
// Notifications & Chat
// ============================================================

// Notification represents the notifications table. A nil UserID means
// the notification is broadcast to every member.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	Type      string    `gorm:"size:50;not null" json:"type"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Time      string    `gorm:"size:50;not null" json:"time"`
	Unread    bool      `gorm:"default:true" json:"unread"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// ChatMessage represents the chat_messages table (single group chat).
type ChatMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Sender    string    `gorm:"size:100;not null" json:"sender"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Time      string    `gorm:"size:50;not null" json:"time"`
	IsSent    bool      `gorm:"default:false" json:"is_sent"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// ============================================================
// Settings
// ============================================================

// Setting keys seeded on first start
const (
	SettingClubName         = "clubName"
	SettingLateFee          = "lateFee"
	SettingLoanInterestRate = "loanInterestRate"
	SettingPaymentDueDay    = "paymentDueDay"
)

// Setting represents the settings key/value table.
type Setting struct {
	Key   string `gorm:"primaryKey;size:50" json:"key"`
	Value string `gorm:"size:255;not null" json:"value"`
}

func (Setting) TableName() string {
	return "settings"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Member{},
		&PendingPayment{},
		&Contribution{},
		&Loan{},
		&LoanRepayment{},
		&Notification{},
		&ChatMessage{},
		&Setting{},
	)
}
