package services

import (
	"context"
	"log"
	"time"

	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// ReminderService runs the daily payment-due check: once the configured
// due day of the month has passed, members whose last confirmed payment
// predates the current month are flagged late and notified.
type ReminderService struct {
	memberRepo    repositories.MemberRepository
	settingRepo   repositories.SettingRepository
	notifyService *NotificationService
	cron          *cron.Cron
}

// NewReminderService creates a new reminder service
func NewReminderService(
	memberRepo repositories.MemberRepository,
	settingRepo repositories.SettingRepository,
	notifyService *NotificationService,
) *ReminderService {
	return &ReminderService{
		memberRepo:    memberRepo,
		settingRepo:   settingRepo,
		notifyService: notifyService,
		cron:          cron.New(),
	}
}

// Start schedules the daily check at 09:00
func (s *ReminderService) Start() error {
	if _, err := s.cron.AddFunc("0 9 * * *", func() {
		s.FlagLateMembers(context.Background())
	}); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("ReminderService started (daily 09:00)")
	return nil
}

// Stop stops the scheduler, waiting for a running job to finish
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("ReminderService stopped")
}

// FlagLateMembers marks current members late when the month's due day
// has passed without a confirmed payment this month. Returns the number
// of members flagged.
func (s *ReminderService) FlagLateMembers(ctx context.Context) int {
	now := time.Now()

	dueDay := 1
	if s.settingRepo != nil {
		dueDay = s.settingRepo.GetInt(ctx, models.SettingPaymentDueDay, 1)
	}
	if now.Day() < dueDay {
		return 0
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	members, err := s.memberRepo.ListPaidBefore(ctx, monthStart)
	if err != nil {
		log.Printf("Reminder check failed: %v", err)
		return 0
	}

	flagged := 0
	for _, member := range members {
		if err := s.memberRepo.MarkLate(ctx, member.ID); err != nil {
			log.Printf("Failed to flag member %d late: %v", member.ID, err)
			continue
		}
		if s.notifyService != nil {
			s.notifyService.NotifyPaymentLate(ctx, member)
		}
		flagged++
	}

	if flagged > 0 {
		log.Printf("Flagged %d members late for %s", flagged, now.Format("2006-01"))
	}
	return flagged
}
