package config

import (
	"log"
	"time"

	"masonko-stokvel/internal/adapters/persistence/models"
	"masonko-stokvel/internal/pkg/password"

	"gorm.io/gorm"
)

// SeedDefaults creates the default admin and treasurer accounts plus the
// club settings on an empty database. Runs once; an already-populated
// members table is left alone.
func SeedDefaults(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Member{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	adminPassword, err := password.Hash("admin123")
	if err != nil {
		return err
	}
	treasurerPassword, err := password.Hash("treasurer123")
	if err != nil {
		return err
	}

	adminJoined := time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)
	treasurerJoined := time.Date(2024, 2, 20, 0, 0, 0, 0, time.Local)

	members := []*models.Member{
		{
			Name:     "Admin User",
			Email:    "admin@masonko.com",
			Phone:    "0821234567",
			Password: adminPassword,
			Role:     models.RoleAdmin,
			Tier:     3,
			Shares:   3,
			Joined:   adminJoined,
			Status:   models.MemberStatusCurrent,
			Approved: true,
		},
		{
			Name:     "Treasurer User",
			Email:    "treasurer@masonko.com",
			Phone:    "0832345678",
			Password: treasurerPassword,
			Role:     models.RoleTreasurer,
			Tier:     2,
			Shares:   2,
			Joined:   treasurerJoined,
			Status:   models.MemberStatusCurrent,
			Approved: true,
		},
	}

	if err := db.Create(&members).Error; err != nil {
		return err
	}

	settings := []*models.Setting{
		{Key: models.SettingClubName, Value: "Masonko Stokvel-Guptas"},
		{Key: models.SettingLateFee, Value: "50"},
		{Key: models.SettingLoanInterestRate, Value: "10"},
		{Key: models.SettingPaymentDueDay, Value: "1"},
	}

	if err := db.Create(&settings).Error; err != nil {
		return err
	}

	log.Println("Default members and settings seeded")
	return nil
}
