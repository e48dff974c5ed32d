package services

import (
	"testing"

	"settlement-service/internal/database"
	"settlement-service/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens a throwaway in-memory database with the production
// schema. Single connection so every query sees the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.MigrateWith(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, sponsorID *string) *models.User {
	t.Helper()
	user := models.User{Name: name, MemberId: "M-" + name, SponsorId: sponsorID}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", name, err)
	}
	return &user
}

func createPlan(t *testing.T, db *gorm.DB, name string, principal float64, months int, rate float64) *models.Plan {
	t.Helper()
	plan := models.Plan{
		Name:            name,
		PrincipalAmount: principal,
		DurationMonths:  months,
		AnnualRate:      rate,
		Active:          true,
	}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatalf("Failed to create plan %s: %v", name, err)
	}
	return &plan
}
