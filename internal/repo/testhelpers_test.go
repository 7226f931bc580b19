package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
)

// newRepoDB opens a file-backed SQLite database in a temp dir with the full
// schema migrated and foreign keys enforced.
func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// One pooled connection so the PRAGMA applies to every statement.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	db.Exec("PRAGMA foreign_keys=ON;")

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         domain.RoleUser,
	}
	if err := CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("seed user %q: %v", username, err)
	}
	return u
}

func seedCatalog(t *testing.T, db *gorm.DB, brandName, modelName string) (*domain.Brand, *domain.Model) {
	t.Helper()
	b, err := CreateBrand(context.Background(), db, brandName)
	if err != nil {
		t.Fatalf("seed brand %q: %v", brandName, err)
	}
	m, err := CreateModel(context.Background(), db, b.ID, modelName)
	if err != nil {
		t.Fatalf("seed model %q: %v", modelName, err)
	}
	return b, m
}

// seedListing inserts an active Used petrol sedan with a random VIN unless
// the caller mutates the template first via mut.
func seedListing(t *testing.T, db *gorm.DB, sellerID, modelID string, mut func(*domain.Listing)) *domain.Listing {
	t.Helper()
	l := &domain.Listing{
		SellerID:     sellerID,
		ModelID:      modelID,
		BodyType:     domain.BodySedan,
		Transmission: domain.TransmissionManual,
		FuelType:     domain.FuelPetrol,
		Condition:    domain.ConditionUsed,
		Mileage:      50000,
		Price:        10000,
		Year:         2018,
		VIN:          uuid.NewString(),
		IsActive:     true,
	}
	if mut != nil {
		mut(l)
	}
	if err := CreateListing(context.Background(), db, l); err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return l
}
