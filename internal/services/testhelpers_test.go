package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/motorhub/go-marketplace-backend/internal/auth"
	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
)

// newServiceDB opens a migrated file-backed SQLite database in a temp dir.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	db.Exec("PRAGMA foreign_keys=ON;")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer("test-secret", "test", 15*time.Minute, 24*time.Hour)
}

func mustUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         domain.RoleUser,
	}
	if err := repo.CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return u
}

func mustModel(t *testing.T, db *gorm.DB, brand, model string) *domain.Model {
	t.Helper()
	b, err := repo.CreateBrand(context.Background(), db, brand)
	if err != nil {
		t.Fatalf("create brand: %v", err)
	}
	m, err := repo.CreateModel(context.Background(), db, b.ID, model)
	if err != nil {
		t.Fatalf("create model: %v", err)
	}
	return m
}

func mustListing(t *testing.T, db *gorm.DB, sellerID, modelID string) *domain.Listing {
	t.Helper()
	l := &domain.Listing{
		SellerID:     sellerID,
		ModelID:      modelID,
		BodyType:     domain.BodySedan,
		Transmission: domain.TransmissionManual,
		FuelType:     domain.FuelPetrol,
		Condition:    domain.ConditionUsed,
		Mileage:      40000,
		Price:        12000,
		Year:         2019,
		VIN:          uuid.NewString(),
		IsActive:     true,
	}
	if err := repo.CreateListing(context.Background(), db, l); err != nil {
		t.Fatalf("create listing: %v", err)
	}
	return l
}

// wantFieldError fails the test unless err is a ValidationError naming field.
func wantFieldError(t *testing.T, err error, field string) {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error on %q, got %v", field, err)
	}
	if _, ok := ve.Fields[field]; !ok {
		t.Fatalf("expected field %q named, got %v", field, ve.Fields)
	}
}

// dbChatRepo proxies the package-level chat repository functions; service
// tests run against the real store.
type dbChatRepo struct{}

func (dbChatRepo) CreateChat(ctx context.Context, db *gorm.DB, buyerID, sellerID, listingID string) (*domain.Chat, error) {
	return repo.CreateChat(ctx, db, buyerID, sellerID, listingID)
}

func (dbChatRepo) GetChat(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Chat, error) {
	return repo.GetChat(ctx, db, id, userID)
}

func (dbChatRepo) CountChats(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return repo.CountChats(ctx, db, userID)
}

func (dbChatRepo) ListChatsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Chat, error) {
	return repo.ListChatsPage(ctx, db, userID, offset, limit)
}

func (dbChatRepo) DeleteChat(ctx context.Context, db *gorm.DB, id, userID string) error {
	return repo.DeleteChat(ctx, db, id, userID)
}
