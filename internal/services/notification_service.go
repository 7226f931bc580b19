// Package services – NotificationService
//
// This file implements NotificationService. Notifications are written by
// other services (message fan-out, sold and price-drop events); this
// service exposes the caller-scoped read side and the idempotent bulk
// mark-all-read transition.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
)

// NotificationService implements the use-cases around per-user
// notifications.
type NotificationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// ListPage returns a page of the caller's notifications, newest first, and
// the total count.
func (s *NotificationService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Notification, int64, error) {
	total, err := repo.CountNotifications(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Notification{}, 0, nil
	}
	items, err := repo.ListNotificationsPage(ctx, s.DB, userID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// MarkAllRead flips every unread notification belonging to the caller in
// one atomic update and returns how many rows changed. Re-invoking when
// none are unread affects zero rows and still succeeds.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return repo.MarkAllNotificationsRead(ctx, s.DB, userID)
}
