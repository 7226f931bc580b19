package services

import (
	"context"
	"testing"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
)

func TestNotification_ListAndMarkAllRead(t *testing.T) {
	db := newServiceDB(t)
	svc := &NotificationService{DB: db}
	ctx := context.Background()
	u := mustUser(t, db, "reader")
	other := mustUser(t, db, "other")

	for i := 0; i < 3; i++ {
		if _, err := repo.CreateNotification(ctx, db, u.ID, domain.NotificationMessage, "ping"); err != nil {
			t.Fatalf("CreateNotification: %v", err)
		}
	}
	if _, err := repo.CreateNotification(ctx, db, other.ID, domain.NotificationMessage, "ping"); err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}

	items, total, err := svc.ListPage(ctx, u.ID, 1, 20)
	if err != nil || total != 3 || len(items) != 3 {
		t.Fatalf("ListPage: items=%d total=%d err=%v", len(items), total, err)
	}
	for _, n := range items {
		if n.IsRead {
			t.Fatalf("expected unread notification: %+v", n)
		}
	}

	marked, err := svc.MarkAllRead(ctx, u.ID)
	if err != nil || marked != 3 {
		t.Fatalf("MarkAllRead: marked=%d err=%v", marked, err)
	}
	marked, err = svc.MarkAllRead(ctx, u.ID)
	if err != nil || marked != 0 {
		t.Fatalf("MarkAllRead second pass: marked=%d err=%v", marked, err)
	}

	items, _, err = svc.ListPage(ctx, other.ID, 1, 20)
	if err != nil || len(items) != 1 || items[0].IsRead {
		t.Fatalf("other user's notification should stay unread: %+v err=%v", items, err)
	}
}
