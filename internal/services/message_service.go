// Package services – MessageService
//
// This file implements MessageService, which owns the lifecycle of chat
// messages. Sending stamps the sender from the authenticated caller, admits
// only the chat's two participants, and notifies the counterpart in the
// same transaction. The message collection endpoints stay scoped to the
// caller's own sent messages; reading a full conversation goes through
// ChatService.Transcript.
package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MessageService coordinates message persistence and the counterpart
// notification fan-out.
type MessageService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// MaxContentRunes caps message bodies by rune length; 0 disables it.
	MaxContentRunes int
}

// NewMessageService constructs a MessageService with a default body cap.
func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{DB: db, MaxContentRunes: 4000}
}

// Send validates the body, verifies the caller participates in the chat,
// persists the message with the sender stamped from the caller, and writes
// a "message" notification for the counterpart atomically.
func (s *MessageService) Send(ctx context.Context, senderID, chatID, content string) (*domain.Message, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("user.id", senderID),
		),
	)
	defer span.End()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxContentRunes > 0 && utf8.RuneCountInString(content) > s.MaxContentRunes {
		return nil, NewValidationError("content", "too long")
	}

	chat, err := repo.GetChat(ctx, s.DB, chatID, senderID)
	if err != nil {
		return nil, ErrChatNotFound
	}

	counterpart := chat.BuyerID
	if senderID == chat.BuyerID {
		counterpart = chat.SellerID
	}

	var msg *domain.Message
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := repo.CreateMessage(ctx, tx, chatID, senderID, content)
		if err != nil {
			return err
		}
		msg = m
		_, err = repo.CreateNotification(ctx, tx, counterpart, domain.NotificationMessage,
			"New message about "+chat.Listing.VIN)
		return err
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Get returns one of the caller's own sent messages.
func (s *MessageService) Get(ctx context.Context, id, senderID string) (*domain.Message, error) {
	m, err := repo.GetMessage(ctx, s.DB, id, senderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return m, nil
}

// ListPage returns a page of the caller's own sent messages and the total
// count. Messages received from counterparts are read via the chat
// transcript instead.
func (s *MessageService) ListPage(ctx context.Context, senderID string, page, pageSize int) ([]domain.Message, int64, error) {
	total, err := repo.CountSentMessages(ctx, s.DB, senderID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}
	items, err := repo.ListSentMessagesPage(ctx, s.DB, senderID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Delete removes one of the caller's own sent messages.
func (s *MessageService) Delete(ctx context.Context, id, senderID string) error {
	if err := repo.DeleteMessage(ctx, s.DB, id, senderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	return nil
}
