// Package services – ChatService
//
// This file implements the ChatService, which manages conversations between
// a buyer and the seller of a listing. Creating a chat stamps the buyer
// from the authenticated caller and resolves the seller and listing from
// the listing row; a caller cannot open a chat on their own listing. The
// reachable set for a caller is the union of chats where they are buyer or
// seller, and the full transcript of a chat is readable by either
// participant (a deliberate product decision: the conversation is a shared
// document of its two parties).
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
	"github.com/motorhub/go-marketplace-backend/internal/repo"
)

// ChatRepo defines the repository contract required by ChatService.
// Implementations are responsible for persistence of chat aggregates.
type ChatRepo interface {
	// CreateChat inserts a new chat row for the given participants.
	CreateChat(ctx context.Context, db *gorm.DB, buyerID, sellerID, listingID string) (*domain.Chat, error)

	// GetChat fetches a chat by ID ensuring userID participates in it.
	GetChat(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Chat, error)

	// CountChats returns the total number of chats for pagination.
	CountChats(ctx context.Context, db *gorm.DB, userID string) (int64, error)

	// ListChatsPage returns a page of chats involving the user.
	ListChatsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Chat, error)

	// DeleteChat removes a chat the user participates in.
	DeleteChat(ctx context.Context, db *gorm.DB, id, userID string) error
}

// ChatService provides chat-level operations: opening a conversation about
// a listing, listing the caller's conversations, and reading transcripts.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the chat repository used by this service.
	Repo ChatRepo
}

// NewChatService constructs a ChatService.
func NewChatService(db *gorm.DB, r ChatRepo) *ChatService {
	return &ChatService{DB: db, Repo: r}
}

// Create opens a chat about listingID with buyerID stamped from the caller.
// The seller comes from the listing row, never from the payload.
func (s *ChatService) Create(ctx context.Context, buyerID, listingID string) (*domain.Chat, error) {
	l, err := repo.GetListing(ctx, s.DB, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	if l.SellerID == buyerID {
		return nil, ErrChatWithSelf
	}
	c, err := s.Repo.CreateChat(ctx, s.DB, buyerID, l.SellerID, listingID)
	if err != nil {
		return nil, err
	}
	return s.Repo.GetChat(ctx, s.DB, c.ID, buyerID)
}

// Get returns a chat the caller participates in.
func (s *ChatService) Get(ctx context.Context, id, userID string) (*domain.Chat, error) {
	c, err := s.Repo.GetChat(ctx, s.DB, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListPage returns a page of the caller's chats and the total count.
func (s *ChatService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Chat, int64, error) {
	total, err := s.Repo.CountChats(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Chat{}, 0, nil
	}
	items, err := s.Repo.ListChatsPage(ctx, s.DB, userID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Transcript returns a page of a chat's full message history for either
// participant, oldest first, plus the total count.
func (s *ChatService) Transcript(ctx context.Context, chatID, userID string, page, pageSize int) ([]domain.Message, int64, error) {
	if _, err := s.Repo.GetChat(ctx, s.DB, chatID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrChatNotFound
		}
		return nil, 0, err
	}
	total, err := repo.CountChatMessages(ctx, s.DB, chatID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}
	items, err := repo.ListChatMessagesPage(ctx, s.DB, chatID, (page-1)*pageSize, pageSize)
	return items, total, err
}

// Delete removes a chat the caller participates in; messages cascade.
func (s *ChatService) Delete(ctx context.Context, id, userID string) error {
	if err := s.Repo.DeleteChat(ctx, s.DB, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChatNotFound
		}
		return err
	}
	return nil
}
