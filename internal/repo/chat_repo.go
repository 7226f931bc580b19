// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Chat and
// Message models.
//
// A chat is reachable by a caller when the caller is its buyer or its
// seller; every read here bakes that predicate into the WHERE clause, so a
// chat outside the caller's reachable set looks exactly like a missing one.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/motorhub/go-marketplace-backend/internal/domain"
)

// CreateChat inserts a chat row for a buyer, seller, and listing.
func CreateChat(ctx context.Context, db *gorm.DB, buyerID, sellerID, listingID string) (*domain.Chat, error) {
	c := &domain.Chat{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		SellerID:  sellerID,
		ListingID: listingID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetChat fetches a chat by ID if userID participates in it, or ErrNotFound.
func GetChat(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Chat, error) {
	var c domain.Chat
	err := db.WithContext(ctx).
		Preload("Buyer").
		Preload("Seller").
		Preload("Listing").
		Where("id = ? AND (buyer_id = ? OR seller_id = ?)", id, userID, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChatsPage returns a page of the chats userID participates in, newest
// first.
func ListChatsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Chat, error) {
	var out []domain.Chat
	err := db.WithContext(ctx).
		Preload("Buyer").
		Preload("Seller").
		Preload("Listing").
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountChats returns the number of chats userID participates in.
func CountChats(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Count(&total).Error
	return total, err
}

// DeleteChat removes a chat if userID participates in it; its messages
// cascade.
func DeleteChat(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND (buyer_id = ? OR seller_id = ?)", id, userID, userID).
		Delete(&domain.Chat{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateMessage inserts a message row.
func CreateMessage(ctx context.Context, db *gorm.DB, chatID, senderID, content string) (*domain.Message, error) {
	m := &domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// GetMessage fetches a message sent by senderID, or ErrNotFound.
func GetMessage(ctx context.Context, db *gorm.DB, id, senderID string) (*domain.Message, error) {
	var m domain.Message
	err := db.WithContext(ctx).
		Where("id = ? AND sender_id = ?", id, senderID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListChatMessagesPage returns a page of a chat's transcript ordered
// deterministically (CreatedAt ASC, ID ASC). Participation checks belong to
// the caller.
func ListChatMessagesPage(ctx context.Context, db *gorm.DB, chatID string, offset, limit int) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountChatMessages returns the number of messages in a chat.
func CountChatMessages(ctx context.Context, db *gorm.DB, chatID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("chat_id = ?", chatID).
		Count(&total).Error
	return total, err
}

// ListSentMessagesPage returns a page of the messages senderID authored,
// newest first.
func ListSentMessagesPage(ctx context.Context, db *gorm.DB, senderID string, offset, limit int) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("sender_id = ?", senderID).
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountSentMessages returns the number of messages senderID authored.
func CountSentMessages(ctx context.Context, db *gorm.DB, senderID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("sender_id = ?", senderID).
		Count(&total).Error
	return total, err
}

// DeleteMessage removes a message authored by senderID; ErrNotFound
// otherwise.
func DeleteMessage(ctx context.Context, db *gorm.DB, id, senderID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND sender_id = ?", id, senderID).
		Delete(&domain.Message{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
