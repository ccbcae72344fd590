package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"chacha-backend/internal/model"
)

type ChatRepository struct {
	db *gorm.DB
}

// UserChatCount is one row of the per-user chat statistics.
type UserChatCount struct {
	UserEmail string `json:"user_email"`
	Count     int64  `json:"count"`
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

func (r *ChatRepository) GetByUserAndChatID(email, chatID string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.Where("user_email = ? AND chat_id = ?", email, chatID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query chat failed: %w", err)
	}
	return &chat, nil
}

func (r *ChatRepository) GetByUserAndTitle(email, title string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.Where("user_email = ? AND title = ?", email, title).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query chat by title failed: %w", err)
	}
	return &chat, nil
}

func (r *ChatRepository) ListByUser(email string) ([]model.Chat, error) {
	var chats []model.Chat
	if err := r.db.Where("user_email = ?", email).Order("updated_at DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list chats failed: %w", err)
	}
	return chats, nil
}

// Upsert replaces the chat identified by (user, chat id), inserting if absent.
func (r *ChatRepository) Upsert(chat *model.Chat) error {
	existing, err := r.GetByUserAndChatID(chat.UserEmail, chat.ChatID)
	if err != nil {
		return err
	}
	if existing == nil {
		if err := r.db.Create(chat).Error; err != nil {
			return fmt.Errorf("create chat failed: %w", err)
		}
		return nil
	}
	chat.ID = existing.ID
	chat.CreatedAt = existing.CreatedAt
	if err := r.db.Save(chat).Error; err != nil {
		return fmt.Errorf("update chat failed: %w", err)
	}
	return nil
}

// DeleteByUserAndChatID returns whether a row was removed.
func (r *ChatRepository) DeleteByUserAndChatID(email, chatID string) (bool, error) {
	res := r.db.Where("user_email = ? AND chat_id = ?", email, chatID).Delete(&model.Chat{})
	if res.Error != nil {
		return false, fmt.Errorf("delete chat failed: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *ChatRepository) DeleteAllByUser(email string) (int64, error) {
	res := r.db.Where("user_email = ?", email).Delete(&model.Chat{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete all chats failed: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ChatRepository) ListAll() ([]model.Chat, error) {
	var chats []model.Chat
	if err := r.db.Order("updated_at DESC").Find(&chats).Error; err != nil {
		return nil, fmt.Errorf("list all chats failed: %w", err)
	}
	return chats, nil
}

func (r *ChatRepository) CountAll() (int64, error) {
	var total int64
	if err := r.db.Model(&model.Chat{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count chats failed: %w", err)
	}
	return total, nil
}

// CountPerUser groups chats by owner, most active first.
func (r *ChatRepository) CountPerUser() ([]UserChatCount, error) {
	var rows []UserChatCount
	err := r.db.Model(&model.Chat{}).
		Select("user_email, COUNT(*) AS count").
		Group("user_email").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count chats per user failed: %w", err)
	}
	return rows, nil
}
