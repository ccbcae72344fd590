package app

import (
	"context"
	"errors"
	"log"

	"chacha-backend/internal/cache"
	"chacha-backend/internal/model"
	"chacha-backend/internal/repository"
)

var (
	ErrChatNotFound        = errors.New("chat not found")
	ErrWelcomeChatConflict = errors.New("welcome chat already exists")
)

// ChatService stores client-owned chat transcripts. The Redis list cache is
// strictly an accelerator: every cache failure degrades to a DB read.
type ChatService struct {
	chats     *repository.ChatRepository
	listCache *cache.ChatListCache
}

// ChatStats is the admin aggregate view.
type ChatStats struct {
	TotalChats int64                      `json:"total_chats"`
	PerUser    []repository.UserChatCount `json:"per_user"`
}

func NewChatService(chats *repository.ChatRepository, listCache *cache.ChatListCache) *ChatService {
	return &ChatService{chats: chats, listCache: listCache}
}

// Save upserts one chat. A second chat titled "Welcome Chat" with a different
// id is rejected so re-onboarding clients do not duplicate it.
func (s *ChatService) Save(ctx context.Context, email string, chat *model.Chat) error {
	chat.UserEmail = email

	if chat.Title == model.WelcomeChatTitle {
		existing, err := s.chats.GetByUserAndTitle(email, model.WelcomeChatTitle)
		if err != nil {
			return err
		}
		if existing != nil && existing.ChatID != chat.ChatID {
			return ErrWelcomeChatConflict
		}
	}

	if err := s.chats.Upsert(chat); err != nil {
		return err
	}
	s.invalidateList(ctx, email)
	return nil
}

// List returns the user's chats, newest first, through the Redis cache.
func (s *ChatService) List(ctx context.Context, email string) ([]model.Chat, error) {
	if s.listCache != nil {
		dirty, err := s.listCache.IsDirty(ctx, email)
		if err != nil {
			log.Printf("chat list dirty check failed: %v", err)
		} else if !dirty {
			if chats, hit, err := s.listCache.GetList(ctx, email); err != nil {
				log.Printf("chat list cache read failed: %v", err)
			} else if hit {
				return chats, nil
			}
		}
	}

	chats, err := s.chats.ListByUser(email)
	if err != nil {
		return nil, err
	}
	if s.listCache != nil {
		if err := s.listCache.SetList(ctx, email, chats); err != nil {
			log.Printf("chat list cache write failed: %v", err)
		}
	}
	return chats, nil
}

func (s *ChatService) Get(email, chatID string) (*model.Chat, error) {
	chat, err := s.chats.GetByUserAndChatID(email, chatID)
	if err != nil {
		return nil, err
	}
	if chat == nil {
		return nil, ErrChatNotFound
	}
	return chat, nil
}

func (s *ChatService) Delete(ctx context.Context, email, chatID string) error {
	removed, err := s.chats.DeleteByUserAndChatID(email, chatID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrChatNotFound
	}
	s.invalidateList(ctx, email)
	return nil
}

func (s *ChatService) DeleteAll(ctx context.Context, email string) (int64, error) {
	removed, err := s.chats.DeleteAllByUser(email)
	if err != nil {
		return 0, err
	}
	s.invalidateList(ctx, email)
	return removed, nil
}

// AllChats lists every chat in the system. Admin only, enforced by the caller.
func (s *ChatService) AllChats() ([]model.Chat, error) {
	return s.chats.ListAll()
}

func (s *ChatService) Stats() (*ChatStats, error) {
	total, err := s.chats.CountAll()
	if err != nil {
		return nil, err
	}
	perUser, err := s.chats.CountPerUser()
	if err != nil {
		return nil, err
	}
	return &ChatStats{TotalChats: total, PerUser: perUser}, nil
}

func (s *ChatService) invalidateList(ctx context.Context, email string) {
	if s.listCache == nil {
		return
	}
	if err := s.listCache.DeleteList(ctx, email); err != nil {
		log.Printf("chat list cache invalidate failed: %v", err)
	}
	if err := s.listCache.MarkDirty(ctx, email); err != nil {
		log.Printf("chat list dirty mark failed: %v", err)
	}
}
