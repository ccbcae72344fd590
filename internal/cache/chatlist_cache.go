package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"chacha-backend/internal/model"
)

// ChatListCache is a read-through Redis cache of each user's saved chats.
// A short-lived dirty marker keeps a just-written list from being re-cached
// stale while the write settles.
type ChatListCache struct {
	client         *redisv9.Client
	listTTL        time.Duration
	dirtyMarkerTTL time.Duration
}

func NewChatListCache(client *redisv9.Client, listTTL, dirtyMarkerTTL time.Duration) *ChatListCache {
	if listTTL <= 0 {
		listTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &ChatListCache{
		client:         client,
		listTTL:        listTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *ChatListCache) GetList(ctx context.Context, email string) ([]model.Chat, bool, error) {
	raw, err := c.client.Get(ctx, c.listKey(email)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get chat list failed: %w", err)
	}

	var chats []model.Chat
	if err := json.Unmarshal([]byte(raw), &chats); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached chat list failed: %w", err)
	}
	return chats, true, nil
}

func (c *ChatListCache) SetList(ctx context.Context, email string, chats []model.Chat) error {
	payload, err := json.Marshal(chats)
	if err != nil {
		return fmt.Errorf("marshal chat list cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.listKey(email), payload, c.listTTL).Err(); err != nil {
		return fmt.Errorf("redis set chat list failed: %w", err)
	}
	return nil
}

func (c *ChatListCache) DeleteList(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, c.listKey(email)).Err(); err != nil {
		return fmt.Errorf("redis delete chat list failed: %w", err)
	}
	return nil
}

func (c *ChatListCache) MarkDirty(ctx context.Context, email string) error {
	if err := c.client.Set(ctx, c.dirtyKey(email), "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *ChatListCache) IsDirty(ctx context.Context, email string) (bool, error) {
	exists, err := c.client.Exists(ctx, c.dirtyKey(email)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *ChatListCache) listKey(email string) string {
	return fmt.Sprintf("chats:list:%s", email)
}

func (c *ChatListCache) dirtyKey(email string) string {
	return fmt.Sprintf("chats:list:dirty:%s", email)
}
