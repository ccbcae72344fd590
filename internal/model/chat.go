package model

import (
	"encoding/json"
	"time"
)

// WelcomeChatTitle marks the one special chat each user gets at most once.
const WelcomeChatTitle = "Welcome Chat"

// Chat is a client-assigned conversation transcript saved per user. The
// frontend owns the chat id (numeric or string, normalized to string) and
// the full message list; the server stores it as an opaque JSON document.
type Chat struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ChatID    string    `gorm:"size:64;not null;uniqueIndex:idx_user_chat" json:"id"`
	UserEmail string    `gorm:"size:128;not null;uniqueIndex:idx_user_chat;index" json:"user_email"`
	Title     string    `gorm:"size:256;not null" json:"title"`
	Messages  string    `gorm:"type:text" json:"-"` // JSON array of message objects
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

// MessageList returns the parsed transcript; empty on parse error.
func (c *Chat) MessageList() []map[string]any {
	if c.Messages == "" {
		return nil
	}
	var v []map[string]any
	_ = json.Unmarshal([]byte(c.Messages), &v)
	return v
}

// SetMessageList stores the transcript as JSON.
func (c *Chat) SetMessageList(messages []map[string]any) {
	if len(messages) == 0 {
		c.Messages = "[]"
		return
	}
	b, _ := json.Marshal(messages)
	c.Messages = string(b)
}
