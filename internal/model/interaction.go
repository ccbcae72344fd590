package model

import "time"

// InteractionLog records one mascot exchange for offline analysis. Written
// asynchronously through the message queue so chat latency never waits on
// the database.
type InteractionLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserEmail string    `gorm:"size:128;index" json:"user_email"`
	Prompt    string    `gorm:"type:text;not null" json:"prompt"`
	Reply     string    `gorm:"type:text" json:"reply"`
	Source    string    `gorm:"size:32;not null" json:"source"`
	RAGScore  float64   `json:"rag_score"`
	Lang      string    `gorm:"size:16" json:"lang"`
	AgeGroup  string    `gorm:"size:16" json:"age_group"`
	LatencyMS int64     `json:"latency_ms"`
	LLMUsed   bool      `json:"llm_used"`
	CreatedAt time.Time `json:"created_at"`
}
