package repository

import (
	"fmt"

	"gorm.io/gorm"

	"chacha-backend/internal/model"
)

type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

func (r *InteractionRepository) Create(entry *model.InteractionLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("create interaction log failed: %w", err)
	}
	return nil
}
