package model

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Email        string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false" json:"is_admin"`
	Age          *int      `json:"age"`
	Provider     string    `gorm:"size:32" json:"provider,omitempty"`
	CreatedAt    time.Time `json:"created"`
	UpdatedAt    time.Time `json:"-"`
}
