package models

import (
	"time"
)

// Preferences is the per-user settings document.
type Preferences struct {
	UserID    string    `json:"user_id" gorm:"primaryKey"`
	DarkMode  bool      `json:"dark_mode" gorm:"not null;default:false"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
