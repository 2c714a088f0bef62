package models

import (
	"time"
)

// Habit tracks a daily practice. Streak grows by at most one per calendar
// day; LastCompleted is nil until the first completion and always holds a
// local-midnight date afterwards.
type Habit struct {
	ID            string     `json:"id" gorm:"primaryKey"`
	UserID        string     `json:"user_id" gorm:"index;not null"`
	Title         string     `json:"title" gorm:"not null"`
	Streak        int        `json:"streak" gorm:"not null;default:0"`
	LastCompleted *time.Time `json:"last_completed"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
