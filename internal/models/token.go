package models

import (
	"time"
)

// Token is a stored refresh token. Access tokens are stateless JWTs and are
// never persisted.
type Token struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	UserID       string    `json:"user_id" gorm:"index;not null"`
	RefreshToken string    `json:"refresh_token" gorm:"index;not null"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}
