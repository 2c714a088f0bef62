package models

import (
	"strings"
	"time"
)

// GuestIDPrefix marks principals that were generated locally because
// anonymous sign-in was unavailable. Documents created for such principals
// never reach the backend.
const GuestIDPrefix = "guest_"

// LocalIDPrefix marks IDs synthesized locally for guest-mode writes.
const LocalIDPrefix = "local_"

type User struct {
	ID        string `json:"id" gorm:"primaryKey"`
	Email     string `json:"email" gorm:"index"`
	Password  string `json:"-"`
	Anonymous bool   `json:"anonymous" gorm:"not null;default:false"`

	// OfflineGuest is set on locally synthesized principals only; it is
	// never persisted.
	OfflineGuest bool `json:"-" gorm:"-"`

	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsGuest reports whether the user is a local-only principal: either flagged
// as an offline guest or carrying a locally generated guest ID.
func (u *User) IsGuest() bool {
	return u.OfflineGuest || strings.HasPrefix(u.ID, GuestIDPrefix)
}
