package models

import (
	"time"
)

// Photo is the single optional image attached to a note. Only the metadata
// needed to render the image again is stored.
type Photo struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
	Name string `json:"name"`
}

type Note struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	Title     string    `json:"title" gorm:"not null"`
	Content   string    `json:"content"`
	Photo     *Photo    `json:"photo,omitempty" gorm:"serializer:json"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
