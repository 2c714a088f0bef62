package models

import (
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryShopping Category = "shopping"
	CategoryHealth   Category = "health"
	CategoryFinance  Category = "finance"
	CategoryNone     Category = "noCategory"
)

// Task is a to-do item owned by a single user. The ID is assigned by the
// backend on creation; due dates are normalized to local midnight at the
// accessor boundary and never carry a time-of-day component.
type Task struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	UserID      string     `json:"user_id" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date"`
	Priority    Priority   `json:"priority" gorm:"not null;default:'medium'"`
	Category    Category   `json:"category" gorm:"not null;default:'noCategory'"`
	Completed   bool       `json:"completed" gorm:"not null;default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryShopping, CategoryHealth, CategoryFinance, CategoryNone:
		return true
	}
	return false
}
