package models_test

import (
	"testing"
	"time"

	"taskify/app/internal/models"
)

func TestTask_Defaults(t *testing.T) {
	task := models.Task{
		ID:        "task-1",
		UserID:    "user-1",
		Title:     "Buy milk",
		Priority:  models.PriorityMedium,
		Category:  models.CategoryNone,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if task.Completed {
		t.Error("Expected new task to be incomplete")
	}

	if task.DueDate != nil {
		t.Errorf("Expected nil due date, got %v", task.DueDate)
	}

	if task.Priority != models.PriorityMedium {
		t.Errorf("Expected priority 'medium', got '%s'", task.Priority)
	}

	if task.Category != models.CategoryNone {
		t.Errorf("Expected category 'noCategory', got '%s'", task.Category)
	}
}

func TestPriority_Valid(t *testing.T) {
	valid := []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}
	for _, p := range valid {
		if !p.Valid() {
			t.Errorf("Expected priority '%s' to be valid", p)
		}
	}

	if models.Priority("urgent").Valid() {
		t.Error("Expected priority 'urgent' to be invalid")
	}
}

func TestCategory_Valid(t *testing.T) {
	valid := []models.Category{
		models.CategoryWork,
		models.CategoryPersonal,
		models.CategoryShopping,
		models.CategoryHealth,
		models.CategoryFinance,
		models.CategoryNone,
	}
	for _, c := range valid {
		if !c.Valid() {
			t.Errorf("Expected category '%s' to be valid", c)
		}
	}

	if models.Category("misc").Valid() {
		t.Error("Expected category 'misc' to be invalid")
	}
}

func TestHabit_NewHabit(t *testing.T) {
	habit := models.Habit{
		ID:     "habit-1",
		UserID: "user-1",
		Title:  "Drink water",
	}

	if habit.Streak != 0 {
		t.Errorf("Expected streak 0, got %d", habit.Streak)
	}

	if habit.LastCompleted != nil {
		t.Errorf("Expected nil LastCompleted, got %v", habit.LastCompleted)
	}
}

func TestUser_IsGuest(t *testing.T) {
	tests := []struct {
		name string
		user models.User
		want bool
	}{
		{"registered user", models.User{ID: "3f1c", Email: "a@b.com"}, false},
		{"anonymous backend user", models.User{ID: "3f1c", Anonymous: true}, false},
		{"guest id prefix", models.User{ID: models.GuestIDPrefix + "abc123"}, true},
		{"offline guest flag", models.User{ID: "3f1c", OfflineGuest: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.IsGuest(); got != tt.want {
				t.Errorf("IsGuest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToken_Fields(t *testing.T) {
	expiresAt := time.Now().Add(24 * time.Hour)

	token := models.Token{
		ID:           "token-1",
		UserID:       "user-1",
		RefreshToken: "refresh-1",
		ExpiresAt:    expiresAt,
	}

	if token.UserID != "user-1" {
		t.Errorf("Expected UserID 'user-1', got '%s'", token.UserID)
	}

	if token.ExpiresAt != expiresAt {
		t.Errorf("Expected ExpiresAt %v, got %v", expiresAt, token.ExpiresAt)
	}
}
