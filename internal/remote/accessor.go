// Package remote is the thin wrapper over the hosted document backend. Two
// implementations exist behind one interface: BackendAccessor talks to the
// real database, GuestAccessor serves local fixtures for offline guest
// sessions. The implementation is chosen once, at session start.
package remote

import (
	"context"
	"time"

	"taskify/app/internal/models"
)

// TaskUpdate carries the fields of a partial task edit. Nil fields are left
// untouched by Update.
type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *models.Priority
	Category    *models.Category
	Completed   *bool
}

type NoteUpdate struct {
	Title   *string
	Content *string
	Photo   *models.Photo
}

type HabitUpdate struct {
	Title *string
}

type PreferencesUpdate struct {
	DarkMode *bool
	Language *string
}

// Accessor is the remote data surface the screens are written against.
// Every successful write also publishes the change stamp for the entity's
// channel; list calls return the caller's full, unfiltered collection.
type Accessor interface {
	CreateTask(ctx context.Context, userID string, task models.Task) (*models.Task, error)
	ListTasks(ctx context.Context, userID string) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTask(ctx context.Context, id string, update TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error

	CreateNote(ctx context.Context, userID string, note models.Note) (*models.Note, error)
	ListNotes(ctx context.Context, userID string) ([]models.Note, error)
	UpdateNote(ctx context.Context, id string, update NoteUpdate) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) error

	CreateHabit(ctx context.Context, userID string, habit models.Habit) (*models.Habit, error)
	ListHabits(ctx context.Context, userID string) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, id string, update HabitUpdate) (*models.Habit, error)
	// CompleteHabit increments the streak by one and records the completion
	// day. The increment itself is not guarded against duplicate same-day
	// calls; that guard lives at the presentation layer.
	CompleteHabit(ctx context.Context, id string, completedAt time.Time) (*models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error

	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	UpdatePreferences(ctx context.Context, userID string, update PreferencesUpdate) (*models.Preferences, error)
}
