package remote

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"taskify/app/internal/dates"
	"taskify/app/internal/models"
)

// Fixture IDs returned to every guest session.
const (
	SampleTaskID  = "sample-task-1"
	SampleNoteID  = "sample-note-1"
	SampleHabitID = "sample-habit-1"
)

var _ Accessor = (*GuestAccessor)(nil)

// GuestAccessor serves offline guest sessions. Reads return a fixed sample
// set, writes return locally synthesized documents, and nothing survives
// the session. No call ever reaches the network.
type GuestAccessor struct {
	userID string
	log    *zap.Logger
	now    func() time.Time
}

func NewGuestAccessor(userID string, log *zap.Logger) *GuestAccessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &GuestAccessor{
		userID: userID,
		log:    log,
		now:    time.Now,
	}
}

func newLocalID() string {
	return models.LocalIDPrefix + uuid.Must(uuid.NewV4()).String()
}

func (a *GuestAccessor) sampleTask() models.Task {
	tomorrow := dates.LocalMidnight(a.now().Add(24 * time.Hour))
	return models.Task{
		ID:          SampleTaskID,
		UserID:      a.userID,
		Title:       "Welcome to Taskify!",
		Description: "This is a sample task for guest users.",
		Priority:    models.PriorityMedium,
		Category:    models.CategoryNone,
		Completed:   false,
		DueDate:     &tomorrow,
		CreatedAt:   a.now(),
		UpdatedAt:   a.now(),
	}
}

func (a *GuestAccessor) sampleNote() models.Note {
	return models.Note{
		ID:        SampleNoteID,
		UserID:    a.userID,
		Title:     "Welcome to Notes!",
		Content:   "This is a sample note for guest users.",
		CreatedAt: a.now(),
		UpdatedAt: a.now(),
	}
}

func (a *GuestAccessor) sampleHabit() models.Habit {
	return models.Habit{
		ID:        SampleHabitID,
		UserID:    a.userID,
		Title:     "Drink water",
		Streak:    0,
		CreatedAt: a.now(),
		UpdatedAt: a.now(),
	}
}

// Tasks

func (a *GuestAccessor) CreateTask(ctx context.Context, userID string, task models.Task) (*models.Task, error) {
	now := a.now()
	task.ID = newLocalID()
	task.UserID = userID
	task.DueDate = dates.Normalize(task.DueDate)
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Category == "" {
		task.Category = models.CategoryNone
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	return &task, nil
}

func (a *GuestAccessor) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	return []models.Task{a.sampleTask()}, nil
}

func (a *GuestAccessor) GetTask(ctx context.Context, id string) (*models.Task, error) {
	if id != SampleTaskID {
		return nil, &ReadError{Op: "get task", Err: ErrNotFound}
	}
	task := a.sampleTask()
	return &task, nil
}

func (a *GuestAccessor) UpdateTask(ctx context.Context, id string, update TaskUpdate) (*models.Task, error) {
	if id != SampleTaskID {
		return nil, &WriteError{Op: "update task", Err: ErrNotFound}
	}

	task := a.sampleTask()
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.DueDate != nil {
		task.DueDate = dates.Normalize(update.DueDate)
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
	}
	if update.Category != nil {
		task.Category = *update.Category
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}
	task.UpdatedAt = a.now()
	return &task, nil
}

func (a *GuestAccessor) DeleteTask(ctx context.Context, id string) error {
	if id != SampleTaskID {
		return &WriteError{Op: "delete task", Err: ErrNotFound}
	}
	return nil
}

// Notes

func (a *GuestAccessor) CreateNote(ctx context.Context, userID string, note models.Note) (*models.Note, error) {
	now := a.now()
	note.ID = newLocalID()
	note.UserID = userID
	note.CreatedAt = now
	note.UpdatedAt = now
	return &note, nil
}

func (a *GuestAccessor) ListNotes(ctx context.Context, userID string) ([]models.Note, error) {
	return []models.Note{a.sampleNote()}, nil
}

func (a *GuestAccessor) UpdateNote(ctx context.Context, id string, update NoteUpdate) (*models.Note, error) {
	if id != SampleNoteID {
		return nil, &WriteError{Op: "update note", Err: ErrNotFound}
	}

	note := a.sampleNote()
	if update.Title != nil {
		note.Title = *update.Title
	}
	if update.Content != nil {
		note.Content = *update.Content
	}
	if update.Photo != nil {
		note.Photo = update.Photo
	}
	note.UpdatedAt = a.now()
	return &note, nil
}

func (a *GuestAccessor) DeleteNote(ctx context.Context, id string) error {
	if id != SampleNoteID {
		return &WriteError{Op: "delete note", Err: ErrNotFound}
	}
	return nil
}

// Habits

func (a *GuestAccessor) CreateHabit(ctx context.Context, userID string, habit models.Habit) (*models.Habit, error) {
	now := a.now()
	habit.ID = newLocalID()
	habit.UserID = userID
	habit.Streak = 0
	habit.LastCompleted = nil
	habit.CreatedAt = now
	habit.UpdatedAt = now
	return &habit, nil
}

func (a *GuestAccessor) ListHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	return []models.Habit{a.sampleHabit()}, nil
}

func (a *GuestAccessor) UpdateHabit(ctx context.Context, id string, update HabitUpdate) (*models.Habit, error) {
	if id != SampleHabitID {
		return nil, &WriteError{Op: "update habit", Err: ErrNotFound}
	}

	habit := a.sampleHabit()
	if update.Title != nil {
		habit.Title = *update.Title
	}
	habit.UpdatedAt = a.now()
	return &habit, nil
}

func (a *GuestAccessor) CompleteHabit(ctx context.Context, id string, completedAt time.Time) (*models.Habit, error) {
	if id != SampleHabitID {
		return nil, &WriteError{Op: "complete habit", Err: ErrNotFound}
	}

	habit := a.sampleHabit()
	day := dates.LocalMidnight(completedAt)
	habit.Streak++
	habit.LastCompleted = &day
	habit.UpdatedAt = a.now()
	return &habit, nil
}

func (a *GuestAccessor) DeleteHabit(ctx context.Context, id string) error {
	if id != SampleHabitID {
		return &WriteError{Op: "delete habit", Err: ErrNotFound}
	}
	return nil
}

// Preferences

func (a *GuestAccessor) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	return &models.Preferences{
		UserID:   a.userID,
		DarkMode: false,
		Language: "en",
	}, nil
}

func (a *GuestAccessor) UpdatePreferences(ctx context.Context, userID string, update PreferencesUpdate) (*models.Preferences, error) {
	prefs := models.Preferences{
		UserID:    a.userID,
		Language:  "en",
		UpdatedAt: a.now(),
	}
	if update.DarkMode != nil {
		prefs.DarkMode = *update.DarkMode
	}
	if update.Language != nil {
		prefs.Language = *update.Language
	}
	return &prefs, nil
}
