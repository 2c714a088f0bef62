// Package habits is the presentation-layer habit service. Its single piece of
// logic beyond pass-through is the same-day completion guard: the remote
// increment applies unconditionally, so the check that a habit was not already
// completed today happens here, before the write is issued.
package habits

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"taskify/app/internal/dates"
	"taskify/app/internal/models"
	"taskify/app/internal/remote"
)

// ErrAlreadyCompletedToday is returned when a habit's recorded completion day
// matches the caller's calendar day. The streak is left untouched.
var ErrAlreadyCompletedToday = errors.New("habit already completed today")

// HabitStore is the slice of the remote accessor this service needs.
type HabitStore interface {
	CreateHabit(ctx context.Context, userID string, habit models.Habit) (*models.Habit, error)
	ListHabits(ctx context.Context, userID string) ([]models.Habit, error)
	UpdateHabit(ctx context.Context, id string, update remote.HabitUpdate) (*models.Habit, error)
	CompleteHabit(ctx context.Context, id string, completedAt time.Time) (*models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error
}

type Service struct {
	store HabitStore
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store HabitStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{store: store, log: log, now: time.Now}
}

func (s *Service) List(ctx context.Context, userID string) ([]models.Habit, error) {
	return s.store.ListHabits(ctx, userID)
}

func (s *Service) Add(ctx context.Context, userID, title string) (*models.Habit, error) {
	return s.store.CreateHabit(ctx, userID, models.Habit{Title: title})
}

func (s *Service) Rename(ctx context.Context, id, title string) (*models.Habit, error) {
	return s.store.UpdateHabit(ctx, id, remote.HabitUpdate{Title: &title})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteHabit(ctx, id)
}

// CanComplete reports whether completing the habit now would count: false when
// the habit's last completion falls on today's calendar day.
func (s *Service) CanComplete(habit *models.Habit) bool {
	if habit == nil || habit.LastCompleted == nil {
		return true
	}
	return !dates.SameCalendarDay(*habit.LastCompleted, s.now())
}

// Complete applies the same-day guard against the habit the caller is holding,
// then issues the increment. The guard is advisory: a stale habit snapshot or
// two concurrent calls can still double-increment, because the remote write is
// unguarded.
func (s *Service) Complete(ctx context.Context, habit *models.Habit) (*models.Habit, error) {
	if !s.CanComplete(habit) {
		s.log.Debug("habit completion skipped, already done today",
			zap.String("habit_id", habit.ID))
		return nil, ErrAlreadyCompletedToday
	}

	return s.store.CompleteHabit(ctx, habit.ID, s.now())
}
