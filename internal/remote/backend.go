package remote

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"taskify/app/internal/dates"
	"taskify/app/internal/models"
	"taskify/app/internal/stamp"
)

var _ Accessor = (*BackendAccessor)(nil)

type BackendAccessorConfig struct {
	RequestsPerSec int
	RequestBurst   int
	Breaker        *BreakerConfig
}

func DefaultBackendAccessorConfig() *BackendAccessorConfig {
	return &BackendAccessorConfig{
		RequestsPerSec: 50,
		RequestBurst:   10,
	}
}

// BackendAccessor is the networked accessor: documents live in the hosted
// database, queried by equality on the owner's user ID. Calls are rate
// limited and breaker-protected so per-screen poll loops cannot hammer a
// failing backend.
type BackendAccessor struct {
	db        *gorm.DB
	publisher *stamp.Publisher
	limiter   *rate.Limiter
	breaker   *Breaker
	log       *zap.Logger
	now       func() time.Time
}

func NewBackendAccessor(db *gorm.DB, publisher *stamp.Publisher, config *BackendAccessorConfig, log *zap.Logger) *BackendAccessor {
	if config == nil {
		config = DefaultBackendAccessorConfig()
	}
	if log == nil {
		log = zap.NewNop()
	}

	breakerConfig := config.Breaker
	if breakerConfig == nil {
		breakerConfig = DefaultBreakerConfig()
	}
	if breakerConfig.IsFailure == nil {
		breakerConfig.IsFailure = func(err error) bool {
			return err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
		}
	}

	return &BackendAccessor{
		db:        db,
		publisher: publisher,
		limiter:   rate.NewLimiter(rate.Limit(config.RequestsPerSec), config.RequestBurst),
		breaker:   NewBreaker(breakerConfig),
		log:       log,
		now:       time.Now,
	}
}

// do funnels every backend call through the rate limiter and the breaker.
func (a *BackendAccessor) do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return err
	}
	return a.breaker.Execute(func() error {
		return fn(a.db.WithContext(ctx))
	})
}

func newDocumentID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// Tasks

func (a *BackendAccessor) CreateTask(ctx context.Context, userID string, task models.Task) (*models.Task, error) {
	now := a.now()
	task.ID = newDocumentID()
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

	err := a.do(ctx, func(tx *gorm.DB) error {
		return tx.Create(&task).Error
	})
	if err != nil {
		return nil, &WriteError{Op: "create task", Err: err}
	}

	a.publisher.Publish(stamp.ChannelTasks)
	return &task, nil
}

func (a *BackendAccessor) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	var tasks []models.Task
	err := a.do(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_id = ?", userID).Find(&tasks).Error
	})
	if err != nil {
		return nil, &ReadError{Op: "list tasks", Err: err}
	}

	result := tasks[:0]
	for _, task := range tasks {
		// A document without a resolvable ID cannot be rendered or keyed;
		// dropping it beats surfacing a null ID downstream.
		if task.ID == "" {
			a.log.Warn("dropping task without id", zap.String("user_id", userID))
			continue
		}
		task.DueDate = dates.Normalize(task.DueDate)
		result = append(result, task)
	}
	return result, nil
}

func (a *BackendAccessor) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	err := a.do(ctx, func(tx *gorm.DB) error {
		return tx.First(&task, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ReadError{Op: "get task", Err: ErrNotFound}
		}
		return nil, &ReadError{Op: "get task", Err: err}
	}

	task.DueDate = dates.Normalize(task.DueDate)
	return &task, nil
}

func (a *BackendAccessor) UpdateTask(ctx context.Context, id string, update TaskUpdate) (*models.Task, error) {
	var task models.Task
	err := a.do(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			return err
		}

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

		return tx.Save(&task).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &WriteError{Op: "update task", Err: ErrNotFound}
		}
		return nil, &WriteError{Op: "update task", Err: err}
	}

	a.publisher.Publish(stamp.ChannelTasks)
	return &task, nil
}

func (a *BackendAccessor) DeleteTask(ctx context.Context, id string) error {
	err := a.do(ctx, func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &WriteError{Op: "delete task", Err: ErrNotFound}
		}
		return &WriteError{Op: "delete task", Err: err}
	}

	a.publisher.Publish(stamp.ChannelTasks)
	return nil
}

// Notes
//
// Note writes publish no stamp: the channel set is fixed to tasks, habits
// and theme, and the notes screen re-fetches on focus instead.

func (a *BackendAccessor) CreateNote(ctx context.Context, userID string, note models.Note) (*models.Note, error) {
	now := a.now()
	note.ID = newDocumentID()
	note.UserID = userID
	note.CreatedAt = now
	note.UpdatedAt = now

	err := a.do(ctx, func(tx *gorm.DB) error {
		return tx.Create(&note).Error
	})
	if err != nil {
		return nil, &WriteError{Op: "create note", Err: err}
	}

	return &note, nil
}

func (a *BackendAccessor) ListNotes(ctx context.Context, userID string) ([]models.Note, error) {
	var notes []models.Note
	err := a.do(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_id = ?", userID).Find(&notes).Error
	})
	if err != nil {
		return nil, &ReadError{Op: "list notes", Err: err}
	}

	result := notes[:0]
	for _, note := range notes {
		if note.ID == "" {
			a.log.Warn("dropping note without id", zap.String("user_id", userID))
			continue
		}
		result = append(result, note)
	}
	return result, nil
}

func (a *BackendAccessor) UpdateNote(ctx context.Context, id string, update NoteUpdate) (*models.Note, error) {
	var note models.Note
	err := a.do(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&note, "id = ?", id).Error; err != nil {
			return err
		}

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

		return tx.Save(&note).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &WriteError{Op: "update note", Err: ErrNotFound}
		}
		return nil, &WriteError{Op: "update note", Err: err}
	}

	return &note, nil
}

func (a *BackendAccessor) DeleteNote(ctx context.Context, id string) error {
	err := a.do(ctx, func(tx *gorm.DB) error {
		var note models.Note
		if err := tx.First(&note, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&note).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &WriteError{Op: "delete note", Err: ErrNotFound}
		}
		return &WriteError{Op: "delete note", Err: err}
	}

	return nil
}

// Habits

func (a *BackendAccessor) CreateHabit(ctx context.Context, userID string, habit models.Habit) (*models.Habit, error) {
	now := a.now()
	habit.ID = newDocumentID()
	habit.UserID = userID
	habit.Streak = 0
	habit.LastCompleted = nil
	habit.CreatedAt = now
	habit.UpdatedAt = now

	err := a.do(ctx, func(tx *gorm.DB) error {
		return tx.Create(&habit).Error
	})
	if err != nil {
		return nil, &WriteError{Op: "create habit", Err: err}
	}

	a.publisher.Publish(stamp.ChannelHabits)
	return &habit, nil
}

func (a *BackendAccessor) ListHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	var habits []models.Habit
	err := a.do(ctx, func(tx *gorm.DB) error {
		return tx.Where("user_id = ?", userID).Find(&habits).Error
	})
	if err != nil {
		return nil, &ReadError{Op: "list habits", Err: err}
	}

	result := habits[:0]
	for _, habit := range habits {
		if habit.ID == "" {
			a.log.Warn("dropping habit without id", zap.String("user_id", userID))
			continue
		}
		habit.LastCompleted = dates.Normalize(habit.LastCompleted)
		result = append(result, habit)
	}
	return result, nil
}

func (a *BackendAccessor) UpdateHabit(ctx context.Context, id string, update HabitUpdate) (*models.Habit, error) {
	var habit models.Habit
	err := a.do(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&habit, "id = ?", id).Error; err != nil {
			return err
		}

		if update.Title != nil {
			habit.Title = *update.Title
		}
		habit.UpdatedAt = a.now()

		return tx.Save(&habit).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &WriteError{Op: "update habit", Err: ErrNotFound}
		}
		return nil, &WriteError{Op: "update habit", Err: err}
	}

	a.publisher.Publish(stamp.ChannelHabits)
	return &habit, nil
}

// CompleteHabit applies the backend-side increment. The streak expression
// runs in the database, so two same-day calls both land: the at-most-once-
// per-day rule is enforced by the presentation-layer guard, not here.
func (a *BackendAccessor) CompleteHabit(ctx context.Context, id string, completedAt time.Time) (*models.Habit, error) {
	day := dates.LocalMidnight(completedAt)

	var habit models.Habit
	err := a.do(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&habit, "id = ?", id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"streak":         gorm.Expr("streak + ?", 1),
			"last_completed": day,
			"updated_at":     a.now(),
		}
		if err := tx.Model(&habit).Updates(updates).Error; err != nil {
			return err
		}

		return tx.First(&habit, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &WriteError{Op: "complete habit", Err: ErrNotFound}
		}
		return nil, &WriteError{Op: "complete habit", Err: err}
	}

	habit.LastCompleted = dates.Normalize(habit.LastCompleted)
	a.publisher.Publish(stamp.ChannelHabits)
	return &habit, nil
}

func (a *BackendAccessor) DeleteHabit(ctx context.Context, id string) error {
	err := a.do(ctx, func(tx *gorm.DB) error {
		var habit models.Habit
		if err := tx.First(&habit, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&habit).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &WriteError{Op: "delete habit", Err: ErrNotFound}
		}
		return &WriteError{Op: "delete habit", Err: err}
	}

	a.publisher.Publish(stamp.ChannelHabits)
	return nil
}

// Preferences

func (a *BackendAccessor) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	var prefs models.Preferences
	err := a.do(ctx, func(tx *gorm.DB) error {
		return tx.First(&prefs, "user_id = ?", userID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ReadError{Op: "get preferences", Err: ErrNotFound}
		}
		return nil, &ReadError{Op: "get preferences", Err: err}
	}

	return &prefs, nil
}

// UpdatePreferences upserts the per-user preferences document and publishes
// the theme channel so other open screens restyle within one poll interval.
func (a *BackendAccessor) UpdatePreferences(ctx context.Context, userID string, update PreferencesUpdate) (*models.Preferences, error) {
	var prefs models.Preferences
	err := a.do(ctx, func(tx *gorm.DB) error {
		err := tx.First(&prefs, "user_id = ?", userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			now := a.now()
			prefs = models.Preferences{
				UserID:    userID,
				CreatedAt: now,
			}
		} else if err != nil {
			return err
		}

		if update.DarkMode != nil {
			prefs.DarkMode = *update.DarkMode
		}
		if update.Language != nil {
			prefs.Language = *update.Language
		}
		prefs.UpdatedAt = a.now()

		return tx.Save(&prefs).Error
	})
	if err != nil {
		return nil, &WriteError{Op: "update preferences", Err: err}
	}

	a.publisher.Publish(stamp.ChannelTheme)
	return &prefs, nil
}
