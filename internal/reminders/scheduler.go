// Package reminders schedules due-date notifications for tasks. Pending
// reminders live in the local store as a sorted set scored by fire time, so
// they survive restarts; a small worker pool drains the due ones and hands
// them to the registered notifier.
package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taskify/app/internal/models"
)

const (
	pendingKey = "reminders:pending"
	payloadKey = "reminders:payload"
	deadKey    = "reminders:dead"
)

// Reminder is one scheduled notification. TaskID doubles as the member key,
// so rescheduling a task replaces its previous reminder.
type Reminder struct {
	TaskID   string    `json:"task_id"`
	UserID   string    `json:"user_id"`
	Title    string    `json:"title"`
	FireAt   time.Time `json:"fire_at"`
	Attempts int       `json:"attempts"`
}

// NotifyFunc delivers the reminder to the user. A returned error makes the
// scheduler retry with backoff.
type NotifyFunc func(ctx context.Context, reminder *Reminder) error

type SchedulerConfig struct {
	Client       *redis.Client
	Notify       NotifyFunc
	PollInterval time.Duration
	MaxTries     int
	Logger       *zap.Logger
}

type Scheduler struct {
	client   *redis.Client
	notify   NotifyFunc
	interval time.Duration
	maxTries int
	log      *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewScheduler(config SchedulerConfig) (*Scheduler, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("scheduler requires a store client")
	}
	if config.Notify == nil {
		return nil, fmt.Errorf("scheduler requires a notify function")
	}
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.MaxTries <= 0 {
		config.MaxTries = 3
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return &Scheduler{
		client:   config.Client,
		notify:   config.Notify,
		interval: config.PollInterval,
		maxTries: config.MaxTries,
		log:      config.Logger,
		now:      time.Now,
	}, nil
}

// Schedule queues a reminder for the task's due date. Tasks without a due
// date are ignored; scheduling the same task again replaces the old entry.
func (s *Scheduler) Schedule(ctx context.Context, task *models.Task) error {
	if task.DueDate == nil {
		return nil
	}

	reminder := Reminder{
		TaskID: task.ID,
		UserID: task.UserID,
		Title:  task.Title,
		FireAt: *task.DueDate,
	}

	return s.put(ctx, &reminder)
}

// Cancel drops the pending reminder for a task, if any. Cancelling an
// unknown task is not an error.
func (s *Scheduler) Cancel(ctx context.Context, taskID string) error {
	pipe := s.client.TxPipeline()
	pipe.ZRem(ctx, pendingKey, taskID)
	pipe.HDel(ctx, payloadKey, taskID)
	_, err := pipe.Exec(ctx)
	return err
}

// Pending reports the number of queued reminders.
func (s *Scheduler) Pending(ctx context.Context) (int64, error) {
	return s.client.ZCard(ctx, pendingKey).Result()
}

func (s *Scheduler) put(ctx context.Context, reminder *Reminder) error {
	data, err := json.Marshal(reminder)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder for task %s: %w", reminder.TaskID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, pendingKey, redis.Z{
		Score:  float64(reminder.FireAt.Unix()),
		Member: reminder.TaskID,
	})
	pipe.HSet(ctx, payloadKey, reminder.TaskID, data)
	_, err = pipe.Exec(ctx)
	return err
}

// Start launches the delivery loop. Starting twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.started = true

	s.wg.Add(1)
	go s.loop(loopCtx)
}

// Stop cancels the loop and waits for in-flight deliveries to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.cancel()
	s.wg.Wait()
	s.started = false
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.deliverDue(ctx); err != nil && ctx.Err() == nil {
				s.log.Warn("reminder delivery pass failed", zap.Error(err))
			}
		}
	}
}

// DeliverDue fires every reminder whose time has come. Exposed so callers
// can flush on demand, for example right after launch.
func (s *Scheduler) DeliverDue(ctx context.Context) error {
	return s.deliverDue(ctx)
}

func (s *Scheduler) deliverDue(ctx context.Context) error {
	due, err := s.client.ZRangeByScore(ctx, pendingKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(s.now().Unix(), 10),
		Count: 100,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to read due reminders: %w", err)
	}

	for _, taskID := range due {
		if err := s.deliver(ctx, taskID); err != nil {
			if ctx.Err() != nil {
				return err
			}
			s.log.Warn("failed to deliver reminder",
				zap.String("task_id", taskID), zap.Error(err))
		}
	}

	return nil
}

func (s *Scheduler) deliver(ctx context.Context, taskID string) error {
	data, err := s.client.HGet(ctx, payloadKey, taskID).Result()
	if err != nil {
		if err == redis.Nil {
			// Orphaned member, payload already gone.
			return s.client.ZRem(ctx, pendingKey, taskID).Err()
		}
		return err
	}

	var reminder Reminder
	if err := json.Unmarshal([]byte(data), &reminder); err != nil {
		return fmt.Errorf("failed to unmarshal reminder for task %s: %w", taskID, err)
	}

	if err := s.notify(ctx, &reminder); err != nil {
		reminder.Attempts++
		if reminder.Attempts >= s.maxTries {
			s.log.Warn("reminder failed permanently",
				zap.String("task_id", taskID),
				zap.Int("attempts", reminder.Attempts),
				zap.Error(err))
			return s.moveToDead(ctx, &reminder, err)
		}

		backoff := time.Duration(1<<reminder.Attempts) * time.Minute
		reminder.FireAt = s.now().Add(backoff)
		s.log.Info("reminder delivery failed, retrying",
			zap.String("task_id", taskID),
			zap.Int("attempt", reminder.Attempts),
			zap.Duration("backoff", backoff))
		return s.put(ctx, &reminder)
	}

	return s.Cancel(ctx, taskID)
}

func (s *Scheduler) moveToDead(ctx context.Context, reminder *Reminder, cause error) error {
	dead := map[string]interface{}{
		"reminder":  reminder,
		"error":     cause.Error(),
		"failed_at": s.now(),
	}

	data, err := json.Marshal(dead)
	if err != nil {
		return fmt.Errorf("failed to marshal dead reminder: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, deadKey, data)
	pipe.ZRem(ctx, pendingKey, reminder.TaskID)
	pipe.HDel(ctx, payloadKey, reminder.TaskID)
	_, err = pipe.Exec(ctx)
	return err
}
