package remote

import (
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned without touching the backend while the breaker
// is open. Poll loops treat it like any other fetch failure: keep the stale
// list and retry on a later tick.
var ErrBreakerOpen = errors.New("backend temporarily unavailable")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

type BreakerConfig struct {
	MaxFailures      int           `json:"max_failures"`
	Timeout          time.Duration `json:"timeout"`
	HalfOpenMaxCalls int           `json:"half_open_max_calls"`

	// IsFailure decides whether an error counts against the breaker. A nil
	// func counts every non-nil error; the backend accessor excludes
	// not-found, which is an answer from the backend rather than an outage.
	IsFailure func(error) bool
}

func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		HalfOpenMaxCalls: 3,
	}
}

// Breaker shields the backend from call storms while it is failing. The
// poll-based refresh design retries every tick, so without a breaker a
// backend outage would be hammered once per second per screen.
type Breaker struct {
	mu              sync.Mutex
	state           BreakerState
	failureCount    int
	successCount    int
	lastFailureTime time.Time

	maxFailures      int
	timeout          time.Duration
	halfOpenMaxCalls int
	isFailure        func(error) bool
}

func NewBreaker(config *BreakerConfig) *Breaker {
	if config == nil {
		config = DefaultBreakerConfig()
	}

	isFailure := config.IsFailure
	if isFailure == nil {
		isFailure = func(err error) bool { return err != nil }
	}

	return &Breaker{
		state:            BreakerClosed,
		maxFailures:      config.MaxFailures,
		timeout:          config.Timeout,
		halfOpenMaxCalls: config.HalfOpenMaxCalls,
		isFailure:        isFailure,
	}
}

// Execute runs fn if the breaker admits the call. The returned error is
// always fn's own, except when the call is rejected outright.
func (b *Breaker) Execute(fn func() error) error {
	if !b.allow() {
		return ErrBreakerOpen
	}

	err := fn()
	if b.isFailure(err) {
		b.recordFailure()
	} else {
		b.recordSuccess()
	}
	return err
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerClosed:
		return true
	case BreakerOpen:
		if time.Since(b.lastFailureTime) >= b.timeout {
			b.state = BreakerHalfOpen
			b.successCount = 0
			return true
		}
		return false
	case BreakerHalfOpen:
		return b.successCount < b.halfOpenMaxCalls
	}
	return false
}

func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.lastFailureTime = time.Now()

	if b.state == BreakerHalfOpen || b.failureCount >= b.maxFailures {
		b.state = BreakerOpen
	}
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerHalfOpen:
		b.successCount++
		if b.successCount >= b.halfOpenMaxCalls {
			b.state = BreakerClosed
			b.failureCount = 0
		}
	case BreakerClosed:
		b.failureCount = 0
	}
}
