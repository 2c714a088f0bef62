package remote

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultBreakerConfig(t *testing.T) {
	config := DefaultBreakerConfig()

	if config.MaxFailures != 5 {
		t.Errorf("Expected MaxFailures to be 5, got %d", config.MaxFailures)
	}

	if config.Timeout != 30*time.Second {
		t.Errorf("Expected Timeout to be 30s, got %v", config.Timeout)
	}

	if config.HalfOpenMaxCalls != 3 {
		t.Errorf("Expected HalfOpenMaxCalls to be 3, got %d", config.HalfOpenMaxCalls)
	}
}

func TestBreaker_OpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(&BreakerConfig{MaxFailures: 3, Timeout: time.Minute, HalfOpenMaxCalls: 1})

	failing := func() error { return errors.New("backend down") }

	for i := 0; i < 3; i++ {
		if err := b.Execute(failing); err == nil {
			t.Fatal("Expected failure to propagate")
		}
	}

	if b.State() != BreakerOpen {
		t.Errorf("Expected breaker to be open, got state %d", b.State())
	}

	if err := b.Execute(failing); !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("Expected ErrBreakerOpen while open, got %v", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(&BreakerConfig{MaxFailures: 2, Timeout: time.Minute, HalfOpenMaxCalls: 1})

	b.Execute(func() error { return errors.New("fail") })
	b.Execute(func() error { return nil })
	b.Execute(func() error { return errors.New("fail") })

	if b.State() != BreakerClosed {
		t.Errorf("Expected breaker to stay closed after interleaved success, got state %d", b.State())
	}
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b := NewBreaker(&BreakerConfig{MaxFailures: 1, Timeout: 10 * time.Millisecond, HalfOpenMaxCalls: 2})

	b.Execute(func() error { return errors.New("fail") })
	if b.State() != BreakerOpen {
		t.Fatalf("Expected open breaker, got state %d", b.State())
	}

	time.Sleep(15 * time.Millisecond)

	for i := 0; i < 2; i++ {
		if err := b.Execute(func() error { return nil }); err != nil {
			t.Fatalf("Expected probe call to be admitted, got %v", err)
		}
	}

	if b.State() != BreakerClosed {
		t.Errorf("Expected breaker to close after successful probes, got state %d", b.State())
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker(&BreakerConfig{MaxFailures: 1, Timeout: 10 * time.Millisecond, HalfOpenMaxCalls: 2})

	b.Execute(func() error { return errors.New("fail") })
	time.Sleep(15 * time.Millisecond)

	b.Execute(func() error { return errors.New("still failing") })

	if b.State() != BreakerOpen {
		t.Errorf("Expected breaker to reopen after half-open failure, got state %d", b.State())
	}
}

func TestBreaker_IsFailureFilter(t *testing.T) {
	notFound := errors.New("record not found")
	b := NewBreaker(&BreakerConfig{
		MaxFailures:      1,
		Timeout:          time.Minute,
		HalfOpenMaxCalls: 1,
		IsFailure: func(err error) bool {
			return err != nil && !errors.Is(err, notFound)
		},
	})

	for i := 0; i < 5; i++ {
		b.Execute(func() error { return notFound })
	}

	// An answered lookup, even a negative one, is not an outage.
	if b.State() != BreakerClosed {
		t.Errorf("Expected breaker to ignore not-found answers, got state %d", b.State())
	}
}
