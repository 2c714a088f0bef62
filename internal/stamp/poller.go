package stamp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"taskify/app/internal/localstore"
)

// FetchFunc replaces a screen's in-memory list with a fresh copy from the
// remote accessor. Implementations must honor ctx: once the context is
// cancelled the result must be discarded, never applied to screen state.
type FetchFunc func(ctx context.Context) error

type PollerConfig struct {
	Store    *localstore.Store
	Channels []string
	Interval time.Duration
	Fetch    FetchFunc
	Logger   *zap.Logger
}

// Poller keeps one screen's list current. Its lifecycle mirrors the screen:
// Start on mount (with one unconditional fetch), a fixed-interval check of
// the watched channels while mounted, Stop on unmount.
//
// Fetches are single-flight: the loop runs them synchronously, so a tick
// that fires while a fetch is still in progress is simply absorbed by the
// ticker. The last-seen stamp for a channel advances only after a successful
// fetch; a transient failure is retried on the next tick because the stamp
// comparison still reports a change.
type Poller struct {
	store    *localstore.Store
	channels []string
	interval time.Duration
	fetch    FetchFunc
	log      *zap.Logger

	// lastSeen is touched only by Start and the loop goroutine.
	lastSeen map[string]string

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewPoller(cfg PollerConfig) (*Poller, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("poller requires a local store")
	}
	if cfg.Fetch == nil {
		return nil, fmt.Errorf("poller requires a fetch function")
	}
	if len(cfg.Channels) == 0 {
		return nil, fmt.Errorf("poller requires at least one channel")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Poller{
		store:    cfg.Store,
		channels: cfg.Channels,
		interval: cfg.Interval,
		fetch:    cfg.Fetch,
		log:      cfg.Logger,
		lastSeen: make(map[string]string),
	}, nil
}

// Start seeds the last-seen stamps, performs the mount fetch and launches
// the poll loop. Starting an already started poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.started = true

	for _, channel := range p.channels {
		if value, ok := p.currentStamp(channel); ok {
			p.lastSeen[channel] = value
		} else {
			p.lastSeen[channel] = InitialStamp
		}
	}

	if err := p.fetch(loopCtx); err != nil {
		p.log.Warn("initial fetch failed", zap.Error(err))
	}

	p.wg.Add(1)
	go p.loop(loopCtx)
}

// Stop cancels the loop and waits for it to exit. When Stop returns, no
// further fetch will start; a fetch in flight has had its context cancelled
// and has finished.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.cancel()
	p.wg.Wait()
	p.started = false
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	// Stamps are captured before the fetch. A publish that lands while the
	// fetch is running therefore still reads as changed on the next tick,
	// which is what makes back-to-back mutations converge.
	changed := make(map[string]string)
	for _, channel := range p.channels {
		current, ok := p.currentStamp(channel)
		if !ok {
			continue
		}
		if current != p.lastSeen[channel] {
			changed[channel] = current
		}
	}

	if len(changed) == 0 {
		return
	}

	if err := p.fetch(ctx); err != nil {
		if ctx.Err() == nil {
			p.log.Warn("refresh failed, keeping stale data", zap.Error(err))
		}
		return
	}

	for channel, value := range changed {
		p.lastSeen[channel] = value
	}
}

// currentStamp reads a channel's stamp, mapping an absent key to the initial
// sentinel. A store read failure reports not-ok so the tick treats the
// channel as unchanged instead of triggering a spurious fetch.
func (p *Poller) currentStamp(channel string) (string, bool) {
	value, err := p.store.GetString(channel)
	if err != nil {
		if errors.Is(err, localstore.ErrNotFound) {
			return InitialStamp, true
		}
		p.log.Debug("stamp read failed", zap.String("channel", channel), zap.Error(err))
		return "", false
	}
	return value, true
}
