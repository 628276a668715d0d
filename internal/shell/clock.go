package shell

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultClockInterval is how often the clock text is refreshed.
const DefaultClockInterval = time.Second

// Clock keeps the shell's clock text current.
type Clock struct {
	mu     sync.RWMutex
	logger *slog.Logger
	shell  *Shell

	interval time.Duration
	now      func() time.Time

	// Control channels
	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewClock creates a clock that refreshes shell every interval.
func NewClock(shell *Shell, interval time.Duration, logger *slog.Logger) *Clock {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultClockInterval
	}

	return &Clock{
		logger:   logger,
		shell:    shell,
		interval: interval,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// SetTimeSource replaces time.Now, mainly for tests.
func (c *Clock) SetTimeSource(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Start sets the clock immediately and then on every tick until ctx is
// done or Stop is called.
func (c *Clock) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.mu.Unlock()

	c.tick()
	go c.loop(ctx)

	c.logger.Debug("clock started", "interval", c.interval)
	return nil
}

// Stop stops the clock and waits for its goroutine to exit.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stopCh)
	c.mu.Unlock()

	<-c.doneCh
	c.logger.Debug("clock stopped")
}

func (c *Clock) loop(ctx context.Context) {
	defer close(c.doneCh)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

func (c *Clock) tick() {
	c.mu.RLock()
	now := c.now
	c.mu.RUnlock()

	c.shell.SetClock(now())
}
