// Package resilience provides the process-wide rate-limit cooldown gate.
package resilience

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/logging"
)

// CooldownState represents the state of the gate.
type CooldownState string

const (
	CooldownOpen    CooldownState = "OPEN"    // Requests allowed
	CooldownCooling CooldownState = "COOLING" // Rate limited, rejecting requests
)

// CooldownConfig holds cooldown gate configuration.
type CooldownConfig struct {
	// Duration is how long the gate stays closed after a rate-limit signal
	Duration time.Duration
	// TickInterval is the countdown granularity used by Run
	TickInterval time.Duration
}

// DefaultCooldownConfig returns the default configuration.
func DefaultCooldownConfig() CooldownConfig {
	return CooldownConfig{
		Duration:     90 * time.Second,
		TickInterval: time.Second,
	}
}

// CooldownStatus is a point-in-time view of the gate.
type CooldownStatus struct {
	Active           bool             `json:"active"`
	RemainingSeconds int              `json:"remainingSeconds"`
	Notice           *apperrors.Error `json:"notice,omitempty"`
}

// Cooldown rejects outbound requests for a fixed period after any component
// reports a rate limit. One gate is shared by every component that fetches.
type Cooldown struct {
	config CooldownConfig
	logger zerolog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	state     CooldownState
	expiry    time.Time
	remaining int
	notice    *apperrors.Error

	onExpire   []func()
	onActivate []func(CooldownStatus)

	// Metrics
	totalActivations int64
	totalRejected    int64
}

// NewCooldown creates an open gate.
func NewCooldown(config CooldownConfig, logger zerolog.Logger) *Cooldown {
	if config.Duration <= 0 {
		config.Duration = DefaultCooldownConfig().Duration
	}
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	return &Cooldown{
		config: config,
		logger: logging.WithComponent(logger, "cooldown"),
		now:    time.Now,
		state:  CooldownOpen,
	}
}

// SetClock replaces the time source.
func (c *Cooldown) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// OnExpire registers fn to run after the gate reopens. Hooks run outside the
// gate's lock.
func (c *Cooldown) OnExpire(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpire = append(c.onExpire, fn)
}

// OnActivate registers fn to run after every activation.
func (c *Cooldown) OnActivate(fn func(CooldownStatus)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onActivate = append(c.onActivate, fn)
}

// Activate closes the gate, or re-arms it while cooling. A nil notice
// records the generic rate-limit message.
func (c *Cooldown) Activate(notice *apperrors.Error) {
	if notice == nil {
		notice = apperrors.New(apperrors.KindRateLimited, "app.rateLimitActiveError", nil)
	}

	c.mu.Lock()
	c.state = CooldownCooling
	c.expiry = c.now().Add(c.config.Duration)
	c.remaining = ceilSeconds(c.config.Duration)
	c.notice = notice
	c.totalActivations++
	status := c.statusLocked()
	hooks := append([]func(CooldownStatus){}, c.onActivate...)
	c.mu.Unlock()

	logging.LogCooldown(c.logger, true, c.config.Duration)
	for _, fn := range hooks {
		fn(status)
	}
}

// Allow returns a RateLimited error while the gate is cooling.
func (c *Cooldown) Allow() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == CooldownCooling {
		c.totalRejected++
		return apperrors.New(apperrors.KindRateLimited, "app.rateLimitActiveGeneral", nil)
	}
	return nil
}

// Active reports whether the gate is cooling.
func (c *Cooldown) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == CooldownCooling
}

// Tick recomputes the countdown. When the expiry has passed the gate
// reopens and the expiry hooks fire. It reports whether the status changed.
func (c *Cooldown) Tick() bool {
	c.mu.Lock()
	if c.state != CooldownCooling {
		c.mu.Unlock()
		return false
	}

	left := c.expiry.Sub(c.now())
	if left > 0 {
		secs := ceilSeconds(left)
		changed := secs != c.remaining
		c.remaining = secs
		c.mu.Unlock()
		return changed
	}

	c.state = CooldownOpen
	c.expiry = time.Time{}
	c.remaining = 0
	c.notice = nil
	hooks := append([]func(){}, c.onExpire...)
	c.mu.Unlock()

	logging.LogCooldown(c.logger, false, 0)
	for _, fn := range hooks {
		fn()
	}
	return true
}

// Run ticks the countdown until ctx is cancelled. onChange, when non-nil,
// is called after every tick that changed the status.
func (c *Cooldown) Run(ctx context.Context, onChange func(CooldownStatus)) {
	ticker := time.NewTicker(c.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.Tick() && onChange != nil {
				onChange(c.Status())
			}
		}
	}
}

// Status returns the current gate status.
func (c *Cooldown) Status() CooldownStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.statusLocked()
}

func (c *Cooldown) statusLocked() CooldownStatus {
	return CooldownStatus{
		Active:           c.state == CooldownCooling,
		RemainingSeconds: c.remaining,
		Notice:           c.notice,
	}
}

// State returns the current gate state.
func (c *Cooldown) State() CooldownState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Stats returns gate statistics.
func (c *Cooldown) Stats() CooldownStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CooldownStats{
		State:            c.state,
		TotalActivations: c.totalActivations,
		TotalRejected:    c.totalRejected,
		Expiry:           c.expiry,
	}
}

// CooldownStats holds gate statistics.
type CooldownStats struct {
	State            CooldownState
	TotalActivations int64
	TotalRejected    int64
	Expiry           time.Time
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
