package resilience

import (
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crypto-advisor/internal/errors"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestCooldown(clock *fakeClock) *Cooldown {
	c := NewCooldown(DefaultCooldownConfig(), zerolog.Nop())
	c.SetClock(clock.Now)
	return c
}

func TestCooldownCountsDownAndReopens(t *testing.T) {
	clock := newFakeClock()
	c := newTestCooldown(clock)

	expired := 0
	c.OnExpire(func() { expired++ })

	require.NoError(t, c.Allow())
	notice := apperrors.NewRateLimited("details", "app.rateLimitActiveError", map[string]any{"cryptoName": "Bitcoin"})
	c.Activate(notice)

	st := c.Status()
	assert.True(t, st.Active)
	assert.Equal(t, 90, st.RemainingSeconds)
	assert.Equal(t, notice, st.Notice)

	err := c.Allow()
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrRateLimited))

	for want := 89; want >= 1; want-- {
		clock.Advance(time.Second)
		c.Tick()
		assert.Equal(t, want, c.Status().RemainingSeconds)
		assert.True(t, c.Active())
	}

	clock.Advance(time.Second)
	assert.True(t, c.Tick())

	st = c.Status()
	assert.False(t, st.Active)
	assert.Zero(t, st.RemainingSeconds)
	assert.Nil(t, st.Notice)
	assert.Equal(t, 1, expired)
	assert.NoError(t, c.Allow())

	assert.False(t, c.Tick())
	assert.Equal(t, 1, expired)
}

func TestCooldownReactivationRearms(t *testing.T) {
	clock := newFakeClock()
	c := newTestCooldown(clock)

	c.Activate(nil)
	assert.Equal(t, "app.rateLimitActiveError", c.Status().Notice.Key)

	clock.Advance(60 * time.Second)
	c.Tick()
	assert.Equal(t, 30, c.Status().RemainingSeconds)

	c.Activate(nil)
	assert.Equal(t, 90, c.Status().RemainingSeconds)

	clock.Advance(60 * time.Second)
	c.Tick()
	assert.True(t, c.Active())
	assert.Equal(t, int64(2), c.Stats().TotalActivations)
}

func TestCooldownActivateHooks(t *testing.T) {
	c := newTestCooldown(newFakeClock())
	var got []CooldownStatus
	c.OnActivate(func(s CooldownStatus) { got = append(got, s) })

	c.Activate(nil)
	require.Len(t, got, 1)
	assert.True(t, got[0].Active)
	assert.Equal(t, 90, got[0].RemainingSeconds)
}

// Feature: crypto-advisor, Property: Cooldown gate rejects until expiry
//
// Property: After any activation, every Allow is rejected while the clock is
// short of the configured duration, the countdown never increases, and the
// first tick at or past the expiry reopens the gate exactly once.
func TestProperty_CooldownGate(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("gate closed until expiry, then reopens once", prop.ForAll(
		func(durationSecs int, steps []int) bool {
			clock := newFakeClock()
			c := NewCooldown(CooldownConfig{Duration: time.Duration(durationSecs) * time.Second}, zerolog.Nop())
			c.SetClock(clock.Now)

			expired := 0
			c.OnExpire(func() { expired++ })
			c.Activate(nil)

			elapsed := time.Duration(0)
			total := time.Duration(durationSecs) * time.Second
			last := c.Status().RemainingSeconds
			for _, ms := range steps {
				step := time.Duration(ms) * time.Millisecond
				clock.Advance(step)
				elapsed += step
				c.Tick()

				if elapsed < total {
					if c.Allow() == nil || expired != 0 {
						return false
					}
					rem := c.Status().RemainingSeconds
					if rem > last || rem < 1 {
						return false
					}
					last = rem
				} else {
					if c.Allow() != nil || expired != 1 {
						return false
					}
				}
			}

			clock.Advance(total)
			c.Tick()
			c.Tick()
			return expired == 1 && c.Allow() == nil
		},
		gen.IntRange(1, 120),
		gen.SliceOfN(40, gen.IntRange(0, 5000)),
	))

	properties.TestingRun(t)
}
