// Package stealth paces every interaction so that its cadence resembles a
// human operator: normally distributed pauses between actions, uniform
// keystroke timing with punctuation pauses and occasional corrected typos,
// and long breaks every few actions.
//
// All sleeps block the caller until they complete. Nothing here can be
// cancelled midway.
package stealth

import (
	"math/rand"
	"time"

	"github.com/yourusername/linkedin-outreach/internal/logger"
)

// Profile is the immutable timing configuration
type Profile struct {
	MinActionDelay time.Duration
	MaxActionDelay time.Duration
	BreakEvery     int
	BreakMin       time.Duration
	BreakMax       time.Duration
	TypoRate       float64
}

// DefaultProfile mirrors the values the bot has always shipped with
func DefaultProfile() Profile {
	return Profile{
		MinActionDelay: 2500 * time.Millisecond,
		MaxActionDelay: 8 * time.Second,
		BreakEvery:     10,
		BreakMin:       30 * time.Second,
		BreakMax:       180 * time.Second,
		TypoRate:       0.05,
	}
}

const (
	// sub-steps per second when a delay is slept in pieces
	stepsPerSecond = 4
	jitterChance   = 0.1
	maxJitter      = 10 * time.Millisecond

	breakSegment = 10 * time.Second
)

// Sleeper blocks for the given duration
type Sleeper func(time.Duration)

// Humanizer produces and sleeps randomized-but-bounded delays
type Humanizer struct {
	profile Profile
	rng     *rand.Rand
	sleep   Sleeper
}

// Option customizes a Humanizer
type Option func(*Humanizer)

// WithSleeper replaces time.Sleep, mostly for tests
func WithSleeper(s Sleeper) Option {
	return func(h *Humanizer) {
		h.sleep = s
	}
}

// WithRand sets the random source
func WithRand(r *rand.Rand) Option {
	return func(h *Humanizer) {
		h.rng = r
	}
}

// New creates a Humanizer for the given profile
func New(profile Profile, opts ...Option) *Humanizer {
	h := &Humanizer{
		profile: profile,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:   time.Sleep,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Profile returns the timing configuration
func (h *Humanizer) Profile() Profile {
	return h.profile
}

// Float64 exposes the humanizer's random source for probability gates
func (h *Humanizer) Float64() float64 {
	return h.rng.Float64()
}

// Intn exposes the humanizer's random source for bounded picks
func (h *Humanizer) Intn(n int) int {
	return h.rng.Intn(n)
}

// Draw samples a delay from a normal distribution centred on the middle of
// [min, max] with a standard deviation of a sixth of the range, clamped
// into the range.
func (h *Humanizer) Draw(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	mean := float64(min+max) / 2
	stdDev := float64(max-min) / 6

	d := time.Duration(h.rng.NormFloat64()*stdDev + mean)
	if d < min {
		d = min
	}
	if d > max {
		d = max
	}
	return d
}

// Delay draws a delay and sleeps it in small sub-steps, occasionally
// inserting micro-jitter so the pause is not a single fixed sleep.
// It returns the drawn delay.
func (h *Humanizer) Delay(min, max time.Duration) time.Duration {
	d := h.Draw(min, max)

	steps := int(d.Seconds() * stepsPerSecond)
	if steps < 1 {
		h.sleep(d)
		return d
	}

	step := d / time.Duration(steps)
	for i := 0; i < steps; i++ {
		h.sleep(step)
		if h.rng.Float64() < jitterChance {
			h.sleep(time.Duration(h.rng.Float64() * float64(maxJitter)))
		}
	}
	return d
}

// ActionDelay sleeps the profile's default between-action delay
func (h *Humanizer) ActionDelay() time.Duration {
	return h.Delay(h.profile.MinActionDelay, h.profile.MaxActionDelay)
}

// Pause sleeps a fixed duration
func (h *Humanizer) Pause(d time.Duration) {
	if d > 0 {
		h.sleep(d)
	}
}

// Uniform returns a duration drawn uniformly from [min, max]
func (h *Humanizer) Uniform(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(h.rng.Int63n(int64(max-min)+1))
}

// MaybeBreak takes a long break once every BreakEvery actions. The caller
// owns the action counter and resets it when a break was taken.
func (h *Humanizer) MaybeBreak(actionCount int) (time.Duration, bool) {
	if h.profile.BreakEvery <= 0 || actionCount <= 0 || actionCount%h.profile.BreakEvery != 0 {
		return 0, false
	}

	d := h.Uniform(h.profile.BreakMin, h.profile.BreakMax)
	logger.Info("Taking a break", "duration", d.Round(time.Second), "after_actions", actionCount)

	// Split like someone checking their phone every few seconds
	segments := 1
	if d > breakSegment {
		segments = int(d / breakSegment)
	}
	segment := d / time.Duration(segments)
	for i := 0; i < segments; i++ {
		h.sleep(segment)
		if segments > 1 && i < segments-1 && h.rng.Float64() < 0.3 {
			logger.Debug("Still on break", "elapsed", (segment * time.Duration(i+1)).Round(time.Second))
		}
	}
	return d, true
}
