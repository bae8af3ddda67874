package stealth

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.calls = append(s.calls, d)
}

func (s *sleepRecorder) total() time.Duration {
	var sum time.Duration
	for _, d := range s.calls {
		sum += d
	}
	return sum
}

func newTestHumanizer(profile Profile, seed int64) (*Humanizer, *sleepRecorder) {
	rec := &sleepRecorder{}
	h := New(profile, WithSleeper(rec.sleep), WithRand(rand.New(rand.NewSource(seed))))
	return h, rec
}

func TestDrawStaysInRangeAndCentres(t *testing.T) {
	h, _ := newTestHumanizer(DefaultProfile(), 42)
	min, max := 2500*time.Millisecond, 8*time.Second

	const samples = 10000
	var sum time.Duration
	for i := 0; i < samples; i++ {
		d := h.Draw(min, max)
		require.GreaterOrEqual(t, d, min)
		require.LessOrEqual(t, d, max)
		sum += d
	}

	mean := sum / samples
	assert.InDelta(t, float64(5250*time.Millisecond), float64(mean), float64(100*time.Millisecond))
}

func TestDrawDegenerateRange(t *testing.T) {
	h, _ := newTestHumanizer(DefaultProfile(), 1)
	assert.Equal(t, 3*time.Second, h.Draw(3*time.Second, 3*time.Second))
	assert.Equal(t, 3*time.Second, h.Draw(3*time.Second, time.Second))
}

func TestDelaySleepsInSubSteps(t *testing.T) {
	h, rec := newTestHumanizer(DefaultProfile(), 7)

	d := h.Delay(2*time.Second, 4*time.Second)

	steps := int(d.Seconds() * stepsPerSecond)
	assert.GreaterOrEqual(t, len(rec.calls), steps)
	// integer division of the step may lose a nanosecond per step
	assert.GreaterOrEqual(t, rec.total(), d-time.Duration(steps))
	// jitter never adds more than maxJitter per step
	assert.LessOrEqual(t, rec.total(), d+time.Duration(len(rec.calls))*maxJitter)
}

func TestShortDelayIsSingleSleep(t *testing.T) {
	h, rec := newTestHumanizer(DefaultProfile(), 7)

	d := h.Delay(100*time.Millisecond, 200*time.Millisecond)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, d, rec.calls[0])
}

func TestTypingPlanWithoutTypos(t *testing.T) {
	profile := DefaultProfile()
	profile.TypoRate = 0
	h, _ := newTestHumanizer(profile, 3)

	text := "Hi Ana, great work!"
	plan := h.TypingPlan(text)

	require.Len(t, plan, len([]rune(text)))
	for i, ks := range plan {
		char := string([]rune(text)[i])
		assert.Equal(t, char, ks.Key)
		switch char {
		case " ", ",", "!":
			assert.GreaterOrEqual(t, ks.Delay, minKeystroke+minPunctPause, "key %q", char)
			assert.LessOrEqual(t, ks.Delay, maxKeystroke+maxPunctPause, "key %q", char)
		default:
			assert.GreaterOrEqual(t, ks.Delay, minKeystroke, "key %q", char)
			assert.LessOrEqual(t, ks.Delay, maxKeystroke, "key %q", char)
		}
	}
}

func TestTypingPlanTyposAreCorrected(t *testing.T) {
	profile := DefaultProfile()
	profile.TypoRate = 1
	h, _ := newTestHumanizer(profile, 11)

	text := "Hello there 42"
	plan := h.TypingPlan(text)

	assert.Equal(t, text, Replay(plan))

	backspaces := 0
	for _, ks := range plan {
		if ks.Key == Backspace {
			backspaces++
		}
	}
	// every mapped letter got one typo, digits and spaces none
	assert.Equal(t, 10, backspaces)
}

func TestTypeStopsOnError(t *testing.T) {
	profile := DefaultProfile()
	profile.TypoRate = 0
	h, rec := newTestHumanizer(profile, 5)

	var pressed []string
	err := h.Type(h.TypingPlan("abc"), func(key string) error {
		if key == "c" {
			return assert.AnError
		}
		pressed = append(pressed, key)
		return nil
	})

	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"a", "b"}, pressed)
	assert.Len(t, rec.calls, 2)
}

func TestMaybeBreak(t *testing.T) {
	h, rec := newTestHumanizer(DefaultProfile(), 9)

	for _, count := range []int{0, 1, 9, 11} {
		_, took := h.MaybeBreak(count)
		assert.False(t, took, "count %d", count)
	}
	assert.Empty(t, rec.calls)

	d, took := h.MaybeBreak(10)
	require.True(t, took)
	assert.GreaterOrEqual(t, d, 30*time.Second)
	assert.LessOrEqual(t, d, 180*time.Second)
	assert.Equal(t, int(d/breakSegment), len(rec.calls))
	assert.InDelta(t, float64(d), float64(rec.total()), float64(time.Duration(len(rec.calls))))
}

func TestMaybeBreakDisabled(t *testing.T) {
	profile := DefaultProfile()
	profile.BreakEvery = 0
	h, _ := newTestHumanizer(profile, 9)

	_, took := h.MaybeBreak(10)
	assert.False(t, took)
}
