package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_ExpiresOnceAfterFullDuration(t *testing.T) {
	fc := newFakeClock()
	clock := NewClock(fc.Now)

	fired := 0
	clock.OnExpire(func() { fired++ })
	clock.Start(1 * time.Minute)

	for i := 0; i < 60; i++ {
		fc.Advance(time.Second)
		clock.Tick()
	}

	assert.Equal(t, 1, fired)
	assert.Equal(t, time.Duration(0), clock.Remaining())
	assert.True(t, clock.Expired())

	for i := 0; i < 5; i++ {
		fc.Advance(time.Second)
		assert.Equal(t, time.Duration(0), clock.Tick())
	}
	assert.Equal(t, 1, fired)
}

func TestClock_RemainingNeverIncreasesNorGoesNegative(t *testing.T) {
	fc := newFakeClock()
	clock := NewClock(fc.Now)
	clock.Start(10 * time.Second)

	steps := []time.Duration{time.Second, 2 * time.Second, -3 * time.Second, 500 * time.Millisecond, time.Minute, -time.Minute}
	previous := clock.Remaining()
	assert.Equal(t, 10*time.Second, previous)

	for _, step := range steps {
		fc.Advance(step)
		remaining := clock.Tick()
		assert.LessOrEqual(t, remaining, previous)
		assert.GreaterOrEqual(t, remaining, time.Duration(0))
		previous = remaining
	}
	assert.Equal(t, time.Duration(0), previous)
}

func TestClock_RemainingFiresExpiry(t *testing.T) {
	fc := newFakeClock()
	clock := NewClock(fc.Now)

	fired := 0
	clock.OnExpire(func() { fired++ })
	clock.Start(30 * time.Second)

	fc.Advance(31 * time.Second)
	assert.Equal(t, time.Duration(0), clock.Remaining())
	assert.Equal(t, 1, fired)
	assert.True(t, clock.Expired())

	clock.Tick()
	clock.Remaining()
	assert.Equal(t, 1, fired)
}

func TestClock_ElapsedDoesNotFireExpiry(t *testing.T) {
	fc := newFakeClock()
	clock := NewClock(fc.Now)

	fired := false
	clock.OnExpire(func() { fired = true })
	clock.Start(10 * time.Second)

	fc.Advance(20 * time.Second)
	assert.Equal(t, 10*time.Second, clock.Elapsed())
	assert.False(t, fired)

	clock.Tick()
	assert.True(t, fired)
}

func TestClock_DeadlineSurvivesMissedTicks(t *testing.T) {
	fc := newFakeClock()
	clock := NewClock(fc.Now)
	clock.Start(time.Minute)

	// Tab in background: no ticks for 40 seconds.
	fc.Advance(40 * time.Second)
	assert.Equal(t, 20*time.Second, clock.Tick())
	assert.Equal(t, 40*time.Second, clock.Elapsed())
}

func TestClock_StopPreventsExpiry(t *testing.T) {
	fc := newFakeClock()
	clock := NewClock(fc.Now)

	fired := false
	clock.OnExpire(func() { fired = true })
	clock.Start(time.Second)
	clock.Stop()

	fc.Advance(2 * time.Second)
	clock.Tick()
	assert.False(t, fired)
}

func TestClock_StartWithDeadline(t *testing.T) {
	fc := newFakeClock()
	clock := NewClock(fc.Now)

	clock.StartWithDeadline(fc.Now().Add(15*time.Minute), 30*time.Minute)

	assert.Equal(t, 15*time.Minute, clock.Remaining())
	assert.Equal(t, 15*time.Minute, clock.Elapsed())
	assert.Equal(t, fc.Now().Add(15*time.Minute), clock.Deadline())
}

func TestClock_NotStarted(t *testing.T) {
	clock := NewClock(nil)
	assert.Equal(t, time.Duration(0), clock.Remaining())
	assert.Equal(t, time.Duration(0), clock.Tick())
	assert.False(t, clock.Expired())
}
