package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVirtualClock_FiresInDeadlineOrder(t *testing.T) {
	clock := NewVirtualClock(epoch)
	var fired []string

	clock.AfterFunc(300*time.Millisecond, func() { fired = append(fired, "c") })
	clock.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "a") })
	clock.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "b") })

	clock.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, epoch.Add(200*time.Millisecond), clock.Now())

	clock.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, fired)
	assert.Equal(t, 0, clock.Pending())
}

func TestVirtualClock_NowDuringCallbackIsDeadline(t *testing.T) {
	clock := NewVirtualClock(epoch)
	var seen time.Time
	clock.AfterFunc(250*time.Millisecond, func() { seen = clock.Now() })

	clock.Advance(time.Second)
	assert.Equal(t, epoch.Add(250*time.Millisecond), seen)
}

func TestVirtualClock_Stop(t *testing.T) {
	clock := NewVirtualClock(epoch)
	called := false
	timer := clock.AfterFunc(time.Millisecond, func() { called = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	clock.Advance(time.Second)
	assert.False(t, called)
}

func TestVirtualClock_CallbackMayArmTimers(t *testing.T) {
	clock := NewVirtualClock(epoch)
	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			clock.AfterFunc(10*time.Millisecond, tick)
		}
	}
	clock.AfterFunc(10*time.Millisecond, tick)

	clock.Advance(time.Second)
	assert.Equal(t, 3, count)
}

func TestVirtualClock_SetBackwardsKeepsTime(t *testing.T) {
	clock := NewVirtualClock(epoch)
	clock.Set(epoch.Add(-time.Hour))
	assert.Equal(t, epoch, clock.Now())
}
