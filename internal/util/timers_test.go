package util_test

import (
	"testing"
	"time"

	"deedles.dev/wlral/internal/util"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestTimersRunInDeadlineOrder(t *testing.T) {
	clock := fakeClock{t: time.Unix(1000, 0)}
	tm := util.NewTimers(clock.now)

	var order []string
	tm.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	tm.AfterFunc(time.Second, func() { order = append(order, "a") })
	tm.AfterFunc(time.Minute, func() { order = append(order, "c") })

	tm.Run()
	assert.Empty(t, order)

	clock.t = clock.t.Add(5 * time.Second)
	tm.Run()
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, tm.Pending())

	tm.Run()
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestTimersStop(t *testing.T) {
	clock := fakeClock{t: time.Unix(1000, 0)}
	tm := util.NewTimers(clock.now)

	var called bool
	stop := tm.AfterFunc(time.Second, func() { called = true })
	stop()
	stop()

	clock.t = clock.t.Add(time.Hour)
	tm.Run()
	assert.False(t, called)
	assert.Zero(t, tm.Pending())
}

func TestTimersScheduledFromCallback(t *testing.T) {
	clock := fakeClock{t: time.Unix(1000, 0)}
	tm := util.NewTimers(clock.now)

	var calls int
	tm.AfterFunc(0, func() {
		calls++
		tm.AfterFunc(0, func() { calls++ })
	})

	tm.Run()
	assert.Equal(t, 1, calls)
	tm.Run()
	assert.Equal(t, 2, calls)
}
