package util

import (
	"time"

	"golang.org/x/exp/slices"
)

// Timers runs callbacks on an event loop that has no timer support of
// its own. The loop must call Run periodically, such as after every
// frame, so the resolution of a timer is the interval between calls.
type Timers struct {
	now     func() time.Time
	pending []*timer
}

type timer struct {
	at time.Time
	f  func()
}

// NewTimers returns a Timers that reads the current time from now. If
// now is nil, time.Now is used.
func NewTimers(now func() time.Time) *Timers {
	if now == nil {
		now = time.Now
	}
	return &Timers{now: now}
}

// AfterFunc schedules f to be called by the first call to Run once d
// has elapsed.
func (t *Timers) AfterFunc(d time.Duration, f func()) (stop func()) {
	tm := &timer{at: t.now().Add(d), f: f}
	t.pending = append(t.pending, tm)

	return func() {
		i := slices.Index(t.pending, tm)
		if i >= 0 {
			t.pending = slices.Delete(t.pending, i, i+1)
		}
	}
}

// Pending returns the number of timers that have not yet run.
func (t *Timers) Pending() int {
	return len(t.pending)
}

// Run calls every timer that is due in the order of their deadlines.
// Timers scheduled by the callbacks are not run until the next call.
func (t *Timers) Run() {
	now := t.now()

	var due []*timer
	t.pending = slices.DeleteFunc(t.pending, func(tm *timer) bool {
		if tm.at.After(now) {
			return false
		}
		due = append(due, tm)
		return true
	})

	slices.SortStableFunc(due, func(t1, t2 *timer) int { return t1.at.Compare(t2.at) })
	for _, tm := range due {
		tm.f()
	}
}
