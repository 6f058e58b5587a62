package cursor

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop prevents the callback from running. Returns false if it already ran.
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// SystemScheduler schedules callbacks with time.AfterFunc.
// Callbacks run on their own goroutine.
type SystemScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
