package common

import "time"

type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d. Workflows take it as a
// dependency so tests can fire timers by hand.
type AfterFunc func(d time.Duration, f func()) Timer

func RealAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
