package clock

import "time"

// Clock is injected wherever a timestamp is recorded so tests can pin it.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

func NewClock() Clock {
	return &realClock{}
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

// NewFixedClock returns a Clock that always reports t.
func NewFixedClock(t time.Time) Clock {
	return fixedClock{t: t}
}
