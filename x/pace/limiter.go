package pace

import "time"

// Limiter caps a loop to a target per-iteration interval. Call Wait once per
// iteration: it measures the time spent since the previous call and sleeps
// for the remainder of the interval, if any. The clock and sleep functions
// are injectable so the arithmetic is testable without real time passing.
type Limiter struct {
	interval time.Duration
	last     time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

// New creates a limiter with the given per-iteration interval.
func New(interval time.Duration) *Limiter {
	if interval < 0 {
		interval = 0
	}
	return &Limiter{
		interval: interval,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// ForRate creates a limiter targeting n iterations per second.
func ForRate(n int) *Limiter {
	if n <= 0 {
		return New(0)
	}
	return New(time.Second / time.Duration(n))
}

// Interval returns the per-iteration budget.
func (l *Limiter) Interval() time.Duration { return l.interval }

// Wait pays out the remainder of the current interval and returns how long it
// slept. The first call only marks the start of the first interval.
func (l *Limiter) Wait() time.Duration {
	now := l.now()
	if l.last.IsZero() || l.interval == 0 {
		l.last = now
		return 0
	}

	elapsed := now.Sub(l.last)
	rem := l.interval - elapsed
	if rem <= 0 {
		// Iteration overran its budget; restart the interval from here.
		l.last = now
		return 0
	}

	l.sleep(rem)
	l.last = l.last.Add(l.interval)
	return rem
}

// Reset forgets the previous mark; the next Wait starts a fresh interval.
func (l *Limiter) Reset() { l.last = time.Time{} }
