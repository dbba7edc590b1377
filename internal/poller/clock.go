// ABOUTME: Cancellable scheduled-tick abstraction for the poll loop
// ABOUTME: Real implementation wraps time.Ticker; tests drive virtual time

package poller

import "time"

// Ticker delivers ticks to the poll loop.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. Production code uses RealClock; tests inject a fake
// so they can advance time deterministically instead of sleeping.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// RealClock is the wall-clock implementation.
type RealClock struct{}

func (RealClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }
