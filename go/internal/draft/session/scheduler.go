package session

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cancel stops a repeating schedule. It is safe to call more than once and from inside the callback.
type Cancel func()

// Scheduler supplies wall time and repeating callbacks to the Manager.
type Scheduler interface {
	Now() time.Time
	Every(d time.Duration, fn func()) Cancel
}

// ClockScheduler runs callbacks from a clockwork ticker goroutine.
type ClockScheduler struct {
	clock clockwork.Clock
}

// NewClockScheduler wraps clock. A nil clock means the real one.
func NewClockScheduler(clock clockwork.Clock) *ClockScheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ClockScheduler{clock: clock}
}

func (s *ClockScheduler) Now() time.Time {
	return s.clock.Now()
}

// Every calls fn once per d until the returned Cancel is called.
// Cancel does not wait for a callback that is already running.
func (s *ClockScheduler) Every(d time.Duration, fn func()) Cancel {
	ticker := s.clock.NewTicker(d)
	done := make(chan struct{})

	go func() {
		defer stopAndDrainTicker(ticker)
		for {
			select {
			case <-done:
				return
			case <-ticker.Chan():
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// stopAndDrainTicker stops the ticker and discards a tick that was already queued.
func stopAndDrainTicker(ticker clockwork.Ticker) {
	ticker.Stop()
	select {
	case <-ticker.Chan():
	default:
	}
}
