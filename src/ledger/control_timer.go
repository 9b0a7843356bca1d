package ledger

import (
	"time"
)

type timerFactory func(time.Duration) <-chan time.Time

// ControlTimer ticks when a block should be committed. The commit loop arms
// it when transactions arrive in an empty mempool, so an idle ledger does not
// wake up.
type ControlTimer struct {
	timerFactory timerFactory
	tickCh       chan struct{}      //sends a signal to listening process
	resetCh      chan time.Duration //receives instruction to reset the timer
	shutdownCh   chan struct{}      //receives instruction to exit Run loop
}

// NewControlTimer ...
func NewControlTimer(timerFactory timerFactory) *ControlTimer {
	return &ControlTimer{
		timerFactory: timerFactory,
		tickCh:       make(chan struct{}),
		resetCh:      make(chan time.Duration),
		shutdownCh:   make(chan struct{}),
	}
}

// NewBlockTimer returns a ControlTimer that ticks exactly after the requested
// duration.
func NewBlockTimer() *ControlTimer {
	fixedTimeout := func(d time.Duration) <-chan time.Time {
		if d == 0 {
			return nil
		}
		return time.After(d)
	}
	return NewControlTimer(fixedTimeout)
}

// Run is the timer loop. A zero init leaves the timer disarmed.
func (c *ControlTimer) Run(init time.Duration) {
	timer := c.timerFactory(init)
	for {
		select {
		case <-timer:
			timer = nil
			select {
			case c.tickCh <- struct{}{}:
			case <-c.shutdownCh:
				return
			}
		case t := <-c.resetCh:
			timer = c.timerFactory(t)
		case <-c.shutdownCh:
			return
		}
	}
}

// Reset arms the timer. It returns false if the timer is shut down.
func (c *ControlTimer) Reset(d time.Duration) bool {
	select {
	case c.resetCh <- d:
		return true
	case <-c.shutdownCh:
		return false
	}
}

// Shutdown exits the Run loop.
func (c *ControlTimer) Shutdown() {
	close(c.shutdownCh)
}
