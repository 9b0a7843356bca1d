package common

import "sync"

// Future is used to represent an action that may occur in the future.
type Future interface {
	// Error blocks until the future arrives and then returns the error status
	// of the future. This may be called any number of times - all calls will
	// return the same value. It is not OK to call this method twice
	// concurrently on the same Future instance.
	Error() error
}

// DeferError can be embedded to allow a future to provide an error in the
// future.
type DeferError struct {
	err       error
	errCh     chan error
	responded bool
}

// Init prepares the future to receive a response. It must be called before
// the future is handed out.
func (d *DeferError) Init() {
	d.errCh = make(chan error, 1)
}

// Error implements the Future interface.
func (d *DeferError) Error() error {
	if d.err != nil {
		// When we've received a nil error this won't trigger, but the channel
		// is closed after send so we'll still return nil below.
		return d.err
	}
	if d.errCh == nil {
		panic("waiting for response on nil channel")
	}
	d.err = <-d.errCh
	return d.err
}

// Respond delivers the outcome. Only the first call has an effect.
func (d *DeferError) Respond(err error) {
	if d.errCh == nil {
		return
	}
	if d.responded {
		return
	}
	d.errCh <- err
	close(d.errCh)
	d.responded = true
}

// Unordered waits on every future concurrently and delivers each one on the
// returned channel as soon as its outcome is known, so completion order does
// not follow the order of the input. The channel is closed once every future
// has been delivered.
func Unordered[F Future](futures []F) <-chan F {
	out := make(chan F, len(futures))

	var wg sync.WaitGroup
	wg.Add(len(futures))

	for _, f := range futures {
		go func(f F) {
			defer wg.Done()
			f.Error()
			out <- f
		}(f)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
