package net

import (
	"context"
	"sync"
	"time"

	"github.com/mosaicnetworks/txbench/src/types"
	"github.com/sirupsen/logrus"
)

// Faults injects failures into an InmemClient. Each hook receives the method
// name (MethodSubmitTransaction or MethodUpdateToLatestLedger). A nil hook, or
// a hook returning nil, lets the call through.
type Faults struct {
	// Issue fails the call synchronously, before a future is returned.
	Issue func(method string) error

	// Call fails the call asynchronously, through its future.
	Call func(method string) error
}

// InmemClient implements the Client interface on top of an
// AdmissionControlServer living in the same process. Messages are copied
// through the wire codec so the server and the caller never share memory.
type InmemClient struct {
	server  AdmissionControlServer
	latency time.Duration

	sync.RWMutex
	faults   Faults
	closed   bool
	shutdown chan struct{}

	logger *logrus.Entry
}

// NewInmemClient returns a client for server. Every call is delayed by
// latency before it reaches the server.
func NewInmemClient(server AdmissionControlServer, latency time.Duration, logger *logrus.Entry) *InmemClient {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	return &InmemClient{
		server:   server,
		latency:  latency,
		shutdown: make(chan struct{}),
		logger:   logger.WithField("client", "inmem"),
	}
}

// SetFaults replaces the fault hooks.
func (c *InmemClient) SetFaults(f Faults) {
	c.Lock()
	defer c.Unlock()
	c.faults = f
}

func (c *InmemClient) issue(method string) (Faults, error) {
	c.RLock()
	defer c.RUnlock()

	if c.closed {
		return Faults{}, ErrClientClosed
	}
	if c.faults.Issue != nil {
		if err := c.faults.Issue(method); err != nil {
			return Faults{}, err
		}
	}
	return c.faults, nil
}

// SubmitTransactionAsync implements the Client interface.
func (c *InmemClient) SubmitTransactionAsync(req *types.SubmitTransactionRequest, opt CallOption) (SubmitFuture, error) {
	faults, err := c.issue(MethodSubmitTransaction)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	future := newSubmitFuture(req)

	go func() {
		resp := new(types.SubmitTransactionResponse)
		err := c.call(MethodSubmitTransaction, faults, opt, req, resp, func(ctx context.Context, in any) (any, error) {
			return c.server.SubmitTransaction(ctx, in.(*types.SubmitTransactionRequest))
		}, new(types.SubmitTransactionRequest))
		future.respond(resp, err)
	}()

	return future, nil
}

// UpdateToLatestLedgerAsync implements the Client interface.
func (c *InmemClient) UpdateToLatestLedgerAsync(req *types.UpdateToLatestLedgerRequest, opt CallOption) (LedgerFuture, error) {
	faults, err := c.issue(MethodUpdateToLatestLedger)
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	future := newLedgerFuture(req)

	go func() {
		resp := new(types.UpdateToLatestLedgerResponse)
		err := c.call(MethodUpdateToLatestLedger, faults, opt, req, resp, func(ctx context.Context, in any) (any, error) {
			return c.server.UpdateToLatestLedger(ctx, in.(*types.UpdateToLatestLedgerRequest))
		}, new(types.UpdateToLatestLedgerRequest))
		future.respond(resp, err)
	}()

	return future, nil
}

// call copies req into in, runs handler under the call's deadline and copies
// the handler's answer into resp.
func (c *InmemClient) call(method string,
	faults Faults,
	opt CallOption,
	req, resp any,
	handler func(context.Context, any) (any, error),
	in any) error {

	ctx, cancel := opt.context()
	defer cancel()

	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-c.shutdown:
			timer.Stop()
			return ErrClientClosed
		}
	}

	if faults.Call != nil {
		if err := faults.Call(method); err != nil {
			c.logger.WithField("method", method).WithError(err).Debug("injected fault")
			return err
		}
	}

	if err := copyMessage(req, in); err != nil {
		return err
	}

	type result struct {
		out any
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		out, err := handler(ctx, in)
		resCh <- result{out, err}
	}()

	select {
	case res := <-resCh:
		if res.err != nil {
			return res.err
		}
		return copyMessage(res.out, resp)
	case <-ctx.Done():
		return ctx.Err()
	case <-c.shutdown:
		return ErrClientClosed
	}
}

func copyMessage(src, dst any) error {
	data, err := types.Marshal(src)
	if err != nil {
		return err
	}
	return types.Unmarshal(data, dst)
}

// Close implements the Client interface. Calls still in flight fail with
// ErrClientClosed.
func (c *InmemClient) Close() error {
	c.Lock()
	defer c.Unlock()

	if !c.closed {
		c.closed = true
		close(c.shutdown)
	}
	return nil
}
