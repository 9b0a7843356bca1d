package net

import (
	"context"
	"time"

	"github.com/mosaicnetworks/txbench/src/types"
)

// DefaultGRPCTimeout is how long a client waits for the answer to one call.
const DefaultGRPCTimeout = 8000 * time.Millisecond

// CallOption controls how patient a client is with a single call.
type CallOption struct {
	// Timeout bounds the whole call, including the time spent waiting for
	// the channel to become ready.
	Timeout time.Duration

	// WaitForReady makes the call block until the channel is ready instead of
	// failing immediately when it is momentarily unavailable.
	WaitForReady bool
}

// DefaultCallOption waits for the channel to be ready and times out after
// DefaultGRPCTimeout.
func DefaultCallOption() CallOption {
	return CallOption{
		Timeout:      DefaultGRPCTimeout,
		WaitForReady: true,
	}
}

func (o CallOption) context() (context.Context, context.CancelFunc) {
	if o.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), o.Timeout)
}

// Client issues asynchronous calls to an admission-control service. It must be
// safe for concurrent use.
type Client interface {
	// SubmitTransactionAsync starts a SubmitTransaction call.
	SubmitTransactionAsync(req *types.SubmitTransactionRequest, opt CallOption) (SubmitFuture, error)

	// UpdateToLatestLedgerAsync starts an UpdateToLatestLedger call.
	UpdateToLatestLedgerAsync(req *types.UpdateToLatestLedgerRequest, opt CallOption) (LedgerFuture, error)

	// Close releases the client. Calls issued afterwards fail synchronously.
	Close() error
}

// AdmissionControlServer is the service side of the admission-control calls.
type AdmissionControlServer interface {
	SubmitTransaction(ctx context.Context, req *types.SubmitTransactionRequest) (*types.SubmitTransactionResponse, error)
	UpdateToLatestLedger(ctx context.Context, req *types.UpdateToLatestLedgerRequest) (*types.UpdateToLatestLedgerResponse, error)
}

type timeoutClient struct {
	Client
	timeout time.Duration
}

// WithCallTimeout returns a Client that replaces the Timeout of every call
// option with timeout before handing the call to c.
func WithCallTimeout(c Client, timeout time.Duration) Client {
	return &timeoutClient{Client: c, timeout: timeout}
}

func (c *timeoutClient) SubmitTransactionAsync(req *types.SubmitTransactionRequest, opt CallOption) (SubmitFuture, error) {
	opt.Timeout = c.timeout
	return c.Client.SubmitTransactionAsync(req, opt)
}

func (c *timeoutClient) UpdateToLatestLedgerAsync(req *types.UpdateToLatestLedgerRequest, opt CallOption) (LedgerFuture, error) {
	opt.Timeout = c.timeout
	return c.Client.UpdateToLatestLedgerAsync(req, opt)
}
