package net

import (
	"fmt"
	"sync"

	"github.com/mosaicnetworks/txbench/src/types"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// GRPCClient is a Client for a remote AdmissionControl service.
type GRPCClient struct {
	target string
	conn   *grpc.ClientConn

	closedLock sync.RWMutex
	closed     bool

	logger *logrus.Entry
}

// NewGRPCClient creates a client for the service listening at target. The
// connection is established lazily, on the first call. Extra dial options
// are appended to the defaults, which use an insecure channel.
func NewGRPCClient(target string, logger *logrus.Entry, opts ...grpc.DialOption) (*GRPCClient, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}

	base := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec())),
	}

	conn, err := grpc.NewClient(target, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create grpc client for %s: %w", target, err)
	}

	return &GRPCClient{
		target: target,
		conn:   conn,
		logger: logger.WithField("target", target),
	}, nil
}

// Target returns the address the client talks to.
func (c *GRPCClient) Target() string {
	return c.target
}

func (c *GRPCClient) isClosed() bool {
	c.closedLock.RLock()
	defer c.closedLock.RUnlock()
	return c.closed
}

// SubmitTransactionAsync implements the Client interface.
func (c *GRPCClient) SubmitTransactionAsync(req *types.SubmitTransactionRequest, opt CallOption) (SubmitFuture, error) {
	if c.isClosed() {
		return nil, ErrClientClosed
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	future := newSubmitFuture(req)

	go func() {
		resp := new(types.SubmitTransactionResponse)
		err := c.invoke(fullMethod(MethodSubmitTransaction), req, resp, opt)
		future.respond(resp, err)
	}()

	return future, nil
}

// UpdateToLatestLedgerAsync implements the Client interface.
func (c *GRPCClient) UpdateToLatestLedgerAsync(req *types.UpdateToLatestLedgerRequest, opt CallOption) (LedgerFuture, error) {
	if c.isClosed() {
		return nil, ErrClientClosed
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	future := newLedgerFuture(req)

	go func() {
		resp := new(types.UpdateToLatestLedgerResponse)
		err := c.invoke(fullMethod(MethodUpdateToLatestLedger), req, resp, opt)
		future.respond(resp, err)
	}()

	return future, nil
}

func (c *GRPCClient) invoke(method string, req, resp any, opt CallOption) error {
	ctx, cancel := opt.context()
	defer cancel()

	err := c.conn.Invoke(ctx, method, req, resp, grpc.WaitForReady(opt.WaitForReady))
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"method": method,
			"error":  err,
		}).Debug("grpc call failed")
	}
	return err
}

// Close implements the Client interface. Calls still in flight are cancelled.
func (c *GRPCClient) Close() error {
	c.closedLock.Lock()
	defer c.closedLock.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	return c.conn.Close()
}
