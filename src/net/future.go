package net

import (
	"time"

	"github.com/mosaicnetworks/txbench/src/common"
	"github.com/mosaicnetworks/txbench/src/types"
)

// SubmitFuture is used to return information about an in-flight
// SubmitTransaction call.
type SubmitFuture interface {
	common.Future

	// Start returns the time the call was issued.
	// It is always OK to call this method.
	Start() time.Time

	// Request holds the parameters of the call.
	// It is always OK to call this method.
	Request() *types.SubmitTransactionRequest

	// Response holds the result of the call.
	// This method must only be called after the Error method returns, and
	// will only be valid on success.
	Response() *types.SubmitTransactionResponse
}

// LedgerFuture is used to return information about an in-flight
// UpdateToLatestLedger call.
type LedgerFuture interface {
	common.Future

	// Start returns the time the call was issued.
	Start() time.Time

	// Request holds the parameters of the call.
	Request() *types.UpdateToLatestLedgerRequest

	// Response holds the result of the call. Only valid after a nil Error.
	Response() *types.UpdateToLatestLedgerResponse
}

type submitFuture struct {
	common.DeferError
	start time.Time
	args  *types.SubmitTransactionRequest
	resp  *types.SubmitTransactionResponse
}

func newSubmitFuture(args *types.SubmitTransactionRequest) *submitFuture {
	f := &submitFuture{
		start: time.Now(),
		args:  args,
	}
	f.Init()
	return f
}

func (s *submitFuture) Start() time.Time {
	return s.start
}

func (s *submitFuture) Request() *types.SubmitTransactionRequest {
	return s.args
}

func (s *submitFuture) Response() *types.SubmitTransactionResponse {
	return s.resp
}

// respond records the outcome. resp is ignored when err is not nil.
func (s *submitFuture) respond(resp *types.SubmitTransactionResponse, err error) {
	if err == nil {
		s.resp = resp
	}
	s.Respond(err)
}

type ledgerFuture struct {
	common.DeferError
	start time.Time
	args  *types.UpdateToLatestLedgerRequest
	resp  *types.UpdateToLatestLedgerResponse
}

func newLedgerFuture(args *types.UpdateToLatestLedgerRequest) *ledgerFuture {
	f := &ledgerFuture{
		start: time.Now(),
		args:  args,
	}
	f.Init()
	return f
}

func (l *ledgerFuture) Start() time.Time {
	return l.start
}

func (l *ledgerFuture) Request() *types.UpdateToLatestLedgerRequest {
	return l.args
}

func (l *ledgerFuture) Response() *types.UpdateToLatestLedgerResponse {
	return l.resp
}

func (l *ledgerFuture) respond(resp *types.UpdateToLatestLedgerResponse, err error) {
	if err == nil {
		l.resp = resp
	}
	l.Respond(err)
}
