package net

import (
	"context"
	"errors"

	"github.com/mosaicnetworks/txbench/src/types"
	"google.golang.org/grpc/status"
)

// ErrClientClosed is returned when a call is issued on a closed client.
var ErrClientClosed = errors.New("client closed")

// ErrorKind classifies a transport error into a short name suitable for a
// counter, e.g. "DeadlineExceeded" or "Unavailable".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "OK"
	case errors.Is(err, ErrClientClosed):
		return "ClientClosed"
	case errors.Is(err, types.ErrNoSignedTransaction), errors.Is(err, types.ErrNoRequestedItems):
		return "InvalidRequest"
	case errors.Is(err, context.DeadlineExceeded):
		return "DeadlineExceeded"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	}

	if s, ok := status.FromError(err); ok {
		return s.Code().String()
	}

	return "Unknown"
}
