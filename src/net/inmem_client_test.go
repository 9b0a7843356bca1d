package net

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mosaicnetworks/txbench/src/common"
	"github.com/mosaicnetworks/txbench/src/types"
)

func TestInmemSubmitAndQuery(t *testing.T) {
	srv := newEchoServer()
	client := NewInmemClient(srv, time.Millisecond, common.NewTestEntry(t, common.TestLogLevel))
	defer client.Close()

	sender := testAddress(7)

	future, err := client.SubmitTransactionAsync(testSubmitRequest(sender, 0), DefaultCallOption())
	if err != nil {
		t.Fatal(err)
	}
	if err := future.Error(); err != nil {
		t.Fatal(err)
	}
	if future.Response().ACStatus.Code != types.ACAccepted {
		t.Fatalf("expected accepted, got %v", future.Response())
	}

	req := types.NewUpdateToLatestLedgerRequest(0, []types.RequestItem{types.NewGetAccountStateItem(sender)})
	lf, err := client.UpdateToLatestLedgerAsync(req, DefaultCallOption())
	if err != nil {
		t.Fatal(err)
	}
	if err := lf.Error(); err != nil {
		t.Fatal(err)
	}
	state, err := lf.Response().ResponseItems[0].IntoGetAccountStateResponse()
	if err != nil {
		t.Fatal(err)
	}
	resource, err := types.GetAccountResourceOrDefault(state.Blob)
	if err != nil {
		t.Fatal(err)
	}
	if resource.SequenceNumber != 1 {
		t.Fatalf("expected sequence number 1, got %d", resource.SequenceNumber)
	}
}

func TestInmemFaults(t *testing.T) {
	srv := newEchoServer()
	client := NewInmemClient(srv, 0, common.NewTestEntry(t, common.TestLogLevel))
	defer client.Close()

	issueErr := errors.New("connection refused")
	callErr := errors.New("stream reset")

	client.SetFaults(Faults{
		Issue: func(method string) error {
			if method == MethodUpdateToLatestLedger {
				return issueErr
			}
			return nil
		},
		Call: func(method string) error {
			if method == MethodSubmitTransaction {
				return callErr
			}
			return nil
		},
	})

	future, err := client.SubmitTransactionAsync(testSubmitRequest(testAddress(1), 0), DefaultCallOption())
	if err != nil {
		t.Fatalf("submit should be issued, got %v", err)
	}
	if err := future.Error(); !errors.Is(err, callErr) {
		t.Fatalf("expected %v, got %v", callErr, err)
	}

	req := types.NewUpdateToLatestLedgerRequest(0, []types.RequestItem{types.NewGetAccountStateItem(testAddress(1))})
	if _, err := client.UpdateToLatestLedgerAsync(req, DefaultCallOption()); !errors.Is(err, issueErr) {
		t.Fatalf("expected %v, got %v", issueErr, err)
	}

	client.SetFaults(Faults{})

	future, err = client.SubmitTransactionAsync(testSubmitRequest(testAddress(1), 0), DefaultCallOption())
	if err != nil {
		t.Fatal(err)
	}
	if err := future.Error(); err != nil {
		t.Fatalf("expected success once faults are cleared, got %v", err)
	}
}

func TestInmemTimeout(t *testing.T) {
	srv := newEchoServer()
	srv.delay = time.Second
	client := NewInmemClient(srv, 0, common.NewTestEntry(t, common.TestLogLevel))
	defer client.Close()

	future, err := client.SubmitTransactionAsync(testSubmitRequest(testAddress(1), 0),
		CallOption{Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	err = future.Error()
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if kind := ErrorKind(err); kind != "DeadlineExceeded" {
		t.Fatalf("expected kind DeadlineExceeded, got %s", kind)
	}
}

func TestInmemClose(t *testing.T) {
	srv := newEchoServer()
	srv.delay = time.Second
	client := NewInmemClient(srv, 0, common.NewTestEntry(t, common.TestLogLevel))

	future, err := client.SubmitTransactionAsync(testSubmitRequest(testAddress(1), 0), DefaultCallOption())
	if err != nil {
		t.Fatal(err)
	}

	client.Close()

	if err := future.Error(); !errors.Is(err, ErrClientClosed) {
		t.Fatalf("in-flight call should fail with ErrClientClosed, got %v", err)
	}
	if _, err := client.SubmitTransactionAsync(testSubmitRequest(testAddress(1), 1), DefaultCallOption()); !errors.Is(err, ErrClientClosed) {
		t.Fatalf("expected ErrClientClosed, got %v", err)
	}
}

func TestErrorKind(t *testing.T) {
	cases := map[error]string{
		nil:                          "OK",
		ErrClientClosed:              "ClientClosed",
		types.ErrNoSignedTransaction: "InvalidRequest",
		types.ErrNoRequestedItems:    "InvalidRequest",
		context.Canceled:             "Canceled",
		errors.New("boom"):           "Unknown",
	}
	for err, want := range cases {
		if got := ErrorKind(err); got != want {
			t.Fatalf("ErrorKind(%v) = %s, want %s", err, got, want)
		}
	}
}

func TestWithCallTimeout(t *testing.T) {
	srv := newEchoServer()
	srv.delay = time.Second
	client := WithCallTimeout(NewInmemClient(srv, 0, common.NewTestEntry(t, common.TestLogLevel)), 20*time.Millisecond)
	defer client.Close()

	future, err := client.SubmitTransactionAsync(testSubmitRequest(testAddress(1), 0), DefaultCallOption())
	if err != nil {
		t.Fatal(err)
	}
	if err := future.Error(); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("the wrapped timeout should apply, got %v", err)
	}
}
