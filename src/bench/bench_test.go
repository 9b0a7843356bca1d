package bench

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/mosaicnetworks/txbench/src/common"
	"github.com/mosaicnetworks/txbench/src/net"
	"github.com/mosaicnetworks/txbench/src/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errScripted = errors.New("scripted failure")

// scriptedLedger is an AdmissionControlServer whose answers are set by the
// tests.
type scriptedLedger struct {
	sync.Mutex

	// seqs holds the sequence number of every existing account.
	seqs map[types.AccountAddress]uint64
	// failing accounts make UpdateToLatestLedger return an error.
	failing map[types.AccountAddress]bool
	// empty accounts get a response without items.
	empty map[types.AccountAddress]bool
	// onQuery is called, under the lock, before an account is read.
	onQuery func(addr types.AccountAddress)

	// submit maps a transaction sequence number to its response. A nil
	// response makes the call fail.
	submit map[uint64]*types.SubmitTransactionResponse

	// maxDelay randomises the completion order of calls.
	maxDelay time.Duration

	queries int
}

func newScriptedLedger() *scriptedLedger {
	return &scriptedLedger{
		seqs:    make(map[types.AccountAddress]uint64),
		failing: make(map[types.AccountAddress]bool),
		empty:   make(map[types.AccountAddress]bool),
		submit:  make(map[uint64]*types.SubmitTransactionResponse),
	}
}

func (l *scriptedLedger) delay() {
	if l.maxDelay > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(l.maxDelay))))
	}
}

func (l *scriptedLedger) SubmitTransaction(ctx context.Context, req *types.SubmitTransactionRequest) (*types.SubmitTransactionResponse, error) {
	l.delay()

	raw, err := req.SignedTxn.RawTransaction()
	if err != nil {
		return nil, err
	}

	l.Lock()
	defer l.Unlock()

	resp := l.submit[raw.SequenceNumber]
	if resp == nil {
		return nil, status.Error(codes.Internal, "cannot decode response")
	}
	return resp, nil
}

func (l *scriptedLedger) UpdateToLatestLedger(ctx context.Context, req *types.UpdateToLatestLedgerRequest) (*types.UpdateToLatestLedgerResponse, error) {
	l.delay()

	l.Lock()
	defer l.Unlock()

	l.queries++

	addr := req.RequestedItems[0].GetAccountState.Address

	if l.onQuery != nil {
		l.onQuery(addr)
	}
	if l.failing[addr] {
		return nil, errScripted
	}
	if l.empty[addr] {
		return &types.UpdateToLatestLedgerResponse{}, nil
	}

	var blob *types.AccountStateBlob
	if seq, ok := l.seqs[addr]; ok {
		b, err := types.NewAccountStateBlob(types.AccountResource{SequenceNumber: seq})
		if err != nil {
			return nil, err
		}
		blob = b
	}

	return &types.UpdateToLatestLedgerResponse{
		ResponseItems: []types.ResponseItem{accountStateItem(blob)},
	}, nil
}

func (l *scriptedLedger) queryCount() int {
	l.Lock()
	defer l.Unlock()
	return l.queries
}

func accountStateItem(blob *types.AccountStateBlob) types.ResponseItem {
	return types.ResponseItem{
		GetAccountStateResponse: &types.GetAccountStateResponse{
			AccountStateWithProof: types.AccountStateWithProof{Blob: blob},
		},
	}
}

func newTestClient(t *testing.T, ledger *scriptedLedger) *net.InmemClient {
	t.Helper()
	client := net.NewInmemClient(ledger, 0, common.NewTestEntry(t, common.TestLogLevel))
	t.Cleanup(func() { client.Close() })
	return client
}

func testAddress(i int) types.AccountAddress {
	var a types.AccountAddress
	a[0] = byte(i >> 8)
	a[1] = byte(i)
	return a
}

func testAddresses(n int) []types.AccountAddress {
	addrs := make([]types.AccountAddress, n)
	for i := range addrs {
		addrs[i] = testAddress(i + 1)
	}
	return addrs
}

func testSubmitRequest(t *testing.T, seq uint64) *types.SubmitTransactionRequest {
	t.Helper()

	raw := &types.RawTransaction{
		Sender:         testAddress(1),
		SequenceNumber: seq,
		Program: types.Program{
			Type:     types.TransferProgram,
			Receiver: testAddress(2),
			Amount:   1,
		},
	}
	data, err := raw.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	return &types.SubmitTransactionRequest{
		SignedTxn: &types.SignedTransaction{RawTxnBytes: data},
	}
}
