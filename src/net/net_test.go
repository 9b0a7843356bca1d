package net

import (
	"context"
	"sync"
	"time"

	"github.com/mosaicnetworks/txbench/src/types"
)

// echoServer accepts every transaction and reports every account with a
// sequence number equal to the number of transactions it has seen from it.
type echoServer struct {
	sync.Mutex
	seen  map[types.AccountAddress]uint64
	delay time.Duration
}

func newEchoServer() *echoServer {
	return &echoServer{seen: make(map[types.AccountAddress]uint64)}
}

func (s *echoServer) SubmitTransaction(ctx context.Context, req *types.SubmitTransactionRequest) (*types.SubmitTransactionResponse, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	raw, err := req.SignedTxn.RawTransaction()
	if err != nil {
		return nil, err
	}

	s.Lock()
	s.seen[raw.Sender]++
	s.Unlock()

	return types.NewACResponse(types.ACAccepted, ""), nil
}

func (s *echoServer) UpdateToLatestLedger(ctx context.Context, req *types.UpdateToLatestLedgerRequest) (*types.UpdateToLatestLedgerResponse, error) {
	s.Lock()
	defer s.Unlock()

	resp := &types.UpdateToLatestLedgerResponse{}
	for _, item := range req.RequestedItems {
		seq, ok := s.seen[item.GetAccountState.Address]
		var blob *types.AccountStateBlob
		if ok {
			b, err := types.NewAccountStateBlob(types.AccountResource{SequenceNumber: seq})
			if err != nil {
				return nil, err
			}
			blob = b
		}
		resp.ResponseItems = append(resp.ResponseItems, types.ResponseItem{
			GetAccountStateResponse: &types.GetAccountStateResponse{
				AccountStateWithProof: types.AccountStateWithProof{Blob: blob},
			},
		})
	}
	return resp, nil
}

func testAddress(b byte) types.AccountAddress {
	var a types.AccountAddress
	a[0] = b
	return a
}

func testSubmitRequest(sender types.AccountAddress, seq uint64) *types.SubmitTransactionRequest {
	raw := &types.RawTransaction{
		Sender:         sender,
		SequenceNumber: seq,
		Program: types.Program{
			Type:     types.TransferProgram,
			Receiver: testAddress(0xff),
			Amount:   1,
		},
	}
	data, err := raw.Marshal()
	if err != nil {
		panic(err)
	}
	return &types.SubmitTransactionRequest{
		SignedTxn: &types.SignedTransaction{RawTxnBytes: data},
	}
}
