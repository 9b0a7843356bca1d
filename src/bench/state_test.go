package bench

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/mosaicnetworks/txbench/src/common"
	"github.com/mosaicnetworks/txbench/src/net"
	"github.com/mosaicnetworks/txbench/src/types"
)

func TestGetAccountStates(t *testing.T) {
	ledger := newScriptedLedger()
	ledger.maxDelay = 2 * time.Millisecond

	addrs := testAddresses(8)

	ledger.seqs[addrs[0]] = 0
	ledger.seqs[addrs[1]] = 5
	ledger.seqs[addrs[2]] = 12
	ledger.seqs[addrs[3]] = 1
	// addrs[4] does not exist
	ledger.seqs[addrs[5]] = 3
	ledger.failing[addrs[5]] = true
	ledger.seqs[addrs[6]] = 3
	ledger.empty[addrs[6]] = true
	ledger.seqs[addrs[7]] = 7

	client := newTestClient(t, ledger)

	states := GetAccountStates(client, addrs, common.NewTestEntry(t, common.TestLogLevel))

	expected := map[types.AccountAddress]AccountState{
		addrs[0]: {0, types.AccountStatusPersisted},
		addrs[1]: {5, types.AccountStatusPersisted},
		addrs[2]: {12, types.AccountStatusPersisted},
		addrs[3]: {1, types.AccountStatusPersisted},
		addrs[7]: {7, types.AccountStatusPersisted},
	}

	if !reflect.DeepEqual(states, expected) {
		t.Fatalf("expected %v, got %v", expected, states)
	}

	// Querying an unchanged ledger again gives the same answer.
	again := GetAccountStates(client, addrs, common.NewTestEntry(t, common.TestLogLevel))
	if !reflect.DeepEqual(again, states) {
		t.Fatalf("second query differs: %v vs %v", again, states)
	}
}

func TestGetAccountStatesIssueFailure(t *testing.T) {
	ledger := newScriptedLedger()
	addrs := testAddresses(3)
	for _, a := range addrs {
		ledger.seqs[a] = 1
	}

	client := newTestClient(t, ledger)

	issueErr := errors.New("channel not ready")
	calls := 0
	client.SetFaults(net.Faults{
		Issue: func(method string) error {
			calls++
			if calls == 2 {
				return issueErr
			}
			return nil
		},
	})

	states := GetAccountStates(client, addrs, common.NewTestEntry(t, common.TestLogLevel))

	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %v", states)
	}
	if _, ok := states[addrs[1]]; ok {
		t.Fatalf("the address whose request was not issued should be absent")
	}
}

func TestGetAccountStatesEmpty(t *testing.T) {
	ledger := newScriptedLedger()
	client := newTestClient(t, ledger)

	states := GetAccountStates(client, nil, common.NewTestEntry(t, common.TestLogLevel))
	if len(states) != 0 {
		t.Fatalf("expected no states, got %v", states)
	}
	if ledger.queryCount() != 0 {
		t.Fatalf("no query should be sent, got %d", ledger.queryCount())
	}
}

func TestAccountStateFromResponse(t *testing.T) {
	blob5, err := types.NewAccountStateBlob(types.AccountResource{SequenceNumber: 5})
	if err != nil {
		t.Fatal(err)
	}
	blob9, err := types.NewAccountStateBlob(types.AccountResource{SequenceNumber: 9})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := accountStateFromResponse(nil); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
	if _, err := accountStateFromResponse(&types.UpdateToLatestLedgerResponse{}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}

	wrongItem := &types.UpdateToLatestLedgerResponse{ResponseItems: []types.ResponseItem{{}}}
	if _, err := accountStateFromResponse(wrongItem); !errors.Is(err, types.ErrNotAccountState) {
		t.Fatalf("expected ErrNotAccountState, got %v", err)
	}

	noBlob := &types.UpdateToLatestLedgerResponse{ResponseItems: []types.ResponseItem{accountStateItem(nil)}}
	if _, err := accountStateFromResponse(noBlob); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	emptyBlob := &types.UpdateToLatestLedgerResponse{ResponseItems: []types.ResponseItem{accountStateItem(&types.AccountStateBlob{})}}
	state, err := accountStateFromResponse(emptyBlob)
	if err != nil {
		t.Fatalf("an empty blob should decode to the default resource: %v", err)
	}
	if state != (AccountState{0, types.AccountStatusPersisted}) {
		t.Fatalf("expected default state, got %v", state)
	}

	corrupt := &types.UpdateToLatestLedgerResponse{ResponseItems: []types.ResponseItem{
		accountStateItem(&types.AccountStateBlob{Blob: []byte("not a map")}),
	}}
	if _, err := accountStateFromResponse(corrupt); err == nil {
		t.Fatalf("a corrupt blob should fail")
	}

	// Only the first item counts.
	twoItems := &types.UpdateToLatestLedgerResponse{ResponseItems: []types.ResponseItem{
		accountStateItem(blob5),
		accountStateItem(blob9),
	}}
	state, err = accountStateFromResponse(twoItems)
	if err != nil {
		t.Fatal(err)
	}
	if state.SequenceNumber != 5 || state.Status != types.AccountStatusPersisted {
		t.Fatalf("expected (5, Persisted), got %v", state)
	}
}
