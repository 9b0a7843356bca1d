package bench

import (
	"reflect"
	"testing"
	"time"

	"github.com/mosaicnetworks/txbench/src/common"
	"github.com/mosaicnetworks/txbench/src/types"
)

// testPoller does not sleep and records the rounds it ran.
type testPoller struct {
	*Poller
	rounds int
	sleeps int
}

func newTestPoller(t *testing.T, maxIterations int, targets []AddressSequence) *testPoller {
	want := make(map[types.AccountAddress]bool)
	for _, s := range targets {
		want[s.Address] = true
	}

	tp := &testPoller{}
	tp.Poller = &Poller{
		MaxIterations: maxIterations,
		Interval:      QuerySequenceNumbersInterval,
		Sleep: func(time.Duration) {
			tp.sleeps++
		},
		Observer: func(pending, done map[types.AccountAddress]uint64) {
			tp.rounds++
			checkPartition(t, want, pending, done)
		},
	}
	return tp
}

func checkPartition(t *testing.T, want map[types.AccountAddress]bool, pending, done map[types.AccountAddress]uint64) {
	t.Helper()

	for addr := range pending {
		if _, ok := done[addr]; ok {
			t.Fatalf("%s is both pending and done", addr.ShortString())
		}
		if !want[addr] {
			t.Fatalf("%s is pending but was never requested", addr.ShortString())
		}
	}
	for addr := range done {
		if !want[addr] {
			t.Fatalf("%s is done but was never requested", addr.ShortString())
		}
	}
	if len(pending)+len(done) != len(want) {
		t.Fatalf("pending (%d) and done (%d) do not cover the %d targets", len(pending), len(done), len(want))
	}
}

func TestSyncConverges(t *testing.T) {
	ledger := newScriptedLedger()

	addrs := testAddresses(10)
	var targets []AddressSequence
	expected := make(map[types.AccountAddress]uint64)
	for i, a := range addrs {
		target := uint64(i % 4)
		targets = append(targets, AddressSequence{a, target})
		expected[a] = target
		ledger.seqs[a] = 0
	}

	// Every query brings an account one step closer to its target.
	ledger.onQuery = func(addr types.AccountAddress) {
		if ledger.seqs[addr] < expected[addr] {
			ledger.seqs[addr]++
		}
	}

	client := newTestClient(t, ledger)
	poller := newTestPoller(t, MaxWaitCommitIterations, targets)

	res := poller.Sync(client, targets, common.NewTestEntry(t, common.TestLogLevel))

	if !reflect.DeepEqual(res, expected) {
		t.Fatalf("expected %v, got %v", expected, res)
	}
	if poller.rounds != 3 {
		t.Fatalf("expected convergence in 3 rounds, took %d", poller.rounds)
	}
	if poller.sleeps != 2 {
		t.Fatalf("expected 2 sleeps, got %d", poller.sleeps)
	}
}

func TestSyncOnlyQueriesPending(t *testing.T) {
	ledger := newScriptedLedger()

	a, b := testAddress(1), testAddress(2)
	ledger.seqs[a] = 1
	ledger.seqs[b] = 0

	queried := make(map[types.AccountAddress]int)
	ledger.onQuery = func(addr types.AccountAddress) {
		queried[addr]++
		if addr == b && queried[b] == 5 {
			ledger.seqs[b] = 1
		}
	}

	targets := []AddressSequence{{a, 1}, {b, 1}}

	client := newTestClient(t, ledger)
	poller := newTestPoller(t, 100, targets)

	res := poller.Sync(client, targets, common.NewTestEntry(t, common.TestLogLevel))

	if res[a] != 1 || res[b] != 1 {
		t.Fatalf("both accounts should converge, got %v", res)
	}
	if queried[a] != 1 {
		t.Fatalf("a converged account should not be queried again, queried %d times", queried[a])
	}
	if queried[b] != 5 {
		t.Fatalf("expected 5 queries for b, got %d", queried[b])
	}
}

func TestSyncPartialFailure(t *testing.T) {
	ledger := newScriptedLedger()

	addrs := testAddresses(6)
	var targets []AddressSequence
	for _, a := range addrs {
		targets = append(targets, AddressSequence{a, 3})
		ledger.seqs[a] = 3
	}

	// addrs[0] never answers, addrs[1] is stuck below its target and
	// addrs[2] does not exist.
	ledger.failing[addrs[0]] = true
	ledger.seqs[addrs[1]] = 2
	delete(ledger.seqs, addrs[2])

	client := newTestClient(t, ledger)
	poller := newTestPoller(t, 20, targets)

	res := poller.Sync(client, targets, common.NewTestEntry(t, common.TestLogLevel))

	expected := map[types.AccountAddress]uint64{
		addrs[0]: 0,
		addrs[1]: 2,
		addrs[2]: 0,
		addrs[3]: 3,
		addrs[4]: 3,
		addrs[5]: 3,
	}
	if !reflect.DeepEqual(res, expected) {
		t.Fatalf("expected %v, got %v", expected, res)
	}
	if poller.rounds != 20 {
		t.Fatalf("expected the whole budget to be used, got %d rounds", poller.rounds)
	}
}

func TestSyncKeepsLastObservedValue(t *testing.T) {
	ledger := newScriptedLedger()

	a := testAddress(1)
	ledger.seqs[a] = 2

	queries := 0
	ledger.onQuery = func(addr types.AccountAddress) {
		queries++
		if queries > 1 {
			ledger.failing[addr] = true
		}
	}

	targets := []AddressSequence{{a, 10}}

	client := newTestClient(t, ledger)
	poller := newTestPoller(t, 5, targets)

	res := poller.Sync(client, targets, common.NewTestEntry(t, common.TestLogLevel))

	if res[a] != 2 {
		t.Fatalf("expected the last observed value 2, got %d", res[a])
	}
}

func TestSyncBudgetExhaustion(t *testing.T) {
	ledger := newScriptedLedger()

	addrs := testAddresses(5)
	var targets []AddressSequence
	for i, a := range addrs {
		targets = append(targets, AddressSequence{a, 100})
		ledger.seqs[a] = uint64(i)
	}

	client := newTestClient(t, ledger)
	poller := newTestPoller(t, 25, targets)

	res := poller.Sync(client, targets, common.NewTestEntry(t, common.TestLogLevel))

	if poller.rounds != 25 {
		t.Fatalf("expected exactly 25 rounds, got %d", poller.rounds)
	}
	if poller.sleeps != 25 {
		t.Fatalf("expected 25 sleeps, got %d", poller.sleeps)
	}
	if ledger.queryCount() != 25*len(addrs) {
		t.Fatalf("expected %d queries, got %d", 25*len(addrs), ledger.queryCount())
	}
	if len(res) != len(addrs) {
		t.Fatalf("every account should be returned once, got %v", res)
	}
	for i, a := range addrs {
		if res[a] != uint64(i) {
			t.Fatalf("account %d should be at %d, got %d", i, i, res[a])
		}
	}
}

func TestSyncDuplicateTargets(t *testing.T) {
	ledger := newScriptedLedger()

	a, b := testAddress(1), testAddress(2)
	ledger.seqs[a] = 4
	ledger.seqs[b] = 1

	// a appears twice, the last target wins.
	targets := []AddressSequence{{a, 2}, {b, 1}, {a, 4}}

	client := newTestClient(t, ledger)
	poller := newTestPoller(t, 50, targets)

	res := poller.Sync(client, targets, common.NewTestEntry(t, common.TestLogLevel))

	expected := map[types.AccountAddress]uint64{a: 4, b: 1}
	if !reflect.DeepEqual(res, expected) {
		t.Fatalf("expected %v, got %v", expected, res)
	}
	if poller.rounds != 1 {
		t.Fatalf("duplicates should not delay convergence, took %d rounds", poller.rounds)
	}
}

func TestSyncNoTargets(t *testing.T) {
	ledger := newScriptedLedger()
	client := newTestClient(t, ledger)
	poller := newTestPoller(t, 50, nil)

	res := poller.Sync(client, nil, common.NewTestEntry(t, common.TestLogLevel))

	if len(res) != 0 {
		t.Fatalf("expected an empty result, got %v", res)
	}
	if poller.rounds != 1 || poller.sleeps != 0 {
		t.Fatalf("expected a single round without sleeping, got %d rounds and %d sleeps", poller.rounds, poller.sleeps)
	}
	if ledger.queryCount() != 0 {
		t.Fatalf("no query should be sent, got %d", ledger.queryCount())
	}
}

func TestSyncAccountSequenceNumber(t *testing.T) {
	ledger := newScriptedLedger()

	addrs := testAddresses(4)
	var targets []AddressSequence
	for _, a := range addrs {
		ledger.seqs[a] = 7
		targets = append(targets, AddressSequence{a, 7})
	}

	client := newTestClient(t, ledger)

	res := SyncAccountSequenceNumber(client, targets, common.NewTestEntry(t, common.TestLogLevel))
	for _, a := range addrs {
		if res[a] != 7 {
			t.Fatalf("expected 7 for %s, got %d", a.ShortString(), res[a])
		}
	}
}

func TestNewPoller(t *testing.T) {
	p := NewPoller()
	if p.MaxIterations != 10000 {
		t.Fatalf("expected 10000 iterations, got %d", p.MaxIterations)
	}
	if p.Interval != 100*time.Microsecond {
		t.Fatalf("expected a 100µs interval, got %v", p.Interval)
	}
	if p.Sleep == nil {
		t.Fatalf("Sleep should default to time.Sleep")
	}
}
