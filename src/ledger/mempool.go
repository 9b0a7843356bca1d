package ledger

import (
	"sort"

	"github.com/mosaicnetworks/txbench/src/types"
)

type pendingTxn struct {
	raw    *types.RawTransaction
	signed *types.SignedTransaction
}

// mempool holds accepted transactions until they are committed, indexed by
// sender and sequence number. It is not safe for concurrent use.
type mempool struct {
	capacity int
	size     int
	txns     map[types.AccountAddress]map[uint64]pendingTxn
}

func newMempool(capacity int) *mempool {
	return &mempool{
		capacity: capacity,
		txns:     make(map[types.AccountAddress]map[uint64]pendingTxn),
	}
}

func (m *mempool) full() bool {
	return m.capacity > 0 && m.size >= m.capacity
}

func (m *mempool) contains(sender types.AccountAddress, seq uint64) bool {
	_, ok := m.txns[sender][seq]
	return ok
}

func (m *mempool) add(txn pendingTxn) {
	bySeq, ok := m.txns[txn.raw.Sender]
	if !ok {
		bySeq = make(map[uint64]pendingTxn)
		m.txns[txn.raw.Sender] = bySeq
	}
	bySeq[txn.raw.SequenceNumber] = txn
	m.size++
}

func (m *mempool) get(sender types.AccountAddress, seq uint64) (pendingTxn, bool) {
	txn, ok := m.txns[sender][seq]
	return txn, ok
}

func (m *mempool) remove(sender types.AccountAddress, seq uint64) {
	bySeq, ok := m.txns[sender]
	if !ok {
		return
	}
	if _, ok := bySeq[seq]; !ok {
		return
	}
	delete(bySeq, seq)
	m.size--
	if len(bySeq) == 0 {
		delete(m.txns, sender)
	}
}

// removeBelow drops the transactions of sender that can never be committed
// because their sequence number was already used.
func (m *mempool) removeBelow(sender types.AccountAddress, seq uint64) {
	for s := range m.txns[sender] {
		if s < seq {
			m.remove(sender, s)
		}
	}
}

// senders returns the senders with queued transactions, in address order so
// that blocks are deterministic.
func (m *mempool) senders() []types.AccountAddress {
	res := make([]types.AccountAddress, 0, len(m.txns))
	for s := range m.txns {
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Less(res[j]) })
	return res
}
