package bench

import (
	"time"

	"github.com/mosaicnetworks/txbench/src/net"
	"github.com/mosaicnetworks/txbench/src/types"
	"github.com/sirupsen/logrus"
)

const (
	// MaxWaitCommitIterations is the number of polling rounds after which
	// SyncAccountSequenceNumber gives up.
	MaxWaitCommitIterations = 10000

	// QuerySequenceNumbersInterval is the pause between two polling rounds.
	QuerySequenceNumbersInterval = 100 * time.Microsecond
)

// AddressSequence pairs an account with the sequence number it is expected
// to reach.
type AddressSequence struct {
	Address        types.AccountAddress
	SequenceNumber uint64
}

// Poller repeatedly queries account states until they reach their targets.
type Poller struct {
	// MaxIterations bounds the number of polling rounds.
	MaxIterations int

	// Interval is the pause between rounds.
	Interval time.Duration

	// Sleep pauses for the given duration. Defaults to time.Sleep.
	Sleep func(time.Duration)

	// Observer, if set, is called after every round with the accounts still
	// pending and those that converged. The maps must not be modified.
	Observer func(pending, done map[types.AccountAddress]uint64)
}

// NewPoller returns a Poller with MaxWaitCommitIterations rounds spaced by
// QuerySequenceNumbersInterval.
func NewPoller() *Poller {
	return &Poller{
		MaxIterations: MaxWaitCommitIterations,
		Interval:      QuerySequenceNumbersInterval,
		Sleep:         time.Sleep,
	}
}

// SyncAccountSequenceNumber waits for every account to reach its sequence
// number using the default Poller.
func SyncAccountSequenceNumber(client net.Client,
	sendersAndSequenceNumbers []AddressSequence,
	logger *logrus.Entry) map[types.AccountAddress]uint64 {

	return NewPoller().Sync(client, sendersAndSequenceNumbers, logger)
}

// Sync polls the ledger through client until every account reports its target
// sequence number or MaxIterations rounds have run. Only the accounts that
// have not converged are queried in a round. The result maps every account to
// the last sequence number observed for it, 0 if it was never observed, so
// an account whose value differs from its target did not converge. When an
// account appears more than once, the last target wins, and convergence is
// counted over distinct accounts rather than over the length of the input.
func (p *Poller) Sync(client net.Client,
	sendersAndSequenceNumbers []AddressSequence,
	logger *logrus.Entry) map[types.AccountAddress]uint64 {

	targets := make(map[types.AccountAddress]uint64, len(sendersAndSequenceNumbers))
	unfinished := make(map[types.AccountAddress]uint64, len(sendersAndSequenceNumbers))
	for _, s := range sendersAndSequenceNumbers {
		targets[s.Address] = s.SequenceNumber
		unfinished[s.Address] = 0
	}

	finished := make(map[types.AccountAddress]uint64, len(targets))

	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	rounds := 0
	for rounds < p.MaxIterations {
		rounds++

		addresses := make([]types.AccountAddress, 0, len(unfinished))
		for addr := range unfinished {
			addresses = append(addresses, addr)
		}

		states := GetAccountStates(client, addresses, logger)

		for addr, state := range states {
			if _, ok := unfinished[addr]; !ok {
				continue
			}
			if state.SequenceNumber == targets[addr] {
				delete(unfinished, addr)
				finished[addr] = state.SequenceNumber
			} else {
				unfinished[addr] = state.SequenceNumber
			}
		}

		if p.Observer != nil {
			p.Observer(unfinished, finished)
		}

		if len(finished) == len(targets) {
			break
		}

		sleep(p.Interval)
	}

	logger.WithFields(logrus.Fields{
		"rounds":    rounds,
		"accounts":  len(targets),
		"converged": len(finished),
	}).Debug("Sync account sequence numbers")

	for addr, seq := range unfinished {
		finished[addr] = seq
	}

	return finished
}
