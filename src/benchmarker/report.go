package benchmarker

import (
	"fmt"
	"strconv"
	"time"
)

// Report summarises one phase of a benchmark.
type Report struct {
	// Phase is "mint" or "transfer".
	Phase string
	// Round numbers transfer rounds from 1. It is 0 for the mint phase.
	Round int

	// Submitted is the number of transactions sent.
	Submitted int
	// Accepted is the number admission control accepted.
	Accepted int
	// Committed is the number the ledger applied before the sync gave up.
	Committed int
	// Uncommitted is Submitted minus Committed.
	Uncommitted int

	// Elapsed covers submission and sync.
	Elapsed time.Duration
	// ChunkLatency is the median time it took a client to get answers for
	// its chunk of transactions.
	ChunkLatency time.Duration
	// TPS is Committed per second of Elapsed.
	TPS float64
}

func (r *Report) finish(elapsed time.Duration) {
	r.Elapsed = elapsed
	r.Uncommitted = r.Submitted - r.Committed
	if elapsed > 0 {
		r.TPS = float64(r.Committed) / elapsed.Seconds()
	}
}

// Stats renders the report as strings, for the stats endpoint.
func (r Report) Stats() map[string]string {
	return map[string]string{
		"phase":         r.Phase,
		"round":         strconv.Itoa(r.Round),
		"submitted":     strconv.Itoa(r.Submitted),
		"accepted":      strconv.Itoa(r.Accepted),
		"committed":     strconv.Itoa(r.Committed),
		"uncommitted":   strconv.Itoa(r.Uncommitted),
		"elapsed":       r.Elapsed.String(),
		"chunk_latency": r.ChunkLatency.String(),
		"tps":           strconv.FormatFloat(r.TPS, 'f', 2, 64),
	}
}

func (r Report) String() string {
	return fmt.Sprintf("%s round %d: submitted=%d accepted=%d committed=%d uncommitted=%d elapsed=%s chunk_latency=%s tps=%.2f",
		r.Phase, r.Round, r.Submitted, r.Accepted, r.Committed, r.Uncommitted, r.Elapsed, r.ChunkLatency, r.TPS)
}
