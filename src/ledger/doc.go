// Package ledger implements a small in-memory ledger that speaks the
// admission-control protocol.
//
// It is the counterpart the benchmark runs against when no remote ledger is
// available, and it is what the ledger command serves over gRPC. Submitted
// transactions are validated the way a real admission-control service would,
// queued in a mempool, and committed in blocks by a background loop. Account
// state is only ever read at the last committed version, so a client sees its
// transactions take effect some time after they were accepted, which is what
// the benchmark's convergence poller waits for.
//
// Accounts are created by minting. Only the association account, whose key is
// given to NewLedger, may mint.
package ledger
