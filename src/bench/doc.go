// Package bench drives batches of transactions and account-state queries
// against an admission-control service and reconciles the client's view of
// account sequence numbers with the ledger.
//
// Submission and state queries are fan-out/fan-in operations: every request is
// issued asynchronously on a net.Client, then all outcomes are collected in
// completion order. A failure is local to its request. It is counted, logged
// and dropped, and never aborts the rest of the batch.
//
// SyncAccountSequenceNumber polls the ledger until every account reports its
// expected sequence number or the round budget runs out. The returned map
// holds the last observed value of every account, so callers compare it with
// their targets to find the accounts that did not converge.
package bench
