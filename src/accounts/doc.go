// Package accounts manages the accounts the benchmark sends transactions
// from. An account pairs an address with its private key and the sequence
// number of its next transaction. Stores keep accounts between runs, in memory
// or in a Badger database.
package accounts
