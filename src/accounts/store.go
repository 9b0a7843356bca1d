package accounts

import (
	"github.com/mosaicnetworks/txbench/src/types"
)

// Store persists benchmark accounts so that consecutive runs reuse them.
type Store interface {
	// GetAccount returns a copy of the account at addr, or a StoreErr with
	// type KeyNotFound.
	GetAccount(types.AccountAddress) (*Account, error)
	// SetAccount inserts or replaces an account.
	SetAccount(*Account) error
	// Accounts returns every account, in address order.
	Accounts() ([]*Account, error)
	// Len returns the number of accounts.
	Len() int
	// Close releases the store.
	Close() error
	// StorePath returns where the store keeps its data, empty for memory.
	StorePath() string
}
