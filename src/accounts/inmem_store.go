package accounts

import (
	"sort"
	"sync"

	cm "github.com/mosaicnetworks/txbench/src/common"
	"github.com/mosaicnetworks/txbench/src/types"
)

// InmemStore is a Store that keeps accounts in memory.
type InmemStore struct {
	sync.RWMutex
	accounts map[types.AccountAddress]*Account
	closed   bool
}

// NewInmemStore ...
func NewInmemStore() *InmemStore {
	return &InmemStore{
		accounts: make(map[types.AccountAddress]*Account),
	}
}

// GetAccount implements the Store interface.
func (s *InmemStore) GetAccount(addr types.AccountAddress) (*Account, error) {
	s.RLock()
	defer s.RUnlock()

	if s.closed {
		return nil, cm.NewStoreErr("Account", cm.Closed, addr.String())
	}

	a, ok := s.accounts[addr]
	if !ok {
		return nil, cm.NewStoreErr("Account", cm.KeyNotFound, addr.String())
	}
	return a.clone(), nil
}

// SetAccount implements the Store interface.
func (s *InmemStore) SetAccount(a *Account) error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return cm.NewStoreErr("Account", cm.Closed, a.Address.String())
	}

	s.accounts[a.Address] = a.clone()
	return nil
}

// Accounts implements the Store interface.
func (s *InmemStore) Accounts() ([]*Account, error) {
	s.RLock()
	defer s.RUnlock()

	if s.closed {
		return nil, cm.NewStoreErr("Account", cm.Closed, "")
	}

	res := make([]*Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		res = append(res, a.clone())
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Address.Less(res[j].Address) })
	return res, nil
}

// Len implements the Store interface.
func (s *InmemStore) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.accounts)
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	s.Lock()
	defer s.Unlock()
	s.closed = true
	return nil
}

// StorePath implements the Store interface.
func (s *InmemStore) StorePath() string {
	return ""
}
