package accounts

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger"
	cm "github.com/mosaicnetworks/txbench/src/common"
	"github.com/mosaicnetworks/txbench/src/types"
	"github.com/sirupsen/logrus"
)

const accountPrefix = "account"

// BadgerStore is a Store backed by a Badger database. Keys sort by address, so
// Accounts is a single prefix scan.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// NewBadgerStore opens the database in path, creating it if needed.
func NewBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(path).
		WithSyncWrites(false).
		WithTruncate(true)

	if logger != nil {
		sub := logger.WithFields(logrus.Fields{"ns": "badger"})
		opts = opts.WithLogger(sub)
	}

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &BadgerStore{
		db:   handle,
		path: path,
	}, nil
}

// LoadBadgerStore opens an existing database.
func LoadBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return NewBadgerStore(path, logger)
}

// LoadOrCreateBadgerStore opens the database in path, or creates a new one if
// there is nothing there.
func LoadOrCreateBadgerStore(path string, logger *logrus.Entry) (*BadgerStore, error) {
	store, err := LoadBadgerStore(path, logger)

	if err != nil {
		store, err = NewBadgerStore(path, logger)

		if err != nil {
			return nil, err
		}
	}

	return store, nil
}

//==============================================================================
//Keys

func accountKey(addr types.AccountAddress) []byte {
	return []byte(fmt.Sprintf("%s_%s", accountPrefix, addr))
}

//==============================================================================
//Implement the Store interface

// GetAccount implements the Store interface.
func (s *BadgerStore) GetAccount(addr types.AccountAddress) (*Account, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(accountKey(addr))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, mapError(err, "Account", addr.String())
	}

	account, err := unmarshalAccount(data)
	if err != nil {
		return nil, cm.NewStoreErr("Account", cm.Corrupted, addr.String())
	}

	return account, nil
}

// SetAccount implements the Store interface.
func (s *BadgerStore) SetAccount(a *Account) error {
	val, err := a.marshal()
	if err != nil {
		return err
	}

	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	if err := tx.Set(accountKey(a.Address), val); err != nil {
		return err
	}

	return tx.Commit()
}

// Accounts implements the Store interface.
func (s *BadgerStore) Accounts() ([]*Account, error) {
	var res []*Account

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(accountPrefix + "_")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			err := item.Value(func(data []byte) error {
				account, err := unmarshalAccount(data)
				if err != nil {
					return cm.NewStoreErr("Account", cm.Corrupted, string(item.Key()))
				}
				res = append(res, account)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return res, nil
}

// Len implements the Store interface.
func (s *BadgerStore) Len() int {
	count := 0

	s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(accountPrefix + "_")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count
}

// Close implements the Store interface.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// StorePath implements the Store interface.
func (s *BadgerStore) StorePath() string {
	return s.path
}

//++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++

func isDBKeyNotFound(err error) bool {
	return err.Error() == badger.ErrKeyNotFound.Error()
}

func mapError(err error, name, key string) error {
	if err != nil {
		if isDBKeyNotFound(err) {
			return cm.NewStoreErr(name, cm.KeyNotFound, key)
		}
	}
	return err
}
