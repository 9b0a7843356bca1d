package accounts

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/mosaicnetworks/txbench/src/crypto/keys"
	"github.com/mosaicnetworks/txbench/src/types"
)

// DefaultMaxGasAmount is the gas limit set on benchmark transactions.
const DefaultMaxGasAmount = 10000

// Account is a benchmark account. SequenceNumber is the sequence number the
// next transaction will carry, which runs ahead of the ledger's value while
// transactions are in flight.
type Account struct {
	Address        types.AccountAddress
	Key            *ecdsa.PrivateKey
	SequenceNumber uint64
}

// NewAccount generates a new key and the account it controls.
func NewAccount() (*Account, error) {
	key, err := keys.GenerateECDSAKey()
	if err != nil {
		return nil, err
	}
	return NewAccountFromKey(key), nil
}

// NewAccountFromKey returns the account controlled by key, at sequence number
// 0.
func NewAccountFromKey(key *ecdsa.PrivateKey) *Account {
	return &Account{
		Address: types.AddressFromPublicKey(&key.PublicKey),
		Key:     key,
	}
}

// SignTransaction signs a transaction running program at the current local
// sequence number, then advances the local sequence number.
func (a *Account) SignTransaction(program types.Program) (*types.SubmitTransactionRequest, error) {
	raw := &types.RawTransaction{
		Sender:         a.Address,
		SequenceNumber: a.SequenceNumber,
		Program:        program,
		MaxGasAmount:   DefaultMaxGasAmount,
		GasUnitPrice:   0,
	}

	signed, err := raw.Sign(a.Key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction %d of %s: %w", a.SequenceNumber, a.Address.ShortString(), err)
	}

	a.SequenceNumber++

	return &types.SubmitTransactionRequest{SignedTxn: signed}, nil
}

// accountRecord is how an Account is persisted.
type accountRecord struct {
	Address        types.AccountAddress
	PrivateKey     string
	SequenceNumber uint64
}

func (a *Account) marshal() ([]byte, error) {
	return types.Marshal(&accountRecord{
		Address:        a.Address,
		PrivateKey:     keys.PrivateKeyHex(a.Key),
		SequenceNumber: a.SequenceNumber,
	})
}

func unmarshalAccount(data []byte) (*Account, error) {
	var rec accountRecord
	if err := types.Unmarshal(data, &rec); err != nil {
		return nil, err
	}

	key, err := keys.ParsePrivateKeyHex(rec.PrivateKey)
	if err != nil {
		return nil, err
	}

	if addr := types.AddressFromPublicKey(&key.PublicKey); addr != rec.Address {
		return nil, fmt.Errorf("key of account %s belongs to %s", rec.Address.ShortString(), addr.ShortString())
	}

	return &Account{
		Address:        rec.Address,
		Key:            key,
		SequenceNumber: rec.SequenceNumber,
	}, nil
}

func (a *Account) clone() *Account {
	c := *a
	return &c
}
