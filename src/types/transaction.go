package types

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/mosaicnetworks/txbench/src/crypto/keys"
)

var (
	// ErrInvalidAuthKey is returned when the public key attached to a signed
	// transaction does not hash to the sender address.
	ErrInvalidAuthKey = errors.New("public key does not match sender address")
	// ErrInvalidSignature is returned when the signature does not verify.
	ErrInvalidSignature = errors.New("invalid transaction signature")
)

// ProgramType selects what a transaction does.
type ProgramType uint8

const (
	// MintProgram creates coins out of thin air. Only the association account
	// may run it.
	MintProgram ProgramType = iota
	// TransferProgram moves coins from the sender to the receiver.
	TransferProgram
)

// String returns the name of the program.
func (p ProgramType) String() string {
	switch p {
	case MintProgram:
		return "Mint"
	case TransferProgram:
		return "Transfer"
	default:
		return fmt.Sprintf("Program(%d)", uint8(p))
	}
}

// Program is the payload of a transaction.
type Program struct {
	Type     ProgramType
	Receiver AccountAddress
	Amount   uint64
}

// RawTransaction is an unsigned transaction.
type RawTransaction struct {
	Sender         AccountAddress
	SequenceNumber uint64
	Program        Program
	MaxGasAmount   uint64
	GasUnitPrice   uint64
	ExpirationTime int64
}

// Marshal encodes the transaction. The output is what gets signed.
func (r *RawTransaction) Marshal() ([]byte, error) {
	return Marshal(r)
}

// Sign encodes and signs the transaction with the sender's key.
func (r *RawTransaction) Sign(key *ecdsa.PrivateKey) (*SignedTransaction, error) {
	raw, err := r.Marshal()
	if err != nil {
		return nil, err
	}

	sig, err := keys.Sign(key, raw)
	if err != nil {
		return nil, err
	}

	return &SignedTransaction{
		RawTxnBytes:     raw,
		SenderPublicKey: keys.FromPublicKey(&key.PublicKey),
		Signature:       sig,
	}, nil
}

// SignedTransaction is an encoded RawTransaction with the sender's public key
// and signature.
type SignedTransaction struct {
	RawTxnBytes     []byte
	SenderPublicKey []byte
	Signature       string
}

// RawTransaction decodes the signed bytes without checking the signature.
func (s *SignedTransaction) RawTransaction() (*RawTransaction, error) {
	raw := new(RawTransaction)
	if err := Unmarshal(s.RawTxnBytes, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Verify decodes the transaction and checks that the public key belongs to the
// sender and that the signature is valid.
func (s *SignedTransaction) Verify() (*RawTransaction, error) {
	raw, err := s.RawTransaction()
	if err != nil {
		return nil, err
	}

	if AddressFromPublicKeyBytes(s.SenderPublicKey) != raw.Sender {
		return raw, ErrInvalidAuthKey
	}

	if !keys.Verify(keys.ToPublicKey(s.SenderPublicKey), s.RawTxnBytes, s.Signature) {
		return raw, ErrInvalidSignature
	}

	return raw, nil
}
