package types

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"

	"github.com/mosaicnetworks/txbench/src/common"
	"github.com/mosaicnetworks/txbench/src/crypto"
	"github.com/mosaicnetworks/txbench/src/crypto/keys"
)

// AddressLength is the size of an account address in bytes.
const AddressLength = 32

// AccountAddress identifies an account on the ledger. It is the SHA256 hash of
// the uncompressed public key of the account.
type AccountAddress [AddressLength]byte

// AddressFromPublicKey derives the address of the account owning pub.
func AddressFromPublicKey(pub *ecdsa.PublicKey) AccountAddress {
	return AddressFromPublicKeyBytes(keys.FromPublicKey(pub))
}

// AddressFromPublicKeyBytes derives an address from the uncompressed form of a
// public key.
func AddressFromPublicKeyBytes(pub []byte) AccountAddress {
	var addr AccountAddress
	copy(addr[:], crypto.SHA256(pub))
	return addr
}

// ParseAddress parses the output of AccountAddress.String.
func ParseAddress(s string) (AccountAddress, error) {
	var addr AccountAddress

	raw, err := common.DecodeFromString(s)
	if err != nil {
		return addr, err
	}

	if len(raw) != AddressLength {
		return addr, fmt.Errorf("address %s has %d bytes, want %d", s, len(raw), AddressLength)
	}

	copy(addr[:], raw)

	return addr, nil
}

// String returns the 0X-prefixed uppercase hex form of the address.
func (a AccountAddress) String() string {
	return common.EncodeToString(a[:])
}

// ShortString returns the first 4 bytes of the address, for logs.
func (a AccountAddress) ShortString() string {
	return common.EncodeToString(a[:4])
}

// Less orders addresses bytewise.
func (a AccountAddress) Less(b AccountAddress) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// MarshalText implements encoding.TextMarshaler.
func (a AccountAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AccountAddress) UnmarshalText(text []byte) error {
	addr, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
