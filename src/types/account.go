package types

import (
	"errors"
	"fmt"
)

// AccountResourcePath is the key of the account resource inside an account
// state blob.
const AccountResourcePath = "0x0.Account.T"

// AccountStatus describes how much a client knows about an account.
type AccountStatus int

const (
	// AccountStatusLocal means the account only exists on the client side.
	AccountStatusLocal AccountStatus = iota
	// AccountStatusPersisted means the account state was read from the ledger.
	AccountStatusPersisted
	// AccountStatusUnknown means the account state could not be determined.
	AccountStatusUnknown
)

var accountStatuses = []string{"Local", "Persisted", "Unknown"}

// String returns the string representation of AccountStatus.
func (s AccountStatus) String() string {
	if int(s) < 0 || int(s) >= len(accountStatuses) {
		return "Unknown"
	}
	return accountStatuses[s]
}

// ErrNoAccountState is returned when decoding an empty account state blob.
var ErrNoAccountState = errors.New("empty account state blob")

// AccountResource is the resource every account carries on the ledger.
type AccountResource struct {
	Balance             uint64
	SequenceNumber      uint64
	AuthenticationKey   []byte
	SentEventsCount     uint64
	ReceivedEventsCount uint64
}

// AccountStateBlob is the opaque, encoded state of an account: a map from
// resource path to encoded resource.
type AccountStateBlob struct {
	Blob []byte
}

// NewAccountStateBlob encodes an account resource into a state blob.
func NewAccountStateBlob(resource AccountResource) (*AccountStateBlob, error) {
	resBytes, err := Marshal(resource)
	if err != nil {
		return nil, err
	}

	state := map[string][]byte{
		AccountResourcePath: resBytes,
	}

	blob, err := Marshal(state)
	if err != nil {
		return nil, err
	}

	return &AccountStateBlob{Blob: blob}, nil
}

// AccountState decodes the blob into its resource map.
func (b *AccountStateBlob) AccountState() (map[string][]byte, error) {
	if b == nil || len(b.Blob) == 0 {
		return nil, ErrNoAccountState
	}

	state := make(map[string][]byte)
	if err := Unmarshal(b.Blob, &state); err != nil {
		return nil, fmt.Errorf("decoding account state blob: %w", err)
	}

	return state, nil
}

// GetAccountResourceOrDefault extracts the account resource from a state blob.
// A nil blob, or a blob without an account resource, yields the default (zero)
// resource. Malformed bytes yield an error.
func GetAccountResourceOrDefault(blob *AccountStateBlob) (AccountResource, error) {
	var resource AccountResource

	if blob == nil {
		return resource, nil
	}

	state, err := blob.AccountState()
	if err != nil {
		if errors.Is(err, ErrNoAccountState) {
			return resource, nil
		}
		return resource, err
	}

	resBytes, ok := state[AccountResourcePath]
	if !ok {
		return resource, nil
	}

	if err := Unmarshal(resBytes, &resource); err != nil {
		return resource, fmt.Errorf("decoding account resource: %w", err)
	}

	return resource, nil
}
