package common

import "fmt"

// StoreErrType enumerates the failure modes of the account stores.
type StoreErrType uint32

const (
	// KeyNotFound is returned when a record does not exist.
	KeyNotFound StoreErrType = iota
	// KeyAlreadyExists is returned when inserting over an existing record.
	KeyAlreadyExists
	// Corrupted is returned when a stored record cannot be decoded.
	Corrupted
	// Closed is returned when the store was used after Close.
	Closed
)

// StoreErr is the error type returned by the account stores.
type StoreErr struct {
	dataType string
	errType  StoreErrType
	key      string
}

// NewStoreErr creates a StoreErr for a record of the given data type.
func NewStoreErr(dataType string, errType StoreErrType, key string) StoreErr {
	return StoreErr{
		dataType: dataType,
		errType:  errType,
		key:      key,
	}
}

// Error implements the error interface.
func (e StoreErr) Error() string {
	m := ""
	switch e.errType {
	case KeyNotFound:
		m = "Not Found"
	case KeyAlreadyExists:
		m = "Key Already Exists"
	case Corrupted:
		m = "Corrupted"
	case Closed:
		m = "Closed"
	}

	return fmt.Sprintf("%s, %s, %s", e.dataType, e.key, m)
}

// IsStore checks that an error is of type StoreErr and that its code matches
// the provided StoreErr code.
func IsStore(err error, t StoreErrType) bool {
	storeErr, ok := err.(StoreErr)
	return ok && storeErr.errType == t
}
