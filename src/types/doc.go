// Package types defines the ledger domain objects exchanged between the
// benchmark client and the admission-control service: account addresses,
// account resources and their state blobs, signed transactions, and the
// request/response messages of the SubmitTransaction and
// UpdateToLatestLedger calls.
//
// Wire messages mirror protobuf oneofs with optional pointer fields: at most
// one of them is set, and a nil pointer means "absent". All objects encode
// with the JSON handle of github.com/ugorji/go/codec.
package types
