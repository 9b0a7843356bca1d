package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRequestedItems is returned when a ledger request asks for nothing.
	ErrNoRequestedItems = errors.New("update to latest ledger request has no items")
	// ErrNotAccountState is returned when a response item is not an account
	// state response.
	ErrNotAccountState = errors.New("response item is not an account state response")
)

// GetAccountStateRequest asks for the state of one account.
type GetAccountStateRequest struct {
	Address AccountAddress
}

// RequestItem is one of the things an UpdateToLatestLedgerRequest can ask for.
type RequestItem struct {
	GetAccountState *GetAccountStateRequest
}

// NewGetAccountStateItem builds a request item for the state of address.
func NewGetAccountStateItem(address AccountAddress) RequestItem {
	return RequestItem{GetAccountState: &GetAccountStateRequest{Address: address}}
}

// UpdateToLatestLedgerRequest queries the ledger at its latest version.
type UpdateToLatestLedgerRequest struct {
	ClientKnownVersion uint64
	RequestedItems     []RequestItem
}

// NewUpdateToLatestLedgerRequest builds a request.
func NewUpdateToLatestLedgerRequest(clientKnownVersion uint64, items []RequestItem) *UpdateToLatestLedgerRequest {
	return &UpdateToLatestLedgerRequest{
		ClientKnownVersion: clientKnownVersion,
		RequestedItems:     items,
	}
}

// Validate checks the request can be sent.
func (r *UpdateToLatestLedgerRequest) Validate() error {
	if r == nil || len(r.RequestedItems) == 0 {
		return ErrNoRequestedItems
	}
	for i, item := range r.RequestedItems {
		if item.GetAccountState == nil {
			return fmt.Errorf("requested item %d is empty", i)
		}
	}
	return nil
}

// AccountStateWithProof is the state of an account at a ledger version. Blob
// is nil when the account does not exist.
type AccountStateWithProof struct {
	Version uint64
	Blob    *AccountStateBlob
}

// GetAccountStateResponse answers a GetAccountStateRequest.
type GetAccountStateResponse struct {
	AccountStateWithProof AccountStateWithProof
}

// ResponseItem answers one RequestItem.
type ResponseItem struct {
	GetAccountStateResponse *GetAccountStateResponse
}

// IntoGetAccountStateResponse returns the account state carried by the item.
func (r ResponseItem) IntoGetAccountStateResponse() (AccountStateWithProof, error) {
	if r.GetAccountStateResponse == nil {
		return AccountStateWithProof{}, ErrNotAccountState
	}
	return r.GetAccountStateResponse.AccountStateWithProof, nil
}

// LedgerInfo describes the ledger version a response was produced at.
type LedgerInfo struct {
	Version        uint64
	TimestampUsecs uint64
}

// UpdateToLatestLedgerResponse answers an UpdateToLatestLedgerRequest, one
// response item per requested item.
type UpdateToLatestLedgerResponse struct {
	ResponseItems []ResponseItem
	LedgerInfo    LedgerInfo
}
