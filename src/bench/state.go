package bench

import (
	"errors"
	"fmt"

	"github.com/mosaicnetworks/txbench/src/common"
	"github.com/mosaicnetworks/txbench/src/net"
	"github.com/mosaicnetworks/txbench/src/types"
	"github.com/sirupsen/logrus"
)

var (
	// ErrAccountNotFound is returned when the ledger has no state for an
	// account.
	ErrAccountNotFound = errors.New("account doesn't exist")
	// ErrEmptyResponse is returned when a ledger response carries no items.
	ErrEmptyResponse = errors.New("empty response items")
)

// AccountState is what the ledger reports about one account.
type AccountState struct {
	SequenceNumber uint64
	Status         types.AccountStatus
}

// GetAccountStates queries the state of every address concurrently on client.
// Addresses whose query could not be issued, failed, or found no account are
// left out of the result.
func GetAccountStates(client net.Client,
	addresses []types.AccountAddress,
	logger *logrus.Entry) map[types.AccountAddress]AccountState {

	futures := make([]net.LedgerFuture, 0, len(addresses))

	for _, addr := range addresses {
		future, err := getAccountStateAsync(client, addr)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"address": addr.ShortString(),
				"error":   err,
			}).Error("Failed to send account state request")
			continue
		}
		futures = append(futures, future)
	}

	states := make(map[types.AccountAddress]AccountState, len(futures))

	for future := range common.Unordered(futures) {
		addr := future.Request().RequestedItems[0].GetAccountState.Address

		if err := future.Error(); err != nil {
			logger.WithFields(logrus.Fields{
				"address": addr.ShortString(),
				"error":   err,
			}).Error("Failed to get account state")
			continue
		}

		state, err := accountStateFromResponse(future.Response())
		if err != nil {
			logger.WithFields(logrus.Fields{
				"address": addr.ShortString(),
				"error":   err,
			}).Error("Invalid account state response")
			continue
		}

		logger.WithFields(logrus.Fields{
			"address":         addr.ShortString(),
			"sequence_number": state.SequenceNumber,
		}).Debug("Update account sequence number")

		states[addr] = state
	}

	return states
}

func getAccountStateAsync(client net.Client, addr types.AccountAddress) (net.LedgerFuture, error) {
	req := types.NewUpdateToLatestLedgerRequest(0, []types.RequestItem{
		types.NewGetAccountStateItem(addr),
	})
	return client.UpdateToLatestLedgerAsync(req, net.DefaultCallOption())
}

// accountStateFromResponse reads the first response item only.
func accountStateFromResponse(resp *types.UpdateToLatestLedgerResponse) (AccountState, error) {
	if resp == nil || len(resp.ResponseItems) == 0 {
		return AccountState{}, ErrEmptyResponse
	}

	proof, err := resp.ResponseItems[0].IntoGetAccountStateResponse()
	if err != nil {
		return AccountState{}, err
	}

	if proof.Blob == nil {
		return AccountState{}, ErrAccountNotFound
	}

	resource, err := types.GetAccountResourceOrDefault(proof.Blob)
	if err != nil {
		return AccountState{}, fmt.Errorf("decoding account state: %w", err)
	}

	return AccountState{
		SequenceNumber: resource.SequenceNumber,
		Status:         types.AccountStatusPersisted,
	}, nil
}
