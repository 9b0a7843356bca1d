package bench

import (
	"github.com/mosaicnetworks/txbench/src/common"
	"github.com/mosaicnetworks/txbench/src/metrics"
	"github.com/mosaicnetworks/txbench/src/net"
	"github.com/mosaicnetworks/txbench/src/types"
	"github.com/sirupsen/logrus"
)

// SubmitCounterPrefix prefixes the names of the submission counters.
const SubmitCounterPrefix = "submit_txns"

// UnknownStatus classifies a response that carries no status at all.
const UnknownStatus = "Unknown"

func submitOp(kind string) string {
	return SubmitCounterPrefix + "." + kind
}

// SubmitAndWaitTxnRequests submits every request concurrently on client, waits
// for all of them and returns the responses admission control accepted, in the
// order they completed. Every outcome increments a submit_txns.<kind> counter.
func SubmitAndWaitTxnRequests(client net.Client,
	reqs []*types.SubmitTransactionRequest,
	counter metrics.OpCounter,
	logger *logrus.Entry) []*types.SubmitTransactionResponse {

	futures := make([]net.SubmitFuture, 0, len(reqs))

	for i, req := range reqs {
		future, err := client.SubmitTransactionAsync(req, net.DefaultCallOption())
		if err != nil {
			counter.Inc(submitOp(net.ErrorKind(err)))
			logger.WithFields(logrus.Fields{
				"index": i,
				"error": err,
			}).Error("Failed to send request")
			continue
		}
		futures = append(futures, future)
	}

	var accepted []*types.SubmitTransactionResponse

	for future := range common.Unordered(futures) {
		if err := future.Error(); err != nil {
			counter.Inc(submitOp(net.ErrorKind(err)))
			logger.WithField("error", err).Error("Failed to receive response")
			continue
		}

		resp := future.Response()
		kind, ok := classifySubmitResponse(resp)
		counter.Inc(submitOp(kind))
		if !ok {
			logger.WithField("response", resp).Error("Transaction rejected")
			continue
		}
		accepted = append(accepted, resp)
	}

	return accepted
}

// classifySubmitResponse returns the counter kind of resp and whether it
// reports an accepted transaction. The admission-control status takes
// precedence over the VM status, which takes precedence over the mempool
// status.
func classifySubmitResponse(resp *types.SubmitTransactionResponse) (string, bool) {
	switch {
	case resp == nil:
		return UnknownStatus, false
	case resp.HasACStatus():
		code := resp.ACStatus.Code
		return code.String(), code == types.ACAccepted
	case resp.HasVMStatus():
		return resp.VMStatus.String(), false
	case resp.HasMempoolStatus():
		return resp.MempoolStatus.Code.String(), false
	default:
		return UnknownStatus, false
	}
}
