package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/mosaicnetworks/txbench/src/crypto/keys"
	"github.com/mosaicnetworks/txbench/src/types"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AssociationBalance is the genesis balance of the association account.
const AssociationBalance = math.MaxUint64 / 2

// ErrEmptyRequest is returned by UpdateToLatestLedger when the request asks
// for nothing.
var ErrEmptyRequest = status.Error(codes.InvalidArgument, "empty request items")

// Ledger is an in-memory ledger that implements the admission-control service.
type Ledger struct {
	state

	conf   *Config
	logger *logrus.Entry

	associationKey     *ecdsa.PrivateKey
	associationAddress types.AccountAddress

	ledgerLock sync.Mutex
	accounts   map[types.AccountAddress]*types.AccountResource
	version    uint64
	mempool    *mempool

	blocks        int
	committedTxns int
	failedTxns    int

	controlTimer *ControlTimer
	submitCh     chan struct{}
	shutdownCh   chan struct{}

	start time.Time
}

// NewLedger creates a ledger whose genesis holds the association account
// controlled by associationKey.
func NewLedger(conf *Config, associationKey *ecdsa.PrivateKey) *Ledger {
	pub := keys.FromPublicKey(&associationKey.PublicKey)
	addr := types.AddressFromPublicKeyBytes(pub)

	l := &Ledger{
		conf:               conf,
		logger:             conf.Logger.WithField("ledger", addr.ShortString()),
		associationKey:     associationKey,
		associationAddress: addr,
		accounts:           make(map[types.AccountAddress]*types.AccountResource),
		mempool:            newMempool(conf.MempoolCapacity),
		controlTimer:       NewBlockTimer(),
		submitCh:           make(chan struct{}, 1),
		shutdownCh:         make(chan struct{}),
		start:              time.Now(),
	}

	l.accounts[addr] = &types.AccountResource{
		Balance:           AssociationBalance,
		AuthenticationKey: pub,
	}

	return l
}

// AssociationAddress returns the address of the account allowed to mint.
func (l *Ledger) AssociationAddress() types.AccountAddress {
	return l.associationAddress
}

// AssociationKey returns the private key of the association account.
func (l *Ledger) AssociationKey() *ecdsa.PrivateKey {
	return l.associationKey
}

// SubmitTransaction validates a transaction and queues it for the next block.
// Rejections are reported in the response, errors are reserved for malformed
// requests.
func (l *Ledger) SubmitTransaction(ctx context.Context, req *types.SubmitTransactionRequest) (*types.SubmitTransactionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	raw, err := req.SignedTxn.Verify()
	switch {
	case errors.Is(err, types.ErrInvalidAuthKey):
		return types.NewVMResponse(types.VMInvalidAuthKey), nil
	case errors.Is(err, types.ErrInvalidSignature):
		return types.NewVMResponse(types.VMInvalidSignature), nil
	case err != nil:
		l.logger.WithError(err).Debug("Malformed transaction")
		return types.NewVMResponse(types.VMMalformedTransaction), nil
	}

	resp := l.admit(raw, req.SignedTxn)

	l.logger.WithFields(logrus.Fields{
		"sender":   raw.Sender.ShortString(),
		"seq":      raw.SequenceNumber,
		"program":  raw.Program.Type,
		"response": resp,
	}).Debug("SubmitTransaction")

	return resp, nil
}

func (l *Ledger) admit(raw *types.RawTransaction, signed *types.SignedTransaction) *types.SubmitTransactionResponse {
	l.ledgerLock.Lock()
	defer l.ledgerLock.Unlock()

	sender, ok := l.accounts[raw.Sender]
	if !ok {
		return types.NewVMResponse(types.VMSendingAccountDoesNotExist)
	}

	if raw.SequenceNumber < sender.SequenceNumber {
		return types.NewVMResponse(types.VMSequenceNumberTooOld)
	}

	if raw.ExpirationTime > 0 && raw.ExpirationTime < time.Now().Unix() {
		return types.NewVMResponse(types.VMTransactionExpired)
	}

	switch raw.Program.Type {
	case types.MintProgram:
		if raw.Sender != l.associationAddress {
			return types.NewACResponse(types.ACRejected, "only the association can mint")
		}
	case types.TransferProgram:
		if raw.Program.Amount > sender.Balance {
			return types.NewMempoolResponse(types.MempoolInsufficientBalance, "")
		}
	default:
		return types.NewVMResponse(types.VMMalformedTransaction)
	}

	if l.mempool.contains(raw.Sender, raw.SequenceNumber) {
		return types.NewMempoolResponse(types.MempoolInvalidUpdate, "transaction already in mempool")
	}

	if l.mempool.full() {
		return types.NewMempoolResponse(types.MempoolIsFull, "")
	}

	l.mempool.add(pendingTxn{raw: raw, signed: signed})

	select {
	case l.submitCh <- struct{}{}:
	default:
	}

	return types.NewACResponse(types.ACAccepted, "")
}

// UpdateToLatestLedger returns the state of the requested accounts at the
// latest committed version. Accounts that do not exist have no blob.
func (l *Ledger) UpdateToLatestLedger(ctx context.Context, req *types.UpdateToLatestLedgerRequest) (*types.UpdateToLatestLedgerResponse, error) {
	if err := req.Validate(); err != nil {
		if errors.Is(err, types.ErrNoRequestedItems) {
			return nil, ErrEmptyRequest
		}
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	l.ledgerLock.Lock()
	defer l.ledgerLock.Unlock()

	resp := &types.UpdateToLatestLedgerResponse{
		ResponseItems: make([]types.ResponseItem, 0, len(req.RequestedItems)),
		LedgerInfo: types.LedgerInfo{
			Version:        l.version,
			TimestampUsecs: uint64(time.Now().UnixMicro()),
		},
	}

	for _, item := range req.RequestedItems {
		proof := types.AccountStateWithProof{Version: l.version}

		if account, ok := l.accounts[item.GetAccountState.Address]; ok {
			blob, err := types.NewAccountStateBlob(*account)
			if err != nil {
				return nil, status.Error(codes.Internal, err.Error())
			}
			proof.Blob = blob
		}

		resp.ResponseItems = append(resp.ResponseItems, types.ResponseItem{
			GetAccountStateResponse: &types.GetAccountStateResponse{
				AccountStateWithProof: proof,
			},
		})
	}

	return resp, nil
}

// CommitNow commits one block and returns the number of transactions it
// contains.
func (l *Ledger) CommitNow() int {
	l.ledgerLock.Lock()
	defer l.ledgerLock.Unlock()
	return l.commitBlock()
}

// commitBlock applies, for every sender, the queued transactions that follow
// its committed sequence number without gaps. Must be called with ledgerLock
// held.
func (l *Ledger) commitBlock() int {
	count := 0

	for _, addr := range l.mempool.senders() {
		if count >= l.conf.MaxBlockSize {
			break
		}

		sender := l.accounts[addr]
		l.mempool.removeBelow(addr, sender.SequenceNumber)

		for count < l.conf.MaxBlockSize {
			txn, ok := l.mempool.get(addr, sender.SequenceNumber)
			if !ok {
				break
			}
			l.mempool.remove(addr, sender.SequenceNumber)
			l.apply(sender, txn.raw)
			count++
		}
	}

	if count > 0 {
		l.version += uint64(count)
		l.blocks++
		l.committedTxns += count

		l.logger.WithFields(logrus.Fields{
			"txns":    count,
			"version": l.version,
			"mempool": l.mempool.size,
		}).Debug("Commit block")
	}

	return count
}

// apply executes a transaction. A transfer that can no longer be covered by
// the sender's balance still consumes its sequence number.
func (l *Ledger) apply(sender *types.AccountResource, raw *types.RawTransaction) {
	sender.SequenceNumber++

	switch raw.Program.Type {
	case types.MintProgram:
		receiver := l.getOrCreate(raw.Program.Receiver)
		receiver.Balance += raw.Program.Amount
		receiver.ReceivedEventsCount++
	case types.TransferProgram:
		if raw.Program.Amount > sender.Balance {
			l.failedTxns++
			l.logger.WithFields(logrus.Fields{
				"sender": raw.Sender.ShortString(),
				"seq":    raw.SequenceNumber,
			}).Debug("Transfer failed: insufficient balance")
			return
		}
		sender.Balance -= raw.Program.Amount
		sender.SentEventsCount++
		receiver := l.getOrCreate(raw.Program.Receiver)
		receiver.Balance += raw.Program.Amount
		receiver.ReceivedEventsCount++
	}
}

func (l *Ledger) getOrCreate(addr types.AccountAddress) *types.AccountResource {
	account, ok := l.accounts[addr]
	if !ok {
		account = &types.AccountResource{}
		l.accounts[addr] = account
	}
	return account
}

// Version returns the number of committed transactions.
func (l *Ledger) Version() uint64 {
	l.ledgerLock.Lock()
	defer l.ledgerLock.Unlock()
	return l.version
}

// MempoolSize returns the number of transactions waiting for a block.
func (l *Ledger) MempoolSize() int {
	l.ledgerLock.Lock()
	defer l.ledgerLock.Unlock()
	return l.mempool.size
}

// RunAsync calls Run in a goroutine that Shutdown waits for.
func (l *Ledger) RunAsync() {
	l.goFunc(l.Run)
}

// Run is the commit loop. A block is committed BlockInterval after a
// transaction arrives in an empty mempool, and again after every block while
// transactions are left over. It returns on Shutdown, or immediately if the
// ledger is already running or shut down.
func (l *Ledger) Run() {
	if !l.casState(Idle, Running) {
		return
	}

	l.goFunc(func() { l.controlTimer.Run(0) })

	armed := false
	for {
		select {
		case <-l.submitCh:
			if !armed {
				armed = l.controlTimer.Reset(l.conf.BlockInterval)
			}
		case <-l.controlTimer.tickCh:
			armed = false
			l.CommitNow()
			if l.MempoolSize() > 0 {
				armed = l.controlTimer.Reset(l.conf.BlockInterval)
			}
		case <-l.shutdownCh:
			return
		}
	}
}

// Shutdown stops the commit loop.
func (l *Ledger) Shutdown() {
	if l.getState() != Shutdown {
		l.logger.Debug("Shutdown")

		l.setState(Shutdown)

		close(l.shutdownCh)
		l.controlTimer.Shutdown()

		l.waitRoutines()
	}
}

// GetStats returns stats
func (l *Ledger) GetStats() map[string]string {
	l.ledgerLock.Lock()
	defer l.ledgerLock.Unlock()

	timeElapsed := time.Since(l.start)
	txnsPerSecond := float64(l.committedTxns) / timeElapsed.Seconds()

	return map[string]string{
		"state":           l.getState().String(),
		"version":         strconv.FormatUint(l.version, 10),
		"accounts":        strconv.Itoa(len(l.accounts)),
		"blocks":          strconv.Itoa(l.blocks),
		"committed_txns":  strconv.Itoa(l.committedTxns),
		"failed_txns":     strconv.Itoa(l.failedTxns),
		"mempool_size":    strconv.Itoa(l.mempool.size),
		"time_elapsed":    strconv.FormatFloat(timeElapsed.Seconds(), 'f', 2, 64),
		"txns_per_second": strconv.FormatFloat(txnsPerSecond, 'f', 2, 64),
		"association":     l.associationAddress.String(),
	}
}
