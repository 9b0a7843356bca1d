package benchmarker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mosaicnetworks/txbench/src/accounts"
	"github.com/mosaicnetworks/txbench/src/bench"
	"github.com/mosaicnetworks/txbench/src/common"
	"github.com/mosaicnetworks/txbench/src/metrics"
	"github.com/mosaicnetworks/txbench/src/net"
	"github.com/mosaicnetworks/txbench/src/types"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// TracerName names the tracer spans are recorded with.
const TracerName = "txbench/benchmarker"

// ErrNoClients is returned by New when no client is given.
var ErrNoClients = errors.New("benchmarker needs at least one client")

// Benchmarker mints benchmark accounts from a faucet account and runs rounds
// of transfers between them, measuring how many transactions the ledger
// commits. Its methods must not be called concurrently.
type Benchmarker struct {
	clients []net.Client
	store   accounts.Store
	faucet  *accounts.Account
	counter metrics.OpCounter
	tracer  trace.Tracer
	logger  *logrus.Entry

	reportLock sync.RWMutex
	reports    []Report

	// poller waits for sequence numbers. Tests shorten its budget.
	poller *bench.Poller
}

// New creates a Benchmarker. Transactions are spread over clients, state
// queries go through the first one. A nil tracer uses the global provider.
func New(clients []net.Client,
	faucet *accounts.Account,
	store accounts.Store,
	counter metrics.OpCounter,
	tracer trace.Tracer,
	logger *logrus.Entry) (*Benchmarker, error) {

	if len(clients) == 0 {
		return nil, ErrNoClients
	}
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	if counter == nil {
		counter = metrics.Nop
	}

	return &Benchmarker{
		clients: clients,
		store:   store,
		faucet:  faucet,
		counter: counter,
		tracer:  tracer,
		logger:  logger,
		poller:  bench.NewPoller(),
	}, nil
}

// Faucet returns the account mints are sent from.
func (b *Benchmarker) Faucet() *accounts.Account {
	return b.faucet
}

// LoadAccounts returns n accounts, reusing those in the store first and
// creating and storing the rest.
func (b *Benchmarker) LoadAccounts(ctx context.Context, n int) (res []*accounts.Account, err error) {
	_, span := b.tracer.Start(ctx, "load_accounts", trace.WithAttributes(attribute.Int("accounts", n)))
	defer func() { endSpan(span, err) }()

	stored, err := b.store.Accounts()
	if err != nil {
		return nil, fmt.Errorf("reading stored accounts: %w", err)
	}

	if len(stored) >= n {
		res = stored[:n]
	} else {
		res = stored
	}
	reused := len(res)

	for len(res) < n {
		a, err := accounts.NewAccount()
		if err != nil {
			return nil, err
		}
		if err := b.store.SetAccount(a); err != nil {
			return nil, fmt.Errorf("storing account: %w", err)
		}
		res = append(res, a)
	}

	b.logger.WithFields(logrus.Fields{
		"reused":  reused,
		"created": n - reused,
	}).Debug("Load accounts")

	return res, nil
}

// SyncAccounts reads the sequence numbers of accts from the ledger and returns
// the accounts it does not know.
func (b *Benchmarker) SyncAccounts(ctx context.Context, accts []*accounts.Account) (missing []*accounts.Account) {
	_, span := b.tracer.Start(ctx, "sync_accounts", trace.WithAttributes(attribute.Int("accounts", len(accts))))
	defer span.End()

	addrs := make([]types.AccountAddress, len(accts))
	for i, a := range accts {
		addrs[i] = a.Address
	}

	states := bench.GetAccountStates(b.clients[0], addrs, b.logger)

	for _, a := range accts {
		s, ok := states[a.Address]
		if !ok {
			missing = append(missing, a)
			continue
		}
		a.SequenceNumber = s.SequenceNumber
	}

	span.SetAttributes(attribute.Int("missing", len(missing)))

	return missing
}

// SyncFaucet reads the faucet's sequence number from the ledger.
func (b *Benchmarker) SyncFaucet(ctx context.Context) error {
	if missing := b.SyncAccounts(ctx, []*accounts.Account{b.faucet}); len(missing) != 0 {
		return fmt.Errorf("faucet %s: %w", b.faucet.Address, bench.ErrAccountNotFound)
	}
	return nil
}

// MintAccounts sends amount to every account from the faucet and waits for the
// mints to be committed.
func (b *Benchmarker) MintAccounts(ctx context.Context, accts []*accounts.Account, amount uint64) (report Report, err error) {
	ctx, span := b.tracer.Start(ctx, "mint_accounts", trace.WithAttributes(
		attribute.Int("accounts", len(accts)),
		attribute.Int64("amount", int64(amount)),
	))
	defer func() { endSpan(span, err) }()

	start := time.Now()
	report.Phase = "mint"

	startSeq := b.faucet.SequenceNumber

	reqs := make([]*types.SubmitTransactionRequest, 0, len(accts))
	for _, a := range accts {
		req, err := b.faucet.SignTransaction(types.Program{
			Type:     types.MintProgram,
			Receiver: a.Address,
			Amount:   amount,
		})
		if err != nil {
			return report, err
		}
		reqs = append(reqs, req)
	}
	report.Submitted = len(reqs)

	report.Accepted, report.ChunkLatency, err = b.submitChunks(ctx, reqs)
	if err != nil {
		return report, err
	}

	target := startSeq + uint64(report.Accepted)
	synced := b.sync(ctx, []bench.AddressSequence{{Address: b.faucet.Address, SequenceNumber: target}})

	observed := synced[b.faucet.Address]
	if observed > startSeq {
		report.Committed = int(observed - startSeq)
	}
	b.faucet.SequenceNumber = max(observed, startSeq)

	report.finish(time.Since(start))
	b.addReport(report)

	if observed != target {
		b.logger.WithFields(logrus.Fields{
			"expected": target,
			"observed": observed,
		}).Error("Faucet did not reach its sequence number")
	}

	return report, nil
}

// RunTransferRound makes every account pay amount to the next one, the last
// paying the first, and waits for the transfers to be committed. Local
// sequence numbers are then reset to what the ledger reports, so transactions
// that were lost do not leave gaps, and the accounts are stored.
func (b *Benchmarker) RunTransferRound(ctx context.Context, round int, accts []*accounts.Account, amount uint64) (report Report, err error) {
	ctx, span := b.tracer.Start(ctx, "transfer_round", trace.WithAttributes(
		attribute.Int("round", round),
		attribute.Int("accounts", len(accts)),
	))
	defer func() { endSpan(span, err) }()

	start := time.Now()
	report.Phase = "transfer"
	report.Round = round

	startSeqs := make(map[types.AccountAddress]uint64, len(accts))
	reqs := make([]*types.SubmitTransactionRequest, 0, len(accts))

	for i, a := range accts {
		startSeqs[a.Address] = a.SequenceNumber

		receiver := accts[(i+1)%len(accts)]
		req, err := a.SignTransaction(types.Program{
			Type:     types.TransferProgram,
			Receiver: receiver.Address,
			Amount:   amount,
		})
		if err != nil {
			return report, err
		}
		reqs = append(reqs, req)
	}
	report.Submitted = len(reqs)

	report.Accepted, report.ChunkLatency, err = b.submitChunks(ctx, reqs)
	if err != nil {
		return report, err
	}

	targets := make([]bench.AddressSequence, len(accts))
	for i, a := range accts {
		targets[i] = bench.AddressSequence{Address: a.Address, SequenceNumber: a.SequenceNumber}
	}

	synced := b.sync(ctx, targets)

	for _, a := range accts {
		observed := synced[a.Address]
		if observed > startSeqs[a.Address] {
			report.Committed += int(observed - startSeqs[a.Address])
		}
		if observed != a.SequenceNumber {
			b.logger.WithFields(logrus.Fields{
				"account":  a.Address.ShortString(),
				"expected": a.SequenceNumber,
				"observed": observed,
			}).Debug("Account did not reach its sequence number")
		}
		// An account that could not be read keeps its starting value.
		a.SequenceNumber = max(observed, startSeqs[a.Address])

		if err := b.store.SetAccount(a); err != nil {
			return report, fmt.Errorf("storing account: %w", err)
		}
	}

	report.finish(time.Since(start))
	b.addReport(report)

	span.SetAttributes(
		attribute.Int("committed", report.Committed),
		attribute.Float64("tps", report.TPS),
	)

	return report, nil
}

// Run loads numAccounts accounts, mints into those the ledger does not know,
// and runs numRounds transfer rounds.
func (b *Benchmarker) Run(ctx context.Context, numAccounts, numRounds int, mintAmount, transferAmount uint64) (reports []Report, err error) {
	ctx, span := b.tracer.Start(ctx, "run", trace.WithAttributes(
		attribute.Int("accounts", numAccounts),
		attribute.Int("rounds", numRounds),
		attribute.Int("clients", len(b.clients)),
	))
	defer func() { endSpan(span, err) }()

	accts, err := b.LoadAccounts(ctx, numAccounts)
	if err != nil {
		return nil, err
	}

	if err := b.SyncFaucet(ctx); err != nil {
		return nil, err
	}

	if missing := b.SyncAccounts(ctx, accts); len(missing) > 0 {
		r, err := b.MintAccounts(ctx, missing, mintAmount)
		if err != nil {
			return reports, err
		}
		b.logger.Info(r.String())
		reports = append(reports, r)

		if still := b.SyncAccounts(ctx, missing); len(still) > 0 {
			return reports, fmt.Errorf("%d accounts were not minted", len(still))
		}
	}

	for round := 1; round <= numRounds; round++ {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		r, err := b.RunTransferRound(ctx, round, accts, transferAmount)
		if err != nil {
			return reports, err
		}
		b.logger.Info(r.String())
		reports = append(reports, r)
	}

	return reports, nil
}

// submitChunks divides reqs over the clients and submits the chunks
// concurrently. It returns the number of accepted transactions and the median
// chunk latency.
func (b *Benchmarker) submitChunks(ctx context.Context, reqs []*types.SubmitTransactionRequest) (int, time.Duration, error) {
	ctx, span := b.tracer.Start(ctx, "submit", trace.WithAttributes(attribute.Int("txns", len(reqs))))
	defer span.End()

	chunks := bench.DivideItems(reqs, len(b.clients))

	accepted := make([]int, len(chunks))
	latencies := make([]time.Duration, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		client := b.clients[i%len(b.clients)]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			resps := bench.SubmitAndWaitTxnRequests(client, chunk, b.counter, b.logger.WithField("chunk", i))
			accepted[i] = len(resps)
			latencies[i] = time.Since(start)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return 0, 0, err
	}

	total := 0
	for _, n := range accepted {
		total += n
	}

	span.SetAttributes(
		attribute.Int("chunks", len(chunks)),
		attribute.Int("accepted", total),
	)

	return total, common.MedianDuration(latencies), nil
}

func (b *Benchmarker) sync(ctx context.Context, targets []bench.AddressSequence) map[types.AccountAddress]uint64 {
	_, span := b.tracer.Start(ctx, "sync", trace.WithAttributes(attribute.Int("accounts", len(targets))))
	defer span.End()

	return b.poller.Sync(b.clients[0], targets, b.logger)
}

func (b *Benchmarker) addReport(r Report) {
	b.reportLock.Lock()
	defer b.reportLock.Unlock()
	b.reports = append(b.reports, r)
}

// Reports returns every report produced so far.
func (b *Benchmarker) Reports() []Report {
	b.reportLock.RLock()
	defer b.reportLock.RUnlock()
	res := make([]Report, len(b.reports))
	copy(res, b.reports)
	return res
}

// GetStats returns the latest report, for the stats endpoint.
func (b *Benchmarker) GetStats() map[string]string {
	b.reportLock.RLock()
	defer b.reportLock.RUnlock()

	if len(b.reports) == 0 {
		return map[string]string{"phase": "none"}
	}
	stats := b.reports[len(b.reports)-1].Stats()
	stats["reports"] = fmt.Sprint(len(b.reports))
	return stats
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
