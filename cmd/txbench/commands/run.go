package commands

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/txbench/src/accounts"
	"github.com/mosaicnetworks/txbench/src/benchmarker"
	"github.com/mosaicnetworks/txbench/src/crypto/keys"
	"github.com/mosaicnetworks/txbench/src/ledger"
	"github.com/mosaicnetworks/txbench/src/metrics"
	"github.com/mosaicnetworks/txbench/src/net"
	"github.com/mosaicnetworks/txbench/src/service"
	"github.com/spf13/cobra"
)

//NewRunCmd returns the command that runs the benchmark
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run the benchmark",
		PreRunE: loadConfig,
		RunE:    runBenchmark,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runBenchmark(cmd *cobra.Command, args []string) error {
	logger := _config.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	faucetKey, err := readFaucetKey()
	if err != nil {
		logger.Error("Cannot read faucet key: ", err)
		return err
	}

	clients, err := newClients(faucetKey)
	if err != nil {
		logger.Error("Cannot create clients: ", err)
		return err
	}
	defer func() {
		for _, c := range clients {
			c.Close()
		}
	}()

	store, err := newAccountStore()
	if err != nil {
		logger.Error("Cannot open account store: ", err)
		return err
	}
	defer store.Close()

	prom := metrics.NewPrometheusCounter()
	summary := metrics.NewInmemCounter()

	tracer, closeTracer := newTracer(benchmarker.TracerName, _config.Trace, logger)
	defer closeTracer()

	bm, err := benchmarker.New(
		clients,
		accounts.NewAccountFromKey(faucetKey),
		store,
		metrics.Multi(prom, summary),
		tracer,
		logger,
	)
	if err != nil {
		return err
	}

	if !_config.NoService {
		serviceServer := service.NewService(_config.ServiceAddr, bm, prom.Handler(), logger)
		go serviceServer.Serve()
		defer serviceServer.Close()
	}

	reports, runErr := bm.Run(ctx,
		_config.NumAccounts,
		_config.NumRounds,
		_config.MintAmount,
		_config.TransferAmount,
	)

	for _, r := range reports {
		fmt.Println(r.String())
	}
	for _, op := range summary.Ops() {
		fmt.Printf("%s: %d\n", op, summary.Count(op))
	}

	return runErr
}

// readFaucetKey reads the association key from the data directory. In
// standalone mode the in-process ledger is created with it, so a missing key
// is generated.
func readFaucetKey() (*ecdsa.PrivateKey, error) {
	keyfile := keys.NewSimpleKeyfile(_config.Keyfile())
	if _config.Standalone {
		return keyfile.ReadOrGenerateKey()
	}
	return keyfile.ReadKey()
}

// newClients creates NumClients clients. In standalone mode they all talk to a
// reference ledger running in this process. Otherwise they are spread over
// the servers round-robin.
func newClients(faucetKey *ecdsa.PrivateKey) ([]net.Client, error) {
	if _config.NumClients <= 0 {
		return nil, fmt.Errorf("clients must be positive, not %d", _config.NumClients)
	}

	clients := make([]net.Client, 0, _config.NumClients)

	if _config.Standalone {
		l := ledger.NewLedger(_config.LedgerConfig(), faucetKey)
		l.RunAsync()

		for i := 0; i < _config.NumClients; i++ {
			c := net.NewInmemClient(l, 0, _config.Logger().WithField("client", i))
			clients = append(clients, net.WithCallTimeout(c, _config.GRPCTimeout))
		}

		// The ledger stops with the last client.
		last := len(clients) - 1
		clients[last] = &closeHook{Client: clients[last], hook: l.Shutdown}

		return clients, nil
	}

	if len(_config.Servers) == 0 {
		return nil, fmt.Errorf("no servers to connect to")
	}

	for i := 0; i < _config.NumClients; i++ {
		target := _config.Servers[i%len(_config.Servers)]

		c, err := net.NewGRPCClient(target, _config.Logger().WithField("client", i))
		if err != nil {
			for _, prev := range clients {
				prev.Close()
			}
			return nil, err
		}

		clients = append(clients, net.WithCallTimeout(c, _config.GRPCTimeout))
	}

	return clients, nil
}

// closeHook runs hook after closing the wrapped client.
type closeHook struct {
	net.Client
	hook func()
}

func (c *closeHook) Close() error {
	err := c.Client.Close()
	c.hook()
	return err
}

func newAccountStore() (accounts.Store, error) {
	if !_config.Store {
		return accounts.NewInmemStore(), nil
	}
	store, err := accounts.LoadOrCreateBadgerStore(
		_config.DatabaseDir,
		_config.Logger().WithField("prefix", "store"),
	)
	if err != nil {
		return nil, err
	}
	return store, nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {
	AddCommonFlags(cmd)

	// Network
	cmd.Flags().StringSlice("servers", _config.Servers, "Comma-separated list of admission control IP:Port")
	cmd.Flags().Bool("standalone", _config.Standalone, "Run a reference ledger in process instead of connecting to servers")
	cmd.Flags().DurationP("timeout", "t", _config.GRPCTimeout, "Timeout of every remote call")

	// Benchmark
	cmd.Flags().Int("accounts", _config.NumAccounts, "Number of benchmark accounts")
	cmd.Flags().Int("clients", _config.NumClients, "Number of clients submitting concurrently")
	cmd.Flags().Int("rounds", _config.NumRounds, "Number of transfer rounds")
	cmd.Flags().Uint64("mint-amount", _config.MintAmount, "Amount minted to each new account")
	cmd.Flags().Uint64("transfer-amount", _config.TransferAmount, "Amount transferred per account and round")
	cmd.Flags().Bool("trace", _config.Trace, "Log a span for every benchmark phase")

	// Store
	cmd.Flags().Bool("store", _config.Store, "Keep benchmark accounts in badgerDB")
	cmd.Flags().String("db", _config.DatabaseDir, "Dabatabase directory")

	// Standalone ledger
	AddLedgerFlags(cmd)
}
