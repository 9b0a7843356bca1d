package commands

import (
	gonet "net"
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/txbench/src/crypto/keys"
	"github.com/mosaicnetworks/txbench/src/ledger"
	"github.com/mosaicnetworks/txbench/src/net"
	"github.com/mosaicnetworks/txbench/src/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//NewLedgerCmd returns the command that serves the reference ledger over gRPC
func NewLedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ledger",
		Short:   "Serve the reference ledger",
		PreRunE: loadConfig,
		RunE:    runLedger,
	}
	AddLedgerCmdFlags(cmd)
	return cmd
}

func runLedger(cmd *cobra.Command, args []string) error {
	logger := _config.Logger()

	key, err := keys.NewSimpleKeyfile(_config.Keyfile()).ReadOrGenerateKey()
	if err != nil {
		logger.Error("Cannot read association key: ", err)
		return err
	}

	l := ledger.NewLedger(_config.LedgerConfig(), key)

	lis, err := gonet.Listen("tcp", _config.BindAddr)
	if err != nil {
		logger.Error("Cannot listen: ", err)
		return err
	}

	server := net.NewGRPCServer()
	net.RegisterAdmissionControlServer(server, l)

	if !_config.NoService {
		serviceServer := service.NewService(_config.ServiceAddr, l, promhttp.Handler(), logger)
		go serviceServer.Serve()
		defer serviceServer.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		server.GracefulStop()
	}()

	l.RunAsync()
	defer l.Shutdown()

	logger.WithFields(logrus.Fields{
		"listen":      lis.Addr().String(),
		"association": l.AssociationAddress().String(),
	}).Info("Serving admission control")

	return server.Serve(lis)
}

//AddLedgerCmdFlags adds flags to the Ledger command
func AddLedgerCmdFlags(cmd *cobra.Command) {
	AddCommonFlags(cmd)

	cmd.Flags().StringP("listen", "l", _config.BindAddr, "Listen IP:Port for the admission control service")

	AddLedgerFlags(cmd)
}
