package commands

import (
	"github.com/mosaicnetworks/txbench/src/config"
	"github.com/spf13/cobra"
)

var (
	_config = config.NewDefaultConfig()
)

//RootCmd is the root command for txbench
var RootCmd = &cobra.Command{
	Use:              "txbench",
	Short:            "ledger transaction benchmark",
	TraverseChildren: true,
}
