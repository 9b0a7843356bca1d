package commands

import (
	"github.com/mosaicnetworks/txbench/src/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//AddCommonFlags adds the flags shared by the run and ledger commands
func AddCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.LogFile, "Also write logs to this file")

	// Service
	cmd.Flags().StringP("service-listen", "s", _config.ServiceAddr, "Listen IP:Port for HTTP service")
	cmd.Flags().Bool("no-service", _config.NoService, "Disable HTTP service")
}

//AddLedgerFlags adds the flags configuring a reference ledger
func AddLedgerFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("block-interval", _config.BlockInterval, "Time between blocks")
	cmd.Flags().Int("block-size", _config.MaxBlockSize, "Max number of transactions per block")
	cmd.Flags().Int("mempool-capacity", _config.MempoolCapacity, "Max number of pending transactions")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.SetDataDir(_config.DataDir)

	logFields := logrus.Fields{
		"DataDir":     _config.DataDir,
		"LogLevel":    _config.LogLevel,
		"LogFile":     _config.LogFile,
		"ServiceAddr": _config.ServiceAddr,
		"NoService":   _config.NoService,
	}

	switch cmd.Name() {
	case "run":
		logFields["Servers"] = _config.Servers
		logFields["Standalone"] = _config.Standalone
		logFields["NumAccounts"] = _config.NumAccounts
		logFields["NumClients"] = _config.NumClients
		logFields["NumRounds"] = _config.NumRounds
		logFields["MintAmount"] = _config.MintAmount
		logFields["TransferAmount"] = _config.TransferAmount
		logFields["GRPCTimeout"] = _config.GRPCTimeout
		logFields["Store"] = _config.Store
		logFields["Trace"] = _config.Trace
		if _config.Store {
			logFields["DatabaseDir"] = _config.DatabaseDir
		}
	case "ledger":
		logFields["BindAddr"] = _config.BindAddr
	}

	if cmd.Name() == "ledger" || _config.Standalone {
		logFields["BlockInterval"] = _config.BlockInterval
		logFields["MaxBlockSize"] = _config.MaxBlockSize
		logFields["MempoolCapacity"] = _config.MempoolCapacity
	}

	_config.Logger().WithFields(logFields).Debug(cmd.Name())

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/txbench.toml (.json, .yaml also work)
	viper.SetConfigName(config.DefaultConfigFile) // name of config file (without extension)
	viper.AddConfigPath(_config.DataDir)          // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger().Debugf("No config file found in: %s", _config.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}
