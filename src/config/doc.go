// Package config defines the configuration of the txbench commands.
//
// The same Config object is used whether the benchmark is driven from Go code
// or from the command line. Flags and the optional [datadir]/txbench.toml file
// are decoded into it by viper. The data directory also holds:
//
//  faucet_key // the association key used by the reference ledger (cf. txbench ledger).
//  badger_db  // (optional) the benchmark account store.
package config
