package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/mosaicnetworks/txbench/src/common"
	"github.com/mosaicnetworks/txbench/src/ledger"
	"github.com/mosaicnetworks/txbench/src/net"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultKeyfile is the default name of the file containing the
	// association (faucet) private key.
	DefaultKeyfile = "faucet_key"

	// DefaultBadgerFile is the default name of the folder containing the Badger
	// account store.
	DefaultBadgerFile = "badger_db"

	// DefaultConfigFile is the name, without extension, of the optional
	// configuration file read from the data directory.
	DefaultConfigFile = "txbench"
)

// Default configuration values.
const (
	DefaultLogLevel        = "debug"
	DefaultLogFile         = ""
	DefaultStandalone      = false
	DefaultNumAccounts     = 32
	DefaultNumClients      = 4
	DefaultNumRounds       = 1
	DefaultMintAmount      = 1000000
	DefaultTransferAmount  = 1
	DefaultGRPCTimeout     = net.DefaultGRPCTimeout
	DefaultStore           = false
	DefaultServiceAddr     = "127.0.0.1:9000"
	DefaultNoService       = false
	DefaultTrace           = false
	DefaultBindAddr        = "127.0.0.1:8001"
	DefaultBlockInterval   = 10 * time.Millisecond
	DefaultMaxBlockSize    = 1000
	DefaultMempoolCapacity = 100000
)

// DefaultServers returns the default list of ledger endpoints: the default
// address of a local 'txbench ledger'.
func DefaultServers() []string {
	return []string{DefaultBindAddr}
}

// Config contains all the configuration properties of the txbench commands.
type Config struct {
	// DataDir is the top-level directory containing txbench configuration and
	// data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, receives a copy of the debug, info and error logs.
	LogFile string `mapstructure:"log-file"`

	// Servers is the list of admission-control endpoints (host:port) the
	// benchmark clients connect to. Clients are spread over them round-robin.
	Servers []string `mapstructure:"servers"`

	// Standalone runs the reference ledger in process and talks to it through
	// in-memory clients. Servers is ignored.
	Standalone bool `mapstructure:"standalone"`

	// NumAccounts is the number of benchmark accounts taking part in the
	// transfer rounds.
	NumAccounts int `mapstructure:"accounts"`

	// NumClients is the number of clients, and therefore of concurrent
	// submission chunks.
	NumClients int `mapstructure:"clients"`

	// NumRounds is the number of transfer rounds.
	NumRounds int `mapstructure:"rounds"`

	// MintAmount is the amount minted to each account before the transfer
	// rounds.
	MintAmount uint64 `mapstructure:"mint-amount"`

	// TransferAmount is the amount each account pays its neighbour per round.
	TransferAmount uint64 `mapstructure:"transfer-amount"`

	// GRPCTimeout is the deadline of every remote call.
	GRPCTimeout time.Duration `mapstructure:"timeout"`

	// Store activates the persistent account store.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing the account store.
	DatabaseDir string `mapstructure:"db"`

	// ServiceAddr is the address:port of the HTTP service.
	ServiceAddr string `mapstructure:"service-listen"`

	// NoService disables the HTTP service.
	NoService bool `mapstructure:"no-service"`

	// Trace installs an otel tracer provider for the benchmark phases.
	Trace bool `mapstructure:"trace"`

	// BindAddr is the address:port the reference ledger serves gRPC on.
	BindAddr string `mapstructure:"listen"`

	// BlockInterval is how often the reference ledger commits its mempool.
	BlockInterval time.Duration `mapstructure:"block-interval"`

	// MaxBlockSize is the maximum number of transactions per block.
	MaxBlockSize int `mapstructure:"block-size"`

	// MempoolCapacity is the maximum number of pending transactions.
	MempoolCapacity int `mapstructure:"mempool-capacity"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:         DefaultDataDir(),
		LogLevel:        DefaultLogLevel,
		LogFile:         DefaultLogFile,
		Servers:         DefaultServers(),
		Standalone:      DefaultStandalone,
		NumAccounts:     DefaultNumAccounts,
		NumClients:      DefaultNumClients,
		NumRounds:       DefaultNumRounds,
		MintAmount:      DefaultMintAmount,
		TransferAmount:  DefaultTransferAmount,
		GRPCTimeout:     DefaultGRPCTimeout,
		Store:           DefaultStore,
		DatabaseDir:     DefaultDatabaseDir(),
		ServiceAddr:     DefaultServiceAddr,
		NoService:       DefaultNoService,
		Trace:           DefaultTrace,
		BindAddr:        DefaultBindAddr,
		BlockInterval:   DefaultBlockInterval,
		MaxBlockSize:    DefaultMaxBlockSize,
		MempoolCapacity: DefaultMempoolCapacity,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level directory, and updates the database directory
// if it is currently set to the default value. If the database directory is
// not currently the default, it means the user has explicitely set it to
// something else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// Keyfile returns the full path of the file containing the association key.
func (c *Config) Keyfile() string {
	return filepath.Join(c.DataDir, DefaultKeyfile)
}

// LedgerConfig returns the configuration of a reference ledger sharing this
// config's logger.
func (c *Config) LedgerConfig() *ledger.Config {
	return ledger.NewConfig(
		c.BlockInterval,
		c.MaxBlockSize,
		c.MempoolCapacity,
		c.Logger().WithField("prefix", "ledger"),
	)
}

// Logger returns a formatted logrus Entry, with prefix set to "txbench". When
// LogFile is set, debug, info and error entries are also written to that file.
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			c.logger.Hooks.Add(lfshook.NewHook(
				lfshook.PathMap{
					logrus.DebugLevel: c.LogFile,
					logrus.InfoLevel:  c.LogFile,
					logrus.ErrorLevel: c.LogFile,
				},
				&logrus.TextFormatter{},
			))
		}
	}
	return c.logger.WithField("prefix", "txbench")
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default directory name for top-level txbench
// config based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".TXBench")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "TXBench")
		} else {
			return filepath.Join(home, ".txbench")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
