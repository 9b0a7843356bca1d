package ledger

import (
	"testing"
	"time"

	"github.com/mosaicnetworks/txbench/src/common"
	"github.com/sirupsen/logrus"
)

// Config holds the tunables of a Ledger.
type Config struct {
	// BlockInterval is the time between the arrival of a transaction in an
	// empty mempool and the commit of the block that includes it.
	BlockInterval time.Duration `mapstructure:"block-interval"`

	// MaxBlockSize caps the number of transactions committed at once.
	MaxBlockSize int `mapstructure:"block-size"`

	// MempoolCapacity caps the number of transactions waiting for a block.
	MempoolCapacity int `mapstructure:"mempool-capacity"`

	Logger *logrus.Entry
}

// NewConfig ...
func NewConfig(blockInterval time.Duration,
	maxBlockSize int,
	mempoolCapacity int,
	logger *logrus.Entry) *Config {

	return &Config{
		BlockInterval:   blockInterval,
		MaxBlockSize:    maxBlockSize,
		MempoolCapacity: mempoolCapacity,
		Logger:          logger,
	}
}

// DefaultConfig ...
func DefaultConfig() *Config {
	logger := logrus.New()
	logger.Level = logrus.DebugLevel

	return &Config{
		BlockInterval:   10 * time.Millisecond,
		MaxBlockSize:    1000,
		MempoolCapacity: 100000,
		Logger:          logrus.NewEntry(logger),
	}
}

// TestConfig returns the default configuration with logs sent to t.
func TestConfig(t testing.TB) *Config {
	config := DefaultConfig()
	config.Logger = common.NewTestEntry(t, common.TestLogLevel)
	return config
}
