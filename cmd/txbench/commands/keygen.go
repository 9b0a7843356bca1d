package commands

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/mosaicnetworks/txbench/src/config"
	"github.com/mosaicnetworks/txbench/src/crypto/keys"
	"github.com/mosaicnetworks/txbench/src/types"
	"github.com/spf13/cobra"
)

var (
	privKeyFile string
	pubKeyFile  string
)

// NewKeygenCmd produces a KeygenCmd which creates a key pair. By default the
// private key is written where 'txbench ledger' and 'txbench run' look for the
// association key.
func NewKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create new key pair",
		RunE:  keygen,
	}

	AddKeygenFlags(cmd)

	return cmd
}

//AddKeygenFlags adds flags to the keygen command
func AddKeygenFlags(cmd *cobra.Command) {
	defaultPrivateKeyFile := filepath.Join(_config.DataDir, config.DefaultKeyfile)
	defaultPublicKeyFile := defaultPrivateKeyFile + ".pub"

	cmd.Flags().StringVar(&privKeyFile, "priv", defaultPrivateKeyFile, "File where the private key will be written")
	cmd.Flags().StringVar(&pubKeyFile, "pub", defaultPublicKeyFile, "File where the public key will be written")
}

func keygen(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(privKeyFile); err == nil {
		return fmt.Errorf("A key already lives under: %s", path.Dir(privKeyFile))
	}

	key, err := keys.GenerateECDSAKey()
	if err != nil {
		return fmt.Errorf("Error generating ECDSA key: %w", err)
	}

	if err := os.MkdirAll(path.Dir(privKeyFile), 0700); err != nil {
		return fmt.Errorf("Writing private key: %w", err)
	}

	if err := keys.NewSimpleKeyfile(privKeyFile).WriteKey(key); err != nil {
		return fmt.Errorf("Writing private key: %w", err)
	}

	fmt.Printf("Your private key has been saved to: %s\n", privKeyFile)

	if err := os.MkdirAll(path.Dir(pubKeyFile), 0700); err != nil {
		return fmt.Errorf("Writing public key: %w", err)
	}

	pub := keys.PublicKeyHex(&key.PublicKey)

	if err := os.WriteFile(pubKeyFile, []byte(pub), 0600); err != nil {
		return fmt.Errorf("Writing public key: %w", err)
	}

	fmt.Printf("Your public key has been saved to: %s\n", pubKeyFile)
	fmt.Printf("Address: %s\n", types.AddressFromPublicKey(&key.PublicKey))

	return nil
}
