package cmd

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/web4asset/w4t/config"
	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/types"
)

var (
	keygenOut   string
	keygenForce bool
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an Ed25519 key pair and print its account address",
	RunE: func(cmd *cobra.Command, args []string) error {
		return generateKey(keygenOut, keygenForce)
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVarP(&keygenOut, "out", "o", "privkey.txt", "Where to write the hex encoded private key")
	keygenCmd.Flags().BoolVar(&keygenForce, "force", false, "Overwrite an existing key file")
}

func generateKey(out string, force bool) error {
	if _, err := os.Stat(out); err == nil && !force {
		return fmt.Errorf("key file %s already exists, use --force to overwrite", out)
	}
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}
	if err := config.SaveEd25519PrivKey(out, priv); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	logx.Info("KEYGEN", "Private key saved to:", out)
	fmt.Println(types.AccountIDFromPublicKey(pub))
	return nil
}
