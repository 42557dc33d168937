package cmd

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/web4asset/w4t/client"
	"github.com/web4asset/w4t/config"
	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/types"
)

type mintFlags struct {
	nodeURL        string
	privateKeyFile string
	to             string
	amount         string
	nonce          uint64
	timeout        time.Duration
}

var mintCfg mintFlags

var mintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Sign a mint call and submit it to a running node",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMint(cmd.Context(), mintCfg)
	},
}

func init() {
	rootCmd.AddCommand(mintCmd)
	mintCmd.Flags().StringVar(&mintCfg.nodeURL, "node-url", "http://127.0.0.1:8545", "JSON-RPC endpoint of the node")
	mintCmd.Flags().StringVar(&mintCfg.privateKeyFile, "private-key-file", "privkey.txt", "Hex encoded Ed25519 private key of the caller")
	mintCmd.Flags().StringVar(&mintCfg.to, "to", "", "Account to credit")
	mintCmd.Flags().StringVar(&mintCfg.amount, "amount", "", "Amount in base units, underscores allowed")
	mintCmd.Flags().Uint64Var(&mintCfg.nonce, "nonce", 0, "Nonce to sign with, 0 fetches the next one from the node")
	mintCmd.Flags().DurationVar(&mintCfg.timeout, "timeout", 10*time.Second, "Request timeout")
	mintCmd.MarkFlagRequired("to")
	mintCmd.MarkFlagRequired("amount")
}

func runMint(parent context.Context, f mintFlags) error {
	if parent == nil {
		parent = context.Background()
	}
	target := types.AccountID(f.to)
	if err := target.Validate(); err != nil {
		return err
	}
	amount, err := parseAmount(f.amount)
	if err != nil {
		return err
	}
	key, err := config.LoadEd25519PrivKey(f.privateKeyFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(parent, f.timeout)
	defer cancel()

	c := client.NewClient(client.Config{Endpoint: f.nodeURL})
	defer c.Close()

	nonce := f.nonce
	if nonce == 0 {
		caller := types.AccountIDFromPublicKey(key.Public().(ed25519.PublicKey))
		if nonce, err = c.GetNextNonce(ctx, caller); err != nil {
			return fmt.Errorf("fetch nonce: %w", err)
		}
	}

	sc, err := client.SignMint(key, target, amount, nonce)
	if err != nil {
		return err
	}
	res, err := c.Mint(ctx, sc)
	if err != nil {
		return err
	}
	logx.Info("MINT", fmt.Sprintf("Minted | caller=%s | target=%s | nonce=%d | applied=%s | saturated=%v",
		sc.Call.Caller, res.Account, nonce, res.Applied, res.Saturated))
	fmt.Printf("balance=%s total_supply=%s\n", res.Balance, res.TotalSupply)
	return nil
}
