package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/web4asset/w4t/config"
	"github.com/web4asset/w4t/ledger"
	"github.com/web4asset/w4t/logx"
)

var initGenesisPath string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the ledger store from a genesis file",
	Long: `Initialize the ledger by:
- Opening the store configured in config.ini
- Crediting every genesis allocation
- Printing the resulting state hash

Running init on an already initialized ledger leaves it unchanged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initializeLedger(configPath, initGenesisPath)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initGenesisPath, "genesis", "config/genesis.yml", "Path to genesis configuration file")
}

func initializeLedger(cfgPath, genesisPath string) error {
	cfg, err := loadNodeConfig(cfgPath)
	if err != nil {
		return err
	}
	genesis, err := config.LoadGenesisConfig(genesisPath)
	if err != nil {
		return fmt.Errorf("load genesis: %w", err)
	}

	l, stores, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	if err := l.ApplyGenesis(genesis.Alloc); err != nil {
		if !errors.Is(err, ledger.ErrGenesisApplied) {
			return err
		}
		logx.Info("INIT", "Ledger already initialized, skipping genesis")
	} else {
		logx.Info("INIT", fmt.Sprintf("Genesis applied | accounts=%d | supply=%d", len(genesis.Alloc), l.GetTotalSupply()))
	}

	hash := l.StateHash()
	fmt.Println(hex.EncodeToString(hash[:]))
	return nil
}
