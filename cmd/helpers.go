package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/web4asset/w4t/config"
	"github.com/web4asset/w4t/ledger"
	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/store"
)

// loadNodeConfig falls back to the defaults when no config file exists
func loadNodeConfig(path string) (*config.NodeConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logx.Warn("CMD", "Config file not found, using defaults:", path)
		cfg := config.DefaultNodeConfig()
		return cfg, cfg.Validate()
	}
	return config.LoadNodeConfig(path)
}

// openLedger opens the configured store and loads the ledger from it
func openLedger(cfg *config.NodeConfig) (*ledger.Ledger, *store.Stores, error) {
	mode, err := cfg.Ledger.ArithmeticMode()
	if err != nil {
		return nil, nil, err
	}
	stores, err := store.CreateStores(&cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	l, err := ledger.Open(stores.Balances, mode)
	if err != nil {
		stores.Close()
		return nil, nil, err
	}
	return l, stores, nil
}

// parseAmount accepts digits with optional underscores, e.g. 10_000_000_000
func parseAmount(s string) (uint64, error) {
	amount, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse amount %q: %w", s, err)
	}
	return amount, nil
}
