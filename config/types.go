package config

import (
	"github.com/web4asset/w4t/staking"
	"github.com/web4asset/w4t/store"
	"github.com/web4asset/w4t/types"
)

type LedgerConfig struct {
	// Arithmetic is "saturating" (default) or "checked"
	Arithmetic string `ini:"arithmetic"`
}

type MintConfig struct {
	// Authority is "any" (default) or "allowlist"
	Authority string   `ini:"authority"`
	Minters   []string `ini:"minters" delim:","`
}

type RewardConfig struct {
	// Policy is "none" (default), "fixed", "halving" or "stake"
	Policy          string `ini:"policy"`
	Amount          uint64 `ini:"amount"`
	HalvingInterval uint64 `ini:"halving_interval"`
	RateBps         uint64 `ini:"rate_bps"`
	PeriodsPerYear  uint64 `ini:"periods_per_year"`
	PoolAccount     string `ini:"pool_account"`
	BlockIntervalMs int    `ini:"block_interval_ms"`
	KeyPath         string `ini:"key_path"`
}

type RPCConfig struct {
	ListenAddr string `ini:"listen_addr"`
}

// NodeConfig holds the configuration from config.ini
type NodeConfig struct {
	Ledger LedgerConfig
	Store  store.StoreConfig
	Mint   MintConfig
	Reward RewardConfig
	RPC    RPCConfig
}

// GenesisConfig holds the configuration from genesis.yml
type GenesisConfig struct {
	Alloc      []types.GenesisAlloc `yaml:"alloc"`
	Validators []staking.Validator  `yaml:"validators"`
}

// ConfigFile is the top-level structure for genesis.yml
type ConfigFile struct {
	Config GenesisConfig `yaml:"config"`
}
