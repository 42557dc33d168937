package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/web4asset/w4t/ledger"
	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/mint"
	"github.com/web4asset/w4t/staking"
	"github.com/web4asset/w4t/store"
	"github.com/web4asset/w4t/types"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const (
	AuthorityAny       = "any"
	AuthorityAllowlist = "allowlist"

	PolicyNone    = "none"
	PolicyFixed   = "fixed"
	PolicyHalving = "halving"
	PolicyStake   = "stake"
)

var ErrInvalidKey = errors.New("invalid ed25519 private key")

// DefaultNodeConfig returns the configuration used for keys missing from config.ini
func DefaultNodeConfig() *NodeConfig {
	return &NodeConfig{
		Ledger: LedgerConfig{Arithmetic: "saturating"},
		Store: store.StoreConfig{
			Type:      store.LevelDBStoreType,
			Directory: "data",
		},
		Mint: MintConfig{Authority: AuthorityAny},
		Reward: RewardConfig{
			Policy:          PolicyNone,
			Amount:          staking.DefaultBlockReward,
			BlockIntervalMs: 6000,
		},
		RPC: RPCConfig{ListenAddr: ":8545"},
	}
}

// LoadNodeConfig reads the node config from an .ini file on top of DefaultNodeConfig
func LoadNodeConfig(path string) (*NodeConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	nodeCfg := DefaultNodeConfig()
	sections := []struct {
		name   string
		target interface{}
	}{
		{"ledger", &nodeCfg.Ledger},
		{"store", &nodeCfg.Store},
		{"mint", &nodeCfg.Mint},
		{"reward", &nodeCfg.Reward},
		{"rpc", &nodeCfg.RPC},
	}
	for _, s := range sections {
		if err := cfg.Section(s.name).MapTo(s.target); err != nil {
			return nil, fmt.Errorf("section [%s]: %w", s.name, err)
		}
	}
	if err := nodeCfg.Validate(); err != nil {
		return nil, err
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded node config | path=%s | store=%s | authority=%s | reward=%s", path, nodeCfg.Store.Type, nodeCfg.Mint.Authority, nodeCfg.Reward.Policy))
	return nodeCfg, nil
}

func (c *NodeConfig) Validate() error {
	if _, err := ledger.ParseArithmeticMode(c.Ledger.Arithmetic); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if _, err := c.Mint.NewAuthority(); err != nil {
		return err
	}
	switch c.Reward.Policy {
	case "", PolicyNone, PolicyFixed, PolicyHalving, PolicyStake:
	default:
		return fmt.Errorf("unsupported reward policy: %s", c.Reward.Policy)
	}
	if c.Reward.PoolAccount != "" {
		if _, err := types.AccountID(c.Reward.PoolAccount).PublicKey(); err != nil {
			return fmt.Errorf("pool_account: %w", err)
		}
	}
	if c.Reward.Enabled() && c.Reward.BlockIntervalMs <= 0 {
		return fmt.Errorf("block_interval_ms must be positive")
	}
	return nil
}

// ArithmeticMode returns the parsed ledger arithmetic mode
func (c *LedgerConfig) ArithmeticMode() (ledger.ArithmeticMode, error) {
	return ledger.ParseArithmeticMode(c.Arithmetic)
}

// NewAuthority builds the mint authority
func (c *MintConfig) NewAuthority() (mint.Authority, error) {
	switch c.Authority {
	case "", AuthorityAny:
		return mint.AnySigned{}, nil
	case AuthorityAllowlist:
		minters := make([]types.AccountID, 0, len(c.Minters))
		for _, m := range c.Minters {
			id := types.AccountID(strings.TrimSpace(m))
			if _, err := id.PublicKey(); err != nil {
				return nil, fmt.Errorf("minter %q: %w", m, err)
			}
			minters = append(minters, id)
		}
		return mint.NewAllowlist(minters...), nil
	default:
		return nil, fmt.Errorf("unsupported mint authority: %s", c.Authority)
	}
}

// Enabled reports whether a reward feed should run
func (c *RewardConfig) Enabled() bool {
	return c.Policy != "" && c.Policy != PolicyNone
}

// NewPolicy builds the reward policy. stakes is only used by the stake policy.
func (c *RewardConfig) NewPolicy(stakes staking.StakeSource) (staking.RewardPolicy, error) {
	switch c.Policy {
	case PolicyFixed:
		return staking.FixedReward{Amount: c.Amount}, nil
	case PolicyHalving:
		return staking.HalvingReward{Initial: c.Amount, Interval: c.HalvingInterval}, nil
	case PolicyStake:
		if c.PeriodsPerYear == 0 {
			return nil, fmt.Errorf("periods_per_year must be positive for the stake policy")
		}
		return staking.StakeReward{Stakes: stakes, RateBps: c.RateBps, PeriodsPerYear: c.PeriodsPerYear}, nil
	default:
		return nil, fmt.Errorf("reward policy %q has no reward", c.Policy)
	}
}

// LoadGenesisConfig reads and parses the genesis.yml file
func LoadGenesisConfig(path string) (*GenesisConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		logx.Error("CONFIG", "Failed to open genesis file:", err)
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfgFile); err != nil {
		logx.Error("CONFIG", "Failed to decode genesis YAML:", err)
		return nil, err
	}
	for _, alloc := range cfgFile.Config.Alloc {
		if err := alloc.Address.Validate(); err != nil {
			return nil, fmt.Errorf("genesis alloc: %w", err)
		}
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded genesis | path=%s | alloc=%d | validators=%d", path, len(cfgFile.Config.Alloc), len(cfgFile.Config.Validators)))
	return &cfgFile.Config, nil
}

// LoadEd25519PrivKey loads an Ed25519 private key from a file (expects hex encoding)
func LoadEd25519PrivKey(path string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidKey, len(key))
	}
	return ed25519.PrivateKey(key), nil
}

// SaveEd25519PrivKey writes key hex encoded, readable by the owner only
func SaveEd25519PrivKey(path string, key ed25519.PrivateKey) error {
	return os.WriteFile(path, []byte(hex.EncodeToString(key)), 0600)
}
