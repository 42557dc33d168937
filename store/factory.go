package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/web4asset/w4t/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	// LevelDBStoreType uses the LevelDB implementation
	LevelDBStoreType StoreType = "leveldb"

	// BoltStoreType keeps the whole ledger in one bbolt file
	BoltStoreType StoreType = "bolt"

	// RedisStoreType uses the Redis implementation
	RedisStoreType StoreType = "redis"

	// MemoryStoreType uses LevelDB on in-memory storage, nothing survives a restart
	MemoryStoreType StoreType = "memory"
)

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	// Type specifies which store implementation to use
	Type StoreType `ini:"type" yaml:"type"`

	// Directory is the database directory path (for file-based databases)
	Directory string `ini:"directory" yaml:"directory"`

	// RedisAddr and RedisDB are only used by the redis store
	RedisAddr string `ini:"redis_addr" yaml:"redis_addr"`
	RedisDB   int    `ini:"redis_db" yaml:"redis_db"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	switch sc.Type {
	case "":
		return fmt.Errorf("store type cannot be empty")
	case LevelDBStoreType, BoltStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty for %s store", sc.Type)
		}
	case RedisStoreType:
		if sc.RedisAddr == "" {
			return fmt.Errorf("redis_addr cannot be empty for redis store")
		}
	case MemoryStoreType:
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
	return nil
}

// Stores groups the stores sharing one provider
type Stores struct {
	Provider db.IterableProvider
	Balances BalanceStore
	Meta     MetaStore
}

// Close closes the shared provider once
func (s *Stores) Close() error {
	return s.Provider.Close()
}

// CreateStores opens the provider described by config and builds every store on top of it
func CreateStores(config *StoreConfig) (*Stores, error) {
	provider, err := CreateProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	return NewStores(provider)
}

// NewStores builds the stores over an already opened provider
func NewStores(provider db.IterableProvider) (*Stores, error) {
	balances, err := NewGenericBalanceStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create balance store: %w", err)
	}

	return &Stores{
		Provider: provider,
		Balances: balances,
		Meta:     NewGenericMetaStore(provider),
	}, nil
}

// CreateProvider creates a database provider based on the configuration
func CreateProvider(config *StoreConfig) (db.IterableProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		provider db.IterableProvider
		err      error
	)
	switch config.Type {
	case LevelDBStoreType:
		provider, err = db.NewLevelDBProvider(config.Directory)

	case BoltStoreType:
		if err := os.MkdirAll(config.Directory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		provider, err = db.NewBoltProvider(filepath.Join(config.Directory, "ledger.db"))

	case RedisStoreType:
		provider, err = db.NewRedisProvider(config.RedisAddr, config.RedisDB)

	case MemoryStoreType:
		provider, err = db.NewMemLevelDBProvider()

	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}
	return provider, nil
}
