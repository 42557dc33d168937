package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web4asset/w4t/types"
)

func newMemStores(t *testing.T) *Stores {
	t.Helper()
	stores, err := CreateStores(&StoreConfig{Type: MemoryStoreType})
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })
	return stores
}

func TestBalanceStore_EmptyLoad(t *testing.T) {
	stores := newMemStores(t)

	balances, supply, err := stores.Balances.Load()
	require.NoError(t, err)
	assert.Empty(t, balances)
	assert.Zero(t, supply)
}

func TestBalanceStore_CommitThenLoad(t *testing.T) {
	stores := newMemStores(t)

	require.NoError(t, stores.Balances.Commit("alice", 100, 100))
	require.NoError(t, stores.Balances.Commit("bob", 50, 150))
	require.NoError(t, stores.Balances.Commit("alice", 120, 170))

	balances, supply, err := stores.Balances.Load()
	require.NoError(t, err)
	assert.Equal(t, map[types.AccountID]uint64{"alice": 120, "bob": 50}, balances)
	assert.Equal(t, uint64(170), supply)
}

func TestBalanceStore_CommitAll(t *testing.T) {
	stores := newMemStores(t)

	require.NoError(t, stores.Balances.CommitAll(map[types.AccountID]uint64{"alice": 30, "bob": 12}, 42))

	balances, supply, err := stores.Balances.Load()
	require.NoError(t, err)
	assert.Equal(t, map[types.AccountID]uint64{"alice": 30, "bob": 12}, balances)
	assert.Equal(t, uint64(42), supply)
}

func TestMetaStore_Nonce(t *testing.T) {
	stores := newMemStores(t)

	n, err := stores.Meta.GetNonce("alice")
	require.NoError(t, err)
	assert.Zero(t, n, "unknown caller starts at nonce 0")

	require.NoError(t, stores.Meta.SetNonce("alice", 3))
	n, err = stores.Meta.GetNonce("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestMetaStore_LastRewardSlot(t *testing.T) {
	stores := newMemStores(t)

	_, ok, err := stores.Meta.GetLastRewardSlot()
	require.NoError(t, err)
	assert.False(t, ok)

	// slot 0 must still be reported as present
	require.NoError(t, stores.Meta.SetLastRewardSlot(0))
	slot, ok, err := stores.Meta.GetLastRewardSlot()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, slot)

	require.NoError(t, stores.Meta.SetLastRewardSlot(42))
	slot, ok, err = stores.Meta.GetLastRewardSlot()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), slot)
}

func TestStoreConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  StoreConfig
		wantErr bool
	}{
		{name: "memory", config: StoreConfig{Type: MemoryStoreType}},
		{name: "leveldb", config: StoreConfig{Type: LevelDBStoreType, Directory: "data"}},
		{name: "leveldb without directory", config: StoreConfig{Type: LevelDBStoreType}, wantErr: true},
		{name: "bolt without directory", config: StoreConfig{Type: BoltStoreType}, wantErr: true},
		{name: "redis without address", config: StoreConfig{Type: RedisStoreType}, wantErr: true},
		{name: "empty type", config: StoreConfig{}, wantErr: true},
		{name: "unknown type", config: StoreConfig{Type: "rocksdb", Directory: "data"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateStores_Bolt(t *testing.T) {
	dir := t.TempDir()
	stores, err := CreateStores(&StoreConfig{Type: BoltStoreType, Directory: dir})
	require.NoError(t, err)
	require.NoError(t, stores.Balances.Commit("alice", 7, 7))
	require.NoError(t, stores.Close())

	stores, err = CreateStores(&StoreConfig{Type: BoltStoreType, Directory: dir})
	require.NoError(t, err)
	defer stores.Close()
	balances, supply, err := stores.Balances.Load()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), balances["alice"])
	assert.Equal(t, uint64(7), supply)
}
