package db

import (
	"errors"
	"path/filepath"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providers(t *testing.T) map[string]IterableProvider {
	t.Helper()

	mem, err := NewMemLevelDBProvider()
	require.NoError(t, err)

	bolt, err := NewBoltProvider(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)

	s := miniredis.RunT(t)
	rp, err := newRedisProviderWithClient(redis.NewClient(&redis.Options{Addr: s.Addr()}))
	require.NoError(t, err)

	all := map[string]IterableProvider{
		"leveldb": mem,
		"bolt":    bolt,
		"redis":   rp,
	}
	t.Cleanup(func() {
		for _, p := range all {
			p.Close()
		}
	})
	return all
}

func TestProvider_GetPutDelete(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			v, err := p.Get([]byte("missing"))
			require.NoError(t, err)
			assert.Nil(t, v, "missing key reads as nil")

			require.NoError(t, p.Put([]byte("k1"), []byte("v1")))
			v, err = p.Get([]byte("k1"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v1"), v)

			ok, err := p.Has([]byte("k1"))
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, p.Delete([]byte("k1")))
			ok, err = p.Has([]byte("k1"))
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestProvider_BatchIsAtomicUnit(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			batch := p.Batch()
			batch.Put([]byte("balance:a"), []byte("1"))
			batch.Put([]byte("balance:b"), []byte("2"))

			// nothing visible before Write
			v, err := p.Get([]byte("balance:a"))
			require.NoError(t, err)
			assert.Nil(t, v)

			require.NoError(t, batch.Write())
			batch.Close()

			got, err := p.GetBatch([][]byte{[]byte("balance:a"), []byte("balance:b"), []byte("balance:c")})
			require.NoError(t, err)
			assert.Equal(t, map[string][]byte{
				"balance:a": []byte("1"),
				"balance:b": []byte("2"),
			}, got)
		})
	}
}

func TestProvider_IteratePrefix(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, p.Put([]byte("balance:a"), []byte("1")))
			require.NoError(t, p.Put([]byte("balance:b"), []byte("2")))
			require.NoError(t, p.Put([]byte("meta:total_supply"), []byte("3")))

			var keys []string
			err := p.IteratePrefix([]byte("balance:"), func(key, value []byte) bool {
				keys = append(keys, string(key))
				return true
			})
			require.NoError(t, err)
			sort.Strings(keys)
			assert.Equal(t, []string{"balance:a", "balance:b"}, keys)
		})
	}
}

func TestDBTxManager_WithBatch(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			tm := NewDBTxManager(p)

			err := tm.WithBatch(func(batch DatabaseBatch) error {
				batch.Put([]byte("x"), []byte("1"))
				return errors.New("abort")
			})
			require.Error(t, err)
			ok, err := p.Has([]byte("x"))
			require.NoError(t, err)
			assert.False(t, ok, "failed batch must not be committed")

			err = tm.WithBatch(func(batch DatabaseBatch) error {
				batch.Put([]byte("x"), []byte("1"))
				batch.Put([]byte("y"), []byte("2"))
				return nil
			})
			require.NoError(t, err)
			ok, err = p.Has([]byte("y"))
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestBoltProvider_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	p, err := NewBoltProvider(path)
	require.NoError(t, err)
	require.NoError(t, p.Put([]byte("k"), []byte("v")))
	require.NoError(t, p.Close())

	p, err = NewBoltProvider(path)
	require.NoError(t, err)
	defer p.Close()
	v, err := p.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}
