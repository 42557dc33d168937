package staking

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web4asset/w4t/store"
)

func newTestAPI(t *testing.T) (*StakingAPI, *store.Stores) {
	t.Helper()
	stores, err := store.CreateStores(&store.StoreConfig{Type: store.MemoryStoreType})
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	st, err := NewStakeTable(
		Validator{Address: "v1", Stake: 100},
		Validator{Address: "v2", Stake: 300},
	)
	require.NoError(t, err)
	return NewStakingAPI(st, HalvingReward{Initial: 64, Interval: 10}, stores.Meta), stores
}

func TestStakingAPI_GetValidators(t *testing.T) {
	api, _ := newTestAPI(t)

	req := httptest.NewRequest("GET", "/validators", nil)
	w := httptest.NewRecorder()
	api.GetRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var response struct {
		Validators []Validator `json:"validators"`
		TotalStake string      `json:"total_stake"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Validators, 2)
	assert.Equal(t, "400", response.TotalStake)
}

func TestStakingAPI_GetValidator(t *testing.T) {
	api, _ := newTestAPI(t)

	w := httptest.NewRecorder()
	api.GetRouter().ServeHTTP(w, httptest.NewRequest("GET", "/validators/v2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var v Validator
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, uint64(300), v.Stake)

	w = httptest.NewRecorder()
	api.GetRouter().ServeHTTP(w, httptest.NewRequest("GET", "/validators/nobody", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStakingAPI_GetRewardUnderPrefix(t *testing.T) {
	api, stores := newTestAPI(t)
	require.NoError(t, stores.Meta.SetLastRewardSlot(19))

	r := mux.NewRouter()
	api.RegisterRoutes(r, "/staking")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/staking/reward", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]uint64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, uint64(19), response["last_reward_slot"])
	assert.Equal(t, uint64(16), response["next_reward"])
}
