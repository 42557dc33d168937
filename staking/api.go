package staking

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/web4asset/w4t/jsonx"
	"github.com/web4asset/w4t/logx"
)

// StakingAPI exposes validator stakes and the reward state over HTTP
type StakingAPI struct {
	stakes     *StakeTable
	policy     RewardPolicy
	checkpoint Checkpoint
	router     *mux.Router
}

// NewStakingAPI creates a new staking API
func NewStakingAPI(stakes *StakeTable, policy RewardPolicy, checkpoint Checkpoint) *StakingAPI {
	api := &StakingAPI{
		stakes:     stakes,
		policy:     policy,
		checkpoint: checkpoint,
		router:     mux.NewRouter(),
	}
	api.setupRoutes()
	return api
}

func (api *StakingAPI) setupRoutes() {
	api.addRoutes(api.router)
}

// RegisterRoutes mounts the API under prefix on r
func (api *StakingAPI) RegisterRoutes(r *mux.Router, prefix string) {
	api.addRoutes(r.PathPrefix(prefix).Subrouter())
}

func (api *StakingAPI) addRoutes(r *mux.Router) {
	r.HandleFunc("/validators", api.getValidators).Methods("GET")
	r.HandleFunc("/validators/{address}", api.getValidator).Methods("GET")
	r.HandleFunc("/reward", api.getReward).Methods("GET")
}

// GetRouter returns the configured router
func (api *StakingAPI) GetRouter() *mux.Router {
	return api.router
}

func (api *StakingAPI) getValidators(w http.ResponseWriter, r *http.Request) {
	api.writeJSON(w, map[string]interface{}{
		"validators":  api.stakes.Validators(),
		"total_stake": api.stakes.TotalStake().Dec(),
	})
}

func (api *StakingAPI) getValidator(w http.ResponseWriter, r *http.Request) {
	for _, v := range api.stakes.Validators() {
		if string(v.Address) == mux.Vars(r)["address"] {
			api.writeJSON(w, v)
			return
		}
	}
	http.Error(w, "Validator not found", http.StatusNotFound)
}

func (api *StakingAPI) getReward(w http.ResponseWriter, r *http.Request) {
	last, ok, err := api.checkpoint.GetLastRewardSlot()
	if err != nil {
		logx.Error("STAKING_API", "Failed to read reward checkpoint:", err)
		http.Error(w, "Failed to read reward checkpoint", http.StatusInternalServerError)
		return
	}
	response := map[string]interface{}{
		"next_reward": api.policy.Reward(0),
	}
	if ok {
		response["last_reward_slot"] = last
		response["next_reward"] = api.policy.Reward(last + 1)
	}
	api.writeJSON(w, response)
}

func (api *StakingAPI) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	body, err := jsonx.Marshal(data)
	if err != nil {
		logx.Error("STAKING_API", "Failed to encode response:", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	if _, err := w.Write(body); err != nil {
		logx.Error("STAKING_API", "Failed to write response:", err)
	}
}
