package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/web4asset/w4t/config"
	"github.com/web4asset/w4t/dispatch"
	"github.com/web4asset/w4t/events"
	"github.com/web4asset/w4t/exception"
	"github.com/web4asset/w4t/interfaces"
	"github.com/web4asset/w4t/jsonrpc"
	"github.com/web4asset/w4t/jsonx"
	"github.com/web4asset/w4t/logx"
	"github.com/web4asset/w4t/mint"
	"github.com/web4asset/w4t/monitoring"
	"github.com/web4asset/w4t/ratelimit"
	"github.com/web4asset/w4t/service"
	"github.com/web4asset/w4t/staking"
	"github.com/web4asset/w4t/types"
)

const nodeVersion = "0.1.0"

var (
	serveGenesisPath string
	serveListenAddr  string
	serveNodeName    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ledger node with its JSON-RPC endpoint and reward feed",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runNode(); err != nil {
			logx.Error("NODE", "Node stopped with error:", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveGenesisPath, "genesis", "config/genesis.yml", "Path to genesis configuration file")
	serveCmd.Flags().StringVar(&serveListenAddr, "listen-addr", "", "Override [rpc] listen_addr")
	serveCmd.Flags().StringVar(&serveNodeName, "node-name", "w4t-node", "Name reported by health checks")
}

func runNode() error {
	cfg, err := loadNodeConfig(configPath)
	if err != nil {
		return err
	}
	if serveListenAddr != "" {
		cfg.RPC.ListenAddr = serveListenAddr
	}

	monitoring.InitMetrics()

	ld, stores, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer stores.Close()
	monitoring.SetLedgerState(ld.GetTotalSupply(), ld.AccountCount())

	authority, err := cfg.Mint.NewAuthority()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewEventBus()
	dispatcher := dispatch.NewDispatcher(mint.NewTransition(ld, authority), ld, stores.Meta, bus, dispatch.DefaultQueueSize)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	var validators []staking.Validator
	if _, err := os.Stat(serveGenesisPath); err == nil {
		genesis, err := config.LoadGenesisConfig(serveGenesisPath)
		if err != nil {
			return err
		}
		validators = genesis.Validators
	}
	stakes, err := staking.NewStakeTable(validators...)
	if err != nil {
		return err
	}

	router := mux.NewRouter()
	if cfg.Reward.Enabled() {
		if err := startRewardFeed(ctx, cfg, authority, dispatcher, stores.Meta, stakes, bus, router); err != nil {
			return err
		}
	} else {
		logx.Info("NODE", "Reward feed disabled")
	}

	healthSvc := service.NewHealthService(ld, serveNodeName, nodeVersion)
	rpcServer := jsonrpc.NewServer(
		service.NewAccountService(ld, dispatcher),
		service.NewLedgerService(ld),
		service.NewMintService(dispatcher),
		healthSvc,
	)
	if corsCfg, ok := jsonrpc.CORSFromEnv(); ok {
		rpcServer.SetCORSConfig(corsCfg)
	}
	limiter := ratelimit.NewMintRateLimiter(nil)
	defer limiter.Stop()
	rpcServer.SetRateLimiter(limiter)
	defer rpcServer.Close()

	mountNodeRoutes(router, bus, healthSvc, rpcServer.Handler())

	srv := &http.Server{
		Addr:              cfg.RPC.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// event streams end when the node shuts down
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	exception.SafeGo("RPCServer", func() {
		logx.Info("NODE", "JSON-RPC listening on", cfg.RPC.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	})

	select {
	case <-ctx.Done():
		logx.Info("NODE", "Shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("rpc server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Warn("NODE", "RPC server shutdown:", err)
	}
	logx.Info("NODE", fmt.Sprintf("Node stopped | supply=%d | accounts=%d", ld.GetTotalSupply(), ld.AccountCount()))
	return nil
}

// mountNodeRoutes adds metrics, health, the event stream and, last, the JSON-RPC catch-all
func mountNodeRoutes(router *mux.Router, bus *events.EventBus, healthSvc interfaces.HealthService, rpcHandler http.Handler) {
	router.Handle("/metrics", monitoring.Handler())
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status, err := healthSvc.Check(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if err != nil || status.Status != service.StatusServing {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if status != nil {
			jsonx.NewEncoder(w).Encode(status)
		}
	}).Methods("GET")
	router.Handle("/events", events.NewStreamHandler(bus)).Methods("GET")
	router.PathPrefix("/").Handler(rpcHandler)
}

// startRewardFeed wires the slot clock into the reward feed and mounts the staking API
func startRewardFeed(ctx context.Context, cfg *config.NodeConfig, authority mint.Authority, dispatcher *dispatch.Dispatcher,
	checkpoint staking.Checkpoint, stakes *staking.StakeTable, bus *events.EventBus, router *mux.Router) error {
	if cfg.Reward.KeyPath == "" {
		return fmt.Errorf("reward policy %s needs [reward] key_path", cfg.Reward.Policy)
	}
	key, err := config.LoadEd25519PrivKey(cfg.Reward.KeyPath)
	if err != nil {
		return fmt.Errorf("load reward key: %w", err)
	}
	policy, err := cfg.Reward.NewPolicy(stakes)
	if err != nil {
		return err
	}

	feed := staking.NewFeed(policy, dispatcher, checkpoint, key, types.AccountID(cfg.Reward.PoolAccount), bus)
	if allowlist, ok := authority.(*mint.Allowlist); ok {
		allowlist.Add(feed.ID())
	}

	last, _, err := checkpoint.GetLastRewardSlot()
	if err != nil {
		return err
	}
	scheduler := staking.NewStakeWeightedScheduler(stakes, []byte(feed.ID()))
	clock := staking.NewSlotClock(scheduler, time.Duration(cfg.Reward.BlockIntervalMs)*time.Millisecond, last+1)
	exception.SafeGo("RewardFeed", func() {
		feed.Run(ctx, clock.Run(ctx))
	})

	staking.NewStakingAPI(stakes, policy, checkpoint).RegisterRoutes(router, "/staking")
	logx.Info("NODE", fmt.Sprintf("Reward feed started | policy=%s | feed=%s | pool=%s | next_slot=%d",
		cfg.Reward.Policy, feed.ID(), cfg.Reward.PoolAccount, last+1))
	return nil
}
