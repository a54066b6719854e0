// Package main runs the sniper: launch feed → safety gate + scoring →
// tiered decision → signed broadcast race.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"solana-sniper/internal/broadcast"
	"solana-sniper/internal/cache"
	"solana-sniper/internal/config"
	"solana-sniper/internal/custody"
	"solana-sniper/internal/decision"
	"solana-sniper/internal/domain"
	"solana-sniper/internal/gate"
	"solana-sniper/internal/ingestion"
	"solana-sniper/internal/observability"
	"solana-sniper/internal/pipeline"
	"solana-sniper/internal/rpcx"
	"solana-sniper/internal/scoring"
	"solana-sniper/internal/storage"
	"solana-sniper/internal/storage/clickhouse"
	"solana-sniper/internal/storage/memory"
	"solana-sniper/internal/storage/migrations"
	"solana-sniper/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "sniper.yaml", "Path to YAML config file")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Verbose = true
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, shutting down...\n", sig)
		cancel()
	}()

	if err := run(ctx, cfg); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	master, err := custody.LoadMasterKey()
	if err != nil {
		return fmt.Errorf("load master key: %w", err)
	}

	// Backing stores: Postgres when configured, in-memory otherwise.
	var (
		walletStore storage.WalletStore
		ledgerStore storage.IntentLedgerStore
	)
	if cfg.Storage.PostgresDSN != "" {
		pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run postgres migrations: %w", err)
		}
		walletStore = postgres.NewWalletStore(pool)
		ledgerStore = postgres.NewIntentLedgerStore(pool)
	} else {
		log.Printf("[sniper] no postgres DSN configured, using in-memory stores")
		walletStore = memory.NewWalletStore()
		ledgerStore = memory.NewIntentLedgerStore()
	}

	sinks := []pipeline.Sink{pipeline.LogSink{}}
	if cfg.Storage.ClickHouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickHouseDSN)
		if err != nil {
			return fmt.Errorf("run clickhouse migrations: %w", err)
		}
		defer conn.Close()
		sinks = append(sinks, pipeline.NewStoreSink(clickhouse.NewDecisionLogStore(conn)))
	}

	rules, err := cfg.BuildRules()
	if err != nil {
		return err
	}
	scorer, err := scoring.NewEngine(cfg.Scoring.MinQualifyScore, rules)
	if err != nil {
		return fmt.Errorf("build scoring engine: %w", err)
	}

	safetyGate := gate.New(cfg.GateLimits(), cfg.Gate.CreatorBlacklist)
	speedCache := cache.New(cfg.CacheTTL(), cfg.Decision.CacheShards)
	decider := decision.New(safetyGate, scorer, speedCache, decision.Thresholds{
		FastScore: cfg.Decision.FastScore,
	})

	vault, err := custody.NewVault(master, walletStore)
	if err != nil {
		return fmt.Errorf("create vault: %w", err)
	}

	endpoints := make([]broadcast.Endpoint, 0, len(cfg.Execution.Endpoints))
	for _, ec := range cfg.Execution.Endpoints {
		endpoints = append(endpoints, rpcx.NewHTTPEndpoint(ec.Name, ec.URL))
	}
	executor, err := broadcast.NewExecutor(broadcast.Options{
		Endpoints:       endpoints,
		EndpointTimeout: cfg.EndpointTimeout(),
		GlobalTimeout:   cfg.GlobalTimeout(),
		DurableLedger:   ledgerStore,
		Verbose:         cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("create executor: %w", err)
	}

	metrics := observability.NewMetrics("")

	pipe := pipeline.New(pipeline.Options{
		Decider:       decider,
		Vault:         vault,
		Executor:      executor,
		Builder:       pipeline.BuilderFunc(buildOrderPayload),
		Sinks:         sinks,
		Metrics:       metrics,
		UserID:        cfg.Execution.UserID,
		Action:        domain.ActionBuy,
		BucketWidthMs: cfg.Execution.BucketWidthMs,
		Verbose:       cfg.Verbose,
	})

	var market ingestion.MarketDataSource
	if cfg.Feed.RPCEndpoint != "" {
		market = rpcx.NewMarketClient(cfg.Feed.RPCEndpoint, cfg.Feed.Program)
	} else {
		log.Printf("[sniper] no RPC endpoint configured, candidates pass through unenriched")
	}

	source := ingestion.NewWSSource(cfg.Feed.WSEndpoint, cfg.Feed.Program, nil, metrics)
	manager := ingestion.NewManager(ingestion.ManagerOptions{
		Sources: []ingestion.CandidateSource{source},
		Market:  market,
		Handler: pipe.Handle,
		Metrics: metrics,
		Workers: cfg.Feed.Workers,
		Verbose: cfg.Verbose,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return manager.Run(ctx)
	})
	g.Go(func() error {
		return serveMetrics(ctx, cfg.Metrics.ListenAddr)
	})

	log.Printf("[sniper] running: feed=%s endpoints=%d metrics=%s",
		cfg.Feed.WSEndpoint, len(endpoints), cfg.Metrics.ListenAddr)
	return g.Wait()
}

// buildOrderPayload produces the signable order blob for a candidate. The
// transaction assembler behind it is pluggable; the default emits a compact
// order message the downstream submitter understands.
func buildOrderPayload(_ context.Context, c *domain.Candidate, action domain.TradeAction) ([]byte, error) {
	return json.Marshal(struct {
		Mint   string             `json:"mint"`
		Action domain.TradeAction `json:"action"`
		Slot   int64              `json:"slot"`
	}{Mint: c.Mint, Action: action, Slot: c.Slot})
}

func serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
