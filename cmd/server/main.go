// Package main runs the risk-scan HTTP service: scan API, graduation
// watcher, Prometheus metrics and optional scan archival.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"solana-riskscan/internal/allowlist"
	"solana-riskscan/internal/domain"
	"solana-riskscan/internal/observability"
	"solana-riskscan/internal/reporting"
	"solana-riskscan/internal/scan"
	"solana-riskscan/internal/solana"
	"solana-riskscan/internal/sources"
	"solana-riskscan/internal/storage"
	chstore "solana-riskscan/internal/storage/clickhouse"
	"solana-riskscan/internal/storage/memory"
	"solana-riskscan/internal/storage/migrations"
	pgstore "solana-riskscan/internal/storage/postgres"
	"solana-riskscan/internal/watch"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (enables graduation watcher)")
	aggregatorURL := flag.String("aggregator-url", envOr("AGGREGATOR_URL", "https://api.dexscreener.com"), "Market aggregator base URL")
	simulatorURL := flag.String("simulator-url", os.Getenv("SIMULATOR_URL"), "Sell-simulator base URL (optional)")
	tokenListURL := flag.String("tokenlist-url", os.Getenv("TOKENLIST_URL"), "Verified token list base URL (optional)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string for scan archive")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string for score timeseries")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for the shared allow-list cache (optional)")
	allowListFile := flag.String("allowlist-file", os.Getenv("ALLOWLIST_FILE"), "YAML file with extra allow-list entries (optional)")
	httpAddr := flag.String("http-addr", envOr("HTTP_ADDR", ":8080"), "HTTP listen address")
	scanTimeout := flag.Duration("scan-timeout", scan.DefaultScanTimeout, "Overall scan deadline")
	checkTimeout := flag.Duration("check-timeout", scan.DefaultCheckTimeout, "Per-check deadline")
	dedupTTL := flag.Duration("dedup-ttl", scan.DefaultDedupTTL, "How long a settled scan answers duplicate requests")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics("")

	// Stores
	scanStore, scoreStore, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Upstream clients: each external service gets its own rate limit and
	// circuit breaker so one failing upstream cannot trip the others.
	onStateChange := func(name string, from, to gobreaker.State) {
		logger.Printf("breaker %s: %s -> %s", name, from, to)
		if to == gobreaker.StateOpen {
			metrics.BreakerOpen.WithLabelValues(name).Inc()
		}
	}
	aggregatorClient := sources.NewGuardedClient(sources.GuardedClientConfig{
		Name: "aggregator", RPS: 5, OnStateChange: onStateChange,
	})
	metadataClient := sources.NewGuardedClient(sources.GuardedClientConfig{
		Name: "metadata-json", RPS: 10, OnStateChange: onStateChange,
	})

	rpc := solana.NewHTTPClient(*rpcEndpoint)
	market := sources.NewDexScreenerClient(*aggregatorURL, aggregatorClient)

	scanSources := scan.Sources{
		Chain:     sources.NewRPCChainSource(rpc),
		Curve:     sources.NewRPCCurveSource(rpc),
		Holders:   sources.NewRPCHolderSource(rpc),
		Liquidity: sources.NewAggregatorLiquiditySource(market),
		Metadata:  sources.NewMetaplexMetadataSource(rpc, metadataClient),
		Market:    market,
	}
	if *simulatorURL != "" {
		simulatorClient := sources.NewGuardedClient(sources.GuardedClientConfig{
			Name: "simulator", RPS: 5, OnStateChange: onStateChange,
		})
		scanSources.SellSim = sources.NewSimulatorClient(*simulatorURL, simulatorClient)
	} else {
		logger.Println("No --simulator-url: sell simulation disabled")
	}

	// Allow list
	var allowCache allowlist.Cache
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatalf("ping redis: %v", err)
		}
		defer rdb.Close()
		allowCache = allowlist.NewRedisCache(rdb, "")
		logger.Printf("Allow-list cache: redis at %s", *redisAddr)
	}
	var verified sources.VerifiedLookup
	if *tokenListURL != "" {
		tokenListClient := sources.NewGuardedClient(sources.GuardedClientConfig{
			Name: "tokenlist", RPS: 5, OnStateChange: onStateChange,
		})
		verified = sources.NewTokenListClient(*tokenListURL, tokenListClient)
	}
	registry, err := allowlist.New(allowlist.Options{
		Lookup:   verified,
		Cache:    allowCache,
		SeedFile: *allowListFile,
	})
	if err != nil {
		logger.Fatalf("create allow list: %v", err)
	}

	scanner := scan.New(scan.Options{
		Sources:      scanSources,
		AllowList:    registry,
		CheckTimeout: *checkTimeout,
		ScanTimeout:  *scanTimeout,
		DedupTTL:     *dedupTTL,
		Archive:      scanStore,
		Timeseries:   scoreStore,
		Metrics:      metrics,
	})

	// Graduation watcher: re-scan curve tokens the moment they graduate.
	var watcher *watch.Watcher
	if *wsEndpoint != "" {
		ws, err := solana.NewWSClient(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Fatalf("create websocket client: %v", err)
		}
		defer ws.Close()

		watcher = watch.New(ws, func(mint string) {
			scanner.Invalidate(mint)
		}, nil)
		defer watcher.Close()
		logger.Println("Graduation watcher enabled")
	} else {
		logger.Println("No --ws-endpoint: graduation watcher disabled")
	}

	server := &Server{
		scanner:   scanner,
		watcher:   watcher,
		archive:   scanStore,
		logger:    logger,
		startedAt: time.Now(),
		ctx:       ctx,
	}

	httpServer := &http.Server{
		Addr:              *httpAddr,
		Handler:           server.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Listening on %s", *httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, shutting down...", sig)
	case err := <-errCh:
		logger.Printf("HTTP server error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Shutdown error: %v", err)
	}
	cancel()
	logger.Println("Shutdown complete")
}

// createStores creates the archive stores, running migrations first.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (storage.ScanStore, storage.ScoreTimeseriesStore, func(), error) {
	if useMemory {
		return memory.NewScanStore(), memory.NewScoreTimeseriesStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return pgstore.NewScanStore(pool), chstore.NewScoreTimeseriesStore(chConn), cleanup, nil
}

// Server holds the HTTP handler dependencies.
type Server struct {
	scanner   *scan.Scanner
	watcher   *watch.Watcher
	archive   storage.ScanStore
	logger    *log.Logger
	startedAt time.Time
	ctx       context.Context
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", observability.Handler())
	mux.HandleFunc("GET /api/v1/scan/{mint}", s.handleScan)
	mux.HandleFunc("GET /api/v1/scan/{mint}/report", s.handleReport)
	mux.HandleFunc("GET /api/v1/history/{mint}", s.handleHistory)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	result, ok := s.scanToken(w, r)
	if !ok {
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	result, ok := s.scanToken(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(reporting.RenderMarkdown(result)))
}

// scanToken runs the scan for the mint in the path and arranges graduation
// watching for curve-mode results.
func (s *Server) scanToken(w http.ResponseWriter, r *http.Request) (*domain.ScanResult, bool) {
	mint := r.PathValue("mint")

	result, err := s.scanner.Scan(r.Context(), mint)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(r.Context().Err(), context.Canceled) {
			return nil, false
		}
		s.logger.Printf("scan %s: %v", mint, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	if s.watcher != nil && result.Mode == domain.ModeCurve &&
		(result.CurveProgress == nil || !result.CurveProgress.Complete) {
		if err := s.watcher.Watch(s.ctx, mint); err != nil {
			s.logger.Printf("watch %s: %v", mint, err)
		}
	}
	return result, true
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	mint := r.PathValue("mint")
	if s.archive == nil {
		writeError(w, http.StatusNotFound, "scan archive not configured")
		return
	}

	scans, err := s.archive.GetByMint(r.Context(), mint, 50)
	if err != nil {
		s.logger.Printf("history %s: %v", mint, err)
		writeError(w, http.StatusInternalServerError, "failed to load scan history")
		return
	}
	writeJSON(w, scans)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
