// Package main provides a one-shot CLI: scan a single mint and print the
// result as a Markdown report or JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"solana-riskscan/internal/allowlist"
	"solana-riskscan/internal/reporting"
	"solana-riskscan/internal/scan"
	"solana-riskscan/internal/solana"
	"solana-riskscan/internal/sources"
)

func main() {
	loadEnvFile()

	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	aggregatorURL := flag.String("aggregator-url", envOr("AGGREGATOR_URL", "https://api.dexscreener.com"), "Market aggregator base URL")
	simulatorURL := flag.String("simulator-url", os.Getenv("SIMULATOR_URL"), "Sell-simulator base URL (optional)")
	tokenListURL := flag.String("tokenlist-url", os.Getenv("TOKENLIST_URL"), "Verified token list base URL (optional)")
	allowListFile := flag.String("allowlist-file", os.Getenv("ALLOWLIST_FILE"), "YAML file with extra allow-list entries (optional)")
	asJSON := flag.Bool("json", false, "Print the raw scan result as JSON")
	timeout := flag.Duration("timeout", scan.DefaultScanTimeout, "Overall scan deadline")

	flag.Parse()

	logger := log.New(os.Stderr, "[scan] ", log.LstdFlags)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	mint := flag.Arg(0)
	if mint == "" {
		logger.Fatal("usage: scan [flags] <mint>")
	}

	rpc := solana.NewHTTPClient(*rpcEndpoint)
	market := sources.NewDexScreenerClient(*aggregatorURL, nil)

	scanSources := scan.Sources{
		Chain:     sources.NewRPCChainSource(rpc),
		Curve:     sources.NewRPCCurveSource(rpc),
		Holders:   sources.NewRPCHolderSource(rpc),
		Liquidity: sources.NewAggregatorLiquiditySource(market),
		Metadata:  sources.NewMetaplexMetadataSource(rpc, nil),
		Market:    market,
	}
	if *simulatorURL != "" {
		scanSources.SellSim = sources.NewSimulatorClient(*simulatorURL, nil)
	}

	var verified sources.VerifiedLookup
	if *tokenListURL != "" {
		verified = sources.NewTokenListClient(*tokenListURL, nil)
	}
	registry, err := allowlist.New(allowlist.Options{
		Lookup:   verified,
		SeedFile: *allowListFile,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatalf("create allow list: %v", err)
	}

	scanner := scan.New(scan.Options{
		Sources:     scanSources,
		AllowList:   registry,
		ScanTimeout: *timeout,
		Logger:      logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+5*time.Second)
	defer cancel()

	result, err := scanner.Scan(ctx, mint)
	if err != nil {
		logger.Fatalf("scan failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			logger.Fatalf("encode result: %v", err)
		}
		return
	}

	fmt.Print(reporting.RenderMarkdown(result))
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
		return
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

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
