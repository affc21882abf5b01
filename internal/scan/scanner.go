// Package scan orchestrates a token risk scan: it fans out to the data
// sources, isolates their failures, and folds the results into a scored,
// graded ScanResult.
package scan

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"solana-riskscan/internal/allowlist"
	"solana-riskscan/internal/curve"
	"solana-riskscan/internal/domain"
	"solana-riskscan/internal/mode"
	"solana-riskscan/internal/observability"
	"solana-riskscan/internal/scoring"
	"solana-riskscan/internal/solana"
	"solana-riskscan/internal/sources"
	"solana-riskscan/internal/storage"
)

// Default orchestration timeouts. The scan deadline caps the whole fan-out;
// the check timeout caps each individual source so one slow source cannot
// eat the entire budget.
const (
	DefaultScanTimeout  = 25 * time.Second
	DefaultCheckTimeout = 8 * time.Second

	archiveTimeout = 5 * time.Second
)

// Sources bundles the data-source adapters a scan fans out to.
type Sources struct {
	Chain     sources.ChainContextSource
	Curve     sources.CurveStateSource
	Holders   sources.HolderSource
	Liquidity sources.LiquiditySource
	Metadata  sources.MetadataSource
	Market    sources.MarketSource
	SellSim   sources.SellSimSource
}

// Options configures a Scanner.
type Options struct {
	Sources   Sources
	AllowList *allowlist.Registry

	// CheckTimeout bounds each individual source call.
	CheckTimeout time.Duration
	// ScanTimeout bounds the whole scan.
	ScanTimeout time.Duration
	// DedupTTL is how long a settled result answers duplicate requests.
	DedupTTL time.Duration

	// Archive and Timeseries receive completed scans when set. Writes are
	// best effort: a storage failure is logged, never surfaced to the caller.
	Archive    storage.ScanStore
	Timeseries storage.ScoreTimeseriesStore

	Metrics *observability.Metrics
	Logger  *log.Logger
}

// Scanner runs token risk scans.
type Scanner struct {
	src       Sources
	allowList *allowlist.Registry
	detector  *mode.Detector
	calc      *scoring.Calculator
	dedup     *Deduper

	checkTimeout time.Duration
	scanTimeout  time.Duration

	archive    storage.ScanStore
	timeseries storage.ScoreTimeseriesStore
	metrics    *observability.Metrics
	logger     *log.Logger
}

// New creates a Scanner.
func New(opts Options) *Scanner {
	checkTimeout := opts.CheckTimeout
	if checkTimeout <= 0 {
		checkTimeout = DefaultCheckTimeout
	}
	scanTimeout := opts.ScanTimeout
	if scanTimeout <= 0 {
		scanTimeout = DefaultScanTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[scan] ", log.LstdFlags)
	}

	return &Scanner{
		src:          opts.Sources,
		allowList:    opts.AllowList,
		detector:     mode.NewDetector(),
		calc:         scoring.NewCalculator(),
		dedup:        NewDeduper(opts.DedupTTL),
		checkTimeout: checkTimeout,
		scanTimeout:  scanTimeout,
		archive:      opts.Archive,
		timeseries:   opts.Timeseries,
		metrics:      opts.Metrics,
		logger:       logger,
	}
}

// Scan runs a full risk scan of a mint. Concurrent requests for the same
// mint, and requests arriving shortly after a scan settled, share one
// result.
func (s *Scanner) Scan(ctx context.Context, mint string) (*domain.ScanResult, error) {
	if err := solana.ValidateAddress(mint); err != nil {
		return nil, fmt.Errorf("invalid mint address: %w", err)
	}

	result, err, joined := s.dedup.Do(ctx, mint, func() (*domain.ScanResult, error) {
		// The scan outlives any single caller: followers joining via the
		// deduper still want the result after the first caller gives up.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.scanTimeout)
		defer cancel()
		return s.runScan(sctx, mint)
	})

	if s.metrics != nil {
		if joined {
			s.metrics.DedupHits.Inc()
		}
		s.metrics.DedupEntries.Set(float64(s.dedup.Len()))
	}
	return result, err
}

// Invalidate drops the cached result for a mint so the next request
// re-scans. Used when an external event (e.g. curve graduation) makes the
// cached result stale.
func (s *Scanner) Invalidate(mint string) {
	s.dedup.Invalidate(mint)
}

func (s *Scanner) runScan(ctx context.Context, mint string) (*domain.ScanResult, error) {
	started := time.Now()

	var entry *domain.AllowListEntry
	if s.allowList != nil {
		entry = s.allowList.Lookup(ctx, mint)
	}

	var bag domain.CheckBag

	// Phase 1: the checks mode detection depends on.
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		bag.Curve = runCheck(ctx, s.checkTimeout, func(c context.Context) (*domain.CurveState, error) {
			return s.src.Curve.Fetch(c, mint)
		})
	}()
	go func() {
		defer wg.Done()
		bag.Chain = runCheck(ctx, s.checkTimeout, func(c context.Context) (*domain.ChainContext, error) {
			return s.src.Chain.Fetch(c, mint)
		})
	}()
	go func() {
		defer wg.Done()
		bag.Market = runCheck(ctx, s.checkTimeout, func(c context.Context) (*domain.MarketData, error) {
			return s.src.Market.Fetch(c, mint)
		})
	}()
	wg.Wait()

	scanMode, marketData := s.detector.Detect(mint, entry != nil, bag.Curve, bag.Chain, bag.Market)

	// Phase 2: everything else, with phase-1 data threaded in.
	var totalSupply uint64
	if bag.Chain.Succeeded() {
		totalSupply = bag.Chain.Data.Supply
	}
	exclude := holderExclusions(mint, marketData)

	wg.Add(3)
	go func() {
		defer wg.Done()
		bag.Holders = runCheck(ctx, s.checkTimeout, func(c context.Context) (*domain.HolderDistribution, error) {
			return s.src.Holders.Fetch(c, mint, totalSupply, exclude)
		})
	}()
	go func() {
		defer wg.Done()
		bag.Liquidity = runCheck(ctx, s.checkTimeout, func(c context.Context) (*domain.LiquidityInfo, error) {
			return s.src.Liquidity.Fetch(c, mint, marketData)
		})
	}()
	go func() {
		defer wg.Done()
		bag.Metadata = runCheck(ctx, s.checkTimeout, func(c context.Context) (*domain.TokenMetadata, error) {
			return s.src.Metadata.Fetch(c, mint)
		})
	}()

	// The sell route does not exist before graduation; simulating it in
	// curve mode would report a false honeypot.
	if scanMode == domain.ModeOpenMarket && s.src.SellSim != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bag.SellSim = runCheck(ctx, s.checkTimeout, func(c context.Context) (*domain.SellSimResult, error) {
				return s.src.SellSim.Simulate(c, mint)
			})
		}()
	} else {
		bag.SellSim = domain.Unknown[domain.SellSimResult]()
	}
	wg.Wait()

	// Synthetic checks derived from already-fetched data.
	bag.Age = ageFromMarket(bag.Market, time.Now())
	bag.Insider = computeInsider(bag.Metadata, bag.Curve, bag.Holders)

	s.observeChecks(bag)

	var progress *domain.CurveProgress
	if scanMode == domain.ModeCurve {
		progress = s.curveProgress(ctx, bag.Curve, marketData)
	}

	score, penalties := s.calc.Calculate(bag, scanMode, entry)
	total := 0
	critical := false
	for _, p := range penalties {
		total += p.Points
		if p.Critical {
			critical = true
		}
	}
	grade, label := scoring.ResolveGrade(score, critical, total)

	result := &domain.ScanResult{
		Mint:          mint,
		Mode:          scanMode,
		Score:         score,
		Grade:         grade,
		Label:         label,
		Penalties:     penalties,
		TotalDeducted: total,
		Checks:        bag,
		Insider:       bag.Insider.Data,
		CurveProgress: progress,
		AllowListed:   entry != nil,
		ScannedAt:     time.Now().UTC(),
	}

	if s.metrics != nil {
		s.metrics.ScansTotal.WithLabelValues(string(scanMode), string(grade)).Inc()
		s.metrics.ScanDuration.Observe(time.Since(started).Seconds())
	}
	s.logger.Printf("scanned %s: mode=%s score=%d grade=%s penalties=%d in %s",
		mint, scanMode, score, grade, len(penalties), time.Since(started).Round(time.Millisecond))

	s.archiveResult(result)
	return result, nil
}

// curveProgress resolves bonding-curve progress: the directly-read account
// when available, the market-cap estimate otherwise.
func (s *Scanner) curveProgress(ctx context.Context, curveCheck domain.CheckResult[domain.CurveState], market *domain.MarketData) *domain.CurveProgress {
	if curveCheck.Succeeded() {
		return curve.FromState(curveCheck.Data)
	}
	if market == nil || market.MarketCapUSD <= 0 {
		return nil
	}

	// The estimate converts market cap to native units via the wrapped-SOL
	// price from the same aggregator.
	solPrice := runCheck(ctx, s.checkTimeout, func(c context.Context) (*domain.MarketData, error) {
		return s.src.Market.Fetch(c, solana.WrappedSOLMint)
	})
	if !solPrice.Succeeded() || solPrice.Data.PriceUSD <= 0 {
		return nil
	}
	return curve.Estimate(market.MarketCapUSD, solPrice.Data.PriceUSD)
}

// holderExclusions lists accounts that hold supply structurally rather than
// as investors: the bonding-curve vault and open-market pool accounts.
func holderExclusions(mint string, market *domain.MarketData) []string {
	var exclude []string
	if pda, err := solana.BondingCurvePDA(mint); err == nil {
		exclude = append(exclude, pda)
	}
	if market != nil {
		for _, pair := range market.Pairs {
			if pair.PairAddress != "" {
				exclude = append(exclude, pair.PairAddress)
			}
		}
	}
	return exclude
}

// archiveResult persists the scan best effort. Storage trouble is an
// operational concern, not a scan failure.
func (s *Scanner) archiveResult(result *domain.ScanResult) {
	if s.archive == nil && s.timeseries == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	if s.archive != nil {
		err := s.archive.Insert(ctx, &storage.ArchivedScan{
			Mint:          result.Mint,
			Mode:          result.Mode,
			Score:         result.Score,
			Grade:         result.Grade,
			Label:         result.Label,
			TotalDeducted: result.TotalDeducted,
			Critical:      result.HasCritical(),
			Result:        result,
			ScannedAt:     result.ScannedAt,
		})
		if err != nil {
			s.logger.Printf("archive scan for %s: %v", result.Mint, err)
			if s.metrics != nil {
				s.metrics.ArchiveErrors.Inc()
			}
		}
	}

	if s.timeseries != nil {
		err := s.timeseries.InsertPoints(ctx, []storage.ScorePoint{{
			Mint:      result.Mint,
			Mode:      result.Mode,
			Score:     result.Score,
			Grade:     result.Grade,
			Critical:  result.HasCritical(),
			ScannedAt: result.ScannedAt,
		}})
		if err != nil {
			s.logger.Printf("record score point for %s: %v", result.Mint, err)
			if s.metrics != nil {
				s.metrics.ArchiveErrors.Inc()
			}
		}
	}
}

// observeChecks feeds per-check outcomes into metrics.
func (s *Scanner) observeChecks(bag domain.CheckBag) {
	if s.metrics == nil {
		return
	}
	observe := func(name string, status domain.CheckStatus) {
		switch status {
		case domain.CheckError:
			s.metrics.CheckErrors.WithLabelValues(name).Inc()
		case domain.CheckUnknown:
			s.metrics.CheckUnknown.WithLabelValues(name).Inc()
		}
	}
	observe("chain", bag.Chain.Status)
	observe("curve", bag.Curve.Status)
	observe("holders", bag.Holders.Status)
	observe("liquidity", bag.Liquidity.Status)
	observe("metadata", bag.Metadata.Status)
	observe("market", bag.Market.Status)
	observe("sellsim", bag.SellSim.Status)
}
