// Package runner wires configuration, price input, locking and the engine
// into a single "run strategy X now" call shared by the CLI and the scheduler.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/swing/internal/contracts"
	"github.com/wonny/swing/internal/engine"
	"github.com/wonny/swing/internal/metrics"
	"github.com/wonny/swing/internal/pricedata"
	"github.com/wonny/swing/internal/strategyconfig"
	"github.com/wonny/swing/pkg/config"
	"github.com/wonny/swing/pkg/logger"
	"github.com/wonny/swing/pkg/redis"
)

// Options override per-strategy settings for one run (CLI flags)
type Options struct {
	PricesPath  string // CSV file instead of the configured source
	IncludeFile string
	LedgerPath  string
	OutputDir   string
	Strict      *bool
}

// Runner executes configured strategies
// ⭐ SSOT: 같은 ledger에 대한 실행은 여기서 직렬화
type Runner struct {
	cfg        *config.Config
	strategies *strategyconfig.Config
	configHash string

	source  pricedata.Source
	metrics *metrics.Recorder
	locker  *redis.Locker
	cache   *redis.Cache
	logger  *logger.Logger

	mu          sync.Mutex
	ledgerLocks map[string]*sync.Mutex
}

// Deps are the collaborators of a Runner. Nil Metrics, Locker and Cache are allowed.
type Deps struct {
	Source  pricedata.Source
	Metrics *metrics.Recorder
	Locker  *redis.Locker
	Cache   *redis.Cache
	Logger  *logger.Logger
}

// New creates a Runner
func New(cfg *config.Config, strategies *strategyconfig.Config, deps Deps) (*Runner, error) {
	hash, err := strategyconfig.Hash(strategies)
	if err != nil {
		return nil, fmt.Errorf("hash strategy config: %w", err)
	}

	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Runner{
		cfg:         cfg,
		strategies:  strategies,
		configHash:  hash,
		source:      deps.Source,
		metrics:     deps.Metrics,
		locker:      deps.Locker,
		cache:       deps.Cache,
		logger:      log,
		ledgerLocks: make(map[string]*sync.Mutex),
	}, nil
}

// ConfigHash returns the sha256 of the loaded strategy config
func (r *Runner) ConfigHash() string {
	return r.configHash
}

// Strategies returns the loaded strategy config
func (r *Runner) Strategies() *strategyconfig.Config {
	return r.strategies
}

// Paths resolves the ledger path and output directory of a strategy
func (r *Runner) Paths(name string, opts Options) (ledgerPath, outputDir string) {
	sc, _ := r.strategies.Get(name)

	ledgerPath = firstNonEmpty(opts.LedgerPath, sc.LedgerPath, r.cfg.LedgerPath(name))
	outputDir = firstNonEmpty(opts.OutputDir, sc.OutputDir, r.cfg.OutputDir(name))
	return ledgerPath, outputDir
}

// Include resolves the include-set of a strategy (inline tickers ∪ include file)
func (r *Runner) Include(name string, opts Options) ([]string, error) {
	sc, ok := r.strategies.Get(name)
	if !ok {
		return nil, fmt.Errorf("strategy %q is not defined", name)
	}

	lists := [][]string{sc.Tickers}
	if file := firstNonEmpty(opts.IncludeFile, sc.IncludeFile); file != "" {
		tickers, err := pricedata.ReadInclude(file)
		if err != nil {
			return nil, err
		}
		lists = append(lists, tickers)
	}
	return pricedata.MergeTickers(lists...), nil
}

// Run executes one strategy for the latest date in its price table
func (r *Runner) Run(ctx context.Context, name string, opts Options) (*engine.RunResult, error) {
	strat, err := r.strategies.Build(name)
	if err != nil {
		return nil, err
	}

	log := r.logger.WithFields(map[string]interface{}{
		"strategy":    name,
		"config_hash": r.configHash[:12],
	})

	include, err := r.Include(name, opts)
	if err != nil {
		return nil, err
	}

	source := r.source
	if opts.PricesPath != "" {
		source = pricedata.NewCSVSource(opts.PricesPath, log)
	}
	if source == nil {
		return nil, fmt.Errorf("no price source configured")
	}

	table, stats, err := source.Load(ctx, include)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	if stats.Coerced > 0 {
		log.WithField("coerced", stats.Coerced).Warn("Non-numeric price values treated as missing")
	}

	rc, err := contracts.NewRunContext(table, include)
	if err != nil {
		return nil, err
	}

	ledgerPath, outputDir := r.Paths(name, opts)

	unlock, err := r.lock(ctx, ledgerPath)
	if err != nil {
		return nil, err
	}
	defer unlock()

	strict := r.cfg.LedgerStrict
	if opts.Strict != nil {
		strict = *opts.Strict
	}
	eng := engine.New(log, engine.WithMetrics(r.metrics), engine.WithStrictLedger(strict))

	res, err := eng.Run(ctx, rc, ledgerPath, outputDir, strat)
	if err != nil {
		return res, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, redis.LastRunKey(name), Summarize(res, r.configHash), redis.TTLRunSummary); err != nil {
			log.WithError(err).Warn("Failed to cache run summary")
		}
	}
	return res, nil
}

// LastRun returns the cached summary of name's most recent successful run.
// found is false when nothing is cached or Redis is disabled.
func (r *Runner) LastRun(ctx context.Context, name string) (*Summary, bool, error) {
	if r.cache == nil {
		return nil, false, nil
	}
	var s Summary
	found, err := r.cache.Get(ctx, redis.LastRunKey(name), &s)
	if err != nil || !found {
		return nil, false, err
	}
	return &s, true, nil
}

// ForgetLastRun drops the cached summary, e.g. after the ledger was rewritten
func (r *Runner) ForgetLastRun(ctx context.Context, name string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Delete(ctx, redis.LastRunKey(name))
}

// Outcome is the result of one strategy in RunAll
type Outcome struct {
	Strategy string
	Result   *engine.RunResult
	Err      error
}

// RunAll runs strategies concurrently with at most workers in flight.
// Outcomes are returned in the order of names.
func (r *Runner) RunAll(ctx context.Context, names []string, workers int) []Outcome {
	if workers <= 0 {
		workers = 1
	}

	outcomes := make([]Outcome, len(names))
	idxCh := make(chan int, len(names))
	for i := range names {
		idxCh <- i
	}
	close(idxCh)

	var wg sync.WaitGroup
	for w := 0; w < workers && w < len(names); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				res, err := r.Run(ctx, names[i], Options{})
				outcomes[i] = Outcome{Strategy: names[i], Result: res, Err: err}
			}
		}()
	}
	wg.Wait()

	return outcomes
}

// lock takes the process-local mutex and, with Redis enabled, the shared lock
func (r *Runner) lock(ctx context.Context, ledgerPath string) (func(), error) {
	r.mu.Lock()
	m, ok := r.ledgerLocks[ledgerPath]
	if !ok {
		m = &sync.Mutex{}
		r.ledgerLocks[ledgerPath] = m
	}
	r.mu.Unlock()

	m.Lock()
	if r.locker == nil {
		return m.Unlock, nil
	}

	held, err := r.locker.Acquire(ctx, redis.LedgerLockName(ledgerPath), r.cfg.Redis.LockTTL)
	if err != nil {
		m.Unlock()
		return nil, err
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := held.Release(releaseCtx); err != nil {
			r.logger.WithError(err).Warn("Failed to release ledger lock")
		}
		m.Unlock()
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
