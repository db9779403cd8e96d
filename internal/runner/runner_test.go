package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swing/internal/pricedata"
	"github.com/wonny/swing/internal/strategyconfig"
	"github.com/wonny/swing/pkg/config"
	"github.com/wonny/swing/pkg/redis"
)

const strategiesYAML = `
strategies:
  rsi2_us:
    kind: mean_reversion
    trend_period: 60
    tickers: [abc]
  rsi2_all:
    kind: mean_reversion
    trend_period: 60
`

// ABC: 60일 상승 후 급락 (진입 신호), XYZ: 횡보
func writePrices(t *testing.T, dir string) string {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var b strings.Builder
	b.WriteString("Ticker,Date,Open,High,Low,Close,Volume\n")
	closes := make([]float64, 0, 62)
	for i := 0; i < 60; i++ {
		closes = append(closes, float64(30+i))
	}
	closes = append(closes, 79, 69)
	for i, c := range closes {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		fmt.Fprintf(&b, "ABC,%s,%g,%g,%g,%g,1000\n", date, c, c+1, c-1, c)
		fmt.Fprintf(&b, "XYZ,%s,50,51,49,50,1000\n", date)
	}

	path := filepath.Join(dir, "combined.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func newRunner(t *testing.T) (*Runner, string) {
	t.Helper()
	dir := t.TempDir()

	strategies, err := strategyconfig.Parse([]byte(strategiesYAML))
	require.NoError(t, err)

	cfg := &config.Config{
		StateRoot:  filepath.Join(dir, "state"),
		OutputRoot: filepath.Join(dir, "outputs"),
		Redis:      config.RedisConfig{LockTTL: time.Minute},
	}

	client, err := redis.New(context.Background(), config.RedisConfig{Enabled: false})
	require.NoError(t, err)

	r, err := New(cfg, strategies, Deps{
		Source: pricedata.NewCSVSource(writePrices(t, dir), nil),
		Locker: redis.NewLocker(client),
		Cache:  redis.NewCache(client),
	})
	require.NoError(t, err)
	return r, dir
}

func TestRunner_Run(t *testing.T) {
	r, dir := newRunner(t)

	res, err := r.Run(context.Background(), "rsi2_us", Options{})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "ABC", res.Entries[0].Ticker)
	assert.Equal(t, filepath.Join(dir, "state", "rsi2_us_state.csv"), res.Paths.Ledger)
	assert.FileExists(t, filepath.Join(dir, "outputs", "rsi2_us", "entries_2024-03-02.csv"))

	s := Summarize(res, r.ConfigHash())
	assert.Equal(t, "2024-03-02", s.Today)
	assert.Equal(t, 1, s.Entries)
	assert.Len(t, s.ConfigHash, 64)
}

func TestRunner_Overrides(t *testing.T) {
	r, dir := newRunner(t)
	strict := true

	include := filepath.Join(dir, "include.txt")
	require.NoError(t, os.WriteFile(include, []byte("XYZ\n"), 0644))

	opts := Options{
		IncludeFile: include,
		LedgerPath:  filepath.Join(dir, "custom", "ledger.csv"),
		OutputDir:   filepath.Join(dir, "custom", "out"),
		Strict:      &strict,
	}

	tickers, err := r.Include("rsi2_us", opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC", "XYZ"}, tickers)

	res, err := r.Run(context.Background(), "rsi2_us", opts)
	require.NoError(t, err)
	assert.Equal(t, opts.LedgerPath, res.Paths.Ledger)
	assert.FileExists(t, opts.LedgerPath)
}

func TestRunner_UnknownStrategy(t *testing.T) {
	r, _ := newRunner(t)
	_, err := r.Run(context.Background(), "nope", Options{})
	assert.Error(t, err)
}

func TestRunner_RunAll(t *testing.T) {
	r, _ := newRunner(t)

	outcomes := r.RunAll(context.Background(), r.Strategies().Names(), 2)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		require.NoError(t, o.Err, o.Strategy)
		assert.Len(t, o.Result.Entries, 1)
	}
	assert.Equal(t, "rsi2_all", outcomes[0].Strategy)
}

func TestRunner_SameLedgerSerialized(t *testing.T) {
	r, _ := newRunner(t)

	outcomes := r.RunAll(context.Background(), []string{"rsi2_us", "rsi2_us", "rsi2_us"}, 3)
	for _, o := range outcomes {
		require.NoError(t, o.Err)
		// 직렬화되어 어느 실행이든 동일한 결과
		assert.Len(t, o.Result.Entries, 1)
		assert.Len(t, o.Result.Open, 1)
	}
}

func TestRunner_LastRunWithoutRedis(t *testing.T) {
	r, _ := newRunner(t)
	ctx := context.Background()

	_, err := r.Run(ctx, "rsi2_us", Options{})
	require.NoError(t, err)

	last, found, err := r.LastRun(ctx, "rsi2_us")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, last)
	assert.NoError(t, r.ForgetLastRun(ctx, "rsi2_us"))
}

func TestRunner_LastRunCached(t *testing.T) {
	if testing.Short() || os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set, skipping integration test")
	}
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Redis.Enabled = true
	client, err := redis.New(context.Background(), cfg.Redis)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	r, _ := newRunner(t)
	r.cache = redis.NewCache(client)
	ctx := context.Background()
	name := "rsi2_us"

	res, err := r.Run(ctx, name, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.ForgetLastRun(ctx, name) })

	last, found, err := r.LastRun(ctx, name)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, res.RunID, last.RunID)
	assert.Equal(t, "2024-03-02", last.Today)
	assert.Equal(t, 1, last.Entries)

	require.NoError(t, r.ForgetLastRun(ctx, name))
	_, found, err = r.LastRun(ctx, name)
	require.NoError(t, err)
	assert.False(t, found)
}
