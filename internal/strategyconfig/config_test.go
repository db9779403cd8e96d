package strategyconfig

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/swing/internal/strategy"
)

func TestLoad(t *testing.T) {
	cfg, yamlData, err := Load("../../configs/strategies.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []string{"connors_3d_hl", "double_seven", "rsi2_5_70_sso", "rsi2_us"}
	assert.Equal(t, want, cfg.Names())

	// 해시 생성
	hash, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(hash) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(hash))
	}

	// 동일 설정 → 동일 해시
	hash2, _ := Hash(cfg)
	if hash != hash2 {
		t.Error("hash not deterministic")
	}

	for _, name := range cfg.Names() {
		s, err := cfg.Build(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
	}

	t.Logf("config hash: %s", hash)
	t.Logf("yaml size: %d bytes", len(yamlData))
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`
strategies:
  d7:
    kind: double_seven
  lev:
    kind: leveraged_mean_reversion
    time_stop_days: 0
`))
	require.NoError(t, err)

	d7, ok := cfg.Get("d7")
	require.True(t, ok)
	assert.Equal(t, strategy.DefaultParams(strategy.KindDoubleSeven), d7.Params())

	lev, _ := cfg.Get("lev")
	p := lev.Params()
	assert.Equal(t, 0, p.TimeStopDays)
	assert.Equal(t, strategy.LeveragedUniverse, p.Tickers)
	assert.Equal(t, 5.0, p.BuyThreshold)

	warnings := Warn(cfg)
	codes := make([]string, 0, len(warnings))
	for _, w := range warnings {
		codes = append(codes, w.Code)
	}
	assert.Contains(t, codes, "NO_TIME_STOP")
	assert.Contains(t, codes, "NO_SCHEDULE")
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(`
strategies:
  rsi2_us:
    kind: mean_reversion
    buy_treshold: 5
`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	i := func(v int) *int { return &v }

	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"empty", Config{}, "strategies"},
		{"bad name", Config{Strategies: map[string]Strategy{"RSI 2": {Kind: "mean_reversion"}}}, "strategies.RSI 2"},
		{"unknown kind", Config{Strategies: map[string]Strategy{"x": {Kind: "momentum"}}}, "strategies.x.kind"},
		{"bad schedule", Config{Strategies: map[string]Strategy{"x": {Kind: "mean_reversion", Schedule: "30 17 * * 1-5"}}}, "strategies.x.schedule"},
		{"inverted thresholds", Config{Strategies: map[string]Strategy{"x": {Kind: "mean_reversion", BuyThreshold: f(80)}}}, "strategies.x"},
		{"negative time stop", Config{Strategies: map[string]Strategy{"x": {Kind: "streak_reversal", TimeStopDays: i(-1)}}}, "strategies.x"},
		{"empty ticker", Config{Strategies: map[string]Strategy{"x": {Kind: "mean_reversion", Tickers: []string{"SPY", " "}}}}, "strategies.x.tickers[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cfg)
			require.Error(t, err)

			var verr ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestHash_ChangesWithParams(t *testing.T) {
	v := 10.0
	a := &Config{Strategies: map[string]Strategy{"x": {Kind: "mean_reversion"}}}
	b := &Config{Strategies: map[string]Strategy{"x": {Kind: "mean_reversion", BuyThreshold: &v}}}

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestBuild_Undefined(t *testing.T) {
	cfg := &Config{Strategies: map[string]Strategy{"x": {Kind: "mean_reversion"}}}
	_, err := cfg.Build("y")
	assert.Error(t, err)
}
