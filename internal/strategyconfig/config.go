package strategyconfig

import (
	"sort"

	"github.com/wonny/swing/internal/strategy"
)

// Config는 실행 가능한 전략 목록 전체
// ⭐ SSOT: 전략 파라미터는 YAML 한 곳에서만 정의
type Config struct {
	Strategies map[string]Strategy `yaml:"strategies" json:"strategies"`
}

// Strategy is one named strategy entry. Unset numeric fields take the
// defaults of Kind.
type Strategy struct {
	Kind string `yaml:"kind" json:"kind"`

	BuyThreshold  *float64 `yaml:"buy_threshold,omitempty" json:"buy_threshold,omitempty"`
	ExitThreshold *float64 `yaml:"exit_threshold,omitempty" json:"exit_threshold,omitempty"`
	LookbackN     *int     `yaml:"lookback_n,omitempty" json:"lookback_n,omitempty"`
	ExitLookbackN *int     `yaml:"exit_lookback_n,omitempty" json:"exit_lookback_n,omitempty"`
	TrendPeriod   *int     `yaml:"trend_period,omitempty" json:"trend_period,omitempty"`
	ShortPeriod   *int     `yaml:"short_period,omitempty" json:"short_period,omitempty"`
	ATRPeriod     *int     `yaml:"atr_period,omitempty" json:"atr_period,omitempty"`
	TimeStopDays  *int     `yaml:"time_stop_days,omitempty" json:"time_stop_days,omitempty"` // 0 = 비활성

	// Universe
	Tickers     []string `yaml:"tickers,omitempty" json:"tickers,omitempty"`
	IncludeFile string   `yaml:"include_file,omitempty" json:"include_file,omitempty"`

	// File layout (빈 값이면 STATE_ROOT / OUTPUT_ROOT 기준 기본 경로)
	LedgerPath string `yaml:"ledger_path,omitempty" json:"ledger_path,omitempty"`
	OutputDir  string `yaml:"output_dir,omitempty" json:"output_dir,omitempty"`

	// Cron schedule with seconds field, e.g. "0 30 17 * * 1-5"
	Schedule string `yaml:"schedule,omitempty" json:"schedule,omitempty"`
}

// Names returns strategy names in sorted order
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Strategies))
	for name := range c.Strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns one strategy entry by name
func (c *Config) Get(name string) (Strategy, bool) {
	s, ok := c.Strategies[name]
	return s, ok
}

// Params merges explicit fields over the kind defaults
func (s Strategy) Params() strategy.Params {
	p := strategy.DefaultParams(strategy.Kind(s.Kind))

	if s.BuyThreshold != nil {
		p.BuyThreshold = *s.BuyThreshold
	}
	if s.ExitThreshold != nil {
		p.ExitThreshold = *s.ExitThreshold
	}
	if s.LookbackN != nil {
		p.LookbackN = *s.LookbackN
	}
	if s.ExitLookbackN != nil {
		p.ExitLookbackN = *s.ExitLookbackN
	}
	if s.TrendPeriod != nil {
		p.TrendPeriod = *s.TrendPeriod
	}
	if s.ShortPeriod != nil {
		p.ShortPeriod = *s.ShortPeriod
	}
	if s.ATRPeriod != nil {
		p.ATRPeriod = *s.ATRPeriod
	}
	if s.TimeStopDays != nil {
		p.TimeStopDays = *s.TimeStopDays
	}
	if len(s.Tickers) > 0 {
		p.Tickers = append([]string(nil), s.Tickers...)
	}
	return p
}

// Build constructs the strategy implementation for name
func (c *Config) Build(name string) (strategy.Strategy, error) {
	s, ok := c.Strategies[name]
	if !ok {
		return nil, ValidationError{Field: "strategies." + name, Message: "not defined"}
	}
	return strategy.New(name, strategy.Kind(s.Kind), s.Params())
}
