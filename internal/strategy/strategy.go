package strategy

import (
	"fmt"

	"github.com/wonny/swing/internal/contracts"
)

// Kind tags one member of the closed set of strategy variants
type Kind string

const (
	KindMeanReversion          Kind = "mean_reversion"
	KindLeveragedMeanReversion Kind = "leveraged_mean_reversion"
	KindDoubleSeven            Kind = "double_seven"
	KindStreakReversal         Kind = "streak_reversal"
)

// Kinds lists every supported variant
func Kinds() []Kind {
	return []Kind{KindMeanReversion, KindLeveragedMeanReversion, KindDoubleSeven, KindStreakReversal}
}

// LeveragedUniverse is the fixed instrument set of the leveraged variant
var LeveragedUniverse = []string{"SSO", "UPRO", "QLD", "TQQQ", "SPXL"}

// Strategy turns a price table into entry/exit candidates for one day
// ⭐ SSOT: 엔진은 이 인터페이스만 알고, 구체 전략을 분기하지 않음
type Strategy interface {
	Name() string
	Kind() Kind

	// Prepare appends the variant's indicators per ticker, preserving row order
	Prepare(table contracts.PriceTable) []Snapshot

	// Signal evaluates rows dated rc.Today against the current open positions
	Signal(rc contracts.RunContext, book PositionBook, snaps []Snapshot) contracts.Signals
}

// PositionBook is the single ledger query every variant uses to decide
// whether a ticker is open
type PositionBook interface {
	OpenPosition(ticker string) (contracts.PositionRecord, bool)
}

// Snapshot is a price bar plus derived indicator fields (NaN = not ready)
type Snapshot struct {
	contracts.PriceBar

	RSI        float64 `json:"rsi"`
	TrendMA    float64 `json:"trend_ma"`
	ShortMA    float64 `json:"short_ma"`
	ATR        float64 `json:"atr"`
	PriorLow   float64 `json:"prior_low"`  // min of the preceding N closes
	PriorHigh  float64 `json:"prior_high"` // max of the preceding N closes
	DownStreak int     `json:"down_streak"`
}

// Params holds the tunable thresholds of a variant.
// Fields a variant does not use are ignored.
type Params struct {
	BuyThreshold  float64  `json:"buy_threshold"`
	ExitThreshold float64  `json:"exit_threshold"`
	LookbackN     int      `json:"lookback_n"`
	ExitLookbackN int      `json:"exit_lookback_n"`
	TrendPeriod   int      `json:"trend_period"`
	ShortPeriod   int      `json:"short_period"`
	ATRPeriod     int      `json:"atr_period"`
	TimeStopDays  int      `json:"time_stop_days"`
	Tickers       []string `json:"tickers"`
}

// DefaultParams returns the canonical settings of each variant
func DefaultParams(kind Kind) Params {
	switch kind {
	case KindMeanReversion:
		return Params{BuyThreshold: 5, ExitThreshold: 70, LookbackN: 2, TrendPeriod: 200, ATRPeriod: 14, TimeStopDays: 20}
	case KindLeveragedMeanReversion:
		p := DefaultParams(KindMeanReversion)
		p.Tickers = append([]string(nil), LeveragedUniverse...)
		return p
	case KindDoubleSeven:
		return Params{LookbackN: 7, ExitLookbackN: 7, TrendPeriod: 200, ATRPeriod: 14, TimeStopDays: 20}
	case KindStreakReversal:
		return Params{BuyThreshold: 3, LookbackN: 3, ShortPeriod: 5, TrendPeriod: 200, ATRPeriod: 14, TimeStopDays: 10}
	default:
		return Params{}
	}
}

// New builds a variant by kind
func New(name string, kind Kind, p Params) (Strategy, error) {
	if name == "" {
		name = string(kind)
	}
	if p.ATRPeriod <= 0 {
		p.ATRPeriod = 14
	}
	if p.TimeStopDays < 0 {
		return nil, fmt.Errorf("strategy %s: time_stop_days must be >= 0", name)
	}
	if p.TrendPeriod <= 0 {
		return nil, fmt.Errorf("strategy %s: trend_period must be > 0", name)
	}

	switch kind {
	case KindMeanReversion, KindLeveragedMeanReversion:
		return newMeanReversion(name, kind, p)
	case KindDoubleSeven:
		return newDoubleSeven(name, p)
	case KindStreakReversal:
		return newStreakReversal(name, p)
	default:
		return nil, fmt.Errorf("unknown strategy kind %q", kind)
	}
}
