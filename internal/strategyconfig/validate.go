package strategyconfig

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/wonny/swing/internal/strategy"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// 전략 이름은 파일명(state/<name>_state.csv)에 그대로 사용
var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)

var scheduleParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	if len(cfg.Strategies) == 0 {
		return ValidationError{"strategies", "at least one strategy is required"}
	}

	for _, name := range cfg.Names() {
		s := cfg.Strategies[name]
		field := "strategies." + name

		if !namePattern.MatchString(name) {
			return ValidationError{field, "name must match " + namePattern.String()}
		}
		if !knownKind(s.Kind) {
			return ValidationError{field + ".kind", fmt.Sprintf("must be one of %v", strategy.Kinds())}
		}
		if err := validateSchedule(s.Schedule); err != nil {
			return ValidationError{field + ".schedule", err.Error()}
		}
		for i, t := range s.Tickers {
			if strings.TrimSpace(t) == "" {
				return ValidationError{fmt.Sprintf("%s.tickers[%d]", field, i), "must not be empty"}
			}
		}

		// 파라미터 범위는 전략 생성자가 검증
		if _, err := strategy.New(name, strategy.Kind(s.Kind), s.Params()); err != nil {
			return ValidationError{field, err.Error()}
		}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	for _, name := range cfg.Names() {
		s := cfg.Strategies[name]
		p := s.Params()

		if p.TimeStopDays == 0 {
			warnings = append(warnings, Warning{
				Code:    "NO_TIME_STOP",
				Message: name + ": time-stop 비활성, 청산 규칙만으로 포지션 종료",
			})
		}
		if s.Schedule == "" {
			warnings = append(warnings, Warning{
				Code:    "NO_SCHEDULE",
				Message: name + ": schedule 없음, scheduler에 등록되지 않음",
			})
		}
		if len(s.Tickers) > 0 && s.IncludeFile != "" {
			warnings = append(warnings, Warning{
				Code:    "DOUBLE_UNIVERSE",
				Message: name + ": tickers와 include_file 동시 지정, 합집합 사용",
			})
		}
	}

	return warnings
}

// === Helper Functions ===

func knownKind(kind string) bool {
	for _, k := range strategy.Kinds() {
		if string(k) == kind {
			return true
		}
	}
	return false
}

func validateSchedule(expr string) error {
	if expr == "" {
		return nil
	}
	_, err := scheduleParser.Parse(expr)
	return err
}
