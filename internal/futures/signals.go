package futures

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Signal is the Open Interest Signal Score derived from a 24h OI change.
type Signal struct {
	Score   int
	Label   string
	Class   string
	Percent string
}

// FundingSignal classifies a funding rate. Parsed is false when the cell
// could not be read as a number, in which case Value holds the raw text.
type FundingSignal struct {
	Value  string
	Label  string
	Class  string
	Parsed bool
}

func missingCell(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "", "-", "–", "—", "N/A":
		return true
	}
	return false
}

// OISS scores an open interest change such as "+12.5%". ok is false when the
// cell is missing or unparsable.
func OISS(raw string) (Signal, bool) {
	if missingCell(raw) {
		return Signal{}, false
	}
	pct, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(raw, "%", "")), 64)
	if err != nil || math.IsNaN(pct) || math.IsInf(pct, 0) {
		return Signal{}, false
	}

	change := pct / 100
	s := Signal{}
	switch {
	case change > 0.20:
		s.Score, s.Label = 5, "Strong"
	case change > 0.10:
		s.Score, s.Label = 4, "Bullish"
	case change > 0:
		s.Score, s.Label = 3, "Build-Up"
	case change > -0.10:
		s.Score, s.Label = 2, "Weakening"
	case change > -0.20:
		s.Score, s.Label = 1, "Exiting"
	default:
		s.Score, s.Label = 0, "Exiting"
	}

	sign := ""
	switch {
	case change > 0:
		s.Class = "oi-strong"
		sign = "+"
	case change < 0:
		s.Class = "oi-weak"
	}
	s.Percent = fmt.Sprintf("%s%.0f%%", sign, change*100)
	return s, true
}

// Funding classifies a funding rate cell such as "0.01%".
func Funding(raw string) FundingSignal {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "-" || trimmed == "N/A" {
		return FundingSignal{Value: "-"}
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(trimmed, "%", "")), 64)
	if err != nil {
		return FundingSignal{Value: raw}
	}

	f := FundingSignal{Value: formatRate(val), Parsed: true}
	switch {
	case val >= 0.05:
		f.Label, f.Class = "Greed", "oi-strong"
	case val > 0:
		f.Label, f.Class = "Bullish", "oi-strong"
	case val <= -0.05:
		f.Label, f.Class = "Extreme Fear", "oi-weak"
	case val < 0:
		f.Label, f.Class = "Bearish", "oi-weak"
	default:
		f.Label = "Neutral"
	}
	return f
}

// formatRate prints the shortest representation of v, always keeping a
// decimal point for whole numbers ("1.0", "0.01", "1e-05").
func formatRate(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
