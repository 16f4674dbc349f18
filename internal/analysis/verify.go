package analysis

import (
	"sort"
	"strings"

	"crypto-volume-toolkit/internal/domain"
)

const (
	// SingleSourceMinVTMR is the ratio a large cap token seen by one provider needs.
	SingleSourceMinVTMR = 0.50
	// MultiSourceMinVTMR is the averaged ratio a token seen by several providers needs.
	MultiSourceMinVTMR = 0.75
)

// Verify groups listings by symbol and keeps the tokens that pass
// cross-source verification, sorted by VTMR descending.
//
// A token reported by one provider is only trusted when it is large cap and
// trades at least half its market cap. A token reported by several providers
// is accepted when the ratio of its mean volume to its mean market cap
// exceeds MultiSourceMinVTMR.
func Verify(listings []domain.Listing) []domain.SpotToken {
	groups := make(map[string][]domain.Listing)
	for _, l := range listings {
		sym := strings.ToUpper(strings.TrimSpace(l.Symbol))
		if sym == "" {
			continue
		}
		groups[sym] = append(groups[sym], l)
	}

	tokens := make([]domain.SpotToken, 0, len(groups))
	for sym, rows := range groups {
		if tok, ok := verifyGroup(sym, rows); ok {
			tokens = append(tokens, tok)
		}
	}

	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].VTMR != tokens[j].VTMR {
			return tokens[i].VTMR > tokens[j].VTMR
		}
		return tokens[i].Symbol < tokens[j].Symbol
	})
	return tokens
}

func verifyGroup(symbol string, rows []domain.Listing) (domain.SpotToken, bool) {
	if len(rows) == 1 {
		r := rows[0]
		vtmr := r.VTMR()
		if r.MarketCap <= domain.LargeCapThreshold || vtmr < SingleSourceMinVTMR {
			return domain.SpotToken{}, false
		}
		return domain.SpotToken{
			Symbol:      symbol,
			MarketCap:   r.MarketCap,
			Volume:      r.Volume,
			VTMR:        vtmr,
			SourceCount: 1,
			LargeCap:    true,
		}, true
	}

	var sumMcap, sumVol float64
	largeCap := false
	for _, r := range rows {
		sumMcap += r.MarketCap
		sumVol += r.Volume
		if r.MarketCap > domain.LargeCapThreshold {
			largeCap = true
		}
	}
	n := float64(len(rows))
	avgMcap := sumMcap / n
	avgVol := sumVol / n
	if avgMcap <= 0 {
		return domain.SpotToken{}, false
	}
	ratio := avgVol / avgMcap
	if ratio <= MultiSourceMinVTMR {
		return domain.SpotToken{}, false
	}
	return domain.SpotToken{
		Symbol:      symbol,
		MarketCap:   avgMcap,
		Volume:      avgVol,
		VTMR:        ratio,
		SourceCount: len(rows),
		LargeCap:    largeCap,
	}, true
}

// CountSources returns how many listings each provider contributed.
func CountSources(listings []domain.Listing) map[domain.Source]int {
	counts := make(map[domain.Source]int)
	for _, l := range listings {
		counts[l.Source]++
	}
	return counts
}
