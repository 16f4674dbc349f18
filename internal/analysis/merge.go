package analysis

import (
	"sort"

	"crypto-volume-toolkit/internal/domain"
)

// MinFuturesVTMR is the futures ratio below which rows are dropped before merging.
const MinFuturesVTMR = 0.50

// MinSpotOnlyVTMR is the spot ratio a spot-only token needs to be listed.
const MinSpotOnlyVTMR = 0.50

// MatchedRow pairs a spot report row with a futures row for the same ticker.
type MatchedRow struct {
	Spot    domain.SpotRow
	Futures domain.FuturesToken
}

// CrossMarket is the three-way split of spot and futures data.
type CrossMarket struct {
	Both        []MatchedRow
	FuturesOnly []domain.FuturesToken
	SpotOnly    []domain.SpotRow

	spotRows    int
	futuresRows int
}

// Empty reports whether either input was empty, in which case there is
// nothing to report.
func (c CrossMarket) Empty() bool {
	return c.spotRows == 0 || c.futuresRows == 0
}

// Merge splits spot and futures rows into tokens present on both markets,
// futures-only tokens and spot-only tokens.
func Merge(spot []domain.SpotRow, futures []domain.FuturesToken) CrossMarket {
	out := CrossMarket{spotRows: len(spot), futuresRows: len(futures)}
	if out.Empty() {
		return out
	}

	valid := make([]domain.FuturesToken, 0, len(futures))
	for _, f := range futures {
		if f.VTMR >= MinFuturesVTMR {
			valid = append(valid, f)
		}
	}

	spotTickers := make(map[string]struct{}, len(spot))
	for _, s := range spot {
		spotTickers[s.Ticker] = struct{}{}
	}

	matched := make(map[string]struct{})
	for _, s := range spot {
		for _, f := range valid {
			if f.Ticker == s.Ticker {
				out.Both = append(out.Both, MatchedRow{Spot: s, Futures: f})
				matched[s.Ticker] = struct{}{}
			}
		}
	}
	sort.SliceStable(out.Both, func(i, j int) bool {
		return out.Both[i].Futures.VTMR > out.Both[j].Futures.VTMR
	})

	for _, f := range valid {
		if _, ok := spotTickers[f.Ticker]; !ok {
			out.FuturesOnly = append(out.FuturesOnly, f)
		}
	}
	sort.SliceStable(out.FuturesOnly, func(i, j int) bool {
		return out.FuturesOnly[i].VTMR > out.FuturesOnly[j].VTMR
	})

	for _, s := range spot {
		if _, ok := matched[s.Ticker]; ok {
			continue
		}
		if s.VTMR >= MinSpotOnlyVTMR {
			out.SpotOnly = append(out.SpotOnly, s)
		}
	}
	sort.SliceStable(out.SpotOnly, func(i, j int) bool {
		return out.SpotOnly[i].VTMR > out.SpotOnly[j].VTMR
	})

	return out
}
