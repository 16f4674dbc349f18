package domain

import (
	"strings"
	"time"
)

// Source identifies a spot market data provider.
type Source string

const (
	SourceCoinGecko     Source = "CG"
	SourceCoinMarketCap Source = "CMC"
	SourceLiveCoinWatch Source = "LCW"
	SourceCoinRankings  Source = "CR"
)

// LargeCapThreshold is the market cap above which a token counts as large cap.
const LargeCapThreshold = 1_000_000_000

// Stablecoins and wrapped assets never show up in volume scans.
var Stablecoins = map[string]struct{}{
	"USDT": {}, "USDC": {}, "BUSD": {}, "DAI": {}, "BSC-USD": {}, "USD1": {},
	"CBBTC": {}, "WBNB": {}, "WETH": {}, "UST": {}, "TUSD": {}, "USDP": {},
	"USDD": {}, "FRAX": {}, "GUSD": {}, "LUSD": {}, "FDUSD": {},
}

func IsStablecoin(symbol string) bool {
	_, ok := Stablecoins[strings.ToUpper(symbol)]
	return ok
}

// Listing is a single row returned by a spot provider.
type Listing struct {
	Symbol    string  `json:"symbol"`
	MarketCap float64 `json:"market_cap"`
	Volume    float64 `json:"volume"`
	Source    Source  `json:"source"`
}

// VTMR returns the volume to market cap ratio, or 0 when market cap is unknown.
func (l Listing) VTMR() float64 {
	if l.MarketCap == 0 {
		return 0
	}
	return l.Volume / l.MarketCap
}

// SpotToken is a token that passed multi-source verification.
type SpotToken struct {
	Symbol      string  `json:"symbol"`
	MarketCap   float64 `json:"market_cap"`
	Volume      float64 `json:"volume"`
	VTMR        float64 `json:"vtmr"`
	SourceCount int     `json:"source_count"`
	LargeCap    bool    `json:"large_cap"`
}

// SpotScan is the result of one spot run.
type SpotScan struct {
	UserID       string         `json:"user_id"`
	GeneratedAt  time.Time      `json:"generated_at"`
	Tokens       []SpotToken    `json:"tokens"`
	SourceCounts map[Source]int `json:"source_counts"`
}

func (s *SpotScan) PeakVTMR() float64 {
	peak := 0.0
	for _, t := range s.Tokens {
		if t.VTMR > peak {
			peak = t.VTMR
		}
	}
	return peak
}

// HighVolumeCount counts tokens trading at least twice their market cap.
func (s *SpotScan) HighVolumeCount() int {
	n := 0
	for _, t := range s.Tokens {
		if t.VTMR >= 2 {
			n++
		}
	}
	return n
}

func (s *SpotScan) LargeCapCount() int {
	n := 0
	for _, t := range s.Tokens {
		if t.LargeCap {
			n++
		}
	}
	return n
}

// Top returns at most n tokens from the head of the scan.
func (s *SpotScan) Top(n int) []SpotToken {
	if n <= 0 || n >= len(s.Tokens) {
		return s.Tokens
	}
	return s.Tokens[:n]
}
