package analysis

import (
	"testing"

	"crypto-volume-toolkit/internal/domain"
)

func listing(sym string, src domain.Source, mcap, vol float64) domain.Listing {
	return domain.Listing{Symbol: sym, Source: src, MarketCap: mcap, Volume: vol}
}

func TestVerifySingleSource(t *testing.T) {
	tokens := Verify([]domain.Listing{
		listing("BIG", domain.SourceCoinGecko, 2e9, 1.2e9),
		listing("SMALL", domain.SourceCoinGecko, 5e8, 5e8),
		listing("SLOW", domain.SourceCoinGecko, 2e9, 0.9e9),
	})
	if len(tokens) != 1 {
		t.Fatalf("expected only BIG, got %+v", tokens)
	}
	tok := tokens[0]
	if tok.Symbol != "BIG" || !tok.LargeCap || tok.SourceCount != 1 {
		t.Fatalf("unexpected token: %+v", tok)
	}
	if tok.VTMR != 0.6 {
		t.Fatalf("expected vtmr 0.6, got %f", tok.VTMR)
	}
}

func TestVerifyMultiSourceAverages(t *testing.T) {
	tokens := Verify([]domain.Listing{
		listing("abc", domain.SourceCoinGecko, 100, 100),
		listing("ABC", domain.SourceCoinMarketCap, 300, 250),
		listing("DEF", domain.SourceCoinGecko, 100, 80),
		listing("DEF", domain.SourceLiveCoinWatch, 100, 70),
	})
	if len(tokens) != 1 {
		t.Fatalf("expected only ABC, got %+v", tokens)
	}
	tok := tokens[0]
	if tok.Symbol != "ABC" || tok.SourceCount != 2 || tok.LargeCap {
		t.Fatalf("unexpected token: %+v", tok)
	}
	// mean volume 175 over mean market cap 200
	if tok.VTMR != 0.875 {
		t.Fatalf("unexpected vtmr: %f", tok.VTMR)
	}
}

func TestVerifyRejectsExactThreshold(t *testing.T) {
	tokens := Verify([]domain.Listing{
		listing("EQ", domain.SourceCoinGecko, 100, 75),
		listing("EQ", domain.SourceCoinRankings, 100, 75),
	})
	if len(tokens) != 0 {
		t.Fatalf("expected averaged ratio of exactly 0.75 to be rejected, got %+v", tokens)
	}
}

func TestVerifySortsDescendingWithTieBreak(t *testing.T) {
	tokens := Verify([]domain.Listing{
		listing("BBB", domain.SourceCoinGecko, 100, 200),
		listing("BBB", domain.SourceCoinMarketCap, 100, 200),
		listing("AAA", domain.SourceCoinGecko, 100, 200),
		listing("AAA", domain.SourceCoinMarketCap, 100, 200),
		listing("CCC", domain.SourceCoinGecko, 100, 500),
		listing("CCC", domain.SourceCoinMarketCap, 2e9, 5e9),
	})
	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(tokens))
	}
	if tokens[1].Symbol != "AAA" || tokens[2].Symbol != "BBB" {
		t.Fatalf("expected ties ordered by symbol, got %s, %s", tokens[1].Symbol, tokens[2].Symbol)
	}
	if tokens[0].Symbol != "CCC" || !tokens[0].LargeCap {
		t.Fatalf("expected CCC first and large cap, got %+v", tokens[0])
	}
}

func TestCountSources(t *testing.T) {
	counts := CountSources([]domain.Listing{
		listing("A", domain.SourceCoinGecko, 1, 1),
		listing("B", domain.SourceCoinGecko, 1, 1),
		listing("C", domain.SourceCoinRankings, 1, 1),
	})
	if counts[domain.SourceCoinGecko] != 2 || counts[domain.SourceCoinRankings] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestMergeSplitsMarkets(t *testing.T) {
	spot := []domain.SpotRow{
		{Ticker: "AAA", VTMR: 1.1},
		{Ticker: "BBB", VTMR: 0.9},
		{Ticker: "CCC", VTMR: 0.4},
		{Ticker: "DDD", VTMR: 0.7},
	}
	futures := []domain.FuturesToken{
		{Ticker: "AAA", VTMR: 0.8},
		{Ticker: "BBB", VTMR: 2.5},
		{Ticker: "DDD", VTMR: 0.3},
		{Ticker: "EEE", VTMR: 1.0},
		{Ticker: "FFF", VTMR: 3.0},
	}

	cross := Merge(spot, futures)
	if cross.Empty() {
		t.Fatalf("expected non-empty result")
	}
	if len(cross.Both) != 2 || cross.Both[0].Spot.Ticker != "BBB" || cross.Both[1].Spot.Ticker != "AAA" {
		t.Fatalf("unexpected both rows: %+v", cross.Both)
	}
	if len(cross.FuturesOnly) != 2 || cross.FuturesOnly[0].Ticker != "FFF" || cross.FuturesOnly[1].Ticker != "EEE" {
		t.Fatalf("unexpected futures-only rows: %+v", cross.FuturesOnly)
	}
	// DDD has a futures row below the threshold so it stays spot-only; CCC is too slow.
	if len(cross.SpotOnly) != 1 || cross.SpotOnly[0].Ticker != "DDD" {
		t.Fatalf("unexpected spot-only rows: %+v", cross.SpotOnly)
	}
}

func TestMergeEmptyInputs(t *testing.T) {
	if !Merge(nil, []domain.FuturesToken{{Ticker: "A", VTMR: 1}}).Empty() {
		t.Fatalf("expected empty when spot is missing")
	}
	if !Merge([]domain.SpotRow{{Ticker: "A", VTMR: 1}}, nil).Empty() {
		t.Fatalf("expected empty when futures is missing")
	}
}
