package futures

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"crypto-volume-toolkit/internal/domain"
)

// financialPattern matches "<mcap> <volume> [oi%] [funding%] <vtmr>" rows.
var financialPattern = regexp.MustCompile(
	`(\$?[+-]?[\d,\.]+[kKmMbB]?)\s+` +
		`(\$?[+-]?[\d,\.]+[kKmMbB]?)\s+` +
		`(?:([+\-]?[\d\.\,]+\%?|[\-–—]|N\/A)\s+)?` +
		`(?:([+\-]?[\d\.\,]+\%?|[\-–—]|N\/A)\s+)?` +
		`(\d*\.?\d+)`,
)

var nonTicker = regexp.MustCompile(`[^A-Z0-9]`)

// ignoreKeywords mark header, footer and navigation lines of the export.
var ignoreKeywords = []string{
	"page", "coinalyze", "contract", "filter", "column",
	"mkt cap", "vol 24h", "vtmr", "coins", "all contracts", "custom metrics", "watchlists",
}

// TextExtractor returns the non-blank text lines of every page of a PDF.
type TextExtractor interface {
	ExtractPages(ctx context.Context, path string) ([][]string, error)
}

// Parser turns a CoinAlyze futures export into futures tokens.
type Parser struct {
	extractor TextExtractor
}

func NewParser(extractor TextExtractor) *Parser {
	return &Parser{extractor: extractor}
}

// Parse reads every page of the PDF at path. logf receives progress lines;
// when nil the standard logger is used.
func (p *Parser) Parse(ctx context.Context, path string, logf func(string, ...any)) ([]domain.FuturesToken, error) {
	if logf == nil {
		logf = log.Printf
	}
	logf("Parsing Futures PDF: %s", filepath.Base(path))

	pages, err := p.extractor.ExtractPages(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract futures pdf: %w", err)
	}

	var tokens []domain.FuturesToken
	for _, lines := range pages {
		tokens = append(tokens, ParseLines(lines)...)
	}
	logf("Extracted %d futures tokens", len(tokens))

	valid := tokens[:0]
	for _, t := range tokens {
		t.Ticker = nonTicker.ReplaceAllString(strings.ToUpper(t.Ticker), "")
		if len(t.Ticker) > 1 {
			valid = append(valid, t)
		}
	}
	logf("Valid futures tokens: %d", len(valid))
	return valid, nil
}

type financialRow struct {
	marketCap string
	volume    string
	oi        string
	funding   string
	vtmr      float64
}

// ParseLines parses the text lines of one page. Name and ticker lines are
// collected separately from the numeric rows and zipped in order.
func ParseLines(lines []string) []domain.FuturesToken {
	var financials []financialRow
	var textLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || ignored(line) {
			continue
		}

		if m := financialPattern.FindStringSubmatch(line); m != nil {
			vtmr, err := strconv.ParseFloat(m[5], 64)
			if err != nil {
				textLines = append(textLines, line)
				continue
			}
			financials = append(financials, financialRow{
				marketCap: stripMoney(m[1]),
				volume:    stripMoney(m[2]),
				oi:        m[3],
				funding:   m[4],
				vtmr:      vtmr,
			})
			continue
		}

		if !allDigits(line) && utf8.RuneCountInString(line) > 1 {
			textLines = append(textLines, line)
		}
	}

	type pair struct{ name, ticker string }
	var pairs []pair
	for i := 0; i < len(textLines); {
		if i+1 < len(textLines) {
			if ticker, ok := cleanTicker(textLines[i+1]); ok {
				pairs = append(pairs, pair{name: textLines[i], ticker: ticker})
				i += 2
				continue
			}
		}
		i++
	}

	n := min(len(pairs), len(financials))
	tokens := make([]domain.FuturesToken, 0, n)
	for k := 0; k < n; k++ {
		f := financials[k]
		tokens = append(tokens, domain.FuturesToken{
			Ticker:      pairs[k].ticker,
			Name:        pairs[k].name,
			MarketCap:   f.marketCap,
			Volume:      f.volume,
			VTMR:        f.vtmr,
			OIChange:    f.oi,
			FundingRate: f.funding,
		})
	}
	return tokens
}

func ignored(line string) bool {
	lower := strings.ToLower(line)
	for _, k := range ignoreKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// cleanTicker accepts short lines that reduce to 2-12 alphanumerics.
func cleanTicker(text string) (string, bool) {
	if utf8.RuneCountInString(text) > 15 {
		return "", false
	}
	cleaned := nonTicker.ReplaceAllString(strings.ToUpper(text), "")
	if len(cleaned) < 2 || len(cleaned) > 12 {
		return "", false
	}
	return cleaned, true
}

func stripMoney(v string) string {
	return strings.NewReplacer("$", "", ",", "").Replace(v)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
