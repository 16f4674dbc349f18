// Package spotfile reads spot reports back into rows for cross-market analysis.
package spotfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"crypto-volume-toolkit/internal/domain"

	"golang.org/x/net/html"
)

var ErrNoTable = errors.New("no table found")

var nonTicker = regexp.MustCompile(`[^A-Z0-9]`)

// columnAliases maps normalised header names onto the fields of domain.SpotRow.
var columnAliases = map[string]string{
	"ticker":            "ticker",
	"symbol":            "ticker",
	"spot_vtmr":         "vtmr",
	"flipping_multiple": "vtmr",
	"market_cap":        "market_cap",
	"marketcap":         "market_cap",
	"volume_24h":        "volume",
	"volume":            "volume",
}

// Load reads a spot report saved as .html (first table) or .csv.
// logf receives progress lines; when nil the standard logger is used.
func Load(path string, logf func(string, ...any)) ([]domain.SpotRow, error) {
	if logf == nil {
		logf = log.Printf
	}
	logf("Parsing Spot File: %s", filepath.Base(path))

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var table [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		table, err = readHTMLTable(f)
	case ".csv":
		table, err = readCSV(f)
	default:
		return nil, fmt.Errorf("unsupported spot file type %q", filepath.Ext(path))
	}
	if err != nil {
		logf("Spot File Error: %v", err)
		return nil, err
	}

	rows := toRows(table)
	logf("Extracted %d spot tokens", len(rows))
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

// readHTMLTable returns the cell text of the first <table> in the document.
func readHTMLTable(r io.Reader) ([][]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	table := findFirst(doc, "table")
	if table == nil {
		return nil, ErrNoTable
	}

	var out [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, strings.TrimSpace(textContent(c)))
				}
			}
			if len(cells) > 0 {
				out = append(out, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return out, nil
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func normaliseHeader(h string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// columnIndex resolves header positions. When no ticker column exists the
// first header mentioning sym, tick or tok is used instead.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int)
	normalised := make([]string, len(header))
	for i, h := range header {
		normalised[i] = normaliseHeader(h)
		if field, ok := columnAliases[normalised[i]]; ok {
			if _, seen := idx[field]; !seen {
				idx[field] = i
			}
		}
	}
	if _, ok := idx["ticker"]; !ok {
		for i, h := range normalised {
			if strings.Contains(h, "sym") || strings.Contains(h, "tick") || strings.Contains(h, "tok") {
				idx["ticker"] = i
				break
			}
		}
	}
	return idx
}

func toRows(table [][]string) []domain.SpotRow {
	if len(table) < 2 {
		return nil
	}
	idx := columnIndex(table[0])
	tickerCol, ok := idx["ticker"]
	if !ok {
		return nil
	}

	cell := func(rec []string, field string) string {
		i, ok := idx[field]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	rows := make([]domain.SpotRow, 0, len(table)-1)
	for _, rec := range table[1:] {
		if tickerCol >= len(rec) {
			continue
		}
		ticker := CleanTicker(rec[tickerCol])
		if ticker == "" {
			continue
		}
		display := cell(rec, "vtmr")
		rows = append(rows, domain.SpotRow{
			Ticker:      ticker,
			MarketCap:   cell(rec, "market_cap"),
			Volume:      cell(rec, "volume"),
			VTMR:        ParseVTMR(display),
			VTMRDisplay: display,
		})
	}
	return rows
}

// CleanTicker upper-cases s and strips everything but A-Z and 0-9.
func CleanTicker(s string) string {
	return nonTicker.ReplaceAllString(strings.ToUpper(s), "")
}

// ParseVTMR reads values such as "1.2x" or "0.8". Unparsable input is 0.
func ParseVTMR(s string) float64 {
	s = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(strings.ToLower(s)), "x"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
