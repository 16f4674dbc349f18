package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"crypto-volume-toolkit/internal/analysis"
	"crypto-volume-toolkit/internal/domain"
	"crypto-volume-toolkit/internal/futures"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const generatedLayout = "02-01-2006 15:04:05"

// ShortNum abbreviates n with a B, M or K suffix and two decimals.
func ShortNum(n float64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.2fB", n/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.2fM", n/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.2fK", n/1_000)
	}
	return strconv.FormatFloat(math.RoundToEven(n), 'f', 0, 64)
}

// FormatVTMR renders a ratio the way the reports print it, e.g. "1.3x".
func FormatVTMR(v float64) string {
	return fmt.Sprintf("%.1fx", v)
}

// SpotFileName is the HTML spot report name the advanced analysis looks for.
func SpotFileName(userID string, t time.Time) string {
	return fmt.Sprintf("%s_Volumed_Spot_Tokens_%s.html", userID, t.Format("Jan-02-06"))
}

func SpotXLSXName(userID string, t time.Time) string {
	return strings.TrimSuffix(SpotFileName(userID, t), ".html") + ".xlsx"
}

func AnalysisFileName(t time.Time) string {
	return t.Format("2006-01-02_15-04-05") + "-crypto-analysis.pdf"
}

// Generator renders spot and cross-market reports.
type Generator struct {
	now   func() time.Time
	tmpls *template.Template
}

type Option func(*Generator)

// WithClock overrides the time printed in report headers.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func NewGenerator(opts ...Option) *Generator {
	funcs := template.FuncMap{
		"shortNum": ShortNum,
		"vtmr":     FormatVTMR,
		"inc":      func(i int) int { return i + 1 },
	}
	g := &Generator{
		now:   time.Now,
		tmpls: template.Must(template.New("report").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type spotView struct {
	GeneratedAt string
	Tokens      []domain.SpotToken
	PeakVTMR    float64
	HighVolume  int
	LargeCap    int
}

// SpotHTML writes the "Volumed Spot Tokens" report for scan.
func (g *Generator) SpotHTML(w io.Writer, scan *domain.SpotScan) error {
	view := spotView{
		GeneratedAt: g.now().Format(generatedLayout),
		Tokens:      scan.Tokens,
		PeakVTMR:    scan.PeakVTMR(),
		HighVolume:  scan.HighVolumeCount(),
		LargeCap:    scan.LargeCapCount(),
	}
	return g.tmpls.ExecuteTemplate(w, "spot.html.tmpl", view)
}

type oissCell struct {
	Missing bool
	Class   string
	Percent string
	Label   string
}

func newOISSCell(raw string) oissCell {
	sig, ok := futures.OISS(raw)
	if !ok {
		return oissCell{Missing: true}
	}
	return oissCell{Class: sig.Class, Percent: sig.Percent, Label: sig.Label}
}

type matchedView struct {
	Ticker        string
	SpotMarketCap string
	SpotVolume    string
	SpotVTMR      string
	FuturesVolume string
	FuturesVTMR   string
	OISS          oissCell
	Funding       futures.FundingSignal
}

type futuresView struct {
	Ticker    string
	MarketCap string
	Volume    string
	VTMR      string
	OISS      oissCell
	Funding   futures.FundingSignal
}

type crossView struct {
	GeneratedAt string
	Both        []matchedView
	FuturesOnly []futuresView
	SpotOnly    []domain.SpotRow
	Commentary  []string
}

// CrossMarketHTML writes the cross-market analysis report. commentary is
// optional; blank lines separate its paragraphs.
func (g *Generator) CrossMarketHTML(w io.Writer, cross analysis.CrossMarket, commentary string) error {
	view := crossView{
		GeneratedAt: g.now().Format(generatedLayout),
		SpotOnly:    cross.SpotOnly,
		Commentary:  paragraphs(commentary),
	}
	for _, m := range cross.Both {
		view.Both = append(view.Both, matchedView{
			Ticker:        m.Spot.Ticker,
			SpotMarketCap: m.Spot.MarketCap,
			SpotVolume:    m.Spot.Volume,
			SpotVTMR:      m.Spot.VTMRDisplay,
			FuturesVolume: m.Futures.Volume,
			FuturesVTMR:   FormatVTMR(m.Futures.VTMR),
			OISS:          newOISSCell(m.Futures.OIChange),
			Funding:       futures.Funding(m.Futures.FundingRate),
		})
	}
	for _, f := range cross.FuturesOnly {
		view.FuturesOnly = append(view.FuturesOnly, futuresView{
			Ticker:    f.Ticker,
			MarketCap: f.MarketCap,
			Volume:    f.Volume,
			VTMR:      FormatVTMR(f.VTMR),
			OISS:      newOISSCell(f.OIChange),
			Funding:   futures.Funding(f.FundingRate),
		})
	}
	return g.tmpls.ExecuteTemplate(w, "cross_market.html.tmpl", view)
}

func paragraphs(text string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
