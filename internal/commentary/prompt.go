package commentary

import (
	"fmt"
	"strings"

	"crypto-volume-toolkit/internal/analysis"
	"crypto-volume-toolkit/internal/futures"
)

const analystBrief = `You are a crypto market analyst annotating a volume report.

Definitions:
- VTMR is 24h volume divided by market cap. Above 1.0x means the token traded more than its whole market cap in a day.
- OISS is the Open Interest Signal Score. It rates the 24h open interest change from 0 (Exiting) to 5 (Strong); a high score means fresh leverage is entering.
- Funding rate is what longs pay shorts. Positive means crowded longs, negative means crowded shorts.

Rules:
- Write three to five plain sentences. No headings, no bullet points.
- Only mention tickers that appear in the data.
- Point out tokens where high spot and futures VTMR line up with rising open interest, and flag extreme funding.
- Do not give financial advice or price targets.`

func BuildSystemPrompt() string {
	return analystBrief
}

// FormatCrossMarket renders the top rows of each table as compact text.
func FormatCrossMarket(cross analysis.CrossMarket, maxRows int) string {
	var sb strings.Builder

	if len(cross.Both) > 0 {
		sb.WriteString("Tokens on both spot and futures:\n")
		for i, row := range cross.Both {
			if i == maxRows {
				break
			}
			f := row.Futures
			sb.WriteString(fmt.Sprintf("  %s spot=%s futures=%.2fx OI=%s OISS=%s funding=%s\n",
				row.Spot.Ticker, row.Spot.VTMRDisplay, f.VTMR, orDash(f.OIChange), oissText(f.OIChange), futures.Funding(f.FundingRate).Value))
		}
	}

	if len(cross.FuturesOnly) > 0 {
		sb.WriteString("Futures-only tokens:\n")
		for i, f := range cross.FuturesOnly {
			if i == maxRows {
				break
			}
			sb.WriteString(fmt.Sprintf("  %s futures=%.2fx OI=%s funding=%s\n",
				f.Ticker, f.VTMR, orDash(f.OIChange), futures.Funding(f.FundingRate).Value))
		}
	}

	if len(cross.SpotOnly) > 0 {
		sb.WriteString("Spot-only tokens:\n")
		for i, s := range cross.SpotOnly {
			if i == maxRows {
				break
			}
			sb.WriteString(fmt.Sprintf("  %s spot=%.2fx\n", s.Ticker, s.VTMR))
		}
	}

	if sb.Len() == 0 {
		return "No cross-market data available."
	}
	return sb.String()
}

func oissText(raw string) string {
	sig, ok := futures.OISS(raw)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%d/5 %s", sig.Score, sig.Label)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
