package report

import (
	"fmt"
	"io"

	"crypto-volume-toolkit/internal/domain"

	"github.com/xuri/excelize/v2"
)

const spotSheet = "Spot Tokens"

var spotColumns = []any{"Rank", "Ticker", "Market Cap", "Volume 24h", "Spot VTMR", "Verifications", "Large Cap"}

// SpotXLSX writes the spot scan as a workbook with one "Spot Tokens" sheet.
// Market cap and volume are stored as numbers so they stay sortable.
func (g *Generator) SpotXLSX(w io.Writer, scan *domain.SpotScan) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), spotSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(spotSheet, "A1", &spotColumns); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(spotColumns), 1)
	if err := f.SetCellStyle(spotSheet, "A1", lastHeader, bold); err != nil {
		return err
	}

	for i, t := range scan.Tokens {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		largeCap := "No"
		if t.LargeCap {
			largeCap = "Yes"
		}
		row := []any{fmt.Sprintf("#%d", i+1), t.Symbol, t.MarketCap, t.Volume, FormatVTMR(t.VTMR), t.SourceCount, largeCap}
		if err := f.SetSheetRow(spotSheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(spotSheet, "B", "D", 16); err != nil {
		return err
	}
	return f.Write(w)
}
