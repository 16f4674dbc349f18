package domain

// SpotRow is a token read back from a saved spot report.
// Market cap and volume keep the formatting of the source file.
type SpotRow struct {
	Ticker      string  `json:"ticker"`
	MarketCap   string  `json:"market_cap"`
	Volume      string  `json:"volume"`
	VTMR        float64 `json:"vtmr"`
	VTMRDisplay string  `json:"vtmr_display"`
}

// FuturesToken is one row of a CoinAlyze futures export.
// OIChange and FundingRate hold the raw cell text and are empty when the
// column was missing for that row.
type FuturesToken struct {
	Ticker      string  `json:"ticker"`
	Name        string  `json:"name"`
	MarketCap   string  `json:"market_cap"`
	Volume      string  `json:"volume"`
	VTMR        float64 `json:"vtmr"`
	OIChange    string  `json:"oi_change,omitempty"`
	FundingRate string  `json:"funding_rate,omitempty"`
}
