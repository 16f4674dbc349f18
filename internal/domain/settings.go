package domain

import "strings"

const (
	PlaceholderCMC      = "CONFIG_REQUIRED_CMC"
	PlaceholderLCW      = "CONFIG_REQUIRED_LCW"
	PlaceholderCR       = "CONFIG_REQUIRED_CR"
	PlaceholderHTML2PDF = "CONFIG_REQUIRED_HTML2PDF"
	PlaceholderVTMRURL  = "CONFIG_VTMR_URL"
)

// APIKeys are the per-user credentials collected by the setup wizard.
type APIKeys struct {
	CMC           string `json:"CMC_API_KEY"`
	LiveCoinWatch string `json:"LIVECOINWATCH_API_KEY"`
	CoinRankings  string `json:"COINRANKINGS_API_KEY"`
	HTML2PDF      string `json:"HTML2PDF_API_KEY"`
	VTMRURL       string `json:"COINALYZE_VTMR_URL"`
}

// PlaceholderKeys is the factory reset state.
func PlaceholderKeys() APIKeys {
	return APIKeys{
		CMC:           PlaceholderCMC,
		LiveCoinWatch: PlaceholderLCW,
		CoinRankings:  PlaceholderCR,
		HTML2PDF:      PlaceholderHTML2PDF,
		VTMRURL:       PlaceholderVTMRURL,
	}
}

// Usable reports whether v is a real value rather than blank or a placeholder.
func Usable(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	return !strings.Contains(v, "CONFIG_") && !strings.Contains(v, "YOUR_")
}

// Configured is true once every key required for the spot scan and the
// futures workflow is set. The PDF key is optional.
func (k APIKeys) Configured() bool {
	return Usable(k.CMC) && Usable(k.LiveCoinWatch) && Usable(k.CoinRankings) && Usable(k.VTMRURL)
}

// Missing lists the setup fields that still need a value.
func (k APIKeys) Missing() []string {
	var out []string
	if !Usable(k.CMC) {
		out = append(out, "CMC_API_KEY")
	}
	if !Usable(k.LiveCoinWatch) {
		out = append(out, "LIVECOINWATCH_API_KEY")
	}
	if !Usable(k.CoinRankings) {
		out = append(out, "COINRANKINGS_API_KEY")
	}
	if !Usable(k.VTMRURL) {
		out = append(out, "COINALYZE_VTMR_URL")
	}
	return out
}

// WithPlaceholders replaces blank fields with their placeholder.
func (k APIKeys) WithPlaceholders() APIKeys {
	fill := func(v, placeholder string) string {
		if strings.TrimSpace(v) == "" {
			return placeholder
		}
		return strings.TrimSpace(v)
	}
	return APIKeys{
		CMC:           fill(k.CMC, PlaceholderCMC),
		LiveCoinWatch: fill(k.LiveCoinWatch, PlaceholderLCW),
		CoinRankings:  fill(k.CoinRankings, PlaceholderCR),
		HTML2PDF:      fill(k.HTML2PDF, PlaceholderHTML2PDF),
		VTMRURL:       fill(k.VTMRURL, PlaceholderVTMRURL),
	}
}

// Blanked clears placeholder values so forms render empty inputs.
func (k APIKeys) Blanked() APIKeys {
	blank := func(v string) string {
		if !Usable(v) {
			return ""
		}
		return v
	}
	return APIKeys{
		CMC:           blank(k.CMC),
		LiveCoinWatch: blank(k.LiveCoinWatch),
		CoinRankings:  blank(k.CoinRankings),
		HTML2PDF:      blank(k.HTML2PDF),
		VTMRURL:       blank(k.VTMRURL),
	}
}

// Merge fills fields that are not usable in k from fallback.
func (k APIKeys) Merge(fallback APIKeys) APIKeys {
	pick := func(v, fb string) string {
		if Usable(v) {
			return v
		}
		if Usable(fb) {
			return fb
		}
		return v
	}
	return APIKeys{
		CMC:           pick(k.CMC, fallback.CMC),
		LiveCoinWatch: pick(k.LiveCoinWatch, fallback.LiveCoinWatch),
		CoinRankings:  pick(k.CoinRankings, fallback.CoinRankings),
		HTML2PDF:      pick(k.HTML2PDF, fallback.HTML2PDF),
		VTMRURL:       pick(k.VTMRURL, fallback.VTMRURL),
	}
}
