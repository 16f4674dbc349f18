package provider

import (
	"crypto-volume-toolkit/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// Build returns the providers the given keys allow. CoinGecko is always
// included; the keyed providers are skipped when their key is missing or a
// placeholder, and their display names are returned in skipped.
func Build(keys domain.APIKeys, coingeckoKey string, tracer trace.Tracer) (providers []ListingProvider, skipped []string) {
	providers = append(providers, NewCoinGeckoProvider(tracer, coingeckoKey))

	if domain.Usable(keys.CMC) {
		providers = append(providers, NewCoinMarketCapProvider(tracer, keys.CMC))
	} else {
		skipped = append(skipped, "CoinMarketCap")
	}

	if domain.Usable(keys.LiveCoinWatch) {
		providers = append(providers, NewLiveCoinWatchProvider(tracer, keys.LiveCoinWatch))
	} else {
		skipped = append(skipped, "LiveCoinWatch")
	}

	if domain.Usable(keys.CoinRankings) {
		providers = append(providers, NewCoinRankingsProvider(tracer, keys.CoinRankings))
	} else {
		skipped = append(skipped, "CoinRankings")
	}

	return providers, skipped
}
