package repository

import (
	"context"

	"crypto-volume-toolkit/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// SettingsRepository stores setup wizard keys in user_settings. It satisfies
// settings.Store.
type SettingsRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSettingsRepository(pool PgxPool, tracer trace.Tracer) *SettingsRepository {
	return &SettingsRepository{pool: pool, tracer: tracer}
}

func (r *SettingsRepository) Load(ctx context.Context, uid string) (domain.APIKeys, error) {
	_, span := r.tracer.Start(ctx, "settings-repo.load")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT cmc_api_key, livecoinwatch_api_key, coinrankings_api_key, html2pdf_api_key, coinalyze_vtmr_url
		 FROM user_settings
		 WHERE user_id = $1`,
		uid,
	)
	if err != nil {
		span.RecordError(err)
		return domain.PlaceholderKeys(), err
	}
	defer rows.Close()

	if !rows.Next() {
		return domain.PlaceholderKeys(), rows.Err()
	}
	var k domain.APIKeys
	if err := rows.Scan(&k.CMC, &k.LiveCoinWatch, &k.CoinRankings, &k.HTML2PDF, &k.VTMRURL); err != nil {
		return domain.PlaceholderKeys(), err
	}
	return k.WithPlaceholders(), nil
}

func (r *SettingsRepository) Save(ctx context.Context, uid string, keys domain.APIKeys) error {
	_, span := r.tracer.Start(ctx, "settings-repo.save")
	defer span.End()

	k := keys.WithPlaceholders()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_settings (user_id, cmc_api_key, livecoinwatch_api_key, coinrankings_api_key, html2pdf_api_key, coinalyze_vtmr_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id) DO UPDATE SET
		     cmc_api_key = EXCLUDED.cmc_api_key,
		     livecoinwatch_api_key = EXCLUDED.livecoinwatch_api_key,
		     coinrankings_api_key = EXCLUDED.coinrankings_api_key,
		     html2pdf_api_key = EXCLUDED.html2pdf_api_key,
		     coinalyze_vtmr_url = EXCLUDED.coinalyze_vtmr_url,
		     updated_at = NOW()`,
		uid, k.CMC, k.LiveCoinWatch, k.CoinRankings, k.HTML2PDF, k.VTMRURL,
	)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *SettingsRepository) Reset(ctx context.Context, uid string) error {
	return r.Save(ctx, uid, domain.PlaceholderKeys())
}
