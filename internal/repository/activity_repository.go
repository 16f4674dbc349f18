package repository

import (
	"context"
	"time"

	"crypto-volume-toolkit/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	ActionRunSpot     = "Run Spot"
	ActionRunAdvanced = "Run Advanced"
)

type ActivityRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewActivityRepository(pool PgxPool, tracer trace.Tracer) *ActivityRepository {
	return &ActivityRepository{pool: pool, tracer: tracer}
}

func (r *ActivityRepository) Log(ctx context.Context, uid, action string) error {
	_, span := r.tracer.Start(ctx, "activity-repo.log")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_log (user_id, action) VALUES ($1, $2)`,
		uid, action,
	)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

// Recent returns the newest activity entries across all users.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]domain.Activity, error) {
	_, span := r.tracer.Start(ctx, "activity-repo.recent")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT user_id, action, created_at
		 FROM activity_log
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer rows.Close()

	var out []domain.Activity
	for rows.Next() {
		var a domain.Activity
		var ts time.Time
		if err := rows.Scan(&a.UserID, &a.Action, &ts); err != nil {
			return nil, err
		}
		a.CreatedAt = ts.UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
