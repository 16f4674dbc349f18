package repository

import (
	"context"
	"fmt"
	"time"

	"crypto-volume-toolkit/internal/db"
	"crypto-volume-toolkit/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

// PgxPool is the subset of *pgxpool.Pool used by the repositories.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type ReportRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewReportRepository(pool PgxPool, tracer trace.Tracer) *ReportRepository {
	return &ReportRepository{pool: pool, tracer: tracer}
}

// RunMigrations applies the embedded schema. Every statement is idempotent.
func (r *ReportRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "report-repo.run-migrations")
	defer span.End()

	migrations, err := db.LoadMigrations(db.MigrationsFS)
	if err != nil {
		span.RecordError(err)
		return err
	}
	for _, m := range migrations {
		if _, err := r.pool.Exec(ctx, m.UpSQL); err != nil {
			span.RecordError(err)
			return fmt.Errorf("migration %d_%s: %w", m.Version, m.Name, err)
		}
	}
	return nil
}

// Insert archives a report and fills in its ID and CreatedAt.
func (r *ReportRepository) Insert(ctx context.Context, rep *domain.Report) error {
	_, span := r.tracer.Start(ctx, "report-repo.insert")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`INSERT INTO reports (user_id, kind, file_name, path, token_count)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		rep.UserID, string(rep.Kind), rep.FileName, rep.Path, rep.TokenCount,
	)
	if err != nil {
		span.RecordError(err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		var ts time.Time
		if err := rows.Scan(&rep.ID, &ts); err != nil {
			return err
		}
		rep.CreatedAt = ts.UTC()
	}
	return rows.Err()
}

func (r *ReportRepository) ListByUser(ctx context.Context, uid string, limit int) ([]domain.Report, error) {
	_, span := r.tracer.Start(ctx, "report-repo.list-by-user")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, kind, file_name, path, token_count, created_at
		 FROM reports
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		uid, limit,
	)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer rows.Close()

	reports := []domain.Report{}
	for rows.Next() {
		var rep domain.Report
		var kind string
		var ts time.Time
		if err := rows.Scan(&rep.ID, &rep.UserID, &kind, &rep.FileName, &rep.Path, &rep.TokenCount, &ts); err != nil {
			return nil, err
		}
		rep.Kind = domain.ReportKind(kind)
		rep.CreatedAt = ts.UTC()
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}
