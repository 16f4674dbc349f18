package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"crypto-volume-toolkit/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

func noopTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

type fakeRows struct {
	data [][]any
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Values() ([]any, error) { return r.data[r.pos-1], nil }

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(row) != len(dest) {
		return fmt.Errorf("scan: %d columns into %d targets", len(row), len(dest))
	}
	for i, v := range row {
		target := reflect.ValueOf(dest[i]).Elem()
		target.Set(reflect.ValueOf(v).Convert(target.Type()))
	}
	return nil
}

type execCall struct {
	sql  string
	args []any
}

type fakePool struct {
	execs    []execCall
	queries  []execCall
	rows     [][]any
	execErr  error
	queryErr error
}

func (p *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.execs = append(p.execs, execCall{sql, args})
	return pgconn.CommandTag{}, p.execErr
}

func (p *fakePool) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.queries = append(p.queries, execCall{sql, args})
	if p.queryErr != nil {
		return nil, p.queryErr
	}
	return &fakeRows{data: p.rows}, nil
}

func TestReportRepositoryRunMigrations(t *testing.T) {
	pool := &fakePool{}
	repo := NewReportRepository(pool, noopTracer())
	if err := repo.RunMigrations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool.execs) != 3 {
		t.Fatalf("expected 3 schema statements, got %d", len(pool.execs))
	}
	for i, table := range []string{"reports", "activity_log", "user_settings"} {
		if !strings.Contains(pool.execs[i].sql, "CREATE TABLE IF NOT EXISTS "+table) {
			t.Fatalf("statement %d does not create %s: %s", i, table, pool.execs[i].sql)
		}
	}

	pool.execErr = errors.New("denied")
	if err := repo.RunMigrations(context.Background()); err == nil {
		t.Fatal("expected migration error")
	}
}

func TestReportRepositoryInsert(t *testing.T) {
	created := time.Date(2026, 1, 2, 10, 0, 0, 0, time.FixedZone("X", 3600))
	pool := &fakePool{rows: [][]any{{int64(42), created}}}
	repo := NewReportRepository(pool, noopTracer())

	rep := &domain.Report{UserID: "alice", Kind: domain.ReportAdvanced, FileName: "a.pdf", Path: "/w/a.pdf", TokenCount: 7}
	if err := repo.Insert(context.Background(), rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.ID != 42 || !rep.CreatedAt.Equal(created) || rep.CreatedAt.Location() != time.UTC {
		t.Fatalf("unexpected report after insert: %+v", rep)
	}
	args := pool.queries[0].args
	if args[0] != "alice" || args[1] != "advanced" || args[4] != 7 {
		t.Fatalf("unexpected insert args: %v", args)
	}
}

func TestReportRepositoryListByUser(t *testing.T) {
	now := time.Now()
	pool := &fakePool{rows: [][]any{
		{int64(2), "bob", "spot", "b.html", "/w/b.html", 3, now},
		{int64(1), "bob", "advanced", "a.pdf", "/w/a.pdf", 5, now.Add(-time.Hour)},
	}}
	repo := NewReportRepository(pool, noopTracer())

	reports, err := repo.ListByUser(context.Background(), "bob", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 2 || reports[0].Kind != domain.ReportSpot || reports[1].TokenCount != 5 {
		t.Fatalf("unexpected reports: %+v", reports)
	}
	if pool.queries[0].args[1] != 50 {
		t.Fatalf("expected default limit 50, got %v", pool.queries[0].args[1])
	}

	pool.queryErr = errors.New("down")
	if _, err := repo.ListByUser(context.Background(), "bob", 5); err == nil {
		t.Fatal("expected query error")
	}
}

func TestActivityRepository(t *testing.T) {
	now := time.Now()
	pool := &fakePool{rows: [][]any{{"carol", ActionRunSpot, now}}}
	repo := NewActivityRepository(pool, noopTracer())

	if err := repo.Log(context.Background(), "carol", ActionRunAdvanced); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := pool.execs[0].args; got[0] != "carol" || got[1] != "Run Advanced" {
		t.Fatalf("unexpected log args: %v", got)
	}

	recent, err := repo.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recent) != 1 || recent[0].Action != "Run Spot" || recent[0].UserID != "carol" {
		t.Fatalf("unexpected activity: %+v", recent)
	}
}

func TestSettingsRepository(t *testing.T) {
	pool := &fakePool{}
	repo := NewSettingsRepository(pool, noopTracer())
	ctx := context.Background()

	keys, err := repo.Load(ctx, "dave")
	if err != nil || keys != domain.PlaceholderKeys() {
		t.Fatalf("expected placeholders for unknown user, got %+v %v", keys, err)
	}

	pool.rows = [][]any{{"cmc", "", "cr", "", "https://coinalyze.net/x"}}
	keys, err = repo.Load(ctx, "dave")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if keys.CMC != "cmc" || keys.LiveCoinWatch != domain.PlaceholderLCW || keys.VTMRURL != "https://coinalyze.net/x" {
		t.Fatalf("unexpected keys: %+v", keys)
	}

	if err := repo.Save(ctx, "dave", domain.APIKeys{CMC: "new"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args := pool.execs[0].args
	if args[0] != "dave" || args[1] != "new" || args[2] != domain.PlaceholderLCW {
		t.Fatalf("unexpected save args: %v", args)
	}

	if err := repo.Reset(ctx, "dave"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args := pool.execs[1].args; args[1] != domain.PlaceholderCMC {
		t.Fatalf("expected reset to store placeholders, got %v", args)
	}
}
