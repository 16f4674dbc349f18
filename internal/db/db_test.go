package db

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
)

func TestInitPostgresDisabledWithoutURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	Pool = nil
	InitPostgres(context.Background())
	if Pool != nil {
		t.Fatal("expected nil pool when DATABASE_URL is unset")
	}
	Close()
}

func TestLoadEmbeddedMigrations(t *testing.T) {
	migrations, err := LoadMigrations(MigrationsFS)
	if err != nil {
		t.Fatalf("unexpected error loading embedded migrations: %v", err)
	}
	if len(migrations) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migrations))
	}
	want := []string{"reports", "activity_log", "user_settings"}
	for i, m := range migrations {
		if m.Version != int64(i+1) || m.Name != want[i] {
			t.Fatalf("unexpected migration %d: %+v", i, m)
		}
		if m.UpSQL == "" || m.DownSQL == "" {
			t.Fatalf("migration %d missing sql", m.Version)
		}
	}
	if !strings.Contains(migrations[2].UpSQL, "user_settings") {
		t.Fatalf("unexpected user_settings sql: %s", migrations[2].UpSQL)
	}
}

func TestLoadMigrationsRejectsBadInput(t *testing.T) {
	tests := map[string]fstest.MapFS{
		"bad name": {
			"migrations/abc.up.sql": {Data: []byte("SELECT 1")},
		},
		"missing down": {
			"migrations/001_a.up.sql": {Data: []byte("SELECT 1")},
		},
		"empty file": {
			"migrations/001_a.up.sql":   {Data: []byte("  ")},
			"migrations/001_a.down.sql": {Data: []byte("SELECT 1")},
		},
		"conflicting names": {
			"migrations/001_a.up.sql":   {Data: []byte("SELECT 1")},
			"migrations/001_b.down.sql": {Data: []byte("SELECT 1")},
		},
		"no files": {},
	}
	for name, fsys := range tests {
		if _, err := LoadMigrations(fsys); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
