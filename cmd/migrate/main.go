package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"crypto-volume-toolkit/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const usage = "usage: go run ./cmd/migrate [up|down|version] [steps]"

var (
	loadEnvFunc = godotenv.Load
	openPool    = func(ctx context.Context, dsn string) (db.MigrationDB, func(), error) {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return pool, pool.Close, nil
	}
	loadMigrationsFunc = func() ([]db.Migration, error) { return db.LoadMigrations(db.MigrationsFS) }
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string) error {
	_ = loadEnvFunc()

	if len(args) < 1 {
		return errors.New(usage)
	}
	cmd := args[0]
	if cmd != "up" && cmd != "down" && cmd != "version" {
		return fmt.Errorf("unknown command %q. %s", cmd, usage)
	}

	steps := 1
	if cmd == "down" && len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid down steps: %q", args[1])
		}
		steps = n
	}

	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		return errors.New("DATABASE_URL is required")
	}

	migrations, err := loadMigrationsFunc()
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	pool, closePool, err := openPool(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer closePool()

	m := db.NewMigrator(pool, migrations)
	switch cmd {
	case "up":
		n, err := m.Up(ctx)
		if err != nil {
			return fmt.Errorf("apply migrations up: %w", err)
		}
		log.Printf("migrations up complete (%d applied)", n)
	case "down":
		n, err := m.Down(ctx, steps)
		if err != nil {
			return fmt.Errorf("apply migrations down: %w", err)
		}
		log.Printf("migrations down complete (%d rolled back)", n)
	case "version":
		version, name, err := m.Version(ctx)
		if err != nil {
			return fmt.Errorf("read current version: %w", err)
		}
		if version == 0 {
			log.Println("no migrations applied")
			return nil
		}
		log.Printf("current version: %d (%s)", version, name)
	}
	return nil
}
