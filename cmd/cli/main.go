package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"crypto-volume-toolkit/internal/app"
	"crypto-volume-toolkit/internal/cache"
	"crypto-volume-toolkit/internal/config"
	"crypto-volume-toolkit/internal/db"
	"crypto-volume-toolkit/internal/domain"
	"crypto-volume-toolkit/internal/report"
	"crypto-volume-toolkit/pkg/tracing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/joho/godotenv"
)

const usage = `usage: cvat [-user ID] <command>

commands:
  spot       scan spot markets and write the HTML/XLSX report
  advanced   merge today's spot report with the uploaded futures PDF
  setup      enter API keys interactively
  reset      reset API keys to placeholders`

var (
	loadEnvFunc      = godotenv.Load
	loadConfigFunc   = config.Load
	initPostgresFunc = db.InitPostgres
	initRedisFunc    = cache.InitRedis
	initTracerFunc   = tracing.InitTracer
	newToolkitFunc   = app.New
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("cvat", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	uid := fs.String("user", "local", "workspace user id")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}
	if fs.NArg() != 1 {
		return errors.New(usage)
	}
	cmd := fs.Arg(0)
	switch cmd {
	case "spot", "advanced", "setup", "reset":
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}

	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)
	defer db.Close()
	defer cache.Close()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer tp.Shutdown(ctx)

	tk := newToolkitFunc(app.Options{Config: cfg, Tracer: tracer, Pool: db.Pool, Redis: cache.Client})

	switch cmd {
	case "spot":
		res, err := tk.Spot.Run(ctx, *uid)
		if err != nil {
			return err
		}
		printScan(out, res.Scan)
		fmt.Fprintf(out, "\nHTML report: %s\n", res.HTMLPath)
		if res.XLSXPath != "" {
			fmt.Fprintf(out, "XLSX report: %s\n", res.XLSXPath)
		}
	case "advanced":
		res, err := tk.Analysis.Run(ctx, *uid)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Report: %s\n", res.Path)
		fmt.Fprintf(out, "Both markets: %d  Futures only: %d  Spot only: %d\n",
			len(res.Cross.Both), len(res.Cross.FuturesOnly), len(res.Cross.SpotOnly))
	case "setup":
		current, err := tk.Keys.Keys(ctx, *uid)
		if err != nil {
			log.Printf("load current keys: %v", err)
		}
		keys, err := prompt(in, out, current.Blanked())
		if err != nil {
			return err
		}
		if err := tk.Settings.Save(ctx, *uid, keys); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
		if missing := keys.WithPlaceholders().Missing(); len(missing) > 0 {
			fmt.Fprintf(out, "Saved. Still missing: %s\n", strings.Join(missing, ", "))
		} else {
			fmt.Fprintln(out, "Saved. Setup complete.")
		}
	case "reset":
		if err := tk.Settings.Reset(ctx, *uid); err != nil {
			return fmt.Errorf("reset settings: %w", err)
		}
		fmt.Fprintln(out, "API keys reset to placeholders.")
	}
	return nil
}

// prompt asks for every key, keeping the current value on an empty line.
func prompt(in io.Reader, out io.Writer, current domain.APIKeys) (domain.APIKeys, error) {
	sc := bufio.NewScanner(in)
	keys := current
	fields := []struct {
		label string
		value *string
	}{
		{"CoinMarketCap API key", &keys.CMC},
		{"LiveCoinWatch API key", &keys.LiveCoinWatch},
		{"CoinRankings API key", &keys.CoinRankings},
		{"html2pdf.app API key (optional)", &keys.HTML2PDF},
		{"CoinAlyze VTMR URL", &keys.VTMRURL},
	}
	for _, f := range fields {
		if *f.value != "" {
			fmt.Fprintf(out, "%s [%s]: ", f.label, mask(*f.value))
		} else {
			fmt.Fprintf(out, "%s: ", f.label)
		}
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return keys, fmt.Errorf("read input: %w", err)
			}
			fmt.Fprintln(out)
			break
		}
		if v := strings.TrimSpace(sc.Text()); v != "" {
			*f.value = v
		}
	}
	return keys, nil
}

// mask hides all but the last four characters of a secret. URLs are shown
// as is.
func mask(v string) string {
	if strings.HasPrefix(v, "http") || len(v) <= 4 {
		return v
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}

func printScan(out io.Writer, scan *domain.SpotScan) {
	if scan == nil || len(scan.Tokens) == 0 {
		fmt.Fprintln(out, "No high-volume tokens found.")
		return
	}
	rows := make([][]string, 0, len(scan.Tokens))
	for i, t := range scan.Tokens {
		size := ""
		if t.LargeCap {
			size = "large"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			t.Symbol,
			report.FormatVTMR(t.VTMR),
			"$" + report.ShortNum(t.Volume),
			"$" + report.ShortNum(t.MarketCap),
			strconv.Itoa(t.SourceCount),
			size,
		})
	}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "Symbol", "VTMR", "Volume", "Market Cap", "Sources", "Cap").
		Rows(rows...)
	fmt.Fprintln(out, tbl.String())
	fmt.Fprintf(out, "%d tokens, %d at 2x+ volume, %d large caps, peak %s\n",
		len(scan.Tokens), scan.HighVolumeCount(), scan.LargeCapCount(), report.FormatVTMR(scan.PeakVTMR()))
}
