package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"crypto-volume-toolkit/internal/domain"
	"crypto-volume-toolkit/internal/job"
	"crypto-volume-toolkit/internal/report"
	"crypto-volume-toolkit/internal/service"
	"crypto-volume-toolkit/internal/workspace"

	"go.opentelemetry.io/otel/trace"
	tele "gopkg.in/telebot.v3"
)

// TopTokens is how many tokens /spot lists.
const TopTokens = 10

type SpotRunner interface {
	Run(ctx context.Context, uid string) (*service.SpotResult, error)
}

type TaskStarter interface {
	Start(uid, name string, fn func(ctx context.Context) error) error
}

type ReportFinder interface {
	Latest(uid string) (workspace.File, error)
}

type ProgressReader interface {
	Progress(uid string) domain.Progress
}

type Deps struct {
	Tracer   trace.Tracer
	Spot     SpotRunner
	Tasks    TaskStarter
	Reports  ReportFinder
	Progress ProgressReader
}

// Commands holds the bot's command handlers.
type Commands struct {
	tracer   trace.Tracer
	spot     SpotRunner
	tasks    TaskStarter
	reports  ReportFinder
	progress ProgressReader
}

func NewCommands(d Deps) *Commands {
	return &Commands{
		tracer:   d.Tracer,
		spot:     d.Spot,
		tasks:    d.Tasks,
		reports:  d.Reports,
		progress: d.Progress,
	}
}

// ChatUserID is the workspace user for a Telegram chat.
func ChatUserID(chatID int64) string {
	return fmt.Sprintf("tg-%d", chatID)
}

func StartTelegramBot(cmds *Commands) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	cmds.Register(b)

	log.Println("Telegram bot started")
	go b.Start()
}

// Register wires the commands onto b.
func (cmds *Commands) Register(b *tele.Bot) {
	b.Handle("/ping", cmds.Ping)
	b.Handle("/spot", cmds.Spot)
	b.Handle("/report", cmds.Report)
	b.Handle("/progress", cmds.Progress)
}

func (cmds *Commands) Ping(c tele.Context) error {
	return c.Send("pong")
}

// Spot starts a background scan for the chat and replies with the result
// once it finishes.
func (cmds *Commands) Spot(c tele.Context) error {
	_, span := cmds.tracer.Start(context.Background(), "bot.spot")
	defer span.End()

	uid := ChatUserID(c.Chat().ID)
	err := cmds.tasks.Start(uid, "Spot scan", func(ctx context.Context) error {
		res, err := cmds.spot.Run(ctx, uid)
		if err != nil {
			if sendErr := c.Send(fmt.Sprintf("Spot scan failed: %v", err)); sendErr != nil {
				log.Printf("telegram send to %s: %v", uid, sendErr)
			}
			return err
		}
		if sendErr := c.Send(FormatScan(res.Scan, TopTokens)); sendErr != nil {
			log.Printf("telegram send to %s: %v", uid, sendErr)
		}
		return nil
	})
	if errors.Is(err, job.ErrTaskRunning) {
		return c.Send("A task is already running. Check /progress.")
	}
	if err != nil {
		span.RecordError(err)
		return c.Send(fmt.Sprintf("Could not start scan: %v", err))
	}
	return c.Send("Scanning spot markets, results follow shortly...")
}

// Report sends the newest analysis PDF.
func (cmds *Commands) Report(c tele.Context) error {
	uid := ChatUserID(c.Chat().ID)
	latest, err := cmds.reports.Latest(uid)
	if errors.Is(err, workspace.ErrNotFound) {
		return c.Send("No analysis report yet. Upload a futures PDF and run Advanced Analysis first.")
	}
	if err != nil {
		return c.Send(fmt.Sprintf("Could not load report: %v", err))
	}
	return c.Send(&tele.Document{
		File:     tele.FromDisk(latest.Path),
		FileName: latest.Name,
		Caption:  "Latest cross-market analysis",
	})
}

func (cmds *Commands) Progress(c tele.Context) error {
	p := cmds.progress.Progress(ChatUserID(c.Chat().ID))
	return c.Send(fmt.Sprintf("%s (%d%%)", p.Text, p.Percent))
}

// FormatScan renders a summary line and the top n tokens of scan.
func FormatScan(scan *domain.SpotScan, n int) string {
	if scan == nil || len(scan.Tokens) == 0 {
		return "No high-volume tokens found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Spot scan %s\n", scan.GeneratedAt.Format("02-01-2006 15:04"))
	fmt.Fprintf(&b, "Tokens: %d | 2x+ volume: %d | Large caps: %d | Peak VTMR: %s\n\n",
		len(scan.Tokens), scan.HighVolumeCount(), scan.LargeCapCount(), report.FormatVTMR(scan.PeakVTMR()))
	for i, t := range scan.Top(n) {
		fmt.Fprintf(&b, "%d. %s  VTMR %s  Vol $%s  MC $%s\n",
			i+1, t.Symbol, report.FormatVTMR(t.VTMR), report.ShortNum(t.Volume), report.ShortNum(t.MarketCap))
	}
	return strings.TrimRight(b.String(), "\n")
}
