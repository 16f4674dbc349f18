package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"crypto-volume-toolkit/internal/domain"
	"crypto-volume-toolkit/internal/report"
	"crypto-volume-toolkit/internal/service"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Scanner runs spot scans and remembers the latest one per user.
type Scanner interface {
	Run(ctx context.Context, uid string) (*service.SpotResult, error)
	LatestScan(uid string) (*domain.SpotScan, bool)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0ecb81")).Padding(0, 1)
	statStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#848e9c"))
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#eaecef"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f6465d"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5e6673"))
	boxStyle   = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#2b3139"))
)

type scanDoneMsg struct {
	scan *domain.SpotScan
	err  error
}

// Model shows a user's latest spot scan as a table.
type Model struct {
	ctx     context.Context
	scanner Scanner
	uid     string

	table    table.Model
	scan     *domain.SpotScan
	scanning bool
	err      error
	width    int
	height   int
}

func NewModel(ctx context.Context, scanner Scanner, uid string) *Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#2b3139")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#000000")).
		Background(lipgloss.Color("#0ecb81"))
	t.SetStyles(styles)

	m := &Model{ctx: ctx, scanner: scanner, uid: uid, table: t}
	if scan, ok := scanner.LatestScan(uid); ok {
		m.setScan(scan)
	}
	return m
}

// Init starts a scan when there is nothing to show yet.
func (m *Model) Init() tea.Cmd {
	if m.scan != nil {
		return nil
	}
	m.scanning = true
	return m.scanCmd()
}

func (m *Model) scanCmd() tea.Cmd {
	ctx, scanner, uid := m.ctx, m.scanner, m.uid
	return func() tea.Msg {
		res, err := scanner.Run(ctx, uid)
		if err != nil {
			return scanDoneMsg{err: err}
		}
		return scanDoneMsg{scan: res.Scan}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.scanning {
				return m, nil
			}
			m.scanning = true
			m.err = nil
			return m, m.scanCmd()
		}
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil
	case scanDoneMsg:
		m.scanning = false
		m.err = msg.err
		if msg.err == nil {
			m.setScan(msg.scan)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// SetSize fits the table to the terminal.
func (m *Model) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height
	m.table.SetColumns(columns(width))
	if h := height - 9; h > 3 {
		m.table.SetHeight(h)
	}
}

func (m *Model) setScan(scan *domain.SpotScan) {
	m.scan = scan
	if scan == nil {
		m.table.SetRows(nil)
		return
	}
	rows := make([]table.Row, 0, len(scan.Tokens))
	for i, t := range scan.Tokens {
		size := ""
		if t.LargeCap {
			size = "L"
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			t.Symbol,
			report.FormatVTMR(t.VTMR),
			"$" + report.ShortNum(t.Volume),
			"$" + report.ShortNum(t.MarketCap),
			strconv.Itoa(t.SourceCount),
			size,
		})
	}
	m.table.SetRows(rows)
}

func columns(width int) []table.Column {
	sym := 10
	if width > 90 {
		sym = 14
	}
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Symbol", Width: sym},
		{Title: "VTMR", Width: 8},
		{Title: "Volume", Width: 12},
		{Title: "Market Cap", Width: 12},
		{Title: "Src", Width: 4},
		{Title: "Cap", Width: 4},
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("SPOT VOLUME TRACKER"))
	b.WriteString("\n")
	b.WriteString(m.summary())
	b.WriteString("\n\n")

	switch {
	case m.scan == nil && m.scanning:
		b.WriteString(statStyle.Render("Scanning spot markets..."))
	case m.scan == nil:
		b.WriteString(statStyle.Render("No scan yet. Press r to scan."))
	case len(m.scan.Tokens) == 0:
		b.WriteString(statStyle.Render("No high-volume tokens found."))
	default:
		b.WriteString(boxStyle.Render(m.table.View()))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errStyle.Render("Scan failed: " + m.err.Error()))
		b.WriteString("\n")
	}
	help := "r rescan • q quit • ↑/↓ scroll"
	if m.scanning && m.scan != nil {
		help = "scanning... • " + help
	}
	b.WriteString(helpStyle.Render(help))
	return b.String()
}

func (m *Model) summary() string {
	if m.scan == nil {
		return statStyle.Render("user " + m.uid)
	}
	stat := func(label, value string) string {
		return statStyle.Render(label+" ") + valueStyle.Render(value)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		stat("Tokens", strconv.Itoa(len(m.scan.Tokens))), "   ",
		stat("2x+", strconv.Itoa(m.scan.HighVolumeCount())), "   ",
		stat("Large caps", strconv.Itoa(m.scan.LargeCapCount())), "   ",
		stat("Peak", report.FormatVTMR(m.scan.PeakVTMR())), "   ",
		stat("At", m.scan.GeneratedAt.Format("15:04")),
		statStyle.Render(fmt.Sprintf("   (%s)", m.uid)),
	)
}
