package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"crypto-volume-toolkit/internal/domain"
	"crypto-volume-toolkit/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

type stubScanner struct {
	latest *domain.SpotScan
	next   *domain.SpotScan
	err    error
	runs   int
}

func (s *stubScanner) Run(context.Context, string) (*service.SpotResult, error) {
	s.runs++
	if s.err != nil {
		return nil, s.err
	}
	return &service.SpotResult{Scan: s.next}, nil
}

func (s *stubScanner) LatestScan(string) (*domain.SpotScan, bool) {
	return s.latest, s.latest != nil
}

func scanOf(symbols ...string) *domain.SpotScan {
	scan := &domain.SpotScan{GeneratedAt: time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)}
	for _, s := range symbols {
		scan.Tokens = append(scan.Tokens, domain.SpotToken{Symbol: s, MarketCap: 1_000_000, Volume: 3_000_000, VTMR: 3, SourceCount: 2})
	}
	return scan
}

func TestInitScansWhenEmpty(t *testing.T) {
	sc := &stubScanner{next: scanOf("AAA", "BBB")}
	m := NewModel(context.Background(), sc, "ssh-alice")

	cmd := m.Init()
	if cmd == nil {
		t.Fatal("expected a scan command")
	}
	if !strings.Contains(m.View(), "Scanning spot markets") {
		t.Fatalf("expected scanning view, got %s", m.View())
	}

	m.Update(cmd())
	if sc.runs != 1 || m.scanning {
		t.Fatalf("expected one finished run, runs=%d scanning=%v", sc.runs, m.scanning)
	}
	view := m.View()
	if !strings.Contains(view, "AAA") || !strings.Contains(view, "BBB") || !strings.Contains(view, "3.0x") {
		t.Fatalf("expected tokens in table, got %s", view)
	}
}

func TestInitUsesLatestScan(t *testing.T) {
	sc := &stubScanner{latest: scanOf("CCC")}
	m := NewModel(context.Background(), sc, "u")
	if cmd := m.Init(); cmd != nil {
		t.Fatal("expected no scan when a latest scan exists")
	}
	if !strings.Contains(m.View(), "CCC") {
		t.Fatalf("expected latest scan rendered, got %s", m.View())
	}
}

func TestRescanKeyAndError(t *testing.T) {
	sc := &stubScanner{latest: scanOf("CCC"), err: errors.New("all providers failed")}
	m := NewModel(context.Background(), sc, "u")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil || !m.scanning {
		t.Fatal("expected rescan to start")
	}
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")}); again != nil {
		t.Fatal("expected no second scan while one is running")
	}

	m.Update(cmd())
	view := m.View()
	if !strings.Contains(view, "Scan failed: all providers failed") || !strings.Contains(view, "CCC") {
		t.Fatalf("expected error with previous scan kept, got %s", view)
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		m := NewModel(context.Background(), &stubScanner{latest: scanOf("A")}, "u")
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", key.String())
		}
	}
}

func TestEmptyScanAndResize(t *testing.T) {
	m := NewModel(context.Background(), &stubScanner{latest: scanOf()}, "u")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.width != 120 || m.height != 40 {
		t.Fatalf("expected size to be stored, got %dx%d", m.width, m.height)
	}
	if !strings.Contains(m.View(), "No high-volume tokens found.") {
		t.Fatalf("unexpected view: %s", m.View())
	}
}
