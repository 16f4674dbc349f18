package progress

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"crypto-volume-toolkit/internal/domain"
)

// MaxLines is the number of log lines kept per user.
const MaxLines = 500

// milestones map log text onto progress updates; the first match wins.
var milestones = []struct {
	keywords []string
	progress domain.Progress
}{
	{[]string{"scanning coingecko"}, domain.Progress{Percent: 10, Text: "Fetching CoinGecko Data...", Status: domain.StatusActive}},
	{[]string{"scanning livecoinwatch"}, domain.Progress{Percent: 30, Text: "Fetching LiveCoinWatch...", Status: domain.StatusActive}},
	{[]string{"parsing spot file"}, domain.Progress{Percent: 50, Text: "Analyzing Spot Volumes...", Status: domain.StatusActive}},
	{[]string{"parsing futures pdf"}, domain.Progress{Percent: 70, Text: "Parsing Futures PDF...", Status: domain.StatusActive}},
	{[]string{"converting to pdf"}, domain.Progress{Percent: 90, Text: "Compiling Report...", Status: domain.StatusActive}},
	{[]string{"completed", "pdf saved"}, domain.Progress{Percent: 100, Text: "Task Completed Successfully", Status: domain.StatusSuccess}},
	{[]string{"error"}, domain.Progress{Percent: 0, Text: "Error Occurred", Status: domain.StatusError}},
}

type userState struct {
	progress domain.Progress
	lines    []string
	// dropped counts lines evicted from the front so indexes stay stable.
	dropped int
}

// Tracker keeps live logs and progress for each user's background task.
type Tracker struct {
	mu    sync.Mutex
	users map[string]*userState
}

func NewTracker() *Tracker {
	return &Tracker{users: make(map[string]*userState)}
}

func (t *Tracker) state(uid string) *userState {
	s, ok := t.users[uid]
	if !ok {
		s = &userState{progress: domain.IdleProgress()}
		t.users[uid] = s
	}
	return s
}

// Begin clears the user's logs and marks a task as started.
func (t *Tracker) Begin(uid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state(uid)
	s.dropped += len(s.lines)
	s.lines = nil
	s.progress = domain.Progress{Percent: 5, Text: "Starting...", Status: domain.StatusActive}
}

// Logf records a log line for uid and advances progress when the line
// matches a milestone.
func (t *Tracker) Logf(uid, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	log.Printf("[%s] %s", uid, line)
	if strings.TrimSpace(line) == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state(uid)
	s.lines = append(s.lines, line)
	if over := len(s.lines) - MaxLines; over > 0 {
		s.lines = append([]string(nil), s.lines[over:]...)
		s.dropped += over
	}

	lower := strings.ToLower(line)
	for _, m := range milestones {
		for _, k := range m.keywords {
			if strings.Contains(lower, k) {
				s.progress = m.progress
				return
			}
		}
	}
}

// Logger returns a printf-style func bound to uid.
func (t *Tracker) Logger(uid string) func(string, ...any) {
	return func(format string, args ...any) { t.Logf(uid, format, args...) }
}

// Finish marks the task as done; a nil err is success.
func (t *Tracker) Finish(uid string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state(uid)
	if err != nil {
		s.progress = domain.Progress{Percent: 0, Text: "Error Occurred", Status: domain.StatusError}
		return
	}
	s.progress = domain.Progress{Percent: 100, Text: "Task Completed Successfully", Status: domain.StatusSuccess}
}

func (t *Tracker) Progress(uid string) domain.Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state(uid).progress
}

// Logs returns the lines logged after index last and the index to pass on
// the next call.
func (t *Tracker) Logs(uid string, last int) ([]string, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state(uid)
	end := s.dropped + len(s.lines)
	if last < s.dropped {
		last = s.dropped
	}
	if last >= end {
		return []string{}, end
	}
	out := make([]string, end-last)
	copy(out, s.lines[last-s.dropped:])
	return out, end
}
