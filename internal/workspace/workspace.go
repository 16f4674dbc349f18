package workspace

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	ErrInputsMissing = errors.New("you need a CoinAlyze futures PDF and spot market data; generate spot data and upload the futures PDF first")
	ErrInvalidFile   = errors.New("invalid file")
	ErrNotFound      = errors.New("report not found")
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// reportExts are the artifact types listed on the dashboard.
var reportExts = map[string]bool{".pdf": true, ".html": true, ".xlsx": true}

// Workspace stores per-user uploads and generated reports under one root.
type Workspace struct {
	root string
	now  func() time.Time
}

func New(root string) *Workspace {
	return &Workspace{root: root, now: time.Now}
}

// SanitizeUserID maps a user id onto a safe directory name.
func SanitizeUserID(uid string) string {
	uid = unsafeChars.ReplaceAllString(strings.TrimSpace(uid), "_")
	if uid == "" {
		return "local"
	}
	return uid
}

// Dir returns the user's directory, creating it when needed.
func (w *Workspace) Dir(uid string) (string, error) {
	dir := filepath.Join(w.root, SanitizeUserID(uid))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	return dir, nil
}

// File is a workspace entry.
type File struct {
	Name    string    `json:"name"`
	Path    string    `json:"-"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

func (w *Workspace) list(uid string) ([]File, error) {
	dir, err := w.Dir(uid)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, File{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].ModTime.After(files[j].ModTime) })
	return files, nil
}

func (w *Workspace) isToday(t time.Time) bool {
	y1, m1, d1 := t.Local().Date()
	y2, m2, d2 := w.now().Local().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Inputs are the source files of an advanced analysis.
type Inputs struct {
	Spot    string
	Futures string
}

// FindInputs picks the newest futures PDF and spot file modified today.
func (w *Workspace) FindInputs(uid string) (Inputs, error) {
	files, err := w.list(uid)
	if err != nil {
		return Inputs{}, err
	}

	var in Inputs
	for _, f := range files {
		if !w.isToday(f.ModTime) {
			continue
		}
		name := strings.ToLower(f.Name)
		ext := filepath.Ext(name)
		switch {
		case in.Futures == "" && ext == ".pdf" && strings.Contains(name, "futures"):
			in.Futures = f.Path
		case in.Spot == "" && (ext == ".csv" || ext == ".html") && strings.Contains(name, "spot"):
			in.Spot = f.Path
		}
		if in.Spot != "" && in.Futures != "" {
			return in, nil
		}
	}
	return in, ErrInputsMissing
}

// SaveFutures stores an uploaded futures PDF as "<uid>_futures.pdf".
func (w *Workspace) SaveFutures(uid, filename string, r io.Reader) (string, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return "", ErrInvalidFile
	}
	dir, err := w.Dir(uid)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, SanitizeUserID(uid)+"_futures.pdf")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

// WriteFile writes a report artifact into the user's directory.
func (w *Workspace) WriteFile(uid, name string, data []byte) (string, error) {
	if !validName(name) {
		return "", ErrInvalidFile
	}
	dir, err := w.Dir(uid)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Cleanup removes the given source files when they were modified today and
// returns how many were deleted.
func (w *Workspace) Cleanup(paths ...string) int {
	cleaned := 0
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil || !w.isToday(info.ModTime()) {
			continue
		}
		if err := os.Remove(p); err != nil {
			log.Printf("Could not remove %s: %v", filepath.Base(p), err)
			continue
		}
		cleaned++
	}
	return cleaned
}

// ListReports returns generated reports, newest first.
func (w *Workspace) ListReports(uid string) ([]File, error) {
	files, err := w.list(uid)
	if err != nil {
		return nil, err
	}
	out := files[:0]
	for _, f := range files {
		if reportExts[strings.ToLower(filepath.Ext(f.Name))] && !isSourceFile(f.Name) {
			out = append(out, f)
		}
	}
	return out, nil
}

// Latest returns the newest analysis PDF.
func (w *Workspace) Latest(uid string) (File, error) {
	files, err := w.ListReports(uid)
	if err != nil {
		return File{}, err
	}
	for _, f := range files {
		if strings.EqualFold(filepath.Ext(f.Name), ".pdf") {
			return f, nil
		}
	}
	return File{}, ErrNotFound
}

// Open returns a report by name. Names with path separators are rejected.
func (w *Workspace) Open(uid, name string) (*os.File, error) {
	if !validName(name) {
		return nil, ErrInvalidFile
	}
	dir, err := w.Dir(uid)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// isSourceFile reports whether name is an uploaded futures export.
func isSourceFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), "_futures.pdf")
}
