package domain

import "time"

type ReportKind string

const (
	ReportSpot     ReportKind = "spot"
	ReportAdvanced ReportKind = "advanced"
)

// Report is an archived artifact produced by a run.
type Report struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"user_id"`
	Kind       ReportKind `json:"kind"`
	FileName   string     `json:"file_name"`
	Path       string     `json:"path"`
	TokenCount int        `json:"token_count"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Activity struct {
	UserID    string    `json:"uid"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"timestamp"`
}

type ProgressStatus string

const (
	StatusIdle    ProgressStatus = "idle"
	StatusActive  ProgressStatus = "active"
	StatusSuccess ProgressStatus = "success"
	StatusError   ProgressStatus = "error"
)

type Progress struct {
	Percent int            `json:"percent"`
	Text    string         `json:"text"`
	Status  ProgressStatus `json:"status"`
}

func IdleProgress() Progress {
	return Progress{Percent: 0, Text: "System Idle", Status: StatusIdle}
}
