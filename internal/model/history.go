package model

import (
	"time"

	"gorm.io/gorm"
)

// CycleHistory is one durable row per synchronization cycle, backing the
// history command and stats reporting.
type CycleHistory struct {
	gorm.Model
	CycleID    string      `gorm:"not null" json:"cycle_id"`
	Status     CycleStatus `gorm:"not null" json:"status"`
	CommitID   string      `json:"commit_id"`
	Pulled     int         `json:"pulled"`
	Modified   int         `json:"modified"`
	Added      int         `json:"added"`
	Deleted    int         `json:"deleted"`
	Message    string      `json:"message"`
	ErrMsg     string      `json:"err_msg"`
	DurationMs int64       `json:"duration_ms"`
	StartedAt  time.Time   `gorm:"not null" json:"started_at"`
}
