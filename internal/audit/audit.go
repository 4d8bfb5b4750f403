package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"agentsync/internal/model"
)

type OpType string

const (
	OpFetch   OpType = "Fetch"
	OpCommit  OpType = "Commit"
	OpPublish OpType = "Publish"
)

type Operation struct {
	Type    OpType `json:"type"`
	Outcome string `json:"outcome"`
	Files   int    `json:"files"`
	Error   string `json:"error,omitempty"`
}

// CycleRecord is one append-only line per synchronization cycle. The audit
// log is consumed for status reporting only; the orchestrator never reads it
// back for decisions.
type CycleRecord struct {
	CycleID    string            `json:"cycle_id"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Status     model.CycleStatus `json:"status"`
	Operations []Operation       `json:"operations"`
}

// Logger appends JSON-lines records to a single file. Rotation and retention
// are left to the operator.
type Logger struct {
	mu   sync.Mutex
	path string
}

func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

func (l *Logger) Record(rec CycleRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}

	return nil
}
