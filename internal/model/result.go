package model

import "time"

type CycleStatus string

const (
	CycleSuccess          CycleStatus = "SUCCESS"
	CycleConflict         CycleStatus = "CONFLICT"
	CycleValidationFailed CycleStatus = "VALIDATION_FAILED"
	CycleNetworkError     CycleStatus = "NETWORK_ERROR"
	CyclePushRejected     CycleStatus = "PUSH_REJECTED"
	CycleError            CycleStatus = "ERROR"
)

// ErrorKind distinguishes infrastructure failure causes within a single
// CycleStatus, so the CLI can report authentication failures separately.
type ErrorKind string

const (
	ErrorKindNone    ErrorKind = ""
	ErrorKindNetwork ErrorKind = "NETWORK"
	ErrorKindAuth    ErrorKind = "AUTH"
)

type ValidationDefect struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

type FileDefects struct {
	Path    string             `json:"path"`
	Defects []ValidationDefect `json:"defects"`
}

// SyncCycleResult is the outcome of one orchestrator run. Exactly one status
// is set; ConflictingFiles is non-empty iff the status is CycleConflict and
// ValidationDefects is non-empty iff the status is CycleValidationFailed.
// Immutable once returned.
type SyncCycleResult struct {
	CycleID           string
	Status            CycleStatus
	FilesPulled       int
	FilesModified     int
	FilesAdded        int
	FilesDeleted      int
	CommitID          string
	ConflictingFiles  []string
	ValidationDefects []FileDefects
	ErrKind           ErrorKind
	Duration          time.Duration
	Message           string
}
