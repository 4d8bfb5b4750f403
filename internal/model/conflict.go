package model

import (
	"time"

	"gorm.io/gorm"
)

type ResolutionStatus string

const (
	ResolutionUnresolved ResolutionStatus = "UNRESOLVED"
	ResolutionResolved   ResolutionStatus = "RESOLVED"
	ResolutionAbandoned  ResolutionStatus = "ABANDONED"
)

type ResolutionStrategy string

const (
	StrategyKeepLocal  ResolutionStrategy = "KEEP_LOCAL"
	StrategyKeepRemote ResolutionStrategy = "KEEP_REMOTE"
	StrategyMerge      ResolutionStrategy = "MERGE"
	StrategyManual     ResolutionStrategy = "MANUAL"
	StrategyRebase     ResolutionStrategy = "REBASE"
)

// Executable reports whether the strategy can be carried out by the resolver
// without human intervention. Merge, Manual and Rebase only produce guidance.
func (s ResolutionStrategy) Executable() bool {
	return s == StrategyKeepLocal || s == StrategyKeepRemote
}

func ParseStrategy(v string) (ResolutionStrategy, bool) {
	switch ResolutionStrategy(v) {
	case StrategyKeepLocal, StrategyKeepRemote, StrategyMerge, StrategyManual, StrategyRebase:
		return ResolutionStrategy(v), true
	default:
		return "", false
	}
}

// ConflictRecord captures one file's divergence between the local and remote
// side. ResolvedAt is set iff Status is not ResolutionUnresolved and is never
// earlier than DetectedAt. A record may be reopened when a later check still
// finds conflict markers in the file.
type ConflictRecord struct {
	gorm.Model
	Path          string           `gorm:"uniqueIndex;not null"`
	DetectedAt    time.Time        `gorm:"not null"`
	LocalChanges  string
	RemoteChanges string
	Status        ResolutionStatus `gorm:"not null;default:'UNRESOLVED'"`
	Strategy      ResolutionStrategy
	ResolvedAt    *time.Time
}

func (r *ConflictRecord) MarkResolved(strategy ResolutionStrategy, at time.Time) {
	r.Status = ResolutionResolved
	r.Strategy = strategy
	r.ResolvedAt = &at
}

func (r *ConflictRecord) Reopen() {
	r.Status = ResolutionUnresolved
	r.Strategy = ""
	r.ResolvedAt = nil
}
