package conflict

import (
	"strings"
	"time"

	"agentsync/internal/model"
	"agentsync/internal/vcs"
)

type Classification struct {
	CanAutoResolve bool
	Suggested      model.ResolutionStrategy
}

// Analyzer parses raw three-way diffs into ConflictRecords and decides,
// from the textual fragments alone, whether a divergence is safe to resolve
// automatically.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze splits the marker-delimited content into the local and remote
// fragments. Multiple hunks are flattened into the two fragment strings; the
// file is treated as one conflict unit.
func (a *Analyzer) Analyze(path, rawDiff string) *model.ConflictRecord {
	local, remote := vcs.ParseHunks(rawDiff)

	return &model.ConflictRecord{
		Path:          path,
		DetectedAt:    time.Now(),
		LocalChanges:  local,
		RemoteChanges: remote,
		Status:        model.ResolutionUnresolved,
	}
}

// Classify applies the resolution rules in order: a whitespace-only side
// loses to the other, semantically identical sides keep local, everything
// else goes to a human. Interleaved edits are never auto-merged.
func (a *Analyzer) Classify(record *model.ConflictRecord) Classification {
	localEmpty := strings.TrimSpace(record.LocalChanges) == ""
	remoteEmpty := strings.TrimSpace(record.RemoteChanges) == ""

	if remoteEmpty {
		return Classification{CanAutoResolve: true, Suggested: model.StrategyKeepLocal}
	}

	if localEmpty {
		return Classification{CanAutoResolve: true, Suggested: model.StrategyKeepRemote}
	}

	if stripWhitespace(record.LocalChanges) == stripWhitespace(record.RemoteChanges) {
		// Semantically equivalent content; keep-local is the deterministic
		// tie-break.
		return Classification{CanAutoResolve: true, Suggested: model.StrategyKeepLocal}
	}

	return Classification{CanAutoResolve: false, Suggested: model.StrategyManual}
}

func stripWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
