package vcs

import (
	"context"

	"agentsync/internal/model"
)

// Side selects which version of a conflicted path survives resolution.
type Side string

const (
	SideLocal  Side = "LOCAL"
	SideRemote Side = "REMOTE"
)

// FetchResult is the structured outcome of integrating remote history.
// Expected failure modes (divergence, unreachable remote) are reported here,
// never as panics.
type FetchResult struct {
	Success          bool
	UpdatedFiles     []string
	ConflictingFiles []string
	ErrKind          model.ErrorKind
	ErrorMessage     string
}

func (r FetchResult) HasConflicts() bool {
	return len(r.ConflictingFiles) > 0
}

type CommitResult struct {
	Success         bool
	NothingToCommit bool
	CommitID        string
	ErrorMessage    string
}

type PublishResult struct {
	Success        bool
	IsBehindRemote bool
	ErrKind        model.ErrorKind
	ErrorMessage   string
}

// Backend is the version-control capability set the orchestrator and the
// conflict subsystem consume. All mutating calls are blocking; they return
// only after the underlying repository state is durably updated.
type Backend interface {
	Fetch(ctx context.Context) FetchResult
	Commit(ctx context.Context, message string, files []string) CommitResult
	Publish(ctx context.Context) PublishResult
	Status(ctx context.Context) (*model.RepositorySnapshot, error)
	SelectSide(ctx context.Context, path string, side Side) error
	HasConflictMarkers(path string) (bool, error)
	IsConflicted(path string) (bool, error)
}
