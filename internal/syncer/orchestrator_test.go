package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentsync/internal/model"
	"agentsync/internal/validate"
	"agentsync/internal/vcs"
)

// mockBackend returns scripted results and counts every mutating call so
// tests can assert which pipeline stages ran.
type mockBackend struct {
	fetch     vcs.FetchResult
	snap      *model.RepositorySnapshot
	statusErr error
	commit    vcs.CommitResult
	pub       vcs.PublishResult

	fetchCalls   int
	commitCalls  int
	publishCalls int

	lastMessage string
	lastFiles   []string

	panicOnFetch bool
}

func (b *mockBackend) Fetch(context.Context) vcs.FetchResult {
	b.fetchCalls++
	if b.panicOnFetch {
		panic("backend exploded")
	}
	return b.fetch
}

func (b *mockBackend) Commit(_ context.Context, message string, files []string) vcs.CommitResult {
	b.commitCalls++
	b.lastMessage = message
	b.lastFiles = files
	return b.commit
}

func (b *mockBackend) Publish(context.Context) vcs.PublishResult {
	b.publishCalls++
	return b.pub
}

func (b *mockBackend) Status(context.Context) (*model.RepositorySnapshot, error) {
	if b.statusErr != nil {
		return nil, b.statusErr
	}
	if b.snap == nil {
		return &model.RepositorySnapshot{}, nil
	}
	return b.snap, nil
}

func (b *mockBackend) SelectSide(context.Context, string, vcs.Side) error { return nil }

func (b *mockBackend) HasConflictMarkers(string) (bool, error) { return false, nil }

func (b *mockBackend) IsConflicted(string) (bool, error) { return false, nil }

func newTestOrchestrator(backend *mockBackend, fs afero.Fs) *Orchestrator {
	if fs == nil {
		fs = afero.NewMemMapFs()
	}
	return NewOrchestrator(backend, validate.New(fs, 0), nil, "/repo", 5*time.Second)
}

func writeAgentFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestRunCycleNothingToDo(t *testing.T) {
	backend := &mockBackend{
		fetch: vcs.FetchResult{Success: true},
		snap:  &model.RepositorySnapshot{},
	}

	result := newTestOrchestrator(backend, nil).RunCycle(context.Background(), CycleOptions{})

	assert.Equal(t, model.CycleSuccess, result.Status)
	assert.Equal(t, "nothing to do", result.Message)
	assert.NotEmpty(t, result.CycleID)
	assert.Zero(t, backend.commitCalls)
	assert.Zero(t, backend.publishCalls)
}

func TestRunCycleConflictStopsPipeline(t *testing.T) {
	backend := &mockBackend{
		fetch: vcs.FetchResult{
			Success:          false,
			ConflictingFiles: []string{"agents/x.md"},
		},
	}

	result := newTestOrchestrator(backend, nil).RunCycle(context.Background(), CycleOptions{})

	assert.Equal(t, model.CycleConflict, result.Status)
	assert.Equal(t, []string{"agents/x.md"}, result.ConflictingFiles)
	assert.Zero(t, backend.commitCalls)
	assert.Zero(t, backend.publishCalls)
}

func TestRunCycleFetchNetworkError(t *testing.T) {
	backend := &mockBackend{
		fetch: vcs.FetchResult{Success: false, ErrorMessage: "dial tcp: connection refused"},
	}

	result := newTestOrchestrator(backend, nil).RunCycle(context.Background(), CycleOptions{})

	assert.Equal(t, model.CycleNetworkError, result.Status)
	assert.Equal(t, model.ErrorKindNetwork, result.ErrKind)
	assert.Contains(t, result.Message, "connection refused")
	assert.Zero(t, backend.commitCalls)
}

func TestRunCycleFetchAuthErrorKindPreserved(t *testing.T) {
	backend := &mockBackend{
		fetch: vcs.FetchResult{
			Success:      false,
			ErrKind:      model.ErrorKindAuth,
			ErrorMessage: "authentication required",
		},
	}

	result := newTestOrchestrator(backend, nil).RunCycle(context.Background(), CycleOptions{})

	assert.Equal(t, model.CycleNetworkError, result.Status)
	assert.Equal(t, model.ErrorKindAuth, result.ErrKind)
}

func TestRunCycleValidationFailureReportsExactFileSet(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAgentFile(t, fs, "/repo/good.md", "# fine\n")
	writeAgentFile(t, fs, "/repo/bad.md", "<<<<<<< LOCAL\nours\n=======\ntheirs\n>>>>>>> REMOTE\n")

	backend := &mockBackend{
		fetch: vcs.FetchResult{Success: true},
		snap: &model.RepositorySnapshot{
			Modified: []string{"bad.md", "good.md"},
		},
	}

	result := newTestOrchestrator(backend, fs).RunCycle(context.Background(), CycleOptions{})

	assert.Equal(t, model.CycleValidationFailed, result.Status)
	require.Len(t, result.ValidationDefects, 1)
	assert.Equal(t, "bad.md", result.ValidationDefects[0].Path)
	assert.Zero(t, backend.commitCalls)
	assert.Zero(t, backend.publishCalls)
}

func TestRunCycleDryRunMutatesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAgentFile(t, fs, "/repo/a.md", "# a\n")

	backend := &mockBackend{
		fetch: vcs.FetchResult{Success: true},
		snap:  &model.RepositorySnapshot{Modified: []string{"a.md"}},
	}

	result := newTestOrchestrator(backend, fs).RunCycle(context.Background(), CycleOptions{DryRun: true})

	assert.Equal(t, model.CycleSuccess, result.Status)
	assert.Contains(t, result.Message, "dry run")
	assert.Equal(t, 1, result.FilesModified)
	assert.Zero(t, backend.commitCalls)
	assert.Zero(t, backend.publishCalls)
}

func TestRunCycleRejectsShortMessageOverride(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAgentFile(t, fs, "/repo/a.md", "# a\n")

	backend := &mockBackend{
		fetch: vcs.FetchResult{Success: true},
		snap:  &model.RepositorySnapshot{Modified: []string{"a.md"}},
	}

	result := newTestOrchestrator(backend, fs).RunCycle(context.Background(), CycleOptions{CommitMessage: "  x "})

	assert.Equal(t, model.CycleError, result.Status)
	assert.Zero(t, backend.commitCalls)
}

func TestRunCycleCommitsSortedUnionOfChanges(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAgentFile(t, fs, "/repo/b.md", "# b\n")
	writeAgentFile(t, fs, "/repo/c.md", "# c\n")

	backend := &mockBackend{
		fetch: vcs.FetchResult{Success: true},
		snap: &model.RepositorySnapshot{
			Modified: []string{"c.md"},
			Created:  []string{"b.md"},
			Deleted:  []string{"a.md"},
		},
		commit: vcs.CommitResult{Success: true, CommitID: "abc123"},
		pub:    vcs.PublishResult{Success: true},
	}

	result := newTestOrchestrator(backend, fs).RunCycle(context.Background(), CycleOptions{})

	assert.Equal(t, model.CycleSuccess, result.Status)
	assert.Equal(t, []string{"a.md", "b.md", "c.md"}, backend.lastFiles)
	assert.Equal(t, "sync: update 3 agent file(s) - 1 modified, 1 added, 1 deleted", backend.lastMessage)
	assert.Equal(t, "abc123", result.CommitID)
	assert.Equal(t, 1, result.FilesModified)
	assert.Equal(t, 1, result.FilesAdded)
	assert.Equal(t, 1, result.FilesDeleted)
}

func TestRunCycleNothingToCommitIsBenign(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAgentFile(t, fs, "/repo/a.md", "# a\n")

	backend := &mockBackend{
		fetch:  vcs.FetchResult{Success: true},
		snap:   &model.RepositorySnapshot{Modified: []string{"a.md"}},
		commit: vcs.CommitResult{Success: true, NothingToCommit: true},
	}

	result := newTestOrchestrator(backend, fs).RunCycle(context.Background(), CycleOptions{})

	assert.Equal(t, model.CycleSuccess, result.Status)
	assert.Equal(t, "nothing to commit", result.Message)
	assert.Zero(t, backend.publishCalls)
}

func TestRunCyclePushRejectedWhenRemoteAdvanced(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAgentFile(t, fs, "/repo/a.md", "# a\n")

	backend := &mockBackend{
		fetch:  vcs.FetchResult{Success: true},
		snap:   &model.RepositorySnapshot{Modified: []string{"a.md"}},
		commit: vcs.CommitResult{Success: true, CommitID: "abc123"},
		pub:    vcs.PublishResult{IsBehindRemote: true},
	}

	result := newTestOrchestrator(backend, fs).RunCycle(context.Background(), CycleOptions{})

	assert.Equal(t, model.CyclePushRejected, result.Status)
	assert.Contains(t, result.Message, "re-run")
}

func TestRunCyclePublishNetworkErrorKeepsCommit(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeAgentFile(t, fs, "/repo/a.md", "# a\n")

	backend := &mockBackend{
		fetch:  vcs.FetchResult{Success: true},
		snap:   &model.RepositorySnapshot{Modified: []string{"a.md"}},
		commit: vcs.CommitResult{Success: true, CommitID: "abc123"},
		pub:    vcs.PublishResult{ErrorMessage: "remote unreachable"},
	}

	result := newTestOrchestrator(backend, fs).RunCycle(context.Background(), CycleOptions{})

	assert.Equal(t, model.CycleNetworkError, result.Status)
	assert.Contains(t, result.Message, "local commits are intact")
}

// A clean tree with pending local commits goes straight to publish, so a
// cycle interrupted after commit can complete on retry.
func TestRunCycleCleanTreeAheadPublishes(t *testing.T) {
	backend := &mockBackend{
		fetch: vcs.FetchResult{Success: true},
		snap:  &model.RepositorySnapshot{AheadCount: 1},
		pub:   vcs.PublishResult{Success: true},
	}

	result := newTestOrchestrator(backend, nil).RunCycle(context.Background(), CycleOptions{})

	assert.Equal(t, model.CycleSuccess, result.Status)
	assert.Zero(t, backend.commitCalls)
	assert.Equal(t, 1, backend.publishCalls)
}

func TestRunCycleRecoversFromPanic(t *testing.T) {
	backend := &mockBackend{panicOnFetch: true}

	result := newTestOrchestrator(backend, nil).RunCycle(context.Background(), CycleOptions{})

	assert.Equal(t, model.CycleError, result.Status)
	assert.Contains(t, result.Message, "unexpected failure")
}

func TestRunCycleStatusErrorIsTerminal(t *testing.T) {
	backend := &mockBackend{
		fetch:     vcs.FetchResult{Success: true},
		statusErr: assert.AnError,
	}

	result := newTestOrchestrator(backend, nil).RunCycle(context.Background(), CycleOptions{})

	assert.Equal(t, model.CycleError, result.Status)
	assert.Zero(t, backend.commitCalls)
}
