package syncer

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agentsync/internal/audit"
	"agentsync/internal/logger"
	"agentsync/internal/model"
	"agentsync/internal/validate"
	"agentsync/internal/vcs"
)

type CycleOptions struct {
	DryRun        bool
	CommitMessage string
}

// Orchestrator runs one synchronization cycle: fetch, validate, commit,
// publish. It is stateless between calls; every cycle starts from a fresh
// snapshot so it never acts on stale status.
type Orchestrator struct {
	backend   vcs.Backend
	validator *validate.Validator
	audits    *audit.Logger
	repoPath  string
	timeout   time.Duration
}

func NewOrchestrator(backend vcs.Backend, validator *validate.Validator, audits *audit.Logger, repoPath string, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Orchestrator{
		backend:   backend,
		validator: validator,
		audits:    audits,
		repoPath:  repoPath,
		timeout:   timeout,
	}
}

// RunCycle executes one cycle and always returns a terminal result; no error
// escapes to the caller.
func (o *Orchestrator) RunCycle(ctx context.Context, opts CycleOptions) model.SyncCycleResult {
	start := time.Now()
	rec := &audit.CycleRecord{
		CycleID:   uuid.NewString(),
		StartedAt: start,
	}

	result := o.run(ctx, opts, rec)
	result.CycleID = rec.CycleID
	result.Duration = time.Since(start)

	rec.FinishedAt = time.Now()
	rec.Status = result.Status

	if o.audits != nil {
		if err := o.audits.Record(*rec); err != nil {
			logger.Log.Warn("failed to append audit record",
				zap.Error(err))
		}
	}

	logger.Log.Info("cycle finished",
		zap.String("cycle_id", result.CycleID),
		zap.String("status", string(result.Status)),
		zap.Duration("took", result.Duration))

	return result
}

func (o *Orchestrator) run(ctx context.Context, opts CycleOptions, rec *audit.CycleRecord) (result model.SyncCycleResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("cycle panicked",
				zap.Any("cause", r))
			result = model.SyncCycleResult{
				Status:  model.CycleError,
				Message: fmt.Sprintf("unexpected failure: %v", r),
			}
		}
	}()

	// Fetch and integrate remote history.
	fetchCtx, cancel := context.WithTimeout(ctx, o.timeout)
	fetch := o.backend.Fetch(fetchCtx)
	cancel()

	rec.Operations = append(rec.Operations, audit.Operation{
		Type:    audit.OpFetch,
		Outcome: outcome(fetch.Success),
		Files:   len(fetch.UpdatedFiles),
		Error:   fetch.ErrorMessage,
	})

	if fetch.HasConflicts() {
		return model.SyncCycleResult{
			Status:           model.CycleConflict,
			ConflictingFiles: fetch.ConflictingFiles,
			FilesPulled:      len(fetch.UpdatedFiles),
			Message: fmt.Sprintf("%d file(s) diverged from the remote; run 'agentsync resolve <path>' to settle them",
				len(fetch.ConflictingFiles)),
		}
	}

	if !fetch.Success {
		kind := fetch.ErrKind
		if kind == model.ErrorKindNone {
			kind = model.ErrorKindNetwork
		}
		return model.SyncCycleResult{
			Status:  model.CycleNetworkError,
			ErrKind: kind,
			Message: fmt.Sprintf("fetch failed: %s; check connectivity and re-run", fetch.ErrorMessage),
		}
	}

	// Fresh snapshot; nothing to do short-circuits before validation so no
	// empty commit is ever recorded.
	snap, err := o.backend.Status(ctx)
	if err != nil {
		return model.SyncCycleResult{
			Status:  model.CycleError,
			Message: fmt.Sprintf("status query failed: %s", err),
		}
	}

	if snap.IsClean() && snap.AheadCount == 0 {
		return model.SyncCycleResult{
			Status:      model.CycleSuccess,
			FilesPulled: len(fetch.UpdatedFiles),
			Message:     "nothing to do",
		}
	}

	if snap.IsClean() {
		// Local commits are pending from an earlier cycle; skip straight to
		// publish so a PushRejected retry can complete.
		return o.publish(ctx, rec, fetch, snap, "")
	}

	// Validate every changed file; the report is exhaustive, not first-fail.
	if failures := o.validateChanged(snap); len(failures) > 0 {
		return model.SyncCycleResult{
			Status:            model.CycleValidationFailed,
			ValidationDefects: failures,
			FilesPulled:       len(fetch.UpdatedFiles),
			Message: fmt.Sprintf("%d file(s) failed validation; nothing was committed",
				len(failures)),
		}
	}

	message := opts.CommitMessage
	if message == "" {
		message = CommitMessage(snap)
	} else if len(strings.TrimSpace(message)) < 3 {
		return model.SyncCycleResult{
			Status:  model.CycleError,
			Message: "commit message override is empty or too short",
		}
	}

	if opts.DryRun {
		return model.SyncCycleResult{
			Status:        model.CycleSuccess,
			FilesPulled:   len(fetch.UpdatedFiles),
			FilesModified: len(snap.Modified),
			FilesAdded:    len(snap.Created),
			FilesDeleted:  len(snap.Deleted),
			Message:       fmt.Sprintf("dry run: would commit %q", message),
		}
	}

	all := make([]string, 0, snap.ChangeCount())
	all = append(all, snap.Modified...)
	all = append(all, snap.Created...)
	all = append(all, snap.Deleted...)
	sort.Strings(all)

	commit := o.backend.Commit(ctx, message, all)
	rec.Operations = append(rec.Operations, audit.Operation{
		Type:    audit.OpCommit,
		Outcome: outcome(commit.Success),
		Files:   len(all),
		Error:   commit.ErrorMessage,
	})

	if !commit.Success {
		return model.SyncCycleResult{
			Status:  model.CycleError,
			Message: fmt.Sprintf("commit failed: %s", commit.ErrorMessage),
		}
	}

	if commit.NothingToCommit {
		// An external actor emptied the change set after the snapshot; benign.
		return model.SyncCycleResult{
			Status:      model.CycleSuccess,
			FilesPulled: len(fetch.UpdatedFiles),
			Message:     "nothing to commit",
		}
	}

	return o.publish(ctx, rec, fetch, snap, commit.CommitID)
}

func (o *Orchestrator) publish(ctx context.Context, rec *audit.CycleRecord, fetch vcs.FetchResult, snap *model.RepositorySnapshot, commitID string) model.SyncCycleResult {
	pubCtx, cancel := context.WithTimeout(ctx, o.timeout)
	pub := o.backend.Publish(pubCtx)
	cancel()

	rec.Operations = append(rec.Operations, audit.Operation{
		Type:    audit.OpPublish,
		Outcome: outcome(pub.Success),
		Error:   pub.ErrorMessage,
	})

	if pub.IsBehindRemote {
		return model.SyncCycleResult{
			Status:  model.CyclePushRejected,
			Message: "remote gained new commits since the fetch; re-run the sync cycle to integrate them first",
		}
	}

	if !pub.Success {
		kind := pub.ErrKind
		if kind == model.ErrorKindNone {
			kind = model.ErrorKindNetwork
		}
		return model.SyncCycleResult{
			Status:  model.CycleNetworkError,
			ErrKind: kind,
			Message: fmt.Sprintf("publish failed: %s; local commits are intact, re-run when the remote is reachable", pub.ErrorMessage),
		}
	}

	return model.SyncCycleResult{
		Status:        model.CycleSuccess,
		CommitID:      commitID,
		FilesPulled:   len(fetch.UpdatedFiles),
		FilesModified: len(snap.Modified),
		FilesAdded:    len(snap.Created),
		FilesDeleted:  len(snap.Deleted),
		Message:       "synchronized and published",
	}
}

func (o *Orchestrator) validateChanged(snap *model.RepositorySnapshot) []model.FileDefects {
	files := snap.ChangedFiles()
	sort.Strings(files)

	var failures []model.FileDefects
	for _, f := range files {
		res := o.validator.Validate(filepath.Join(o.repoPath, f))
		if !res.IsValid {
			failures = append(failures, model.FileDefects{
				Path:    f,
				Defects: res.Defects,
			})
		}
	}

	return failures
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
