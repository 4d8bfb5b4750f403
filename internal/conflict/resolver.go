package conflict

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"agentsync/internal/logger"
	"agentsync/internal/model"
	"agentsync/internal/repository"
	"agentsync/internal/vcs"
)

type ResolveResult struct {
	Success bool
	Message string
}

// Resolver executes machine-executable strategies against the backend and
// verifies the outcome before reporting success. Non-executable strategies
// fail fast with guidance toward manual resolution.
type Resolver struct {
	backend vcs.Backend
	records *repository.ConflictRepository
}

func NewResolver(backend vcs.Backend, records *repository.ConflictRepository) *Resolver {
	return &Resolver{backend: backend, records: records}
}

func (r *Resolver) ResolveAuto(ctx context.Context, path string, strategy model.ResolutionStrategy) ResolveResult {
	var side vcs.Side

	switch strategy {
	case model.StrategyKeepLocal:
		side = vcs.SideLocal
	case model.StrategyKeepRemote:
		side = vcs.SideRemote
	case model.StrategyMerge:
		return ResolveResult{Message: "merge strategy is not implemented; resolve manually instead"}
	case model.StrategyRebase:
		return ResolveResult{Message: "rebase strategy is not implemented; resolve manually instead"}
	case model.StrategyManual:
		return ResolveResult{Message: "manual strategy is not auto-executable; edit the file directly"}
	default:
		return ResolveResult{Message: fmt.Sprintf("unknown strategy: %s", strategy)}
	}

	logger.Log.Info("auto-resolving conflict",
		zap.String("path", path),
		zap.String("strategy", string(strategy)))

	if err := r.backend.SelectSide(ctx, path, side); err != nil {
		return ResolveResult{Message: err.Error()}
	}

	ok, err := r.Verify(path)
	if err != nil {
		return ResolveResult{Message: err.Error()}
	}

	if !ok {
		if err := r.reopen(path); err != nil {
			return ResolveResult{Message: err.Error()}
		}
		return ResolveResult{
			Message: fmt.Sprintf("backend reported success but %s still looks conflicted; record reopened", path),
		}
	}

	if err := r.markResolved(path, strategy); err != nil {
		return ResolveResult{Message: err.Error()}
	}

	return ResolveResult{
		Success: true,
		Message: fmt.Sprintf("resolved %s with %s", path, strategy),
	}
}

// Verify requires both checks to pass: no markers left in the file and the
// backend no longer listing the path as conflicted. Either alone can be
// stale.
func (r *Resolver) Verify(path string) (bool, error) {
	markers, err := r.backend.HasConflictMarkers(path)
	if err != nil {
		return false, err
	}

	conflicted, err := r.backend.IsConflicted(path)
	if err != nil {
		return false, err
	}

	return !markers && !conflicted, nil
}

func (r *Resolver) markResolved(path string, strategy model.ResolutionStrategy) error {
	record, err := r.records.Get(path)
	if err != nil || record == nil {
		return err
	}

	record.MarkResolved(strategy, time.Now())
	return r.records.Save(record)
}

func (r *Resolver) reopen(path string) error {
	record, err := r.records.Get(path)
	if err != nil || record == nil {
		return err
	}

	record.Reopen()

	logger.Log.Warn("conflict reopened",
		zap.String("path", path))

	return r.records.Save(record)
}
