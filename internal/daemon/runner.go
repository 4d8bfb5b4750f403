package daemon

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"agentsync/internal/logger"
	"agentsync/internal/model"
	"agentsync/internal/repository"
	"agentsync/internal/syncer"
)

// Runner serializes cycles: concurrent triggers (watch events, manual /sync
// calls) queue on the mutex so only one cycle ever runs against the working
// tree at a time.
type Runner struct {
	mu        sync.Mutex
	orch      *syncer.Orchestrator
	cycleRepo *repository.CycleRepository

	stateMu    sync.RWMutex
	startedAt  time.Time
	cycles     int
	lastResult *model.SyncCycleResult
	lastAt     *time.Time
}

func NewRunner(orch *syncer.Orchestrator, cycleRepo *repository.CycleRepository) *Runner {
	return &Runner{
		orch:      orch,
		cycleRepo: cycleRepo,
		startedAt: time.Now(),
	}
}

func (r *Runner) Run(ctx context.Context, opts syncer.CycleOptions) model.SyncCycleResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	result := r.orch.RunCycle(ctx, opts)

	if r.cycleRepo != nil && !opts.DryRun {
		if err := r.cycleRepo.Save(result, start); err != nil {
			logger.Log.Warn("failed to save cycle history",
				zap.Error(err))
		}
	}

	now := time.Now()
	r.stateMu.Lock()
	r.cycles++
	r.lastResult = &result
	r.lastAt = &now
	r.stateMu.Unlock()

	return result
}

type RunnerSnapshot struct {
	StartedAt   time.Time         `json:"started_at"`
	Cycles      int               `json:"cycles"`
	LastStatus  model.CycleStatus `json:"last_status,omitempty"`
	LastMessage string            `json:"last_message,omitempty"`
	LastAt      *time.Time        `json:"last_at,omitempty"`
}

func (r *Runner) Snapshot() RunnerSnapshot {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()

	snap := RunnerSnapshot{
		StartedAt: r.startedAt,
		Cycles:    r.cycles,
		LastAt:    r.lastAt,
	}

	if r.lastResult != nil {
		snap.LastStatus = r.lastResult.Status
		snap.LastMessage = r.lastResult.Message
	}

	return snap
}
