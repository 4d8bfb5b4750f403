package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agentsync/internal/daemon"
	"agentsync/internal/logger"
	"agentsync/internal/model"
	"agentsync/internal/repository"
	"agentsync/internal/syncer"
	"agentsync/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the agent-file directory and sync on change",
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	defer logger.Sync()

	orch, err := newOrchestrator("")
	if err != nil {
		return err
	}

	backend, err := newBackend("")
	if err != nil {
		return err
	}

	runner := daemon.NewRunner(orch, repository.NewCycleRepository())

	w, err := watcher.New(100)
	if err != nil {
		return err
	}

	if err := w.Watch(cfg.RepoPath); err != nil {
		return err
	}

	events := watcher.Debounce(
		watcher.Filter(w.Events(), cfg.IgnoreList),
		time.Duration(cfg.DebounceMs)*time.Millisecond,
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go func() {
		for range events {
			result := runner.Run(ctx, syncer.CycleOptions{})
			if result.Status != model.CycleSuccess {
				logger.Log.Warn("watch cycle did not succeed",
					zap.String("status", string(result.Status)),
					zap.String("message", result.Message))
			}
		}
	}()

	srv := daemon.NewServer(runner, backend, cfg.DaemonPort)
	srv.Start()

	logger.Log.Info("agentsync watch started",
		zap.String("repo", cfg.RepoPath),
		zap.Int("port", cfg.DaemonPort))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Log.Info("shutting down",
			zap.String("signal", sig.String()))
	case <-srv.StopCh():
		logger.Log.Info("stop requested via API")
	}

	w.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Stop(shutdownCtx)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
