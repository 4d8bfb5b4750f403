package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agentsync/internal/daemon"
	"agentsync/internal/logger"
	"agentsync/internal/model"
	"agentsync/internal/repository"
	"agentsync/internal/syncer"
)

var (
	syncDryRun  bool
	syncMessage string
)

var syncCmd = &cobra.Command{
	Use:   "sync [path]",
	Short: "Run one synchronization cycle (fetch, validate, commit, publish)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		repoPath := ""
		if len(args) == 1 {
			repoPath = args[0]
		}

		orch, err := newOrchestrator(repoPath)
		if err != nil {
			return err
		}

		logger.Log.Info("starting sync cycle",
			zap.Bool("dry_run", syncDryRun))

		runner := daemon.NewRunner(orch, repository.NewCycleRepository())
		result := runner.Run(cmd.Context(), syncer.CycleOptions{
			DryRun:        syncDryRun,
			CommitMessage: syncMessage,
		})

		printResult(result)

		if code := exitCode(result); code != 0 {
			exit(code)
		}
		return nil
	},
}

func printResult(result model.SyncCycleResult) {
	fmt.Printf("%s: %s\n", result.Status, result.Message)

	if result.Status == model.CycleSuccess && result.CommitID != "" {
		fmt.Printf("  commit %s (%d pulled, %d modified, %d added, %d deleted) in %s\n",
			result.CommitID[:min(12, len(result.CommitID))],
			result.FilesPulled, result.FilesModified, result.FilesAdded, result.FilesDeleted,
			result.Duration.Round(time.Millisecond))
	}

	for _, path := range result.ConflictingFiles {
		fmt.Printf("  conflict: %s\n", path)
	}

	for _, fd := range result.ValidationDefects {
		for _, d := range fd.Defects {
			fmt.Printf("  %s: [%s] %s\n", fd.Path, d.Code, d.Detail)
		}
	}
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Report what would be committed without mutating anything")
	syncCmd.Flags().StringVarP(&syncMessage, "message", "m", "", "Override the generated commit message")
	rootCmd.AddCommand(syncCmd)
}
