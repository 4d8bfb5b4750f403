package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"agentsync/internal/conflict"
	"agentsync/internal/logger"
	"agentsync/internal/model"
	"agentsync/internal/repository"
	"agentsync/internal/vcs"
)

var resolveStrategy string

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Resolve a conflicted agent file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()
		path := args[0]

		backend, err := newBackend("")
		if err != nil {
			return err
		}

		conflicted, err := backend.IsConflicted(path)
		if err != nil {
			return err
		}
		if !conflicted {
			return fmt.Errorf("%s is not in conflict", path)
		}

		records := repository.NewConflictRepository()
		analyzer := conflict.NewAnalyzer()

		raw, err := os.ReadFile(filepath.Join(cfg.RepoPath, path))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		record := analyzer.Analyze(path, string(raw))
		if existing, err := records.Get(path); err == nil && existing != nil {
			record.DetectedAt = existing.DetectedAt
		}
		if err := records.Upsert(record); err != nil {
			return err
		}

		classification := analyzer.Classify(record)

		strategy := classification.Suggested
		if resolveStrategy != "" {
			parsed, ok := model.ParseStrategy(resolveStrategy)
			if !ok {
				return fmt.Errorf("unknown strategy: %s", resolveStrategy)
			}
			strategy = parsed
		}

		if strategy == model.StrategyManual {
			return finishManual(cmd, backend, records, record, path)
		}

		if !strategy.Executable() {
			printGuidance(conflict.GuidanceFor(strategy, path))
			return nil
		}

		resolver := conflict.NewResolver(backend, records)
		result := resolver.ResolveAuto(cmd.Context(), path, strategy)

		fmt.Println(result.Message)
		if !result.Success {
			exit(1)
		}
		return nil
	},
}

// finishManual verifies a hand-edited file and records the resolution. The
// file must already be free of markers; keeping the current content is then
// just a local side selection.
func finishManual(cmd *cobra.Command, backend *vcs.GitBackend, records *repository.ConflictRepository, record *model.ConflictRecord, path string) error {
	markers, err := backend.HasConflictMarkers(path)
	if err != nil {
		return err
	}

	if markers {
		fmt.Printf("%s still contains conflict markers:\n", path)
		printGuidance(conflict.GuidanceFor(model.StrategyManual, path))
		exit(1)
	}

	if err := backend.SelectSide(cmd.Context(), path, vcs.SideLocal); err != nil {
		return err
	}

	record.MarkResolved(model.StrategyManual, time.Now())
	if err := records.Upsert(record); err != nil {
		return err
	}

	fmt.Printf("recorded manual resolution of %s\n", path)
	return nil
}

func printGuidance(g conflict.Guidance) {
	fmt.Printf("strategy %s:\n", g.Strategy)
	for i, step := range g.Steps {
		fmt.Printf("  %d. %s\n", i+1, step)
	}
}

func init() {
	resolveCmd.Flags().StringVar(&resolveStrategy, "strategy", "",
		"Resolution strategy (KEEP_LOCAL, KEEP_REMOTE, MERGE, MANUAL, REBASE); defaults to the analyzer's suggestion")
	rootCmd.AddCommand(resolveCmd)
}
