package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"agentsync/internal/audit"
	"agentsync/internal/config"
	"agentsync/internal/db"
	"agentsync/internal/logger"
	"agentsync/internal/model"
	"agentsync/internal/syncer"
	"agentsync/internal/validate"
	"agentsync/internal/vcs"
)

var (
	cfg   *config.Config
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "agentsync",
	Short: "Keep a directory of agent files consistent across machines",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		logger.Init(debug)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		clientCmds := map[string]bool{"stop": true}
		if !clientCmds[cmd.Name()] {
			if err := db.Init(cfg.DBPath); err != nil {
				return err
			}
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func daemonURL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", cfg.DaemonPort, path)
}

func newBackend(repoPath string) (*vcs.GitBackend, error) {
	if repoPath == "" {
		repoPath = cfg.RepoPath
	}

	return vcs.NewGitBackend(repoPath, cfg.Remote, vcs.Signature{
		Name:  cfg.AuthorName,
		Email: cfg.AuthorEmail,
	})
}

func newOrchestrator(repoPath string) (*syncer.Orchestrator, error) {
	if repoPath == "" {
		repoPath = cfg.RepoPath
	}

	backend, err := newBackend(repoPath)
	if err != nil {
		return nil, err
	}

	validator := validate.New(afero.NewOsFs(), cfg.MaxFileSize)
	audits := audit.NewLogger(cfg.AuditLogPath)
	timeout := time.Duration(cfg.NetworkTimeout) * time.Second

	return syncer.NewOrchestrator(backend, validator, audits, repoPath, timeout), nil
}

// exitCode maps a cycle result to the fixed exit-code contract.
func exitCode(result model.SyncCycleResult) int {
	switch result.Status {
	case model.CycleSuccess:
		return 0
	case model.CycleConflict:
		return 1
	case model.CycleValidationFailed:
		return 2
	case model.CycleNetworkError:
		if result.ErrKind == model.ErrorKindAuth {
			return 4
		}
		return 3
	case model.CyclePushRejected:
		return 6
	default:
		return 5
	}
}

func exit(code int) {
	logger.Sync()
	os.Exit(code)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug mode")
}
