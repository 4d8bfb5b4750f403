package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"agentsync/internal/logger"
	"agentsync/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate changed agent files without syncing",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		backend, err := newBackend("")
		if err != nil {
			return err
		}

		snap, err := backend.Status(cmd.Context())
		if err != nil {
			return err
		}

		files := snap.ChangedFiles()
		sort.Strings(files)

		if len(files) == 0 {
			fmt.Println("no changed files to validate")
			return nil
		}

		validator := validate.New(afero.NewOsFs(), cfg.MaxFileSize)

		failed := 0
		for _, f := range files {
			res := validator.Validate(filepath.Join(cfg.RepoPath, f))
			if res.IsValid {
				fmt.Printf("✓ %s\n", f)
				continue
			}

			failed++
			fmt.Printf("✗ %s\n", f)
			for _, d := range res.Defects {
				fmt.Printf("    [%s] %s\n", d.Code, d.Detail)
			}
		}

		if failed > 0 {
			fmt.Printf("\n%d of %d file(s) failed validation\n", failed, len(files))
			exit(2)
		}

		fmt.Printf("\nall %d file(s) valid\n", len(files))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
