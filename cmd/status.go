package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"agentsync/internal/logger"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show working-tree changes and the position against the remote",
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

		if snap.IsClean() && snap.AheadCount == 0 && snap.BehindCount == 0 && !snap.HasConflicts {
			fmt.Println("clean and in sync with the remote")
			return nil
		}

		for _, p := range snap.Modified {
			fmt.Printf("  modified: %s\n", p)
		}
		for _, p := range snap.Created {
			fmt.Printf("  added:    %s\n", p)
		}
		for _, p := range snap.Deleted {
			fmt.Printf("  deleted:  %s\n", p)
		}

		if snap.AheadCount > 0 || snap.BehindCount > 0 {
			fmt.Printf("  %d commit(s) ahead, %d behind\n", snap.AheadCount, snap.BehindCount)
		}

		if snap.HasConflicts {
			fmt.Println("  unresolved conflicts present; see 'agentsync conflicts'")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
