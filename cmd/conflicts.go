package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"agentsync/internal/repository"
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "List unresolved conflicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := repository.NewConflictRepository().ListUnresolved()
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("no unresolved conflicts")
			return nil
		}

		for _, r := range records {
			fmt.Printf("%s (detected %s)\n", r.Path, r.DetectedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("\n%d conflict(s); run 'agentsync resolve <path>' to settle them\n", len(records))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(conflictsCmd)
}
