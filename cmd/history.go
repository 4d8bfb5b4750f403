package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"agentsync/internal/model"
	"agentsync/internal/repository"
)

var historyN int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent synchronization cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := repository.NewCycleRepository()

		rows, err := repo.GetRecent(historyN)
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			fmt.Println("no cycles recorded yet")
			return nil
		}

		for _, h := range rows {
			mark := "✓"
			if h.Status != model.CycleSuccess {
				mark = "✗"
			}

			fmt.Printf("%s [%s] %-18s %s\n",
				mark,
				h.StartedAt.Format("2006-01-02 15:04:05"),
				h.Status,
				h.Message,
			)
		}

		stats, err := repo.GetStats()
		if err != nil {
			return err
		}
		fmt.Printf("\n%d cycle(s): %d succeeded, %d failed\n", stats.Total, stats.Success, stats.Failed)

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyN, "n", 20, "number of cycles to show")
	rootCmd.AddCommand(historyCmd)
}
