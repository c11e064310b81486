package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top players by wins",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Leaderboard
			path := fmt.Sprintf("/api/v1/leaderboard?limit=%d", limit)
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of entries to show")

	return cmd
}
