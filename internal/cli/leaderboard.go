package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Leaderboard commands",
	}

	cmd.AddCommand(newLeaderboardTopCmd())
	cmd.AddCommand(newLeaderboardRankCmd())

	return cmd
}

func newLeaderboardTopCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the top ranked players",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Leaderboard

			path := fmt.Sprintf("/api/v1/leaderboard?limit=%d", limit)
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of entries to show")

	return cmd
}

func newLeaderboardRankCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rank <player-id>",
		Short: "Show a player's leaderboard rank",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerRank

			if err := client.Get("/api/v1/leaderboard/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
