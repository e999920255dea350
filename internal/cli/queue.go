package cli

import (
	"github.com/spf13/cobra"
)

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Matchmaking queue commands",
	}

	cmd.AddCommand(newQueueJoinCmd())
	cmd.AddCommand(newQueueLeaveCmd())
	cmd.AddCommand(newQueueStatusCmd())

	return cmd
}

func newQueueJoinCmd() *cobra.Command {
	var gameType, mode string

	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join a matchmaking queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"game_type": gameType,
				"mode":      mode,
			}
			var result QueueStatus

			if err := client.Post("/api/v1/queue/join", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameType, "game", "running", "Game type")
	cmd.Flags().StringVar(&mode, "mode", "1v1", "Game mode")

	return cmd
}

func newQueueLeaveCmd() *cobra.Command {
	var gameType, mode string

	cmd := &cobra.Command{
		Use:   "leave",
		Short: "Leave a matchmaking queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"game_type": gameType,
				"mode":      mode,
			}

			if err := client.Post("/api/v1/queue/leave", req, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Left queue")
			return nil
		},
	}

	cmd.Flags().StringVar(&gameType, "game", "running", "Game type")
	cmd.Flags().StringVar(&mode, "mode", "1v1", "Game mode")

	return cmd
}

func newQueueStatusCmd() *cobra.Command {
	var gameType, mode string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show queue depth",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result QueueStatus

			path := "/api/v1/queue/status?game_type=" + gameType + "&mode=" + mode
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&gameType, "game", "running", "Game type")
	cmd.Flags().StringVar(&mode, "mode", "1v1", "Game mode")

	return cmd
}
