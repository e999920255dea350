package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Game session commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionJoinCmd())
	cmd.AddCommand(newSessionLeaveCmd())
	cmd.AddCommand(newSessionBeginCmd())
	cmd.AddCommand(newSessionResultCmd())
	cmd.AddCommand(newSessionCancelCmd())
	cmd.AddCommand(newSessionResultsCmd())

	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	var gameType, mode string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new game session",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"game_type": gameType,
				"mode":      mode,
			}
			var result Session

			if err := client.Post("/api/v1/sessions", req, &result); err != nil {
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

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Get session state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Get("/api/v1/sessions/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <session-id>",
		Short: "Join a waiting session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/join", args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <session-id>",
		Short: "Leave a session before it starts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/leave", args[0]), nil, nil); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Left session")
			return nil
		},
	}
}

func newSessionBeginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "begin <session-id>",
		Short: "Begin play on a countdown session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/begin", args[0]), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionResultCmd() *cobra.Command {
	var score, rank int
	var statFlags []string

	cmd := &cobra.Command{
		Use:   "result <session-id>",
		Short: "Submit your result for an active session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats := make(map[string]int)
			for _, s := range statFlags {
				key, value, found := strings.Cut(s, "=")
				if !found {
					return fmt.Errorf("invalid stat %q, expected key=value", s)
				}
				n, err := strconv.Atoi(value)
				if err != nil {
					return fmt.Errorf("invalid stat value %q: %w", value, err)
				}
				stats[key] = n
			}

			req := map[string]any{
				"score": score,
				"rank":  rank,
			}
			if len(stats) > 0 {
				req["stats"] = stats
			}

			var result SubmitResult

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/result", args[0]), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&score, "score", 0, "Final score (required)")
	cmd.Flags().IntVar(&rank, "rank", 0, "Finishing rank, 1 is first (required)")
	cmd.Flags().StringArrayVar(&statFlags, "stat", nil, "Per-game stat as key=value, repeatable")
	_ = cmd.MarkFlagRequired("score")
	_ = cmd.MarkFlagRequired("rank")

	return cmd
}

func newSessionCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <session-id>",
		Short: "Cancel a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete("/api/v1/sessions/" + args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Session cancelled")
			return nil
		},
	}
}

func newSessionResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results <session-id>",
		Short: "List submitted results for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var results []MatchResult

			if err := client.Get(fmt.Sprintf("/api/v1/sessions/%s/results", args[0]), &results); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(results)
			return nil
		},
	}
}
