package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/survivordraft/internal/api/request"
	"github.com/mcoot/survivordraft/internal/api/response"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var req request.CreateRoomRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room",
		Long: `Create a room and join it as host.

The returned session is temporary: open a live connection with "play" under
the same name to take the seat over.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.RoomSession

			if err := client.Post(cmd.Context(), "/api/v1/rooms", req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.PlayerName, "name", "", "Your display name (required)")
	cmd.Flags().StringVar(&req.ScenarioID, "scenario", "", "Scenario ID, see 'scenarios' (required)")
	cmd.Flags().IntVar(&req.MaxPlayers, "max-players", 6, "Room capacity (3-15)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room

			if err := client.Get(cmd.Context(), fmt.Sprintf("/api/v1/rooms/%s", url.PathEscape(args[0])), &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	var req request.JoinRoomRequest

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.RoomSession

			path := fmt.Sprintf("/api/v1/rooms/%s/join", url.PathEscape(args[0]))
			if err := client.Post(cmd.Context(), path, req, &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.PlayerName, "name", "", "Your display name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
