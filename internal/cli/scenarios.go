package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/survivordraft/internal/api/response"
)

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenarios a room can be created with",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []response.ScenarioSummary

			if err := client.Get(cmd.Context(), "/api/v1/scenarios", &result); err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}
