package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/flowplan/pkg/model"
)

func newPlanCmd() *cobra.Command {
	var (
		desc   string
		due    string
		scope  string
		locale string
	)

	cmd := &cobra.Command{
		Use:   "plan <title>",
		Short: "Break a goal into estimated subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Post("/api/v1/plan", model.PlanRequest{
				Title:  args[0],
				Desc:   desc,
				Due:    due,
				Scope:  model.Scope(scope),
				Locale: locale,
			})
			if err != nil {
				return fmt.Errorf("plan goal: %w", err)
			}

			var plan model.PlanResponse
			if err := json.Unmarshal(resp.Data, &plan); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("%-4s  %-50s  %s\n", "ID", "SUBTASK", "HOURS")
			for _, st := range plan.Subtasks {
				fmt.Printf("%-4d  %-50s  %.0f\n", st.ID, st.Text, st.Duration)
			}
			if plan.Notes != "" {
				fmt.Printf("\nnotes: %s\n", plan.Notes)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "Goal description (free text; bullets become subtasks on fallback)")
	cmd.Flags().StringVar(&due, "due", "", "Deadline (yyyy-mm-dd)")
	cmd.Flags().StringVar(&scope, "scope", "weekly", "Planning scope: daily, weekly, monthly")
	cmd.Flags().StringVar(&locale, "locale", "", "Locale hint for the planner")
	return cmd
}
