package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/flowplan/pkg/model"
)

func newGoalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Manage saved goal plans",
	}
	cmd.AddCommand(
		newGoalsListCmd(),
		newGoalsCreateCmd(),
		newGoalsShowCmd(),
		newGoalsDeleteCmd(),
	)
	return cmd
}

func newGoalsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/goals/")
			if err != nil {
				return fmt.Errorf("list goals: %w", err)
			}

			var plans []model.SavedPlan
			if err := json.Unmarshal(resp.Data, &plans); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			if len(plans) == 0 {
				fmt.Println("No saved plans found.")
				return nil
			}

			fmt.Printf("%-14s  %-40s  %-8s  %-7s  %s\n", "ID", "TITLE", "SCOPE", "EVENTS", "CREATED")
			for _, p := range plans {
				fmt.Printf("%-14s  %-40s  %-8s  %-7d  %s\n",
					p.ID, p.Title, p.Scope, len(p.Events), p.CreatedAt.Format("2006-01-02 15:04"))
			}

			if resp.Pagination != nil && resp.Pagination.HasMore {
				fmt.Printf("\n(%d of %d shown)\n", len(plans), resp.Pagination.Total)
			}
			return nil
		},
	}
}

func newGoalsCreateCmd() *cobra.Command {
	var (
		desc      string
		due       string
		scope     string
		startDate string
		workHours string
		timezone  string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Plan, schedule, and save a goal in one step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Post("/api/v1/goals/", map[string]any{
				"title":      args[0],
				"desc":       desc,
				"due":        due,
				"scope":      scope,
				"start_date": startDate,
				"work_hours": workHours,
				"timezone":   timezone,
			})
			if err != nil {
				return fmt.Errorf("create goal: %w", err)
			}

			var plan model.SavedPlan
			if err := json.Unmarshal(resp.Data, &plan); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("Saved plan %s (%d subtasks, %d events)\n\n",
				plan.ID, len(plan.Subtasks), len(plan.Events))
			printEvents(plan.Events)
			return nil
		},
	}

	cmd.Flags().StringVar(&desc, "desc", "", "Goal description")
	cmd.Flags().StringVar(&due, "due", "", "Deadline (yyyy-mm-dd)")
	cmd.Flags().StringVar(&scope, "scope", "weekly", "Planning scope: daily, weekly, monthly")
	cmd.Flags().StringVar(&startDate, "start", "", "Start date override (yyyy-mm-dd)")
	cmd.Flags().StringVar(&workHours, "work-hours", "", `Work window, "HH:MM-HH:MM"`)
	cmd.Flags().StringVar(&timezone, "timezone", "", "Timezone label for the events")
	return cmd
}

func newGoalsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/goals/" + args[0] + "/")
			if err != nil {
				return fmt.Errorf("get goal: %w", err)
			}

			var plan model.SavedPlan
			if err := json.Unmarshal(resp.Data, &plan); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			fmt.Printf("%s  %s  (%s, %s)\n", plan.ID, plan.Title, plan.Scope, plan.Timezone)
			if plan.Desc != "" {
				fmt.Println(plan.Desc)
			}
			fmt.Println()
			printEvents(plan.Events)
			return nil
		},
	}
}

func newGoalsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.Delete("/api/v1/goals/" + args[0] + "/"); err != nil {
				return fmt.Errorf("delete goal: %w", err)
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}
