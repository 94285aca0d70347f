package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/flowplan/pkg/model"
)

func newScheduleCmd() *cobra.Command {
	var (
		tasksFile string
		startDate string
		workHours string
		timezone  string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Place subtasks from a JSON file into workday slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(tasksFile)
			if err != nil {
				return fmt.Errorf("read tasks file: %w", err)
			}
			var tasks []model.Subtask
			if err := json.Unmarshal(data, &tasks); err != nil {
				return fmt.Errorf("parse tasks file: %w", err)
			}

			resp, err := client.Post("/api/v1/schedule", model.ScheduleRequest{
				Tasks:     tasks,
				StartDate: startDate,
				WorkHours: workHours,
				Timezone:  timezone,
			})
			if err != nil {
				return fmt.Errorf("schedule: %w", err)
			}

			var out struct {
				Scheduled []model.PlacedEvent `json:"scheduled"`
			}
			if err := json.Unmarshal(resp.Data, &out); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			printEvents(out.Scheduled)
			return nil
		},
	}

	cmd.Flags().StringVar(&tasksFile, "tasks", "", "Path to a JSON array of subtasks")
	cmd.Flags().StringVar(&startDate, "start", "", "Start date (yyyy-mm-dd, default today)")
	cmd.Flags().StringVar(&workHours, "work-hours", "", `Work window, "HH:MM-HH:MM"`)
	cmd.Flags().StringVar(&timezone, "timezone", "", "Timezone label for the events")
	cmd.MarkFlagRequired("tasks")
	return cmd
}

func printEvents(events []model.PlacedEvent) {
	fmt.Printf("%-4s  %-40s  %-12s  %-7s  %s\n", "ID", "TITLE", "DATE", "START", "END")
	for _, ev := range events {
		fmt.Printf("%-4d  %-40s  %-12s  %-7s  %s\n", ev.ID, ev.Title, ev.DateStr, ev.Start, ev.End)
	}
}
