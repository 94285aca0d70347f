package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/health")
			if err != nil {
				return fmt.Errorf("health check: %w", err)
			}

			var health map[string]any
			if err := json.Unmarshal(resp.Data, &health); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			for _, key := range []string{"status", "version", "go_version", "uptime", "store", "planner", "caldav"} {
				if v, ok := health[key]; ok {
					fmt.Printf("%-12s %v\n", key+":", v)
				}
			}
			return nil
		},
	}
}
