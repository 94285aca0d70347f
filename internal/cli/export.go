package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <plan-id>",
		Short: "Download a saved plan as an iCalendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := client.GetRaw("/api/v1/goals/" + args[0] + "/export")
			if err != nil {
				return fmt.Errorf("export goal: %w", err)
			}

			out := output
			if out == "" {
				out = args[0] + ".ics"
			}
			if out == "-" {
				os.Stdout.Write(data)
				return nil
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Printf("Wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `Output file (default "<plan-id>.ics", "-" for stdout)`)
	return cmd
}
