package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	var (
		page     int
		pageSize int
		latest   bool
		kind     string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the reconciliation audit trail",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if latest {
				run, err := apiClient.Reconciliation().LatestRun(ctx, kind)
				if err != nil {
					return fmt.Errorf("failed to get latest run: %w", err)
				}
				return printOutput(run)
			}

			result, err := apiClient.Reconciliation().Runs(ctx, page, pageSize)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			if len(result.Data) == 0 {
				fmt.Println("No reconciliation runs recorded.")
				return nil
			}

			table := NewTable("ID", "KIND", "SOURCE", "ROWS", "SCOPE", "DURATION", "TRIGGER", "WHEN")
			for _, run := range result.Data {
				source := run.Source
				if run.Error != "" {
					source = "error"
				}
				table.AddRow(
					strconv.FormatInt(run.ID, 10),
					run.Kind,
					source,
					strconv.Itoa(run.Rows),
					formatPartial(run.Partial),
					fmt.Sprintf("%dms", run.DurationMS),
					run.Trigger,
					run.CreatedAt.Format("2006-01-02 15:04"),
				)
			}
			table.Render()

			fmt.Printf("\nPage %d of %d (%d total)\n", result.Page, result.TotalPages, result.TotalItems)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "runs per page")
	cmd.Flags().BoolVar(&latest, "latest", false, "show only the most recent run")
	cmd.Flags().StringVar(&kind, "kind", "expired", "run kind for --latest: expired or renewals")

	return cmd
}
