package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newRenewalsCmd() *cobra.Command {
	var windowDays int

	cmd := &cobra.Command{
		Use:   "renewals",
		Short: "List purchase cycles due to expire soon",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			result, err := apiClient.Reconciliation().Renewals(ctx, windowDays)
			if err != nil {
				return fmt.Errorf("failed to list renewals: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			if len(result.Items) == 0 {
				fmt.Printf("No renewals due in the next %d days.\n", result.WindowDays)
				return nil
			}

			table := NewTable("USER", "EMAIL", "PRODUCT", "PURCHASE", "ENDS")
			for _, row := range result.Items {
				table.AddRow(
					strconv.FormatInt(row.UserID, 10),
					truncate(row.UserEmail, 32),
					truncate(row.Product, 28),
					strconv.FormatInt(row.PurchaseID, 10),
					row.EndsAt.Format("2006-01-02"),
				)
			}
			table.Render()

			fmt.Printf("\n%d due, window %dd (%s)\n",
				len(result.Items), result.WindowDays, formatPartial(result.Partial))
			return nil
		},
	}

	cmd.Flags().IntVarP(&windowDays, "window", "w", 0, "lookahead window in days (0 = server default)")

	return cmd
}
