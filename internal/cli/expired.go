package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newExpiredCmd() *cobra.Command {
	var windowDays int

	cmd := &cobra.Command{
		Use:   "expired",
		Short: "List subscriptions that expired without renewal",
		Long: `Reconciles expired subscriptions across all users and lists every
product entitlement whose final purchase cycle ended inside the trailing
window with no active replacement.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			result, err := apiClient.Reconciliation().Expired(ctx, windowDays)
			if err != nil {
				return fmt.Errorf("failed to reconcile expirations: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(result)
			}

			if len(result.Items) == 0 {
				fmt.Printf("No expirations in the last %d days.\n", result.WindowDays)
				return nil
			}

			table := NewTable("USER", "EMAIL", "PRODUCT", "ENDED", "STATUS")
			for _, row := range result.Items {
				table.AddRow(
					strconv.FormatInt(row.UserID, 10),
					truncate(row.UserEmail, 32),
					truncate(row.Product, 28),
					row.EndsAt.Format("2006-01-02"),
					row.Status,
				)
			}
			table.Render()

			fmt.Printf("\n%d expired, window %dd, source %s (%s)\n",
				len(result.Items), result.WindowDays, formatSource(result.Source), formatPartial(result.Partial))
			return nil
		},
	}

	cmd.Flags().IntVarP(&windowDays, "window", "w", 0, "lookback window in days (0 = server default)")

	return cmd
}
