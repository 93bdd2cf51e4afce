package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server connectivity and the latest reconciliation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			fmt.Printf("Server: %s\n", viper.GetString("server_url"))

			if err := apiClient.Health(ctx); err != nil {
				fmt.Println("Status: unreachable")
				return err
			}
			fmt.Println("Status: healthy")

			for _, kind := range []string{"expired", "renewals"} {
				run, err := apiClient.Reconciliation().LatestRun(ctx, kind)
				if err != nil {
					fmt.Printf("Last %s run: none\n", kind)
					continue
				}
				outcome := formatSource(run.Source)
				if run.Error != "" {
					outcome = "failed: " + truncate(run.Error, 60)
				}
				fmt.Printf("Last %s run: #%d %s, %d rows, %s, %s ago\n",
					kind, run.ID, outcome, run.Rows, formatPartial(run.Partial),
					time.Since(run.CreatedAt).Round(time.Minute))
			}
			return nil
		},
	}
}
