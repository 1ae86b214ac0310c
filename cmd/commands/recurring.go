package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-petr/lifemanager/cmd/httpserver"
)

const dateLayout = "2006-01-02"

var processDate string

var recurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Manage recurring transactions",
}

var recurringProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Book the entries of every schedule due on the date",
	Example: `  lifemanager recurring process
  lifemanager recurring process --date 2024-03-01`,
	RunE: func(cmd *cobra.Command, args []string) error {
		day := time.Now().UTC()

		if processDate != "" {
			var err error

			day, err = time.Parse(dateLayout, processDate)
			if err != nil {
				return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", processDate)
			}
		}

		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()

		ctx := a.logger.WithContext(cmd.Context())

		rdb, err := a.redis(ctx)
		if err != nil {
			return err
		}
		defer rdb.Close()

		result, err := httpserver.NewRecurringService(a.db, rdb).Process(ctx, day)
		if err != nil {
			a.logger.Error().Err(err).Msg("recurring processing failed")
			return err
		}

		a.logger.Info().
			Str("date", day.Format(dateLayout)).
			Int("processed", result.Processed).
			Int("skipped", result.Skipped).
			Int("failed", result.Failed).
			Msg("recurring transactions processed")

		return nil
	},
}

func init() {
	recurringProcessCmd.Flags().StringVar(&processDate, "date", "", "day to process (YYYY-MM-DD), today by default")
	recurringCmd.AddCommand(recurringProcessCmd)
}
