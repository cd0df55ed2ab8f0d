package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var sweepUserFlag string

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one scheduling sweep now",
	Long: `Scores open tasks, schedules any missing reminders and dispatches
due notifications. With --user, sweeps a single user instead of every
active one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetContainer()
		out := cmd.OutOrStdout()
		if c == nil {
			fmt.Fprintln(out, "Sweeping requires a database connection.")
			fmt.Fprintln(out, "Start services with: docker-compose up -d")
			return nil
		}

		now := time.Now()

		if sweepUserFlag != "" {
			userID, err := uuid.Parse(sweepUserFlag)
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", sweepUserFlag, err)
			}
			result, err := c.Scheduler.SweepUser(cmd.Context(), userID, now)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Scored %d tasks, created %d reminders, dispatched %d notifications in %d batches\n",
				result.TasksScored, result.RemindersCreated,
				result.NotificationsDispatched, result.BatchesDispatched)
			return nil
		}

		result, err := c.Scheduler.Sweep(cmd.Context(), now)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Swept %d users (%d failed): %d tasks scored, %d reminders created, %d notifications dispatched\n",
			result.UsersProcessed, result.UsersFailed,
			result.TasksScored, result.RemindersCreated, result.NotificationsDispatched)
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepUserFlag, "user", "", "sweep a single user id")
	rootCmd.AddCommand(sweepCmd)
}
