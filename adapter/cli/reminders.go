package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	reminders "github.com/hearthhq/hearth/internal/reminders/domain"
)

var remindersCmd = &cobra.Command{
	Use:   "reminders <user-id>",
	Short: "List a user's reminders and delivery metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetContainer()
		out := cmd.OutOrStdout()
		if c == nil {
			fmt.Fprintln(out, "Listing reminders requires a database connection.")
			fmt.Fprintln(out, "Start services with: docker-compose up -d")
			return nil
		}

		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}

		rems, err := c.ReminderRepo.FindByUser(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if len(rems) == 0 {
			fmt.Fprintln(out, "No reminders.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SCHEDULED\tTYPE\tPRIORITY\tSTATUS\tTITLE")
		for _, rem := range rems {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				rem.ScheduledAt.Format("2006-01-02 15:04"),
				rem.Type, rem.Priority, rem.Status, rem.Content.Title)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		m := reminders.Aggregate(rems)
		fmt.Fprintf(out, "\n%d total: %d scheduled, %d sent, %d delivered, %d failed (delivery rate %.0f%%)\n",
			m.Total, m.Scheduled, m.Sent, m.Delivered, m.Failed, m.DeliveryRate()*100)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(remindersCmd)
}
