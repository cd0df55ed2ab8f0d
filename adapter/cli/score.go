package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	taskpersistence "github.com/hearthhq/hearth/internal/tasks/infrastructure/persistence"
	"github.com/hearthhq/hearth/internal/urgency"
)

var scoreExplainFlag bool

var scoreCmd = &cobra.Command{
	Use:   "score <user-id>",
	Short: "Score a user's open tasks by urgency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := GetContainer()
		out := cmd.OutOrStdout()
		if c == nil {
			fmt.Fprintln(out, "Scoring requires a database connection.")
			fmt.Fprintln(out, "Start services with: docker-compose up -d")
			return nil
		}

		userID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id %q: %w", args[0], err)
		}

		taskRepo := taskpersistence.NewPostgresTaskRepository(c.Pool)
		tasks, err := taskRepo.OpenTasksForUser(cmd.Context(), userID)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Fprintln(out, "No open tasks.")
			return nil
		}

		titles := make(map[uuid.UUID]string, len(tasks))
		for _, t := range tasks {
			titles[t.ID] = t.Title
		}

		scores := urgency.SortByScore(c.Scorer.ScoreBatch(tasks, time.Now()), true)

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tLEVEL\tTASK")
		for _, sc := range scores {
			fmt.Fprintf(w, "%d\t%s\t%s\n", sc.Total, sc.Level, titles[sc.TaskID])
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if scoreExplainFlag {
			for _, sc := range scores {
				fmt.Fprintf(out, "\n%s\n", titles[sc.TaskID])
				for _, line := range sc.Explanations {
					fmt.Fprintf(out, "  - %s\n", line)
				}
				for _, line := range sc.Recommendations {
					fmt.Fprintf(out, "  > %s\n", line)
				}
			}
		}

		dist := urgency.Distribute(scores)
		fmt.Fprintf(out, "\n%d tasks, mean score %.1f, %d overdue\n",
			dist.Total, dist.MeanScore, dist.OverdueCount)
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreExplainFlag, "explain", false, "print factor explanations per task")
	rootCmd.AddCommand(scoreCmd)
}
