package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/planloom/planloom/internal/store"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "runs",
		Short:        "List past plan-generation runs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			runs, err := store.NewStore(db).ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs yet")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tCREATED\tSTATUS\tITER\tREADINESS\tCOVERAGE\tTASK")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\t%.2f\t%s\n",
					r.RunID, r.CreatedAt, r.Status, r.IterationCount, r.MaxIterations, r.Readiness, r.CoverageScore, r.Task)
			}
			return w.Flush()
		},
	}
	return cmd
}
