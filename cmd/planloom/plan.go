package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/planloom/planloom/internal/pipeline"
	"github.com/planloom/planloom/internal/store"
)

func planCmd() *cobra.Command {
	var (
		docsDir         string
		feasibilityPath string
		outPath         string
		maxIterations   int
		plain           bool
	)

	cmd := &cobra.Command{
		Use:          "plan <task description>",
		Short:        "Generate a vetted implementation plan from a directory of project documents",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			task := strings.TrimSpace(strings.Join(args, " "))

			db, workRoot, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			cfg, err := loadConfig(workRoot)
			if err != nil {
				return err
			}
			if maxIterations > 0 {
				cfg.Budgets.MaxIterations = maxIterations
			}

			gen, err := newGenerator(cmd.Context(), cfg.LLM)
			if err != nil {
				return err
			}

			paths, err := collectDocuments(docsDir)
			if err != nil {
				return err
			}

			p := pipeline.New(cfg, gen, store.NewStore(db))
			res, err := p.Plan(cmd.Context(), task, paths, feasibilityPath)
			if err != nil {
				if len(res.Iterations) > 0 {
					fmt.Fprintf(os.Stderr, "run %s failed after %d iteration(s); last draft preserved in the run store\n",
						res.RunID, len(res.Iterations))
				}
				return err
			}

			if outPath != "" {
				if err := os.WriteFile(outPath, []byte(res.Plan), 0o644); err != nil {
					return fmt.Errorf("write plan: %w", err)
				}
			}

			fmt.Printf("Run %s: %s after %d iteration(s) in %s (readiness: %s)\n\n",
				res.RunID, res.Outcome, len(res.Iterations), res.ExecutionTime.Round(10*time.Millisecond), res.Report.Readiness)

			if plain {
				fmt.Println(res.Plan)
				return nil
			}
			rendered, err := renderMarkdown(res.Plan)
			if err != nil {
				fmt.Println(res.Plan)
				return nil
			}
			fmt.Println(rendered)
			return nil
		},
	}

	cmd.Flags().StringVarP(&docsDir, "docs", "d", "docs", "directory of project documents")
	cmd.Flags().StringVar(&feasibilityPath, "feasibility", "", "path to a feasibility note to thread into drafting")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the final plan to this file")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "override budgets.max_iterations")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the plan without terminal rendering")
	return cmd
}

func renderMarkdown(md string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(md)
}
