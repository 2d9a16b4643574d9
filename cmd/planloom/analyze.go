package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/planloom/planloom/internal/assemble"
	"github.com/planloom/planloom/internal/pipeline"
	"github.com/planloom/planloom/internal/store"
)

func analyzeCmd() *cobra.Command {
	var (
		docsDir string
		format  string
	)

	cmd := &cobra.Command{
		Use:          "analyze",
		Short:        "Run the document pipeline and print the cross-document analysis report",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, workRoot, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			cfg, err := loadConfig(workRoot)
			if err != nil {
				return err
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
			analysis, err := p.Analyze(cmd.Context(), paths)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(analysis.Report)
			case "yaml":
				return yaml.NewEncoder(os.Stdout).Encode(analysis.Report)
			case "md":
				fmt.Println(assemble.Context(analysis.Extractions, analysis.Report))
				return nil
			default:
				return fmt.Errorf("unknown format %q (allowed: md, json, yaml)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&docsDir, "docs", "d", "docs", "directory of project documents")
	cmd.Flags().StringVarP(&format, "format", "f", "md", "output format: md, json, or yaml")
	return cmd
}
