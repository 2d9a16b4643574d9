package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/planloom/planloom/internal/session"
	"github.com/planloom/planloom/internal/store"
	"github.com/planloom/planloom/internal/web"
)

func uiCmd() *cobra.Command {
	var (
		port    int
		docsDir string
	)
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Start the web UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, _, closeFn, err := openDB()
			if err != nil {
				return err
			}
			defer closeFn()

			sessions := session.NewMemoryRepository()
			if docsDir != "" {
				paths, err := collectDocuments(docsDir)
				if err != nil {
					return err
				}
				runs, err := store.NewStore(db).ListRuns(cmd.Context())
				if err != nil {
					return err
				}
				runIDs := make([]string, 0, len(runs))
				for _, r := range runs {
					runIDs = append(runIDs, r.RunID)
				}
				sessions.Put(docsDir, session.Session{
					ID:            docsDir,
					CreatedAt:     time.Now().UTC(),
					DocumentPaths: paths,
					RunIDs:        runIDs,
				})
			}

			server := web.NewServer(sessions, store.NewStore(db))

			addr := fmt.Sprintf(":%d", port)
			fmt.Printf("Starting UI on http://localhost%s\n", addr)
			return http.ListenAndServe(addr, server.Routes())
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	cmd.Flags().StringVarP(&docsDir, "docs", "d", "", "seed a session from this documents directory")
	return cmd
}
