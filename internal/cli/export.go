package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/institutofocos/consultorpro-sub003/internal/export"
	"github.com/institutofocos/consultorpro-sub003/internal/store"
)

func newExportCommand() *cobra.Command {
	var (
		format  string
		out     string
		days    int
		project int64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export work sessions to CSV or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}

			_, s, err := setup()
			if err != nil {
				return err
			}
			defer s.Close()

			filter := store.SessionFilter{}
			if days > 0 {
				from := time.Now().UTC().AddDate(0, 0, -days)
				filter.From = &from
			}
			if project > 0 {
				filter.ProjectID = &project
			}

			sessions, err := s.ListSessions(filter)
			if err != nil {
				return err
			}

			stages, projects, err := lookupTables(s)
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("consultorpro-%s.%s", time.Now().Format("2006-01-02"), format)
			}

			switch format {
			case "csv":
				err = export.ToCSV(sessions, stages, projects, out)
			case "json":
				err = export.ToJSON(sessions, stages, projects, out)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d session(s) to %s\n", len(sessions), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or json")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default consultorpro-<date>.<format>)")
	cmd.Flags().IntVar(&days, "days", 0, "only sessions from the last N days (0 = all)")
	cmd.Flags().Int64Var(&project, "project", 0, "only sessions for one project id")

	return cmd
}

func lookupTables(s *store.Store) (map[int64]*store.Stage, map[int64]*store.Project, error) {
	projectList, err := s.ListProjects(true)
	if err != nil {
		return nil, nil, err
	}
	projects := make(map[int64]*store.Project, len(projectList))
	stages := make(map[int64]*store.Stage)
	for i := range projectList {
		p := &projectList[i]
		projects[p.ID] = p
		stageList, err := s.ListStages(p.ID)
		if err != nil {
			return nil, nil, err
		}
		for j := range stageList {
			stages[stageList[j].ID] = &stageList[j]
		}
	}
	return stages, projects, nil
}
