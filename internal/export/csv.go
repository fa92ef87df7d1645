package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/institutofocos/consultorpro-sub003/internal/store"
)

func ToCSV(sessions []store.WorkSession, stages map[int64]*store.Stage, projects map[int64]*store.Project, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Project", "Stage", "Start", "End", "Status", "Minutes", "Duration"}); err != nil {
		return err
	}

	for _, ws := range sessions {
		projectName, stageName := names(ws.StageID, stages, projects)
		endStr := ""
		if ws.EndTime != nil {
			endStr = ws.EndTime.Local().Format(time.RFC3339)
		}
		minutes := 0
		if ws.DurationMinutes != nil {
			minutes = *ws.DurationMinutes
		}

		row := []string{
			ws.ID,
			projectName,
			stageName,
			ws.StartTime.Local().Format(time.RFC3339),
			endStr,
			string(ws.Status),
			fmt.Sprintf("%d", minutes),
			formatMinutes(minutes),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func names(stageID int64, stages map[int64]*store.Stage, projects map[int64]*store.Project) (project, stage string) {
	project, stage = "Unknown", "Unknown"
	st, ok := stages[stageID]
	if !ok {
		return
	}
	stage = st.Name
	if p, ok := projects[st.ProjectID]; ok {
		project = p.Name
	}
	return
}

func formatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
