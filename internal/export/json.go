package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/institutofocos/consultorpro-sub003/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID        string `json:"id"`
	Project   string `json:"project"`
	Stage     string `json:"stage"`
	StageID   int64  `json:"stage_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time,omitempty"`
	Status    string `json:"status"`
	Minutes   int    `json:"minutes"`
	Duration  string `json:"duration"`
}

func ToJSON(sessions []store.WorkSession, stages map[int64]*store.Stage, projects map[int64]*store.Project, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
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

		export.Sessions = append(export.Sessions, jsonSession{
			ID:        ws.ID,
			Project:   projectName,
			Stage:     stageName,
			StageID:   ws.StageID,
			StartTime: ws.StartTime.Local().Format(time.RFC3339),
			EndTime:   endStr,
			Status:    string(ws.Status),
			Minutes:   minutes,
			Duration:  formatMinutes(minutes),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
