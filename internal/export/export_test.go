package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/institutofocos/consultorpro-sub003/internal/store"
)

func sampleData() ([]store.WorkSession, map[int64]*store.Stage, map[int64]*store.Project) {
	now := time.Now().UTC()
	end := now
	sixty := 60
	thirty := 30

	sessions := []store.WorkSession{
		{
			ID:              "a1b2c3",
			StageID:         1,
			StartTime:       now.Add(-1 * time.Hour),
			EndTime:         &end,
			Status:          store.SessionCompleted,
			DurationMinutes: &sixty,
			CreatedAt:       now,
		},
		{
			ID:              "d4e5f6",
			StageID:         2,
			StartTime:       now.Add(-30 * time.Minute),
			EndTime:         &end,
			Status:          store.SessionPaused,
			DurationMinutes: &thirty,
			CreatedAt:       now,
		},
		{
			ID:        "g7h8i9",
			StageID:   1,
			StartTime: now.Add(-10 * time.Minute),
			EndTime:   nil, // still open
			Status:    store.SessionActive,
			CreatedAt: now,
		},
	}

	stages := map[int64]*store.Stage{
		1: {ID: 1, ProjectID: 10, Name: "Discovery"},
		2: {ID: 2, ProjectID: 20, Name: "Build"},
	}
	projects := map[int64]*store.Project{
		10: {ID: 10, Name: "Website Redesign", Color: "#FF0000"},
		20: {ID: 20, Name: "ERP Migration", Color: "#00FF00"},
	}

	return sessions, stages, projects
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	sessions, stages, projects := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	err := ToCSV(sessions, stages, projects, path)
	if err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	// Check header
	header := records[0]
	expectedHeader := []string{"ID", "Project", "Stage", "Start", "End", "Status", "Minutes", "Duration"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	// Check first data row
	row := records[1]
	if row[0] != "a1b2c3" {
		t.Fatalf("ID = %q, want a1b2c3", row[0])
	}
	if row[1] != "Website Redesign" {
		t.Fatalf("Project = %q, want Website Redesign", row[1])
	}
	if row[2] != "Discovery" {
		t.Fatalf("Stage = %q, want Discovery", row[2])
	}
	if row[6] != "60" {
		t.Fatalf("Minutes = %q, want 60", row[6])
	}
	if row[7] != "01:00" {
		t.Fatalf("Duration = %q, want 01:00", row[7])
	}

	// Check open session has empty end time and zero minutes
	openRow := records[3]
	if openRow[4] != "" {
		t.Fatalf("open session should have empty end time, got %q", openRow[4])
	}
	if openRow[6] != "0" {
		t.Fatalf("open session minutes = %q, want 0", openRow[6])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	err := ToCSV(nil, nil, nil, path)
	if err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	records, _ := r.ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVUnknownStage(t *testing.T) {
	sessions := []store.WorkSession{
		{ID: "x", StageID: 999, StartTime: time.Now(), Status: store.SessionCompleted},
	}
	path := filepath.Join(t.TempDir(), "unknown.csv")

	err := ToCSV(sessions, map[int64]*store.Stage{}, map[int64]*store.Project{}, path)
	if err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	records, _ := r.ReadAll()
	if records[1][1] != "Unknown" || records[1][2] != "Unknown" {
		t.Fatalf("expected 'Unknown' for missing stage, got %q/%q", records[1][1], records[1][2])
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(nil, nil, nil, "/nonexistent/dir/file.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	now := time.Now()
	end := now
	sixty := 60
	sessions := []store.WorkSession{
		{
			ID:              "s1",
			StageID:         1,
			StartTime:       now,
			EndTime:         &end,
			Status:          store.SessionCompleted,
			DurationMinutes: &sixty,
		},
	}
	stages := map[int64]*store.Stage{
		1: {ID: 1, ProjectID: 10, Name: `Stage "Special", phase 2`},
	}
	projects := map[int64]*store.Project{
		10: {ID: 10, Name: `Project "Special"`},
	}
	path := filepath.Join(t.TempDir(), "special.csv")

	err := ToCSV(sessions, stages, projects, path)
	if err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("CSV should be valid even with special chars: %v", err)
	}
	if records[1][1] != `Project "Special"` {
		t.Fatalf("project name mangled: %q", records[1][1])
	}
	if records[1][2] != `Stage "Special", phase 2` {
		t.Fatalf("stage name mangled: %q", records[1][2])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	sessions, stages, projects := sampleData()
	path := filepath.Join(t.TempDir(), "test.json")

	err := ToJSON(sessions, stages, projects, path)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 {
		t.Fatalf("count = %d, want 3", result.Count)
	}
	if len(result.Sessions) != 3 {
		t.Fatalf("sessions = %d, want 3", len(result.Sessions))
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}

	// Check first session
	s := result.Sessions[0]
	if s.ID != "a1b2c3" {
		t.Fatalf("ID = %q, want a1b2c3", s.ID)
	}
	if s.Project != "Website Redesign" {
		t.Fatalf("Project = %q, want Website Redesign", s.Project)
	}
	if s.Minutes != 60 {
		t.Fatalf("Minutes = %d, want 60", s.Minutes)
	}
	if s.Duration != "01:00" {
		t.Fatalf("Duration = %q, want 01:00", s.Duration)
	}
	if s.Status != "completed" {
		t.Fatalf("Status = %q, want completed", s.Status)
	}

	// Open session should have empty end_time
	open := result.Sessions[2]
	if open.EndTime != "" {
		t.Fatalf("open session end_time should be empty, got %q", open.EndTime)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	err := ToJSON(nil, nil, nil, path)
	if err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Sessions != nil {
		t.Fatal("sessions should be nil/null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	err := ToJSON(nil, nil, nil, "/nonexistent/dir/file.json")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(nil, nil, nil, path)

	data, _ := os.ReadFile(path)
	// Pretty-printed JSON should contain newlines and indentation
	if !strings.Contains(string(data), "\n") {
		t.Fatal("JSON should be pretty-printed with newlines")
	}
	if !strings.Contains(string(data), "  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}

func TestToJSONValidTimestamps(t *testing.T) {
	sessions, stages, projects := sampleData()
	path := filepath.Join(t.TempDir(), "ts.json")
	ToJSON(sessions, stages, projects, path)

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	// exported_at should be valid RFC3339
	_, err := time.Parse(time.RFC3339, result.ExportedAt)
	if err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	for _, s := range result.Sessions {
		_, err := time.Parse(time.RFC3339, s.StartTime)
		if err != nil {
			t.Fatalf("start_time is not valid RFC3339: %q", s.StartTime)
		}
	}
}

// ============================================================
// formatMinutes (internal helper)
// ============================================================

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "00:00"},
		{1, "00:01"},
		{60, "01:00"},
		{61, "01:01"},
		{1440, "24:00"},
		{1501, "25:01"},
	}

	for _, tt := range tests {
		got := formatMinutes(tt.minutes)
		if got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
