package store

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestStage creates a client, project and stage and returns the stage.
func newTestStage(t *testing.T, s *Store) *Stage {
	t.Helper()
	c, err := s.CreateClient("Acme Corp", "Acme", "contact@acme.test")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	p, err := s.CreateProject(c.ID, nil, "Rollout", "#6C63FF", "active", 500000)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	st, err := s.CreateStage(p.ID, "Discovery", 1, 100000, 10)
	if err != nil {
		t.Fatalf("create stage: %v", err)
	}
	return st
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/consultorpro.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen, should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestSeedSettings(t *testing.T) {
	s := newTestStore(t)

	v, err := s.GetSetting("auto_pause_minutes")
	if err != nil {
		t.Fatal(err)
	}
	if v != "240" {
		t.Fatalf("expected auto_pause_minutes 240, got %q", v)
	}
}

// ============================================================
// Clients
// ============================================================

func TestClientCRUD(t *testing.T) {
	s := newTestStore(t)

	c, err := s.CreateClient("Globex", "Globex Inc", "hq@globex.test")
	if err != nil {
		t.Fatal(err)
	}
	if c.ID == 0 || c.Name != "Globex" {
		t.Fatalf("unexpected client: %+v", c)
	}

	if err := s.UpdateClient(c.ID, "Globex", "Globex International", "hq@globex.test"); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetClient(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Company != "Globex International" {
		t.Fatalf("expected updated company, got %q", got.Company)
	}

	if err := s.ArchiveClient(c.ID); err != nil {
		t.Fatal(err)
	}
	active, err := s.ListClients(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active clients, got %d", len(active))
	}
	all, err := s.ListClients(true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || !all[0].Archived {
		t.Fatalf("expected one archived client, got %+v", all)
	}
}

func TestClientNameUnique(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.CreateClient("Acme", "", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateClient("Acme", "", ""); err == nil {
		t.Fatal("expected unique constraint error on duplicate client name")
	}
}

// ============================================================
// Consultants
// ============================================================

func TestConsultantCRUD(t *testing.T) {
	s := newTestStore(t)

	c, err := s.CreateConsultant("Ana Souza", "ana@consultorpro.test", 25000)
	if err != nil {
		t.Fatal(err)
	}
	if c.HourlyRateCents != 25000 {
		t.Fatalf("expected rate 25000, got %d", c.HourlyRateCents)
	}

	if err := s.UpdateConsultant(c.ID, "Ana Souza", "ana@consultorpro.test", 30000); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetConsultant(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.HourlyRateCents != 30000 {
		t.Fatalf("expected updated rate, got %d", got.HourlyRateCents)
	}

	if err := s.ArchiveConsultant(c.ID); err != nil {
		t.Fatal(err)
	}
	active, err := s.ListConsultants(false)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 0 {
		t.Fatalf("expected no active consultants, got %d", len(active))
	}
}

// ============================================================
// Projects
// ============================================================

func TestProjectCRUD(t *testing.T) {
	s := newTestStore(t)

	c, _ := s.CreateClient("Acme", "", "")
	cons, _ := s.CreateConsultant("Ana", "", 20000)

	p, err := s.CreateProject(c.ID, &cons.ID, "Website", "#FF6B6B", "planned", 1200000)
	if err != nil {
		t.Fatal(err)
	}
	if p.ConsultantID == nil || *p.ConsultantID != cons.ID {
		t.Fatalf("expected consultant %d, got %+v", cons.ID, p.ConsultantID)
	}

	if err := s.UpdateProject(p.ID, "Website", "#FF6B6B", "active", 1200000, nil); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetProject(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "active" {
		t.Fatalf("expected status active, got %q", got.Status)
	}
	if got.ConsultantID != nil {
		t.Fatal("expected consultant cleared")
	}

	byClient, err := s.ListProjectsByClient(c.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(byClient) != 1 {
		t.Fatalf("expected 1 project for client, got %d", len(byClient))
	}

	if err := s.ArchiveProject(p.ID); err != nil {
		t.Fatal(err)
	}
	active, _ := s.ListProjects(false)
	if len(active) != 0 {
		t.Fatalf("expected no active projects, got %d", len(active))
	}
}

func TestProjectRequiresClient(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.CreateProject(999, nil, "Orphan", "#000000", "planned", 0); err == nil {
		t.Fatal("expected foreign key error for missing client")
	}
}

// ============================================================
// Stages
// ============================================================

func TestStageCRUD(t *testing.T) {
	s := newTestStore(t)
	st := newTestStage(t, s)

	if st.TimerStatus != TimerStopped {
		t.Fatalf("new stage should start stopped, got %s", st.TimerStatus)
	}
	if st.TimeSpentMinutes != 0 || st.TimerStartedAt != nil {
		t.Fatalf("new stage should carry no time, got %+v", st)
	}

	if err := s.UpdateStage(st.ID, "Discovery", 2, "in_progress", 100000, 12); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetStage(st.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Position != 2 || got.Status != "in_progress" {
		t.Fatalf("unexpected stage after update: %+v", got)
	}

	stages, err := s.ListStages(st.ProjectID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stages) != 1 {
		t.Fatalf("expected 1 stage, got %d", len(stages))
	}
}

func TestStageListOrdering(t *testing.T) {
	s := newTestStore(t)
	st := newTestStage(t, s)

	if _, err := s.CreateStage(st.ProjectID, "Build", 3, 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateStage(st.ProjectID, "Design", 2, 0, 0); err != nil {
		t.Fatal(err)
	}

	stages, err := s.ListStages(st.ProjectID)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Discovery", "Design", "Build"}
	for i, name := range want {
		if stages[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, stages[i].Name)
		}
	}
}

func TestUpdateStageTimer(t *testing.T) {
	s := newTestStore(t)
	st := newTestStage(t, s)

	started := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	err := s.UpdateStageTimer(st.ID, StageTimerUpdate{
		TimerStatus:    TimerRunning,
		TimerStartedAt: &started,
	})
	if err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetStage(st.ID)
	if got.TimerStatus != TimerRunning {
		t.Fatalf("expected running, got %s", got.TimerStatus)
	}
	if got.TimerStartedAt == nil || !got.TimerStartedAt.Equal(started) {
		t.Fatalf("expected started_at %v, got %v", started, got.TimerStartedAt)
	}
	// Running transition must not touch the accumulated total.
	if got.TimeSpentMinutes != 0 {
		t.Fatalf("start should not change time spent, got %d", got.TimeSpentMinutes)
	}

	minutes := 42
	err = s.UpdateStageTimer(st.ID, StageTimerUpdate{
		TimerStatus:      TimerPaused,
		TimeSpentMinutes: &minutes,
	})
	if err != nil {
		t.Fatal(err)
	}

	got, _ = s.GetStage(st.ID)
	if got.TimerStatus != TimerPaused || got.TimeSpentMinutes != 42 {
		t.Fatalf("unexpected stage after pause: %+v", got)
	}
	if got.TimerStartedAt != nil {
		t.Fatal("pause should clear timer_started_at")
	}
}

// ============================================================
// Transactions
// ============================================================

func TestTransactions(t *testing.T) {
	s := newTestStore(t)
	st := newTestStage(t, s)

	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if _, err := s.CreateTransaction(st.ProjectID, &st.ID, "income", 250000, "first invoice", day); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateTransaction(st.ProjectID, nil, "expense", 40000, "travel", day.AddDate(0, 0, 3)); err != nil {
		t.Fatal(err)
	}

	txns, err := s.ListTransactions(st.ProjectID)
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	// Most recent first.
	if txns[0].Kind != "expense" {
		t.Fatalf("expected expense first, got %s", txns[0].Kind)
	}

	finances, err := s.GetProjectFinances()
	if err != nil {
		t.Fatal(err)
	}
	if len(finances) != 1 {
		t.Fatalf("expected 1 project, got %d", len(finances))
	}
	f := finances[0]
	if f.IncomeCents != 250000 || f.ExpenseCents != 40000 {
		t.Fatalf("unexpected finances: %+v", f)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettings(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetSetting("daily_goal_minutes", "360"); err != nil {
		t.Fatal(err)
	}
	v, err := s.GetSetting("daily_goal_minutes")
	if err != nil {
		t.Fatal(err)
	}
	if v != "360" {
		t.Fatalf("expected 360, got %q", v)
	}

	if _, err := s.GetSetting("missing_key"); err == nil {
		t.Fatal("expected error for missing key")
	}

	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) < 3 {
		t.Fatalf("expected seeded settings, got %d", len(all))
	}
}

func TestGetSettingInt(t *testing.T) {
	s := newTestStore(t)

	if got := s.GetSettingInt("auto_pause_minutes", 60); got != 240 {
		t.Fatalf("expected 240, got %d", got)
	}
	if got := s.GetSettingInt("missing_key", 60); got != 60 {
		t.Fatalf("expected fallback 60, got %d", got)
	}

	s.SetSetting("auto_pause_minutes", "not-a-number")
	if got := s.GetSettingInt("auto_pause_minutes", 60); got != 60 {
		t.Fatalf("expected fallback on malformed value, got %d", got)
	}
}
