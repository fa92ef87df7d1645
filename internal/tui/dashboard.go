package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/institutofocos/consultorpro-sub003/internal/store"
	"github.com/institutofocos/consultorpro-sub003/internal/timer"
)

// stageOption is one row of the stage picker: a stage with its project
// context resolved.
type stageOption struct {
	stage        store.Stage
	projectName  string
	projectColor string
}

type dashboardModel struct {
	store    *store.Store
	registry *timer.Registry
	width    int
	height   int

	todayMinutes   int64
	todaySummary   []store.DailySummary
	recentSessions []store.WorkSession
	stageNames     map[int64]string
	options        []stageOption

	active      *timer.Controller
	activeLabel string

	// Stage picker state
	picking      bool
	pickerCursor int

	// Auto-pause prompt state
	prompting    bool
	promptCursor int
}

func newDashboardModel(s *store.Store, registry *timer.Registry) dashboardModel {
	return dashboardModel{
		store:      s,
		registry:   registry,
		stageNames: make(map[int64]string),
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) isRunning() bool {
	return d.active != nil && d.active.Status() == store.TimerRunning
}

func (d dashboardModel) isPaused() bool {
	return d.active != nil && d.active.Status() == store.TimerPaused
}

func (d dashboardModel) timeSpent() int {
	if d.active == nil {
		return 0
	}
	return d.active.TimeSpent()
}

type dashboardDataMsg struct {
	todayMinutes   int64
	todaySummary   []store.DailySummary
	recentSessions []store.WorkSession
	stageNames     map[int64]string
	options        []stageOption
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		total, _ := d.store.GetTodayMinutes()

		now := time.Now().UTC()
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		summary, _ := d.store.GetDailySummary(dayStart, dayStart.Add(24*time.Hour))

		sessions, _ := d.store.ListSessions(store.SessionFilter{Limit: 5})

		var options []stageOption
		stageNames := make(map[int64]string)
		projects, _ := d.store.ListProjects(false)
		for _, p := range projects {
			stages, _ := d.store.ListStages(p.ID)
			for _, st := range stages {
				stageNames[st.ID] = p.Name + " / " + st.Name
				options = append(options, stageOption{
					stage:        st,
					projectName:  p.Name,
					projectColor: p.Color,
				})
			}
		}

		return dashboardDataMsg{
			todayMinutes:   total,
			todaySummary:   summary,
			recentSessions: sessions,
			stageNames:     stageNames,
			options:        options,
		}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.todayMinutes = msg.todayMinutes
		d.todaySummary = msg.todaySummary
		d.recentSessions = msg.recentSessions
		d.stageNames = msg.stageNames
		d.options = msg.options
		return d, nil

	case tickMsg:
		if d.active != nil {
			wasRunning := d.active.Status() == store.TimerRunning
			d.active.Tick(time.Time(msg))
			// A running→paused flip during a tick means the ceiling
			// fired: surface the prompt.
			if wasRunning && d.active.Status() == store.TimerPaused {
				d.prompting = true
				d.promptCursor = 0
				return d, tea.Batch(
					d.loadData(),
					d.enqueue("stage.timer_paused", d.active.StageID()),
				)
			}
		}
		return d, nil

	case tea.KeyMsg:
		if d.prompting {
			return d.updatePrompt(msg)
		}
		if d.picking {
			return d.updatePicker(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if d.isRunning() {
				return d, nil
			}
			if d.isPaused() {
				return d.resumeTimer()
			}
			if len(d.options) == 0 {
				return d, func() tea.Msg {
					return statusMsg{text: "No stages yet. Press 4 to go to Projects and add one.", isError: true}
				}
			}
			if len(d.options) == 1 {
				return d.startTimer(d.options[0])
			}
			d.picking = true
			d.pickerCursor = 0
			return d, nil

		case key.Matches(msg, keys.Pause):
			if d.isRunning() {
				return d.pauseTimer()
			}
			if d.isPaused() {
				return d.resumeTimer()
			}
			return d, nil

		case key.Matches(msg, keys.Stop):
			return d.stopTimer()
		}
	}
	return d, nil
}

func (d dashboardModel) updatePicker(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.pickerCursor > 0 {
			d.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.pickerCursor < len(d.options)-1 {
			d.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		opt := d.options[d.pickerCursor]
		d.picking = false
		return d.startTimer(opt)
	case key.Matches(msg, keys.Back):
		d.picking = false
	}
	return d, nil
}

func (d dashboardModel) updatePrompt(msg tea.KeyMsg) (dashboardModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if d.promptCursor > 0 {
			d.promptCursor--
		}
	case key.Matches(msg, keys.Down):
		if d.promptCursor < 1 {
			d.promptCursor++
		}
	case key.Matches(msg, keys.Enter):
		d.prompting = false
		if d.promptCursor == 0 {
			return d.resumeTimer()
		}
		return d.stopTimer()
	}
	return d, nil
}

func (d dashboardModel) startTimer(opt stageOption) (dashboardModel, tea.Cmd) {
	stage := opt.stage
	c := d.registry.Obtain(&stage)
	c.SetAutoPause(d.store.GetSettingInt("auto_pause_minutes", 240))

	d.active = c
	d.activeLabel = opt.projectName + " / " + stage.Name

	if err := c.Start(); err != nil {
		return d, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Saved locally only: %v", err), isError: true}
		}
	}
	return d, tea.Batch(
		d.enqueue("stage.timer_started", stage.ID),
		func() tea.Msg { return timerStartedMsg{stage: &stage} },
	)
}

func (d dashboardModel) resumeTimer() (dashboardModel, tea.Cmd) {
	if d.active == nil {
		return d, nil
	}
	if err := d.active.Start(); err != nil {
		return d, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Saved locally only: %v", err), isError: true}
		}
	}
	return d, tea.Batch(
		d.enqueue("stage.timer_started", d.active.StageID()),
		func() tea.Msg { return timerStartedMsg{} },
	)
}

func (d dashboardModel) pauseTimer() (dashboardModel, tea.Cmd) {
	if d.active == nil {
		return d, nil
	}
	stageID := d.active.StageID()
	if err := d.active.Pause(); err != nil {
		return d, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Saved locally only: %v", err), isError: true}
		}
	}
	return d, tea.Batch(
		d.loadData(),
		d.enqueue("stage.timer_paused", stageID),
		func() tea.Msg { return timerPausedMsg{} },
	)
}

func (d dashboardModel) stopTimer() (dashboardModel, tea.Cmd) {
	if d.active == nil || d.active.Status() == store.TimerStopped {
		return d, nil
	}
	stageID := d.active.StageID()
	wasRunning := d.active.Status() == store.TimerRunning
	err := d.active.Stop()
	d.active = nil
	d.activeLabel = ""
	if err != nil {
		return d, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Saved locally only: %v", err), isError: true}
		}
	}
	cmds := []tea.Cmd{
		d.loadData(),
		d.enqueue("stage.timer_stopped", stageID),
	}
	if wasRunning {
		cmds = append(cmds, d.enqueue("session.completed", stageID))
	}
	cmds = append(cmds, func() tea.Msg { return timerStoppedMsg{} })
	return d, tea.Batch(cmds...)
}

// enqueue records an outbox event for a timer transition. Delivery
// happens out of band via the dispatch command.
func (d dashboardModel) enqueue(eventType string, stageID int64) tea.Cmd {
	return func() tea.Msg {
		d.store.EnqueueWebhookEvent(eventType, map[string]any{
			"stageId": stageID,
			"at":      time.Now().UTC().Format(time.RFC3339),
		})
		return nil
	}
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}

	contentWidth := d.width - 4

	timerPanel := d.renderTimerPanel(contentWidth)
	summaryPanel := d.renderSummaryPanel(contentWidth)

	var bottomPanel string
	switch {
	case d.prompting:
		bottomPanel = d.renderAutoPausePrompt(contentWidth)
	case d.picking:
		bottomPanel = d.renderStagePicker(contentWidth)
	default:
		bottomPanel = d.renderRecentPanel(contentWidth)
	}

	return lipgloss.JoinVertical(lipgloss.Left, timerPanel, summaryPanel, bottomPanel)
}

func (d dashboardModel) renderTimerPanel(w int) string {
	if d.active != nil && d.active.Status() != store.TimerStopped {
		timeStr := timer.FormatTime(d.active.TimeSpent())

		var timeDisplay, indicator string
		if d.isPaused() {
			timeDisplay = timerPausedStyle.Width(w - 6).Render(timeStr)
			indicator = warningStyle.Render("⏸  PAUSED")
		} else {
			timeDisplay = timerRunningStyle.Width(w - 6).Render(timeStr)
			indicator = successStyle.Render("●  RUNNING")
		}
		if d.active.Desynced() {
			indicator += errorStyle.Render("  ⚠ not saved")
		}

		content := lipgloss.JoinVertical(lipgloss.Center,
			timeDisplay,
			indicator,
			highlightStyle.Render(d.activeLabel),
		)
		return activePanelStyle.Width(w).Render(content)
	}

	timeDisplay := timerStyle.Width(w - 6).Render("00:00")
	indicator := mutedStyle.Render("■  STOPPED")
	hint := mutedStyle.Render("Press s to start a stage timer")

	content := lipgloss.JoinVertical(lipgloss.Center,
		timeDisplay,
		indicator,
		hint,
	)
	return panelStyle.Width(w).Render(content)
}

func (d dashboardModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today")
	total := highlightStyle.Render(formatMinutes(int(d.todayMinutes)))
	header := fmt.Sprintf("%s  %s", title, total)

	goal := d.store.GetSettingInt("daily_goal_minutes", 480)
	if goal > 0 {
		header += mutedStyle.Render(fmt.Sprintf("  / %s goal", formatMinutes(goal)))
	}

	if len(d.todaySummary) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No sessions today"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	for _, s := range d.todaySummary {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(s.ProjectColor)).Render("●")
		row := fmt.Sprintf("  %s %-24s %s  (%d sessions)",
			colorDot,
			s.ProjectName,
			formatMinutes(int(s.TotalMinutes)),
			s.SessionCount,
		)
		rows = append(rows, row)
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Sessions")
	if len(d.recentSessions) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No sessions yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	for _, ws := range d.recentSessions {
		label, ok := d.stageNames[ws.StageID]
		if !ok {
			label = "?"
		}
		startStr := ws.StartTime.Local().Format("15:04")
		dur := "open"
		status := "●"
		if ws.DurationMinutes != nil {
			dur = formatMinutes(*ws.DurationMinutes)
			status = "✓"
			if ws.Status == store.SessionPaused {
				status = "⏸"
			}
		}
		rows = append(rows, fmt.Sprintf("  %s %s  %-32s %s", status, startStr, label, dur))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderStagePicker(w int) string {
	title := titleStyle.Render("Select Stage")

	var rows []string
	rows = append(rows, title)
	for i, opt := range d.options {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(opt.projectColor)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == d.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		spent := mutedStyle.Render("  " + formatMinutes(opt.stage.TimeSpentMinutes))
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s / %s", cursor, colorDot, opt.projectName, opt.stage.Name))+spent)
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderAutoPausePrompt(w int) string {
	title := warningStyle.Render("Timer auto-paused after a long run")
	sub := mutedStyle.Render("Are you still working on " + d.activeLabel + "?")

	choices := []string{"Still working (resume)", "Stop the timer"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, sub)
	rows = append(rows, "")
	for i, c := range choices {
		cursor := "  "
		style := normalItemStyle
		if i == d.promptCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+c))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: confirm"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
