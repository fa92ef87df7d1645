package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/institutofocos/consultorpro-sub003/internal/store"
)

var projectColors = []string{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}
var projectStatuses = []string{"planned", "active", "completed", "cancelled"}
var stageStatuses = []string{"pending", "in_progress", "completed"}
var transactionKinds = []string{"income", "expense"}

type projectsModel struct {
	store  *store.Store
	width  int
	height int

	projects      []store.Project
	stages        []store.Stage
	clientNames   map[int64]string
	cursor        int
	stageCursor   int
	viewingStages bool // true = viewing stages of selected project

	formActive bool
	form       *huh.Form
	formType   string // "project", "edit_project", "stage", "edit_stage", "transaction"

	// Form field pointers (survive value copies)
	formName       *string
	formColor      *string
	formStatus     *string
	formValue      *string
	formClientID   *string
	formConsultant *string
	formPosition   *string
	formDays       *string
	formKind       *string
	formAmount     *string
	formNote       *string

	editingID int64
}

func newProjectsModel(s *store.Store) projectsModel {
	name, color, status, value := "", projectColors[0], projectStatuses[0], ""
	clientID, consultant, position, days := "", "", "", ""
	kind, amount, note := transactionKinds[0], "", ""
	return projectsModel{
		store:          s,
		clientNames:    make(map[int64]string),
		formName:       &name,
		formColor:      &color,
		formStatus:     &status,
		formValue:      &value,
		formClientID:   &clientID,
		formConsultant: &consultant,
		formPosition:   &position,
		formDays:       &days,
		formKind:       &kind,
		formAmount:     &amount,
		formNote:       &note,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type projectsDataMsg struct {
	projects    []store.Project
	clientNames map[int64]string
}

type stagesDataMsg struct {
	stages []store.Stage
}

func (p projectsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		projects, _ := p.store.ListProjects(false)
		names := make(map[int64]string)
		clients, _ := p.store.ListClients(true)
		for _, c := range clients {
			names[c.ID] = c.Name
		}
		return projectsDataMsg{projects: projects, clientNames: names}
	}
}

func (p projectsModel) refreshStages() tea.Cmd {
	if p.cursor >= len(p.projects) {
		return nil
	}
	pid := p.projects[p.cursor].ID
	return func() tea.Msg {
		stages, _ := p.store.ListStages(pid)
		return stagesDataMsg{stages: stages}
	}
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		p.projects = msg.projects
		p.clientNames = msg.clientNames
		if p.cursor >= len(p.projects) {
			p.cursor = max(0, len(p.projects)-1)
		}
		return p, nil

	case stagesDataMsg:
		p.stages = msg.stages
		if p.stageCursor >= len(p.stages) {
			p.stageCursor = max(0, len(p.stages)-1)
		}
		return p, nil

	case tea.KeyMsg:
		if p.viewingStages {
			return p.updateStageView(msg)
		}
		return p.updateProjectList(msg)
	}
	return p, nil
}

func (p projectsModel) updateProjectList(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(p.projects) > 0 {
			p.viewingStages = true
			p.stageCursor = 0
			return p, p.refreshStages()
		}
	case key.Matches(msg, keys.New):
		return p.showProjectForm(nil)
	case key.Matches(msg, keys.Edit):
		if len(p.projects) > 0 {
			proj := p.projects[p.cursor]
			return p.showProjectForm(&proj)
		}
	case key.Matches(msg, keys.Delete):
		if len(p.projects) > 0 {
			p.store.ArchiveProject(p.projects[p.cursor].ID)
			return p, p.refresh()
		}
	case key.Matches(msg, keys.Transaction):
		if len(p.projects) > 0 {
			return p.showTransactionForm()
		}
	}
	return p, nil
}

func (p projectsModel) updateStageView(msg tea.KeyMsg) (projectsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		p.viewingStages = false
		return p, nil
	case key.Matches(msg, keys.Up):
		if p.stageCursor > 0 {
			p.stageCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.stageCursor < len(p.stages)-1 {
			p.stageCursor++
		}
	case key.Matches(msg, keys.New):
		return p.showStageForm(nil)
	case key.Matches(msg, keys.Edit):
		if len(p.stages) > 0 {
			stage := p.stages[p.stageCursor]
			return p.showStageForm(&stage)
		}
	}
	return p, nil
}

func (p projectsModel) showProjectForm(existing *store.Project) (projectsModel, tea.Cmd) {
	clients, _ := p.store.ListClients(false)
	if len(clients) == 0 {
		return p, func() tea.Msg {
			return statusMsg{text: "No clients yet. Press 2 to go to Clients and create one.", isError: true}
		}
	}
	consultants, _ := p.store.ListConsultants(false)

	if existing != nil {
		*p.formName = existing.Name
		*p.formColor = existing.Color
		*p.formStatus = existing.Status
		*p.formValue = formatCents(existing.ValueCents)
		*p.formClientID = strconv.FormatInt(existing.ClientID, 10)
		*p.formConsultant = ""
		if existing.ConsultantID != nil {
			*p.formConsultant = strconv.FormatInt(*existing.ConsultantID, 10)
		}
		p.formType = "edit_project"
		p.editingID = existing.ID
	} else {
		*p.formName = ""
		*p.formColor = projectColors[0]
		*p.formStatus = projectStatuses[0]
		*p.formValue = ""
		*p.formClientID = strconv.FormatInt(clients[0].ID, 10)
		*p.formConsultant = ""
		p.formType = "project"
	}

	clientOptions := make([]huh.Option[string], len(clients))
	for i, c := range clients {
		clientOptions[i] = huh.NewOption(c.Name, strconv.FormatInt(c.ID, 10))
	}
	consultantOptions := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, c := range consultants {
		consultantOptions = append(consultantOptions, huh.NewOption(c.Name, strconv.FormatInt(c.ID, 10)))
	}
	colorOptions := make([]huh.Option[string], len(projectColors))
	for i, c := range projectColors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}
	statusOptions := make([]huh.Option[string], len(projectStatuses))
	for i, s := range projectStatuses {
		statusOptions[i] = huh.NewOption(s, s)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName),
			huh.NewSelect[string]().Title("Client").Options(clientOptions...).Value(p.formClientID),
			huh.NewSelect[string]().Title("Consultant").Options(consultantOptions...).Value(p.formConsultant),
			huh.NewSelect[string]().Title("Status").Options(statusOptions...).Value(p.formStatus),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(p.formColor),
			huh.NewInput().Title("Value").Value(p.formValue),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showStageForm(existing *store.Stage) (projectsModel, tea.Cmd) {
	if existing != nil {
		*p.formName = existing.Name
		*p.formPosition = strconv.Itoa(existing.Position)
		*p.formStatus = existing.Status
		*p.formValue = formatCents(existing.ValueCents)
		*p.formDays = strconv.Itoa(existing.Days)
		p.formType = "edit_stage"
		p.editingID = existing.ID
	} else {
		*p.formName = ""
		*p.formPosition = strconv.Itoa(len(p.stages) + 1)
		*p.formStatus = stageStatuses[0]
		*p.formValue = ""
		*p.formDays = ""
		p.formType = "stage"
	}

	statusOptions := make([]huh.Option[string], len(stageStatuses))
	for i, s := range stageStatuses {
		statusOptions[i] = huh.NewOption(s, s)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Stage Name").Value(p.formName),
			huh.NewInput().Title("Position").Value(p.formPosition),
			huh.NewSelect[string]().Title("Status").Options(statusOptions...).Value(p.formStatus),
			huh.NewInput().Title("Value").Value(p.formValue),
			huh.NewInput().Title("Days").Value(p.formDays),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) showTransactionForm() (projectsModel, tea.Cmd) {
	*p.formKind = transactionKinds[0]
	*p.formAmount = ""
	*p.formNote = ""
	p.formType = "transaction"

	kindOptions := make([]huh.Option[string], len(transactionKinds))
	for i, k := range transactionKinds {
		kindOptions[i] = huh.NewOption(k, k)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Kind").Options(kindOptions...).Value(p.formKind),
			huh.NewInput().Title("Amount").Value(p.formAmount),
			huh.NewInput().Title("Description").Value(p.formNote),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		switch p.formType {
		case "project", "edit_project":
			return p.submitProject()
		case "stage", "edit_stage":
			return p.submitStage()
		case "transaction":
			return p.submitTransaction()
		}
	}

	return p, cmd
}

func (p projectsModel) submitProject() (projectsModel, tea.Cmd) {
	if *p.formName == "" {
		return p, p.refresh()
	}
	clientID, _ := strconv.ParseInt(*p.formClientID, 10, 64)
	var consultantID *int64
	if *p.formConsultant != "" {
		id, err := strconv.ParseInt(*p.formConsultant, 10, 64)
		if err == nil {
			consultantID = &id
		}
	}
	value := parseCents(*p.formValue)

	if p.formType == "edit_project" {
		p.store.UpdateProject(p.editingID, *p.formName, *p.formColor, *p.formStatus, value, consultantID)
	} else {
		p.store.CreateProject(clientID, consultantID, *p.formName, *p.formColor, *p.formStatus, value)
	}
	return p, p.refresh()
}

func (p projectsModel) submitStage() (projectsModel, tea.Cmd) {
	if *p.formName == "" || p.cursor >= len(p.projects) {
		return p, p.refreshStages()
	}
	position, _ := strconv.Atoi(*p.formPosition)
	days, _ := strconv.Atoi(*p.formDays)
	value := parseCents(*p.formValue)

	if p.formType == "edit_stage" {
		p.store.UpdateStage(p.editingID, *p.formName, position, *p.formStatus, value, days)
	} else {
		p.store.CreateStage(p.projects[p.cursor].ID, *p.formName, position, value, days)
	}
	return p, p.refreshStages()
}

func (p projectsModel) submitTransaction() (projectsModel, tea.Cmd) {
	if *p.formAmount == "" || p.cursor >= len(p.projects) {
		return p, nil
	}
	proj := p.projects[p.cursor]
	amount := parseCents(*p.formAmount)
	kind := *p.formKind
	note := *p.formNote

	return p, func() tea.Msg {
		txn, err := p.store.CreateTransaction(proj.ID, nil, kind, amount, note, time.Now().UTC())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		p.store.EnqueueWebhookEvent("transaction.created", map[string]any{
			"transactionId": txn.ID,
			"projectId":     proj.ID,
			"kind":          kind,
			"amountCents":   amount,
		})
		return statusMsg{text: fmt.Sprintf("Recorded %s of %s on %s", kind, formatCents(amount), proj.Name)}
	}
}

func (p projectsModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Project")
		switch p.formType {
		case "edit_project":
			title = titleStyle.Render("Edit Project")
		case "stage":
			title = titleStyle.Render("New Stage")
		case "edit_stage":
			title = titleStyle.Render("Edit Stage")
		case "transaction":
			title = titleStyle.Render("New Transaction")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}

	if p.viewingStages {
		return p.renderStageView()
	}
	return p.renderProjectList()
}

func (p projectsModel) renderProjectList() string {
	w := p.width - 4
	title := titleStyle.Render("Projects")

	if len(p.projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-18s %-12s %12s", "", "Name", "Client", "Status", "Value")))

	for i, proj := range p.projects {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(proj.Color)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		clientName := p.clientNames[proj.ClientID]
		row := style.Render(fmt.Sprintf("%s%s %-24s %-18s %-12s %12s",
			cursor, colorDot, proj.Name, clientName, proj.Status, formatCents(proj.ValueCents)))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: archive  t: transaction  enter: stages"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p projectsModel) renderStageView() string {
	w := p.width - 4
	proj := p.projects[p.cursor]
	colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(proj.Color)).Render("●")
	title := titleStyle.Render(fmt.Sprintf("%s %s / Stages", colorDot, proj.Name))

	if len(p.stages) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No stages. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-12s %8s %8s", "#", "Name", "Status", "Time", "Timer")))

	for i, stage := range p.stages {
		cursor := "  "
		style := normalItemStyle
		if i == p.stageCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		timerDot := mutedStyle.Render("■")
		switch stage.TimerStatus {
		case store.TimerRunning:
			timerDot = successStyle.Render("●")
		case store.TimerPaused:
			timerDot = warningStyle.Render("⏸")
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-3d %-24s %-12s %8s", cursor, stage.Position, stage.Name, stage.Status, formatMinutes(stage.TimeSpentMinutes)))+"    "+timerDot)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new stage  e: edit  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
