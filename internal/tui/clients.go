package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/institutofocos/consultorpro-sub003/internal/store"
)

type clientsModel struct {
	store  *store.Store
	width  int
	height int

	clients      []store.Client
	cursor       int
	showArchived bool

	formActive bool
	form       *huh.Form
	editingID  int64 // 0 = creating

	// Form field pointers (survive value copies)
	formName    *string
	formCompany *string
	formEmail   *string
}

func newClientsModel(s *store.Store) clientsModel {
	name, company, email := "", "", ""
	return clientsModel{
		store:       s,
		formName:    &name,
		formCompany: &company,
		formEmail:   &email,
	}
}

func (c *clientsModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type clientsDataMsg struct {
	clients []store.Client
}

func (c clientsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		clients, _ := c.store.ListClients(c.showArchived)
		return clientsDataMsg{clients: clients}
	}
}

func (c clientsModel) update(msg tea.Msg) (clientsModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case clientsDataMsg:
		c.clients = msg.clients
		if c.cursor >= len(c.clients) {
			c.cursor = max(0, len(c.clients)-1)
		}
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if c.cursor > 0 {
				c.cursor--
			}
		case key.Matches(msg, keys.Down):
			if c.cursor < len(c.clients)-1 {
				c.cursor++
			}
		case key.Matches(msg, keys.New):
			return c.showForm(nil)
		case key.Matches(msg, keys.Edit):
			if len(c.clients) > 0 {
				client := c.clients[c.cursor]
				return c.showForm(&client)
			}
		case key.Matches(msg, keys.Delete):
			if len(c.clients) > 0 {
				c.store.ArchiveClient(c.clients[c.cursor].ID)
				return c, c.refresh()
			}
		}
	}
	return c, nil
}

func (c clientsModel) showForm(existing *store.Client) (clientsModel, tea.Cmd) {
	if existing != nil {
		*c.formName = existing.Name
		*c.formCompany = existing.Company
		*c.formEmail = existing.Email
		c.editingID = existing.ID
	} else {
		*c.formName = ""
		*c.formCompany = ""
		*c.formEmail = ""
		c.editingID = 0
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(c.formName),
			huh.NewInput().Title("Company").Value(c.formCompany),
			huh.NewInput().Title("Email").Value(c.formEmail),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c clientsModel) updateForm(msg tea.Msg) (clientsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		if *c.formName != "" {
			if c.editingID != 0 {
				c.store.UpdateClient(c.editingID, *c.formName, *c.formCompany, *c.formEmail)
			} else {
				c.store.CreateClient(*c.formName, *c.formCompany, *c.formEmail)
			}
		}
		return c, c.refresh()
	}

	return c, cmd
}

func (c clientsModel) view() string {
	w := c.width - 4

	if c.formActive && c.form != nil {
		title := titleStyle.Render("New Client")
		if c.editingID != 0 {
			title = titleStyle.Render("Edit Client")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Clients")

	if len(c.clients) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No clients yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-24s %-24s %-28s", "Name", "Company", "Email")))

	for i, client := range c.clients {
		cursor := "  "
		style := normalItemStyle
		if i == c.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-24s %-24s %-28s", cursor, client.Name, client.Company, client.Email)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: archive"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
