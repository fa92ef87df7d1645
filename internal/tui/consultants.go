package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/institutofocos/consultorpro-sub003/internal/store"
)

type consultantsModel struct {
	store  *store.Store
	width  int
	height int

	consultants []store.Consultant
	cursor      int

	formActive bool
	form       *huh.Form
	editingID  int64

	formName  *string
	formEmail *string
	formRate  *string // hourly rate as decimal, e.g. "250.00"
}

func newConsultantsModel(s *store.Store) consultantsModel {
	name, email, rate := "", "", ""
	return consultantsModel{
		store:     s,
		formName:  &name,
		formEmail: &email,
		formRate:  &rate,
	}
}

func (c *consultantsModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type consultantsDataMsg struct {
	consultants []store.Consultant
}

func (c consultantsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		consultants, _ := c.store.ListConsultants(false)
		return consultantsDataMsg{consultants: consultants}
	}
}

func (c consultantsModel) update(msg tea.Msg) (consultantsModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case consultantsDataMsg:
		c.consultants = msg.consultants
		if c.cursor >= len(c.consultants) {
			c.cursor = max(0, len(c.consultants)-1)
		}
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if c.cursor > 0 {
				c.cursor--
			}
		case key.Matches(msg, keys.Down):
			if c.cursor < len(c.consultants)-1 {
				c.cursor++
			}
		case key.Matches(msg, keys.New):
			return c.showForm(nil)
		case key.Matches(msg, keys.Edit):
			if len(c.consultants) > 0 {
				consultant := c.consultants[c.cursor]
				return c.showForm(&consultant)
			}
		case key.Matches(msg, keys.Delete):
			if len(c.consultants) > 0 {
				c.store.ArchiveConsultant(c.consultants[c.cursor].ID)
				return c, c.refresh()
			}
		}
	}
	return c, nil
}

func (c consultantsModel) showForm(existing *store.Consultant) (consultantsModel, tea.Cmd) {
	if existing != nil {
		*c.formName = existing.Name
		*c.formEmail = existing.Email
		*c.formRate = formatCents(existing.HourlyRateCents)
		c.editingID = existing.ID
	} else {
		*c.formName = ""
		*c.formEmail = ""
		*c.formRate = ""
		c.editingID = 0
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(c.formName),
			huh.NewInput().Title("Email").Value(c.formEmail),
			huh.NewInput().Title("Hourly rate").Value(c.formRate),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c consultantsModel) updateForm(msg tea.Msg) (consultantsModel, tea.Cmd) {
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
			rate := parseCents(*c.formRate)
			if c.editingID != 0 {
				c.store.UpdateConsultant(c.editingID, *c.formName, *c.formEmail, rate)
			} else {
				c.store.CreateConsultant(*c.formName, *c.formEmail, rate)
			}
		}
		return c, c.refresh()
	}

	return c, cmd
}

// parseCents turns a decimal money string into cents, tolerating junk.
func parseCents(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f*100 + 0.5)
}

func (c consultantsModel) view() string {
	w := c.width - 4

	if c.formActive && c.form != nil {
		title := titleStyle.Render("New Consultant")
		if c.editingID != 0 {
			title = titleStyle.Render("Edit Consultant")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Consultants")

	if len(c.consultants) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No consultants yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-24s %-28s %12s", "Name", "Email", "Rate/h")))

	for i, consultant := range c.consultants {
		cursor := "  "
		style := normalItemStyle
		if i == c.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-24s %-28s %12s",
			cursor, consultant.Name, consultant.Email, formatCents(consultant.HourlyRateCents))))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: archive"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
