package tui

import (
	"fmt"
	"time"

	"github.com/institutofocos/consultorpro-sub003/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewClients
	viewConsultants
	viewProjects
	viewReports
	viewSettings
)

var viewNames = []string{"Dashboard", "Clients", "Consultants", "Projects", "Reports", "Settings"}

// --- Messages ---

type timerStartedMsg struct {
	stage *store.Stage
}

type timerPausedMsg struct{}

type timerStoppedMsg struct {
	stage *store.Stage
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func formatHours(minutes int) string {
	return fmt.Sprintf("%.1fh", float64(minutes)/60)
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
