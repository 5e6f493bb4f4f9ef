// Package tui renders the live distance dashboard in the terminal.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bpaydar/mousepath/internal/tracker"
)

// Engine is the subset of the app engine the dashboard drives.
type Engine interface {
	Totals() tracker.Totals
	Tracking() bool
	Toggle() bool
	Reset()
	Save() error
}

const refreshInterval = 200 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")).
			Width(12)

	trackingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

type tickMsg time.Time

// Model is the bubbletea model for the dashboard.
type Model struct {
	engine   Engine
	totals   tracker.Totals
	tracking bool
	status   string
}

// New returns a dashboard model bound to the engine.
func New(engine Engine) Model {
	return Model{
		engine:   engine,
		totals:   engine.Totals(),
		tracking: engine.Tracking(),
	}
}

// Init starts the refresh timer.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles key presses and refresh ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			m.tracking = m.engine.Toggle()
			m.status = ""
		case "r":
			m.engine.Reset()
			m.totals = m.engine.Totals()
			m.status = "counter reset"
		case "s":
			if err := m.engine.Save(); err != nil {
				m.status = "save failed"
			} else {
				m.status = "state saved"
			}
		}
	case tickMsg:
		m.totals = m.engine.Totals()
		m.tracking = m.engine.Tracking()
		return m, tick()
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	state := pausedStyle.Render("⏸ paused")
	if m.tracking {
		state = trackingStyle.Render("● tracking")
	}

	body := fmt.Sprintf("%s%s\n%s%s\n%s%s\n\n%s",
		labelStyle.Render("Meters"), fmt.Sprintf("%.4f m", m.totals.Meters),
		labelStyle.Render("Kilometers"), fmt.Sprintf("%.6f km", m.totals.Kilometers),
		labelStyle.Render("Miles"), fmt.Sprintf("%.6f mi", m.totals.Miles),
		state,
	)
	if m.status != "" {
		body += "  " + helpStyle.Render(m.status)
	}

	return titleStyle.Render("Mouse Path Tracker") + "\n" +
		boxStyle.Render(body) + "\n" +
		helpStyle.Render("space pause/start · r reset · s save · q quit") + "\n"
}
