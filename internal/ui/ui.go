// Package ui renders the live channel table shown in verbose mode: one
// row per active satellite channel with its azimuth, elevation, range,
// ionospheric delay, and carrier Doppler, refreshed from engine
// snapshots while synthesis runs.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gnsslab/plutosim/internal/sim"
)

// refreshInterval is the snapshot poll cadence. The engine updates at
// 10 Hz; redrawing faster only burns the terminal.
const refreshInterval = 500 * time.Millisecond

// Row styling.
var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7CFC00")) // high elevation
	midStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")) // medium
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6347")) // near horizon
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
)

// Model is the Bubble Tea model for the channel table.
type Model struct {
	eng    *sim.Engine
	status sim.Status
}

// New creates the channel table model over a running engine.
func New(eng *sim.Engine) Model {
	return Model{eng: eng}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tickMsg:
		m.status = m.eng.Snapshot()
		return m, tick()
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	d := m.status.Time.ToDate()
	b.WriteString(titleStyle.Render(fmt.Sprintf("GPS %s  +%6.1fs", d, m.status.Elapsed)))
	b.WriteString("\n\n")
	b.WriteString(headerStyle.Render("PRN     Az      El        Range       Iono    Doppler"))
	b.WriteString("\n")

	if len(m.status.Channels) == 0 {
		b.WriteString(dimStyle.Render("no satellites on air"))
		b.WriteString("\n")
	}

	for _, ch := range m.status.Channels {
		row := fmt.Sprintf("%02d  %6.1f  %6.1f  %11.1f  %6.1f  %+9.1f",
			ch.PRN, ch.AzDeg, ch.ElDeg, ch.Range, ch.Iono, ch.Doppler)
		b.WriteString(styleForElevation(ch.ElDeg).Render(row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("q to quit"))
	b.WriteString("\n")

	return b.String()
}

// styleForElevation colors a row by how high the satellite stands.
func styleForElevation(elDeg float64) lipgloss.Style {
	switch {
	case elDeg >= 45:
		return highStyle
	case elDeg >= 15:
		return midStyle
	default:
		return lowStyle
	}
}
