package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all incoming messages (required by tea.Model interface)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case AnalysisReadyMsg:
		m.loading = false
		m.config = msg.Config
		m.run = msg.Run
		m.compSet = msg.CompSet
		m.selected = 0
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.currentScene != ScenePolicies {
			m.currentScene = ScenePolicies
			return m, nil
		}
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case "down", "j":
		if m.run != nil && m.selected < len(m.run.Policies)-1 {
			m.selected++
		}
		return m, nil

	case "enter":
		if m.run != nil && m.currentScene == ScenePolicies {
			m.currentScene = SceneDetail
		}
		return m, nil

	case "l":
		if m.run != nil {
			m.currentScene = SceneLorenz
		}
		return m, nil

	case "d":
		if m.currentScene == SceneDetail {
			m.deciles = !m.deciles
		}
		return m, nil

	case "r":
		if m.compSet != nil {
			m.currentScene = SceneRanking
		}
		return m, nil

	case "s":
		if m.run != nil && m.run.Sweep != nil {
			m.currentScene = SceneSweep
		}
		return m, nil

	case "p":
		m.currentScene = ScenePolicies
		return m, nil
	}

	return m, nil
}
