package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle state-specific keys
	switch m.State {
	case StateHelp:
		m.State = StateBrowsing
		return m, nil

	case StateFiltering:
		return m.handleFilterKey(msg)
	}

	viewport := m.Page.ViewportHeight()

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp

	case key.Matches(msg, Keys.Filter):
		m.State = StateFiltering
		return m, m.FilterInput.Focus()

	case key.Matches(msg, Keys.Escape):
		// Clear active filter if any
		if m.FilterInput.Value() != "" {
			m.FilterInput.SetValue("")
			m.applyFilter("")
		}

	case key.Matches(msg, Keys.Up):
		m.Page.ScrollBy(-1)
	case key.Matches(msg, Keys.Down):
		m.Page.ScrollBy(1)
	case key.Matches(msg, Keys.HalfUp):
		m.Page.ScrollBy(-max(viewport/2, 1))
	case key.Matches(msg, Keys.HalfDown):
		m.Page.ScrollBy(max(viewport/2, 1))
	case key.Matches(msg, Keys.PageUp):
		m.Page.ScrollBy(-max(viewport, 1))
	case key.Matches(msg, Keys.PageDown):
		m.Page.ScrollBy(max(viewport, 1))
	case key.Matches(msg, Keys.Home):
		m.Page.ScrollTo(0)
	case key.Matches(msg, Keys.End):
		m.Page.ScrollTo(m.Page.MaxOffset())

	case key.Matches(msg, Keys.NextCard):
		m.selectCard(1)
	case key.Matches(msg, Keys.PrevCard):
		m.selectCard(-1)

	case key.Matches(msg, Keys.Open):
		return m, m.openSelected()
	}

	return m, nil
}

// handleFilterKey routes keys to the filter input while it has focus
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Escape):
		m.FilterInput.SetValue("")
		m.FilterInput.Blur()
		m.State = StateBrowsing
		m.applyFilter("")
		return m, nil

	case key.Matches(msg, Keys.Accept):
		m.FilterInput.Blur()
		m.State = StateBrowsing
		return m, nil
	}

	before := m.FilterInput.Value()
	var cmd tea.Cmd
	m.FilterInput, cmd = m.FilterInput.Update(msg)
	if m.FilterInput.Value() != before {
		m.applyFilter(m.FilterInput.Value())
	}
	return m, cmd
}

// openSelected opens the selected project's preview once downloaded,
// otherwise its screenshot.
func (m Model) openSelected() tea.Cmd {
	it := m.selectedItem()
	if it == nil || m.Opener == nil {
		return nil
	}
	snap := it.Snapshot()
	url := snap.Project.Screenshot
	if snap.Asset != nil || url == "" {
		url = snap.Project.PreviewURL
	}
	if url == "" {
		return func() tea.Msg {
			return StatusMsg{Message: "Nothing to open for " + snap.Project.GetTitle(), IsError: true}
		}
	}
	return OpenCmd(m.Opener, snap.Project.GetTitle(), url)
}
