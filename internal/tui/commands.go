package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/folio/internal/adapter"
	"github.com/mmcdole/folio/internal/domain"
)

// Command factories for async operations

// WaitForPreviewEventCmd reads the next showcase event. The update loop
// re-issues it after every PreviewEventMsg.
func WaitForPreviewEventCmd(events <-chan domain.PreviewEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return PreviewEventsClosedMsg{}
		}
		return PreviewEventMsg{Event: event}
	}
}

// OpenCmd opens url in the external viewer
func OpenCmd(opener *adapter.Opener, title, url string) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(url); err != nil {
			return ErrMsg{Err: err, Context: "opening " + title}
		}
		return StatusMsg{Message: "Opened " + title}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
