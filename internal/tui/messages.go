package tui

import "github.com/mmcdole/folio/internal/domain"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// PreviewEventMsg carries a showcase event into the update loop
type PreviewEventMsg struct {
	Event domain.PreviewEvent
}

// PreviewEventsClosedMsg signals that the event channel was closed
type PreviewEventsClosedMsg struct{}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
