package tui

import "github.com/mmcdole/folio/internal/domain"

// ChannelObserver adapts domain.PreviewObserver to a channel for Bubble Tea.
type ChannelObserver struct {
	ch chan<- domain.PreviewEvent
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- domain.PreviewEvent) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnPreviewEvent sends the event to the channel (non-blocking if full).
// The view reads item snapshots, so a dropped event only delays a redraw.
func (o *ChannelObserver) OnPreviewEvent(event domain.PreviewEvent) {
	select {
	case o.ch <- event:
	default: // Non-blocking if channel full
	}
}
