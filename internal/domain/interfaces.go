package domain

import (
	"context"
	"time"
)

// ScrollSource delivers scroll and resize notifications.
// Subscribe returns a function that removes the subscription.
type ScrollSource interface {
	Subscribe(fn func()) (unsubscribe func())
}

// Viewport reports the current viewport geometry.
type Viewport interface {
	// ViewportHeight returns the visible height of the scrollable region
	ViewportHeight() int

	// ScrollOffset returns the current vertical scroll offset (0 = top of page)
	ScrollOffset() int
}

// ElementLocator returns the bounds of a tracked element relative to the
// viewport top. ok is false when the element is not mounted.
type ElementLocator func() (b Bounds, ok bool)

// Payload is the result of a completed transfer.
type Payload struct {
	Data        []byte
	ContentType string
}

// Fetcher downloads a binary asset. Progress is reported as bytes
// loaded / total (total <= 0 when unknown). Aborting ctx must surface
// as an error matching ErrCancelled.
type Fetcher interface {
	Fetch(ctx context.Context, url string, onProgress ProgressFunc) (Payload, error)
}

// EventKind identifies an analytics event
type EventKind string

const (
	EventDownloadStart   EventKind = "preview_download_start"
	EventDownloadSuccess EventKind = "preview_download_success"
	EventDownloadCancel  EventKind = "preview_download_cancel"
	EventDownloadError   EventKind = "preview_download_error"
)

// Event is a fire-and-forget analytics record.
type Event struct {
	Kind      EventKind
	ProjectID string
	SessionID string
	Duration  time.Duration
	Progress  int
	Error     string
}

// AnalyticsSink receives analytics events. Implementations must not block
// and callers never inspect the outcome.
type AnalyticsSink interface {
	Track(event Event)
}
