package domain

import "time"

// SessionState is the state of one download attempt
type SessionState int

const (
	SessionInFlight SessionState = iota + 1
	SessionCancelled
	SessionSucceeded
	SessionFailed
)

var sessionStateNames = map[SessionState]string{
	SessionInFlight:  "in-flight",
	SessionCancelled: "cancelled",
	SessionSucceeded: "succeeded",
	SessionFailed:    "failed",
}

func (s SessionState) String() string {
	if name, ok := sessionStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal returns true for cancelled, succeeded and failed sessions
func (s SessionState) IsTerminal() bool {
	return s == SessionCancelled || s == SessionSucceeded || s == SessionFailed
}

// DownloadSession is a snapshot of one download attempt.
type DownloadSession struct {
	ID          string
	Generation  uint64
	State       SessionState
	StartedAt   time.Time
	BytesLoaded int64
	BytesTotal  int64 // <= 0 when the server did not announce a size
	Percent     int
}

// ItemState tracks the preview lifecycle of one showcased project.
type ItemState int

const (
	ItemNotTriggered ItemState = iota
	ItemDownloading
	ItemCancelled
	ItemReady
	ItemFailed
)

func (s ItemState) String() string {
	switch s {
	case ItemNotTriggered:
		return "not-triggered"
	case ItemDownloading:
		return "downloading"
	case ItemCancelled:
		return "cancelled"
	case ItemReady:
		return "ready"
	case ItemFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true once an item can no longer change state
func (s ItemState) IsTerminal() bool {
	return s == ItemReady || s == ItemFailed
}
