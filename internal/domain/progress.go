package domain

// ProgressFunc reports transfer progress: (1024, 4096), (2048, 4096), ...
// total is <= 0 when the size is unknown.
type ProgressFunc func(loaded, total int64)

// PreviewEventKind identifies what happened to a showcased item
type PreviewEventKind int

const (
	PreviewVisibility PreviewEventKind = iota
	PreviewStarted
	PreviewProgress
	PreviewReady
	PreviewCancelled
	PreviewFailed
)

// PreviewEvent is published by the showcase for every visibility
// recomputation and every download callback.
type PreviewEvent struct {
	ProjectID  string
	Kind       PreviewEventKind
	State      ItemState
	Visibility VisibilityState
	Percent    int
	Asset      *PreviewAsset
	Err        error
}

// PreviewObserver receives showcase events.
type PreviewObserver interface {
	OnPreviewEvent(event PreviewEvent)
}

// NoOpObserver discards events (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnPreviewEvent(PreviewEvent) {}
