package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/folio/internal/domain"
)

// ItemDeps holds the collaborators shared by every showcased item
type ItemDeps struct {
	Fetcher  domain.Fetcher
	Dispatch Dispatcher
	Store    domain.AssetStore      // optional
	Sink     domain.AnalyticsSink   // optional
	Observer domain.PreviewObserver // optional
	Logger   *slog.Logger           // optional
	Parent   context.Context        // optional
	Now      func() time.Time       // optional
}

// ItemSnapshot is a point-in-time copy of an item's state
type ItemSnapshot struct {
	Project    domain.Project
	State      domain.ItemState
	Percent    int
	Visibility domain.VisibilityState
	Asset      *domain.PreviewAsset
	Err        error // set once Failed
}

// Item drives one project's download from its visibility.
//
//	NotTriggered -> Downloading        in view, nothing cached
//	Downloading  -> Cancelled          settled visibility loss
//	Cancelled    -> Downloading        back in view
//	Downloading  -> Ready | Failed     terminal
type Item struct {
	project  domain.Project
	ctrl     *Controller // nil when the project has no preview
	store    domain.AssetStore
	sink     domain.AnalyticsSink
	observer domain.PreviewObserver
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	state      domain.ItemState
	percent    int
	visibility domain.VisibilityState
	asset      *domain.PreviewAsset
	err        error
	sessionID  string
}

// NewItem creates the glue for one project. A preview already present in
// the store puts the item straight into Ready.
func NewItem(project domain.Project, deps ItemDeps) *Item {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Observer == nil {
		deps.Observer = domain.NoOpObserver{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	it := &Item{
		project:  project,
		store:    deps.Store,
		sink:     deps.Sink,
		observer: deps.Observer,
		logger:   deps.Logger.With("project", project.ID),
		now:      deps.Now,
	}

	if it.store != nil {
		if asset, ok := it.store.GetAsset(project.ID, project.PreviewURL); ok {
			it.asset = asset
			it.state = domain.ItemReady
			it.percent = 100
		}
	}

	if project.HasPreview() {
		it.ctrl = NewController(project.PreviewURL, deps.Fetcher, deps.Dispatch, Callbacks{
			OnStart:    it.onStart,
			OnProgress: it.onProgress,
			OnSuccess:  it.onSuccess,
			OnCancel:   it.onCancel,
			OnError:    it.onError,
		}, ControllerOptions{Parent: deps.Parent, Now: deps.Now, Logger: it.logger})
	}
	return it
}

// Project returns the showcased project
func (it *Item) Project() domain.Project { return it.project }

// Controller exposes the item's download controller (nil without a preview)
func (it *Item) Controller() *Controller { return it.ctrl }

// Snapshot returns the current item state
func (it *Item) Snapshot() ItemSnapshot {
	it.mu.Lock()
	defer it.mu.Unlock()
	return ItemSnapshot{
		Project:    it.project,
		State:      it.state,
		Percent:    it.percent,
		Visibility: it.visibility,
		Asset:      it.asset,
		Err:        it.err,
	}
}

// Update reacts to a visibility recomputation.
func (it *Item) Update(v domain.VisibilityState) {
	it.mu.Lock()
	it.visibility = v
	state := it.state
	cached := it.asset != nil
	percent := it.percent
	it.mu.Unlock()

	it.publish(domain.PreviewEvent{Kind: domain.PreviewVisibility, State: state, Visibility: v, Percent: percent})

	if it.ctrl == nil || state.IsTerminal() {
		return
	}
	// The outcome may be decided while its callback is still queued.
	if s, ok := it.ctrl.Session(); ok && (s.State == domain.SessionSucceeded || s.State == domain.SessionFailed) {
		return
	}
	if v.InView && !cached {
		it.ctrl.Start()
		return
	}
	// Only settled visibility loss cancels; passing through while
	// scrolling keeps the transfer alive.
	if v.Settled() {
		it.ctrl.Cancel()
	}
}

// Cancel aborts a running download regardless of visibility.
func (it *Item) Cancel() {
	if it.ctrl != nil {
		it.ctrl.Cancel()
	}
}

func (it *Item) onStart(s domain.DownloadSession) {
	it.mu.Lock()
	it.state = domain.ItemDownloading
	it.percent = 0
	it.sessionID = s.ID
	v := it.visibility
	it.mu.Unlock()

	it.track(domain.Event{Kind: domain.EventDownloadStart, SessionID: s.ID})
	it.publish(domain.PreviewEvent{Kind: domain.PreviewStarted, State: domain.ItemDownloading, Visibility: v})
}

func (it *Item) onProgress(percent int) {
	it.mu.Lock()
	it.percent = percent
	v := it.visibility
	it.mu.Unlock()

	it.publish(domain.PreviewEvent{Kind: domain.PreviewProgress, State: domain.ItemDownloading, Visibility: v, Percent: percent})
}

func (it *Item) onSuccess(info SuccessInfo) {
	asset := &domain.PreviewAsset{
		ProjectID:   it.project.ID,
		SourceURL:   it.project.PreviewURL,
		ContentType: info.ContentType,
		DataURI:     info.Data,
		FetchedAt:   it.now(),
	}
	if it.store != nil {
		if err := it.store.SaveAsset(asset); err != nil {
			it.logger.Warn("failed to persist preview", "error", err)
		}
	}

	it.mu.Lock()
	it.state = domain.ItemReady
	it.asset = asset
	it.percent = 100
	v := it.visibility
	it.mu.Unlock()

	it.logger.Info("preview ready", "duration", info.Duration, "bytes", len(info.Data))
	it.track(domain.Event{Kind: domain.EventDownloadSuccess, SessionID: info.SessionID, Duration: info.Duration, Progress: 100})
	it.publish(domain.PreviewEvent{Kind: domain.PreviewReady, State: domain.ItemReady, Visibility: v, Percent: 100, Asset: asset})
}

func (it *Item) onCancel(info CancelInfo) {
	it.mu.Lock()
	it.state = domain.ItemCancelled
	v := it.visibility
	it.mu.Unlock()

	it.track(domain.Event{Kind: domain.EventDownloadCancel, SessionID: info.SessionID, Duration: info.Duration, Progress: info.Progress})
	it.publish(domain.PreviewEvent{Kind: domain.PreviewCancelled, State: domain.ItemCancelled, Visibility: v, Percent: info.Progress})
}

func (it *Item) onError(err error) {
	it.mu.Lock()
	it.state = domain.ItemFailed
	it.err = err
	v := it.visibility
	percent := it.percent
	sessionID := it.sessionID
	it.mu.Unlock()

	// No retry.
	it.logger.Debug("preview download failed", "error", err)
	it.track(domain.Event{Kind: domain.EventDownloadError, SessionID: sessionID, Progress: percent, Error: err.Error()})
	it.publish(domain.PreviewEvent{Kind: domain.PreviewFailed, State: domain.ItemFailed, Visibility: v, Percent: percent, Err: err})
}

func (it *Item) track(event domain.Event) {
	if it.sink == nil {
		return
	}
	event.ProjectID = it.project.ID
	it.sink.Track(event)
}

func (it *Item) publish(event domain.PreviewEvent) {
	event.ProjectID = it.project.ID
	it.observer.OnPreviewEvent(event)
}
