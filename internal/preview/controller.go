package preview

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/folio/internal/domain"
)

// Dispatcher runs callbacks one at a time in the order they were posted.
// Post must not block and must not run fn synchronously.
type Dispatcher interface {
	Post(fn func())
}

// SuccessInfo is delivered once a transfer completes
type SuccessInfo struct {
	SessionID   string
	Duration    time.Duration
	Data        string // data URI
	ContentType string
}

// CancelInfo is delivered when an in-flight transfer is cancelled
type CancelInfo struct {
	SessionID string
	Duration  time.Duration
	Progress  int // last reported percent
}

// Callbacks receive the controller's notifications. Nil callbacks are skipped.
// For every accepted Start exactly one of OnSuccess, OnCancel or OnError fires.
type Callbacks struct {
	OnStart    func(session domain.DownloadSession)
	OnProgress func(percent int)
	OnSuccess  func(info SuccessInfo)
	OnCancel   func(info CancelInfo)
	OnError    func(err error)
}

// ControllerOptions holds optional controller dependencies
type ControllerOptions struct {
	Parent context.Context  // parent of every transfer context
	Now    func() time.Time // clock used for durations
	Logger *slog.Logger
}

// Controller runs at most one cancellable transfer at a time.
type Controller struct {
	url      string
	fetcher  domain.Fetcher
	dispatch Dispatcher
	cb       Callbacks
	parent   context.Context
	now      func() time.Time
	logger   *slog.Logger

	mu         sync.Mutex
	generation uint64
	session    *domain.DownloadSession // latest session, nil before the first Start
	cancel     context.CancelFunc

	transferDone func() // runs after each transfer goroutine completes; tests only
}

// NewController creates a controller for one preview URL
func NewController(url string, fetcher domain.Fetcher, dispatch Dispatcher, cb Callbacks, opts ControllerOptions) *Controller {
	if opts.Parent == nil {
		opts.Parent = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Controller{
		url:      url,
		fetcher:  fetcher,
		dispatch: dispatch,
		cb:       cb,
		parent:   opts.Parent,
		now:      opts.Now,
		logger:   opts.Logger,
	}
}

// Start begins a transfer. It is a no-op returning false while one is
// already in flight.
func (c *Controller) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight() {
		return false
	}

	c.generation++
	ctx, cancel := context.WithCancel(c.parent)
	c.cancel = cancel
	c.session = &domain.DownloadSession{
		ID:         uuid.NewString(),
		Generation: c.generation,
		State:      domain.SessionInFlight,
		StartedAt:  c.now(),
	}

	snapshot := *c.session
	c.logger.Debug("preview download started", "url", c.url, "session", snapshot.ID, "generation", snapshot.Generation)
	c.emit(func() {
		if c.cb.OnStart != nil {
			c.cb.OnStart(snapshot)
		}
	})

	go c.transfer(ctx, snapshot.Generation)
	return true
}

// Cancel aborts the in-flight transfer, if any, and reports OnCancel.
// The aborted transfer's own completion is discarded as stale.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inFlight() {
		return
	}

	c.cancel()
	c.cancel = nil
	c.generation++

	s := c.session
	s.State = domain.SessionCancelled

	info := CancelInfo{
		SessionID: s.ID,
		Duration:  c.now().Sub(s.StartedAt),
		Progress:  s.Percent,
	}
	c.logger.Debug("preview download cancelled", "url", c.url, "session", s.ID, "progress", info.Progress)
	c.emit(func() {
		if c.cb.OnCancel != nil {
			c.cb.OnCancel(info)
		}
	})
}

// InFlight reports whether a transfer is running
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight()
}

func (c *Controller) inFlight() bool {
	return c.session != nil && !c.session.State.IsTerminal()
}

// Progress returns the last reported percent of the in-flight transfer,
// or 0 when idle.
func (c *Controller) Progress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.inFlight() {
		return 0
	}
	return c.session.Percent
}

// Generation returns the current generation number
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Session returns a snapshot of the latest session. Its State is final
// as soon as the outcome is decided, before the callback is delivered.
func (c *Controller) Session() (domain.DownloadSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return domain.DownloadSession{}, false
	}
	return *c.session, true
}

func (c *Controller) transfer(ctx context.Context, gen uint64) {
	payload, err := c.fetcher.Fetch(ctx, c.url, func(loaded, total int64) {
		c.progress(gen, loaded, total)
	})

	var data string
	if err == nil {
		data = EncodeDataURI(payload.Data, payload.ContentType)
	}
	c.complete(gen, payload.ContentType, data, err)

	if c.transferDone != nil {
		c.transferDone()
	}
}

func (c *Controller) progress(gen uint64, loaded, total int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if !c.inFlight() || s.Generation != gen {
		return
	}

	s.BytesLoaded = loaded
	s.BytesTotal = total
	s.Percent = percentOf(loaded, total, s.Percent)

	percent := s.Percent
	c.emit(func() {
		if c.cb.OnProgress != nil {
			c.cb.OnProgress(percent)
		}
	})
}

func (c *Controller) complete(gen uint64, contentType, data string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.session
	if !c.inFlight() || s.Generation != gen || gen != c.generation {
		c.logger.Debug("discarding stale preview completion", "url", c.url, "generation", gen)
		return
	}

	c.cancel()
	c.cancel = nil
	duration := c.now().Sub(s.StartedAt)

	switch {
	case err == nil:
		s.State = domain.SessionSucceeded
		info := SuccessInfo{SessionID: s.ID, Duration: duration, Data: data, ContentType: contentType}
		c.logger.Debug("preview download finished", "url", c.url, "session", s.ID, "duration", duration)
		c.emit(func() {
			if c.cb.OnSuccess != nil {
				c.cb.OnSuccess(info)
			}
		})
	case errors.Is(err, domain.ErrCancelled) || errors.Is(err, context.Canceled):
		s.State = domain.SessionCancelled
		info := CancelInfo{SessionID: s.ID, Duration: duration, Progress: s.Percent}
		c.emit(func() {
			if c.cb.OnCancel != nil {
				c.cb.OnCancel(info)
			}
		})
	default:
		s.State = domain.SessionFailed
		c.logger.Debug("preview download failed", "url", c.url, "session", s.ID, "error", err)
		c.emit(func() {
			if c.cb.OnError != nil {
				c.cb.OnError(err)
			}
		})
	}
}

// emit must be called with c.mu held so callbacks keep decision order.
func (c *Controller) emit(fn func()) {
	c.dispatch.Post(fn)
}

// percentOf rounds loaded/total to a percent in [last, 100].
// An unknown total repeats the last known value.
func percentOf(loaded, total int64, last int) int {
	if total <= 0 {
		return last
	}
	p := int(math.Round(float64(loaded) / float64(total) * 100))
	if p > 100 {
		p = 100
	}
	if p < last {
		p = last
	}
	return p
}
