package preview

import (
	"time"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/eventloop"
)

// DefaultQuietInterval is how long scroll notifications must stop before
// the page counts as settled.
const DefaultQuietInterval = 200 * time.Millisecond

// Scheduler is the single-threaded host the tracker runs on.
type Scheduler interface {
	Post(fn func())
	RequestFrame(fn func())
	AfterFunc(d time.Duration, fn func()) eventloop.Timer
}

// Tracker derives a debounced "fully in viewport" signal for one element.
// All tracker state lives on the scheduler; only Attach and Detach may be
// called from other goroutines.
type Tracker struct {
	sched    Scheduler
	source   domain.ScrollSource
	viewport domain.Viewport
	locate   domain.ElementLocator
	quiet    time.Duration
	onChange func(domain.VisibilityState)

	unsubscribe func()

	// scheduler-confined
	attached     bool
	framePending bool
	quietTask    eventloop.Timer
	state        domain.VisibilityState
}

// NewTracker creates a tracker. onChange receives the state after every
// recomputation, on the scheduler.
func NewTracker(
	sched Scheduler,
	source domain.ScrollSource,
	viewport domain.Viewport,
	locate domain.ElementLocator,
	quiet time.Duration,
	onChange func(domain.VisibilityState),
) *Tracker {
	if quiet <= 0 {
		quiet = DefaultQuietInterval
	}
	return &Tracker{
		sched:    sched,
		source:   source,
		viewport: viewport,
		locate:   locate,
		quiet:    quiet,
		onChange: onChange,
	}
}

// Attach subscribes to scroll notifications and measures once.
func (t *Tracker) Attach() {
	if t.unsubscribe != nil {
		return
	}
	t.unsubscribe = t.source.Subscribe(t.notify)
	t.sched.Post(func() {
		t.attached = true
		t.requestFrame()
	})
}

// Detach unsubscribes; pending frames and quiet timers become no-ops.
func (t *Tracker) Detach() {
	if t.unsubscribe == nil {
		return
	}
	t.unsubscribe()
	t.unsubscribe = nil
	t.sched.Post(func() {
		t.attached = false
		if t.quietTask != nil {
			t.quietTask.Stop()
		}
	})
}

// notify may run on any goroutine
func (t *Tracker) notify() {
	t.sched.Post(t.onScroll)
}

func (t *Tracker) onScroll() {
	if !t.attached {
		return
	}
	t.state.Scrolling = true
	if t.quietTask == nil {
		t.quietTask = t.sched.AfterFunc(t.quiet, t.onQuiet)
	} else {
		t.quietTask.Reset()
	}
	t.requestFrame()
}

// requestFrame coalesces ticks so geometry is computed once per frame.
func (t *Tracker) requestFrame() {
	if t.framePending {
		return
	}
	t.framePending = true
	t.sched.RequestFrame(t.measure)
}

func (t *Tracker) measure() {
	t.framePending = false
	if !t.attached || t.locate == nil {
		return
	}
	b, ok := t.locate()
	if !ok {
		return
	}
	t.state.InView = fullyVisible(b, t.viewport.ViewportHeight(), t.viewport.ScrollOffset())
	t.publish()
}

func (t *Tracker) onQuiet() {
	if !t.attached {
		return
	}
	t.state.Scrolling = false
	t.publish()
}

func (t *Tracker) publish() {
	if t.onChange != nil {
		t.onChange(t.state)
	}
}

// fullyVisible reports full containment. A scroll offset of exactly zero
// means the user has not scrolled since navigation and never counts.
func fullyVisible(b domain.Bounds, viewportHeight, scrollOffset int) bool {
	if scrollOffset == 0 {
		return false
	}
	return b.Top >= 0 && b.Bottom() <= viewportHeight
}
