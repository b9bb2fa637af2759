package preview

import (
	"testing"
	"time"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/mmcdole/folio/internal/eventloop"
)

// manualScheduler runs posted tasks immediately and holds frames and
// timers until the test fires them.
type manualScheduler struct {
	frames []func()
	timers []*manualTimer
}

func (s *manualScheduler) Post(fn func()) { fn() }

func (s *manualScheduler) RequestFrame(fn func()) { s.frames = append(s.frames, fn) }

func (s *manualScheduler) AfterFunc(d time.Duration, fn func()) eventloop.Timer {
	timer := &manualTimer{delay: d, fn: fn, armed: true}
	s.timers = append(s.timers, timer)
	return timer
}

func (s *manualScheduler) frame() int {
	frames := s.frames
	s.frames = nil
	for _, fn := range frames {
		fn()
	}
	return len(frames)
}

type manualTimer struct {
	delay  time.Duration
	fn     func()
	armed  bool
	resets int
}

func (m *manualTimer) Reset() {
	m.armed = true
	m.resets++
}

func (m *manualTimer) Stop() bool {
	was := m.armed
	m.armed = false
	return was
}

func (m *manualTimer) fire() {
	if m.armed {
		m.armed = false
		m.fn()
	}
}

// fakePage is a scroll source and viewport with one tracked element
type fakePage struct {
	height      int
	offset      int
	bounds      domain.Bounds
	mounted     bool
	subscribers map[int]func()
	nextID      int
}

func newFakePage() *fakePage {
	return &fakePage{height: 40, offset: 10, mounted: true, subscribers: make(map[int]func())}
}

func (p *fakePage) Subscribe(fn func()) func() {
	id := p.nextID
	p.nextID++
	p.subscribers[id] = fn
	return func() { delete(p.subscribers, id) }
}

func (p *fakePage) ViewportHeight() int { return p.height }
func (p *fakePage) ScrollOffset() int   { return p.offset }

func (p *fakePage) locate() (domain.Bounds, bool) { return p.bounds, p.mounted }

func (p *fakePage) scroll() {
	for _, fn := range p.subscribers {
		fn()
	}
}

func newTestTracker(page *fakePage, sched *manualScheduler) (*Tracker, *[]domain.VisibilityState) {
	var states []domain.VisibilityState
	tr := NewTracker(sched, page, page, page.locate, 200*time.Millisecond, func(s domain.VisibilityState) {
		states = append(states, s)
	})
	return tr, &states
}

func TestFullyVisible(t *testing.T) {
	tests := []struct {
		name     string
		bounds   domain.Bounds
		height   int
		offset   int
		expected bool
	}{
		{"fully inside", domain.Bounds{Top: 5, Height: 10}, 40, 10, true},
		{"touching both edges", domain.Bounds{Top: 0, Height: 40}, 40, 10, true},
		{"clipped at top", domain.Bounds{Top: -1, Height: 10}, 40, 10, false},
		{"clipped at bottom", domain.Bounds{Top: 35, Height: 10}, 40, 10, false},
		{"below viewport", domain.Bounds{Top: 50, Height: 10}, 40, 10, false},
		{"taller than viewport", domain.Bounds{Top: 0, Height: 41}, 40, 10, false},
		{"zero offset guard", domain.Bounds{Top: 5, Height: 10}, 40, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fullyVisible(tt.bounds, tt.height, tt.offset)
			if got != tt.expected {
				t.Errorf("fullyVisible(%+v, %d, %d) = %v, expected %v", tt.bounds, tt.height, tt.offset, got, tt.expected)
			}
		})
	}
}

func TestTrackerMeasuresOnAttach(t *testing.T) {
	page := newFakePage()
	page.bounds = domain.Bounds{Top: 5, Height: 10}
	sched := &manualScheduler{}
	tr, states := newTestTracker(page, sched)

	tr.Attach()
	if n := sched.frame(); n != 1 {
		t.Fatalf("Expected one frame after attach, got %d", n)
	}
	if len(*states) != 1 || !(*states)[0].InView || (*states)[0].Scrolling {
		t.Errorf("Expected settled in-view state, got %+v", *states)
	}
}

func TestTrackerCoalescesTicksPerFrame(t *testing.T) {
	page := newFakePage()
	page.bounds = domain.Bounds{Top: 5, Height: 10}
	sched := &manualScheduler{}
	tr, states := newTestTracker(page, sched)
	tr.Attach()
	sched.frame()
	*states = nil

	page.scroll()
	page.scroll()
	page.scroll()

	if n := sched.frame(); n != 1 {
		t.Errorf("Expected ticks to coalesce into one frame, got %d", n)
	}
	if len(*states) != 1 {
		t.Fatalf("Expected one recomputation, got %d", len(*states))
	}
	if !(*states)[0].Scrolling {
		t.Error("Expected Scrolling during ticks")
	}
}

func TestTrackerZeroOffsetGuard(t *testing.T) {
	page := newFakePage()
	page.offset = 0
	page.bounds = domain.Bounds{Top: 5, Height: 10}
	sched := &manualScheduler{}
	tr, states := newTestTracker(page, sched)
	tr.Attach()
	sched.frame()
	page.scroll()
	sched.frame()

	for _, s := range *states {
		if s.InView {
			t.Fatalf("Expected InView=false at scroll offset 0, got %+v", s)
		}
	}
}

func TestTrackerDebouncesScrolling(t *testing.T) {
	page := newFakePage()
	page.bounds = domain.Bounds{Top: 5, Height: 10}
	sched := &manualScheduler{}
	tr, states := newTestTracker(page, sched)
	tr.Attach()
	sched.frame()

	page.scroll()
	sched.frame()
	page.scroll()
	sched.frame()

	if len(sched.timers) != 1 {
		t.Fatalf("Expected a single reusable quiet timer, got %d", len(sched.timers))
	}
	timer := sched.timers[0]
	if timer.delay != 200*time.Millisecond {
		t.Errorf("Expected quiet interval 200ms, got %v", timer.delay)
	}
	if timer.resets != 1 {
		t.Errorf("Expected timer restart on second tick, got %d resets", timer.resets)
	}

	timer.fire()
	last := (*states)[len(*states)-1]
	if last.Scrolling {
		t.Error("Expected Scrolling=false after quiet interval")
	}
	if !last.InView {
		t.Error("Expected InView to be kept across the quiet transition")
	}
}

func TestTrackerToleratesUnmountedElement(t *testing.T) {
	page := newFakePage()
	page.mounted = false
	sched := &manualScheduler{}
	tr, states := newTestTracker(page, sched)
	tr.Attach()
	sched.frame()
	page.scroll()
	sched.frame()

	if len(*states) != 0 {
		t.Errorf("Expected no recomputation for an absent element, got %+v", *states)
	}
}

func TestTrackerNilLocator(t *testing.T) {
	page := newFakePage()
	sched := &manualScheduler{}
	tr := NewTracker(sched, page, page, nil, 0, nil)
	tr.Attach()
	page.scroll()
	sched.frame()
	sched.timers[0].fire()
}

func TestTrackerDetach(t *testing.T) {
	page := newFakePage()
	page.bounds = domain.Bounds{Top: 5, Height: 10}
	sched := &manualScheduler{}
	tr, states := newTestTracker(page, sched)
	tr.Attach()
	sched.frame()
	page.scroll()

	tr.Detach()
	if len(page.subscribers) != 0 {
		t.Errorf("Expected unsubscribe on detach, %d subscribers left", len(page.subscribers))
	}

	before := len(*states)
	sched.frame()
	sched.timers[0].fire()
	if len(*states) != before {
		t.Errorf("Expected no recomputation after detach, got %+v", (*states)[before:])
	}
}

func TestTrackerReportsLeavingView(t *testing.T) {
	page := newFakePage()
	page.bounds = domain.Bounds{Top: 5, Height: 10}
	sched := &manualScheduler{}
	tr, states := newTestTracker(page, sched)
	tr.Attach()
	sched.frame()

	page.bounds.Top = -3
	page.scroll()
	sched.frame()
	sched.timers[0].fire()

	last := (*states)[len(*states)-1]
	if last.InView || last.Scrolling {
		t.Errorf("Expected settled out-of-view state, got %+v", last)
	}
}

func TestTrackerKeepsLastStateWhenUnmounted(t *testing.T) {
	page := newFakePage()
	page.bounds = domain.Bounds{Top: 5, Height: 10}
	sched := &manualScheduler{}
	tr, states := newTestTracker(page, sched)
	tr.Attach()
	sched.frame()

	// Filtered out: no geometry, so the last measurement stands.
	page.mounted = false
	page.scroll()
	sched.frame()
	sched.timers[0].fire()

	last := (*states)[len(*states)-1]
	if !last.InView || last.Scrolling {
		t.Errorf("Expected settled in-view state to be kept, got %+v", last)
	}
}
