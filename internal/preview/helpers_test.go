package preview

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mmcdole/folio/internal/domain"
)

// fakeTransfer is one call to fakeFetcher.Fetch, driven by the test.
type fakeTransfer struct {
	ctx      context.Context
	url      string
	progress domain.ProgressFunc
	result   chan fetchResult
}

type fetchResult struct {
	payload domain.Payload
	err     error
}

func (tr *fakeTransfer) succeed(data []byte, contentType string) {
	tr.result <- fetchResult{payload: domain.Payload{Data: data, ContentType: contentType}}
}

func (tr *fakeTransfer) fail(err error) {
	tr.result <- fetchResult{err: err}
}

// fakeFetcher hands every transfer to the test. When ignoreCancel is set a
// transfer keeps running after its context is cancelled, modelling a
// transfer that was about to finish.
type fakeFetcher struct {
	calls        chan *fakeTransfer
	done         chan struct{}
	ignoreCancel bool
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		calls: make(chan *fakeTransfer, 16),
		done:  make(chan struct{}, 16),
	}
}

// watch makes c report finished transfers to waitCompleted. Call it
// before c.Start.
func (f *fakeFetcher) watch(c *Controller) {
	c.transferDone = func() { f.done <- struct{}{} }
}

// waitCompleted blocks until a watched controller has fully handled the
// result of one transfer, including posting any callback.
func (f *fakeFetcher) waitCompleted(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(time.Second):
		t.Fatal("transfer never completed")
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, onProgress domain.ProgressFunc) (domain.Payload, error) {
	tr := &fakeTransfer{
		ctx:      ctx,
		url:      url,
		progress: onProgress,
		result:   make(chan fetchResult, 1),
	}
	f.calls <- tr

	if f.ignoreCancel {
		r := <-tr.result
		return r.payload, r.err
	}
	select {
	case r := <-tr.result:
		return r.payload, r.err
	case <-ctx.Done():
		return domain.Payload{}, fmt.Errorf("fake fetch: %w", domain.ErrCancelled)
	}
}

func (f *fakeFetcher) next(t *testing.T) *fakeTransfer {
	t.Helper()
	select {
	case tr := <-f.calls:
		return tr
	case <-time.After(time.Second):
		t.Fatal("fetch was never called")
		return nil
	}
}

func (f *fakeFetcher) expectNoCall(t *testing.T) {
	t.Helper()
	select {
	case tr := <-f.calls:
		t.Fatalf("unexpected fetch of %s", tr.url)
	case <-time.After(20 * time.Millisecond):
	}
}

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recorder collects controller callbacks in delivery order
type recorder struct {
	mu       sync.Mutex
	events   []string
	starts   []domain.DownloadSession
	success  []SuccessInfo
	cancels  []CancelInfo
	errs     []error
	terminal chan struct{}
}

func newRecorder() *recorder {
	return &recorder{terminal: make(chan struct{}, 16)}
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnStart: func(s domain.DownloadSession) {
			r.mu.Lock()
			r.starts = append(r.starts, s)
			r.mu.Unlock()
			r.add("start")
		},
		OnProgress: func(p int) {
			r.add(fmt.Sprintf("progress:%d", p))
		},
		OnSuccess: func(info SuccessInfo) {
			r.mu.Lock()
			r.success = append(r.success, info)
			r.mu.Unlock()
			r.add("success")
			r.terminal <- struct{}{}
		},
		OnCancel: func(info CancelInfo) {
			r.mu.Lock()
			r.cancels = append(r.cancels, info)
			r.mu.Unlock()
			r.add("cancel")
			r.terminal <- struct{}{}
		},
		OnError: func(err error) {
			r.mu.Lock()
			r.errs = append(r.errs, err)
			r.mu.Unlock()
			r.add("error")
			r.terminal <- struct{}{}
		},
	}
}

func (r *recorder) waitTerminal(t *testing.T) {
	t.Helper()
	select {
	case <-r.terminal:
	case <-time.After(time.Second):
		t.Fatalf("no terminal callback, events so far: %v", r.snapshot())
	}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.snapshot() {
		if e == event {
			n++
		}
	}
	return n
}

func expectEvents(t *testing.T, r *recorder, expected ...string) {
	t.Helper()
	got := r.snapshot()
	if len(got) != len(expected) {
		t.Fatalf("Expected events %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("Expected events %v, got %v", expected, got)
		}
	}
}

// queueDispatcher holds posted callbacks until drain, so a test can act
// between an outcome being decided and its delivery.
type queueDispatcher struct {
	mu    sync.Mutex
	queue []func()
}

func (q *queueDispatcher) Post(fn func()) {
	q.mu.Lock()
	q.queue = append(q.queue, fn)
	q.mu.Unlock()
}

func (q *queueDispatcher) drain() {
	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()
		fn()
	}
}
