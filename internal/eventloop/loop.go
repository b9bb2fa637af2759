// Package eventloop provides a single-threaded cooperative host: a serial
// task queue, animation-frame callbacks and restartable delayed tasks.
// Everything posted to a Loop runs on the loop goroutine, one task at a time.
package eventloop

import (
	"sync"
	"time"
)

// DefaultFrameInterval approximates a 60 Hz display.
const DefaultFrameInterval = 16 * time.Millisecond

// Loop runs posted tasks serially on a single goroutine.
type Loop struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}

	frameInterval time.Duration
	frameQueue    []func()
	frameArmed    bool
}

// Option configures a Loop
type Option func(*Loop)

// WithFrameInterval overrides the animation frame interval
func WithFrameInterval(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.frameInterval = d
		}
	}
}

// New creates a loop and starts its goroutine.
func New(opts ...Option) *Loop {
	l := &Loop{
		done:          make(chan struct{}),
		frameInterval: DefaultFrameInterval,
	}
	l.cond = sync.NewCond(&l.mu)
	for _, opt := range opts {
		opt(l)
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.queue) == 0 && l.closed {
			l.mu.Unlock()
			return
		}
		task := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		task()
	}
}

// Post enqueues fn. It never blocks; tasks posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.queue = append(l.queue, fn)
	l.cond.Signal()
}

// Flush blocks until every task posted before the call has run.
// Must not be called from the loop goroutine.
func (l *Loop) Flush() {
	ch := make(chan struct{})
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, func() { close(ch) })
	l.cond.Signal()
	l.mu.Unlock()

	select {
	case <-ch:
	case <-l.done:
	}
}

// Close drains the queued tasks and stops the loop.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.cond.Broadcast()
	l.mu.Unlock()
	<-l.done
}

// RequestFrame schedules fn to run on the next animation frame.
// All callbacks requested before a frame fires run together in that frame.
func (l *Loop) RequestFrame(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.frameQueue = append(l.frameQueue, fn)
	if l.frameArmed {
		return
	}
	l.frameArmed = true
	time.AfterFunc(l.frameInterval, func() { l.Post(l.runFrame) })
}

func (l *Loop) runFrame() {
	l.mu.Lock()
	callbacks := l.frameQueue
	l.frameQueue = nil
	l.frameArmed = false
	l.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Timer is a delayed task that can be restarted or disarmed.
type Timer interface {
	Reset()
	Stop() bool
}

// AfterFunc returns a delayed task that posts fn to the loop after d.
// The task is armed immediately.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &Task{loop: l, delay: d, fn: fn}
	t.Reset()
	return t
}
