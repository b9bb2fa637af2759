package eventloop

import (
	"sync"
	"time"
)

// Task is a cancellable, restartable delayed task. Each Reset supersedes the
// previous arming; a fire that was already queued when Stop or Reset ran is
// discarded on the loop.
type Task struct {
	loop  *Loop
	delay time.Duration
	fn    func()

	mu    sync.Mutex
	seq   uint64
	timer *time.Timer
}

// Reset (re)arms the task for its full delay.
func (t *Task) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.seq++
	if t.timer != nil {
		t.timer.Stop()
	}
	armed := t.seq
	t.timer = time.AfterFunc(t.delay, func() {
		t.loop.Post(func() { t.fire(armed) })
	})
}

// Stop disarms the task. It reports whether the task was armed.
func (t *Task) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer == nil {
		return false
	}
	t.seq++
	t.timer.Stop()
	t.timer = nil
	return true
}

func (t *Task) fire(armed uint64) {
	t.mu.Lock()
	if armed != t.seq {
		t.mu.Unlock()
		return
	}
	t.timer = nil
	t.mu.Unlock()

	t.fn()
}
