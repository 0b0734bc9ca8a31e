package session

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs the most recently triggered task after a quiet period.
// Triggering again cancels the pending task and the context of any task
// still running.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	task   func()
	cancel context.CancelFunc

	running sync.WaitGroup
}

// NewDebouncer returns a Debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn to run after the delay, replacing any pending task.
// fn receives a context that is cancelled if the task is superseded, the
// debouncer is stopped, or ctx ends.
func (d *Debouncer) Trigger(ctx context.Context, fn func(context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()

	d.gen++
	gen := d.gen
	taskCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.task = func() {
		if taskCtx.Err() != nil {
			return
		}
		fn(taskCtx)
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Flush runs the pending task now on the calling goroutine, if there is one,
// and waits for a task already started by the timer to return.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	task := d.task
	d.task = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()
	if task != nil {
		task()
	}
	d.running.Wait()
}

// Cancel drops the pending task, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

// Stop cancels pending and running work. The debouncer may be triggered again.
func (d *Debouncer) Stop() {
	d.Cancel()
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.task == nil {
		d.mu.Unlock()
		return
	}
	task := d.task
	d.task = nil
	d.timer = nil
	d.running.Add(1)
	d.mu.Unlock()
	defer d.running.Done()
	task()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.task = nil
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
