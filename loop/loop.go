// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package loop provides the single-threaded reactor leaves such as Timer
// run on: a timer min-heap, a pauseable virtual clock, and a lock-free MPSC
// waiter queue. The reactor never performs blocking I/O itself; goroutines
// doing the actual blocking work post their results back through Submit.
package loop

import (
	"container/heap"
	"log/slog"
	"sync"
	"time"
)

// Loop is a cooperative single-goroutine reactor. Run must be called from
// exactly one goroutine; Submit and timer registration are safe from any
// goroutine.
type Loop struct {
	clock Clock
	waits waiterStack
	wake  chan struct{}

	mu      sync.Mutex
	timers  timerHeap
	active  int
	runOnce sync.Once
	stopCh  chan struct{}
}

// New creates a Loop using the real wall clock.
func New() *Loop {
	return newWithClock(realClock{})
}

// NewWithClock creates a Loop driven by clock, normally a *VirtualClock in
// tests wanting deterministic timer ordering.
func NewWithClock(clock Clock) *Loop {
	return newWithClock(clock)
}

func newWithClock(clock Clock) *Loop {
	return &Loop{clock: clock, wake: make(chan struct{}, 1), stopCh: make(chan struct{})}
}

// Submit posts fn to run on the loop goroutine and wakes the loop. Safe to
// call from any goroutine, including fn bodies themselves.
func (l *Loop) Submit(fn func()) {
	l.waits.push(fn)
	l.Interrupt()
}

// Interrupt signals the async wake-up, forcing a loop iteration. Used after
// external state changes the loop cannot observe on its own.
func (l *Loop) Interrupt() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// timerEntry is one pending deadline in the min-heap.
type timerEntry struct {
	deadline time.Time
	fn       func()
	index    int
	canceled bool
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int           { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x any) {
	e := x.(*timerEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// TimerHandle cancels a scheduled timer callback. Canceling after the
// deadline has already fired is a harmless no-op.
type TimerHandle struct {
	l     *Loop
	entry *timerEntry
}

// Cancel prevents entry's callback from firing, if it has not already.
func (h *TimerHandle) Cancel() {
	h.l.mu.Lock()
	defer h.l.mu.Unlock()
	h.entry.canceled = true
}

// AfterFunc schedules fn to run on the loop goroutine once d has elapsed on
// l's clock. Returns a handle that can cancel the pending callback.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *TimerHandle {
	l.mu.Lock()
	e := &timerEntry{deadline: l.clock.Now().Add(d), fn: fn}
	heap.Push(&l.timers, e)
	l.active++
	l.mu.Unlock()
	l.Interrupt()
	return &TimerHandle{l: l, entry: e}
}

// Run drives the reactor until Close is called: it pops due timers,
// dispatches queued waiters, and sleeps until the nearest of the next
// deadline, the next Submit, or an Interrupt wake-up. Must run on exactly
// one goroutine.
func (l *Loop) Run() {
	l.run(nil)
}

// RunUntil is Run bounded by done: the reactor additionally returns once
// done is closed, e.g. a [code.hybscloud.com/aeon.Future]'s Done channel.
func (l *Loop) RunUntil(done <-chan struct{}) {
	l.run(done)
}

func (l *Loop) run(done <-chan struct{}) {
	for {
		now := l.clock.Now()
		ran := l.runDueTimers(now)
		fns := l.waits.drain()
		for _, fn := range fns {
			fn()
		}
		// A nil done never selects, so Run and RunUntil share one loop.
		select {
		case <-l.stopCh:
			return
		case <-done:
			return
		default:
		}
		if !ran && len(fns) == 0 {
			select {
			case <-time.After(l.nextWait(now)):
			case <-l.wake:
			case <-l.stopCh:
				return
			case <-done:
				return
			}
		}
	}
}

func (l *Loop) runDueTimers(now time.Time) bool {
	l.mu.Lock()
	var due []*timerEntry
	for l.timers.Len() > 0 {
		e := l.timers[0]
		if e.canceled {
			heap.Pop(&l.timers)
			l.active--
			continue
		}
		if e.deadline.After(now) {
			break
		}
		due = append(due, e)
		heap.Pop(&l.timers)
		l.active--
	}
	l.mu.Unlock()
	for _, e := range due {
		e.fn()
	}
	return len(due) > 0
}

func (l *Loop) nextWait(now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timers.Len() == 0 {
		return 10 * time.Millisecond
	}
	d := l.timers[0].deadline.Sub(now)
	if d < 0 {
		return 0
	}
	if d > 10*time.Millisecond {
		return 10 * time.Millisecond
	}
	return d
}

// ActiveHandles reports the number of pending timer registrations, used by
// Close to detect teardown with active handles.
func (l *Loop) ActiveHandles() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// closeWarnBatch is how many redrain iterations Close runs between
// active-handle warnings.
const closeWarnBatch = 25

// closeMaxIterations bounds the non-blocking redrain loop so a handle an
// owner never releases cannot hang Close forever; it still drains and warns
// well past any realistic in-flight callback chain before giving up.
const closeMaxIterations = 200

// closePollInterval paces the iterations above a busy spin so in-flight
// callbacks (e.g. a poll handle's result-posting goroutine) get a realistic
// chance to run between checks.
const closePollInterval = time.Millisecond

// Close stops Run and, while handles are still active, repeatedly iterates
// over due timers and queued waiters until the active-handle count reaches
// zero or closeMaxIterations iterations have run, emitting a warning every
// closeWarnBatch iterations and sleeping closePollInterval between
// iterations. Handles still active after the last iteration are left as
// they are and Close returns.
func (l *Loop) Close() {
	l.runOnce.Do(func() {
		for i := 0; l.ActiveHandles() > 0 && i < closeMaxIterations; i++ {
			if i%closeWarnBatch == 0 {
				slog.Warn("aeon/loop: closing with active timer handles", "count", l.ActiveHandles(), "iteration", i)
			}
			l.runDueTimers(l.clock.Now())
			for _, fn := range l.waits.drain() {
				fn()
			}
			if l.ActiveHandles() > 0 {
				time.Sleep(closePollInterval)
			}
		}
		close(l.stopCh)
	})
}
