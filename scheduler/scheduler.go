// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package scheduler provides the scheduler abstraction used to run
// submitted callbacks: an inline scheduler that runs synchronously, and a
// pinned static thread pool that dispatches to a fixed set of worker
// goroutines, one FIFO per worker.
//
// Go has no goroutine-local storage, so the {scheduler, context} pair that
// would otherwise live in a thread-local is threaded explicitly through
// context.Context via [WithCurrent] and [Current].
package scheduler

import (
	"context"
	"runtime"
	"sync/atomic"
)

// Scheduler submits a callback for execution, optionally on a named worker
// context. Submit never blocks the caller for longer than it takes to
// enqueue fn; fn itself runs according to the scheduler's own discipline
// (synchronously for [Inline], on the named worker's FIFO for
// [ThreadPool]).
type Scheduler interface {
	// Submit enqueues fn to run under ctx. When deferRun is true, fn is
	// never run inline even if the calling goroutine is already the target
	// worker — it is always posted to the FIFO instead, guaranteeing a
	// reschedule boundary.
	Submit(ctx *Context, fn func(), deferRun bool)

	// Continuable reports whether the calling goroutine may keep executing
	// on ctx directly instead of going through Submit's queue — true while
	// ctx is already the target of an in-flight dispatch on this scheduler.
	Continuable(ctx *Context) bool

	// Name identifies the scheduler for logging and Context creation.
	Name() string
}

// Context is the scheduler-side bookkeeping attached to a chain of
// continuations: a name, whether the owning chain is currently blocked
// (awaiting an external event rather than runnable), and a borrow count
// that keeps the context alive while a submission is outstanding.
type Context struct {
	name      string
	scheduler Scheduler
	blocked   atomic.Bool
	borrows   atomic.Int64
	active    atomic.Bool
}

// NewContext creates a context bound to sched, identified by name.
func NewContext(name string, sched Scheduler) *Context {
	return &Context{name: name, scheduler: sched}
}

func (c *Context) Name() string         { return c.name }
func (c *Context) Scheduler() Scheduler { return c.scheduler }

// Block marks the context as waiting on an external event (a timer, an I/O
// completion) rather than runnable.
func (c *Context) Block() { c.blocked.Store(true) }

// Unblock clears the blocked flag, e.g. once a loop callback resumes it.
func (c *Context) Unblock() { c.blocked.Store(false) }

func (c *Context) Blocked() bool { return c.blocked.Load() }

// Dispatching reports whether a scheduler is currently running a callback
// on this context (see [RunOn]).
func (c *Context) Dispatching() bool { return c.active.Load() }

// Borrow increments the in-use count; Release decrements it. Pair every
// Borrow with exactly one Release — mismatches are a contract violation
// callers are expected to catch via race detection and tests, not a
// runtime-enforced invariant.
func (c *Context) Borrow() int64  { return c.borrows.Add(1) }
func (c *Context) Release() int64 { return c.borrows.Add(-1) }

// Borrows reports the current in-use count.
func (c *Context) Borrows() int64 { return c.borrows.Load() }

type currentKey struct{}

// WithCurrent returns a context.Context carrying the {scheduler, Context}
// pair, the idiomatic Go substitute for a thread-local pair.
func WithCurrent(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, currentKey{}, sc)
}

// Current retrieves the {scheduler, Context} pair installed by WithCurrent,
// or nil if none is installed.
func Current(ctx context.Context) *Context {
	sc, _ := ctx.Value(currentKey{}).(*Context)
	return sc
}

// Inline is the zero-value scheduler: Submit runs fn synchronously on the
// calling goroutine, regardless of deferRun. Used when no explicit
// reschedule is needed.
type Inline struct{}

func (Inline) Submit(ctx *Context, fn func(), _ bool) { RunOn(ctx, fn) }
func (Inline) Continuable(*Context) bool              { return true }
func (Inline) Name() string                           { return "inline" }

// RunOn marks ctx as being dispatched while fn runs, so a nested
// non-deferred Submit on the same ctx can observe Continuable(ctx) == true
// and skip the reschedule. Every Scheduler implementation wraps its
// callback dispatch in RunOn.
func RunOn(ctx *Context, fn func()) {
	if ctx == nil {
		fn()
		return
	}
	ctx.active.Store(true)
	defer ctx.active.Store(false)
	fn()
}

// ThreadPool pins a fixed number of worker goroutines, each draining its
// own buffered FIFO channel. Pinned(idx) returns a handle that submits only
// to worker idx.
type ThreadPool struct {
	workers []chan func()
	done    chan struct{}
}

// NewThreadPool starts n worker goroutines, each with a FIFO of the given
// capacity. n <= 0 defaults to runtime.GOMAXPROCS(0).
func NewThreadPool(n, capacity int) *ThreadPool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if capacity <= 0 {
		capacity = 64
	}
	tp := &ThreadPool{
		workers: make([]chan func(), n),
		done:    make(chan struct{}),
	}
	for i := range tp.workers {
		tp.workers[i] = make(chan func(), capacity)
		go tp.drain(tp.workers[i])
	}
	return tp
}

func (tp *ThreadPool) drain(q chan func()) {
	for {
		select {
		case fn := <-q:
			fn()
		case <-tp.done:
			return
		}
	}
}

// Size reports the number of pinned workers.
func (tp *ThreadPool) Size() int { return len(tp.workers) }

// Submit on the pool itself picks a worker by hashing the context's name
// (a nil context goes to worker 0); callers that need a chosen worker
// should use [Pinned] instead.
func (tp *ThreadPool) Submit(ctx *Context, fn func(), deferRun bool) {
	tp.Pinned(tp.hash(ctx)).Submit(ctx, fn, deferRun)
}

// Continuable reports whether ctx is already active on one of this pool's
// workers (see [pinnedWorker.Continuable]).
func (tp *ThreadPool) Continuable(ctx *Context) bool {
	return tp.Pinned(tp.hash(ctx)).Continuable(ctx)
}

func (tp *ThreadPool) Name() string { return "thread-pool" }

func (tp *ThreadPool) hash(ctx *Context) int {
	if ctx == nil || len(tp.workers) == 0 {
		return 0
	}
	var h uint32
	for i := 0; i < len(ctx.name); i++ {
		h = h*31 + uint32(ctx.name[i])
	}
	return int(h % uint32(len(tp.workers)))
}

// Pinned returns a Scheduler that always submits to worker idx, the Go
// realization of "pinned worker" scheduling: idx is taken modulo the pool
// size so callers never need to range-check it themselves.
func (tp *ThreadPool) Pinned(idx int) Scheduler {
	return pinnedWorker{tp: tp, idx: ((idx % len(tp.workers)) + len(tp.workers)) % len(tp.workers)}
}

type pinnedWorker struct {
	tp  *ThreadPool
	idx int
}

// Submit posts fn to worker idx's FIFO, unless deferRun is false and ctx is
// already active on that worker (Continuable(ctx) == true), in which case fn
// runs inline rather than round-tripping through the FIFO.
func (p pinnedWorker) Submit(ctx *Context, fn func(), deferRun bool) {
	if !deferRun && p.Continuable(ctx) {
		RunOn(ctx, fn)
		return
	}
	p.tp.workers[p.idx] <- func() { RunOn(ctx, fn) }
}

// Continuable reports whether ctx is currently being dispatched (see
// [RunOn]). It does not check which worker or goroutine is asking: any
// goroutine observes true while a callback for ctx is running.
func (p pinnedWorker) Continuable(ctx *Context) bool {
	return ctx != nil && ctx.active.Load()
}
func (p pinnedWorker) Name() string { return "pinned" }

// Close stops every worker goroutine. Pending callbacks already enqueued
// are dropped; Close does not wait for in-flight fn calls to return.
func (tp *ThreadPool) Close() {
	close(tp.done)
}
