// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aeon

import (
	"context"
	"sync/atomic"
)

// Future is the result of [Terminate]: a blocking handle on a single
// eventual outcome. Wait/WaitContext block the calling goroutine until the
// terminated graph delivers Start, Fail, or Stop, then return the
// corresponding (value, nil), (zero, err), or (zero, [ErrStopped]).
//
// Future is the library's only synchronous-wait primitive, intended for
// tests and top-level glue rather than for use inside a running graph.
type Future[A any] struct {
	done chan struct{}
	v    A
	err  error
}

// Wait blocks until the terminated graph completes and returns its outcome.
// Completion closes the done channel, so any number of goroutines may wait
// concurrently and each observes the same outcome.
func (f *Future[A]) Wait() (A, error) {
	<-f.done
	return f.v, f.err
}

// WaitContext is Wait bounded by ctx: if ctx is cancelled before the graph
// completes, it returns (zero, ctx.Err()) instead of blocking forever. The
// underlying graph is not interrupted by a WaitContext timeout — callers
// that need that must Register an [Interrupt] on the [Continuation]
// returned by [Terminate] and trigger it themselves.
func (f *Future[A]) WaitContext(ctx context.Context) (A, error) {
	select {
	case <-f.done:
		return f.v, f.err
	case <-ctx.Done():
		var zero A
		return zero, ctx.Err()
	}
}

// Get is Wait under its original name, kept for callers that terminate a
// graph without needing a context bound.
func (f *Future[A]) Get() (A, error) {
	return f.Wait()
}

// Done returns a channel closed when the terminated graph completes, for
// select-based waits and for driving a reactor until this graph finishes.
func (f *Future[A]) Done() <-chan struct{} {
	return f.done
}

// Terminate binds c to a terminal [Continuation] that records the outcome
// into a [Future] instead of delivering it downstream, and returns both the
// future and the graph's own upstream [Continuation]. Returning the
// continuation itself (rather than a bare start closure) lets a caller
// Register an [Interrupt] on the terminated graph before running it —
// Register must be called before Start per the signal protocol, so a
// closure that called Start with no hook back to the continuation could
// never support cancellation. Start(Unit{}) runs c on the calling goroutine
// up to its first suspension point; callers that want the graph to run on
// a scheduler should invoke it from inside scheduler.Submit instead of
// calling it directly.
func Terminate[A any](c Composable[Unit, A]) (*Future[A], Continuation[Unit]) {
	f := &Future[A]{done: make(chan struct{})}
	term := &terminalK[A]{f: f}
	k := c(term)
	return f, k
}

type terminalK[A any] struct {
	f       *Future[A]
	settled atomic.Bool
}

// settle enforces the one-terminal-signal contract: a second Start, Fail,
// or Stop reaching the terminal is an unrecoverable protocol breach.
func (t *terminalK[A]) settle() {
	if !t.settled.CompareAndSwap(false, true) {
		fatalf("terminal received a second signal")
	}
}

func (t *terminalK[A]) Start(v A) {
	t.settle()
	t.f.v = v
	close(t.f.done)
}
func (t *terminalK[A]) Fail(err error) {
	t.settle()
	t.f.err = err
	close(t.f.done)
}
func (t *terminalK[A]) Stop() {
	t.settle()
	t.f.err = ErrStopped
	close(t.f.done)
}
func (t *terminalK[A]) Register(*Interrupt) {}
