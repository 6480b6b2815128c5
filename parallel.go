// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aeon

import "sync"

// Parallel runs worker against every element of a stream concurrently,
// discarding results, and completes when every worker has completed. The
// first worker Fail wins and fires the per-worker interrupt chain so the
// remaining workers observe cancellation.
func Parallel[In, A any](s Stream[In, A], worker Composable[A, Unit]) Composable[In, Unit] {
	return func(down Continuation[Unit]) Continuation[In] {
		k := &parallelK[In, A]{down: down, worker: worker}
		up := s(k)
		if su, ok := up.(StreamUpstream[In]); ok {
			k.up = su
		}
		return up
	}
}

type parallelK[In, A any] struct {
	down   Continuation[Unit]
	worker Composable[A, Unit]

	mu       sync.Mutex
	wg       sync.WaitGroup
	firstErr error
	stopped  bool
	up       StreamUpstream[In]

	// ch links one child *Interrupt per dispatched worker so that the first
	// worker failure or Stop can fan cancellation out to every other
	// outstanding worker. Also the handler installed on whatever *Interrupt
	// an outer Register call supplies, so an external cancellation reaches
	// every worker the same way.
	ch *chain
}

func (k *parallelK[In, A]) chainLocked() *chain {
	if k.ch == nil {
		k.ch = newChain()
	}
	return k.ch
}

func (k *parallelK[In, A]) Body(v A) {
	child := &Interrupt{}
	k.mu.Lock()
	k.chainLocked().Link(child)
	k.mu.Unlock()

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		w := k.worker(&parallelWorkerK[In, A]{parent: k})
		w.Register(child)
		w.Start(v)
	}()
	if k.up != nil {
		k.up.Next()
	}
}

func (k *parallelK[In, A]) Ended() {
	k.wg.Wait()
	k.mu.Lock()
	err, stopped := k.firstErr, k.stopped
	k.mu.Unlock()
	switch {
	case err != nil:
		k.down.Fail(err)
	case stopped:
		k.down.Stop()
	default:
		k.down.Start(Unit{})
	}
}
func (k *parallelK[In, A]) Fail(err error) { k.down.Fail(err) }

// Stop handles an ingress Stop: it interrupts every outstanding worker and
// then propagates Stop.
func (k *parallelK[In, A]) Stop() {
	k.mu.Lock()
	ch := k.chainLocked()
	k.mu.Unlock()
	ch.Fire()
	k.down.Stop()
}
func (k *parallelK[In, A]) Register(i *Interrupt) {
	k.mu.Lock()
	ch := k.chainLocked()
	k.mu.Unlock()
	i.Install(ch.Fire)
	k.down.Register(i)
}

type parallelWorkerK[In, A any] struct {
	parent *parallelK[In, A]
}

func (k *parallelWorkerK[In, A]) Start(Unit) {}
func (k *parallelWorkerK[In, A]) Fail(err error) {
	k.parent.mu.Lock()
	first := k.parent.firstErr == nil && !k.parent.stopped
	if k.parent.firstErr == nil {
		k.parent.firstErr = err
	}
	ch := k.parent.ch
	k.parent.mu.Unlock()
	if first && ch != nil {
		ch.Fire()
	}
}
func (k *parallelWorkerK[In, A]) Stop() {
	k.parent.mu.Lock()
	first := k.parent.firstErr == nil && !k.parent.stopped
	k.parent.stopped = true
	ch := k.parent.ch
	k.parent.mu.Unlock()
	if first && ch != nil {
		ch.Fire()
	}
}
func (k *parallelWorkerK[In, A]) Register(*Interrupt) {}

// concurrentResult carries one worker's outcome plus its arrival index, used
// by both Concurrent (index discarded, emitted in completion order) and
// ConcurrentOrdered (index used to restore input order).
type concurrentResult[B any] struct {
	index int
	v     B
	err   error
	stop  bool
}

// Concurrent runs worker against every element of a stream concurrently and
// emits each result as soon as it completes, in whatever order workers
// finish. Like Parallel, but carrying a per-element result instead of
// discarding it.
func Concurrent[In, A, B any](s Stream[In, A], worker Composable[A, B]) Stream[In, B] {
	return func(down StreamContinuation[B]) Continuation[In] {
		c := &concurrentK[In, A, B]{down: down, worker: worker, ordered: false}
		up := s(c)
		if su, ok := up.(StreamUpstream[In]); ok {
			c.up = su
		}
		return &concurrentUpK[In]{up: up}
	}
}

// ConcurrentOrdered is Concurrent but restores the input order of results
// before delivering them, buffering out-of-order completions.
func ConcurrentOrdered[In, A, B any](s Stream[In, A], worker Composable[A, B]) Stream[In, B] {
	return func(down StreamContinuation[B]) Continuation[In] {
		c := &concurrentK[In, A, B]{down: down, worker: worker, ordered: true}
		up := s(c)
		if su, ok := up.(StreamUpstream[In]); ok {
			c.up = su
		}
		return &concurrentUpK[In]{up: up}
	}
}

// concurrentUpK is the upstream handle a fan-out hands its consumer. The
// fan-out drives its own ingress stream and pushes egress bodies as workers
// complete, so a downstream Next is a no-op rather than a pull — without
// this, a terminator's Next would re-pump the ingress past the fan-out and
// deliver every element twice.
type concurrentUpK[In any] struct {
	up Continuation[In]
}

func (k *concurrentUpK[In]) Start(v In)            { k.up.Start(v) }
func (k *concurrentUpK[In]) Fail(err error)        { k.up.Fail(err) }
func (k *concurrentUpK[In]) Stop()                 { k.up.Stop() }
func (k *concurrentUpK[In]) Register(i *Interrupt) { k.up.Register(i) }
func (k *concurrentUpK[In]) Next()                 {}

type concurrentK[In, A, B any] struct {
	down    StreamContinuation[B]
	worker  Composable[A, B]
	ordered bool
	up      StreamUpstream[In]

	mu      sync.Mutex
	wg      sync.WaitGroup
	next    int
	count   int
	pending map[int]concurrentResult[B]
	failed  bool
	stopped bool

	// ch mirrors parallelK.ch: one child *Interrupt per dispatched worker,
	// fired in full on the first Fail/Stop result so every other outstanding
	// worker is interrupted, and installed as the handler for whatever
	// *Interrupt an outer Register call supplies.
	ch *chain
}

func (k *concurrentK[In, A, B]) chainLocked() *chain {
	if k.ch == nil {
		k.ch = newChain()
	}
	return k.ch
}

func (k *concurrentK[In, A, B]) Body(v A) {
	idx := k.count
	k.count++
	child := &Interrupt{}
	k.mu.Lock()
	k.chainLocked().Link(child)
	k.mu.Unlock()

	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		w := k.worker(&concurrentWorkerK[In, A, B]{parent: k, index: idx})
		w.Register(child)
		w.Start(v)
	}()
	if k.up != nil {
		k.up.Next()
	}
}

func (k *concurrentK[In, A, B]) Ended() {
	k.wg.Wait()
	k.mu.Lock()
	failed, stopped := k.failed, k.stopped
	k.mu.Unlock()
	if failed || stopped {
		// A worker already delivered Fail or Stop; the stream is over.
		return
	}
	if k.ordered {
		k.flushOrdered()
	}
	k.down.Ended()
}

func (k *concurrentK[In, A, B]) deliver(r concurrentResult[B]) {
	k.mu.Lock()
	if k.failed || k.stopped {
		k.mu.Unlock()
		return
	}
	switch {
	case r.err != nil:
		k.failed = true
		ch := k.ch
		k.mu.Unlock()
		if ch != nil {
			ch.Fire()
		}
		k.down.Fail(r.err)
		return
	case r.stop:
		k.stopped = true
		ch := k.ch
		k.mu.Unlock()
		if ch != nil {
			ch.Fire()
		}
		k.down.Stop()
		return
	}
	if !k.ordered {
		k.down.Body(r.v)
		k.mu.Unlock()
		return
	}
	if k.pending == nil {
		k.pending = make(map[int]concurrentResult[B])
	}
	k.pending[r.index] = r
	k.drainOrderedLocked()
	k.mu.Unlock()
}

func (k *concurrentK[In, A, B]) drainOrderedLocked() {
	for {
		r, ok := k.pending[k.next]
		if !ok {
			return
		}
		delete(k.pending, k.next)
		k.next++
		k.down.Body(r.v)
	}
}

func (k *concurrentK[In, A, B]) flushOrdered() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.drainOrderedLocked()
}

func (k *concurrentK[In, A, B]) Fail(err error) { k.down.Fail(err) }

// Stop handles an ingress Stop: it interrupts every outstanding worker,
// marks the stream stopped so later worker results are dropped, and then
// propagates Stop.
func (k *concurrentK[In, A, B]) Stop() {
	k.mu.Lock()
	if k.failed || k.stopped {
		k.mu.Unlock()
		return
	}
	k.stopped = true
	ch := k.chainLocked()
	k.mu.Unlock()
	ch.Fire()
	k.down.Stop()
}
func (k *concurrentK[In, A, B]) Register(i *Interrupt) {
	k.mu.Lock()
	ch := k.chainLocked()
	k.mu.Unlock()
	i.Install(ch.Fire)
	k.down.Register(i)
}

type concurrentWorkerK[In, A, B any] struct {
	parent *concurrentK[In, A, B]
	index  int
}

func (k *concurrentWorkerK[In, A, B]) Start(v B) {
	k.parent.deliver(concurrentResult[B]{index: k.index, v: v})
}
func (k *concurrentWorkerK[In, A, B]) Fail(err error) {
	k.parent.deliver(concurrentResult[B]{index: k.index, err: err})
}
func (k *concurrentWorkerK[In, A, B]) Stop() {
	k.parent.deliver(concurrentResult[B]{index: k.index, stop: true})
}
func (k *concurrentWorkerK[In, A, B]) Register(*Interrupt) {}
