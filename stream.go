// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aeon

// Stream describes a computation that produces zero or more values of type
// A before completing, the stream analogue of [Composable].
type Stream[In, A any] func(down StreamContinuation[A]) Continuation[In]

// Iterate turns a slice into a stream: one Body per element in order,
// followed by Ended. This is the library's simplest stream source.
func Iterate[A any](vs []A) Stream[Unit, A] {
	return func(down StreamContinuation[A]) Continuation[Unit] {
		return &iterateK[A]{down: down, vs: vs}
	}
}

type iterateK[A any] struct {
	down StreamContinuation[A]
	vs   []A
	i    int
}

func (k *iterateK[A]) Start(Unit) { k.emit() }
func (k *iterateK[A]) Next()      { k.emit() }

func (k *iterateK[A]) emit() {
	if k.i >= len(k.vs) {
		k.down.Ended()
		return
	}
	v := k.vs[k.i]
	k.i++
	k.down.Body(v)
}
func (k *iterateK[A]) Fail(err error)        { k.down.Fail(err) }
func (k *iterateK[A]) Stop()                 { k.down.Stop() }
func (k *iterateK[A]) Register(i *Interrupt) { k.down.Register(i) }

// MapStream applies f to every element of a stream, preserving Body/Ended
// sequencing.
func MapStream[In, A, B any](s Stream[In, A], f func(A) B) Stream[In, B] {
	return func(down StreamContinuation[B]) Continuation[In] {
		return s(&mapStreamK[A, B]{down: down, f: f})
	}
}

type mapStreamK[A, B any] struct {
	down StreamContinuation[B]
	f    func(A) B
}

func (k *mapStreamK[A, B]) Body(v A)              { k.down.Body(k.f(v)) }
func (k *mapStreamK[A, B]) Ended()                { k.down.Ended() }
func (k *mapStreamK[A, B]) Fail(err error)        { k.down.Fail(err) }
func (k *mapStreamK[A, B]) Stop()                 { k.down.Stop() }
func (k *mapStreamK[A, B]) Register(i *Interrupt) { k.down.Register(i) }

// Loop drives a stream to completion with no observer; used when only the
// stream's side effects (or its terminal Fail/Stop) matter.
func Loop[In, A any](s Stream[In, A]) Composable[In, Unit] {
	return Foreach(s, func(A) {})
}

// Foreach drives a stream, invoking f with each element; like Loop but with
// an observable side effect per Body.
func Foreach[In, A any](s Stream[In, A], f func(A)) Composable[In, Unit] {
	return func(down Continuation[Unit]) Continuation[In] {
		fe := &foreachK[In, A]{down: down, f: f}
		up := s(fe)
		if su, ok := up.(StreamUpstream[In]); ok {
			fe.up = su
		}
		return up
	}
}

type foreachK[In, A any] struct {
	down Continuation[Unit]
	f    func(A)
	up   StreamUpstream[In]
}

func (k *foreachK[In, A]) Body(v A) {
	k.f(v)
	if k.up != nil {
		k.up.Next()
	}
}
func (k *foreachK[In, A]) Ended()                { k.down.Start(Unit{}) }
func (k *foreachK[In, A]) Fail(err error)        { k.down.Fail(err) }
func (k *foreachK[In, A]) Stop()                 { k.down.Stop() }
func (k *foreachK[In, A]) Register(i *Interrupt) { k.down.Register(i) }

// StreamForEach is the stream flat-map: for each element a of s, f(a)
// produces a sub-stream whose bodies are relayed downstream in place of a;
// on the sub-stream's Ended it advances s to pull the next element.
func StreamForEach[In, A, B any](s Stream[In, A], f func(A) Stream[Unit, B]) Stream[In, B] {
	return func(down StreamContinuation[B]) Continuation[In] {
		sfe := &streamForEachDownK[In, A, B]{down: down, f: f}
		outerUp := s(sfe)
		sfe.outer = outerUp
		if su, ok := outerUp.(StreamUpstream[In]); ok {
			sfe.outerNext = su
		}
		return &streamForEachUpK[In, A, B]{outer: outerUp, sfe: sfe}
	}
}

// streamForEachDownK is the downstream sink the outer stream s drives: it
// receives each outer element, expresses f(v) as a fresh sub-stream, and
// relays the sub-stream's Body calls straight through to down.
type streamForEachDownK[In, A, B any] struct {
	down      StreamContinuation[B]
	f         func(A) Stream[Unit, B]
	outer     Continuation[In]
	outerNext StreamUpstream[In]
	innerNext StreamUpstream[Unit]
	i         *Interrupt
}

func (k *streamForEachDownK[In, A, B]) Body(v A) {
	sub := k.f(v)
	innerDown := &streamForEachInnerK[In, A, B]{parent: k}
	innerUp := sub(innerDown)
	if su, ok := innerUp.(StreamUpstream[Unit]); ok {
		k.innerNext = su
	} else {
		k.innerNext = nil
	}
	if k.i != nil {
		innerUp.Register(k.i)
	}
	innerUp.Start(Unit{})
}
func (k *streamForEachDownK[In, A, B]) Ended()         { k.down.Ended() }
func (k *streamForEachDownK[In, A, B]) Fail(err error) { k.down.Fail(err) }
func (k *streamForEachDownK[In, A, B]) Stop()          { k.down.Stop() }
func (k *streamForEachDownK[In, A, B]) Register(i *Interrupt) {
	k.i = i
	k.down.Register(i)
}

// streamForEachInnerK is the downstream sink each f(v) sub-stream drives:
// its bodies relay straight to the outer down; its Ended advances the outer
// stream to the next element instead of ending the whole flattened stream.
type streamForEachInnerK[In, A, B any] struct {
	parent *streamForEachDownK[In, A, B]
}

func (k *streamForEachInnerK[In, A, B]) Body(v B) { k.parent.down.Body(v) }
func (k *streamForEachInnerK[In, A, B]) Ended() {
	k.parent.innerNext = nil
	if k.parent.outerNext != nil {
		k.parent.outerNext.Next()
		return
	}
	k.parent.down.Ended()
}
func (k *streamForEachInnerK[In, A, B]) Fail(err error)      { k.parent.down.Fail(err) }
func (k *streamForEachInnerK[In, A, B]) Stop()               { k.parent.down.Stop() }
func (k *streamForEachInnerK[In, A, B]) Register(*Interrupt) {}

// streamForEachUpK is the Continuation[In] (and, via Next, StreamUpstream[In])
// returned as the flattened stream's own upstream handle: Start/Fail/Stop/
// Register forward to the outer stream's continuation unchanged, but Next
// dispatches to whichever of the inner or outer stream is currently
// in-flight — a downstream consumer's Next() always means "give me the next
// body of the flattened stream", which is the active sub-stream's next body
// if one is running, or the outer stream's next element otherwise.
type streamForEachUpK[In, A, B any] struct {
	outer Continuation[In]
	sfe   *streamForEachDownK[In, A, B]
}

func (k *streamForEachUpK[In, A, B]) Start(v In)            { k.outer.Start(v) }
func (k *streamForEachUpK[In, A, B]) Fail(err error)        { k.outer.Fail(err) }
func (k *streamForEachUpK[In, A, B]) Stop()                 { k.outer.Stop() }
func (k *streamForEachUpK[In, A, B]) Register(i *Interrupt) { k.outer.Register(i) }
func (k *streamForEachUpK[In, A, B]) Next() {
	if k.sfe.innerNext != nil {
		k.sfe.innerNext.Next()
		return
	}
	if k.sfe.outerNext != nil {
		k.sfe.outerNext.Next()
	}
}

// Collect accumulates every element of a stream into a slice, delivered on
// Ended.
func Collect[In, A any](s Stream[In, A]) Composable[In, []A] {
	return func(down Continuation[[]A]) Continuation[In] {
		c := &collectK[In, A]{down: down}
		up := s(c)
		if su, ok := up.(StreamUpstream[In]); ok {
			c.up = su
		}
		return up
	}
}

type collectK[In, A any] struct {
	down Continuation[[]A]
	up   StreamUpstream[In]
	vs   []A
}

func (k *collectK[In, A]) Body(v A) {
	k.vs = append(k.vs, v)
	if k.up != nil {
		k.up.Next()
	}
}
func (k *collectK[In, A]) Ended()                { k.down.Start(k.vs) }
func (k *collectK[In, A]) Fail(err error)        { k.down.Fail(err) }
func (k *collectK[In, A]) Stop()                 { k.down.Stop() }
func (k *collectK[In, A]) Register(i *Interrupt) { k.down.Register(i) }

// Reduce folds a stream into a single accumulator value using f, seeded
// with init, delivering the final accumulator on Ended or as soon as f
// returns false, so a reducer can halt the stream early rather than
// draining it to completion.
func Reduce[In, A, Acc any](s Stream[In, A], init Acc, f func(Acc, A) (Acc, bool)) Composable[In, Acc] {
	return func(down Continuation[Acc]) Continuation[In] {
		r := &reduceK[In, A, Acc]{down: down, acc: init, f: f}
		up := s(r)
		if su, ok := up.(StreamUpstream[In]); ok {
			r.up = su
		}
		return up
	}
}

type reduceK[In, A, Acc any] struct {
	down Continuation[Acc]
	up   StreamUpstream[In]
	acc  Acc
	f    func(Acc, A) (Acc, bool)
	done bool
}

func (k *reduceK[In, A, Acc]) Body(v A) {
	var cont bool
	k.acc, cont = k.f(k.acc, v)
	if !cont {
		k.done = true
		k.down.Start(k.acc)
		return
	}
	if k.up != nil {
		k.up.Next()
	}
}
func (k *reduceK[In, A, Acc]) Ended() {
	if k.done {
		return
	}
	k.down.Start(k.acc)
}
func (k *reduceK[In, A, Acc]) Fail(err error)        { k.down.Fail(err) }
func (k *reduceK[In, A, Acc]) Stop()                 { k.down.Stop() }
func (k *reduceK[In, A, Acc]) Register(i *Interrupt) { k.down.Register(i) }
