// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aeon

// Composable describes a computation of declared input type In and output
// type Out. Expressing a composable binds it to a downstream continuation
// and returns the continuation that upstream will drive.
//
// A leaf composable (no upstream) has In = Unit; its continuation is driven
// by calling Start(Unit{}) once, directly or via [Terminate].
type Composable[In, Out any] func(down Continuation[Out]) Continuation[In]

// Pipe composes A then B: the result of expressing A is wired as B's
// upstream. This is the Go realization of the spec's "A >> B" operator.
// The value type of Pipe(a, b) is b's value type given a's as input.
func Pipe[In, Mid, Out any](a Composable[In, Mid], b Composable[Mid, Out]) Composable[In, Out] {
	return func(down Continuation[Out]) Continuation[In] {
		return a(b(down))
	}
}

// Pipe3 through Pipe5 chain three to five composables without nesting Pipe
// calls at call sites.
func Pipe3[A, B, C, D any](a Composable[A, B], b Composable[B, C], c Composable[C, D]) Composable[A, D] {
	return Pipe(a, Pipe(b, c))
}

func Pipe4[A, B, C, D, E any](a Composable[A, B], b Composable[B, C], c Composable[C, D], d Composable[D, E]) Composable[A, E] {
	return Pipe(a, Pipe3(b, c, d))
}

func Pipe5[A, B, C, D, E, F any](a Composable[A, B], b Composable[B, C], c Composable[C, D], d Composable[D, E], e Composable[E, F]) Composable[A, F] {
	return Pipe(a, Pipe4(b, c, d, e))
}

// passThrough forwards Fail/Stop/Register unchanged; combinators that only
// need to intercept Start embed it instead of repeating the three
// boilerplate methods.
type passThrough[Out any] struct {
	down Continuation[Out]
}

func (p passThrough[Out]) Fail(err error)        { p.down.Fail(err) }
func (p passThrough[Out]) Stop()                 { p.down.Stop() }
func (p passThrough[Out]) Register(i *Interrupt) { p.down.Register(i) }

// streamPassThrough is the stream analogue of passThrough.
type streamPassThrough[Out any] struct {
	down StreamContinuation[Out]
}

func (p streamPassThrough[Out]) Fail(err error)        { p.down.Fail(err) }
func (p streamPassThrough[Out]) Stop()                 { p.down.Stop() }
func (p streamPassThrough[Out]) Register(i *Interrupt) { p.down.Register(i) }

// Just lifts a pure value: on Start, delivers Start(v) downstream
// immediately.
func Just[A any](v A) Composable[Unit, A] {
	return func(down Continuation[A]) Continuation[Unit] {
		return &justK[A]{down: down, v: v}
	}
}

type justK[A any] struct {
	down Continuation[A]
	v    A
}

func (k *justK[A]) Start(Unit)            { k.down.Start(k.v) }
func (k *justK[A]) Fail(err error)        { k.down.Fail(err) }
func (k *justK[A]) Stop()                 { k.down.Stop() }
func (k *justK[A]) Register(i *Interrupt) { k.down.Register(i) }

// Raise delivers Fail(err) downstream on Start, regardless of the upstream
// value.
func Raise[In, Out any](err error) Composable[In, Out] {
	return func(down Continuation[Out]) Continuation[In] {
		return &raiseK[In, Out]{down: down, err: err}
	}
}

type raiseK[In, Out any] struct {
	down Continuation[Out]
	err  error
}

func (k *raiseK[In, Out]) Start(In)              { k.down.Fail(k.err) }
func (k *raiseK[In, Out]) Fail(err error)        { k.down.Fail(err) }
func (k *raiseK[In, Out]) Stop()                 { k.down.Stop() }
func (k *raiseK[In, Out]) Register(i *Interrupt) { k.down.Register(i) }

// Then evaluates f on Start(a); if f returns a non-nil composable, it is
// dynamically spliced in (f's result drives down); otherwise Start(b) is
// delivered directly.
func Then[A, B any](f func(A) (B, Composable[Unit, B], error)) Composable[A, B] {
	return func(down Continuation[B]) Continuation[A] {
		return &thenK[A, B]{down: down, f: f}
	}
}

type thenK[A, B any] struct {
	down Continuation[B]
	f    func(A) (B, Composable[Unit, B], error)
}

func (k *thenK[A, B]) Start(a A) {
	b, sub, err := k.f(a)
	if err != nil {
		k.down.Fail(err)
		return
	}
	if sub != nil {
		sub(k.down).Start(Unit{})
		return
	}
	k.down.Start(b)
}
func (k *thenK[A, B]) Fail(err error)        { k.down.Fail(err) }
func (k *thenK[A, B]) Stop()                 { k.down.Stop() }
func (k *thenK[A, B]) Register(i *Interrupt) { k.down.Register(i) }

// Map applies a pure function to the upstream value. Equivalent to
// Then(func(a A) (B, Composable[Unit,B], error) { return f(a), nil, nil })
// but avoids the three-return-value indirection for the common pure case.
func Map[A, B any](f func(A) B) Composable[A, B] {
	return func(down Continuation[B]) Continuation[A] {
		return &mapK[A, B]{down: down, f: f}
	}
}

type mapK[A, B any] struct {
	down Continuation[B]
	f    func(A) B
}

func (k *mapK[A, B]) Start(a A)             { k.down.Start(k.f(a)) }
func (k *mapK[A, B]) Fail(err error)        { k.down.Fail(err) }
func (k *mapK[A, B]) Stop()                 { k.down.Stop() }
func (k *mapK[A, B]) Register(i *Interrupt) { k.down.Register(i) }

// TypeCheck is a static assertion that a composable's output type is T. It
// is a zero-cost pass-through at runtime: the generic instantiation itself
// is the check (a mismatched T fails to compile).
func TypeCheck[T, In any](c Composable[In, T]) Composable[In, T] {
	return c
}

// Repeat runs body in a loop, discarding each Start(Unit{}) result, until
// body itself delivers Fail or Stop, or until cond returns false. cond is
// checked before every iteration, including the first, so body may run
// zero times.
func Repeat(body Composable[Unit, Unit], cond func() bool) Composable[Unit, Unit] {
	return func(down Continuation[Unit]) Continuation[Unit] {
		r := &repeatK{down: down, body: body, cond: cond}
		return r
	}
}

type repeatK struct {
	down Continuation[Unit]
	body Composable[Unit, Unit]
	cond func() bool
}

func (k *repeatK) Start(Unit) {
	for {
		if !k.cond() {
			k.down.Start(Unit{})
			return
		}
		done := make(chan error, 1)
		stopped := make(chan struct{}, 1)
		k.body(&repeatIterK{done: done, stopped: stopped}).Start(Unit{})
		select {
		case err := <-done:
			if err != nil {
				k.down.Fail(err)
				return
			}
		case <-stopped:
			k.down.Stop()
			return
		}
	}
}
func (k *repeatK) Fail(err error)        { k.down.Fail(err) }
func (k *repeatK) Stop()                 { k.down.Stop() }
func (k *repeatK) Register(i *Interrupt) { k.down.Register(i) }

type repeatIterK struct {
	done    chan error
	stopped chan struct{}
}

func (k *repeatIterK) Start(Unit)          { k.done <- nil }
func (k *repeatIterK) Fail(err error)      { k.done <- err }
func (k *repeatIterK) Stop()               { k.stopped <- struct{}{} }
func (k *repeatIterK) Register(*Interrupt) {}

// Until runs body repeatedly until pred(v) is true for body's result v, then
// delivers Start(v) downstream. Fail/Stop from body propagate immediately.
func Until[A any](body Composable[Unit, A], pred func(A) bool) Composable[Unit, A] {
	return func(down Continuation[A]) Continuation[Unit] {
		return &untilK[A]{down: down, body: body, pred: pred}
	}
}

type untilK[A any] struct {
	down Continuation[A]
	body Composable[Unit, A]
	pred func(A) bool
}

func (k *untilK[A]) Start(Unit) {
	for {
		result := make(chan untilOutcome[A], 1)
		k.body(&untilIterK[A]{result: result}).Start(Unit{})
		o := <-result
		switch o.signal {
		case signalFail:
			k.down.Fail(o.err)
			return
		case signalStop:
			k.down.Stop()
			return
		default:
			if k.pred(o.v) {
				k.down.Start(o.v)
				return
			}
		}
	}
}
func (k *untilK[A]) Fail(err error)        { k.down.Fail(err) }
func (k *untilK[A]) Stop()                 { k.down.Stop() }
func (k *untilK[A]) Register(i *Interrupt) { k.down.Register(i) }

type untilSignal int

const (
	signalStart untilSignal = iota
	signalFail
	signalStop
)

type untilOutcome[A any] struct {
	signal untilSignal
	v      A
	err    error
}

type untilIterK[A any] struct {
	result chan untilOutcome[A]
}

func (k *untilIterK[A]) Start(v A)           { k.result <- untilOutcome[A]{signal: signalStart, v: v} }
func (k *untilIterK[A]) Fail(err error)      { k.result <- untilOutcome[A]{signal: signalFail, err: err} }
func (k *untilIterK[A]) Stop()               { k.result <- untilOutcome[A]{signal: signalStop} }
func (k *untilIterK[A]) Register(*Interrupt) {}
