// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aeon

// Bracket provides exception-safe resource acquisition and release: acquire
// then use then release, where release always runs, whether use completed
// with Start, Fail, or Stop — release sees cancellation too, not just
// errors.
func Bracket[R, A any](
	acquire Composable[Unit, R],
	release func(R) Composable[Unit, Unit],
	use func(R) Composable[Unit, A],
) Composable[Unit, A] {
	return func(down Continuation[A]) Continuation[Unit] {
		return acquire(&bracketAcquireK[R, A]{down: down, release: release, use: use})
	}
}

type bracketAcquireK[R, A any] struct {
	down    Continuation[A]
	release func(R) Composable[Unit, Unit]
	use     func(R) Composable[Unit, A]
}

func (k *bracketAcquireK[R, A]) Start(resource R) {
	k.use(resource)(&bracketUseK[R, A]{down: k.down, resource: resource, release: k.release}).Start(Unit{})
}
func (k *bracketAcquireK[R, A]) Fail(err error)        { k.down.Fail(err) }
func (k *bracketAcquireK[R, A]) Stop()                 { k.down.Stop() }
func (k *bracketAcquireK[R, A]) Register(i *Interrupt) { k.down.Register(i) }

type bracketUseK[R, A any] struct {
	down     Continuation[A]
	resource R
	release  func(R) Composable[Unit, Unit]
}

func (k *bracketUseK[R, A]) Start(v A) {
	k.release(k.resource)(&bracketReleaseK[A]{down: k.down, outcome: bracketOutcome[A]{signal: signalStart, v: v}}).Start(Unit{})
}
func (k *bracketUseK[R, A]) Fail(err error) {
	k.release(k.resource)(&bracketReleaseK[A]{down: k.down, outcome: bracketOutcome[A]{signal: signalFail, err: err}}).Start(Unit{})
}
func (k *bracketUseK[R, A]) Stop() {
	k.release(k.resource)(&bracketReleaseK[A]{down: k.down, outcome: bracketOutcome[A]{signal: signalStop}}).Start(Unit{})
}
func (k *bracketUseK[R, A]) Register(i *Interrupt) {}

type bracketOutcome[A any] struct {
	signal untilSignal
	v      A
	err    error
}

// bracketReleaseK observes release's own completion and then replays use's
// original outcome downstream — release failing silently overrides nothing;
// per the bracket contract, use's outcome always wins once release has run.
type bracketReleaseK[A any] struct {
	down    Continuation[A]
	outcome bracketOutcome[A]
}

func (k *bracketReleaseK[A]) Start(Unit)          { k.replay() }
func (k *bracketReleaseK[A]) Fail(error)          { k.replay() }
func (k *bracketReleaseK[A]) Stop()               { k.replay() }
func (k *bracketReleaseK[A]) Register(*Interrupt) {}

func (k *bracketReleaseK[A]) replay() {
	switch k.outcome.signal {
	case signalFail:
		k.down.Fail(k.outcome.err)
	case signalStop:
		k.down.Stop()
	default:
		k.down.Start(k.outcome.v)
	}
}

// OnError runs cleanup only when body fails, then re-raises the original
// error after cleanup completes.
func OnError[A any](body Composable[Unit, A], cleanup func(error) Composable[Unit, Unit]) Composable[Unit, A] {
	return func(down Continuation[A]) Continuation[Unit] {
		return body(&onErrorK[A]{down: down, cleanup: cleanup})
	}
}

type onErrorK[A any] struct {
	down    Continuation[A]
	cleanup func(error) Composable[Unit, Unit]
}

func (k *onErrorK[A]) Start(v A) { k.down.Start(v) }
func (k *onErrorK[A]) Fail(err error) {
	k.cleanup(err)(&onErrorCleanupK[A]{down: k.down, err: err}).Start(Unit{})
}
func (k *onErrorK[A]) Stop()                 { k.down.Stop() }
func (k *onErrorK[A]) Register(i *Interrupt) { k.down.Register(i) }

type onErrorCleanupK[A any] struct {
	down Continuation[A]
	err  error
}

func (k *onErrorCleanupK[A]) Start(Unit)          { k.down.Fail(k.err) }
func (k *onErrorCleanupK[A]) Fail(err error)      { k.down.Fail(err) }
func (k *onErrorCleanupK[A]) Stop()               { k.down.Stop() }
func (k *onErrorCleanupK[A]) Register(*Interrupt) {}
