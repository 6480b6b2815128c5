// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scheduler

import (
	"time"

	"code.hybscloud.com/aeon"
)

// Reschedule hands a value off to sched before continuing downstream. sched
// and ctx are captured when the combinator is built, not when it runs.
// deferRun is forwarded to Submit unchanged (see [Scheduler.Submit]).
func Reschedule[A any](sched Scheduler, ctx *Context, deferRun bool) aeon.Composable[A, A] {
	return func(down aeon.Continuation[A]) aeon.Continuation[A] {
		return &rescheduleK[A]{down: down, sched: sched, ctx: ctx, deferRun: deferRun}
	}
}

type rescheduleK[A any] struct {
	down     aeon.Continuation[A]
	sched    Scheduler
	ctx      *Context
	deferRun bool
}

func (k *rescheduleK[A]) Start(v A) {
	k.sched.Submit(k.ctx, func() { k.down.Start(v) }, k.deferRun)
}
func (k *rescheduleK[A]) Fail(err error) {
	k.sched.Submit(k.ctx, func() { k.down.Fail(err) }, k.deferRun)
}
func (k *rescheduleK[A]) Stop() {
	k.sched.Submit(k.ctx, func() { k.down.Stop() }, k.deferRun)
}
func (k *rescheduleK[A]) Register(i *aeon.Interrupt) { k.down.Register(i) }

// RescheduleAfter delays delivery of Start/Fail/Stop by d before handing
// off to sched, using a plain time.AfterFunc — the scheduler package has no
// virtual clock of its own; code that needs a pauseable/advanceable clock
// for tests uses code.hybscloud.com/aeon/loop.Timer instead.
func RescheduleAfter[A any](sched Scheduler, ctx *Context, d time.Duration) aeon.Composable[A, A] {
	return func(down aeon.Continuation[A]) aeon.Continuation[A] {
		return &rescheduleAfterK[A]{down: down, sched: sched, ctx: ctx, d: d}
	}
}

type rescheduleAfterK[A any] struct {
	down  aeon.Continuation[A]
	sched Scheduler
	ctx   *Context
	d     time.Duration
}

func (k *rescheduleAfterK[A]) Start(v A) {
	time.AfterFunc(k.d, func() {
		k.sched.Submit(k.ctx, func() { k.down.Start(v) }, true)
	})
}
func (k *rescheduleAfterK[A]) Fail(err error) {
	time.AfterFunc(k.d, func() {
		k.sched.Submit(k.ctx, func() { k.down.Fail(err) }, true)
	})
}
func (k *rescheduleAfterK[A]) Stop() {
	time.AfterFunc(k.d, func() {
		k.sched.Submit(k.ctx, func() { k.down.Stop() }, true)
	})
}
func (k *rescheduleAfterK[A]) Register(i *aeon.Interrupt) { k.down.Register(i) }

// Schedulable pairs a scheduler with the context graphs built from it run
// on, so a component can hand out "run this on my worker" wrappers without
// carrying the pair around separately.
type Schedulable struct {
	sched Scheduler
	ctx   *Context
}

// NewSchedulable creates a Schedulable with a fresh context named name.
func NewSchedulable(sched Scheduler, name string) Schedulable {
	return Schedulable{sched: sched, ctx: NewContext(name, sched)}
}

func (s Schedulable) Scheduler() Scheduler { return s.sched }
func (s Schedulable) Context() *Context    { return s.ctx }

// Schedule wraps e so its input value is first rescheduled onto s's
// scheduler and context before e runs.
func Schedule[In, Out any](s Schedulable, e aeon.Composable[In, Out]) aeon.Composable[In, Out] {
	return aeon.Pipe(Reschedule[In](s.sched, s.ctx, false), e)
}
