// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loop

import "code.hybscloud.com/aeon/scheduler"

// Scheduler adapts a Loop to the scheduler.Scheduler interface: Submit
// borrows the context, pushes the callback onto the loop's waiter queue,
// and wakes the loop. The drain phase unblocks the context, marks it as
// dispatching while the callback runs, and releases the borrow — the
// borrow keeps the context alive for exactly as long as its waiter is
// enqueued.
type Scheduler struct {
	l *Loop
}

// NewScheduler returns a scheduler backed by l.
func NewScheduler(l *Loop) Scheduler {
	return Scheduler{l: l}
}

// Submit enqueues fn onto the loop under ctx. With deferRun false, fn runs
// inline when the loop is already dispatching ctx.
func (s Scheduler) Submit(ctx *scheduler.Context, fn func(), deferRun bool) {
	if ctx == nil {
		s.l.Submit(fn)
		return
	}
	if !deferRun && s.Continuable(ctx) {
		scheduler.RunOn(ctx, fn)
		return
	}
	ctx.Borrow()
	s.l.Submit(func() {
		ctx.Unblock()
		scheduler.RunOn(ctx, fn)
		ctx.Release()
	})
}

// Continuable reports whether the loop is currently dispatching ctx.
func (s Scheduler) Continuable(ctx *scheduler.Context) bool {
	return ctx != nil && ctx.Dispatching()
}

func (s Scheduler) Name() string { return "event-loop" }
