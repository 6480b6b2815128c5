// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loop

import "sync/atomic"

// waiter is an intrusive lock-free list node posted to the loop from
// outside its own goroutine: each result-posting goroutine pushes one
// waiter instead of sending on a channel, so the loop drains an entire
// backlog in one pass without per-item channel overhead.
type waiter struct {
	fn   func()
	next atomic.Pointer[waiter]
}

// waiterStack is a Treiber-style lock-free LIFO: any number of goroutines
// push concurrently via CAS on head; only the loop goroutine ever pops, by
// swapping the whole stack out and reversing it into arrival order.
type waiterStack struct {
	head atomic.Pointer[waiter]
}

// push adds fn to the stack. Safe to call from any goroutine.
func (s *waiterStack) push(fn func()) {
	w := &waiter{fn: fn}
	for {
		old := s.head.Load()
		w.next.Store(old)
		if s.head.CompareAndSwap(old, w) {
			return
		}
	}
}

// drain atomically takes the entire current stack and returns its elements
// in the order they were pushed (FIFO relative to push, even though the
// underlying structure is a LIFO) so callbacks run in submission order.
func (s *waiterStack) drain() []func() {
	var head *waiter
	for {
		old := s.head.Load()
		if old == nil {
			return nil
		}
		if s.head.CompareAndSwap(old, nil) {
			head = old
			break
		}
	}
	var reversed []*waiter
	for n := head; n != nil; n = n.next.Load() {
		reversed = append(reversed, n)
	}
	fns := make([]func(), len(reversed))
	for i, n := range reversed {
		fns[len(reversed)-1-i] = n.fn
	}
	return fns
}
