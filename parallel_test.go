// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aeon_test

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"code.hybscloud.com/aeon"
)

func TestParallelRunsAllWorkers(t *testing.T) {
	var count atomic.Int64
	worker := aeon.Map(func(v int) aeon.Unit {
		count.Add(1)
		return aeon.Unit{}
	})
	getOK(t, aeon.Parallel(aeon.Iterate([]int{1, 2, 3, 4, 5}), worker))
	if count.Load() != 5 {
		t.Fatalf("count = %d, want 5", count.Load())
	}
}

func TestParallelPropagatesFirstError(t *testing.T) {
	worker := aeon.Then(func(v int) (aeon.Unit, aeon.Composable[aeon.Unit, aeon.Unit], error) {
		if v == 3 {
			return aeon.Unit{}, nil, errBoom
		}
		return aeon.Unit{}, nil, nil
	})
	f, start := aeon.Terminate(aeon.Parallel(aeon.Iterate([]int{1, 2, 3, 4}), worker))
	start.Start(aeon.Unit{})
	_, err := f.Get()
	if !errors.Is(err, errBoom) {
		t.Fatalf("got %v, want %v", err, errBoom)
	}
}

// interruptibleWorkerK is a worker leaf for element 0 that fails
// immediately, or for any other element blocks until either release closes
// (recording it as having run to completion) or its Interrupt fires, in
// which case it reports Stop instead — used to prove that Parallel/
// Concurrent actually interrupt outstanding workers on first failure
// rather than merely waiting for them to finish naturally.
type interruptibleWorkerK struct {
	down    aeon.Continuation[aeon.Unit]
	ran     *int32
	release <-chan struct{}
	i       *aeon.Interrupt
}

func (k *interruptibleWorkerK) Start(v int) {
	if v == 0 {
		k.down.Fail(errBoom)
		return
	}
	stopCh := make(chan struct{})
	if k.i != nil {
		k.i.Install(func() { close(stopCh) })
	}
	select {
	case <-k.release:
		atomic.AddInt32(k.ran, 1)
		k.down.Start(aeon.Unit{})
	case <-stopCh:
		k.down.Stop()
	}
}
func (k *interruptibleWorkerK) Fail(err error)             { k.down.Fail(err) }
func (k *interruptibleWorkerK) Stop()                      { k.down.Stop() }
func (k *interruptibleWorkerK) Register(i *aeon.Interrupt) { k.i = i }

func TestParallelInterruptsOutstandingWorkersOnFailure(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	var ran int32

	worker := func(down aeon.Continuation[aeon.Unit]) aeon.Continuation[int] {
		return &interruptibleWorkerK{down: down, ran: &ran, release: release}
	}

	c := aeon.Parallel(aeon.Iterate([]int{0, 1, 2}), worker)
	f, start := aeon.Terminate(c)
	start.Start(aeon.Unit{})
	_, err := f.Get()
	if !errors.Is(err, errBoom) {
		t.Fatalf("got %v, want %v", err, errBoom)
	}
	if atomic.LoadInt32(&ran) != 0 {
		t.Fatalf("ran = %d blocking workers to completion, want 0 (they should have been interrupted)", ran)
	}
}

func TestConcurrentInterruptsOutstandingWorkersOnFailure(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	var ran int32

	worker := func(down aeon.Continuation[aeon.Unit]) aeon.Continuation[int] {
		return &interruptibleWorkerK{down: down, ran: &ran, release: release}
	}

	c := aeon.Collect(aeon.Concurrent[aeon.Unit, int, aeon.Unit](aeon.Iterate([]int{0, 1, 2}), worker))
	f, start := aeon.Terminate(c)
	start.Start(aeon.Unit{})
	_, err := f.Get()
	if !errors.Is(err, errBoom) {
		t.Fatalf("got %v, want %v", err, errBoom)
	}
	if atomic.LoadInt32(&ran) != 0 {
		t.Fatalf("ran = %d blocking workers to completion, want 0 (they should have been interrupted)", ran)
	}
}

func TestConcurrentOrderedPreservesInputOrder(t *testing.T) {
	var mu sync.Mutex
	var calls []int
	worker := aeon.Map(func(v int) int {
		mu.Lock()
		calls = append(calls, v)
		mu.Unlock()
		return v * 10
	})
	c := aeon.Collect(aeon.ConcurrentOrdered(aeon.Iterate([]int{1, 2, 3, 4, 5}), worker))
	got := getOK(t, c)
	want := []int{10, 20, 30, 40, 50}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestConcurrentDeliversEveryElement(t *testing.T) {
	worker := aeon.Map(func(v int) int { return v * v })
	c := aeon.Collect(aeon.Concurrent(aeon.Iterate([]int{1, 2, 3, 4}), worker))
	got := getOK(t, c)
	sort.Ints(got)
	want := []int{1, 4, 9, 16}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
