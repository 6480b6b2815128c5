// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aeon_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"code.hybscloud.com/aeon"
)

func TestTerminateSuccess(t *testing.T) {
	f, start := aeon.Terminate(aeon.Just(9))
	start.Start(aeon.Unit{})
	v, err := f.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 9 {
		t.Fatalf("got %d, want 9", v)
	}
}

func TestTerminateFail(t *testing.T) {
	f, start := aeon.Terminate(aeon.Raise[aeon.Unit, int](errBoom))
	start.Start(aeon.Unit{})
	_, err := f.Get()
	if !errors.Is(err, errBoom) {
		t.Fatalf("got %v, want %v", err, errBoom)
	}
}

func TestTerminateStop(t *testing.T) {
	c := func(down aeon.Continuation[int]) aeon.Continuation[aeon.Unit] {
		return &stoppingK{down: down}
	}
	f, start := aeon.Terminate[int](c)
	start.Start(aeon.Unit{})
	_, err := f.Get()
	if !errors.Is(err, aeon.ErrStopped) {
		t.Fatalf("got %v, want %v", err, aeon.ErrStopped)
	}
}

// interruptAwareK is a leaf that honors an Interrupt the way loop.Timer
// does: Stop if the interrupt already fired by the time Start runs.
type interruptAwareK struct {
	down aeon.Continuation[int]
	i    *aeon.Interrupt
}

func (k *interruptAwareK) Start(aeon.Unit) {
	if k.i != nil && k.i.Triggered() {
		k.down.Stop()
		return
	}
	k.down.Start(9)
}
func (k *interruptAwareK) Fail(err error)             { k.down.Fail(err) }
func (k *interruptAwareK) Stop()                      { k.down.Stop() }
func (k *interruptAwareK) Register(i *aeon.Interrupt) { k.i = i }

func TestTerminateReturnsRegisterableContinuation(t *testing.T) {
	c := func(down aeon.Continuation[int]) aeon.Continuation[aeon.Unit] {
		return &interruptAwareK{down: down}
	}
	f, start := aeon.Terminate[int](c)
	var i aeon.Interrupt
	start.Register(&i)
	i.Trigger()
	start.Start(aeon.Unit{})
	_, err := f.Get()
	if !errors.Is(err, aeon.ErrStopped) {
		t.Fatalf("got %v, want %v", err, aeon.ErrStopped)
	}
}

func TestFutureWaitContextTimesOut(t *testing.T) {
	f, _ := aeon.Terminate(aeon.Just(9))
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	_, err := f.WaitContext(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want %v", err, context.DeadlineExceeded)
	}
}

type stoppingK struct {
	down aeon.Continuation[int]
}

func (k *stoppingK) Start(aeon.Unit)          { k.down.Stop() }
func (k *stoppingK) Fail(error)               { k.down.Stop() }
func (k *stoppingK) Stop()                    { k.down.Stop() }
func (k *stoppingK) Register(*aeon.Interrupt) {}
