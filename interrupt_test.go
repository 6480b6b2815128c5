// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aeon_test

import (
	"testing"

	"code.hybscloud.com/aeon"
)

func TestInterruptFiresOnInstallAfterTrigger(t *testing.T) {
	var i aeon.Interrupt
	i.Trigger()
	var fired bool
	already := i.Install(func() { fired = true })
	if !already {
		t.Fatal("Install should report already-triggered")
	}
	if !fired {
		t.Fatal("handler should fire synchronously from Install")
	}
}

func TestInterruptFiresOnTriggerAfterInstall(t *testing.T) {
	var i aeon.Interrupt
	var fired bool
	already := i.Install(func() { fired = true })
	if already {
		t.Fatal("Install should report not-yet-triggered")
	}
	i.Trigger()
	if !fired {
		t.Fatal("handler should fire from Trigger")
	}
}

func TestInterruptTriggerIdempotent(t *testing.T) {
	var i aeon.Interrupt
	var count int
	i.Install(func() { count++ })
	i.Trigger()
	i.Trigger()
	i.Trigger()
	if count != 1 {
		t.Fatalf("handler fired %d times, want 1", count)
	}
}

func TestInterruptHandlersFireInReverseInstallOrder(t *testing.T) {
	var i aeon.Interrupt
	var order []int
	i.Install(func() { order = append(order, 1) })
	i.Install(func() { order = append(order, 2) })
	i.Install(func() { order = append(order, 3) })
	i.Trigger()
	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Fatalf("handlers fired in order %v, want [3 2 1]", order)
	}
}

func TestInterruptTriggeredReportsState(t *testing.T) {
	var i aeon.Interrupt
	if i.Triggered() {
		t.Fatal("fresh interrupt should not be triggered")
	}
	i.Trigger()
	if !i.Triggered() {
		t.Fatal("interrupt should report triggered after Trigger")
	}
}
