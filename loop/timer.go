// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loop

import (
	"sync/atomic"
	"time"

	"code.hybscloud.com/aeon"
)

// Timer is a leaf composable: on Start, it delivers Start(Unit{}) downstream
// once d has elapsed on l's clock, and is canceled by the Interrupt
// registered via Register — interrupting before the deadline yields Stop,
// never Fail.
func Timer(l *Loop, d time.Duration) aeon.Composable[aeon.Unit, aeon.Unit] {
	return func(down aeon.Continuation[aeon.Unit]) aeon.Continuation[aeon.Unit] {
		return &timerK{l: l, d: d, down: down}
	}
}

type timerK struct {
	l      *Loop
	d      time.Duration
	down   aeon.Continuation[aeon.Unit]
	handle *TimerHandle
	i      *aeon.Interrupt
	done   atomic.Bool
}

func (k *timerK) Start(aeon.Unit) {
	if k.i != nil && k.i.Triggered() {
		k.down.Stop()
		return
	}
	// done arbitrates between the deadline callback and the interrupt
	// handler: whichever flips it delivers the terminal signal, so a trigger
	// racing an already-fired timer cannot produce a second one.
	k.handle = k.l.AfterFunc(k.d, func() {
		if k.done.CompareAndSwap(false, true) {
			k.down.Start(aeon.Unit{})
		}
	})
	if k.i != nil {
		k.i.Install(func() {
			k.handle.Cancel()
			if k.done.CompareAndSwap(false, true) {
				k.down.Stop()
			}
		})
	}
}
func (k *timerK) Fail(err error) { k.down.Fail(err) }
func (k *timerK) Stop() {
	if k.handle != nil {
		k.handle.Cancel()
	}
	k.down.Stop()
}
func (k *timerK) Register(i *aeon.Interrupt) { k.i = i }
