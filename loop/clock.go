// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loop

import (
	"sync"
	"time"
)

// Clock reports the current time for [Loop]'s timer heap. The default
// clock wraps time.Now; tests substitute a pauseable virtual clock so timer
// ordering can be exercised deterministically without sleeping.
type Clock interface {
	Now() time.Time
}

// realClock delegates to time.Now.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// VirtualClock is a pauseable, manually-advanced [Clock] for tests: while
// paused, Now changes only via Advance; while running, it also tracks
// wall-clock time. Pause/Resume toggle between the two.
type VirtualClock struct {
	mu      sync.Mutex
	current time.Time
	paused  bool
	base    time.Time
	realAt  time.Time
}

// NewVirtualClock creates a clock starting at start, initially running
// (tracking wall-clock elapsed time on top of start).
func NewVirtualClock(start time.Time) *VirtualClock {
	return &VirtualClock{current: start, base: start, realAt: time.Now()}
}

// Now returns the clock's current reading.
func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return c.current
	}
	return c.base.Add(time.Since(c.realAt))
}

// Pause freezes the clock at its current reading; subsequent Now calls
// return the same value until Resume or Advance.
func (c *VirtualClock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.current = c.base.Add(time.Since(c.realAt))
	c.paused = true
}

// Resume unfreezes the clock, resuming wall-clock tracking from its
// current reading.
func (c *VirtualClock) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.base = c.current
	c.realAt = time.Now()
	c.paused = false
}

// Advance moves the clock forward by d. Valid whether paused or running;
// while running, d is added on top of the wall-clock-tracked reading at
// the moment Advance is called.
func (c *VirtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		c.current = c.current.Add(d)
		return
	}
	c.base = c.base.Add(time.Since(c.realAt)).Add(d)
	c.realAt = time.Now()
}
