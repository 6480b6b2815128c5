// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package loop

import "sync"

var (
	defaultMu   sync.Mutex
	defaultLoop *Loop
)

// ConstructDefault builds the process-wide default Loop and starts its Run
// goroutine. Calling it again while a default already exists is a no-op.
func ConstructDefault() *Loop {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLoop != nil {
		return defaultLoop
	}
	defaultLoop = New()
	go defaultLoop.Run()
	return defaultLoop
}

// Default returns the process-wide default Loop. The default is never
// constructed lazily — teardown must be deterministic — so calling Default
// before ConstructDefault is a contract violation and panics.
func Default() *Loop {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLoop == nil {
		panic("loop: Default called before ConstructDefault")
	}
	return defaultLoop
}

// HasDefault reports whether the default Loop has been constructed, without
// constructing it.
func HasDefault() bool {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLoop != nil
}

// DestructDefault closes and discards the process-wide default Loop, if
// any. A later ConstructDefault call builds a fresh one; until then,
// Default panics.
func DestructDefault() {
	defaultMu.Lock()
	l := defaultLoop
	defaultLoop = nil
	defaultMu.Unlock()
	if l != nil {
		l.Close()
	}
}
