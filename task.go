// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aeon

import "context"

// Task type-erases a Composable[Unit, V] behind a single value, so graphs
// whose shape is only known at runtime (a slice of heterogeneous steps all
// producing the same value type, a handler table keyed by some runtime tag)
// can be stored and composed without naming every intermediate input type.
// A Task reifies a chain of Composable into one value of fixed shape,
// expressed the same way any other leaf is.
type Task[V any] struct {
	express func(down Continuation[V]) Continuation[Unit]
}

// NewTask wraps c as a Task, erasing c's concrete closure type.
func NewTask[V any](c Composable[Unit, V]) Task[V] {
	return Task[V]{express: c}
}

// Composable recovers a Composable[Unit, V] view of the task so it can be
// piped like any other leaf.
func (t Task[V]) Composable() Composable[Unit, V] {
	return t.express
}

// Then chains t with a Composable[V, any], returning a new erased Task[any]:
// sequencing two erased computations without un-erasing either.
func (t Task[V]) Then(next Composable[V, any]) Task[any] {
	return Task[any]{
		express: func(down Continuation[any]) Continuation[Unit] {
			return t.express(next(down))
		},
	}
}

// ThenTask is the typed counterpart of Then, used when the result type W is
// known statically and erasure is only needed for V.
func ThenTask[V, W any](t Task[V], next Composable[V, W]) Task[W] {
	return Task[W]{
		express: func(down Continuation[W]) Continuation[Unit] {
			return t.express(next(down))
		},
	}
}

// TaskFromValue erases Just(v) as a Task, the common case of a statically
// known terminal value entering a heterogeneous table of tasks.
func TaskFromValue[V any](v V) Task[V] {
	return NewTask(Just(v))
}

// Wait runs t to completion and blocks the calling goroutine until it
// finishes or ctx is done — the task-erased counterpart of Terminate plus
// Future.WaitContext, and the only synchronous-wait primitive Task exposes.
// Wait never imposes its own timeout; the caller's context does.
func (t Task[V]) Wait(ctx context.Context) (V, error) {
	f, k := Terminate(t.express)
	k.Start(Unit{})
	return f.WaitContext(ctx)
}
