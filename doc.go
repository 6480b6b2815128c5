// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package aeon provides composable asynchronous computation: a directed
// graph of continuations whose edges carry values, errors, or cancellation,
// executed on pluggable schedulers.
//
// # Core Abstraction
//
// A [Composable] describes a computation of declared input and output type.
// Expressing a composable binds it to a downstream [Continuation] and
// returns the upstream continuation that drives it:
//
//	type Composable[In, Out any] func(down Continuation[Out]) Continuation[In]
//
// Composables chain the way pipeline stages do: [Pipe] composes
// Composable[In, Mid] with Composable[Mid, Out] into Composable[In, Out],
// the Go realization of the "A >> B" operator.
//
// # Signal Protocol
//
// A [Continuation] receives exactly one terminal signal: Start(v), Fail(err),
// or Stop(). Streams use [StreamContinuation] instead, which delivers zero or
// more Body(v) signals strictly in order, terminated by exactly one of
// Ended(), Fail(err), or Stop().
//
// # Cancellation
//
// [Interrupt] is a one-shot cancellation token threaded through Register
// before any signal fires. Triggering before work begins yields Stop();
// triggering after observable work has begun yields exactly one terminal
// signal, chosen by the continuation that owns the in-flight operation.
//
// # Combinators
//
// [Just], [Raise], [Then], [Map], [If], [NewCatch], [TypeCheck], [Repeat],
// [Until] compose single-shot computations. [Iterate], [Loop], [Foreach],
// [Collect], [Reduce], [StreamForEach], [MapStream] compose streams.
// [Parallel], [Concurrent], [ConcurrentOrdered] fan a stream out to worker
// eventuals and back. [Bracket] and [OnError] scope resource lifetimes to a
// computation's outcome.
//
// # Schedulers and the Event Loop
//
// Package [code.hybscloud.com/aeon/scheduler] provides the scheduler
// abstraction (inline execution, a pinned static thread pool) and
// [code.hybscloud.com/aeon/scheduler.Reschedule] for explicit handover.
// Package [code.hybscloud.com/aeon/loop] provides the single-threaded
// reactor (timers, a virtual clock, a lock-free waiter queue) that lets
// leaves such as Timer participate without blocking a scheduler thread.
//
// # External Adaptors
//
// [code.hybscloud.com/aeon/transport/httpfx] and
// [code.hybscloud.com/aeon/transport/tcpfx] provide leaf composables for
// HTTP transfers and TCP sockets. Neither the core package nor the
// scheduler/loop packages depend on their internals.
//
// # Task Erasure and Terminals
//
// [Task] type-erases a composable of a declared value type behind a single
// closure; it is the unit of dynamic composition
// when a graph's shape is only known at runtime. [Terminate] converts a
// composable into a [Future] plus the continuation that starts it — the
// only synchronous-wait primitive in the library, intended for tests and
// top-level glue, not for use inside a running graph.
package aeon
