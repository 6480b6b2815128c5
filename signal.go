// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aeon

import "errors"

// Unit is the empty value, used as the input type of leaf composables that
// need no upstream value (they are started with Unit{}).
type Unit struct{}

// Callback is a fixed-size type-erased one-shot invocable. Go closures
// already erase size and capture, so this is an alias of func() documenting
// intent at call sites rather than a hand-rolled vtable.
type Callback = func()

// ErrStopped is the terminal error observed by a [Future] whose graph ended
// in Stop() rather than Start(v) or Fail(err). Stop() itself never carries
// an error; ErrStopped exists only at the boundary where a result must be
// reported as a single (value, error) pair.
var ErrStopped = errors.New("aeon: computation stopped")

// fatalf reports a contract violation: an invariant breach that cannot be
// recovered from, such as a second terminal signal reaching an
// already-terminated continuation. Extracted as a noinline function so
// callers stay inlinable.
//
//go:noinline
func fatalf(msg string) {
	panic("aeon: " + msg)
}

// Continuation is the running instance of a composable bound to a
// downstream sink. Exactly one of Start, Fail, or Stop is ever delivered,
// and at most once. Register, if called, happens before any of the three.
type Continuation[A any] interface {
	// Start delivers the successful result and completes the continuation.
	Start(v A)

	// Fail propagates or transforms a failure and completes the continuation.
	Fail(err error)

	// Stop propagates cooperative cancellation and completes the continuation.
	Stop()

	// Register installs the interrupt this continuation (and anything it
	// owns) should observe. Called at most once, before any other signal.
	Register(i *Interrupt)
}

// StreamContinuation is the downstream sink for a stream-producing
// composable. Body is delivered zero or more times, strictly in sequence;
// exactly one of Ended, Fail, or Stop follows the last Body.
type StreamContinuation[A any] interface {
	// Body delivers one element. Must not overlap another Body on the same
	// stream instance.
	Body(v A)

	// Ended signals that no further elements will be produced.
	Ended()

	// Fail propagates a failure, terminating the stream.
	Fail(err error)

	// Stop propagates cancellation, terminating the stream.
	Stop()

	// Register installs the interrupt, as in [Continuation.Register].
	Register(i *Interrupt)
}

// StreamUpstream is what a stream-consuming combinator (a loop terminator)
// drives: the ordinary continuation protocol for its own input, plus Next
// to pull the next element from the stream above it.
type StreamUpstream[In any] interface {
	Continuation[In]

	// Next requests the next Body/Ended/Fail/Stop signal from upstream.
	// Must not be called again until the previous request has been
	// satisfied.
	Next()
}
