// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aeon

import "errors"

// If runs then when cond(a) is true, else runs els, both re-entering on the
// same upstream value a. The branch is chosen when the value arrives, not
// when the combinator is composed.
func If[A, B any](cond func(A) bool, then, els Composable[A, B]) Composable[A, B] {
	return func(down Continuation[B]) Continuation[A] {
		return &ifK[A, B]{down: down, cond: cond, then: then, els: els}
	}
}

type ifK[A, B any] struct {
	down Continuation[B]
	cond func(A) bool
	then Composable[A, B]
	els  Composable[A, B]
}

func (k *ifK[A, B]) Start(a A) {
	if k.cond(a) {
		k.then(k.down).Start(a)
		return
	}
	k.els(k.down).Start(a)
}
func (k *ifK[A, B]) Fail(err error)        { k.down.Fail(err) }
func (k *ifK[A, B]) Stop()                 { k.down.Stop() }
func (k *ifK[A, B]) Register(i *Interrupt) { k.down.Register(i) }

// catchCase is one typed arm of a Catch chain: matches if errors.As succeeds
// against target, and if so, produces a replacement composable via handle.
type catchCase[A any] struct {
	matches func(err error) (any, bool)
	handle  func(matched any) Composable[Unit, A]
}

// Catch inspects a Fail signal and, if a registered typed handler matches,
// splices in a recovery composable instead of propagating the failure.
// Arms are tried in registration order; the first match wins.
type Catch[A any] struct {
	cases []catchCase[A]
	all   func(err error) Composable[Unit, A]
}

// NewCatch starts an empty Catch chain for a stream/continuation of value
// type A.
func NewCatch[A any]() *Catch[A] {
	return &Catch[A]{}
}

// Raised registers a handler for failures matching E via errors.As, where E
// is the concrete error type as it travels through Fail — a pointer type for
// errors with pointer receivers. Returns the chain so calls compose:
// Raised(Raised(NewCatch[int](), h1), h2).
func Raised[E error, A any](c *Catch[A], handle func(E) Composable[Unit, A]) *Catch[A] {
	c.cases = append(c.cases, catchCase[A]{
		matches: func(err error) (any, bool) {
			var target E
			if errors.As(err, &target) {
				return target, true
			}
			return nil, false
		},
		handle: func(matched any) Composable[Unit, A] {
			return handle(matched.(E))
		},
	})
	return c
}

// All registers a fallback invoked when no typed arm matches. A chain holds
// one All handler; calling All again replaces the earlier one.
func (c *Catch[A]) All(handle func(err error) Composable[Unit, A]) *Catch[A] {
	c.all = handle
	return c
}

// Build turns the chain into a composable: on Fail, the first matching
// arm's composable is expressed and started; unmatched failures fall
// through to All if registered, otherwise propagate unchanged.
func (c *Catch[A]) Build() Composable[A, A] {
	return func(down Continuation[A]) Continuation[A] {
		return &catchK[A]{down: down, chain: c}
	}
}

type catchK[A any] struct {
	down  Continuation[A]
	chain *Catch[A]
}

func (k *catchK[A]) Start(a A) { k.down.Start(a) }

func (k *catchK[A]) Fail(err error) {
	for _, c := range k.chain.cases {
		if matched, ok := c.matches(err); ok {
			c.handle(matched)(k.down).Start(Unit{})
			return
		}
	}
	if k.chain.all != nil {
		k.chain.all(err)(k.down).Start(Unit{})
		return
	}
	k.down.Fail(err)
}
func (k *catchK[A]) Stop()                 { k.down.Stop() }
func (k *catchK[A]) Register(i *Interrupt) { k.down.Register(i) }
