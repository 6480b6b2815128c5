// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aeon_test

import (
	"errors"
	"fmt"
	"testing"

	"code.hybscloud.com/aeon"
)

type notFoundError struct{ key string }

func (e *notFoundError) Error() string { return fmt.Sprintf("not found: %s", e.key) }

func TestCatchRecoversTypedError(t *testing.T) {
	chain := aeon.Raised(aeon.NewCatch[string](), func(e *notFoundError) aeon.Composable[aeon.Unit, string] {
		return aeon.Just("default:" + e.key)
	})
	c := aeon.Pipe(aeon.Raise[aeon.Unit, string](&notFoundError{key: "x"}), chain.Build())
	if got := getOK(t, c); got != "default:x" {
		t.Fatalf("got %q, want %q", got, "default:x")
	}
}

func TestCatchRecoversMidPipeline(t *testing.T) {
	chain := aeon.Raised(aeon.NewCatch[int](), func(e *notFoundError) aeon.Composable[aeon.Unit, int] {
		return aeon.Just(100)
	})
	c := aeon.Pipe3(
		aeon.Just(1),
		aeon.Raise[int, int](&notFoundError{key: "m"}),
		chain.Build(),
	)
	if got := getOK(t, c); got != 100 {
		t.Fatalf("got %d, want 100", got)
	}
}

func TestCatchPassesThroughUnmatchedError(t *testing.T) {
	chain := aeon.Raised(aeon.NewCatch[string](), func(e *notFoundError) aeon.Composable[aeon.Unit, string] {
		return aeon.Just("default")
	})
	c := aeon.Pipe(aeon.Raise[aeon.Unit, string](errBoom), chain.Build())
	f, start := aeon.Terminate(c)
	start.Start(aeon.Unit{})
	_, err := f.Get()
	if !errors.Is(err, errBoom) {
		t.Fatalf("got %v, want %v", err, errBoom)
	}
}

func TestCatchAllFallback(t *testing.T) {
	chain := aeon.NewCatch[string]().All(func(err error) aeon.Composable[aeon.Unit, string] {
		return aeon.Just("recovered: " + err.Error())
	})
	c := aeon.Pipe(aeon.Raise[aeon.Unit, string](errBoom), chain.Build())
	want := "recovered: " + errBoom.Error()
	if got := getOK(t, c); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCatchDoesNotInterceptSuccess(t *testing.T) {
	chain := aeon.NewCatch[string]().All(func(err error) aeon.Composable[aeon.Unit, string] {
		return aeon.Just("should not run")
	})
	c := aeon.Pipe(aeon.Just("ok"), chain.Build())
	if got := getOK(t, c); got != "ok" {
		t.Fatalf("got %q, want %q", got, "ok")
	}
}
