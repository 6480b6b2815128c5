// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package aeon_test

import (
	"reflect"
	"testing"

	"code.hybscloud.com/aeon"
)

func TestIterateCollect(t *testing.T) {
	c := aeon.Collect(aeon.Iterate([]int{1, 2, 3}))
	got := getOK(t, c)
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("got %v, want [1 2 3]", got)
	}
}

func TestMapStream(t *testing.T) {
	s := aeon.MapStream(aeon.Iterate([]int{1, 2, 3}), func(v int) int { return v * v })
	got := getOK(t, aeon.Collect(s))
	if !reflect.DeepEqual(got, []int{1, 4, 9}) {
		t.Fatalf("got %v, want [1 4 9]", got)
	}
}

func TestForeach(t *testing.T) {
	var sum int
	c := aeon.Foreach(aeon.Iterate([]int{1, 2, 3, 4}), func(v int) { sum += v })
	getOK(t, c)
	if sum != 10 {
		t.Fatalf("sum = %d, want 10", sum)
	}
}

func TestLoopDrivesStreamSideEffectsOnly(t *testing.T) {
	var seen []int
	s := aeon.MapStream(aeon.Iterate([]int{1, 2, 3}), func(v int) int {
		seen = append(seen, v)
		return v
	})
	getOK(t, aeon.Loop(s))
	if !reflect.DeepEqual(seen, []int{1, 2, 3}) {
		t.Fatalf("seen = %v, want [1 2 3]", seen)
	}
}

func TestReduce(t *testing.T) {
	c := aeon.Reduce(aeon.Iterate([]int{1, 2, 3, 4}), 0, func(acc, v int) (int, bool) { return acc + v, true })
	if got := getOK(t, c); got != 10 {
		t.Fatalf("got %d, want 10", got)
	}
}

func TestReduceHaltsEarly(t *testing.T) {
	var seen []int
	c := aeon.Reduce(aeon.Iterate([]int{1, 2, 3, 4, 5}), 0, func(acc, v int) (int, bool) {
		seen = append(seen, v)
		return acc + v, v < 3
	})
	if got := getOK(t, c); got != 6 {
		t.Fatalf("got %d, want 6", got)
	}
	if !reflect.DeepEqual(seen, []int{1, 2, 3}) {
		t.Fatalf("seen = %v, want [1 2 3]", seen)
	}
}

func TestStreamForEachFlattensSubStreams(t *testing.T) {
	s := aeon.StreamForEach(aeon.Iterate([]int{0, 1}), func(int) aeon.Stream[aeon.Unit, int] {
		return aeon.Iterate([]int{0, 1})
	})
	got := getOK(t, aeon.Collect(s))
	if !reflect.DeepEqual(got, []int{0, 1, 0, 1}) {
		t.Fatalf("got %v, want [0 1 0 1]", got)
	}
}

func TestStreamForEachThreeLevels(t *testing.T) {
	s := aeon.StreamForEach(aeon.Iterate([]int{0, 1}), func(int) aeon.Stream[aeon.Unit, int] {
		return aeon.StreamForEach(aeon.Iterate([]int{0, 1}), func(int) aeon.Stream[aeon.Unit, int] {
			return aeon.Iterate([]int{0, 1})
		})
	})
	got := getOK(t, aeon.Collect(s))
	want := []int{0, 1, 0, 1, 0, 1, 0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStreamForEachSumsIndexes(t *testing.T) {
	s := aeon.StreamForEach(aeon.Iterate([]int{0, 1, 2}), func(x int) aeon.Stream[aeon.Unit, int] {
		return aeon.MapStream(aeon.Iterate([]int{1, 2}), func(y int) int { return x + y })
	})
	got := getOK(t, aeon.Collect(s))
	want := []int{1, 2, 2, 3, 3, 4}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCollectEmptyStream(t *testing.T) {
	got := getOK(t, aeon.Collect(aeon.Iterate[int](nil)))
	if len(got) != 0 {
		t.Fatalf("got %v, want empty", got)
	}
}
