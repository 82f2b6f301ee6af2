package enumstate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSkip(t *testing.T) {
	const n = 10
	var got []int
	i := 0
	for k := 1; k <= 5; k++ {
		for range 5 {
			i = Skip(i, k, n)
			got = append(got, i)
		}
	}
	want := []int{
		1, 2, 3, 4, 5,
		7, 9, 0, 2, 4,
		7, 9, 0, 3, 6,
		9, 0, 4, 8, 9,
		0, 5, 9, 0, 5,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Skip sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestSkipBackward(t *testing.T) {
	const n = 10
	var got []int
	i := n - 1
	for k := 1; k <= 5; k++ {
		for range 5 {
			i = SkipBackward(i, k, n)
			got = append(got, i)
		}
	}
	want := []int{
		8, 7, 6, 5, 4,
		2, 0, 9, 7, 5,
		2, 0, 9, 6, 3,
		0, 9, 5, 1, 0,
		9, 4, 0, 9, 4,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SkipBackward sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestSkipRangeStaysInBounds(t *testing.T) {
	const n = 10
	fwd, back := 0, n-1
	for k := range 1000 {
		fwd = Skip(fwd, k, n)
		back = SkipBackward(back, k, n)
		if fwd < 0 || fwd >= n || back < 0 || back >= n {
			t.Fatalf("k=%d: out of range fwd=%d back=%d", k, fwd, back)
		}
	}
}

func TestSkipNegative(t *testing.T) {
	if got := Skip(5, -2, 10); got != 3 {
		t.Errorf("Skip(5, -2) = %d, want 3", got)
	}
	if got := SkipBackward(5, -2, 10); got != 7 {
		t.Errorf("SkipBackward(5, -2) = %d, want 7", got)
	}
	if got := Skip(4, 0, 10); got != 4 {
		t.Errorf("Skip(4, 0) = %d, want 4", got)
	}
}

func TestSkipZero(t *testing.T) {
	tests := []struct {
		name       string
		i, n       int
		fwd, back  int
	}{
		{name: "first", i: 0, n: 4, fwd: 0, back: 0},
		{name: "middle", i: 2, n: 4, fwd: 2, back: 2},
		{name: "last wraps", i: 3, n: 4, fwd: 0, back: 3},
		{name: "single", i: 0, n: 1, fwd: 0, back: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Skip(tt.i, 0, tt.n); got != tt.fwd {
				t.Errorf("Skip(%d, 0) = %d, want %d", tt.i, got, tt.fwd)
			}
			if got := SkipBackward(tt.i, 0, tt.n); got != tt.back {
				t.Errorf("SkipBackward(%d, 0) = %d, want %d", tt.i, got, tt.back)
			}
		})
	}
}

func TestSuccessorPredecessorClosure(t *testing.T) {
	for n := 1; n <= 7; n++ {
		for start := 0; start < n; start++ {
			i, j := start, start
			for range n {
				i = Successor(i, n)
				j = Predecessor(j, n)
			}
			if i != start || j != start {
				t.Errorf("n=%d start=%d: after %d steps got succ=%d pred=%d", n, start, n, i, j)
			}
			if Skip(start, 1, n) != Successor(start, n) && n > 1 {
				t.Errorf("n=%d: Skip(%d, 1) != Successor", n, start)
			}
			if SkipBackward(start, 1, n) != Predecessor(start, n) {
				t.Errorf("n=%d: SkipBackward(%d, 1) != Predecessor", n, start)
			}
		}
	}
}

func TestStates(t *testing.T) {
	seq := States(4, func(i int) int { return i * i })
	var first, second []int
	for v := range seq {
		first = append(first, v)
	}
	for v := range seq {
		second = append(second, v)
		if v == 1 {
			break
		}
	}
	if diff := cmp.Diff([]int{0, 1, 4, 9}, first); diff != "" {
		t.Errorf("States mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1}, second); diff != "" {
		t.Errorf("States restart/early stop mismatch (-want +got):\n%s", diff)
	}
}

func TestNameOf(t *testing.T) {
	names := []string{"A", "B"}
	if got := NameOf("Letters", names, 1); got != "B" {
		t.Errorf("NameOf(1) = %q", got)
	}
	if got := NameOf("Letters", names, 7); got != "Letters(7)" {
		t.Errorf("NameOf(7) = %q", got)
	}
}
