package enumstate

import (
	"iter"
	"strconv"
)

// Successor returns the ordinal after i in a cycle of n states.
func Successor(i, n int) int {
	return (i + 1) % n
}

// Predecessor returns the ordinal before i in a cycle of n states.
func Predecessor(i, n int) int {
	return (i - 1 + n) % n
}

// Skip moves i forward by k in a cycle of n states. The last state wraps
// to the first, whatever k; from any other state, overshooting the last
// state stops on it. A negative k skips backward.
//
// i must be in [0, n).
func Skip(i, k, n int) int {
	if k < 0 {
		return SkipBackward(i, -k, n)
	}
	last := n - 1
	switch {
	case i == last:
		return 0
	case i+k > last:
		return last
	}
	return i + k
}

// SkipBackward is the mirror of Skip: leaving the first state wraps to the
// last; overshooting the first state stops on it.
func SkipBackward(i, k, n int) int {
	if k < 0 {
		return Skip(i, -k, n)
	}
	switch {
	case k == 0:
		return i
	case i >= k:
		return i - k
	case i == 0:
		return n - 1
	}
	return 0
}

// States returns the restartable sequence at(0), ..., at(n-1).
func States[T any](n int, at func(int) T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < n; i++ {
			if !yield(at(i)) {
				return
			}
		}
	}
}

// NameOf returns names[i], or typeName(i) when i is out of range.
func NameOf(typeName string, names []string, i int) string {
	if i < 0 || i >= len(names) {
		return typeName + "(" + strconv.Itoa(i) + ")"
	}
	return names[i]
}
