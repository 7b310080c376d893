package common

import "iter"

// Product yields every (a, b) with a from as and b from bs, row-major.
func Product[A, B any](as []A, bs []B) iter.Seq2[A, B] {
	return func(yield func(A, B) bool) {
		for _, a := range as {
			for _, b := range bs {
				if !yield(a, b) {
					return
				}
			}
		}
	}
}

// UniqueSquare yields every unordered pair (ts[i], ts[j]) with i < j exactly once.
func UniqueSquare[T any](ts []T) iter.Seq2[T, T] {
	return func(yield func(T, T) bool) {
		for i := range ts {
			for j := i + 1; j < len(ts); j++ {
				if !yield(ts[i], ts[j]) {
					return
				}
			}
		}
	}
}

// ProductIndex yields the index pairs of an n by m product, row-major.
func ProductIndex(n, m int) iter.Seq[[2]int] {
	return func(yield func([2]int) bool) {
		for i := 0; i < n; i++ {
			for j := 0; j < m; j++ {
				if !yield([2]int{i, j}) {
					return
				}
			}
		}
	}
}

// UniqueSquareIndex yields every index pair {i, j} with i < j < n.
func UniqueSquareIndex(n int) iter.Seq[[2]int] {
	return func(yield func([2]int) bool) {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if !yield([2]int{i, j}) {
					return
				}
			}
		}
	}
}
