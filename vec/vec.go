// Copyright 2025 The Probemap Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package vec provides Vec, a contiguous growable array with amortized
// O(1) Push via a doubling growth policy. It is the staging companion to
// the probemap hash table: callers use it to accumulate inputs before
// bulk-loading them into a map, though the two share no code.
//
// Like the map, a Vec treats its backing storage as an owned resource:
// Take transfers it, Clone duplicates it, and nothing duplicates it
// implicitly. An optional drop hook runs for elements that are discarded
// rather than transferred, for element types that own resources of their
// own.
package vec

// DropFunc is called once for each element discarded by Clear or by a
// shrinking Resize, before the element becomes unreachable.
type DropFunc[T any] func(T)

// Vec is a contiguous growable array. The zero value is an empty vector
// ready for use.
//
// A Vec is NOT goroutine-safe.
type Vec[T any] struct {
	elems []T
	drop  DropFunc[T]
}

// New constructs an empty Vec.
func New[T any]() *Vec[T] {
	return &Vec[T]{}
}

// NewWithDrop constructs an empty Vec whose discarded elements are passed
// to drop.
func NewWithDrop[T any](drop DropFunc[T]) *Vec[T] {
	return &Vec[T]{drop: drop}
}

// Len returns the number of elements.
func (v *Vec[T]) Len() int {
	return len(v.elems)
}

// Cap returns the current capacity.
func (v *Vec[T]) Cap() int {
	return cap(v.elems)
}

// Empty reports whether the vector holds no elements.
func (v *Vec[T]) Empty() bool {
	return len(v.elems) == 0
}

// Push appends x, growing the capacity from 0 to 8 and doubling it
// thereafter.
func (v *Vec[T]) Push(x T) {
	if len(v.elems) == cap(v.elems) {
		n := 2 * cap(v.elems)
		if n == 0 {
			n = 8
		}
		v.Reserve(n)
	}
	v.elems = append(v.elems, x)
}

// Reserve grows the capacity to at least n. It never shrinks and never
// changes Len.
func (v *Vec[T]) Reserve(n int) {
	if n <= cap(v.elems) {
		return
	}
	elems := make([]T, len(v.elems), n)
	copy(elems, v.elems)
	v.elems = elems
}

// Resize sets the length to n. New elements are initialized to fill;
// surplus elements are discarded through the drop hook.
func (v *Vec[T]) Resize(n int, fill T) {
	switch {
	case n < len(v.elems):
		v.discard(v.elems[n:])
		v.elems = v.elems[:n]
	case n > len(v.elems):
		v.Reserve(n)
		for len(v.elems) < n {
			v.elems = append(v.elems, fill)
		}
	}
}

// Get returns the i'th element. It panics if i is out of range.
func (v *Vec[T]) Get(i int) T {
	return v.elems[i]
}

// Set replaces the i'th element. It panics if i is out of range.
func (v *Vec[T]) Set(i int, x T) {
	v.elems[i] = x
}

// At returns the i'th element, with ok=false instead of a panic when i is
// out of range.
func (v *Vec[T]) At(i int) (x T, ok bool) {
	if i < 0 || i >= len(v.elems) {
		return x, false
	}
	return v.elems[i], true
}

// Front returns the first element. It panics if the vector is empty.
func (v *Vec[T]) Front() T {
	return v.elems[0]
}

// Back returns the last element. It panics if the vector is empty.
func (v *Vec[T]) Back() T {
	return v.elems[len(v.elems)-1]
}

// Data returns the underlying storage as a slice of length Len. The slice
// aliases the vector and is invalidated by any growth.
func (v *Vec[T]) Data() []T {
	return v.elems
}

// Clear discards all elements and releases the backing storage.
func (v *Vec[T]) Clear() {
	v.discard(v.elems)
	v.elems = nil
}

// All calls yield sequentially for each index and element. If yield
// returns false, iteration stops.
func (v *Vec[T]) All(yield func(i int, x T) bool) {
	for i := range v.elems {
		if !yield(i, v.elems[i]) {
			return
		}
	}
}

// Clone returns a deep copy. Duplication is deliberately a distinct
// operation; assignment of a Vec value or pointer never copies the
// elements.
func (v *Vec[T]) Clone() *Vec[T] {
	c := &Vec[T]{drop: v.drop}
	if len(v.elems) > 0 {
		c.elems = make([]T, len(v.elems))
		copy(c.elems, v.elems)
	}
	return c
}

// Take transfers ownership of src's storage to v, discarding any elements
// v currently holds. Afterwards src is empty with zero capacity and
// remains usable.
func (v *Vec[T]) Take(src *Vec[T]) {
	if v == src {
		return
	}
	v.discard(v.elems)
	v.elems = src.elems
	v.drop = src.drop
	src.elems = nil
}

// discard runs the drop hook over s and zeroes it so discarded elements
// are neither dropped twice nor kept reachable by the backing array.
func (v *Vec[T]) discard(s []T) {
	var zero T
	for i := range s {
		if v.drop != nil {
			v.drop(s[i])
		}
		s[i] = zero
	}
}
