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

package probemap

import "fmt"

// option provides an interface to do work on Map while it is being created.
type option[K comparable, V any] interface {
	apply(m *Map[K, V])
}

type hashOption[K comparable, V any] struct {
	hash func(key *K, seed uintptr) uintptr
}

func (op hashOption[K, V]) apply(m *Map[K, V]) {
	m.hash = op.hash
}

// WithHash is an option to specify the hash function to use for a
// Map[K,V]. The replacement must be deterministic, and keys that compare
// equal must hash equal.
func WithHash[K comparable, V any](hash func(key *K, seed uintptr) uintptr) option[K, V] {
	return hashOption[K, V]{hash}
}

type initialCapacityOption[K comparable, V any] struct {
	capacity int
}

func (op initialCapacityOption[K, V]) apply(m *Map[K, V]) {
	m.initialCapacity = op.capacity
}

// WithInitialCapacity is an option to specify the capacity a Map[K,V] is
// constructed with and the capacity Clear resets to. The capacity must be
// a power of two: probing relies on the power-of-two modulus for its
// full-coverage guarantee, so WithInitialCapacity panics on any other
// value rather than corrupting that invariant silently.
func WithInitialCapacity[K comparable, V any](capacity int) option[K, V] {
	if capacity < 1 || capacity&(capacity-1) != 0 {
		panic(fmt.Sprintf("probemap: initial capacity %d is not a power of two", capacity))
	}
	return initialCapacityOption[K, V]{capacity}
}

// Allocator specifies an interface for allocating and releasing the slot
// array backing a Map. The default allocator utilizes Go's builtin make()
// and allows the GC to reclaim memory.
//
// If the allocator is manually managing memory then Map.Close must be
// called in order to ensure the final table is released through Free.
type Allocator[K comparable, V any] interface {
	// Alloc should return a slice equivalent to make([]Slot[K,V], n),
	// zeroed so that every slot starts empty.
	Alloc(n int) []Slot[K, V]

	// Free can optionally release the memory associated with the supplied
	// slice that is guaranteed to have been allocated by Alloc.
	Free(v []Slot[K, V])
}

type defaultAllocator[K comparable, V any] struct{}

func (defaultAllocator[K, V]) Alloc(n int) []Slot[K, V] {
	return make([]Slot[K, V], n)
}

func (defaultAllocator[K, V]) Free(v []Slot[K, V]) {
}

type allocatorOption[K comparable, V any] struct {
	allocator Allocator[K, V]
}

func (op allocatorOption[K, V]) apply(m *Map[K, V]) {
	m.allocator = op.allocator
}

// WithAllocator is an option to specify the Allocator to use for a
// Map[K,V].
func WithAllocator[K comparable, V any](allocator Allocator[K, V]) option[K, V] {
	return allocatorOption[K, V]{allocator}
}
