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

// Package probemap provides Map, a hash table mapping keys to values with
// open addressing and quadratic probing. If you're not familiar with open
// addressing see https://en.wikipedia.org/wiki/Open_addressing.
//
// # Layout
//
// A Map owns a single contiguous array of slots whose length is always a
// power of two. Each slot carries a small occupancy tag alongside its
// key/value pair, so there is no auxiliary chaining structure and no
// per-entry allocation. Collisions are resolved by probing alternate slots
// in a triangular progression:
//
//	home = hash(key) & (capacity-1)
//	slot = (slot + attempt) & (capacity-1)   attempt = 1, 2, 3, ...
//
// which examines offsets home+0, home+1, home+3, home+6, ... (the
// triangular numbers). Because (i^2+i)/2 is a bijection in Z/(2^m), the
// sequence visits every slot exactly once before repeating as long as the
// capacity is a power of two. See
// https://en.wikipedia.org/wiki/Quadratic_probing. That full-coverage
// property is load-bearing: it is what guarantees a probe can never spin
// on a subset of slots and falsely conclude the table is full while empty
// slots remain.
//
// # Growth
//
// The table keeps its load factor at or below 3/4. Before an insertion
// that would exceed the ceiling, the map allocates a table of twice the
// capacity, re-inserts every occupied entry under the new mask, and
// releases the old table. Growth is inline and non-incremental, runs in
// O(old capacity), and is only ever triggered by insertion; the standard
// doubling argument makes insertion amortized O(1). There is no upper
// bound on capacity; growth continues until allocation fails, which the
// Go runtime treats as fatal.
//
// # Hashing
//
// By default keys are hashed by folding their raw in-memory bytes (see
// hash.go for the algorithm and its soundness boundary). The default is
// only correct for keys whose equality is bit-for-bit over a fixed-width
// layout, such as integers. Keys with indirection in their representation,
// strings most notably, need a content-aware hash supplied via WithHash;
// StringHash is provided for exactly that.
//
// # Ownership
//
// A Map exclusively owns its slot array. The only way to relocate that
// ownership is Take, which leaves the source tableless but reusable.
// Duplication is deliberately not offered: callers that want a copy must
// build one explicitly, so that deep copies never happen by accident.
package probemap

import (
	"fmt"
	"strings"
)

const debug = false

// defaultInitialCapacity is the table size a Map starts with, and the size
// Clear resets to, unless overridden by WithInitialCapacity.
const defaultInitialCapacity = 8

// slotState is the occupancy tag of a slot.
type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
	// slotRemoved marks a slot whose occupant was deleted. The tag is
	// reserved so that the slot layout will not change when deletion is
	// added, but no current operation produces it.
	//
	// TODO: when a Delete operation lands, findSlot must stop treating
	// removed slots as probe terminators for lookups while reusing them
	// for insertion.
	slotRemoved
)

// Slot is a single table slot: an occupancy tag and, when occupied, a
// key/value pair. Empty and removed slots hold no valid pair.
type Slot[K comparable, V any] struct {
	state slotState
	key   K
	value V
}

// Map is an unordered map from keys to values with Upsert, Put, Get,
// Clear, Take, and All operations. Collisions are resolved with open
// addressing and triangular probing over a single power-of-two sized slot
// array; see the package documentation for the algorithm.
//
// A Map is NOT goroutine-safe. The zero value for a Map is not usable;
// construct one with New or adopt another map's table with Take.
type Map[K comparable, V any] struct {
	// The hash function applied to keys of type K. Defaults to the raw
	// representation fold in hash.go.
	hash func(key *K, seed uintptr) uintptr
	seed uintptr
	// The allocator to use for the slot array.
	allocator Allocator[K, V]
	// initialCapacity is the capacity at construction and after Clear.
	// Always a power of two.
	initialCapacity int
	// slots is the table. len(slots) is the capacity and is always zero or
	// a power of two. A nil slots slice is the moved-from state; the next
	// insertion re-allocates at initialCapacity.
	slots []Slot[K, V]
	// used is the number of occupied slots.
	used int
}

// New constructs a Map with the configured initial capacity (8 unless
// overridden with WithInitialCapacity) allocated up front.
func New[K comparable, V any](options ...option[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		hash:            foldHash[K],
		allocator:       defaultAllocator[K, V]{},
		initialCapacity: defaultInitialCapacity,
	}
	for _, op := range options {
		op.apply(m)
	}
	m.slots = m.allocator.Alloc(m.initialCapacity)
	m.checkInvariants()
	return m
}

// Close releases the map's table back to its configured allocator. It is
// unnecessary to close a map using the default allocator. It is invalid to
// use a Map after it has been closed, though Close itself is idempotent.
func (m *Map[K, V]) Close() {
	if m.slots != nil {
		m.allocator.Free(m.slots)
		m.slots = nil
	}
	m.used = 0
}

// Upsert returns a pointer to the value stored for key, inserting a
// zero-valued entry if the key is not present. It acts as a lookup when
// the key exists and as an insertion when it does not; there is no
// separate insert-or-fail path. The returned pointer may be used to mutate
// the stored value and remains valid until the next mutation of the map.
func (m *Map[K, V]) Upsert(key K) *V {
	if 4*(m.used+1) > 3*len(m.slots) {
		m.grow()
	}
	i := m.findSlot(key)
	s := &m.slots[i]
	if s.state != slotOccupied {
		s.key = key
		s.state = slotOccupied
		m.used++
	}
	m.checkInvariants()
	return &s.value
}

// Put inserts an entry into the map, overwriting an existing value if an
// entry with the same key already exists.
func (m *Map[K, V]) Put(key K, value V) {
	*m.Upsert(key) = value
}

// Get retrieves the value from the map for the specified key, returning
// ok=false if the key is not present. Get never mutates the map and never
// allocates.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if m.used == 0 {
		return value, false
	}
	s := &m.slots[m.findSlot(key)]
	if s.state == slotOccupied && s.key == key {
		return s.value, true
	}
	return value, false
}

// Clear removes all entries, releasing the current table and reallocating
// at the configured initial capacity. It is equivalent to constructing a
// fresh map with the same configuration.
func (m *Map[K, V]) Clear() {
	if m.slots != nil {
		m.allocator.Free(m.slots)
	}
	m.slots = m.allocator.Alloc(m.initialCapacity)
	m.used = 0
	m.checkInvariants()
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.used
}

// Empty reports whether the map holds no entries.
func (m *Map[K, V]) Empty() bool {
	return m.used == 0
}

// All calls yield sequentially for each key and value present in the map,
// scanning slots in table order (which is neither insertion order nor
// stable across growth). If yield returns false, iteration stops. A fresh
// call always restarts from the first slot.
//
// The map must not be mutated during iteration; doing so is a
// precondition violation with undefined results, not a handled case.
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	for i := range m.slots {
		if m.slots[i].state == slotOccupied {
			if !yield(m.slots[i].key, m.slots[i].value) {
				return
			}
		}
	}
}

// Take transfers ownership of src's table to m, releasing any table m
// currently owns. The source's configuration (hash, allocator, initial
// capacity) moves along with the table so adopted keys remain locatable.
// Afterwards src holds no table (capacity 0, length 0) and behaves as a
// freshly constructed empty map for all subsequent operations; its next
// insertion re-allocates at its initial capacity.
func (m *Map[K, V]) Take(src *Map[K, V]) {
	if m == src {
		return
	}
	if m.slots != nil && m.allocator != nil {
		m.allocator.Free(m.slots)
	}
	m.hash = src.hash
	m.seed = src.seed
	m.allocator = src.allocator
	m.initialCapacity = src.initialCapacity
	m.slots = src.slots
	m.used = src.used
	src.slots = nil
	src.used = 0
	m.checkInvariants()
	src.checkInvariants()
}

// capacity returns the current size of the slot array.
func (m *Map[K, V]) capacity() int {
	return len(m.slots)
}

// findSlot returns the index of the slot where key resides, or of the
// first non-occupied slot in key's probe sequence if it does not. The
// caller distinguishes lookup from insertion by what it does with the
// returned index. The table must be non-empty.
func (m *Map[K, V]) findSlot(key K) uintptr {
	h := m.hash(&key, m.seed)
	seq := makeProbeSeq(h, uintptr(len(m.slots)-1))
	if debug {
		fmt.Printf("findSlot(%v): %s\n", key, seq)
	}

	for ; ; seq = seq.next() {
		s := &m.slots[seq.offset]
		if s.state != slotOccupied || s.key == key {
			return seq.offset
		}
	}
}

// grow moves every occupied entry into a table of twice the current
// capacity. A map left tableless by Take re-allocates at its initial
// capacity instead.
func (m *Map[K, V]) grow() {
	newCapacity := 2 * len(m.slots)
	if newCapacity < m.initialCapacity {
		newCapacity = m.initialCapacity
	}
	m.rehash(newCapacity)
}

// rehash allocates a table of newCapacity and re-inserts every occupied
// entry through the ordinary insertion path, recomputing each key's home
// slot under the new mask. The load-factor check in Upsert is vacuous
// during the transfer because the new table starts empty with twice the
// headroom. The old table is released afterwards.
func (m *Map[K, V]) rehash(newCapacity int) {
	old := m.slots
	m.slots = m.allocator.Alloc(newCapacity)
	m.used = 0

	if debug {
		fmt.Printf("rehash: capacity=%d->%d\n", len(old), newCapacity)
	}

	for i := range old {
		if old[i].state == slotOccupied {
			*m.Upsert(old[i].key) = old[i].value
		}
	}

	if old != nil {
		m.allocator.Free(old)
	}
	m.checkInvariants()
}

func (m *Map[K, V]) checkInvariants() {
	if invariants {
		if c := len(m.slots); c != 0 {
			if c&(c-1) != 0 {
				panic(fmt.Sprintf("invariant failed: capacity %d is not a power of two\n%s",
					c, m.debugString()))
			}
			if 4*m.used > 3*c {
				panic(fmt.Sprintf("invariant failed: %d entries exceed the 3/4 load ceiling at capacity %d\n%s",
					m.used, c, m.debugString()))
			}
		}

		// For every occupied slot, verify the key is reachable through Get.
		// Count the occupied slots.
		var used int
		for i := range m.slots {
			switch m.slots[i].state {
			case slotOccupied:
				used++
				if _, ok := m.Get(m.slots[i].key); !ok {
					panic(fmt.Sprintf("invariant failed: slot(%d): %v not found\n%s",
						i, m.slots[i].key, m.debugString()))
				}
			case slotRemoved:
				panic(fmt.Sprintf("invariant failed: slot(%d): removed tag is reserved and must not occur\n%s",
					i, m.debugString()))
			}
		}

		if used != m.used {
			panic(fmt.Sprintf("invariant failed: found %d occupied slots, but used count is %d\n%s",
				used, m.used, m.debugString()))
		}
	}
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d\n", len(m.slots), m.used)
	for i := range m.slots {
		switch s := &m.slots[i]; s.state {
		case slotEmpty:
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
		case slotRemoved:
			fmt.Fprintf(&buf, "  %4d: removed\n", i)
		default:
			home := m.hash(&s.key, m.seed) & uintptr(len(m.slots)-1)
			fmt.Fprintf(&buf, "  %4d: %v -> %v [home=%d]\n", i, s.key, s.value, home)
		}
	}
	return buf.String()
}

// probeSeq maintains the state for a probe sequence. The sequence is the
// triangular progression
//
//	p(i) := (hash + (i^2+i)/2) (mod mask+1)
//
// It turns out that this sequence visits every slot exactly once if the
// number of slots is a power of two, since (i^2+i)/2 is a bijection in
// Z/(2^m). See https://en.wikipedia.org/wiki/Quadratic_probing. Any
// substitute advancement formula must preserve that full-coverage property
// under the same modulus.
type probeSeq struct {
	mask   uintptr
	offset uintptr
	index  uintptr
}

func makeProbeSeq(hash, mask uintptr) probeSeq {
	return probeSeq{
		mask:   mask,
		offset: hash & mask,
		index:  0,
	}
}

func (s probeSeq) next() probeSeq {
	s.index++
	s.offset = (s.offset + s.index) & s.mask
	return s
}

func (s probeSeq) String() string {
	return fmt.Sprintf("mask=%d offset=%d index=%d", s.mask, s.offset, s.index)
}
