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

import (
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// foldHash is the default hash function: it treats the key's raw
// fixed-width in-memory representation as a byte sequence and folds it
// with a multiply-and-add accumulator,
//
//	h = h*33 + b
//
// seeded at seed (0 for a freshly constructed Map). The multiplier 33 is
// the djb2 constant; the shape is an FNV-1a variant.
//
// This is sound only for key types whose equality is defined bit-for-bit
// over a fixed-size layout with no padding and no indirection, such as
// fixed-width integers. It is unsound for keys whose equality is
// content-based but whose representation is not a direct byte encoding of
// that content: a Go string is a pointer/length header, so two equal
// strings can hash unequally. Such key types must supply a content-aware
// hash via WithHash; see StringHash.
func foldHash[K comparable](key *K, seed uintptr) uintptr {
	p := unsafe.Pointer(key)
	h := seed
	for i := uintptr(0); i < unsafe.Sizeof(*key); i++ {
		h = h*33 + uintptr(*(*byte)(unsafe.Add(p, i)))
	}
	return h
}

// StringHash hashes a string key by content rather than by its
// pointer/length header, making string keys safe to use with Map:
//
//	m := New[string, int](WithHash[string, int](StringHash))
func StringHash(key *string, seed uintptr) uintptr {
	return uintptr(xxhash.Sum64String(*key)) ^ seed
}
