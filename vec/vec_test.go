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

package vec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPushGrowth(t *testing.T) {
	v := New[int]()
	require.EqualValues(t, 0, v.Len())
	require.EqualValues(t, 0, v.Cap())
	require.True(t, v.Empty())

	// 0 -> 8, then doubling.
	expected := map[int]int{1: 8, 9: 16, 17: 32, 33: 64}
	for i := 0; i < 64; i++ {
		v.Push(i * 2)
		if c, ok := expected[v.Len()]; ok {
			require.EqualValues(t, c, v.Cap())
		}
	}
	require.EqualValues(t, 64, v.Len())

	for i := 0; i < 64; i++ {
		require.EqualValues(t, i*2, v.Get(i))
	}
	require.EqualValues(t, 0, v.Front())
	require.EqualValues(t, 126, v.Back())
}

func TestAt(t *testing.T) {
	v := New[string]()
	v.Push("a")
	v.Push("b")

	x, ok := v.At(1)
	require.True(t, ok)
	require.Equal(t, "b", x)

	_, ok = v.At(2)
	require.False(t, ok)
	_, ok = v.At(-1)
	require.False(t, ok)
}

func TestSet(t *testing.T) {
	v := New[int]()
	v.Push(1)
	v.Push(2)
	v.Set(0, 10)
	require.EqualValues(t, 10, v.Get(0))
	require.EqualValues(t, 2, v.Get(1))
}

func TestReserve(t *testing.T) {
	v := New[int]()
	v.Push(7)
	v.Reserve(100)
	require.EqualValues(t, 1, v.Len())
	require.GreaterOrEqual(t, v.Cap(), 100)
	require.EqualValues(t, 7, v.Get(0))

	// Reserving less than the current capacity is a no-op.
	c := v.Cap()
	v.Reserve(10)
	require.EqualValues(t, c, v.Cap())
}

func TestResize(t *testing.T) {
	var dropped []int
	v := NewWithDrop[int](func(x int) {
		dropped = append(dropped, x)
	})

	v.Resize(4, 9)
	require.EqualValues(t, 4, v.Len())
	for i := 0; i < 4; i++ {
		require.EqualValues(t, 9, v.Get(i))
	}

	v.Set(2, 42)
	v.Set(3, 43)
	v.Resize(2, 0)
	require.EqualValues(t, 2, v.Len())
	require.Equal(t, []int{42, 43}, dropped)

	// Resizing to the current length changes nothing.
	v.Resize(2, 0)
	require.EqualValues(t, 2, v.Len())
	require.Equal(t, []int{42, 43}, dropped)
}

func TestClear(t *testing.T) {
	drops := 0
	v := NewWithDrop[int](func(int) { drops++ })
	for i := 0; i < 10; i++ {
		v.Push(i)
	}

	v.Clear()
	require.EqualValues(t, 0, v.Len())
	require.EqualValues(t, 0, v.Cap())
	require.EqualValues(t, 10, drops)

	// The vector is reusable after Clear.
	v.Push(1)
	require.EqualValues(t, 1, v.Len())
}

func TestClone(t *testing.T) {
	v := New[int]()
	for i := 0; i < 10; i++ {
		v.Push(i)
	}

	c := v.Clone()
	require.EqualValues(t, v.Len(), c.Len())

	// The clone is independent of the original.
	c.Set(0, 100)
	v.Push(10)
	require.EqualValues(t, 0, v.Get(0))
	require.EqualValues(t, 100, c.Get(0))
	require.EqualValues(t, 11, v.Len())
	require.EqualValues(t, 10, c.Len())
}

func TestTake(t *testing.T) {
	src := New[int]()
	for i := 0; i < 10; i++ {
		src.Push(i)
	}

	var dst Vec[int]
	dst.Take(src)
	require.EqualValues(t, 10, dst.Len())
	require.EqualValues(t, 4, dst.Get(4))

	// The source is empty, holds no storage, and remains usable.
	require.EqualValues(t, 0, src.Len())
	require.EqualValues(t, 0, src.Cap())
	src.Push(99)
	require.EqualValues(t, 1, src.Len())
	require.EqualValues(t, 99, src.Get(0))

	// Self-transfer is a no-op.
	dst.Take(&dst)
	require.EqualValues(t, 10, dst.Len())
}

func TestTakeDiscardsDestination(t *testing.T) {
	drops := 0
	dst := NewWithDrop[int](func(int) { drops++ })
	dst.Push(1)
	dst.Push(2)

	src := New[int]()
	src.Push(3)

	dst.Take(src)
	require.EqualValues(t, 2, drops)
	require.EqualValues(t, 1, dst.Len())
	require.EqualValues(t, 3, dst.Get(0))
}

func TestAll(t *testing.T) {
	v := New[int]()
	for i := 0; i < 20; i++ {
		v.Push(i * 3)
	}

	n := 0
	v.All(func(i, x int) bool {
		require.EqualValues(t, n, i)
		require.EqualValues(t, i*3, x)
		n++
		return true
	})
	require.EqualValues(t, 20, n)

	n = 0
	v.All(func(i, x int) bool {
		n++
		return n < 5
	})
	require.EqualValues(t, 5, n)
}

func BenchmarkPush(b *testing.B) {
	b.Run("impl=builtinSlice", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var s []int
			for j := 0; j < 1024; j++ {
				s = append(s, j)
			}
		}
	})
	b.Run("impl=vec", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var v Vec[int]
			for j := 0; j < 1024; j++ {
				v.Push(j)
			}
		}
	})
}
