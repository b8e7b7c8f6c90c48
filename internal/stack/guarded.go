// This file is part of stack-machine - https://github.com/viafanasyev/stack-machine
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

package stack

import (
	"fmt"
	"hash/fnv"
)

// Guarded wraps a Stack with the integrity check the original project's
// STACK_SECURITY_LEVEL>=3 build performs: a hash of the stack's contents
// recomputed on every mutation and stored. The stored hash is compared
// only when Verify is called; Push, Pop and Top do not check it. It trades the original's canary guards (which only make
// sense against raw buffer overruns in C) for the hash check alone, since
// Go slices can't be corrupted by a stray write the way a C array can.
//
// Guarded is a debug-only aid: production code should use Stack directly.
type Guarded[T any] struct {
	s    Stack[T]
	hash uint64
}

// NewGuarded returns an empty guarded stack.
func NewGuarded[T any]() *Guarded[T] {
	g := &Guarded[T]{}
	g.hash = g.checksum()
	return g
}

func (g *Guarded[T]) checksum() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%v", g.s.data)
	return h.Sum64()
}

// Verify reports whether the stack's contents match the last recorded
// checksum. A mismatch means something outside of Push/Pop mutated the
// backing slice.
func (g *Guarded[T]) Verify() bool {
	return g.hash == g.checksum()
}

func (g *Guarded[T]) Push(x T) {
	g.s.Push(x)
	g.hash = g.checksum()
}

func (g *Guarded[T]) Pop() (T, error) {
	v, err := g.s.Pop()
	if err == nil {
		g.hash = g.checksum()
	}
	return v, err
}

func (g *Guarded[T]) Top() (T, error) {
	return g.s.Top()
}

func (g *Guarded[T]) Size() int {
	return g.s.Size()
}
