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

// Package ngi holds the little-endian binary codec shared by package vm
// and package asm for the program image's opcode/operand bytes.
package ngi

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// PutFloat64 writes the little-endian IEEE-754 binary64 encoding of v into the first 8 bytes of dst.
func PutFloat64(dst []byte, v float64) {
	binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
}

// Float64 decodes a little-endian IEEE-754 binary64 from the first 8 bytes of src.
func Float64(src []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(src))
}

// PutInt32 writes the little-endian two's-complement encoding of v into the first 4 bytes of dst.
func PutInt32(dst []byte, v int32) {
	binary.LittleEndian.PutUint32(dst, uint32(v))
}

// Int32 decodes a little-endian signed 32 bit integer from the first 4 bytes of src.
func Int32(src []byte) int32 {
	return int32(binary.LittleEndian.Uint32(src))
}

// ErrShortRead is the message the interpreter's fetch helpers put into the
// *vm.MachineError they return when the image runs out of bytes while
// fetching an opcode or an operand. Only its text is included; the error
// value itself is not wrapped.
var ErrShortRead = errors.New("short read while decoding operand")
