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

package asm

import (
	"fmt"
	"io"
	"math"

	"github.com/viafanasyev/stack-machine/internal/ngi"
	"github.com/viafanasyev/stack-machine/vm"
)

// Disassemble reconstructs assembly source from the binary program image
// read from r and writes it to w (§4.3). It is a single linear scan that
// feeds a disasmBuffer, which synthesises label names and inserts them at
// flush time.
func Disassemble(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	buf := newDisasmBuffer()
	var pc int32
	for int(pc) < len(data) {
		start := pc
		full := data[pc]
		pc++

		base, _, ram, kind, ok := vm.Decode(full)
		if !ok {
			return errf(vm.CodeInvalidOperation, "illegal opcode 0x%02x at offset %d", full, start)
		}
		text := base.String()

		switch kind {
		case vm.OperandNone:
			// nothing to append

		case vm.OperandRegister:
			if int(pc) >= len(data) {
				return errf(vm.CodeInvalidOperation, "truncated register operand at offset %d", start)
			}
			idx := data[pc]
			pc++
			name, ok := vm.RegisterName(int(idx))
			if !ok {
				return errf(vm.CodeInvalidRegister, "invalid register index %d at offset %d", idx, start)
			}
			text += " " + bracket(name, ram)

		case vm.OperandImmediate:
			if int(pc)+8 > len(data) {
				return errf(vm.CodeInvalidOperation, "truncated numeric operand at offset %d", start)
			}
			v := ngi.Float64(data[pc : pc+8])
			pc += 8
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errf(vm.CodeInvalidOperation, "non-finite operand at offset %d", start)
			}
			text += " " + bracket(fmt.Sprintf("%g", v), ram)

		case vm.OperandJump:
			if int(pc)+4 > len(data) {
				return errf(vm.CodeInvalidOperation, "truncated jump operand at offset %d", start)
			}
			off := ngi.Int32(data[pc : pc+4])
			pc += 4
			target := pc + off
			if target < 0 {
				return errf(vm.CodeInvalidLabel, "negative jump target at offset %d", start)
			}
			text += " " + buf.labelByOffset(target)
		}

		buf.emit(text, int(pc-start))
	}

	return buf.flush(w)
}

func bracket(s string, ram bool) string {
	if ram {
		return "[" + s + "]"
	}
	return s
}
