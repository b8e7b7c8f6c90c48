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

	"github.com/viafanasyev/stack-machine/vm"
)

// disasmLine is one emitted instruction line together with the number of
// bytes it consumed, matching the disassembly buffer's entry type (§4.7).
type disasmLine struct {
	text          string
	bytesConsumed int
}

// disasmBuffer accumulates disassembled lines and the labels synthesised
// for jump targets, so they can be inserted at the right position on
// flush (§3 "Disassembly buffer", §4.7).
type disasmBuffer struct {
	lines      []disasmLine
	labelAt    map[int32]string
	labelOrder []int32
}

func newDisasmBuffer() *disasmBuffer {
	return &disasmBuffer{labelAt: make(map[int32]string)}
}

func (b *disasmBuffer) emit(text string, bytesConsumed int) {
	b.lines = append(b.lines, disasmLine{text: text, bytesConsumed: bytesConsumed})
}

// labelByOffset returns the label synthesised for offset, creating
// "L<n>" on first reference. Labels are named in the order they are first
// referenced, not in the order their target offset occurs in the binary
// (§9 "deterministic names require ordering labels by first-reference
// offset").
func (b *disasmBuffer) labelByOffset(offset int32) string {
	if name, ok := b.labelAt[offset]; ok {
		return name
	}
	name := fmt.Sprintf("L%d", len(b.labelOrder))
	b.labelAt[offset] = name
	b.labelOrder = append(b.labelOrder, offset)
	return name
}

// flush writes every accumulated line to w, prefixing each with a
// "label:" line whenever the cumulative byte offset matches a
// synthesised label. Any label whose offset was never reached by the
// scan is reported as INVALID_LABEL (§4.7). The first write failure
// aborts the flush and is reported as INVALID_FILE, the same sentinel
// the rest of the package uses for output-side I/O failures.
func (b *disasmBuffer) flush(w io.Writer) error {
	pending := make(map[int32]string, len(b.labelAt))
	for off, name := range b.labelAt {
		pending[off] = name
	}

	var offset int32
	for _, l := range b.lines {
		if name, ok := pending[offset]; ok {
			if _, err := fmt.Fprintf(w, "%s:\n", name); err != nil {
				return errf(vm.CodeInvalidFile, "writing disassembly: %v", err)
			}
			delete(pending, offset)
		}
		if _, err := fmt.Fprintln(w, l.text); err != nil {
			return errf(vm.CodeInvalidFile, "writing disassembly: %v", err)
		}
		offset += int32(l.bytesConsumed)
	}

	for off := range pending {
		return errf(vm.CodeInvalidLabel, "label at offset %d past end of program", off)
	}
	return nil
}
