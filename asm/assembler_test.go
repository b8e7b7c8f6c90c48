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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viafanasyev/stack-machine/vm"
)

const addProgram = `
PUSH 2
PUSH 3
ADD
OUT
HLT
`

const jumpProgram = `
PUSH 5
PUSH 5
JMPE eq
PUSH 0
JMP end
eq:
PUSH 1
end:
OUT
HLT
`

const callProgram = `
CALL sub
HLT
sub:
PUSH 42
OUT
RET
`

func TestAssembleAddProgram(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Assemble(strings.NewReader(addProgram), &out))
	assert.Equal(t, []byte{
		vm.Encode(vm.OpPUSH, false, false), 0, 0, 0, 0, 0, 0, 0, 0x40,
		vm.Encode(vm.OpPUSH, false, false), 0, 0, 0, 0, 0, 0, 0x08, 0x40,
		vm.Encode(vm.OpADD, false, false),
		vm.Encode(vm.OpOUT, false, false),
		vm.Encode(vm.OpHLT, false, false),
	}, out.Bytes())
}

func TestAssembleDuplicateLabel(t *testing.T) {
	src := "dup:\nHLT\ndup:\nHLT\n"
	var out bytes.Buffer
	err := Assemble(strings.NewReader(src), &out)
	require.Error(t, err)
	assert.Equal(t, vm.CodeInvalidLabel, vm.Code(err))
}

func TestAssembleDanglingLabel(t *testing.T) {
	src := "PUSH 1\nend:\n"
	var out bytes.Buffer
	err := Assemble(strings.NewReader(src), &out)
	require.Error(t, err)
	assert.Equal(t, vm.CodeInvalidLabel, vm.Code(err))
}

func TestAssembleUndefinedLabel(t *testing.T) {
	src := "JMP nowhere\nHLT\n"
	var out bytes.Buffer
	err := Assemble(strings.NewReader(src), &out)
	require.Error(t, err)
	assert.Equal(t, vm.CodeInvalidLabel, vm.Code(err))
}

func TestAssembleUnknownMnemonic(t *testing.T) {
	var out bytes.Buffer
	err := Assemble(strings.NewReader("FROB\n"), &out)
	require.Error(t, err)
	assert.Equal(t, vm.CodeInvalidOperation, vm.Code(err))
}

func TestDisassembleRoundTrip(t *testing.T) {
	for _, src := range []string{addProgram, jumpProgram, callProgram} {
		var bin bytes.Buffer
		require.NoError(t, Assemble(strings.NewReader(src), &bin))

		var text bytes.Buffer
		require.NoError(t, Disassemble(bytes.NewReader(bin.Bytes()), &text))

		var bin2 bytes.Buffer
		require.NoError(t, Assemble(strings.NewReader(text.String()), &bin2))

		assert.Equal(t, bin.Bytes(), bin2.Bytes(), "disassemble(assemble(P)) must reassemble to the same bytes")
	}
}

func TestJumpOffsetInvariant(t *testing.T) {
	var bin bytes.Buffer
	require.NoError(t, Assemble(strings.NewReader(jumpProgram), &bin))
	b := bin.Bytes()

	// Walk the binary looking for JMP/JMPE opcodes and verify that
	// pc_after_decode + offset lands exactly on another opcode byte
	// within the program (§4.5).
	var pc int32
	found := 0
	starts := map[int32]bool{}
	var targets []int32
	for int(pc) < len(b) {
		start := pc
		starts[start] = true
		full := b[pc]
		pc++
		base, _, _, kind, ok := vm.Decode(full)
		require.True(t, ok)
		switch kind {
		case vm.OperandRegister:
			pc++
		case vm.OperandImmediate:
			pc += 8
		case vm.OperandJump:
			off := int32(uint32(b[pc]) | uint32(b[pc+1])<<8 | uint32(b[pc+2])<<16 | uint32(b[pc+3])<<24)
			pc += 4
			target := pc + off
			assert.True(t, target >= 0 && int(target) < len(b), "jump at %d targets out-of-range offset %d", start, target)
			targets = append(targets, target)
			found++
		}
		_ = base
	}
	assert.Greater(t, found, 0, "expected at least one jump in jumpProgram")
	for _, target := range targets {
		assert.True(t, starts[target], "jump target %d is not an opcode byte", target)
	}
}

func TestDisassembleInvalidOpcode(t *testing.T) {
	var out bytes.Buffer
	err := Disassemble(bytes.NewReader([]byte{0xFF}), &out)
	require.Error(t, err)
	var me *vm.MachineError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, vm.CodeInvalidOperation, me.Code)
}
