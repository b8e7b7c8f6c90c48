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
	"bufio"
	"bytes"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/viafanasyev/stack-machine/internal/ngi"
	"github.com/viafanasyev/stack-machine/vm"
)

// sourceLine is one non-blank line of assembly, with its mnemonic and
// operand already split out. Label lines carry isLabel=true and the label
// name (besides raw); their mnemonic and operand are empty.
type sourceLine struct {
	raw      string
	isLabel  bool
	label    string
	mnemonic string
	operand  string
}

func splitLines(r io.Reader) ([]sourceLine, error) {
	var lines []sourceLine
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if name, ok := labelDef(line); ok {
			lines = append(lines, sourceLine{raw: line, isLabel: true, label: name})
			continue
		}
		fields := strings.Fields(line)
		sl := sourceLine{raw: line, mnemonic: strings.ToUpper(fields[0])}
		if len(fields) > 1 {
			sl.operand = fields[1]
		}
		lines = append(lines, sl)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// classify derives the addressing flags for one instruction line and
// validates the combination through vm.Decode, the same table the
// interpreter and disassembler use (§9 "no actual subclassing is
// required" - one decode table, three consumers).
func classify(base vm.Op, operand string) (reg, ram bool, kind vm.OperandKind, err error) {
	if operand == "" {
		_, _, _, kind, ok := vm.Decode(vm.Encode(base, false, false))
		if !ok || kind.Size() > 0 {
			return false, false, 0, errf(vm.CodeInvalidOperation, "%s requires an operand", base)
		}
		return false, false, kind, nil
	}

	inner, isRAM, ok := stripBrackets(operand)
	if !ok {
		return false, false, 0, errf(vm.CodeInvalidOperation, "malformed operand %q", operand)
	}

	if base.IsJump() {
		if isRAM {
			return false, false, 0, errf(vm.CodeInvalidOperation, "%s operand cannot be RAM-indirect", base)
		}
		return false, false, vm.OperandJump, nil
	}

	if _, isReg := vm.RegisterNumber(inner); isReg {
		reg = true
	}
	ram = isRAM

	_, _, _, kind, ok2 := vm.Decode(vm.Encode(base, reg, ram))
	if !ok2 || kind.Size() == 0 {
		return false, false, 0, errf(vm.CodeInvalidOperation, "illegal operand %q for %s", operand, base)
	}
	return reg, ram, kind, nil
}

// instructionSize computes the total byte size (opcode + operand) of one
// instruction line, per the rules pass 2 uses to emit it (§4.2 pass 1).
func instructionSize(sl sourceLine) (int32, error) {
	base, ok := vm.OpByMnemonic(sl.mnemonic)
	if !ok {
		return 0, errf(vm.CodeInvalidOperation, "unknown mnemonic %q", sl.mnemonic)
	}
	_, _, kind, err := classify(base, sl.operand)
	if err != nil {
		return 0, err
	}
	return int32(1 + kind.Size()), nil
}

// assemblePass1 scans lines without emitting bytes, building the label
// table and validating each instruction's mnemonic and addressing mode.
// Immediate operand values are parsed and checked only in pass 2.
func assemblePass1(lines []sourceLine) (*labelTable, error) {
	labels := newLabelTable()
	var offset int32
	lastWasLabel := false
	for _, sl := range lines {
		if sl.isLabel {
			if err := labels.add(sl.label, offset); err != nil {
				return nil, err
			}
			lastWasLabel = true
			continue
		}
		lastWasLabel = false
		size, err := instructionSize(sl)
		if err != nil {
			return nil, err
		}
		offset += size
	}
	if lastWasLabel {
		return nil, errf(vm.CodeInvalidLabel, "dangling label at end of file")
	}
	return labels, nil
}

// assemblePass2 re-scans the same lines, emitting the binary image and
// patching jump/call operands using the label table pass 1 built.
func assemblePass2(lines []sourceLine, labels *labelTable) ([]byte, error) {
	var buf bytes.Buffer
	var offset int32
	for _, sl := range lines {
		if sl.isLabel {
			continue
		}
		base, ok := vm.OpByMnemonic(sl.mnemonic)
		if !ok {
			return nil, errf(vm.CodeInvalidOperation, "unknown mnemonic %q", sl.mnemonic)
		}
		reg, ram, kind, err := classify(base, sl.operand)
		if err != nil {
			return nil, err
		}

		buf.WriteByte(vm.Encode(base, reg, ram))
		opcodeOffset := offset
		offset++

		switch kind {
		case vm.OperandNone:
		case vm.OperandRegister:
			inner, _, _ := stripBrackets(sl.operand)
			n, _ := vm.RegisterNumber(inner)
			buf.WriteByte(byte(n))
			offset++
		case vm.OperandImmediate:
			inner, _, _ := stripBrackets(sl.operand)
			v, perr := strconv.ParseFloat(inner, 64)
			if perr != nil || math.IsInf(v, 0) || math.IsNaN(v) {
				return nil, errf(vm.CodeInvalidOperation, "invalid immediate operand %q", sl.operand)
			}
			var tmp [8]byte
			ngi.PutFloat64(tmp[:], v)
			buf.Write(tmp[:])
			offset += 8
		case vm.OperandJump:
			target, ok := labels.lookup(sl.operand)
			if !ok {
				return nil, errf(vm.CodeInvalidLabel, "undefined label %q", sl.operand)
			}
			pcAfterDecode := opcodeOffset + 1 + 4
			var tmp [4]byte
			ngi.PutInt32(tmp[:], target-pcAfterDecode)
			buf.Write(tmp[:])
			offset += 4
		}
	}
	return buf.Bytes(), nil
}

// Assemble translates the assembly source read from r into a binary
// program image written to w (§4.2). It runs the two passes in memory:
// the input is read into a line list once, pass 1 walks it to build the
// label table, and pass 2 walks it again to emit bytes, which is
// equivalent to the original's rewind-and-rescan without requiring r to
// be seekable.
func Assemble(r io.Reader, w io.Writer) error {
	lines, err := splitLines(r)
	if err != nil {
		return err
	}
	labels, err := assemblePass1(lines)
	if err != nil {
		return err
	}
	img, err := assemblePass2(lines, labels)
	if err != nil {
		return err
	}
	_, err = w.Write(img)
	return err
}
