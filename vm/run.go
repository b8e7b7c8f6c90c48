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

package vm

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"unicode"

	"github.com/pkg/errors"

	"github.com/viafanasyev/stack-machine/internal/ngi"
	"github.com/viafanasyev/stack-machine/internal/stack"
)

// epsilon is the tolerance used by the comparison jumps (§3, §4.4). JMPL
// and JMPLE therefore differ only at the boundary - an artifact of the
// source this was ported from, preserved deliberately rather than fixed.
const epsilon = 1e-9

// Halted reports whether the machine reached HLT. Once true, further
// calls to Step are undefined.
func (i *Instance) Halted() bool {
	return i.halted
}

func (i *Instance) fetchByte() (byte, error) {
	img := i.image.Bytes()
	if i.PC < 0 || int(i.PC) >= len(img) {
		return 0, errf(CodeInvalidOperation, "pc %d: %s", i.PC, ngi.ErrShortRead)
	}
	b := img[i.PC]
	i.PC++
	return b, nil
}

func (i *Instance) fetchBytes(n int) ([]byte, error) {
	img := i.image.Bytes()
	if i.PC < 0 || int(i.PC)+n > len(img) {
		return nil, errf(CodeInvalidOperation, "pc %d: %s", i.PC, ngi.ErrShortRead)
	}
	b := img[i.PC : int(i.PC)+n]
	i.PC += int32(n)
	return b, nil
}

// Step fetches, decodes and executes exactly one instruction, per §4.4's
// processNextOperation. It returns the base operation executed and
// whether it was HLT. err is one of the §3 error sentinels (wrapped in a
// *MachineError) on any failure, in which case the machine is left in a
// faulted state and must not be stepped again.
func (i *Instance) Step() (op Op, halted bool, err error) {
	pcAtFetch := i.PC
	full, err := i.fetchByte()
	if err != nil {
		return 0, false, i.fault(pcAtFetch, full, err)
	}

	base, reg, ram, kind, ok := Decode(full)
	if !ok {
		return 0, false, i.fault(pcAtFetch, full, errf(CodeInvalidOperation, "illegal opcode 0x%02x at pc %d", full, pcAtFetch))
	}

	var (
		regIdx   int
		imm      float64
		offset   int32
		hasRegOp bool
		hasImmOp bool
	)
	switch kind {
	case OperandRegister:
		b, err := i.fetchByte()
		if err != nil {
			return base, false, i.fault(pcAtFetch, full, err)
		}
		if int(b) >= RegisterCount {
			return base, false, i.fault(pcAtFetch, full, errf(CodeInvalidRegister, "register index %d out of range", b))
		}
		regIdx = int(b)
		hasRegOp = true
	case OperandImmediate:
		b, err := i.fetchBytes(8)
		if err != nil {
			return base, false, i.fault(pcAtFetch, full, err)
		}
		imm = ngi.Float64(b)
		if math.IsInf(imm, 0) || math.IsNaN(imm) {
			return base, false, i.fault(pcAtFetch, full, errf(CodeInvalidOperation, "non-finite immediate operand at pc %d", pcAtFetch))
		}
		hasImmOp = true
	case OperandJump:
		b, err := i.fetchBytes(4)
		if err != nil {
			return base, false, i.fault(pcAtFetch, full, err)
		}
		offset = ngi.Int32(b)
	}

	if err := i.dispatch(base, reg, ram, regIdx, imm, offset, hasRegOp, hasImmOp); err != nil {
		return base, false, i.fault(pcAtFetch, full, err)
	}

	if base == OpHLT {
		i.halted = true
		return base, true, nil
	}
	return base, false, nil
}

func (i *Instance) fault(pc int32, opcode byte, err error) error {
	i.log.Fault(int(pc), opcode, i.data.Size(), i.calls.Size(), err)
	return err
}

func underflow(err error) error {
	if errors.Is(err, stack.ErrUnderflow) {
		return errf(CodeStackUnderflow, "stack underflow")
	}
	return err
}

func (i *Instance) popData() (float64, error) {
	v, err := i.data.Pop()
	return v, underflow(err)
}

func (i *Instance) popData2() (lhs, rhs float64, err error) {
	rhs, err = i.popData()
	if err != nil {
		return 0, 0, err
	}
	lhs, err = i.popData()
	if err != nil {
		return 0, 0, err
	}
	return lhs, rhs, nil
}

func (i *Instance) ramIndex(reg bool, regIdx int, imm float64) (int, error) {
	if reg {
		return int(math.Round(i.regs[regIdx])), nil
	}
	return int(imm), nil
}

func (i *Instance) dispatch(base Op, reg, ram bool, regIdx int, imm float64, offset int32, hasRegOp, hasImmOp bool) error {
	switch base {
	case OpHLT:
		return nil

	case OpIN:
		v, err := i.readDouble()
		if err != nil {
			return err
		}
		i.data.Push(v)
		return nil

	case OpOUT:
		v, err := i.popData()
		if err != nil {
			return err
		}
		fmt.Fprintf(i.out, "%g\n", v)
		return nil

	case OpPOP:
		switch {
		case !hasRegOp && !hasImmOp:
			_, err := i.popData()
			return err
		case hasRegOp && !ram:
			v, err := i.popData()
			if err != nil {
				return err
			}
			i.regs[regIdx] = v
			return nil
		default:
			idx, err := i.ramIndex(hasRegOp, regIdx, imm)
			if err != nil {
				return err
			}
			v, err := i.popData()
			if err != nil {
				return err
			}
			return i.ram.Store(idx, v)
		}

	case OpPUSH:
		switch {
		case hasRegOp && !ram:
			i.data.Push(i.regs[regIdx])
			return nil
		case hasRegOp && ram:
			idx, err := i.ramIndex(true, regIdx, 0)
			if err != nil {
				return err
			}
			v, err := i.ram.Load(idx)
			if err != nil {
				return err
			}
			i.data.Push(v)
			return nil
		case !hasRegOp && ram:
			idx, err := i.ramIndex(false, 0, imm)
			if err != nil {
				return err
			}
			v, err := i.ram.Load(idx)
			if err != nil {
				return err
			}
			i.data.Push(v)
			return nil
		default:
			i.data.Push(imm)
			return nil
		}

	case OpADD:
		lhs, rhs, err := i.popData2()
		if err != nil {
			return err
		}
		i.data.Push(lhs + rhs)
		return nil
	case OpSUB:
		lhs, rhs, err := i.popData2()
		if err != nil {
			return err
		}
		i.data.Push(lhs - rhs)
		return nil
	case OpMUL:
		lhs, rhs, err := i.popData2()
		if err != nil {
			return err
		}
		i.data.Push(lhs * rhs)
		return nil
	case OpDIV:
		lhs, rhs, err := i.popData2()
		if err != nil {
			return err
		}
		i.data.Push(lhs / rhs)
		return nil
	case OpSQRT:
		v, err := i.popData()
		if err != nil {
			return err
		}
		i.data.Push(math.Sqrt(v))
		return nil
	case OpDUP:
		v, err := i.data.Top()
		if err != nil {
			return underflow(err)
		}
		i.data.Push(v)
		return nil

	case OpJMP:
		return i.jumpTo(offset)
	case OpJMPNE, OpJMPE, OpJMPL, OpJMPLE, OpJMPG, OpJMPGE:
		lhs, rhs, err := i.popData2()
		if err != nil {
			return err
		}
		if i.branchTaken(base, lhs, rhs) {
			return i.jumpTo(offset)
		}
		return nil

	case OpRET:
		target, err := i.calls.Pop()
		if err != nil {
			return underflow(err)
		}
		i.PC = target
		return nil
	case OpCALL:
		i.calls.Push(i.PC)
		return i.jumpTo(offset)

	default:
		return errf(CodeInvalidOperation, "unimplemented base operation 0x%02x", byte(base))
	}
}

func (i *Instance) branchTaken(base Op, lhs, rhs float64) bool {
	eq := math.Abs(lhs-rhs) < epsilon
	switch base {
	case OpJMPE:
		return eq
	case OpJMPNE:
		return !eq
	case OpJMPL:
		return lhs < rhs
	case OpJMPLE:
		return lhs < rhs || eq
	case OpJMPG:
		return lhs > rhs
	case OpJMPGE:
		return lhs > rhs || eq
	default:
		return false
	}
}

// jumpTo applies a jump offset per the §4.5 convention: offset is relative
// to the byte immediately after the offset field, which is exactly where
// i.PC already sits after decode.
func (i *Instance) jumpTo(offset int32) error {
	target := i.PC + offset
	if target < 0 || int(target) >= i.image.Len() {
		return errf(CodeInvalidOperation, "jump target %d out of bounds", target)
	}
	i.PC = target
	return nil
}

// readDouble implements the IN instruction: it reads one whitespace
// delimited decimal token from the input reader and parses it as a
// float64. A parse failure pushes NaN rather than faulting the machine -
// the behavior the source this was ported from exhibits, made explicit
// rather than left as an uninitialized read.
func (i *Instance) readDouble() (float64, error) {
	tok, err := readToken(i.in)
	if err != nil && tok == "" {
		return math.NaN(), nil
	}
	v, perr := parseFloat(tok)
	if perr != nil {
		return math.NaN(), nil
	}
	return v, nil
}

func readToken(r *bufio.Reader) (string, error) {
	for {
		c, _, err := r.ReadRune()
		if err != nil {
			return "", err
		}
		if !unicode.IsSpace(c) {
			r.UnreadRune()
			break
		}
	}
	var tok []rune
	for {
		c, _, err := r.ReadRune()
		if err != nil {
			if err == io.EOF {
				break
			}
			return string(tok), err
		}
		if unicode.IsSpace(c) {
			break
		}
		tok = append(tok, c)
	}
	return string(tok), nil
}

func parseFloat(s string) (float64, error) {
	var v float64
	n, err := fmt.Sscanf(s, "%g", &v)
	if err != nil || n != 1 {
		return 0, errors.Errorf("cannot parse %q as a double", s)
	}
	return v, nil
}

// Run steps the machine until it halts or faults.
func (i *Instance) Run() error {
	for {
		_, halted, err := i.Step()
		if err != nil {
			return err
		}
		i.insCount++
		if halted {
			return nil
		}
	}
}
