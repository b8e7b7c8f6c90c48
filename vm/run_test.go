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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/viafanasyev/stack-machine/internal/ngi"
)

type asmBuilder struct {
	buf bytes.Buffer
}

func (b *asmBuilder) nullary(op Op) *asmBuilder {
	b.buf.WriteByte(Encode(op, false, false))
	return b
}

func (b *asmBuilder) reg(op Op, ram bool, n int) *asmBuilder {
	b.buf.WriteByte(Encode(op, true, ram))
	b.buf.WriteByte(byte(n))
	return b
}

func (b *asmBuilder) imm(op Op, ram bool, v float64) *asmBuilder {
	b.buf.WriteByte(Encode(op, false, ram))
	var tmp [8]byte
	ngi.PutFloat64(tmp[:], v)
	b.buf.Write(tmp[:])
	return b
}

func (b *asmBuilder) jump(op Op, offset int32) *asmBuilder {
	b.buf.WriteByte(Encode(op, false, false))
	var tmp [4]byte
	ngi.PutInt32(tmp[:], offset)
	b.buf.Write(tmp[:])
	return b
}

func (b *asmBuilder) bytes() []byte { return b.buf.Bytes() }

func runProgram(t *testing.T, prog []byte, in string) (string, error) {
	t.Helper()
	img, err := LoadBytes(prog)
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	var out bytes.Buffer
	m, err := New(img, WithInput(strings.NewReader(in)), WithOutput(&out), WithRAMDelay(nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	runErr := m.Run()
	return out.String(), runErr
}

func TestScenarioAdd(t *testing.T) {
	p := new(asmBuilder).imm(OpPUSH, false, 2).imm(OpPUSH, false, 3).nullary(OpADD).nullary(OpOUT).nullary(OpHLT).bytes()
	out, err := runProgram(t, p, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "5" {
		t.Fatalf("output = %q, want 5", out)
	}
}

func TestScenarioSqrt(t *testing.T) {
	p := new(asmBuilder).imm(OpPUSH, false, 9).nullary(OpSQRT).nullary(OpOUT).nullary(OpHLT).bytes()
	out, err := runProgram(t, p, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Fatalf("output = %q, want 3", out)
	}
}

func TestScenarioRegisterRoundTrip(t *testing.T) {
	p := new(asmBuilder).imm(OpPUSH, false, 1).reg(OpPOP, false, RegAX).reg(OpPUSH, false, RegAX).nullary(OpOUT).nullary(OpHLT).bytes()
	out, err := runProgram(t, p, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "1" {
		t.Fatalf("output = %q, want 1", out)
	}
}

func TestScenarioConditionalJump(t *testing.T) {
	b := new(asmBuilder)
	b.imm(OpPUSH, false, 5) // 0..8
	b.imm(OpPUSH, false, 5) // 9..17
	b.jump(OpJMPE, 14)      // 18..22, target 37 (eq:)
	b.imm(OpPUSH, false, 0) // 23..31
	b.jump(OpJMP, 9)        // 32..36, target 46 (end:)
	b.imm(OpPUSH, false, 1) // 37..45 (eq:)
	b.nullary(OpOUT)        // 46 (end:)
	b.nullary(OpHLT)        // 47
	out, err := runProgram(t, b.bytes(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "1" {
		t.Fatalf("output = %q, want 1", out)
	}
}

func TestScenarioRAM(t *testing.T) {
	b := new(asmBuilder)
	b.imm(OpPUSH, false, 0)
	b.imm(OpPOP, true, 10)
	b.imm(OpPUSH, false, 7)
	b.imm(OpPOP, true, 10)
	b.imm(OpPUSH, true, 10)
	b.nullary(OpOUT)
	b.nullary(OpHLT)
	out, err := runProgram(t, b.bytes(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "7" {
		t.Fatalf("output = %q, want 7", out)
	}
}

func TestScenarioCallReturn(t *testing.T) {
	b := new(asmBuilder)
	b.jump(OpCALL, 1) // 0..4, target 6 (sub:)
	b.nullary(OpHLT)  // 5
	b.imm(OpPUSH, false, 42) // 6..14 (sub:)
	b.nullary(OpOUT)         // 15
	b.nullary(OpRET)         // 16
	out, err := runProgram(t, b.bytes(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "42" {
		t.Fatalf("output = %q, want 42", out)
	}
}

func TestScenarioPopUnderflow(t *testing.T) {
	p := new(asmBuilder).nullary(OpPOP).nullary(OpHLT).bytes()
	_, err := runProgram(t, p, "")
	if !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("err = %v, want ErrStackUnderflow", err)
	}
}

func TestRunPastEndWithoutHLT(t *testing.T) {
	p := new(asmBuilder).imm(OpPUSH, false, 1).bytes()
	_, err := runProgram(t, p, "")
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("err = %v, want ErrInvalidOperation", err)
	}
}

func TestInvalidOpcodeByte(t *testing.T) {
	_, err := runProgram(t, []byte{0xFF}, "")
	if !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("err = %v, want ErrInvalidOperation", err)
	}
}

func TestInvalidRegisterIndex(t *testing.T) {
	p := []byte{Encode(OpPUSH, true, false), 4}
	_, err := runProgram(t, p, "")
	if !errors.Is(err, ErrInvalidRegister) {
		t.Fatalf("err = %v, want ErrInvalidRegister", err)
	}
}

func TestInvalidRAMAddress(t *testing.T) {
	b := new(asmBuilder).imm(OpPUSH, false, 1).imm(OpPOP, true, 1024).bytes()
	_, err := runProgram(t, b, "")
	if !errors.Is(err, ErrInvalidRAMAddress) {
		t.Fatalf("err = %v, want ErrInvalidRAMAddress", err)
	}
}

func TestDivByZeroIsNotAnError(t *testing.T) {
	p := new(asmBuilder).imm(OpPUSH, false, 1).imm(OpPUSH, false, 0).nullary(OpDIV).nullary(OpOUT).nullary(OpHLT).bytes()
	out, err := runProgram(t, p, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "+Inf" {
		t.Fatalf("output = %q, want +Inf", out)
	}
}
