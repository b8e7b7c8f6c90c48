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
	"io"
	"os"

	"github.com/viafanasyev/stack-machine/internal/diag"
	"github.com/viafanasyev/stack-machine/internal/stack"
)

// dataStack is the collaborator interface described in §6: push/pop/top/
// size over doubles. Both the plain stack.Stack[float64] and its
// integrity-checked stack.Guarded[float64] wrapper satisfy it, so Instance
// never has to know which one it was built with.
type dataStack interface {
	Push(float64)
	Pop() (float64, error)
	Top() (float64, error)
	Size() int
}

// callStack is the same contract, specialised to the 32 bit return
// addresses pushed by CALL and popped by RET.
type callStack interface {
	Push(int32)
	Pop() (int32, error)
	Top() (int32, error)
	Size() int
}

// Instance is one machine: program counter, data stack, call stack,
// register file, RAM and the loaded program image (§3 "Lifecycles"). It is
// built once per run via New and is not safe for concurrent use (§5).
type Instance struct {
	PC int32

	data  dataStack
	calls callStack
	regs  [RegisterCount]float64
	ram   *RAM
	image *Image

	in  *bufio.Reader
	out io.Writer
	log *diag.Logger

	insCount int64
	halted   bool
}

// Option configures an Instance at construction time, following the same
// functional-options shape the VM's ancestor used for its own Instance.
type Option func(*Instance) error

// WithInput sets the reader IN consumes decimal doubles from. The default
// is os.Stdin.
func WithInput(r io.Reader) Option {
	return func(i *Instance) error {
		i.in = bufio.NewReader(r)
		return nil
	}
}

// WithOutput sets the writer OUT prints to. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(i *Instance) error {
		i.out = w
		return nil
	}
}

// WithLogger attaches a diagnostic sink used to record fault context when
// an instruction fails. The default Instance has none (diag.New(nil), a
// silent no-op).
func WithLogger(l *diag.Logger) Option {
	return func(i *Instance) error {
		i.log = l
		return nil
	}
}

// WithGuardedStacks swaps in the integrity-checked stack implementation
// (§9 "Generic stack") for both the data stack and the call stack. This is
// a debug aid: it costs a hash recomputation on every push/pop.
func WithGuardedStacks() Option {
	return func(i *Instance) error {
		i.data = stack.NewGuarded[float64]()
		i.calls = stack.NewGuarded[int32]()
		return nil
	}
}

// WithRAMDelay overrides the RAM's per-access latency hook (§9 "RAM
// delay"). Tests typically pass a no-op so the scenarios in §8 don't each
// pay tens of milliseconds of simulated latency.
func WithRAMDelay(f func()) Option {
	return func(i *Instance) error {
		i.ram.SetDelay(f)
		return nil
	}
}

// New builds an Instance bound to img, with a zeroed register file and RAM
// and the program counter at 0, per the initial state in §4.4.
func New(img *Image, opts ...Option) (*Instance, error) {
	i := &Instance{
		PC:    0,
		data:  stack.New[float64](),
		calls: stack.New[int32](),
		ram:   NewRAM(),
		image: img,
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stdout,
		log:   diag.New(nil),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// Close releases the underlying program image's memory mapping, if any.
func (i *Instance) Close() error {
	if i.image != nil {
		return i.image.Close()
	}
	return nil
}

// Register returns the current value of register n (0..3).
func (i *Instance) Register(n int) (float64, error) {
	if n < 0 || n >= RegisterCount {
		return 0, errf(CodeInvalidRegister, "register index %d out of range", n)
	}
	return i.regs[n], nil
}

// DataDepth returns the number of values on the data stack.
func (i *Instance) DataDepth() int { return i.data.Size() }

// CallDepth returns the number of return addresses on the call stack.
func (i *Instance) CallDepth() int { return i.calls.Size() }

// InstructionCount returns the number of instructions Run has executed
// successfully so far. Instructions executed by calling Step directly are
// not counted.
func (i *Instance) InstructionCount() int64 { return i.insCount }

// RAM exposes the machine's RAM for inspection, e.g. by tests asserting
// §8's "RAM[idx] read after RAM[idx] write" invariant.
func (i *Instance) RAM() *RAM { return i.ram }
