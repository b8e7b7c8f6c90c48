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
	"time"

	"github.com/viafanasyev/stack-machine/internal/ngi"
)

// RAMSize is the number of addressable bytes in RAM.
const RAMSize = 1024

// ramLatency is the nominal per-access delay modelling a slow memory
// hierarchy (§3: "Each read and each write takes a deliberate 10 ms
// nominal latency").
const ramLatency = 10 * time.Millisecond

// RAM is a fixed-size byte-addressable memory storing 8-byte little-endian
// doubles. Every Load/Store pays a deliberate latency, overridable with
// SetDelay so tests don't pay tens of milliseconds per access.
type RAM struct {
	// mem is oversized by one cell so that a double starting at the last
	// legal index (RAMSize-1) never requires slicing past the backing
	// array, while the address-space bound exposed to callers is still
	// exactly RAMSize, per §3/§7.
	mem   [RAMSize + 8]byte
	delay func()
}

// NewRAM returns a zero-initialized RAM with the spec's nominal access
// latency.
func NewRAM() *RAM {
	return &RAM{delay: func() { time.Sleep(ramLatency) }}
}

// SetDelay overrides the per-access delay hook. Passing nil disables the
// delay entirely.
func (r *RAM) SetDelay(f func()) {
	r.delay = f
}

func checkRAMIndex(idx int) error {
	if idx < 0 || idx >= RAMSize {
		return errf(CodeInvalidRAMAddress, "RAM address %d out of range [0, %d)", idx, RAMSize)
	}
	return nil
}

// Load reads the double stored at byte offset idx.
func (r *RAM) Load(idx int) (float64, error) {
	if err := checkRAMIndex(idx); err != nil {
		return 0, err
	}
	if r.delay != nil {
		r.delay()
	}
	return ngi.Float64(r.mem[idx : idx+8]), nil
}

// Store writes v as a double at byte offset idx.
func (r *RAM) Store(idx int, v float64) error {
	if err := checkRAMIndex(idx); err != nil {
		return err
	}
	if r.delay != nil {
		r.delay()
	}
	ngi.PutFloat64(r.mem[idx:idx+8], v)
	return nil
}
