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
	"github.com/pkg/errors"

	"github.com/viafanasyev/stack-machine/vm"
)

// errf builds a *vm.MachineError carrying one of the §3/§7 sentinel codes,
// the same error type the interpreter uses, so the three entry points
// (§6) can map assembler, disassembler and interpreter failures through
// one code path.
func errf(code byte, format string, args ...interface{}) *vm.MachineError {
	return &vm.MachineError{Code: code, Err: errors.Errorf(format, args...)}
}
