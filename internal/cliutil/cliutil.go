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

// Package cliutil holds the bits shared by the three thin entry points
// (assemble, disassemble, run) in cmd/: the §7 error-code-to-message
// table and the default output-path rule, so none of that logic is
// duplicated three times over.
package cliutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/viafanasyev/stack-machine/vm"
)

// ExitMessage returns the fixed human-readable message the CLI prints for
// a §3/§7 error sentinel code.
func ExitMessage(code byte) string {
	switch code {
	case vm.CodeInvalidOperation:
		return "invalid operation"
	case vm.CodeInvalidRegister:
		return "invalid register"
	case vm.CodeStackUnderflow:
		return "stack underflow"
	case vm.CodeInvalidLabel:
		return "invalid label"
	case vm.CodeInvalidFile:
		return "invalid file"
	case vm.CodeInvalidRAMAddress:
		return "invalid RAM address"
	case 0:
		return "success"
	default:
		return "unknown error"
	}
}

// DefaultOutputPath derives an output file name from input when the user
// didn't supply one explicitly: the input's extension, if any, is
// replaced with ext.
func DefaultOutputPath(input, ext string) string {
	base := input
	if i := strings.LastIndex(input, "."); i > strings.LastIndex(input, "/") {
		base = input[:i]
	}
	return base + ext
}

// ExitCode reports the process exit code for err (0 for nil, the §3
// sentinel byte otherwise) and prints the fixed per-class message to
// stderr when err is non-nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	code := vm.Code(err)
	fmt.Fprintf(os.Stderr, "%s: %v\n", ExitMessage(code), err)
	return int(code)
}
