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

import "github.com/pkg/errors"

// MachineError pairs one of the sentinel byte codes from §3/§7 with a
// wrapped error carrying human-readable context. Two MachineErrors with
// the same Code compare equal under errors.Is, regardless of their
// message, which is how callers recover the historical exit-code sentinel
// without having to parse error text.
type MachineError struct {
	Code byte
	Err  error
}

func (e *MachineError) Error() string {
	if e.Err == nil {
		return errName(e.Code)
	}
	return e.Err.Error()
}

func (e *MachineError) Unwrap() error { return e.Err }

// Is implements the errors.Is matching protocol: two *MachineError values
// are considered equal when they carry the same sentinel Code.
func (e *MachineError) Is(target error) bool {
	t, ok := target.(*MachineError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func errName(code byte) string {
	switch code {
	case CodeInvalidOperation:
		return "invalid operation"
	case CodeInvalidRegister:
		return "invalid register"
	case CodeStackUnderflow:
		return "stack underflow"
	case CodeInvalidLabel:
		return "invalid label"
	case CodeInvalidFile:
		return "invalid file"
	case CodeInvalidRAMAddress:
		return "invalid RAM address"
	default:
		return "unknown error"
	}
}

// Sentinels for use with errors.Is; construct a specific instance with
// errf when context needs to be attached.
var (
	ErrInvalidOperation  = &MachineError{Code: CodeInvalidOperation}
	ErrInvalidRegister   = &MachineError{Code: CodeInvalidRegister}
	ErrStackUnderflow    = &MachineError{Code: CodeStackUnderflow}
	ErrInvalidLabel      = &MachineError{Code: CodeInvalidLabel}
	ErrInvalidFile       = &MachineError{Code: CodeInvalidFile}
	ErrInvalidRAMAddress = &MachineError{Code: CodeInvalidRAMAddress}
)

// errf builds a *MachineError carrying the given sentinel code and a
// formatted message.
func errf(code byte, format string, args ...interface{}) *MachineError {
	return &MachineError{Code: code, Err: errors.Errorf(format, args...)}
}

// Code extracts the sentinel byte code from err, for callers (the CLI
// entry points) that need to surface it as a process exit code. It
// returns CodeInvalidOperation for any non-nil error that isn't a
// *MachineError, and 0 for a nil error.
func Code(err error) byte {
	if err == nil {
		return 0
	}
	var me *MachineError
	if errors.As(err, &me) {
		return me.Code
	}
	return CodeInvalidOperation
}
