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

// Package diag is a minimal, explicitly-passed replacement for the original
// project's process-wide debug log file (see logger.h in the project's
// original sources). Rather than a global sink opened on demand, callers
// that want an instruction trace or a crash dump construct a Logger around
// whichever io.Writer they have (a file, os.Stderr, a bytes.Buffer in
// tests) and pass it down explicitly.
package diag

import (
	"fmt"
	"io"
)

// Logger writes diagnostic lines to an explicit sink. The zero Logger
// discards everything, so a nil *Logger (or one built with no Writer) is
// always safe to call methods on.
type Logger struct {
	w io.Writer
}

// New returns a Logger that writes to w. If w is nil, the Logger discards
// everything it is given.
func New(w io.Writer) *Logger {
	return &Logger{w: w}
}

// Printf writes a formatted diagnostic line, terminated with a newline if
// format doesn't already end with one. It is silently a no-op if the
// Logger has no sink.
func (l *Logger) Printf(format string, args ...interface{}) {
	if l == nil || l.w == nil {
		return
	}
	fmt.Fprintf(l.w, format, args...)
	if len(format) == 0 || format[len(format)-1] != '\n' {
		fmt.Fprint(l.w, "\n")
	}
}

// Fault logs the failure context the original project's logger dumped on a
// stack-integrity check failure: program counter, opcode, and the depth of
// both stacks at the point of failure.
func (l *Logger) Fault(pc int, opcode byte, dataDepth, callDepth int, err error) {
	l.Printf("fault @pc=%d opcode=0x%02x data=%d call=%d: %v", pc, opcode, dataDepth, callDepth, err)
}
