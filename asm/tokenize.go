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

import "strings"

// labelDef reports whether line is a label definition ("name:") and, if
// so, returns the bare name.
func labelDef(line string) (name string, ok bool) {
	if !strings.HasSuffix(line, ":") {
		return "", false
	}
	n := strings.TrimSuffix(line, ":")
	if n == "" || strings.ContainsAny(n, " \t") {
		return "", false
	}
	return n, true
}

// stripBrackets recognises the RAM-indirect "[...]" wrapping (§6). ram is
// true when operand was bracketed; ok is false when the brackets are
// unbalanced.
func stripBrackets(operand string) (inner string, ram bool, ok bool) {
	hasOpen := strings.HasPrefix(operand, "[")
	hasClose := strings.HasSuffix(operand, "]")
	if hasOpen != hasClose {
		return "", false, false
	}
	if !hasOpen {
		return operand, false, true
	}
	inner = operand[1 : len(operand)-1]
	if inner == "" {
		return "", false, false
	}
	return inner, true, true
}
