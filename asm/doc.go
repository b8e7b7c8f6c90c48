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

// Package asm assembles and disassembles programs for the stack machine
// implemented by package vm.
//
// Source syntax:
//
// Input is line-oriented and whitespace-insensitive. Blank lines are
// skipped. Comments are not supported. A line is either a label
// definition or an instruction:
//
//	NAME:                   label definition; NAME has no whitespace
//	MNEMONIC [OPERAND]      instruction, with an optional single operand
//
// An operand is one of:
//
//	3.14                    a decimal literal (parsed like C's strtod)
//	AX, BX, CX, DX          a register name
//	label                   a label name, only legal for JMP*/CALL
//	[3.14] / [AX]           the same forms wrapped in brackets, meaning
//	                        "RAM address given by this value", legal
//	                        only on PUSH/POP
//
// Example:
//
//	PUSH 2
//	PUSH 3
//	ADD
//	OUT
//	HLT
//
// Assemble does two passes over the source: the first resolves every
// label to a byte offset without emitting any bytes; the second emits
// the binary image, patching jump/call operands with offsets relative to
// the byte immediately following the operand field. Disassemble runs the
// reverse direction, synthesizing label names (L0, L1, ...) for jump
// targets in the order they are first referenced.
package asm
