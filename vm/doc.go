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

// Package vm implements the stack machine: its instruction set and binary
// encoding (opcodes.go), its error taxonomy (errors.go), its RAM and
// program image (ram.go, image.go), and the fetch-decode-dispatch
// interpreter itself (vm.go, run.go).
//
// A typical run loads a program image, builds an Instance around it, and
// calls Run or repeatedly calls Step:
//
//	img, err := vm.LoadFile("prog.bin")
//	if err != nil {
//		return err
//	}
//	defer img.Close()
//	m, err := vm.New(img)
//	if err != nil {
//		return err
//	}
//	return m.Run()
package vm
