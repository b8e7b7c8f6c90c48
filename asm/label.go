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

import "github.com/viafanasyev/stack-machine/vm"

// labelTable maps label names to byte offsets, built during assembly pass
// 1 and queried during pass 2 (§4.6). Create one with newLabelTable; the
// zero value has no map and cannot be added to.
type labelTable struct {
	offsets map[string]int32
}

func newLabelTable() *labelTable {
	return &labelTable{offsets: make(map[string]int32)}
}

// add records name at offset. It fails with INVALID_LABEL if name is
// already defined.
func (t *labelTable) add(name string, offset int32) error {
	if _, exists := t.offsets[name]; exists {
		return errf(vm.CodeInvalidLabel, "duplicate label %q", name)
	}
	t.offsets[name] = offset
	return nil
}

// lookup returns the offset recorded for name, or ok=false if there is
// none.
func (t *labelTable) lookup(name string) (int32, bool) {
	off, ok := t.offsets[name]
	return off, ok
}
