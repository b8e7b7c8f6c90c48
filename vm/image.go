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
	"os"

	"github.com/edsrzf/mmap-go"
)

// Image is a compiled program: a flat, read-only sequence of encoded
// instructions as produced by the assembler (§4/§5). The interpreter
// operates on an Image without caring whether its bytes came from disk or
// from memory.
type Image struct {
	bytes []byte
	mmap  mmap.MMap // non-nil when bytes is backed by LoadFile
}

// Bytes returns the image's underlying byte slice. Callers must not write
// to it.
func (img *Image) Bytes() []byte { return img.bytes }

// Len returns the number of bytes in the image.
func (img *Image) Len() int { return len(img.bytes) }

// LoadFile memory-maps path read-only and returns an Image over it. An
// empty or unreadable file is reported as CodeInvalidFile (§7), matching
// the original project's "no program to run" diagnostic.
func LoadFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errf(CodeInvalidFile, "open %s: %v", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, errf(CodeInvalidFile, "stat %s: %v", path, err)
	}
	if st.Size() == 0 {
		return nil, errf(CodeInvalidFile, "%s is empty", path)
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, errf(CodeInvalidFile, "mmap %s: %v", path, err)
	}
	return &Image{bytes: []byte(m), mmap: m}, nil
}

// LoadBytes wraps an already-assembled byte slice as an Image, bypassing
// the filesystem. The tests use it to run programs built in memory.
func LoadBytes(b []byte) (*Image, error) {
	if len(b) == 0 {
		return nil, errf(CodeInvalidFile, "empty program image")
	}
	return &Image{bytes: b}, nil
}

// Close releases the image's memory mapping, if any. It is a no-op for
// images built with LoadBytes.
func (img *Image) Close() error {
	if img.mmap != nil {
		return img.mmap.Unmap()
	}
	return nil
}
