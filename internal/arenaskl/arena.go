/*
 * Copyright 2017 Dgraph Labs, Inc. and Contributors
 * Modifications copyright (C) 2017 Andy Kimball and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package arenaskl

import (
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// ErrArenaFull is returned by Add when the arena backing a skiplist has no
// room left for a new node.
var ErrArenaFull = errors.New("leveldb: arena is full")

// Arena is a lock-free bump allocator. Offset 0 is reserved as a nil
// pointer, so the first byte of the backing buffer is never handed out.
type Arena struct {
	n   uint32
	buf []byte
}

// NewArena allocates a new arena with the given capacity in bytes.
func NewArena(size uint32) *Arena {
	return &Arena{n: 1, buf: make([]byte, size)}
}

// Size returns the number of bytes allocated so far.
func (a *Arena) Size() uint32 { return atomic.LoadUint32(&a.n) }

// Capacity returns the arena's total capacity in bytes.
func (a *Arena) Capacity() uint32 { return uint32(len(a.buf)) }

func (a *Arena) alloc(size, align uint32) (uint32, error) {
	padded := size + align
	newSize := atomic.AddUint32(&a.n, padded)
	if int(newSize) > len(a.buf) {
		return 0, ErrArenaFull
	}
	offset := (newSize - padded + align) &^ align
	return offset, nil
}

func (a *Arena) getBytes(offset, size uint32) []byte {
	if offset == 0 {
		return nil
	}
	return a.buf[offset : offset+size : offset+size]
}

func (a *Arena) getPointer(offset uint32) unsafe.Pointer {
	if offset == 0 {
		return nil
	}
	return unsafe.Pointer(&a.buf[offset])
}

func (a *Arena) getPointerOffset(ptr unsafe.Pointer) uint32 {
	if ptr == nil {
		return 0
	}
	return uint32(uintptr(ptr) - uintptr(unsafe.Pointer(&a.buf[0])))
}
