// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package block

import (
	"encoding/binary"
	"sort"

	"github.com/eagle-yw/leveldb/internal/base"
)

// Block is the read-only, decoded view of a block's raw bytes.
type Block []byte

// restartCount returns the number of restart points encoded in the block.
// A block shorter than 4 bytes, or one whose trailing restart count would
// overrun the buffer, is treated as having zero restart points: it is
// tolerated as an empty block rather than rejected, to accommodate blocks
// produced by foreign implementations.
func (b Block) restartCount() int {
	if len(b) < 4 {
		return 0
	}
	n := int(binary.LittleEndian.Uint32(b[len(b)-4:]))
	if n < 0 || 4+4*n > len(b) {
		return 0
	}
	return n
}

func (b Block) restartPoint(i int) uint32 {
	n := b.restartCount()
	off := len(b) - 4 - 4*n + 4*i
	return binary.LittleEndian.Uint32(b[off : off+4])
}

// entriesLen returns the length of the entries region (everything before
// the restart array).
func (b Block) entriesLen() int {
	n := b.restartCount()
	return len(b) - 4 - 4*n
}

// decodeEntry decodes the (shared, unshared, valueLen) triplet at offset,
// returning the key and value byte ranges (relative to prevKey for the
// shared prefix) and the offset of the following entry. ok is false if the
// entry is truncated or otherwise malformed.
func decodeEntry(b []byte, offset int, prevKey []byte) (key, value []byte, next int, ok bool) {
	p := b[offset:]
	shared, n1 := binary.Uvarint(p)
	if n1 <= 0 {
		return nil, nil, 0, false
	}
	unshared, n2 := binary.Uvarint(p[n1:])
	if n2 <= 0 {
		return nil, nil, 0, false
	}
	valueLen, n3 := binary.Uvarint(p[n1+n2:])
	if n3 <= 0 {
		return nil, nil, 0, false
	}
	hdr := n1 + n2 + n3
	if int(shared) > len(prevKey) {
		return nil, nil, 0, false
	}
	need := hdr + int(unshared) + int(valueLen)
	if need > len(p) {
		return nil, nil, 0, false
	}
	key = make([]byte, int(shared)+int(unshared))
	copy(key, prevKey[:shared])
	copy(key[shared:], p[hdr:hdr+int(unshared)])
	value = p[hdr+int(unshared) : hdr+int(unshared)+int(valueLen)]
	next = offset + need
	return key, value, next, true
}

// Iterator is a forward-and-backward iterator over a Block's entries.
type Iterator struct {
	cmp     base.Compare
	data    Block
	err     error
	key     []byte
	value   []byte
	offset  int // offset of the current entry
	nextOff int // offset of the entry following the current one

	// restartIdx is the index of the restart point at or before the
	// current entry; used by Prev to rewind and re-scan forward.
	restartIdx int
}

// NewIterator returns an iterator over data, comparing keys with cmp.
func NewIterator(cmp base.Compare, data Block) *Iterator {
	return &Iterator{cmp: cmp, data: data}
}

// Valid reports whether the iterator is positioned at an entry.
func (i *Iterator) Valid() bool { return i.err == nil && i.key != nil }

// Error returns a non-nil error if the block was found to be corrupt.
func (i *Iterator) Error() error { return i.err }

// Key returns the encoded key at the current position.
func (i *Iterator) Key() []byte { return i.key }

// Value returns the value at the current position.
func (i *Iterator) Value() []byte { return i.value }

// Close releases the iterator; Block iterators hold no external resources.
func (i *Iterator) Close() error { return i.err }

func (i *Iterator) clear() {
	i.key = nil
	i.value = nil
}

// First moves to the least entry in the block.
func (i *Iterator) First() bool {
	if i.data.restartCount() == 0 {
		i.clear()
		return false
	}
	i.restartIdx = 0
	return i.decodeFrom(0, nil)
}

// Last moves to the greatest entry in the block.
func (i *Iterator) Last() bool {
	n := i.data.restartCount()
	if n == 0 {
		i.clear()
		return false
	}
	i.restartIdx = n - 1
	off := int(i.data.restartPoint(n - 1))
	return i.scanToLast(off)
}

// Next moves to the next entry.
func (i *Iterator) Next() bool {
	if i.key == nil {
		return false
	}
	return i.decodeFrom(i.nextOff, i.key)
}

// Prev moves to the previous entry by rewinding to the start of the
// current restart region and scanning forward to the entry preceding the
// current position.
func (i *Iterator) Prev() bool {
	if i.key == nil {
		return false
	}
	target := i.offset
	startRestart := i.restartIdx
	if int(i.data.restartPoint(startRestart)) == target {
		if startRestart == 0 {
			i.clear()
			return false
		}
		startRestart--
	}
	off := int(i.data.restartPoint(startRestart))
	var prevKey, key, value []byte
	var prevOff, curOff, curNext int
	ok := true
	for off < target && ok {
		var next int
		prevOff = curOff
		curOff = off
		key, value, next, ok = decodeEntry(i.data, off, prevKey)
		if !ok {
			break
		}
		prevKey, off = key, next
		curNext = next
		_ = prevOff
	}
	if !ok {
		i.err = base.CorruptionErrorf("leveldb: corrupt block entry")
		i.clear()
		return false
	}
	i.restartIdx = startRestart
	i.offset = curOff
	i.nextOff = curNext
	i.key = key
	i.value = value
	return true
}

// SeekGE moves to the first entry with key >= target.
func (i *Iterator) SeekGE(target []byte) bool {
	n := i.data.restartCount()
	if n == 0 {
		i.clear()
		return false
	}
	// Binary search the restart points: the key at each restart point is
	// self-contained (shared_len == 0), so it can be decoded without
	// context from a preceding entry.
	index := sort.Search(n, func(j int) bool {
		off := int(i.data.restartPoint(j))
		key, _, _, ok := decodeEntry(i.data, off, nil)
		if !ok {
			return true
		}
		return i.cmp(key, target) > 0
	})
	restart := 0
	if index > 0 {
		restart = index - 1
	}
	i.restartIdx = restart
	off := int(i.data.restartPoint(restart))
	if !i.decodeFrom(off, nil) {
		return false
	}
	for i.key != nil && i.cmp(i.key, target) < 0 {
		if !i.decodeFrom(i.nextOff, i.key) {
			return false
		}
	}
	return i.key != nil
}

// SeekLT moves to the last entry with key < target.
func (i *Iterator) SeekLT(target []byte) bool {
	if !i.SeekGE(target) {
		if i.err != nil {
			return false
		}
		return i.Last()
	}
	return i.Prev()
}

// decodeFrom decodes a single entry starting at offset, using prevKey as
// the shared-prefix base (nil at a restart point). It leaves the iterator
// positioned at that entry, or !Valid with a non-nil Error on corruption,
// or !Valid with a nil Error if offset is at or past the entries region.
func (i *Iterator) decodeFrom(offset int, prevKey []byte) bool {
	if offset >= i.data.entriesLen() {
		i.clear()
		return false
	}
	key, value, next, ok := decodeEntry(i.data, offset, prevKey)
	if !ok {
		i.err = base.CorruptionErrorf("leveldb: corrupt block entry")
		i.clear()
		return false
	}
	i.offset = offset
	i.nextOff = next
	i.key = key
	i.value = value
	return true
}

func (i *Iterator) scanToLast(off int) bool {
	var prevKey []byte
	ok := i.decodeFrom(off, prevKey)
	for ok {
		nextOff := i.nextOff
		if nextOff >= i.data.entriesLen() {
			break
		}
		ok = i.decodeFrom(nextOff, i.key)
	}
	return i.key != nil
}
