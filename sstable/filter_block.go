// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package sstable

import (
	"encoding/binary"

	"github.com/eagle-yw/leveldb/internal/base"
)

// filterBaseLog is the default base-2 logarithm of a filter's offset
// window: one filter is built per 2^11 = 2KiB of file offsets.
const filterBaseLog = 11

// filterBlockBuilder groups per-data-block filters so that one filter
// serves every data block whose starting offset falls in the same
// 2^base_lg window.
type filterBlockBuilder struct {
	policy base.FilterPolicy

	keys    [][]byte
	data    []byte
	offsets []uint32
}

func newFilterBlockBuilder(policy base.FilterPolicy) *filterBlockBuilder {
	return &filterBlockBuilder{policy: policy}
}

// StartBlock rounds blockOffset down to its filterBaseLog window and emits
// a filter for every earlier window that hasn't been emitted yet: the first
// of these holds the pending keys, the rest are empty. The filter for
// blockOffset's own window is left pending.
func (b *filterBlockBuilder) StartBlock(blockOffset uint64) {
	index := blockOffset >> filterBaseLog
	for uint64(len(b.offsets)) < index {
		b.emit()
	}
}

// AddKey accumulates a key for the filter currently being built. key is an
// encoded internal key; only its user-key portion is hashed, since a later
// lookup's search key carries a different, unpredictable trailer.
func (b *filterBlockBuilder) AddKey(key []byte) {
	userKey := internalFilterKey(key)
	b.keys = append(b.keys, append([]byte(nil), userKey...))
}

func (b *filterBlockBuilder) emit() {
	b.offsets = append(b.offsets, uint32(len(b.data)))
	if len(b.keys) > 0 {
		b.data = b.policy.CreateFilter(b.data, b.keys)
	}
	b.keys = b.keys[:0]
}

// Finish emits the pending filter if it has keys, or if no filter has been
// emitted at all, and returns the encoded filter block: filter bytes,
// offsets array, array offset, trailing base_lg byte.
func (b *filterBlockBuilder) Finish() []byte {
	if len(b.keys) > 0 || len(b.offsets) == 0 {
		b.emit()
	}
	arrayOffset := uint32(len(b.data))
	result := append([]byte(nil), b.data...)
	for _, off := range b.offsets {
		result = binary.LittleEndian.AppendUint32(result, off)
	}
	result = binary.LittleEndian.AppendUint32(result, arrayOffset)
	result = append(result, filterBaseLog)
	return result
}

// filterBlockReader answers MayContain queries against an encoded filter
// block, given the offset of the data block being consulted.
type filterBlockReader struct {
	policy  base.FilterPolicy
	data    []byte
	offsets []byte
	num     int
	baseLg  uint32
}

func newFilterBlockReader(policy base.FilterPolicy, block []byte) *filterBlockReader {
	r := &filterBlockReader{policy: policy}
	if len(block) < 5 {
		return r
	}
	r.baseLg = uint32(block[len(block)-1])
	arrayOffset := binary.LittleEndian.Uint32(block[len(block)-5:])
	if arrayOffset > uint32(len(block)-5) {
		return r
	}
	r.data = block[:arrayOffset]
	r.offsets = block[arrayOffset : len(block)-5]
	r.num = len(r.offsets) / 4
	return r
}

// MayContain reports whether key may be present in the data block starting
// at blockOffset. An encoding this reader can't make sense of is treated as
// a match, never as a confident negative.
func (r *filterBlockReader) MayContain(blockOffset uint64, key []byte) bool {
	index := blockOffset >> r.baseLg
	if int(index) >= r.num {
		return true
	}
	start := binary.LittleEndian.Uint32(r.offsets[index*4:])
	var limit uint32
	if int(index+1) < r.num {
		limit = binary.LittleEndian.Uint32(r.offsets[(index+1)*4:])
	} else {
		limit = uint32(len(r.data))
	}
	if start > limit || limit > uint32(len(r.data)) {
		return true
	}
	return r.policy.KeyMayMatch(internalFilterKey(key), r.data[start:limit])
}

// internalFilterKey extracts the user-key portion of an encoded internal
// key for hashing into a filter, mirroring LevelDB's InternalFilterPolicy:
// a filter is built and queried on user keys only, since the trailer of
// the key used to query it almost never matches the trailer of the key
// that was originally added.
func internalFilterKey(key []byte) []byte {
	if len(key) < 8 {
		return key
	}
	return key[:len(key)-8]
}
