// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

// Package sstable implements the on-disk table (SSTable) format: data
// blocks, an optional filter block, a meta-index block, an index block and
// a fixed-size footer.
package sstable

import (
	"encoding/binary"

	"github.com/eagle-yw/leveldb/internal/base"
)

const (
	blockTrailerLen   = 5 // 1 byte compression type + 4 byte masked CRC32C
	blockHandleMaxLen = 2 * binary.MaxVarintLen64
	footerLen         = 48

	noCompressionBlockType     = byte(0)
	snappyCompressionBlockType = byte(1)
	zstdCompressionBlockType   = byte(2)
)

// magic is the fixed 8-byte trailer identifying a table footer: the
// little-endian encoding of 0xdb4775248b80fb57.
var magic = [8]byte{0x57, 0xfb, 0x80, 0x8b, 0x24, 0x75, 0x47, 0xdb}

// blockHandle locates a block within the table file.
type blockHandle struct {
	offset, length uint64
}

func encodeBlockHandle(dst []byte, b blockHandle) int {
	n := binary.PutUvarint(dst, b.offset)
	n += binary.PutUvarint(dst[n:], b.length)
	return n
}

func decodeBlockHandle(src []byte) (blockHandle, int, error) {
	offset, n := binary.Uvarint(src)
	if n <= 0 {
		return blockHandle{}, 0, base.CorruptionErrorf("leveldb: bad block handle")
	}
	length, m := binary.Uvarint(src[n:])
	if m <= 0 {
		return blockHandle{}, 0, base.CorruptionErrorf("leveldb: bad block handle")
	}
	return blockHandle{offset: offset, length: length}, n + m, nil
}

// footer is the fixed 48-byte trailer of a table file.
type footer struct {
	metaindexHandle blockHandle
	indexHandle     blockHandle
}

func (f footer) encode() []byte {
	buf := make([]byte, footerLen)
	n := encodeBlockHandle(buf, f.metaindexHandle)
	n += encodeBlockHandle(buf[n:], f.indexHandle)
	copy(buf[footerLen-8:], magic[:])
	_ = n
	return buf
}

func decodeFooter(buf []byte) (footer, error) {
	if len(buf) != footerLen {
		return footer{}, base.CorruptionErrorf("leveldb: invalid footer length")
	}
	if string(buf[footerLen-8:]) != string(magic[:]) {
		return footer{}, base.CorruptionErrorf("leveldb: invalid table (bad magic number)")
	}
	mh, n, err := decodeBlockHandle(buf)
	if err != nil {
		return footer{}, err
	}
	ih, _, err := decodeBlockHandle(buf[n:])
	if err != nil {
		return footer{}, err
	}
	return footer{metaindexHandle: mh, indexHandle: ih}, nil
}
