// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package sstable

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/eagle-yw/leveldb/internal/base"
	"github.com/eagle-yw/leveldb/internal/crc"
	"github.com/eagle-yw/leveldb/sstable/block"
)

// Writer builds a table file: one or more data blocks, an optional filter
// block, a meta-index block, an index block, and a footer.
type Writer struct {
	w    io.Writer
	opts *base.Options
	// comparer orders data-block and index-block keys, which are encoded
	// internal keys.
	comparer *base.Comparer

	offset uint64
	err    error
	closed bool

	dataBlock  *block.Writer
	indexBlock *block.Writer
	filter     *filterBlockBuilder

	lastKey []byte

	pendingIndexEntry bool
	pendingHandle     blockHandle
	flushedLastKey    []byte

	zstdEncoder *zstd.Encoder
}

// NewWriter returns a Writer that writes a table to w, configured by opts.
func NewWriter(w io.Writer, opts *base.Options) *Writer {
	opts = opts.EnsureDefaults()
	tw := &Writer{
		w:          w,
		opts:       opts,
		comparer:   base.InternalKeyComparer(opts.Comparer),
		dataBlock:  block.NewWriter(opts.BlockRestartInterval),
		indexBlock: block.NewWriter(1),
	}
	if opts.FilterPolicy != nil {
		tw.filter = newFilterBlockBuilder(opts.FilterPolicy)
		tw.filter.StartBlock(0)
	}
	return tw
}

// Add appends a key/value pair. key must compare strictly greater than
// every previously added key under the table's comparer.
func (w *Writer) Add(key, value []byte) error {
	if w.err != nil {
		return w.err
	}
	if w.lastKey != nil && w.comparer.Compare(w.lastKey, key) >= 0 {
		return errors.New("leveldb: Add called in non-increasing key order")
	}

	if w.pendingIndexEntry {
		sep := w.comparer.Separator(nil, w.flushedLastKey, key)
		buf := make([]byte, blockHandleMaxLen)
		n := encodeBlockHandle(buf, w.pendingHandle)
		w.indexBlock.Add(sep, buf[:n])
		w.pendingIndexEntry = false
	}

	if w.filter != nil {
		w.filter.AddKey(key)
	}

	w.dataBlock.Add(key, value)
	w.lastKey = append(w.lastKey[:0], key...)

	if w.dataBlock.CurrentSizeEstimate() >= w.opts.BlockSize {
		w.flush()
	}
	return w.err
}

func (w *Writer) flush() {
	if w.err != nil || w.dataBlock.Empty() {
		return
	}
	handle, err := w.writeBlock(w.dataBlock.Finish())
	w.dataBlock.Reset()
	if err != nil {
		w.err = err
		return
	}
	w.pendingHandle = handle
	w.pendingIndexEntry = true
	w.flushedLastKey = append(w.flushedLastKey[:0], w.lastKey...)

	if w.filter != nil {
		w.filter.StartBlock(w.offset)
	}
}

// writeBlock compresses contents per the writer's configured compressor
// (falling back to no compression if compression doesn't shrink the block
// by at least 12.5%, or isn't available), writes it with its trailer, and
// returns its handle.
func (w *Writer) writeBlock(contents []byte) (blockHandle, error) {
	compressed, ctype := w.compress(contents)
	return w.writeRawBlock(compressed, ctype)
}

func (w *Writer) compress(contents []byte) ([]byte, byte) {
	switch w.opts.Compression {
	case base.SnappyCompression:
		c := snappy.Encode(nil, contents)
		if len(c) < len(contents)-len(contents)/8 {
			return c, snappyCompressionBlockType
		}
	case base.ZstdCompression:
		if w.zstdEncoder == nil {
			enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstdEncoderLevel(w.opts.ZstdLevel)))
			if err == nil {
				w.zstdEncoder = enc
			}
		}
		if w.zstdEncoder != nil {
			c := w.zstdEncoder.EncodeAll(contents, nil)
			if len(c) < len(contents)-len(contents)/8 {
				return c, zstdCompressionBlockType
			}
		}
	}
	return contents, noCompressionBlockType
}

func (w *Writer) writeRawBlock(data []byte, ctype byte) (blockHandle, error) {
	checksum := crc.Mask(crc.Extend(crc.New(data), []byte{ctype}))
	handle := blockHandle{offset: w.offset, length: uint64(len(data))}

	if _, err := w.w.Write(data); err != nil {
		return blockHandle{}, err
	}
	trailer := make([]byte, blockTrailerLen)
	trailer[0] = ctype
	putUint32LE(trailer[1:], checksum)
	if _, err := w.w.Write(trailer); err != nil {
		return blockHandle{}, err
	}
	w.offset += uint64(len(data)) + blockTrailerLen
	return handle, nil
}

// Finish flushes any pending data, writes the filter, meta-index and index
// blocks, and writes the footer. The Writer must not be used after Finish
// returns, success or failure.
func (w *Writer) Finish() error {
	if w.closed {
		return w.err
	}
	w.closed = true

	w.flush()
	if w.err != nil {
		return w.err
	}
	if w.pendingIndexEntry {
		succ := w.comparer.Successor(nil, w.flushedLastKey)
		buf := make([]byte, blockHandleMaxLen)
		n := encodeBlockHandle(buf, w.pendingHandle)
		w.indexBlock.Add(succ, buf[:n])
		w.pendingIndexEntry = false
	}

	metaIndexBlock := block.NewWriter(1)
	if w.filter != nil {
		filterContents := w.filter.Finish()
		filterHandle, err := w.writeRawBlock(filterContents, noCompressionBlockType)
		if err != nil {
			return err
		}
		buf := make([]byte, blockHandleMaxLen)
		n := encodeBlockHandle(buf, filterHandle)
		metaIndexBlock.Add([]byte("filter."+w.opts.FilterPolicy.Name()), buf[:n])
	}

	metaIndexHandle, err := w.writeRawBlock(metaIndexBlock.Finish(), noCompressionBlockType)
	if err != nil {
		return err
	}
	indexHandle, err := w.writeRawBlock(w.indexBlock.Finish(), noCompressionBlockType)
	if err != nil {
		return err
	}

	ft := footer{metaindexHandle: metaIndexHandle, indexHandle: indexHandle}
	if _, err := w.w.Write(ft.encode()); err != nil {
		return err
	}
	if c, ok := w.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// zstdEncoderLevel maps a coarse zstd compression level (as the table
// options expose it) to one of the library's speed presets. The core does
// not try to reproduce zstd's full 1..22 level granularity.
func zstdEncoderLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 0:
		return zstd.SpeedDefault
	case level <= 3:
		return zstd.SpeedFastest
	case level <= 9:
		return zstd.SpeedDefault
	case level <= 15:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

func putUint32LE(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
