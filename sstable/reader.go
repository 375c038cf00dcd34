// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package sstable

import (
	"encoding/binary"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/eagle-yw/leveldb/internal/base"
	"github.com/eagle-yw/leveldb/internal/crc"
	"github.com/eagle-yw/leveldb/sstable/block"
)

// ReadableFile is the byte-addressable random-access reader a Table is
// opened from; it is the only collaborator the core requires of its
// environment.
type ReadableFile interface {
	io.ReaderAt
	Size() (int64, error)
}

// Table is a read-only, opened view of a table file.
type Table struct {
	file ReadableFile
	opts *base.Options
	// comparer orders data-block and index-block keys (encoded internal
	// keys); userComparer orders the meta-index block's plain string keys.
	comparer     *base.Comparer
	userComparer *base.Comparer

	index   block.Block
	filter  *filterBlockReader
	zstdDec *zstd.Decoder
}

// Open reads the footer, index and (if configured) filter block of the
// table file backing file, which must be size bytes long.
func Open(file ReadableFile, size int64, opts *base.Options) (*Table, error) {
	opts = opts.EnsureDefaults()
	if size < footerLen {
		return nil, base.CorruptionErrorf("leveldb: file is too short to be a table")
	}
	buf := make([]byte, footerLen)
	if _, err := file.ReadAt(buf, size-footerLen); err != nil {
		return nil, err
	}
	ft, err := decodeFooter(buf)
	if err != nil {
		return nil, err
	}

	t := &Table{
		file:         file,
		opts:         opts,
		comparer:     base.InternalKeyComparer(opts.Comparer),
		userComparer: opts.Comparer,
	}

	indexContents, err := t.readBlock(ft.indexHandle)
	if err != nil {
		return nil, err
	}
	t.index = block.Block(indexContents)

	if opts.FilterPolicy != nil {
		metaContents, err := t.readBlock(ft.metaindexHandle)
		if err != nil {
			return nil, err
		}
		meta := block.Block(metaContents)
		it := block.NewIterator(t.userComparer.Compare, meta)
		name := []byte("filter." + opts.FilterPolicy.Name())
		if it.SeekGE(name) {
			h, _, err := decodeBlockHandle(it.Value())
			if err != nil {
				return nil, err
			}
			filterContents, err := t.readBlock(h)
			if err != nil {
				return nil, err
			}
			t.filter = newFilterBlockReader(opts.FilterPolicy, filterContents)
		}
	}

	return t, nil
}

func (t *Table) readBlock(h blockHandle) ([]byte, error) {
	buf := make([]byte, h.length+blockTrailerLen)
	if _, err := t.file.ReadAt(buf, int64(h.offset)); err != nil {
		return nil, err
	}
	data := buf[:h.length]
	ctype := buf[h.length]
	stored := binary.LittleEndian.Uint32(buf[h.length+1:])
	computed := crc.Mask(crc.Extend(crc.New(data), buf[h.length:h.length+1]))
	if stored != computed {
		return nil, base.CorruptionErrorf("leveldb: block checksum mismatch")
	}

	switch ctype {
	case noCompressionBlockType:
		return data, nil
	case snappyCompressionBlockType:
		return snappy.Decode(nil, data)
	case zstdCompressionBlockType:
		if t.zstdDec == nil {
			dec, err := zstd.NewReader(nil)
			if err != nil {
				return nil, err
			}
			t.zstdDec = dec
		}
		return t.zstdDec.DecodeAll(data, nil)
	default:
		return nil, base.CorruptionErrorf("leveldb: unknown block compression type %d", ctype)
	}
}

// NewIterator returns a two-level iterator over the table's entries. Keys
// exposed by Key() are decoded as internal keys: the table is always built
// from already-encoded internal keys (see mem.MemTable / batch.Batch).
func (t *Table) NewIterator() base.InternalIterator {
	return &tableIterator{table: t, index: block.NewIterator(t.comparer.Compare, t.index)}
}

// ApproximateOffsetOf returns the file offset of the data block whose
// index entry is the first >= key, or the file's data-region size if no
// such entry exists. key is an encoded internal key, like the index keys it
// is compared against.
func (t *Table) ApproximateOffsetOf(key []byte) uint64 {
	it := block.NewIterator(t.comparer.Compare, t.index)
	if it.SeekGE(key) {
		h, _, err := decodeBlockHandle(it.Value())
		if err == nil {
			return h.offset
		}
	}
	// No block's separator is >= key: key falls after every block. Report
	// the offset just past the last data block, i.e. the start of
	// whatever non-data block comes next (filter/meta-index/index).
	if it.Last() {
		h, _, err := decodeBlockHandle(it.Value())
		if err == nil {
			return h.offset + h.length + blockTrailerLen
		}
	}
	return 0
}

// tableIterator is the two-level iterator: the outer iterator walks index
// entries yielding block handles, the inner iterator walks the data block
// a handle refers to.
type tableIterator struct {
	table *Table
	index *block.Iterator
	data  *block.Iterator
	err   error
}

func (i *tableIterator) loadBlock(h blockHandle) bool {
	contents, err := i.table.readBlock(h)
	if err != nil {
		i.err = err
		i.data = nil
		return false
	}
	i.data = block.NewIterator(i.table.comparer.Compare, block.Block(contents))
	return true
}

func (i *tableIterator) currentHandle() (blockHandle, bool) {
	if !i.index.Valid() {
		return blockHandle{}, false
	}
	h, _, err := decodeBlockHandle(i.index.Value())
	if err != nil {
		i.err = err
		return blockHandle{}, false
	}
	return h, true
}

func (i *tableIterator) SeekGE(key []byte) bool {
	if !i.index.SeekGE(key) {
		i.data = nil
		return false
	}
	h, ok := i.currentHandle()
	if !ok {
		return false
	}
	if i.table.filter != nil && !i.table.filter.MayContain(h.offset, key) {
		// The filter confidently excludes this key from this block; there
		// is nothing at or after key in it.
		i.data = nil
		return false
	}
	if !i.loadBlock(h) {
		return false
	}
	if i.data.SeekGE(key) {
		return true
	}
	return i.Next()
}

func (i *tableIterator) SeekLT(key []byte) bool {
	if !i.index.SeekGE(key) {
		return i.Last()
	}
	h, ok := i.currentHandle()
	if !ok {
		return false
	}
	if !i.loadBlock(h) {
		return false
	}
	if i.data.SeekLT(key) {
		return true
	}
	return i.Prev()
}

func (i *tableIterator) First() bool {
	if !i.index.First() {
		i.data = nil
		return false
	}
	h, ok := i.currentHandle()
	if !ok {
		return false
	}
	if !i.loadBlock(h) {
		return false
	}
	if i.data.First() {
		return true
	}
	return i.Next()
}

func (i *tableIterator) Last() bool {
	if !i.index.Last() {
		i.data = nil
		return false
	}
	h, ok := i.currentHandle()
	if !ok {
		return false
	}
	if !i.loadBlock(h) {
		return false
	}
	if i.data.Last() {
		return true
	}
	return i.Prev()
}

func (i *tableIterator) Next() bool {
	if i.data != nil && i.data.Next() {
		return true
	}
	for i.index.Next() {
		h, ok := i.currentHandle()
		if !ok {
			return false
		}
		if !i.loadBlock(h) {
			return false
		}
		if i.data.First() {
			return true
		}
	}
	i.data = nil
	return false
}

func (i *tableIterator) Prev() bool {
	if i.data != nil && i.data.Prev() {
		return true
	}
	for i.index.Prev() {
		h, ok := i.currentHandle()
		if !ok {
			return false
		}
		if !i.loadBlock(h) {
			return false
		}
		if i.data.Last() {
			return true
		}
	}
	i.data = nil
	return false
}

func (i *tableIterator) Valid() bool { return i.err == nil && i.data != nil && i.data.Valid() }

func (i *tableIterator) Key() base.InternalKey {
	k, err := base.DecodeInternalKey(i.data.Key())
	if err != nil {
		i.err = err
		return base.InternalKey{}
	}
	return k
}

func (i *tableIterator) Value() []byte { return i.data.Value() }

func (i *tableIterator) Error() error {
	if i.err != nil {
		return i.err
	}
	if i.data != nil {
		return i.data.Error()
	}
	return nil
}

func (i *tableIterator) Close() error { return i.Error() }
