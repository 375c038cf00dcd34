// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

// Package batch implements WriteBatch: a framed, replayable sequence of
// Put/Delete operations sharing a batch-wide base sequence number.
package batch

import (
	"encoding/binary"

	"github.com/eagle-yw/leveldb/internal/base"
	"github.com/eagle-yw/leveldb/mem"
)

// HeaderLen is the length, in bytes, of a WriteBatch's fixed header: an
// 8-byte little-endian base sequence number followed by a 4-byte
// little-endian record count.
const HeaderLen = 12

// Batch is a mutable, replayable sequence of Put/Delete records. The zero
// value is an empty batch: every method fills in the header on first use.
type Batch struct {
	data []byte
}

// New returns an empty Batch with sequence number 0 and record count 0.
func New() *Batch {
	return &Batch{data: make([]byte, HeaderLen)}
}

func (b *Batch) init() {
	if len(b.data) < HeaderLen {
		b.data = make([]byte, HeaderLen)
	}
}

// SeqNum returns the batch's base sequence number.
func (b *Batch) SeqNum() base.SeqNum {
	b.init()
	return base.SeqNum(binary.LittleEndian.Uint64(b.data[:8]))
}

// SetSeqNum sets the batch's base sequence number.
func (b *Batch) SetSeqNum(seq base.SeqNum) {
	b.init()
	binary.LittleEndian.PutUint64(b.data[:8], uint64(seq))
}

// Count returns the number of records encoded so far.
func (b *Batch) Count() uint32 {
	b.init()
	return binary.LittleEndian.Uint32(b.data[8:12])
}

func (b *Batch) setCount(c uint32) {
	binary.LittleEndian.PutUint32(b.data[8:12], c)
}

// Put appends a Put(key, value) record.
func (b *Batch) Put(key, value []byte) {
	b.init()
	b.data = append(b.data, byte(base.InternalKeyKindSet))
	b.data = appendVarString(b.data, key)
	b.data = appendVarString(b.data, value)
	b.setCount(b.Count() + 1)
}

// Delete appends a Delete(key) record.
func (b *Batch) Delete(key []byte) {
	b.init()
	b.data = append(b.data, byte(base.InternalKeyKindDelete))
	b.data = appendVarString(b.data, key)
	b.setCount(b.Count() + 1)
}

// Clear resets the batch to the 12-byte header with zero count and
// sequence number.
func (b *Batch) Clear() {
	b.init()
	b.data = b.data[:HeaderLen]
	for i := range b.data {
		b.data[i] = 0
	}
}

// ApproximateSize returns the current encoded length of the batch. It is
// monotone non-decreasing across calls to Put, Delete and Append.
func (b *Batch) ApproximateSize() int {
	b.init()
	return len(b.data)
}

// Append concatenates other's records onto b, increasing b's count by
// other's count. b's base sequence number is left unchanged: base
// sequences are never merged.
func (b *Batch) Append(other *Batch) {
	b.init()
	other.init()
	b.data = append(b.data, other.data[HeaderLen:]...)
	b.setCount(b.Count() + other.Count())
}

// Repr returns the batch's raw encoded bytes (header ++ records).
func (b *Batch) Repr() []byte {
	b.init()
	return b.data
}

// Load replaces b's contents with a previously captured Repr().
func (b *Batch) Load(repr []byte) {
	b.data = append(b.data[:0], repr...)
	b.init()
}

func appendVarString(dst []byte, s []byte) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(s)))
	dst = append(dst, tmp[:n]...)
	dst = append(dst, s...)
	return dst
}

// reader decodes the record stream following a batch's header.
type reader struct {
	data []byte
}

func (r *reader) next() (kind base.InternalKeyKind, key, value []byte, ok bool, err error) {
	if len(r.data) == 0 {
		return 0, nil, nil, false, nil
	}
	kindByte := r.data[0]
	kind = base.InternalKeyKind(kindByte)
	if kind != base.InternalKeyKindSet && kind != base.InternalKeyKindDelete {
		return 0, nil, nil, false, base.CorruptionErrorf("leveldb: unknown WriteBatch record kind %d", kindByte)
	}
	rest := r.data[1:]

	key, rest, err = decodeVarString(rest)
	if err != nil {
		return 0, nil, nil, false, err
	}
	if kind == base.InternalKeyKindSet {
		value, rest, err = decodeVarString(rest)
		if err != nil {
			return 0, nil, nil, false, err
		}
	}
	r.data = rest
	return kind, key, value, true, nil
}

func decodeVarString(b []byte) (s, rest []byte, err error) {
	n, m := binary.Uvarint(b)
	if m <= 0 {
		return nil, nil, base.CorruptionErrorf("leveldb: corrupt WriteBatch record")
	}
	if uint64(m)+n > uint64(len(b)) {
		return nil, nil, base.CorruptionErrorf("leveldb: corrupt WriteBatch record")
	}
	return b[m : uint64(m)+n], b[uint64(m)+n:], nil
}

// InsertInto replays the batch's records into m, assigning sequence
// numbers base, base+1, ... in record order: Put becomes a Set entry,
// Delete becomes a Delete entry. It fails with a Corruption error when the
// trailing bytes can't be parsed, or when the observed record count
// disagrees with the header count; entries preceding the failing record
// remain inserted into m.
func (b *Batch) InsertInto(m *mem.MemTable) error {
	b.init()
	seq := b.SeqNum()
	r := &reader{data: b.data[HeaderLen:]}
	var count uint32
	for {
		kind, key, value, ok, err := r.next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := m.Add(seq, kind, key, value); err != nil {
			return err
		}
		seq++
		count++
	}
	if count != b.Count() {
		return base.CorruptionErrorf("leveldb: WriteBatch has wrong count")
	}
	return nil
}
