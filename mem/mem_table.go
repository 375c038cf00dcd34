// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

// Package mem implements the memtable: a reference-counted, concurrently
// readable ordered map from internal key to value, backed by an
// arena-allocated skiplist.
package mem

import (
	"bytes"
	"sync/atomic"

	"github.com/eagle-yw/leveldb/internal/arenaskl"
	"github.com/eagle-yw/leveldb/internal/base"
)

// DefaultArenaSize is used by New when no explicit arena is supplied.
const DefaultArenaSize = 4 << 20

// MemTable is a reference-counted ordered map from internal key to value.
// A single writer calls Add; any number of readers may hold iterators
// concurrently with no external locking.
type MemTable struct {
	cmp       *base.Comparer
	ikeyCmp   *base.Comparer
	skl       *arenaskl.Skiplist
	arena     *arenaskl.Arena
	emptySize uint32
	refs      int32
}

// New returns a new, empty MemTable backed by an arena of the given size,
// ordered by cmp. Its initial reference count is 1.
func New(arenaSize uint32, cmp *base.Comparer) *MemTable {
	if cmp == nil {
		cmp = base.DefaultComparer
	}
	if arenaSize == 0 {
		arenaSize = DefaultArenaSize
	}
	arena := arenaskl.NewArena(arenaSize)
	ikeyCmp := base.InternalKeyComparer(cmp)
	m := &MemTable{
		cmp:     cmp,
		ikeyCmp: ikeyCmp,
		arena:   arena,
		refs:    1,
	}
	m.skl = arenaskl.NewSkiplist(arena, arenaskl.Comparer(ikeyCmp.Compare))
	m.emptySize = arena.Size()
	return m
}

// Ref increments the reference count.
func (m *MemTable) Ref() { atomic.AddInt32(&m.refs, 1) }

// Unref decrements the reference count, returning true if it reached zero.
// A MemTable whose refcount has reached zero must not be used again.
func (m *MemTable) Unref() bool {
	switch v := atomic.AddInt32(&m.refs, -1); {
	case v < 0:
		panic("leveldb: MemTable reference count went negative")
	case v == 0:
		return true
	default:
		return false
	}
}

// Empty reports whether no entries have been added.
func (m *MemTable) Empty() bool { return m.skl.Size() == m.emptySize }

// ApproximateMemoryUsage returns the number of arena bytes consumed.
func (m *MemTable) ApproximateMemoryUsage() uint32 { return m.skl.Size() }

// Add packs (seq, kind, userKey) into an internal key and inserts it with
// value. Sequence numbers across calls must be monotonically increasing;
// seq must not exceed base.SeqNumMax.
func (m *MemTable) Add(seq base.SeqNum, kind base.InternalKeyKind, userKey, value []byte) error {
	if seq > base.SeqNumMax {
		return base.ErrInvalidArgument
	}
	ikey := base.MakeInternalKey(userKey, seq, kind)
	encoded := ikey.EncodeTrailer()
	if err := m.skl.Add(encoded, value); err != nil {
		if err == arenaskl.ErrRecordExists {
			// An internal key collision can only happen if the same user
			// key was added twice at the same sequence number, which a
			// correct writer never does.
			return base.CorruptionErrorf("leveldb: duplicate internal key")
		}
		return err
	}
	return nil
}

// Get looks up the most recent entry for userKey whose sequence number is
// <= seq. It returns base.ErrNotFound if no such entry exists, or if the
// most recent one is a deletion.
func (m *MemTable) Get(userKey []byte, seq base.SeqNum) ([]byte, error) {
	search := base.MakeInternalKey(userKey, seq, base.InternalKeyKindMax)
	it := m.skl.NewIter()
	if !it.SeekGE(search.EncodeTrailer()) {
		return nil, base.ErrNotFound
	}
	ikey, err := base.DecodeInternalKey(it.Key())
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(ikey.UserKey, userKey) {
		return nil, base.ErrNotFound
	}
	if ikey.Kind() == base.InternalKeyKindDelete {
		return nil, base.ErrNotFound
	}
	return append([]byte(nil), it.Value()...), nil
}

// NewIterator returns an iterator over the memtable's entries, ordered by
// internal key (same user key visited freshest-sequence-first).
func (m *MemTable) NewIterator() base.InternalIterator {
	it := m.skl.NewIter()
	return &iterator{it: it}
}

// iterator adapts an arenaskl.Iterator to base.InternalIterator, decoding
// the raw key bytes as an internal key.
type iterator struct {
	it  arenaskl.Iterator
	err error
}

func (i *iterator) SeekGE(key []byte) bool { return i.it.SeekGE(key) }
func (i *iterator) SeekLT(key []byte) bool { i.it.SeekLT(key); return i.it.Valid() }
func (i *iterator) First() bool            { i.it.First(); return i.it.Valid() }
func (i *iterator) Last() bool             { i.it.Last(); return i.it.Valid() }
func (i *iterator) Next() bool             { i.it.Next(); return i.it.Valid() }
func (i *iterator) Prev() bool             { i.it.Prev(); return i.it.Valid() }
func (i *iterator) Valid() bool            { return i.it.Valid() }
func (i *iterator) Value() []byte          { return i.it.Value() }
func (i *iterator) Error() error           { return i.err }
func (i *iterator) Close() error           { return i.err }

func (i *iterator) Key() base.InternalKey {
	k, err := base.DecodeInternalKey(i.it.Key())
	if err != nil {
		i.err = err
		return base.InternalKey{}
	}
	return k
}

// KeyConvertingIterator wraps a MemTable iterator to expose the user-key
// projection of each entry, surfacing an error if an entry's internal key
// turns out to be malformed.
type KeyConvertingIterator struct {
	iter base.InternalIterator
	err  error
}

// NewKeyConvertingIterator wraps iter.
func NewKeyConvertingIterator(iter base.InternalIterator) *KeyConvertingIterator {
	return &KeyConvertingIterator{iter: iter}
}

func (k *KeyConvertingIterator) SeekGE(key []byte) bool { return k.iter.SeekGE(key) }
func (k *KeyConvertingIterator) SeekLT(key []byte) bool { return k.iter.SeekLT(key) }
func (k *KeyConvertingIterator) First() bool            { return k.iter.First() }
func (k *KeyConvertingIterator) Last() bool             { return k.iter.Last() }
func (k *KeyConvertingIterator) Next() bool             { return k.iter.Next() }
func (k *KeyConvertingIterator) Prev() bool             { return k.iter.Prev() }
func (k *KeyConvertingIterator) Valid() bool            { return k.err == nil && k.iter.Valid() }
func (k *KeyConvertingIterator) Value() []byte          { return k.iter.Value() }
func (k *KeyConvertingIterator) Close() error           { return k.iter.Close() }

// Error returns any error from the wrapped iterator, or from decoding the
// current entry's internal key.
func (k *KeyConvertingIterator) Error() error {
	if k.err != nil {
		return k.err
	}
	return k.iter.Error()
}

// Kind returns the current entry's value type.
func (k *KeyConvertingIterator) Kind() base.InternalKeyKind { return k.iter.Key().Kind() }

// Key returns the current entry's user key.
func (k *KeyConvertingIterator) Key() []byte {
	if !k.iter.Valid() {
		k.err = base.CorruptionErrorf("leveldb: malformed internal key")
		return nil
	}
	return k.iter.Key().UserKey
}
