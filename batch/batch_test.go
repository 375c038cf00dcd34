// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package batch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eagle-yw/leveldb/internal/base"
	"github.com/eagle-yw/leveldb/mem"
)

func TestBatchPutDeleteReplay(t *testing.T) {
	b := New()
	b.SetSeqNum(100)
	b.Put([]byte("foo"), []byte("bar"))
	b.Delete([]byte("box"))
	b.Put([]byte("baz"), []byte("boo"))

	require.Equal(t, uint32(3), b.Count())

	m := mem.New(0, nil)
	require.NoError(t, b.InsertInto(m))

	// Records replay in batch order starting at the base sequence: foo@100,
	// box@101 (delete), baz@102.
	v, err := m.Get([]byte("foo"), 100)
	require.NoError(t, err)
	require.Equal(t, "bar", string(v))

	_, err = m.Get([]byte("box"), 101)
	require.ErrorIs(t, err, base.ErrNotFound)

	v, err = m.Get([]byte("baz"), 102)
	require.NoError(t, err)
	require.Equal(t, "boo", string(v))

	// foo written at seq 100 is still visible to a later read.
	v, err = m.Get([]byte("foo"), 200)
	require.NoError(t, err)
	require.Equal(t, "bar", string(v))
}

func TestBatchCorruptionLeavesPriorInsertsInPlace(t *testing.T) {
	b := New()
	b.SetSeqNum(200)
	b.Put([]byte("foo"), []byte("bar"))

	// Append a garbage byte (an unknown record kind) to simulate a corrupted
	// record following a successfully-written one.
	repr := b.Repr()
	b2 := New()
	b2.Load(append(append([]byte(nil), repr...), 0xff))
	// Bump the header count to claim a second record exists; InsertInto
	// decodes the trailing garbage byte as that record and fails on it.
	b2.SetSeqNum(200)
	binary_setCount(b2, 2)

	m := mem.New(0, nil)
	err := b2.InsertInto(m)
	require.Error(t, err)

	// The first (valid) record was inserted before the corruption was hit.
	v, gerr := m.Get([]byte("foo"), 200)
	require.NoError(t, gerr)
	require.Equal(t, "bar", string(v))
}

// binary_setCount pokes the record-count header field directly, for tests
// that need to construct a batch whose claimed count disagrees with its
// actual decodable record stream.
func binary_setCount(b *Batch, c uint32) {
	b.init()
	b.setCount(c)
}

func TestBatchWrongCountIsCorruption(t *testing.T) {
	b := New()
	b.SetSeqNum(1)
	b.Put([]byte("a"), []byte("1"))
	binary_setCount(b, 2) // claim two records though only one was written

	m := mem.New(0, nil)
	err := b.InsertInto(m)
	require.Error(t, err)

	// The one real record still got inserted.
	v, gerr := m.Get([]byte("a"), 1)
	require.NoError(t, gerr)
	require.Equal(t, "1", string(v))
}

func TestBatchAppendPreservesReceiverBaseSequence(t *testing.T) {
	a := New()
	a.SetSeqNum(100)
	a.Put([]byte("foo"), []byte("bar"))

	c := New()
	c.SetSeqNum(999) // irrelevant: Append never merges base sequences
	c.Put([]byte("baz"), []byte("boo"))
	c.Delete([]byte("box"))

	a.Append(c)

	require.Equal(t, base.SeqNum(100), a.SeqNum(), "SeqNum() after Append should keep the receiver's base")
	require.Equal(t, uint32(3), a.Count())

	m := mem.New(0, nil)
	require.NoError(t, a.InsertInto(m))

	v, err := m.Get([]byte("foo"), 100)
	require.NoError(t, err)
	require.Equal(t, "bar", string(v))

	v, err = m.Get([]byte("baz"), 102)
	require.NoError(t, err)
	require.Equal(t, "boo", string(v))

	_, err = m.Get([]byte("box"), 103)
	require.ErrorIs(t, err, base.ErrNotFound)
}

func TestBatchClear(t *testing.T) {
	b := New()
	b.SetSeqNum(5)
	b.Put([]byte("k"), []byte("v"))
	b.Clear()

	require.Equal(t, uint32(0), b.Count())
	require.Equal(t, base.SeqNum(0), b.SeqNum())
	require.Equal(t, HeaderLen, b.ApproximateSize())
}

func TestBatchApproximateSizeMonotone(t *testing.T) {
	b := New()
	prev := b.ApproximateSize()
	b.Put([]byte("a"), []byte("1"))
	require.Greater(t, b.ApproximateSize(), prev)
	prev = b.ApproximateSize()
	b.Delete([]byte("b"))
	require.Greater(t, b.ApproximateSize(), prev)
}
