// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package mem

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eagle-yw/leveldb/internal/base"
)

func TestMemTableEmpty(t *testing.T) {
	m := New(0, nil)
	require.True(t, m.Empty())
	require.NoError(t, m.Add(1, base.InternalKeyKindSet, []byte("k"), []byte("v")))
	require.False(t, m.Empty())
}

func TestMemTableAddGet(t *testing.T) {
	m := New(0, nil)
	require.NoError(t, m.Add(1, base.InternalKeyKindSet, []byte("a"), []byte("1")))
	require.NoError(t, m.Add(2, base.InternalKeyKindSet, []byte("a"), []byte("2")))
	require.NoError(t, m.Add(3, base.InternalKeyKindDelete, []byte("a"), nil))

	v, err := m.Get([]byte("a"), 1)
	require.NoError(t, err)
	require.Equal(t, "1", string(v))

	v, err = m.Get([]byte("a"), 2)
	require.NoError(t, err)
	require.Equal(t, "2", string(v))

	_, err = m.Get([]byte("a"), 3)
	require.ErrorIs(t, err, base.ErrNotFound, "deleted")

	_, err = m.Get([]byte("a"), 100)
	require.ErrorIs(t, err, base.ErrNotFound, "deleted, still latest at a later read")

	_, err = m.Get([]byte("b"), 100)
	require.ErrorIs(t, err, base.ErrNotFound, "never written")
}

func TestMemTableRejectsSeqAboveMax(t *testing.T) {
	m := New(0, nil)
	err := m.Add(base.SeqNumMax+1, base.InternalKeyKindSet, []byte("k"), []byte("v"))
	require.ErrorIs(t, err, base.ErrInvalidArgument)
	require.NoError(t, m.Add(base.SeqNumMax, base.InternalKeyKindSet, []byte("k"), []byte("v")))
}

func TestMemTableRefUnref(t *testing.T) {
	m := New(0, nil)
	m.Ref()
	require.False(t, m.Unref(), "1st of 2 Unref calls")
	require.True(t, m.Unref(), "2nd of 2 Unref calls")
}

func TestMemTableIteratorOrdering(t *testing.T) {
	m := New(0, nil)
	entries := []struct {
		key  string
		seq  base.SeqNum
		kind base.InternalKeyKind
	}{
		{"b", 1, base.InternalKeyKindSet},
		{"a", 2, base.InternalKeyKindSet},
		{"a", 1, base.InternalKeyKindSet},
		{"c", 3, base.InternalKeyKindSet},
	}
	for _, e := range entries {
		require.NoErrorf(t, m.Add(e.seq, e.kind, []byte(e.key), []byte("v")), "Add(%q, %d)", e.key, e.seq)
	}

	it := m.NewIterator()
	require.False(t, it.Valid(), "freshly-created iterator should not be valid")

	// Ascending user key; for "a" the higher sequence number (2) comes
	// before the lower one (1).
	want := []struct {
		key string
		seq base.SeqNum
	}{
		{"a", 2}, {"a", 1}, {"b", 1}, {"c", 3},
	}
	i := 0
	for valid := it.First(); valid; valid = it.Next() {
		require.Less(t, i, len(want), "too many entries")
		k := it.Key()
		require.Equalf(t, want[i].key, string(k.UserKey), "entry %d", i)
		require.Equalf(t, want[i].seq, k.SeqNum(), "entry %d", i)
		i++
	}
	require.Equal(t, len(want), i)
}

func TestKeyConvertingIterator(t *testing.T) {
	m := New(0, nil)
	require.NoError(t, m.Add(1, base.InternalKeyKindSet, []byte("x"), []byte("v")))

	k := NewKeyConvertingIterator(m.NewIterator())
	require.True(t, k.First())
	require.Equal(t, "x", string(k.Key()))
	require.Equal(t, base.InternalKeyKindSet, k.Kind())
	require.NoError(t, k.Error())
}
