// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package block

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eagle-yw/leveldb/internal/base"
)

// TestZeroRestartPointBlock exercises a 4-byte block consisting of nothing
// but a restart count of zero: an edge case a well-behaved reader must
// tolerate rather than reject. Writer never produces one (Finish always
// records at least one restart point), but blocks from other
// implementations may.
func TestZeroRestartPointBlock(t *testing.T) {
	data := Block([]byte{0, 0, 0, 0})
	it := NewIterator(base.DefaultComparer.Compare, data)

	require.False(t, it.First())
	require.NoError(t, it.Error())
	require.False(t, it.Last())
	require.NoError(t, it.Error())
	require.False(t, it.SeekGE([]byte("foo")))
	require.NoError(t, it.Error())
}

func buildBlock(restartInterval int, entries [][2]string) Block {
	w := NewWriter(restartInterval)
	for _, e := range entries {
		w.Add([]byte(e[0]), []byte(e[1]))
	}
	return Block(w.Finish())
}

func testEntries(n int) [][2]string {
	entries := make([][2]string, n)
	for i := range entries {
		entries[i] = [2]string{fmt.Sprintf("key%04d", i), fmt.Sprintf("value%d", i)}
	}
	return entries
}

func TestForwardIterationRoundTrip(t *testing.T) {
	for _, restartInterval := range []int{1, 2, 16} {
		entries := testEntries(50)
		data := buildBlock(restartInterval, entries)
		it := NewIterator(base.DefaultComparer.Compare, data)

		i := 0
		for valid := it.First(); valid; valid = it.Next() {
			require.Lessf(t, i, len(entries), "restartInterval=%d: too many entries", restartInterval)
			require.Equalf(t, entries[i][0], string(it.Key()), "restartInterval=%d, entry %d", restartInterval, i)
			require.Equalf(t, entries[i][1], string(it.Value()), "restartInterval=%d, entry %d", restartInterval, i)
			i++
		}
		require.Equalf(t, len(entries), i, "restartInterval=%d", restartInterval)
		require.NoErrorf(t, it.Error(), "restartInterval=%d", restartInterval)
	}
}

func TestBackwardIterationRoundTrip(t *testing.T) {
	for _, restartInterval := range []int{1, 2, 16} {
		entries := testEntries(50)
		data := buildBlock(restartInterval, entries)
		it := NewIterator(base.DefaultComparer.Compare, data)

		i := len(entries) - 1
		for valid := it.Last(); valid; valid = it.Prev() {
			require.GreaterOrEqualf(t, i, 0, "restartInterval=%d: too many entries", restartInterval)
			require.Equalf(t, entries[i][0], string(it.Key()), "restartInterval=%d, entry %d", restartInterval, i)
			i--
		}
		require.Equalf(t, -1, i, "restartInterval=%d", restartInterval)
	}
}

func TestSeekGELandsOnLeastKeyGreaterOrEqual(t *testing.T) {
	for _, restartInterval := range []int{1, 2, 16} {
		entries := testEntries(50)
		data := buildBlock(restartInterval, entries)

		for _, tc := range []struct {
			target string
			want   string
			found  bool
		}{
			{"key0000", "key0000", true},
			{"key0025", "key0025", true},
			{"key0025a", "key0026", true},
			{"", "key0000", true},
			{"zzz", "", false},
		} {
			it := NewIterator(base.DefaultComparer.Compare, data)
			ok := it.SeekGE([]byte(tc.target))
			require.Equalf(t, tc.found, ok, "restartInterval=%d, SeekGE(%q)", restartInterval, tc.target)
			if !tc.found {
				continue
			}
			require.Equalf(t, tc.want, string(it.Key()), "restartInterval=%d, SeekGE(%q)", restartInterval, tc.target)
		}
	}
}

func TestSeekLTLandsOnGreatestKeyLess(t *testing.T) {
	entries := testEntries(50)
	data := buildBlock(4, entries)
	it := NewIterator(base.DefaultComparer.Compare, data)

	require.True(t, it.SeekLT([]byte("key0025")))
	require.Equal(t, "key0024", string(it.Key()))

	require.False(t, it.SeekLT([]byte("key0000")))

	require.True(t, it.SeekLT([]byte("zzz")))
	require.Equal(t, entries[len(entries)-1][0], string(it.Key()))
}

func TestPrefixCompressionRestartsBoundKeyIdentical(t *testing.T) {
	entries := [][2]string{{"a", "1"}, {"aa", "2"}, {"aaa", "3"}, {"b", "4"}}
	data := buildBlock(2, entries)
	it := NewIterator(base.DefaultComparer.Compare, data)
	var got []string
	for valid := it.First(); valid; valid = it.Next() {
		got = append(got, string(it.Key())+"="+string(it.Value()))
	}
	want := []string{"a=1", "aa=2", "aaa=3", "b=4"}
	require.Equal(t, want, got)
	require.Contains(t, string(data), "aaa", "expected at least one restart point to carry a full key")
}
