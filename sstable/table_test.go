// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package sstable

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eagle-yw/leveldb/bloom"
	"github.com/eagle-yw/leveldb/internal/base"
)

// memFile is an in-memory ReadableFile/io.Writer used to round-trip a table
// without touching a real filesystem.
type memFile struct {
	buf []byte
}

func (f *memFile) Write(p []byte) (int, error) {
	f.buf = append(f.buf, p...)
	return len(p), nil
}

func (f *memFile) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(f.buf)) {
		return 0, fmt.Errorf("ReadAt: offset %d out of range", off)
	}
	n := copy(p, f.buf[off:])
	if n < len(p) {
		return n, fmt.Errorf("ReadAt: short read")
	}
	return n, nil
}

func (f *memFile) Size() (int64, error) { return int64(len(f.buf)), nil }

func buildTable(t *testing.T, opts *base.Options, keys []string, values [][]byte) *memFile {
	t.Helper()
	f := &memFile{}
	w := NewWriter(f, opts)
	for i, k := range keys {
		ikey := base.MakeInternalKey([]byte(k), base.SeqNum(i+1), base.InternalKeyKindSet)
		require.NoErrorf(t, w.Add(ikey.EncodeTrailer(), values[i]), "Add(%q)", k)
	}
	require.NoError(t, w.Finish())
	return f
}

func TestFooterRoundTrip(t *testing.T) {
	f := footer{
		metaindexHandle: blockHandle{offset: 100, length: 20},
		indexHandle:     blockHandle{offset: 200, length: 40},
	}
	buf := f.encode()
	require.Len(t, buf, footerLen)
	decoded, err := decodeFooter(buf)
	require.NoError(t, err)
	require.Equal(t, f, decoded)
}

func TestFooterRejectsBadMagic(t *testing.T) {
	f := footer{}
	buf := f.encode()
	buf[footerLen-1] ^= 0xff
	_, err := decodeFooter(buf)
	require.Error(t, err)
}

func TestApproximateOffsetOf(t *testing.T) {
	keys := []string{"k01", "k02", "k03", "k04", "k05", "k06", "k07"}
	sizes := []int{5, 6, 10000, 200000, 300000, 6, 100000}
	values := make([][]byte, len(sizes))
	for i, n := range sizes {
		values[i] = bytes.Repeat([]byte{'x'}, n)
	}

	opts := &base.Options{BlockSize: 1024, Compression: base.NoCompression}
	f := buildTable(t, opts, keys, values)

	size, err := f.Size()
	require.NoError(t, err)
	table, err := Open(f, size, opts)
	require.NoError(t, err)

	testCases := []struct {
		key    string
		lo, hi uint64
	}{
		{"k04", 10000, 11000},
		{"k05", 210000, 211000},
		{"k06", 510000, 511000},
		{"xyz", 610000, 612000},
	}
	for _, tc := range testCases {
		got := table.ApproximateOffsetOf(base.MakeSearchKey([]byte(tc.key)).EncodeTrailer())
		require.GreaterOrEqualf(t, got, tc.lo, "ApproximateOffsetOf(%q)", tc.key)
		require.LessOrEqualf(t, got, tc.hi, "ApproximateOffsetOf(%q)", tc.key)
	}

	// ApproximateOffsetOf is monotonically non-decreasing in its argument.
	probes := []string{"k00", "k01", "k02", "k025", "k03", "k04", "k05", "k06", "k07", "xyz"}
	var prev uint64
	for i, p := range probes {
		got := table.ApproximateOffsetOf(base.MakeSearchKey([]byte(p)).EncodeTrailer())
		if i > 0 {
			require.GreaterOrEqualf(t, got, prev, "ApproximateOffsetOf(%q)", p)
		}
		prev = got
	}
}

func TestTableIterationRoundTrip(t *testing.T) {
	keys := []string{"apple", "banana", "cherry", "date", "egg", "fig", "grape"}
	values := make([][]byte, len(keys))
	for i := range values {
		values[i] = []byte(fmt.Sprintf("value-%d", i))
	}
	opts := &base.Options{BlockSize: 64, Compression: base.NoCompression}
	f := buildTable(t, opts, keys, values)
	size, _ := f.Size()
	table, err := Open(f, size, opts)
	require.NoError(t, err)

	it := table.NewIterator()
	i := 0
	for valid := it.First(); valid; valid = it.Next() {
		require.Less(t, i, len(keys), "too many entries")
		require.Equalf(t, keys[i], string(it.Key().UserKey), "entry %d", i)
		require.Equalf(t, string(values[i]), string(it.Value()), "entry %d", i)
		i++
	}
	require.Equal(t, len(keys), i)
	require.NoError(t, it.Error())

	require.True(t, it.SeekGE(base.MakeSearchKey([]byte("cherry")).EncodeTrailer()))
	require.Equal(t, "cherry", string(it.Key().UserKey))
}

func TestTableWithFilterPolicy(t *testing.T) {
	keys := []string{"alpha", "beta", "delta", "gamma"}
	values := make([][]byte, len(keys))
	for i := range values {
		values[i] = []byte("v")
	}
	opts := &base.Options{
		BlockSize:    64,
		Compression:  base.NoCompression,
		FilterPolicy: bloom.FilterPolicy(10),
	}
	f := buildTable(t, opts, keys, values)
	size, _ := f.Size()
	table, err := Open(f, size, opts)
	require.NoError(t, err)
	require.NotNil(t, table.filter, "filter should be non-nil after Open with a FilterPolicy")

	it := table.NewIterator()
	require.True(t, it.SeekGE(base.MakeSearchKey([]byte("beta")).EncodeTrailer()))
	require.Equal(t, "beta", string(it.Key().UserKey))
}
