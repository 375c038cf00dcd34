// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package base

import "bytes"

// Compare returns -1, 0, or +1 depending on whether a is less than, equal
// to, or greater than b.
type Compare func(a, b []byte) int

// Separator returns a key k such that a <= k < b, appending it to dst.
// Separator is allowed to return a itself if no shorter separator exists.
type Separator func(dst, a, b []byte) []byte

// Successor returns a key k such that k >= a, appending it to dst. Successor
// is allowed to return a itself if no shorter successor exists.
type Successor func(dst, a []byte) []byte

// Comparer defines a total ordering over the space of []byte keys, plus the
// hooks needed to generate short separator and successor keys for index
// entries.
type Comparer struct {
	Compare   Compare
	Separator Separator
	Successor Successor
	// Name is the name of the comparer, serialized into table metadata so
	// that a table opened with a different comparer can be detected.
	Name string
}

// DefaultComparer is the comparer used by LevelDB: lexicographic byte-wise
// ordering.
var DefaultComparer = &Comparer{
	Compare: bytes.Compare,

	Separator: func(dst, a, b []byte) []byte {
		i := SharedPrefixLen(a, b)
		if i >= len(a) || i >= len(b) {
			// a is a prefix of b (or they're equal); a is already shortest.
			return append(dst, a...)
		}
		aByte, bByte := a[i], b[i]
		if aByte < 0xff && aByte+1 < bByte {
			dst = append(dst, a[:i+1]...)
			dst[len(dst)-1]++
			return dst
		}
		return append(dst, a...)
	},

	Successor: func(dst, a []byte) []byte {
		for i := 0; i < len(a); i++ {
			c := a[i]
			if c != 0xff {
				dst = append(dst, a[:i+1]...)
				dst[len(dst)-1]++
				return dst
			}
		}
		// a is a run of 0xff bytes; no shorter successor exists.
		return append(dst, a...)
	},

	Name: "leveldb.BytewiseComparator",
}

// SharedPrefixLen returns the length of the common prefix of a and b.
func SharedPrefixLen(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
