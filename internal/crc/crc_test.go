// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package crc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMaskRoundTrip(t *testing.T) {
	for _, s := range []string{"", "a", "hello world", "the quick brown fox"} {
		c := New([]byte(s))
		require.Equalf(t, c, Unmask(Mask(c)), "Unmask(Mask(%q))", s)
	}
}

func TestMaskNotIdentity(t *testing.T) {
	c := New([]byte("hello"))
	require.NotEqual(t, c, Mask(c))
}

func TestZeroesDoNotChecksumAsZero(t *testing.T) {
	// A buffer of zeros must not produce a masked checksum of zero; this is
	// the whole point of masking.
	zeros := make([]byte, 32)
	require.NotZero(t, Mask(New(zeros)))
}

func TestExtendMatchesConcatenation(t *testing.T) {
	a, b := []byte("hello, "), []byte("world")
	got := Extend(New(a), b)
	want := New(append(append([]byte(nil), a...), b...))
	require.Equal(t, want, got)
}
