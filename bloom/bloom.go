// Copyright 2013 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

// Package bloom implements the classic LevelDB bloom filter FilterPolicy:
// a single bit array probed with a murmur-like hash and a constant
// per-probe delta, rather than the cache-line "full filter" format used by
// more recent LSM engines.
package bloom

import "fmt"

// FilterPolicy implements base.FilterPolicy using a bloom filter with the
// given number of bits per key.
type FilterPolicy int

// Name returns the identifier persisted in a table's meta-index, matching
// the name LevelDB itself uses so that filters built by this package are
// recognized by any compatible reader.
func (p FilterPolicy) Name() string { return "leveldb.BuiltinBloomFilter" }

// String implements fmt.Stringer.
func (p FilterPolicy) String() string { return fmt.Sprintf("bloom(%d)", int(p)) }

// numProbes returns the number of hash probes a filter built at the given
// bits-per-key should use.
func numProbes(bitsPerKey int) int {
	// 0.69 is approximately ln(2).
	k := int(float64(bitsPerKey) * 0.69)
	if k < 1 {
		k = 1
	}
	if k > 30 {
		k = 30
	}
	return k
}

// CreateFilter implements base.FilterPolicy.
func (p FilterPolicy) CreateFilter(dst []byte, keys [][]byte) []byte {
	bitsPerKey := int(p)
	if bitsPerKey < 0 {
		bitsPerKey = 0
	}
	k := numProbes(bitsPerKey)

	nBits := len(keys) * bitsPerKey
	// A very small key set would otherwise see an unacceptably high false
	// positive rate; enforce a floor on the filter's bit length.
	if nBits < 64 {
		nBits = 64
	}
	nBytes := (nBits + 7) / 8
	nBits = nBytes * 8

	n := len(dst)
	buf := make([]byte, nBytes+1)
	for _, key := range keys {
		h := hash(key)
		delta := h>>17 | h<<15
		for j := 0; j < k; j++ {
			bitPos := h % uint32(nBits)
			buf[bitPos/8] |= 1 << (bitPos % 8)
			h += delta
		}
	}
	buf[nBytes] = uint8(k)
	return append(dst[:n], buf...)
}

// KeyMayMatch implements base.FilterPolicy.
func (p FilterPolicy) KeyMayMatch(key, filter []byte) bool {
	if len(filter) < 2 {
		return false
	}
	k := filter[len(filter)-1]
	if k > 30 {
		// Reserved for future filter encodings; assume a match rather than
		// incorrectly excluding a key we can't interpret.
		return true
	}
	nBits := uint32(8 * (len(filter) - 1))
	h := hash(key)
	delta := h>>17 | h<<15
	for j := uint8(0); j < k; j++ {
		bitPos := h % nBits
		if filter[bitPos/8]&(1<<(bitPos%8)) == 0 {
			return false
		}
		h += delta
	}
	return true
}

// hash implements a hashing algorithm similar to the Murmur hash, matching
// the one LevelDB itself uses so filters are bit-for-bit reproducible.
func hash(b []byte) uint32 {
	const (
		seed = 0xbc9f1d34
		m    = 0xc6a4a793
	)
	h := uint32(seed) ^ uint32(len(b)*m)
	for ; len(b) >= 4; b = b[4:] {
		h += uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
		h *= m
		h ^= h >> 16
	}
	switch len(b) {
	case 3:
		h += uint32(b[2]) << 16
		fallthrough
	case 2:
		h += uint32(b[1]) << 8
		fallthrough
	case 1:
		h += uint32(b[0])
		h *= m
		h ^= h >> 24
	}
	return h
}
