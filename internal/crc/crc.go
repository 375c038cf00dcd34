// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

// Package crc implements the masked CRC32C checksum LevelDB stores in every
// block trailer.
package crc

import "hash/crc32"

var table = crc32.MakeTable(crc32.Castagnoli)

const maskDelta = 0xa282ead8

// New returns the CRC32C checksum of b.
func New(b []byte) uint32 {
	return crc32.Checksum(b, table)
}

// Extend returns the CRC32C checksum of the concatenation of the bytes
// whose checksum is crc and b.
func Extend(crc uint32, b []byte) uint32 {
	return crc32.Update(crc, table, b)
}

// Mask returns a masked representation of crc. LevelDB stores the masked
// value on disk rather than the raw CRC32C, so that a buffer of zeros
// doesn't produce a valid-looking checksum.
func Mask(crc uint32) uint32 {
	return ((crc >> 15) | (crc << 17)) + maskDelta
}

// Unmask reverses Mask.
func Unmask(masked uint32) uint32 {
	rot := masked - maskDelta
	return ((rot >> 17) | (rot << 15))
}
