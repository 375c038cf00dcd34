// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

// Package block implements the sorted, prefix-compressed, restart-indexed
// block codec shared by data blocks, the index block and the meta-index
// block of a table.
package block

import (
	"encoding/binary"

	"github.com/eagle-yw/leveldb/internal/base"
)

// Writer builds a single block: a sorted run of (key, value) pairs, each
// key prefix-compressed against the previous key, reset to a full key
// every RestartInterval entries.
type Writer struct {
	RestartInterval int

	buf      []byte
	restarts []uint32
	nEntries int
	prevKey  []byte
	tmp      [binary.MaxVarintLen64 * 3]byte
	finished bool
}

// NewWriter returns a Writer with the given restart interval. An interval
// <= 0 is treated as 1 (a restart point at every entry).
func NewWriter(restartInterval int) *Writer {
	if restartInterval <= 0 {
		restartInterval = 1
	}
	return &Writer{RestartInterval: restartInterval}
}

// Add appends a key/value pair to the block. key must compare strictly
// greater than the last added key under the block's comparator; this is
// the caller's responsibility to enforce; Add panics if called after
// Finish.
func (w *Writer) Add(key, value []byte) {
	if w.finished {
		panic("leveldb: Add called after Finish")
	}

	var shared int
	if w.nEntries%w.RestartInterval == 0 {
		w.restarts = append(w.restarts, uint32(len(w.buf)))
	} else {
		shared = base.SharedPrefixLen(w.prevKey, key)
	}
	unshared := len(key) - shared

	n := binary.PutUvarint(w.tmp[0:], uint64(shared))
	n += binary.PutUvarint(w.tmp[n:], uint64(unshared))
	n += binary.PutUvarint(w.tmp[n:], uint64(len(value)))
	w.buf = append(w.buf, w.tmp[:n]...)
	w.buf = append(w.buf, key[shared:]...)
	w.buf = append(w.buf, value...)

	w.prevKey = append(w.prevKey[:0], key...)
	w.nEntries++
}

// Empty reports whether no entries have been added.
func (w *Writer) Empty() bool { return w.nEntries == 0 }

// CurrentSizeEstimate returns a monotone lower bound on the size Finish
// will return.
func (w *Writer) CurrentSizeEstimate() int {
	n := len(w.buf)
	if !w.finished {
		n += 4*len(w.restarts) + 4
	}
	return n
}

// Finish appends the restart array and its count, and returns the complete
// block. The Writer must not be reused after calling Finish until Reset is
// called.
func (w *Writer) Finish() []byte {
	if w.finished {
		return w.buf
	}
	if len(w.restarts) == 0 {
		// An empty block still needs at least one restart point so a reader
		// can treat it uniformly; this mirrors every block LevelDB itself
		// ever produces, never a truly empty restart array.
		w.restarts = append(w.restarts, 0)
	}
	for _, r := range w.restarts {
		w.buf = binary.LittleEndian.AppendUint32(w.buf, r)
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(len(w.restarts)))
	w.finished = true
	return w.buf
}

// Reset clears the writer so it can build another block.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.restarts = w.restarts[:0]
	w.nEntries = 0
	w.prevKey = w.prevKey[:0]
	w.finished = false
}
