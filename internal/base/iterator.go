// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package base

// InternalIterator is the shared contract satisfied by the table's
// two-level iterator and the memtable iterator. The block iterator follows
// the same positioning rules but returns raw key bytes from Key, so it does
// not implement this interface. Initial state is always !Valid. Advancing past either
// end leaves the iterator !Valid with a nil Error, unless a corruption was
// encountered, in which case Error is non-nil.
type InternalIterator interface {
	// SeekGE moves to the first key >= key.
	SeekGE(key []byte) bool
	// SeekLT moves to the last key < key.
	SeekLT(key []byte) bool
	// First moves to the least key.
	First() bool
	// Last moves to the greatest key.
	Last() bool
	// Next moves to the next key. Returns false if there isn't one.
	Next() bool
	// Prev moves to the previous key. Returns false if there isn't one.
	Prev() bool
	// Key returns the decoded internal key at the current position. Only
	// valid to call when Valid returns true.
	Key() InternalKey
	// Value returns the value at the current position.
	Value() []byte
	// Valid returns whether the iterator is positioned at an entry.
	Valid() bool
	// Error returns a non-nil error if the iterator encountered a
	// corruption.
	Error() error
	// Close releases any resources held by the iterator.
	Close() error
}
