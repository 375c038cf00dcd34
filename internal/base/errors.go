// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package base

import "github.com/cockroachdb/errors"

// Sentinel error kinds. IOError is deliberately absent: the core never
// constructs one, it only propagates whatever the injected reader/writer
// returned.
var (
	// ErrNotFound means a lookup did not find the requested key.
	ErrNotFound = errors.New("leveldb: not found")
	// ErrCorruption means an on-disk or in-memory structure failed a
	// well-formedness check: a bad checksum, a malformed block trailer, a
	// restart offset out of bounds, a truncated entry, a truncated internal
	// key, or an inconsistent WriteBatch count.
	ErrCorruption = errors.New("leveldb: corruption")
	// ErrNotSupported means a requested feature or encoding isn't
	// implemented by this build.
	ErrNotSupported = errors.New("leveldb: not supported")
	// ErrInvalidArgument means a caller-supplied argument violates an
	// invariant the core requires.
	ErrInvalidArgument = errors.New("leveldb: invalid argument")
)

// CorruptionErrorf formats a new error marked as ErrCorruption.
func CorruptionErrorf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrCorruption)
}
