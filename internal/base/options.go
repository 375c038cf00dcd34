// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package base

// FilterPolicy builds and consults a filter (e.g. a bloom filter) over a
// set of keys, to cheaply prune negative lookups.
type FilterPolicy interface {
	// Name identifies the filter's encoding; it is persisted into the
	// table's meta-index so a reader can recognize which policy produced a
	// given filter block.
	Name() string
	// CreateFilter creates a filter over the given keys, appending its
	// encoded form to dst and returning the result.
	CreateFilter(dst []byte, keys [][]byte) []byte
	// KeyMayMatch reports whether key may be present in the set that filter
	// was built from. False negatives are not allowed; false positives are.
	KeyMayMatch(key, filter []byte) bool
}

// Compression identifies the per-block compressor.
type Compression int

const (
	// NoCompression stores block bytes verbatim.
	NoCompression Compression = 0
	// SnappyCompression compresses blocks with Snappy.
	SnappyCompression Compression = 1
	// ZstdCompression compresses blocks with Zstd.
	ZstdCompression Compression = 2
)

// String implements fmt.Stringer.
func (c Compression) String() string {
	switch c {
	case NoCompression:
		return "none"
	case SnappyCompression:
		return "snappy"
	case ZstdCompression:
		return "zstd"
	default:
		return "unknown"
	}
}

// Options collects the configuration consumed by the table writer and
// reader (the MemTable takes its comparer directly). create_if_missing, error_if_exists and
// write_buffer_size are consumed by the DB façade, which is out of scope
// for this core and so are not modeled here.
type Options struct {
	// Comparer orders user keys. Defaults to DefaultComparer.
	Comparer *Comparer
	// BlockSize is the target, pre-compression size of a data block.
	BlockSize int
	// BlockRestartInterval is the number of keys between restart points.
	BlockRestartInterval int
	// Compression selects the per-block compressor.
	Compression Compression
	// ZstdLevel is consulted only when Compression == ZstdCompression.
	ZstdLevel int
	// FilterPolicy, if non-nil, causes a filter block to be built and
	// consulted on point lookups.
	FilterPolicy FilterPolicy
}

// EnsureDefaults returns a copy of o with zero-valued fields replaced by
// their defaults.
func (o Options) EnsureDefaults() *Options {
	if o.Comparer == nil {
		o.Comparer = DefaultComparer
	}
	if o.BlockSize == 0 {
		o.BlockSize = 4096
	}
	if o.BlockRestartInterval == 0 {
		o.BlockRestartInterval = 16
	}
	return &o
}
