// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found
// in the LICENSE file.

package base

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// SeqNum is a 56-bit sequence number. Sequence 0 is reserved; the maximum
// representable value is SeqNumMax.
type SeqNum uint64

const (
	// SeqNumZero is the reserved sequence number. Nothing in the core
	// rejects it: MemTable.Add accepts it, and a Batch whose base sequence
	// is 0 assigns it to its first record.
	SeqNumZero SeqNum = 0
	// SeqNumMax is the largest representable sequence number: (1<<56)-1.
	SeqNumMax SeqNum = 1<<56 - 1
)

// InternalKeyKind enumerates the value types the core distinguishes. Only
// the two kinds the write path produces are modeled; this is deliberately
// narrower than a full LSM engine's tombstone/merge vocabulary.
type InternalKeyKind uint8

const (
	// InternalKeyKindDelete marks a deletion of the associated user key.
	InternalKeyKindDelete InternalKeyKind = 0
	// InternalKeyKindSet marks a Put of the associated user key and value.
	InternalKeyKindSet InternalKeyKind = 1

	// InternalKeyKindMax is the greatest kind (equal to InternalKeyKindSet).
	// Search keys use it so that, at a given sequence number, they sort no
	// later than any real kind.
	InternalKeyKindMax InternalKeyKind = 1
)

// InternalKeyTrailer packs a sequence number and a kind into a single
// 64-bit word: trailer = seqNum<<8 | kind.
type InternalKeyTrailer uint64

// MakeTrailer combines a sequence number and kind into a trailer.
func MakeTrailer(seqNum SeqNum, kind InternalKeyKind) InternalKeyTrailer {
	return InternalKeyTrailer(seqNum)<<8 | InternalKeyTrailer(kind)
}

// SeqNum extracts the sequence number from a trailer.
func (t InternalKeyTrailer) SeqNum() SeqNum { return SeqNum(t >> 8) }

// Kind extracts the kind from a trailer.
func (t InternalKeyTrailer) Kind() InternalKeyKind { return InternalKeyKind(t & 0xff) }

// InternalKey is a user key tagged with a sequence number and kind. Its
// encoded form is user_key ++ little_endian_u64(trailer).
type InternalKey struct {
	UserKey []byte
	Trailer InternalKeyTrailer
}

// MakeInternalKey returns the InternalKey for the given user key, sequence
// number and kind.
func MakeInternalKey(userKey []byte, seqNum SeqNum, kind InternalKeyKind) InternalKey {
	return InternalKey{UserKey: userKey, Trailer: MakeTrailer(seqNum, kind)}
}

// MakeSearchKey returns an InternalKey suitable for seeking to the first
// entry for userKey, regardless of which sequence number or kind it was
// written with: it sorts before every real version of userKey, except a
// Set written at SeqNumMax, which it equals.
func MakeSearchKey(userKey []byte) InternalKey {
	return MakeInternalKey(userKey, SeqNumMax, InternalKeyKindMax)
}

// SeqNum returns the key's sequence number.
func (k InternalKey) SeqNum() SeqNum { return k.Trailer.SeqNum() }

// Kind returns the key's kind.
func (k InternalKey) Kind() InternalKeyKind { return k.Trailer.Kind() }

// Size returns the length of the encoded key.
func (k InternalKey) Size() int { return len(k.UserKey) + 8 }

// Encode writes the encoded form of k into buf, which must have length
// k.Size().
func (k InternalKey) Encode(buf []byte) {
	n := copy(buf, k.UserKey)
	binary.LittleEndian.PutUint64(buf[n:], uint64(k.Trailer))
}

// EncodeTrailer returns the encoded form of k as a newly allocated slice.
func (k InternalKey) EncodeTrailer() []byte {
	buf := make([]byte, k.Size())
	k.Encode(buf)
	return buf
}

// ErrCorruptInternalKey is returned by DecodeInternalKey when a slice is too
// short to hold a trailer.
var ErrCorruptInternalKey = errors.Mark(errors.New("leveldb: corrupt internal key"), ErrCorruption)

// DecodeInternalKey decodes an encoded internal key produced by Encode.
func DecodeInternalKey(encoded []byte) (InternalKey, error) {
	if len(encoded) < 8 {
		return InternalKey{}, ErrCorruptInternalKey
	}
	n := len(encoded) - 8
	trailer := binary.LittleEndian.Uint64(encoded[n:])
	return InternalKey{UserKey: encoded[:n], Trailer: InternalKeyTrailer(trailer)}, nil
}

// InternalCompare orders two internal keys: first by user key ascending
// under userCmp, then by sequence number descending, then by kind
// descending, so that for a fixed user key the freshest version sorts
// first.
func InternalCompare(userCmp Compare, a, b InternalKey) int {
	if c := userCmp(a.UserKey, b.UserKey); c != 0 {
		return c
	}
	if a.Trailer > b.Trailer {
		return -1
	}
	if a.Trailer < b.Trailer {
		return 1
	}
	return 0
}

// InternalKeyComparer wraps a user-supplied Comparer to compare encoded
// internal keys (user_key ++ trailer) by the InternalCompare order. Its
// Separator and Successor operate on the user-key portion only, re-tagging
// any shortened result with the maximum trailer so it still sorts correctly
// against every real version of the keys it was derived from.
func InternalKeyComparer(userCmp *Comparer) *Comparer {
	compare := func(a, b []byte) int {
		ak, bk := mustDecode(a), mustDecode(b)
		return InternalCompare(userCmp.Compare, ak, bk)
	}
	maxTrailer := MakeTrailer(SeqNumMax, InternalKeyKindMax)
	return &Comparer{
		Compare: compare,
		Separator: func(dst, a, b []byte) []byte {
			aUser, bUser := mustDecode(a).UserKey, mustDecode(b).UserKey
			sep := userCmp.Separator(nil, aUser, bUser)
			if len(sep) < len(aUser) && userCmp.Compare(aUser, sep) < 0 {
				dst = append(dst, sep...)
				return binary.LittleEndian.AppendUint64(dst, uint64(maxTrailer))
			}
			return append(dst, a...)
		},
		Successor: func(dst, a []byte) []byte {
			aUser := mustDecode(a).UserKey
			succ := userCmp.Successor(nil, aUser)
			if len(succ) < len(aUser) && userCmp.Compare(aUser, succ) < 0 {
				dst = append(dst, succ...)
				return binary.LittleEndian.AppendUint64(dst, uint64(maxTrailer))
			}
			return append(dst, a...)
		},
		Name: userCmp.Name + ".internal",
	}
}

func mustDecode(b []byte) InternalKey {
	k, err := DecodeInternalKey(b)
	if err != nil {
		// Callers only ever feed this already-validated encoded keys
		// produced by this package; a corrupt key here is a programmer
		// error, not a recoverable status.
		panic(err)
	}
	return k
}
