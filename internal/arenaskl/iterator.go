/*
 * Copyright 2017 Dgraph Labs, Inc. and Contributors
 * Modifications copyright (C) 2017 Andy Kimball and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package arenaskl

// Iterator is an iterator over a Skiplist. The zero value is not usable;
// call Init or Skiplist.NewIter first. Iterator values may be copied.
type Iterator struct {
	list  *Skiplist
	arena *Arena
	nd    *node
}

// Init associates it with list and resets it to the (invalid) zero
// position.
func (it *Iterator) Init(list *Skiplist) {
	it.list = list
	it.arena = list.arena
	it.nd = nil
}

// Valid reports whether the iterator is positioned at an entry.
func (it *Iterator) Valid() bool { return it.nd != nil }

// Key returns the key at the current position.
func (it *Iterator) Key() []byte { return it.nd.getKey(it.arena) }

// Value returns the value at the current position.
func (it *Iterator) Value() []byte { return it.nd.getValue(it.arena) }

// Next advances to the next entry.
func (it *Iterator) Next() { it.setNode(it.list.getNext(it.nd, 0)) }

// Prev moves to the previous entry.
func (it *Iterator) Prev() { it.setNode(it.list.getPrev(it.nd, 0)) }

// SeekGE moves to the first entry whose key is >= key, returning whether
// such an entry exists.
func (it *Iterator) SeekGE(key []byte) bool {
	_, next, _ := it.seekForBaseSplice(key)
	it.setNode(next)
	return it.Valid()
}

// SeekLT moves to the last entry whose key is < key.
func (it *Iterator) SeekLT(key []byte) {
	prev, next, found := it.seekForBaseSplice(key)
	if found {
		it.setNode(it.list.getPrev(next, 0))
	} else {
		it.setNode(prev)
	}
}

// First moves to the least entry in the list.
func (it *Iterator) First() { it.setNode(it.list.getNext(it.list.head, 0)) }

// Last moves to the greatest entry in the list.
func (it *Iterator) Last() { it.setNode(it.list.getPrev(it.list.tail, 0)) }

func (it *Iterator) setNode(nd *node) {
	if nd == it.list.head || nd == it.list.tail {
		it.nd = nil
		return
	}
	it.nd = nd
}

func (it *Iterator) seekForBaseSplice(key []byte) (prev, next *node, found bool) {
	level := int(it.list.Height() - 1)
	prev = it.list.head
	for {
		prev, next, found = it.list.findSpliceForLevel(key, level, prev)
		if found {
			break
		}
		if level == 0 {
			break
		}
		level--
	}
	return
}
