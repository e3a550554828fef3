// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

// Package pool implements the artifact pool: two in-memory partitions
// (validated, unvalidated), each with one height index per message
// kind, plus the read-only derived queries a PoolReader exposes to
// consensus subcomponents.
package pool

import (
	"sort"

	"github.com/luxfi/finality/artifact"
	"github.com/luxfi/finality/utils/set"
)

// HeightIndex maps height to the set of content hashes of messages of
// one kind stored at that height. Grounded on the teacher's
// utils/set.Set for membership, with buckets evicted the moment they
// empty (spec §4.1).
type HeightIndex struct {
	buckets map[uint64]set.Set[artifact.Hash]
}

// NewHeightIndex returns an empty height index.
func NewHeightIndex() *HeightIndex {
	return &HeightIndex{buckets: make(map[uint64]set.Set[artifact.Hash])}
}

// Insert records hash at height h. It returns false if hash was already
// present at that height.
func (idx *HeightIndex) Insert(h uint64, hash artifact.Hash) bool {
	bucket, ok := idx.buckets[h]
	if !ok {
		bucket = set.NewSet[artifact.Hash](1)
		idx.buckets[h] = bucket
	} else if bucket.Contains(hash) {
		return false
	}
	bucket.Add(hash)
	return true
}

// Remove deletes hash from height h. It returns false if hash was not
// present. The bucket itself is deleted once it becomes empty.
func (idx *HeightIndex) Remove(h uint64, hash artifact.Hash) bool {
	bucket, ok := idx.buckets[h]
	if !ok || !bucket.Contains(hash) {
		return false
	}
	bucket.Remove(hash)
	if bucket.Len() == 0 {
		delete(idx.buckets, h)
	}
	return true
}

// Lookup returns the hashes stored at height h.
func (idx *HeightIndex) Lookup(h uint64) []artifact.Hash {
	bucket, ok := idx.buckets[h]
	if !ok {
		return nil
	}
	return bucket.List()
}

// Heights returns every height with at least one entry, ascending.
func (idx *HeightIndex) Heights() []uint64 {
	heights := make([]uint64, 0, len(idx.buckets))
	for h := range idx.buckets {
		heights = append(heights, h)
	}
	sort.Slice(heights, func(i, j int) bool { return heights[i] < heights[j] })
	return heights
}

// Range returns the hashes stored at every height in [lo, hi], keyed by
// height. The result is a map, so iterating it yields no particular
// height order.
func (idx *HeightIndex) Range(lo, hi uint64) map[uint64][]artifact.Hash {
	out := make(map[uint64][]artifact.Hash)
	for h, bucket := range idx.buckets {
		if h >= lo && h <= hi {
			out[h] = bucket.List()
		}
	}
	return out
}

// MaxHeight returns the highest height with at least one entry.
func (idx *HeightIndex) MaxHeight() (uint64, bool) {
	heights := idx.Heights()
	if len(heights) == 0 {
		return 0, false
	}
	return heights[len(heights)-1], true
}
