// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

// Package artifact defines the wire-level data model of the notarization
// protocol: blocks, proposals, notarization/finalization shares and
// certificates, and the goodness classification used by the
// Consensus-on-Demand path. Every value is content-addressed by a
// hex SHA-256 digest of its canonical JSON encoding.
package artifact

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/luxfi/finality/utils/formatting"
)

// Hash is a 64-character lowercase hex SHA-256 digest, used as the sole
// reference between artifacts. The zero value is never a real digest.
type Hash string

// GenesisHash is the well-known hash standing in for the implicit
// genesis block, which is never stored in the pool (spec invariant 3).
var GenesisHash = Hash(strings.Repeat("0", 64))

// ReplicaID numbers a replica 1..=n, per §6.2.
type ReplicaID uint8

func (r ReplicaID) String() string {
	return fmt.Sprintf("replica-%d", uint8(r))
}

// Rank computes this replica's leader-rotation priority at height h for
// a subnet of n replicas: rank(h, i) = (h + i - 2) mod n.
func (r ReplicaID) Rank(height uint64, n int) uint8 {
	return uint8((height + uint64(r) - 2 + uint64(n)) % uint64(n))
}

// computeHash marshals v to canonical JSON and returns its hex SHA-256
// digest. Go's json.Marshal emits struct fields in declaration order,
// which is deterministic enough to serve as the "canonical
// serialization" the spec calls for, provided slice-typed fields (e.g.
// a signer list) are sorted by the caller before hashing.
func computeHash(v interface{}) Hash {
	data, err := json.Marshal(v)
	if err != nil {
		// Every type in this package is JSON-marshalable by construction;
		// a failure here means a programming error, not a runtime condition.
		panic(fmt.Sprintf("artifact: canonical encode failed: %v", err))
	}
	sum := sha256.Sum256(data)
	encoded, err := formatting.Encode(formatting.HexNC, sum[:])
	if err != nil {
		// HexNC never fails to encode a byte slice.
		panic(fmt.Sprintf("artifact: hex encode failed: %v", err))
	}
	return Hash(encoded)
}

// Valid reports whether h looks like a well-formed 64-character lowercase
// hex digest. It does not recompute or verify the digest against any
// content.
func (h Hash) Valid() bool {
	if len(h) != 64 {
		return false
	}
	return strings.IndexFunc(string(h), func(r rune) bool {
		return !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f')
	}) == -1
}
