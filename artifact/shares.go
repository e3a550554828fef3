// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package artifact

import "sort"

// NotarizationShare is a single replica's signed vote for a block at a
// height. Under the classical ICC rule only Height/BlockHash/Signer are
// meaningful. Under Consensus-on-Demand, ParentHash and IsAck are also
// populated: IsAck is true iff this is the first share the signer has
// emitted at this height (spec invariant 6).
type NotarizationShare struct {
	Height     uint64    `json:"height"`
	BlockHash  Hash      `json:"block_hash"`
	Signer     ReplicaID `json:"signer"`
	ParentHash Hash      `json:"parent_hash,omitempty"`
	IsAck      bool      `json:"is_ack,omitempty"`
}

// ContentHash is the pool key for this share.
func (s NotarizationShare) ContentHash() Hash { return computeHash(s) }

// Kind identifies this artifact's variant.
func (NotarizationShare) Kind() Kind { return KindNotarizationShare }

// MessageHeight is the height this artifact is indexed under.
func (s NotarizationShare) MessageHeight() uint64 { return s.Height }

// sortedSigners returns a sorted copy of signers, so that two
// certificates over the same quorum hash identically regardless of the
// order shares arrived in.
func sortedSigners(signers []ReplicaID) []ReplicaID {
	out := make([]ReplicaID, len(signers))
	copy(out, signers)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Notarization is a committee certificate that at least n-f replicas
// have seen and not rejected the referenced block. It does not by
// itself imply finality under the ICC rule.
type Notarization struct {
	Height    uint64      `json:"height"`
	BlockHash Hash        `json:"block_hash"`
	Signers   []ReplicaID `json:"signers"`
}

// NewNotarization builds a Notarization with a canonically sorted
// signer set.
func NewNotarization(height uint64, blockHash Hash, signers []ReplicaID) Notarization {
	return Notarization{Height: height, BlockHash: blockHash, Signers: sortedSigners(signers)}
}

func (n Notarization) ContentHash() Hash     { return computeHash(n) }
func (Notarization) Kind() Kind              { return KindNotarization }
func (n Notarization) MessageHeight() uint64 { return n.Height }

// FinalizationShare is a single replica's signature toward finalizing a
// notarized block (ICC path only).
type FinalizationShare struct {
	Height    uint64    `json:"height"`
	BlockHash Hash      `json:"block_hash"`
	Signer    ReplicaID `json:"signer"`
}

func (s FinalizationShare) ContentHash() Hash     { return computeHash(s) }
func (FinalizationShare) Kind() Kind              { return KindFinalizationShare }
func (s FinalizationShare) MessageHeight() uint64 { return s.Height }

// Finalization is an irreversibility certificate: once emitted for a
// height, that height's block never changes.
type Finalization struct {
	Height    uint64      `json:"height"`
	BlockHash Hash        `json:"block_hash"`
	Signers   []ReplicaID `json:"signers"`
}

// NewFinalization builds a Finalization with a canonically sorted signer
// set.
func NewFinalization(height uint64, blockHash Hash, signers []ReplicaID) Finalization {
	return Finalization{Height: height, BlockHash: blockHash, Signers: sortedSigners(signers)}
}

func (f Finalization) ContentHash() Hash     { return computeHash(f) }
func (Finalization) Kind() Kind              { return KindFinalization }
func (f Finalization) MessageHeight() uint64 { return f.Height }
