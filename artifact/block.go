// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package artifact

// Block is immutable once created. The genesis block (height 0, rank 0)
// is never represented as a value of this type in the pool: it exists
// only as GenesisHash, implicitly notarized and finalized (spec
// invariant 3).
type Block struct {
	ParentHash Hash   `json:"parent_hash"`
	Payload    []byte `json:"payload"`
	Height     uint64 `json:"height"`
	Rank       uint8  `json:"rank"`
}

// Hash returns the content hash of the block itself. Parent links are
// resolved by comparing this value against other blocks' ParentHash,
// never by index position (DESIGN NOTES open question 1).
func (b Block) Hash() Hash {
	return computeHash(b)
}

// BlockProposal pairs a block with the replica that produced it. Its
// content hash (used as the pool key) is computed over the block hash
// and the signer, not over the block's own fields a second time.
type BlockProposal struct {
	Block  Block     `json:"block"`
	Signer ReplicaID `json:"signer"`
}

// BlockHash is the hash of the proposed block.
func (p BlockProposal) BlockHash() Hash {
	return p.Block.Hash()
}

// ContentHash is the pool key for this proposal.
func (p BlockProposal) ContentHash() Hash {
	return computeHash(struct {
		BlockHash Hash      `json:"block_hash"`
		Signer    ReplicaID `json:"signer"`
	}{p.BlockHash(), p.Signer})
}

// Kind identifies this artifact's variant for pool indexing and wire
// tagging.
func (BlockProposal) Kind() Kind { return KindBlockProposal }

// MessageHeight is the height this artifact is indexed under.
func (p BlockProposal) MessageHeight() uint64 { return p.Block.Height }
