// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"github.com/luxfi/finality/artifact"
	"github.com/luxfi/finality/timesource"
)

// Reader is a read-only view over a Pool's validated section, exposing
// the derived queries subcomponents need. A Reader is only ever valid
// for the duration of a single driver cycle (spec §5): it holds no lock,
// since the pool is owned by the single worker goroutine that also
// constructs it.
type Reader struct {
	pool *Pool
}

// NewReader returns a Reader over pool.
func NewReader(pool *Pool) *Reader {
	return &Reader{pool: pool}
}

// NotarizedHeight returns the highest height with a validated
// Notarization. Height 0 (genesis) is implicitly notarized and is
// returned when no explicit notarization exists yet.
func (r *Reader) NotarizedHeight() uint64 {
	h, ok := r.pool.Validated.Index(artifact.KindNotarization).MaxHeight()
	if !ok {
		return 0
	}
	return h
}

// FinalizedHeight returns the highest height with a validated
// Finalization. Height 0 (genesis) is implicitly finalized and is
// returned when no explicit finalization exists yet.
func (r *Reader) FinalizedHeight() uint64 {
	h, ok := r.pool.Validated.Index(artifact.KindFinalization).MaxHeight()
	if !ok {
		return 0
	}
	return h
}

// FinalizedBlockHashAtHeight returns the block hash referenced by the
// validated finalization at height h, if one exists. Height 0 resolves
// to GenesisHash.
func (r *Reader) FinalizedBlockHashAtHeight(h uint64) (artifact.Hash, bool) {
	if h == 0 {
		return artifact.GenesisHash, true
	}
	finals := r.pool.Validated.FinalizationsAt(h)
	if len(finals) == 0 {
		return "", false
	}
	return finals[0].BlockHash, true
}

// FinalizedBlock returns the block referenced by the highest
// finalization in the validated section.
func (r *Reader) FinalizedBlock() (artifact.Block, bool) {
	h := r.FinalizedHeight()
	if h == 0 {
		return artifact.Block{}, false
	}
	hash, ok := r.FinalizedBlockHashAtHeight(h)
	if !ok {
		return artifact.Block{}, false
	}
	return r.pool.GetBlock(hash, h)
}

// GetTimestamp returns the wall-clock time a message became validated.
func (r *Reader) GetTimestamp(hash artifact.Hash) (timesource.Time, bool) {
	return r.pool.Validated.Timestamp(hash)
}

// NotarizedBlockAtHeight returns the notarized block at height h with
// the lowest rank, tie-broken by hash ascending, per the block-maker's
// parent-selection rule (spec §4.4 step 2). Height 0 resolves to the
// implicit genesis block with rank 0.
func (r *Reader) NotarizedBlockAtHeight(h uint64) (hash artifact.Hash, block artifact.Block, ok bool) {
	if h == 0 {
		return artifact.GenesisHash, artifact.Block{Height: 0, Rank: 0}, true
	}
	notarizations := r.pool.Validated.NotarizationsAt(h)
	var bestHash artifact.Hash
	var bestBlock artifact.Block
	found := false
	for _, n := range notarizations {
		b, blockOK := r.pool.GetBlock(n.BlockHash, h)
		if !blockOK {
			continue
		}
		if !found || b.Rank < bestBlock.Rank || (b.Rank == bestBlock.Rank && n.BlockHash < bestHash) {
			bestHash, bestBlock, found = n.BlockHash, b, true
		}
	}
	return bestHash, bestBlock, found
}

// FinalizationsAtHeight returns every validated finalization certificate
// at height h.
func (r *Reader) FinalizationsAtHeight(h uint64) []artifact.Finalization {
	return r.pool.Validated.FinalizationsAt(h)
}

// UnvalidatedMessages returns every artifact currently sitting in the
// unvalidated section, for the validator to scan.
func (r *Reader) UnvalidatedMessages() []artifact.Message {
	return r.pool.Unvalidated.AllMessages()
}

// NotarizationsAtHeight returns every validated notarization certificate
// at height h.
func (r *Reader) NotarizationsAtHeight(h uint64) []artifact.Notarization {
	return r.pool.Validated.NotarizationsAt(h)
}

// GetBlock resolves a block by hash among validated proposals at height.
func (r *Reader) GetBlock(hash artifact.Hash, height uint64) (artifact.Block, bool) {
	return r.pool.GetBlock(hash, height)
}

// SharesAtHeight returns every validated notarization share at height h.
func (r *Reader) SharesAtHeight(h uint64) []artifact.NotarizationShare {
	return r.pool.Validated.NotarizationSharesAt(h)
}

// ProposalsAtHeight returns every validated block proposal at height h.
func (r *Reader) ProposalsAtHeight(h uint64) []artifact.BlockProposal {
	return r.pool.Validated.BlockProposalsAt(h)
}

// RoundStart returns the minimum timestamp among validated notarizations
// at height h-1. It is undefined (ok=false) if none exist, including for
// h==0 and, prior to any notarization, h==1 — callers special-case the
// h==1 bootstrap themselves (spec §4.4).
func (r *Reader) RoundStart(h uint64) (timesource.Time, bool) {
	if h == 0 {
		return 0, false
	}
	notarizations := r.pool.Validated.NotarizationsAt(h - 1)
	if len(notarizations) == 0 {
		return 0, false
	}
	var min timesource.Time
	first := true
	for _, n := range notarizations {
		t, ok := r.GetTimestamp(n.ContentHash())
		if !ok {
			continue
		}
		if first || t < min {
			min, first = t, false
		}
	}
	if first {
		return 0, false
	}
	return min, true
}

// LatestGoodnessArtifact returns the most recently produced goodness
// artifact for a given parent at a given height, if one exists. An
// all-children-good artifact is final, so one is returned whenever any
// exists for that parent, even if another shares or exceeds its
// timestamp; otherwise the artifact with the latest timestamp is returned.
func (r *Reader) LatestGoodnessArtifact(parentHash artifact.Hash, height uint64) (artifact.GoodnessArtifact, bool) {
	candidates := r.pool.Validated.GoodnessArtifactsAt(height)
	var latest artifact.GoodnessArtifact
	found := false
	for _, g := range candidates {
		if g.ParentHash != parentHash {
			continue
		}
		if !found || (g.AllChildrenGood && !latest.AllChildrenGood) ||
			(g.AllChildrenGood == latest.AllChildrenGood && g.Timestamp > latest.Timestamp) {
			latest, found = g, true
		}
	}
	return latest, found
}
