// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

// Package notary implements the notary subcomponent (spec §4.5): it
// emits this replica's notarization share for the lowest-ranked proposal
// at the round under consideration, once the rank-dependent delay has
// elapsed.
package notary

import (
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/finality/artifact"
	"github.com/luxfi/finality/params"
	"github.com/luxfi/finality/pool"
	"github.com/luxfi/finality/timesource"
)

// Notary is constructed once per replica with its identity and subnet
// parameters fixed (DESIGN NOTES §9: no process-wide singletons).
type Notary struct {
	self artifact.ReplicaID
	p    params.SubnetParams
	log  log.Logger
}

// New returns a Notary for the given replica.
func New(self artifact.ReplicaID, p params.SubnetParams, logger log.Logger) *Notary {
	return &Notary{self: self, p: p, log: logger.With("component", "notary")}
}

// Name identifies this subcomponent for logging.
func (n *Notary) Name() string { return "notary" }

// Run implements driver.Subcomponent.
func (n *Notary) Run(reader *pool.Reader, ts timesource.TimeSource) pool.ChangeSet {
	h := reader.NotarizedHeight() + 1

	proposals := reader.ProposalsAtHeight(h)
	if len(proposals) == 0 {
		return nil
	}

	winner, ok := lowestRankedProposal(proposals)
	if !ok {
		return nil
	}

	roundStart, haveRoundStart := reader.RoundStart(h)
	if !haveRoundStart {
		if h != 1 {
			return nil
		}
		roundStart = 0
	}

	delay := time.Duration(winner.Block.Rank) * params.NotarizationUnitDelay
	if ts.Now() < roundStart.Add(delay) {
		return nil
	}

	blockHash := winner.BlockHash()
	if n.hasEmittedShareFor(reader, h, blockHash) {
		return nil
	}

	share := artifact.NotarizationShare{
		Height:    h,
		BlockHash: blockHash,
		Signer:    n.self,
	}
	if n.p.ConsensusOnDemand {
		share.ParentHash = winner.Block.ParentHash
		share.IsAck = !n.hasEmittedAnyShareAt(reader, h)
	}

	n.log.Debug("emitting notarization share", "height", h, "block_hash", blockHash, "is_ack", share.IsAck)
	return pool.ChangeSet{pool.AddToValidated{Message: share}}
}

// lowestRankedProposal picks the globally lowest-rank proposal at this
// height, tie-broken by block hash ascending — mirroring the
// block-maker's parent-selection rule (spec §4.4 step 2). This resolves
// the equivocation scenario (spec §8.4) to a single winner per cycle.
func lowestRankedProposal(proposals []artifact.BlockProposal) (artifact.BlockProposal, bool) {
	var best artifact.BlockProposal
	found := false
	for _, prop := range proposals {
		hash := prop.BlockHash()
		if !found || prop.Block.Rank < best.Block.Rank ||
			(prop.Block.Rank == best.Block.Rank && hash < best.BlockHash()) {
			best, found = prop, true
		}
	}
	return best, found
}

// hasEmittedShareFor reports whether this replica already has a
// validated share for this exact (height, block) pair (spec invariant 6).
func (n *Notary) hasEmittedShareFor(reader *pool.Reader, height uint64, blockHash artifact.Hash) bool {
	for _, s := range reader.SharesAtHeight(height) {
		if s.Signer == n.self && s.BlockHash == blockHash {
			return true
		}
	}
	return false
}

// hasEmittedAnyShareAt reports whether this replica has already emitted
// any share (for any block) at this height, determining whether a new
// share is this replica's ack (spec invariant 6).
func (n *Notary) hasEmittedAnyShareAt(reader *pool.Reader, height uint64) bool {
	for _, s := range reader.SharesAtHeight(height) {
		if s.Signer == n.self {
			return true
		}
	}
	return false
}
