// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

// Package finalizer implements the ICC-path finalizer subcomponent
// (spec §4.9): it publishes finalization shares for notarized blocks and
// aggregates them into finalizations once a quorum agrees.
package finalizer

import (
	"github.com/luxfi/log"

	"github.com/luxfi/finality/artifact"
	"github.com/luxfi/finality/params"
	"github.com/luxfi/finality/pool"
	"github.com/luxfi/finality/timesource"
)

// Finalizer is a no-op under Consensus-on-Demand, where the
// acknowledger finalizes directly.
type Finalizer struct {
	self artifact.ReplicaID
	p    params.SubnetParams
	log  log.Logger
}

// New returns a Finalizer for the given replica.
func New(self artifact.ReplicaID, p params.SubnetParams, logger log.Logger) *Finalizer {
	return &Finalizer{self: self, p: p, log: logger.With("component", "finalizer")}
}

// Name identifies this subcomponent for logging.
func (f *Finalizer) Name() string { return "finalizer" }

// Run implements driver.Subcomponent.
func (f *Finalizer) Run(reader *pool.Reader, _ timesource.TimeSource) pool.ChangeSet {
	if f.p.ConsensusOnDemand {
		return nil
	}

	finalizedHeight := reader.FinalizedHeight()
	notarizedHeight := reader.NotarizedHeight()

	for h := finalizedHeight + 1; h <= notarizedHeight; h++ {
		if len(reader.FinalizationsAtHeight(h)) > 0 {
			continue
		}

		if cs := f.tryAggregate(reader, h); cs != nil {
			return cs
		}
		if cs := f.tryPublishShare(reader, h); cs != nil {
			return cs
		}
	}
	return nil
}

// tryPublishShare emits this replica's finalization share for h's unique
// notarized block, if it hasn't already.
func (f *Finalizer) tryPublishShare(reader *pool.Reader, h uint64) pool.ChangeSet {
	blockHash, ok := soleNotarizedBlock(reader, h)
	if !ok {
		return nil
	}
	if _, present := reader.GetBlock(blockHash, h); !present {
		return nil
	}

	for _, s := range reader.FinalizationSharesAt(h) {
		if s.Signer == f.self && s.BlockHash == blockHash {
			return nil
		}
	}

	share := artifact.FinalizationShare{Height: h, BlockHash: blockHash, Signer: f.self}
	f.log.Debug("emitting finalization share", "height", h, "block_hash", blockHash)
	return pool.ChangeSet{pool.AddToValidated{Message: share}}
}

// tryAggregate combines finalization shares at h into a Finalization
// once a quorum agrees on the same block.
func (f *Finalizer) tryAggregate(reader *pool.Reader, h uint64) pool.ChangeSet {
	groups := make(map[artifact.Hash]map[artifact.ReplicaID]struct{})
	var order []artifact.Hash
	for _, s := range reader.FinalizationSharesAt(h) {
		if groups[s.BlockHash] == nil {
			groups[s.BlockHash] = make(map[artifact.ReplicaID]struct{})
			order = append(order, s.BlockHash)
		}
		groups[s.BlockHash][s.Signer] = struct{}{}
	}

	quorum := f.p.NotarizationQuorum()
	var winner artifact.Hash
	found := false
	for _, hash := range order {
		if len(groups[hash]) < quorum {
			continue
		}
		if !found || hash < winner {
			winner, found = hash, true
		}
	}
	if !found {
		return nil
	}

	signers := make([]artifact.ReplicaID, 0, len(groups[winner]))
	for s := range groups[winner] {
		signers = append(signers, s)
	}

	f.log.Debug("aggregated finalization", "height", h, "block_hash", winner)
	return pool.ChangeSet{pool.AddToValidated{Message: artifact.NewFinalization(h, winner, signers)}}
}

// soleNotarizedBlock returns the block hash at h if exactly one
// notarization exists there (spec §4.9: "a validated notarization exists
// for exactly one block").
func soleNotarizedBlock(reader *pool.Reader, h uint64) (artifact.Hash, bool) {
	notarizations := reader.NotarizationsAtHeight(h)
	if len(notarizations) != 1 {
		return "", false
	}
	return notarizations[0].BlockHash, true
}
