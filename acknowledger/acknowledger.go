// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

// Package acknowledger implements the Consensus-on-Demand fast path
// (spec §4.7): once an ack quorum agrees on a block whose parent is
// already finalized, it emits the notarization and finalization for
// that block in the same cycle, skipping the classical ICC round trip.
package acknowledger

import (
	"fmt"

	"github.com/luxfi/log"

	"github.com/luxfi/finality/artifact"
	"github.com/luxfi/finality/params"
	"github.com/luxfi/finality/pool"
	"github.com/luxfi/finality/timesource"
)

// Acknowledger runs only under Consensus-on-Demand. Running it under ICC
// configuration is an internal invariant breach: the driver never
// schedules one when CoD is off, but Run panics rather than silently
// diverge if it is ever invoked anyway (spec §7, error kind 4).
type Acknowledger struct {
	p   params.SubnetParams
	log log.Logger
}

// New returns an Acknowledger for the given subnet parameters.
func New(p params.SubnetParams, logger log.Logger) *Acknowledger {
	return &Acknowledger{p: p, log: logger.With("component", "acknowledger")}
}

// Name identifies this subcomponent for logging.
func (a *Acknowledger) Name() string { return "acknowledger" }

// Run implements driver.Subcomponent.
func (a *Acknowledger) Run(reader *pool.Reader, _ timesource.TimeSource) pool.ChangeSet {
	if !a.p.ConsensusOnDemand {
		panic(fmt.Sprintf("acknowledger: invoked under non-CoD configuration: %+v", a.p))
	}

	finalizedHeight := reader.FinalizedHeight()
	notarizedHeight := reader.NotarizedHeight()
	quorum := a.p.AckQuorum()

	for h := finalizedHeight + 1; h <= notarizedHeight+1; h++ {
		groups := make(map[artifact.Hash]map[artifact.ReplicaID]struct{})
		parentOf := make(map[artifact.Hash]artifact.Hash)
		var order []artifact.Hash
		for _, s := range reader.SharesAtHeight(h) {
			if !s.IsAck {
				continue
			}
			if groups[s.BlockHash] == nil {
				groups[s.BlockHash] = make(map[artifact.ReplicaID]struct{})
				parentOf[s.BlockHash] = s.ParentHash
				order = append(order, s.BlockHash)
			}
			groups[s.BlockHash][s.Signer] = struct{}{}
		}

		var winner artifact.Hash
		found := false
		for _, hash := range order {
			if len(groups[hash]) < quorum {
				continue
			}
			if !a.parentFinalized(reader, h-1, parentOf[hash]) {
				continue
			}
			if !found || hash < winner {
				winner, found = hash, true
			}
		}
		if !found {
			continue
		}

		signers := make([]artifact.ReplicaID, 0, len(groups[winner]))
		for s := range groups[winner] {
			signers = append(signers, s)
		}

		a.log.Debug("ack quorum reached, fast-finalizing", "height", h, "block_hash", winner)
		return pool.ChangeSet{
			pool.AddToValidated{Message: artifact.NewNotarization(h, winner, signers)},
			pool.AddToValidated{Message: artifact.NewFinalization(h, winner, signers)},
		}
	}
	return nil
}

// parentFinalized reports whether parentHash is the finalized block at
// parentHeight, or is genesis (which is always finalized).
func (a *Acknowledger) parentFinalized(reader *pool.Reader, parentHeight uint64, parentHash artifact.Hash) bool {
	if parentHash == artifact.GenesisHash {
		return true
	}
	finalizedHash, ok := reader.FinalizedBlockHashAtHeight(parentHeight)
	return ok && finalizedHash == parentHash
}
