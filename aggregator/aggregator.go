// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

// Package aggregator implements the ICC-path aggregator subcomponent
// (spec §4.6): it combines validated notarization shares into a full
// Notarization once a quorum agrees on the same block.
package aggregator

import (
	"github.com/luxfi/log"

	"github.com/luxfi/finality/artifact"
	"github.com/luxfi/finality/params"
	"github.com/luxfi/finality/pool"
	"github.com/luxfi/finality/timesource"
)

// Aggregator runs only under the classical ICC rule; the driver always
// schedules it, but it is a no-op when ConsensusOnDemand is set, since
// under CoD notarizations are produced by the acknowledger instead.
type Aggregator struct {
	p   params.SubnetParams
	log log.Logger
}

// New returns an Aggregator for the given subnet parameters.
func New(p params.SubnetParams, logger log.Logger) *Aggregator {
	return &Aggregator{p: p, log: logger.With("component", "aggregator")}
}

// Name identifies this subcomponent for logging.
func (a *Aggregator) Name() string { return "aggregator" }

// Run implements driver.Subcomponent.
func (a *Aggregator) Run(reader *pool.Reader, _ timesource.TimeSource) pool.ChangeSet {
	if a.p.ConsensusOnDemand {
		return nil
	}

	h := reader.NotarizedHeight() + 1
	groups := make(map[artifact.Hash]map[artifact.ReplicaID]struct{})
	var order []artifact.Hash
	for _, s := range reader.SharesAtHeight(h) {
		if groups[s.BlockHash] == nil {
			groups[s.BlockHash] = make(map[artifact.ReplicaID]struct{})
			order = append(order, s.BlockHash)
		}
		groups[s.BlockHash][s.Signer] = struct{}{}
	}

	quorum := a.p.NotarizationQuorum()
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

	a.log.Debug("aggregated notarization", "height", h, "block_hash", winner, "signers", len(signers))
	return pool.ChangeSet{pool.AddToValidated{Message: artifact.NewNotarization(h, winner, signers)}}
}
