// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

// Package blockmaker implements the block-maker subcomponent (spec
// §4.4): it proposes a block at notarized_height+1 once this replica's
// rank-dependent delay has elapsed and no better proposal exists yet.
package blockmaker

import (
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/finality/artifact"
	"github.com/luxfi/finality/params"
	"github.com/luxfi/finality/pool"
	"github.com/luxfi/finality/timesource"
)

// PayloadSource supplies the opaque bytes a newly proposed block should
// carry. The core treats payloads as opaque (spec §1 Non-goals); the
// caller plugs in whatever application data the replicated state
// machine wants proposed next.
type PayloadSource interface {
	NextPayload(height uint64) []byte
}

// BlockMaker is constructed once per replica with its identity, subnet
// parameters, and payload source fixed.
type BlockMaker struct {
	self    artifact.ReplicaID
	p       params.SubnetParams
	payload PayloadSource
	log     log.Logger
}

// New returns a BlockMaker for the given replica.
func New(self artifact.ReplicaID, p params.SubnetParams, payload PayloadSource, logger log.Logger) *BlockMaker {
	return &BlockMaker{self: self, p: p, payload: payload, log: logger.With("component", "blockmaker")}
}

// Name identifies this subcomponent for logging.
func (b *BlockMaker) Name() string { return "blockmaker" }

// Run implements driver.Subcomponent.
func (b *BlockMaker) Run(reader *pool.Reader, ts timesource.TimeSource) pool.ChangeSet {
	notarizedHeight := reader.NotarizedHeight()
	h := notarizedHeight + 1

	parentHash, _, ok := reader.NotarizedBlockAtHeight(notarizedHeight)
	if !ok {
		return nil
	}

	ownRank := b.self.Rank(h, b.p.TotalNodesNumber)

	proposals := reader.ProposalsAtHeight(h)
	for _, prop := range proposals {
		if prop.Signer == b.self {
			return nil // already proposed at this height
		}
		if prop.Block.Rank < ownRank {
			return nil // a strictly better proposal already exists
		}
	}

	roundStart, haveRoundStart := reader.RoundStart(h)
	switch {
	case haveRoundStart:
		// normal case
	case h == 1 && b.self == 1:
		// genesis bootstrap: the sole rank-0 replica may propose
		// immediately with no prior notarization to time against (spec
		// §4.4).
		roundStart = ts.Now()
	default:
		return nil
	}

	delay := time.Duration(ownRank) * params.NotarizationUnitDelay
	if ts.Now() < roundStart.Add(delay) {
		return nil
	}

	block := artifact.Block{
		ParentHash: parentHash,
		Payload:    b.payload.NextPayload(h),
		Height:     h,
		Rank:       ownRank,
	}
	proposal := artifact.BlockProposal{Block: block, Signer: b.self}

	b.log.Debug("proposing block", "height", h, "rank", ownRank, "block_hash", block.Hash())
	return pool.ChangeSet{pool.AddToValidated{Message: proposal}}
}
