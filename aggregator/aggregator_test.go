// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/finality/artifact"
	loglib "github.com/luxfi/finality/log"
	"github.com/luxfi/finality/params"
	"github.com/luxfi/finality/pool"
	"github.com/luxfi/finality/timesource"
)

func TestAggregatorEmitsNotarizationAtQuorum(t *testing.T) {
	p := pool.New()
	block := artifact.Block{ParentHash: artifact.GenesisHash, Height: 1, Rank: 0}
	for _, signer := range []artifact.ReplicaID{1, 2, 3} {
		p.Validated.Insert(artifact.NotarizationShare{Height: 1, BlockHash: block.Hash(), Signer: signer}, 1)
	}

	sub := New(params.SubnetParams{TotalNodesNumber: 4, ByzantineNodesNumber: 1}, loglib.NewNoOpLogger())
	cs := sub.Run(pool.NewReader(p), timesource.NewManualTimeSource(time.Now()))
	require.Len(t, cs, 1)

	not := cs[0].(pool.AddToValidated).Message.(artifact.Notarization)
	require.Equal(t, block.Hash(), not.BlockHash)
	require.Len(t, not.Signers, 3)
}

func TestAggregatorNoQuorumYieldsNothing(t *testing.T) {
	p := pool.New()
	block := artifact.Block{ParentHash: artifact.GenesisHash, Height: 1, Rank: 0}
	p.Validated.Insert(artifact.NotarizationShare{Height: 1, BlockHash: block.Hash(), Signer: 1}, 1)

	sub := New(params.SubnetParams{TotalNodesNumber: 4, ByzantineNodesNumber: 1}, loglib.NewNoOpLogger())
	cs := sub.Run(pool.NewReader(p), timesource.NewManualTimeSource(time.Now()))
	require.Empty(t, cs)
}

func TestAggregatorSkippedUnderConsensusOnDemand(t *testing.T) {
	p := pool.New()
	block := artifact.Block{ParentHash: artifact.GenesisHash, Height: 1, Rank: 0}
	for _, signer := range []artifact.ReplicaID{1, 2, 3} {
		p.Validated.Insert(artifact.NotarizationShare{Height: 1, BlockHash: block.Hash(), Signer: signer}, 1)
	}

	sub := New(params.SubnetParams{TotalNodesNumber: 4, ByzantineNodesNumber: 1, ConsensusOnDemand: true}, loglib.NewNoOpLogger())
	cs := sub.Run(pool.NewReader(p), timesource.NewManualTimeSource(time.Now()))
	require.Empty(t, cs)
}
