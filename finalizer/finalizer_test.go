// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package finalizer

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

func iccParams() params.SubnetParams {
	return params.SubnetParams{TotalNodesNumber: 4, ByzantineNodesNumber: 1}
}

func TestFinalizerPublishesShareForSoleNotarizedBlock(t *testing.T) {
	p := pool.New()
	block := artifact.Block{ParentHash: artifact.GenesisHash, Height: 1, Rank: 0}
	p.Validated.Insert(artifact.BlockProposal{Block: block, Signer: 1}, 1)
	p.Validated.Insert(artifact.NewNotarization(1, block.Hash(), []artifact.ReplicaID{1, 2, 3}), 1)

	f := New(1, iccParams(), loglib.NewNoOpLogger())
	cs := f.Run(pool.NewReader(p), timesource.NewManualTimeSource(time.Now()))
	require.Len(t, cs, 1)

	share := cs[0].(pool.AddToValidated).Message.(artifact.FinalizationShare)
	require.Equal(t, block.Hash(), share.BlockHash)
}

func TestFinalizerAggregatesSharesAtQuorum(t *testing.T) {
	p := pool.New()
	block := artifact.Block{ParentHash: artifact.GenesisHash, Height: 1, Rank: 0}
	p.Validated.Insert(artifact.BlockProposal{Block: block, Signer: 1}, 1)
	p.Validated.Insert(artifact.NewNotarization(1, block.Hash(), []artifact.ReplicaID{1, 2, 3}), 1)
	for _, signer := range []artifact.ReplicaID{1, 2, 3} {
		p.Validated.Insert(artifact.FinalizationShare{Height: 1, BlockHash: block.Hash(), Signer: signer}, 1)
	}

	f := New(4, iccParams(), loglib.NewNoOpLogger())
	cs := f.Run(pool.NewReader(p), timesource.NewManualTimeSource(time.Now()))
	require.Len(t, cs, 1)

	fin := cs[0].(pool.AddToValidated).Message.(artifact.Finalization)
	require.Equal(t, block.Hash(), fin.BlockHash)
	require.Len(t, fin.Signers, 3)
}

func TestFinalizerSkipsAlreadyFinalizedHeights(t *testing.T) {
	p := pool.New()
	block := artifact.Block{ParentHash: artifact.GenesisHash, Height: 1, Rank: 0}
	p.Validated.Insert(artifact.NewNotarization(1, block.Hash(), []artifact.ReplicaID{1, 2, 3}), 1)
	p.Validated.Insert(artifact.NewFinalization(1, block.Hash(), []artifact.ReplicaID{1, 2, 3}), 1)

	f := New(1, iccParams(), loglib.NewNoOpLogger())
	cs := f.Run(pool.NewReader(p), timesource.NewManualTimeSource(time.Now()))
	require.Empty(t, cs)
}

func TestFinalizerIsNoopUnderConsensusOnDemand(t *testing.T) {
	f := New(1, params.SubnetParams{TotalNodesNumber: 4, ConsensusOnDemand: true}, loglib.NewNoOpLogger())
	cs := f.Run(pool.NewReader(pool.New()), timesource.NewManualTimeSource(time.Now()))
	require.Empty(t, cs)
}
