// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package blockmaker

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

type fixedPayload struct{ data []byte }

func (f fixedPayload) NextPayload(uint64) []byte { return f.data }

func newParams() params.SubnetParams {
	return params.SubnetParams{TotalNodesNumber: 4, ByzantineNodesNumber: 1}
}

func TestBlockMakerGenesisBootstrap(t *testing.T) {
	p := pool.New()
	bm := New(1, newParams(), fixedPayload{[]byte("x")}, loglib.NewNoOpLogger())

	cs := bm.Run(pool.NewReader(p), timesource.NewManualTimeSource(time.Unix(0, 0)))
	require.Len(t, cs, 1)

	prop := cs[0].(pool.AddToValidated).Message.(artifact.BlockProposal)
	require.EqualValues(t, 1, prop.Block.Height)
	require.EqualValues(t, 0, prop.Block.Rank)
	require.Equal(t, artifact.GenesisHash, prop.Block.ParentHash)
}

func TestBlockMakerNonBootstrapReplicaWaitsForRoundStart(t *testing.T) {
	p := pool.New()
	bm := New(2, newParams(), fixedPayload{[]byte("x")}, loglib.NewNoOpLogger())

	cs := bm.Run(pool.NewReader(p), timesource.NewManualTimeSource(time.Unix(0, 0)))
	require.Empty(t, cs)
}

func TestBlockMakerAbortsWhenOwnProposalExists(t *testing.T) {
	p := pool.New()
	existing := artifact.Block{ParentHash: artifact.GenesisHash, Height: 1, Rank: 0}
	p.Validated.Insert(artifact.BlockProposal{Block: existing, Signer: 1}, 1)

	bm := New(1, newParams(), fixedPayload{[]byte("x")}, loglib.NewNoOpLogger())
	cs := bm.Run(pool.NewReader(p), timesource.NewManualTimeSource(time.Unix(0, 0)))
	require.Empty(t, cs)
}

func TestBlockMakerAbortsWhenBetterProposalExists(t *testing.T) {
	p := pool.New()
	better := artifact.Block{ParentHash: artifact.GenesisHash, Height: 1, Rank: 0}
	p.Validated.Insert(artifact.BlockProposal{Block: better, Signer: 1}, 1)

	// replica 2's rank at h=1 is (1+2-2) mod 4 = 1, strictly worse than 0
	bm := New(2, newParams(), fixedPayload{[]byte("x")}, loglib.NewNoOpLogger())
	cs := bm.Run(pool.NewReader(p), timesource.NewManualTimeSource(time.Unix(0, 0)))
	require.Empty(t, cs)
}

func TestBlockMakerProposesAfterRankDelayOnceParentNotarized(t *testing.T) {
	p := pool.New()
	genesisChild := artifact.Block{ParentHash: artifact.GenesisHash, Height: 1, Rank: 0}
	p.Validated.Insert(artifact.BlockProposal{Block: genesisChild, Signer: 1}, 1000)
	p.Validated.Insert(artifact.NewNotarization(1, genesisChild.Hash(), []artifact.ReplicaID{1, 2, 3}), 1000)

	// replica 3's rank at h=2 is (2+3-2) mod 4 = 3
	bm := New(3, newParams(), fixedPayload{[]byte("y")}, loglib.NewNoOpLogger())
	reader := pool.NewReader(p)

	tooEarly := timesource.NewManualTimeSource(time.Unix(0, 1000))
	require.Empty(t, bm.Run(reader, tooEarly))

	late := timesource.NewManualTimeSource(time.Unix(0, 1000+3*int64(params.NotarizationUnitDelay)))
	cs := bm.Run(reader, late)
	require.Len(t, cs, 1)
	prop := cs[0].(pool.AddToValidated).Message.(artifact.BlockProposal)
	require.Equal(t, genesisChild.Hash(), prop.Block.ParentHash)
	require.EqualValues(t, 3, prop.Block.Rank)
}
