// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package goodifier

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

func codParams() params.SubnetParams {
	return params.SubnetParams{TotalNodesNumber: 4, ByzantineNodesNumber: 1, DisagreeingNodesNumber: 0, ConsensusOnDemand: true}
}

func ackShare(height uint64, parent, block artifact.Hash, signer artifact.ReplicaID) artifact.NotarizationShare {
	return artifact.NotarizationShare{Height: height, BlockHash: block, Signer: signer, ParentHash: parent, IsAck: true}
}

func TestGoodifierProgressesThroughSingleGoodThenAllGood(t *testing.T) {
	parent := artifact.Hash("parent")
	a := artifact.Hash("child-a")
	b := artifact.Hash("child-b")
	sub := New(codParams(), loglib.NewNoOpLogger())
	ts := timesource.NewManualTimeSource(time.Unix(0, 1))

	// round 1: A has 3 acks, B has 1 -> single-good(A): total=4 >= n-f=3
	p := pool.New()
	for i, signer := range []artifact.ReplicaID{1, 2, 3} {
		p.Validated.Insert(ackShare(1, parent, a, signer), timesource.Time(i+1))
	}
	p.Validated.Insert(ackShare(1, parent, b, 4), timesource.Time(4))

	cs := sub.Run(pool.NewReader(p), ts)
	require.Len(t, cs, 1)
	g1 := cs[0].(pool.AddToValidated).Message.(artifact.GoodnessArtifact)
	require.Equal(t, a, g1.MostAcksChild)
	require.False(t, g1.AllChildrenGood)
	p.Validated.Insert(g1, ts.Now())

	// round 2: A and B both reach 3 -> all-good: total-max = 6-3 = 3 > f+p = 1
	p.Validated.Insert(ackShare(1, parent, b, 1), timesource.Time(5))
	p.Validated.Insert(ackShare(1, parent, b, 2), timesource.Time(6))

	cs2 := sub.Run(pool.NewReader(p), ts)
	require.Len(t, cs2, 1)
	g2 := cs2[0].(pool.AddToValidated).Message.(artifact.GoodnessArtifact)
	require.True(t, g2.AllChildrenGood)
	p.Validated.Insert(g2, ts.Now())

	// round 3: more acks accumulate but all-good already certified: no update
	p.Validated.Insert(ackShare(1, parent, a, 4), timesource.Time(7))
	cs3 := sub.Run(pool.NewReader(p), ts)
	require.Empty(t, cs3)
}

func TestGoodifierPanicsUnderICCConfiguration(t *testing.T) {
	sub := New(params.SubnetParams{TotalNodesNumber: 4, ByzantineNodesNumber: 1, ConsensusOnDemand: false}, loglib.NewNoOpLogger())
	require.Panics(t, func() {
		sub.Run(pool.NewReader(pool.New()), timesource.NewManualTimeSource(time.Now()))
	})
}
