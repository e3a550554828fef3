// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/finality/artifact"
	loglib "github.com/luxfi/finality/log"
	"github.com/luxfi/finality/pool"
	"github.com/luxfi/finality/timesource"
)

// stubStage is a test double satisfying Subcomponent.
type stubStage struct {
	name string
	cs   pool.ChangeSet
	runs int
}

func (s *stubStage) Name() string { return s.name }
func (s *stubStage) Run(*pool.Reader, timesource.TimeSource) pool.ChangeSet {
	s.runs++
	return s.cs
}

func TestDriverShortCircuitsOnFirstNonEmptyChangeSet(t *testing.T) {
	share := artifact.NotarizationShare{Height: 1, BlockHash: "h", Signer: 1}
	a := &stubStage{name: "a"}
	b := &stubStage{name: "b", cs: pool.ChangeSet{pool.AddToValidated{Message: share}}}
	c := &stubStage{name: "c"}

	d := New([]Subcomponent{a, b, c}, loglib.NewNoOpLogger())
	reader := pool.NewReader(pool.New())
	ts := timesource.NewManualTimeSource(time.Now())

	cs := d.OnStateChange(reader, ts)
	require.Len(t, cs, 1)
	require.Equal(t, 1, a.runs)
	require.Equal(t, 1, b.runs)
	require.Equal(t, 0, c.runs) // short-circuited before reaching c
}

func TestDriverResumesAfterLastSuccessfulStage(t *testing.T) {
	share := artifact.NotarizationShare{Height: 1, BlockHash: "h", Signer: 1}
	a := &stubStage{name: "a", cs: pool.ChangeSet{pool.AddToValidated{Message: share}}}
	b := &stubStage{name: "b"}

	d := New([]Subcomponent{a, b}, loglib.NewNoOpLogger())
	reader := pool.NewReader(pool.New())
	ts := timesource.NewManualTimeSource(time.Now())

	d.OnStateChange(reader, ts) // a fires, next scan starts at b
	d.OnStateChange(reader, ts)
	require.Equal(t, 2, a.runs)
	require.Equal(t, 1, b.runs)
}

func TestDriverReturnsNilWhenNoStageProducesChanges(t *testing.T) {
	a := &stubStage{name: "a"}
	d := New([]Subcomponent{a}, loglib.NewNoOpLogger())
	cs := d.OnStateChange(pool.NewReader(pool.New()), timesource.NewManualTimeSource(time.Now()))
	require.True(t, cs.Empty())
}
