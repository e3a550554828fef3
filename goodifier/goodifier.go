// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

// Package goodifier implements the Consensus-on-Demand sibling
// classifier (spec §4.8): it distributes acks across the children of a
// parent and certifies which child (if any) is provably the canonical
// successor.
package goodifier

import (
	"fmt"
	"sort"

	"github.com/luxfi/log"

	"github.com/luxfi/finality/artifact"
	"github.com/luxfi/finality/utils/bag"
	safemath "github.com/luxfi/finality/utils/math"
	"github.com/luxfi/finality/params"
	"github.com/luxfi/finality/pool"
	"github.com/luxfi/finality/timesource"
)

// Goodifier runs only under Consensus-on-Demand (spec §7, error kind 4).
type Goodifier struct {
	p   params.SubnetParams
	log log.Logger
}

// New returns a Goodifier for the given subnet parameters.
func New(p params.SubnetParams, logger log.Logger) *Goodifier {
	return &Goodifier{p: p, log: logger.With("component", "goodifier")}
}

// Name identifies this subcomponent for logging.
func (g *Goodifier) Name() string { return "goodifier" }

// Run implements driver.Subcomponent.
func (g *Goodifier) Run(reader *pool.Reader, ts timesource.TimeSource) pool.ChangeSet {
	if !g.p.ConsensusOnDemand {
		panic(fmt.Sprintf("goodifier: invoked under non-CoD configuration: %+v", g.p))
	}

	h := reader.NotarizedHeight() + 1
	byParent := make(map[artifact.Hash]map[artifact.Hash]map[artifact.ReplicaID]struct{})
	var parentOrder []artifact.Hash
	for _, s := range reader.SharesAtHeight(h) {
		if !s.IsAck {
			continue
		}
		children := byParent[s.ParentHash]
		if children == nil {
			children = make(map[artifact.Hash]map[artifact.ReplicaID]struct{})
			byParent[s.ParentHash] = children
			parentOrder = append(parentOrder, s.ParentHash)
		}
		if children[s.BlockHash] == nil {
			children[s.BlockHash] = make(map[artifact.ReplicaID]struct{})
		}
		children[s.BlockHash][s.Signer] = struct{}{}
	}

	margin := g.p.GoodifierAllGoodMargin()
	singleQuorum := g.p.NotarizationQuorum()

	for _, parentHash := range parentOrder {
		children := byParent[parentHash]

		// childOrder fixes a deterministic (hash-ascending) scan so the
		// tie-break below doesn't depend on Go's randomized map
		// iteration order — Bag.Mode has the same non-determinism
		// problem, so the tally itself goes through a Bag but the
		// winner scan stays hand-rolled.
		childOrder := make([]artifact.Hash, 0, len(children))
		for child := range children {
			childOrder = append(childOrder, child)
		}
		sort.Slice(childOrder, func(i, j int) bool { return childOrder[i] < childOrder[j] })

		counts := bag.New[artifact.Hash]()
		totalAcks := 0
		for _, child := range childOrder {
			n := len(children[child])
			counts.AddCount(child, n)
			totalAcks += n
		}

		var mostChild artifact.Hash
		mostCount := -1
		for _, child := range childOrder {
			if count := counts.Count(child); count > mostCount {
				mostChild, mostCount = child, count
			}
		}

		// mostCount can never exceed totalAcks by construction, but the
		// subtraction goes through the checked helper rather than risk a
		// silent wraparound if that invariant is ever violated.
		spread, err := safemath.Sub64(uint64(totalAcks), uint64(mostCount))
		if err != nil {
			panic(fmt.Sprintf("goodifier: mostCount %d exceeds totalAcks %d", mostCount, totalAcks))
		}
		allGood := int(spread) > margin
		singleGood := !allGood && totalAcks >= singleQuorum

		prior, hasPrior := reader.LatestGoodnessArtifact(parentHash, h)
		if hasPrior && prior.AllChildrenGood {
			continue // already all-good; spec §4.8 update semantics: no further update
		}
		if !allGood && !singleGood {
			continue
		}
		if hasPrior && !allGood && prior.MostAcksChild == mostChild {
			continue // leader unchanged since last single-good emission
		}

		artifactOut := artifact.GoodnessArtifact{
			ParentHash:           parentHash,
			Height:               h,
			MostAcksChild:        mostChild,
			MostAcksChildCount:   mostCount,
			TotalAcksForChildren: totalAcks,
			AllChildrenGood:      allGood,
			Timestamp:            ts.Now(),
		}
		g.log.Debug("emitting goodness artifact", "parent_hash", parentHash, "height", h, "all_good", allGood)
		return pool.ChangeSet{pool.AddToValidated{Message: artifactOut}}
	}
	return nil
}
