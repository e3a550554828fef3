// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package artifact

import "github.com/luxfi/finality/timesource"

// GoodnessArtifact classifies the children of parent_hash at a height
// under the Consensus-on-Demand rule: which child (if any) currently has
// the most acknowledgements, and whether enough acks went to children
// other than the leader (more than f+p) that every child counts as good
// (spec §4.8).
type GoodnessArtifact struct {
	ParentHash           Hash          `json:"parent_hash"`
	Height               uint64        `json:"height"`
	MostAcksChild        Hash          `json:"most_acks_child"`
	MostAcksChildCount   int           `json:"most_acks_child_count"`
	TotalAcksForChildren int           `json:"total_acks_for_children"`
	AllChildrenGood      bool          `json:"all_children_good"`
	Timestamp            timesource.Time `json:"timestamp"`
}

func (g GoodnessArtifact) ContentHash() Hash     { return computeHash(g) }
func (GoodnessArtifact) Kind() Kind              { return KindGoodnessArtifact }
func (g GoodnessArtifact) MessageHeight() uint64 { return g.Height }
