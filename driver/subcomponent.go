// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

// Package driver implements the consensus driver: the fixed round-robin
// over subcomponents that converts pool state into a ChangeSet every
// cycle (spec §4.11).
package driver

import (
	"github.com/luxfi/finality/pool"
	"github.com/luxfi/finality/timesource"
)

// Subcomponent is the shape every pipeline stage (block-maker, notary,
// aggregator, acknowledger, goodifier, finalizer, validator) satisfies.
// Replica identity and subnet parameters are passed into each concrete
// subcomponent at construction time, never read from process-wide
// state (DESIGN NOTES §9).
type Subcomponent interface {
	// Name identifies the subcomponent for logging.
	Name() string
	// Run derives this cycle's contribution to the change set from the
	// current pool snapshot and latched time.
	Run(reader *pool.Reader, ts timesource.TimeSource) pool.ChangeSet
}
