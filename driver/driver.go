// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"github.com/luxfi/log"

	"github.com/luxfi/finality/pool"
	"github.com/luxfi/finality/timesource"
)

// Driver runs the fixed round-robin over subcomponents, short-circuiting
// on the first one to produce a non-empty change set each cycle.
// Round-robin fairness falls out of always starting the scan from the
// index after whichever subcomponent last produced a change (DESIGN
// NOTES §9), rather than always restarting at index 0.
type Driver struct {
	stages    []Subcomponent
	lastIdx   int
	lastStage string
	log       log.Logger
}

// New returns a Driver over stages, which MUST be supplied in the order
// notary, aggregator, acknowledger, goodifier, finalizer, validator,
// block-maker (spec §4.11). Subcomponents that are no-ops under the
// active finalization rule (e.g. the aggregator under CoD) are still
// passed in: they simply return empty change sets.
func New(stages []Subcomponent, logger log.Logger) *Driver {
	return &Driver{stages: stages, log: logger.With("component", "driver")}
}

// OnStateChange runs one cycle: it scans subcomponents starting from the
// index after whichever one short-circuited the previous cycle, and
// returns the first non-empty change set it finds.
func (d *Driver) OnStateChange(reader *pool.Reader, ts timesource.TimeSource) pool.ChangeSet {
	n := len(d.stages)
	for i := 0; i < n; i++ {
		idx := (d.lastIdx + i) % n
		stage := d.stages[idx]
		cs := stage.Run(reader, ts)
		if !cs.Empty() {
			d.log.Debug("subcomponent produced change set", "stage", stage.Name(), "actions", len(cs))
			d.lastIdx = (idx + 1) % n
			d.lastStage = stage.Name()
			return cs
		}
	}
	return nil
}

// LastStage returns the name of the subcomponent that produced the most
// recent non-empty change set, for callers (the processor manager) that
// need to attribute a resulting Finalization to the path that produced
// it (spec §6.5 FP vs DK classification).
func (d *Driver) LastStage() string { return d.lastStage }
