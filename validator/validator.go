// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

// Package validator implements the validator subcomponent (spec §4.10):
// it promotes unvalidated artifacts into the validated section, or
// discards them as invalid, and stamps receive timestamps for
// externally-produced finalizations.
//
// A production deployment MUST also verify signer membership (signer ∈
// 1..=n) and the signature marker against the declared signer; the
// source this specification was distilled from does not describe that
// check, so it is out of scope here (spec DESIGN NOTES, open question 3).
package validator

import (
	"github.com/luxfi/log"

	"github.com/luxfi/finality/artifact"
	"github.com/luxfi/finality/params"
	"github.com/luxfi/finality/pool"
	"github.com/luxfi/finality/timesource"
)

// Validator is constructed once per replica. Its height-violation check
// is bounded by the pool's finalized and notarized heights, not by the
// subnet parameters.
type Validator struct {
	p   params.SubnetParams
	log log.Logger
}

// New returns a Validator for the given subnet parameters.
func New(p params.SubnetParams, logger log.Logger) *Validator {
	return &Validator{p: p, log: logger.With("component", "validator")}
}

// Name identifies this subcomponent for logging.
func (v *Validator) Name() string { return "validator" }

// Run implements driver.Subcomponent.
func (v *Validator) Run(reader *pool.Reader, _ timesource.TimeSource) pool.ChangeSet {
	notarizedHeight := reader.NotarizedHeight()
	finalizedHeight := reader.FinalizedHeight()

	var changes pool.ChangeSet
	for _, msg := range reader.UnvalidatedMessages() {
		hash := msg.ContentHash()

		if msg.MessageHeight() < finalizedHeight {
			changes = append(changes, pool.HandleInvalid{Hash: hash, Reason: pool.ReasonHeightViolation})
			continue
		}
		if msg.MessageHeight() > notarizedHeight+1 {
			changes = append(changes, pool.HandleInvalid{Hash: hash, Reason: pool.ReasonHeightViolation})
			continue
		}
		if fin, ok := msg.(artifact.Finalization); ok && len(reader.FinalizationsAtHeight(fin.Height)) == 0 {
			// First observation of finality at this height, received
			// from a peer (the unvalidated section holds only ingress);
			// Pool.Apply stamps its receive time on this MoveToValidated,
			// and the processor manager records the height's DK latency
			// when it applies it (spec §6.5).
			v.log.Debug("received externally-produced finalization", "height", fin.Height)
		}

		changes = append(changes, pool.MoveToValidated{Message: msg})
	}
	return changes
}
