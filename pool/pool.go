// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"github.com/luxfi/finality/artifact"
	"github.com/luxfi/finality/timesource"
)

// Pool owns the two partitions consensus operates over. It is owned
// exclusively by one worker thread (the processor manager's goroutine);
// reads by subcomponents happen through the read-only PoolReader view
// during that same goroutine's cycle (spec §5).
type Pool struct {
	Validated   *Section
	Unvalidated *Section
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{
		Validated:   NewSection(),
		Unvalidated: NewSection(),
	}
}

// GetBlock resolves a block by the hash of its proposal's block, scanning
// validated proposals at the given height. Parents are always resolved
// by explicit hash equality, never by tip-bucket index position (DESIGN
// NOTES open question 1).
func (p *Pool) GetBlock(hash artifact.Hash, height uint64) (artifact.Block, bool) {
	if hash == artifact.GenesisHash {
		return artifact.Block{}, false
	}
	for _, prop := range p.Validated.BlockProposalsAt(height) {
		if prop.BlockHash() == hash {
			return prop.Block, true
		}
	}
	return artifact.Block{}, false
}

// Apply applies a change set atomically. It returns whether any change
// was applied (driving the StateChanged signal) and the list of
// artifacts rejected as invalid, for the caller to surface to its error
// channel/logger.
func (p *Pool) Apply(changes ChangeSet, now timesource.Time) (changed bool, invalids []HandleInvalid) {
	for _, action := range changes {
		switch a := action.(type) {
		case AddToValidated:
			if p.Validated.Insert(a.Message, now) {
				changed = true
			}
		case MoveToValidated:
			hash := a.Message.ContentHash()
			if p.Unvalidated.Remove(hash) {
				changed = true
			}
			if p.Validated.Insert(a.Message, now) {
				changed = true
			}
		case RemoveFromUnvalidated:
			if p.Unvalidated.Remove(a.Hash) {
				changed = true
			}
		case HandleInvalid:
			if p.Unvalidated.Remove(a.Hash) {
				changed = true
			}
			invalids = append(invalids, a)
		}
	}
	return changed, invalids
}
