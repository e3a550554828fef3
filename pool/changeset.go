// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import "github.com/luxfi/finality/artifact"

// Action is one mutation a subcomponent wants applied to the pool this
// cycle (spec §4.2).
type Action interface {
	isAction()
}

// AddToValidated inserts a locally-produced message directly into the
// validated section. It is also forwarded to the egress channel by the
// processor manager.
type AddToValidated struct {
	Message artifact.Message
}

func (AddToValidated) isAction() {}

// MoveToValidated promotes a message already sitting in unvalidated. It
// is not re-broadcast: the peer that gossiped it already has it.
type MoveToValidated struct {
	Message artifact.Message
}

func (MoveToValidated) isAction() {}

// RemoveFromUnvalidated discards an unvalidated message without
// promoting it (height violation, or superseded).
type RemoveFromUnvalidated struct {
	Hash artifact.Hash
}

func (RemoveFromUnvalidated) isAction() {}

// InvalidReason classifies why an artifact was rejected, surfaced to the
// error channel (spec §7).
type InvalidReason string

const (
	ReasonMalformed       InvalidReason = "malformed"
	ReasonHeightViolation InvalidReason = "height_violation"
	ReasonSignerViolation InvalidReason = "signer_violation"
)

// HandleInvalid discards an unvalidated artifact as invalid, recording
// why.
type HandleInvalid struct {
	Hash   artifact.Hash
	Reason InvalidReason
}

func (HandleInvalid) isAction() {}

// ChangeSet is the set of mutations a driver cycle produced. Changes are
// applied atomically, in order, by Pool.Apply.
type ChangeSet []Action

// Empty reports whether the change set contains no actions.
func (c ChangeSet) Empty() bool { return len(c) == 0 }
