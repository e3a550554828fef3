// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"github.com/luxfi/finality/artifact"
	"github.com/luxfi/finality/timesource"
)

// Section is one of the pool's two partitions (validated or
// unvalidated). Each stores a content-hash-keyed map and one height
// index per message kind (spec §3 Pool / §4.2).
type Section struct {
	byHash    map[artifact.Hash]artifact.Message
	indexes   map[artifact.Kind]*HeightIndex
	timestamp map[artifact.Hash]timesource.Time // validated-section receive time, §4.2 get_timestamp
}

// NewSection returns an empty section.
func NewSection() *Section {
	s := &Section{
		byHash:    make(map[artifact.Hash]artifact.Message),
		indexes:   make(map[artifact.Kind]*HeightIndex),
		timestamp: make(map[artifact.Hash]timesource.Time),
	}
	for _, k := range []artifact.Kind{
		artifact.KindBlockProposal,
		artifact.KindNotarizationShare,
		artifact.KindNotarization,
		artifact.KindFinalizationShare,
		artifact.KindFinalization,
		artifact.KindGoodnessArtifact,
	} {
		s.indexes[k] = NewHeightIndex()
	}
	return s
}

// Insert adds msg to the section, keyed by its content hash. It returns
// false if a message with that hash already exists (spec invariant 1):
// insertion is otherwise idempotent. When at is non-zero it is recorded
// as the message's receive/validation timestamp.
func (s *Section) Insert(msg artifact.Message, at timesource.Time) bool {
	hash := msg.ContentHash()
	if _, exists := s.byHash[hash]; exists {
		return false
	}
	s.byHash[hash] = msg
	s.indexes[msg.Kind()].Insert(msg.MessageHeight(), hash)
	if at != 0 {
		s.timestamp[hash] = at
	}
	return true
}

// Remove deletes the message with the given hash, if present.
func (s *Section) Remove(hash artifact.Hash) bool {
	msg, ok := s.byHash[hash]
	if !ok {
		return false
	}
	delete(s.byHash, hash)
	delete(s.timestamp, hash)
	s.indexes[msg.Kind()].Remove(msg.MessageHeight(), hash)
	return true
}

// Get returns the message with the given hash.
func (s *Section) Get(hash artifact.Hash) (artifact.Message, bool) {
	msg, ok := s.byHash[hash]
	return msg, ok
}

// Timestamp returns the time a message was inserted into this section,
// if recorded.
func (s *Section) Timestamp(hash artifact.Hash) (timesource.Time, bool) {
	t, ok := s.timestamp[hash]
	return t, ok
}

// Index returns the height index for a given kind.
func (s *Section) Index(kind artifact.Kind) *HeightIndex {
	return s.indexes[kind]
}

// messagesAt rehydrates every message of a kind at a height from the
// content map via that kind's height index.
func (s *Section) messagesAt(kind artifact.Kind, height uint64) []artifact.Message {
	hashes := s.indexes[kind].Lookup(height)
	out := make([]artifact.Message, 0, len(hashes))
	for _, h := range hashes {
		if msg, ok := s.byHash[h]; ok {
			out = append(out, msg)
		}
	}
	return out
}

// BlockProposalsAt returns every validated block proposal at a height.
func (s *Section) BlockProposalsAt(height uint64) []artifact.BlockProposal {
	msgs := s.messagesAt(artifact.KindBlockProposal, height)
	out := make([]artifact.BlockProposal, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.(artifact.BlockProposal))
	}
	return out
}

// NotarizationSharesAt returns every notarization share at a height.
func (s *Section) NotarizationSharesAt(height uint64) []artifact.NotarizationShare {
	msgs := s.messagesAt(artifact.KindNotarizationShare, height)
	out := make([]artifact.NotarizationShare, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.(artifact.NotarizationShare))
	}
	return out
}

// NotarizationsAt returns every notarization certificate at a height.
func (s *Section) NotarizationsAt(height uint64) []artifact.Notarization {
	msgs := s.messagesAt(artifact.KindNotarization, height)
	out := make([]artifact.Notarization, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.(artifact.Notarization))
	}
	return out
}

// FinalizationSharesAt returns every finalization share at a height.
func (s *Section) FinalizationSharesAt(height uint64) []artifact.FinalizationShare {
	msgs := s.messagesAt(artifact.KindFinalizationShare, height)
	out := make([]artifact.FinalizationShare, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.(artifact.FinalizationShare))
	}
	return out
}

// FinalizationsAt returns every finalization certificate at a height.
func (s *Section) FinalizationsAt(height uint64) []artifact.Finalization {
	msgs := s.messagesAt(artifact.KindFinalization, height)
	out := make([]artifact.Finalization, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.(artifact.Finalization))
	}
	return out
}

// GoodnessArtifactsAt returns every goodness artifact at a height.
func (s *Section) GoodnessArtifactsAt(height uint64) []artifact.GoodnessArtifact {
	msgs := s.messagesAt(artifact.KindGoodnessArtifact, height)
	out := make([]artifact.GoodnessArtifact, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.(artifact.GoodnessArtifact))
	}
	return out
}

// AllMessages returns every message currently stored in the section, for
// draining (e.g. the validator scanning all of unvalidated).
func (s *Section) AllMessages() []artifact.Message {
	out := make([]artifact.Message, 0, len(s.byHash))
	for _, m := range s.byHash {
		out = append(out, m)
	}
	return out
}

// Len returns the number of messages currently stored in the section.
func (s *Section) Len() int {
	return len(s.byHash)
}
