// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package artifact

import (
	"encoding/json"
	"fmt"
)

// Envelope is the top-level shape every message transmitted between
// replicas takes, per §6.3:
//
//	{ "ConsensusMessage": <tagged variant> } | { "KeepAliveMessage": null }
//
// Adapted from the teacher's codec package (plain encoding/json, a
// fixed current version) generalized to the tagged-union shape this
// wire format needs; the teacher's own CodecVersion gate is dropped
// since this format carries no version byte.
type Envelope struct {
	ConsensusMessage *taggedVariant  `json:"ConsensusMessage,omitempty"`
	KeepAliveMessage json.RawMessage `json:"KeepAliveMessage,omitempty"`
}

// taggedVariant holds exactly one populated field, discriminated by the
// JSON key present, mirroring a Rust externally-tagged enum.
type taggedVariant struct {
	BlockProposal     *BlockProposal     `json:"BlockProposal,omitempty"`
	NotarizationShare *NotarizationShare `json:"NotarizationShare,omitempty"`
	Notarization      *Notarization      `json:"Notarization,omitempty"`
	FinalizationShare *FinalizationShare `json:"FinalizationShare,omitempty"`
	Finalization      *Finalization      `json:"Finalization,omitempty"`
	GoodnessArtifact  *GoodnessArtifact  `json:"GoodnessArtifact,omitempty"`
}

// NewKeepAliveEnvelope returns the wire shape of a transport-level
// keep-alive, reflecting network_layer.rs's KeepAlive framing (see
// SPEC_FULL.md SUPPLEMENTED FEATURES). DecodeMessage reports it with
// ok=false and no Message; the processor manager never sees envelopes,
// only already-decoded Messages.
func NewKeepAliveEnvelope() Envelope {
	return Envelope{KeepAliveMessage: json.RawMessage("null")}
}

// EncodeMessage wraps a Message in its wire envelope.
func EncodeMessage(msg Message) (Envelope, error) {
	tv := &taggedVariant{}
	switch m := msg.(type) {
	case BlockProposal:
		tv.BlockProposal = &m
	case NotarizationShare:
		tv.NotarizationShare = &m
	case Notarization:
		tv.Notarization = &m
	case FinalizationShare:
		tv.FinalizationShare = &m
	case Finalization:
		tv.Finalization = &m
	case GoodnessArtifact:
		tv.GoodnessArtifact = &m
	default:
		return Envelope{}, fmt.Errorf("artifact: unknown message type %T", msg)
	}
	return Envelope{ConsensusMessage: tv}, nil
}

// DecodeMessage unwraps an envelope. ok is false (with a nil error) for
// a well-formed keep-alive, which carries no Message.
func DecodeMessage(env Envelope) (msg Message, ok bool, err error) {
	if env.ConsensusMessage == nil {
		if env.KeepAliveMessage != nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("artifact: empty envelope")
	}
	tv := env.ConsensusMessage
	switch {
	case tv.BlockProposal != nil:
		return *tv.BlockProposal, true, nil
	case tv.NotarizationShare != nil:
		return *tv.NotarizationShare, true, nil
	case tv.Notarization != nil:
		return *tv.Notarization, true, nil
	case tv.FinalizationShare != nil:
		return *tv.FinalizationShare, true, nil
	case tv.Finalization != nil:
		return *tv.Finalization, true, nil
	case tv.GoodnessArtifact != nil:
		return *tv.GoodnessArtifact, true, nil
	default:
		return nil, false, fmt.Errorf("artifact: unknown variant")
	}
}

// MarshalEnvelope is a convenience wrapper producing the exact bytes
// sent on the wire.
func MarshalEnvelope(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// UnmarshalEnvelope parses wire bytes into an Envelope.
func UnmarshalEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("artifact: malformed envelope: %w", err)
	}
	return env, nil
}
