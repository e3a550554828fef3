// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package artifact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenesisHashIsWellFormed(t *testing.T) {
	require.True(t, GenesisHash.Valid())
	require.Len(t, string(GenesisHash), 64)
}

func TestHashValid(t *testing.T) {
	require.False(t, Hash("not-hex").Valid())
	require.False(t, Hash("").Valid())
	require.True(t, Hash(
		"0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
	).Valid())
}

func TestBlockHashIsDeterministic(t *testing.T) {
	b := Block{ParentHash: GenesisHash, Payload: []byte("hello"), Height: 1, Rank: 0}
	require.Equal(t, b.Hash(), b.Hash())

	other := b
	other.Payload = []byte("world")
	require.NotEqual(t, b.Hash(), other.Hash())
}

func TestBlockProposalContentHashIgnoresBlockIdentity(t *testing.T) {
	b := Block{ParentHash: GenesisHash, Payload: []byte("x"), Height: 1, Rank: 0}
	p1 := BlockProposal{Block: b, Signer: 1}
	p2 := BlockProposal{Block: b, Signer: 1}
	require.Equal(t, p1.ContentHash(), p2.ContentHash())

	p3 := BlockProposal{Block: b, Signer: 2}
	require.NotEqual(t, p1.ContentHash(), p3.ContentHash())
}
