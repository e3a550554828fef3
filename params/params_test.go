// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package params

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubnetParamsQuorums(t *testing.T) {
	p := SubnetParams{TotalNodesNumber: 4, ByzantineNodesNumber: 1, DisagreeingNodesNumber: 1}
	require.NoError(t, p.Validate())
	require.Equal(t, 3, p.NotarizationQuorum())
	require.Equal(t, 3, p.AckQuorum())
	require.Equal(t, 2, p.GoodifierAllGoodMargin())
}

func TestSubnetParamsValidateRejectsBadInput(t *testing.T) {
	require.Error(t, SubnetParams{TotalNodesNumber: 0}.Validate())
	require.Error(t, SubnetParams{TotalNodesNumber: 1, ByzantineNodesNumber: -1}.Validate())
	require.Error(t, SubnetParams{TotalNodesNumber: 1, DisagreeingNodesNumber: -1}.Validate())
}
