// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestHeightMetricsFirstWriterWins(t *testing.T) {
	m := NewHeightMetricsMap(prometheus.NewRegistry())

	require.True(t, m.RecordFirst(1, HeightMetrics{Latency: time.Second, FPFinalization: FinalizationTypeFP}))
	require.False(t, m.RecordFirst(1, HeightMetrics{Latency: 2 * time.Second, FPFinalization: FinalizationTypeDK}))

	got, ok := m.Get(1)
	require.True(t, ok)
	require.Equal(t, time.Second, got.Latency)
	require.Equal(t, FinalizationTypeFP, got.FPFinalization)
}

func TestHeightMetricsHeightsAreSortedAscending(t *testing.T) {
	m := NewHeightMetricsMap(prometheus.NewRegistry())
	m.RecordFirst(3, HeightMetrics{})
	m.RecordFirst(1, HeightMetrics{})
	m.RecordFirst(2, HeightMetrics{})

	require.Equal(t, []uint64{1, 2, 3}, m.Heights())
}

func TestFinalizationTypeString(t *testing.T) {
	require.Equal(t, "FP", FinalizationTypeFP.String())
	require.Equal(t, "DK", FinalizationTypeDK.String())
}

func TestHeightMetricsFeedsAveragersByType(t *testing.T) {
	m := NewHeightMetricsMap(prometheus.NewRegistry())

	m.RecordFirst(1, HeightMetrics{Latency: 2 * time.Second, FPFinalization: FinalizationTypeFP})
	m.RecordFirst(2, HeightMetrics{Latency: 4 * time.Second, FPFinalization: FinalizationTypeFP})
	m.RecordFirst(3, HeightMetrics{Latency: time.Second, FPFinalization: FinalizationTypeDK})

	require.InDelta(t, 3.0, m.fpLatency.Read(), 0.001)
	require.InDelta(t, 1.0, m.dkLatency.Read(), 0.001)
}
