// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/finality/utils/wrappers"
)

// FinalizationType classifies which rule finalized a height (spec §6.5).
type FinalizationType int

const (
	// FinalizationTypeFP is the Consensus-on-Demand ack fast path.
	FinalizationTypeFP FinalizationType = iota
	// FinalizationTypeDK is the classical ICC notarize+finalize path,
	// including a finalization received already-complete from a peer.
	FinalizationTypeDK
)

func (t FinalizationType) String() string {
	if t == FinalizationTypeFP {
		return "FP"
	}
	return "DK"
}

// HeightMetrics is what gets recorded, once, for every height that
// becomes finalized.
type HeightMetrics struct {
	Latency         time.Duration
	FPFinalization  FinalizationType
}

// HeightMetricsMap is the reader-writer-locked ordered map of spec §5 and
// §6.5, read by the (external) metrics exporter. It is written only by
// the processor manager as it applies each Finalization from the
// acknowledger, finalizer or validator; those subcomponents never write
// it themselves. Writes are idempotent — the first writer
// at a height wins. Every observation also feeds one of two
// Prometheus-backed Averagers, split by finalization type, so an
// embedder's /metrics endpoint gets an FP-vs-DK latency distribution
// without scraping the per-height map directly.
type HeightMetricsMap struct {
	mu       sync.RWMutex
	byHeight map[uint64]HeightMetrics

	fpLatency Averager
	dkLatency Averager
}

// NewHeightMetricsMap returns an empty map, registering its latency
// averagers against reg. Registration failures are collected into errs
// rather than failing construction, matching NewAveragerWithErrs's
// fallback-to-no-op convention: callers that need every replica's
// metrics collision-free should pass a fresh prometheus.Registry per
// replica (see replica.go).
func NewHeightMetricsMap(reg prometheus.Registerer) *HeightMetricsMap {
	errs := &wrappers.Errs{}
	return &HeightMetricsMap{
		byHeight:  make(map[uint64]HeightMetrics),
		fpLatency: NewAveragerWithErrs("finality_fp_latency_seconds", "CoD ack fast-path finalization latency", reg, errs),
		dkLatency: NewAveragerWithErrs("finality_dk_latency_seconds", "ICC notarize-then-finalize latency, including peer-complete finalizations", reg, errs),
	}
}

// RecordFirst writes m at height h iff no entry exists there yet. It
// reports whether the write happened.
func (hm *HeightMetricsMap) RecordFirst(h uint64, m HeightMetrics) bool {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	if _, exists := hm.byHeight[h]; exists {
		return false
	}
	hm.byHeight[h] = m
	if m.FPFinalization == FinalizationTypeFP {
		hm.fpLatency.Observe(m.Latency.Seconds())
	} else {
		hm.dkLatency.Observe(m.Latency.Seconds())
	}
	return true
}

// Get returns the metrics recorded for height h, if any.
func (hm *HeightMetricsMap) Get(h uint64) (HeightMetrics, bool) {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	m, ok := hm.byHeight[h]
	return m, ok
}

// Heights returns every height with recorded metrics, ascending.
func (hm *HeightMetricsMap) Heights() []uint64 {
	hm.mu.RLock()
	defer hm.mu.RUnlock()
	out := make([]uint64, 0, len(hm.byHeight))
	for h := range hm.byHeight {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
