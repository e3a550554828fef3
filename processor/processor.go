// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

// Package processor implements the per-replica processor manager (spec
// §4.12): a dedicated worker goroutine owning the pool, fed by a
// mutex-protected ingress queue and re-triggered by a coalescing signal
// channel or a periodic tick.
package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/finality/artifact"
	"github.com/luxfi/finality/driver"
	"github.com/luxfi/finality/metrics"
	"github.com/luxfi/finality/params"
	"github.com/luxfi/finality/pool"
	"github.com/luxfi/finality/timesource"
)

// Manager owns a single replica's pool and runs its consensus cycle on a
// dedicated goroutine (spec §5: single-threaded cooperative per replica
// core). All exported methods except RunOnce are safe to call from other
// goroutines; only the worker goroutine touches the pool directly.
// RunOnce runs a cycle on the caller's goroutine and is not synchronized
// with a concurrently running Run.
type Manager struct {
	pool    *pool.Pool
	driver  *driver.Driver
	ts      timesource.TimeSource
	log     log.Logger
	heights *metrics.HeightMetricsMap // nil disables §6.5 latency recording

	metricsReg   metrics.Registry
	cyclesRun    metrics.Counter
	ingressDepth metrics.Gauge

	ingressMu sync.Mutex
	ingress   []artifact.Message

	signal chan struct{} // capacity 1: coalescing ProcessRequest
	egress chan artifact.Message

	stopped chan struct{}
}

// New returns a Manager ready to Run. egressBuffer sizes the (unbounded
// in the spec, bounded in practice) egress channel; callers that cannot
// keep up are the transport's problem, not this package's (spec §5).
// heights may be nil, disabling the §6.5 finalization-latency recording.
func New(p *pool.Pool, d *driver.Driver, ts timesource.TimeSource, logger log.Logger, egressBuffer int, heights *metrics.HeightMetricsMap) *Manager {
	reg := metrics.NewRegistry()
	return &Manager{
		pool:         p,
		driver:       d,
		ts:           ts,
		log:          logger.With("component", "processor"),
		heights:      heights,
		metricsReg:   reg,
		cyclesRun:    reg.NewCounter("cycles_run"),
		ingressDepth: reg.NewGauge("ingress_queue_depth"),
		signal:       make(chan struct{}, 1),
		egress:       make(chan artifact.Message, egressBuffer),
		stopped:      make(chan struct{}),
	}
}

// Metrics returns the registry backing this manager's cycle/ingress-depth
// instrumentation, for an embedder that wants to expose it alongside its
// own metrics surface.
func (m *Manager) Metrics() metrics.Registry { return m.metricsReg }

// Egress is the channel the broadcast layer drains locally-produced
// artifacts from.
func (m *Manager) Egress() <-chan artifact.Message { return m.egress }

// OnArtifact appends an inbound artifact to the ingress queue and wakes
// the worker. It is the external API the transport calls on every
// received message (spec §4.12).
func (m *Manager) OnArtifact(a artifact.Message) {
	m.ingressMu.Lock()
	m.ingress = append(m.ingress, a)
	depth := len(m.ingress)
	m.ingressMu.Unlock()
	m.ingressDepth.Set(float64(depth))
	m.wake()
}

// wake posts one coalescing ProcessRequest; a full channel means a
// request is already pending, so the send is dropped rather than
// blocked (spec §5: the signal channel is coalescing).
func (m *Manager) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// Run is the worker loop (spec §4.12). It blocks until ctx is cancelled,
// at which point it exits cleanly (spec §7, error kind 5: graceful
// thread exit on signal-channel disconnection maps to ctx.Done here).
func (m *Manager) Run(ctx context.Context) {
	defer close(m.stopped)

	ticker := time.NewTicker(params.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Debug("processor manager stopping")
			return
		case <-m.signal:
			m.cycle()
		case <-ticker.C:
			m.cycle()
		}
	}
}

// Stopped is closed once Run has returned, for callers that want to wait
// for a clean shutdown.
func (m *Manager) Stopped() <-chan struct{} { return m.stopped }

// RunOnce drives exactly one cycle synchronously and returns the change
// set it applied, without needing a Run goroutine or the signal/ticker
// machinery. It is meant for deterministic single-stepping, e.g.
// property tests driving a scenario cycle by cycle.
func (m *Manager) RunOnce() pool.ChangeSet { return m.cycle() }

// cycle runs exactly one drive step: latch time, drain ingress, run the
// driver, apply the resulting change set, forward locally-produced
// artifacts to egress, and re-arm the signal if anything changed (spec
// §4.12 steps 2-5).
func (m *Manager) cycle() pool.ChangeSet {
	m.cyclesRun.Inc()
	m.ts.Update()

	for _, a := range m.drainIngress() {
		m.pool.Unvalidated.Insert(a, 0)
	}

	reader := pool.NewReader(m.pool)
	changes := m.driver.OnStateChange(reader, m.ts)
	if changes.Empty() {
		return nil
	}

	changed, invalids := m.pool.Apply(changes, m.ts.Now())
	for _, inv := range invalids {
		m.log.Debug("discarded invalid artifact", "hash", inv.Hash, "reason", inv.Reason)
	}

	stage := m.driver.LastStage()
	for _, action := range changes {
		switch a := action.(type) {
		case pool.AddToValidated:
			m.recordFinalizationLatency(reader, a.Message, stage)
			select {
			case m.egress <- a.Message:
			default:
				// Spec §7 error kind 6: egress send failure is fatal — the
				// transport is presumed always available, so a full buffer
				// means that presumption has already been violated and
				// there is no safe way to keep running.
				panic(fmt.Sprintf("processor: egress channel full (capacity %d), cannot forward %s artifact", cap(m.egress), a.Message.Kind()))
			}
		case pool.MoveToValidated:
			m.recordFinalizationLatency(reader, a.Message, stage)
		}
	}

	if changed {
		m.wake()
	}
	return changes
}

// recordFinalizationLatency writes the height-metrics entry for a newly
// validated Finalization (spec §6.5), attributing FinalizationTypeFP to
// ones produced by the acknowledger's CoD fast path and
// FinalizationTypeDK to everything else — the ICC finalizer's own
// aggregation, and any finalization the validator promotes having
// arrived complete from a peer. The map's first-writer-wins semantics
// (spec §5) make this safe to call for every AddToValidated/
// MoveToValidated action without separately tracking "have we already
// recorded this height".
func (m *Manager) recordFinalizationLatency(reader *pool.Reader, msg artifact.Message, stage string) {
	if m.heights == nil {
		return
	}
	fin, ok := msg.(artifact.Finalization)
	if !ok {
		return
	}

	kind := metrics.FinalizationTypeDK
	if stage == "acknowledger" {
		kind = metrics.FinalizationTypeFP
	}

	var latency time.Duration
	if start, haveStart := reader.RoundStart(fin.Height); haveStart {
		latency = m.ts.Now().Since(start)
	}

	m.heights.RecordFirst(fin.Height, metrics.HeightMetrics{Latency: latency, FPFinalization: kind})
}

// drainIngress swaps the ingress slice for an empty one under the lock,
// so producers never block behind the driver cycle (spec §5).
func (m *Manager) drainIngress() []artifact.Message {
	m.ingressMu.Lock()
	defer m.ingressMu.Unlock()
	if len(m.ingress) == 0 {
		return nil
	}
	drained := m.ingress
	m.ingress = nil
	m.ingressDepth.Set(0)
	return drained
}
