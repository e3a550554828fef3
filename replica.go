// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

package finality

import (
	"context"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/finality/acknowledger"
	"github.com/luxfi/finality/aggregator"
	"github.com/luxfi/finality/artifact"
	"github.com/luxfi/finality/blockmaker"
	"github.com/luxfi/finality/driver"
	"github.com/luxfi/finality/finalizer"
	"github.com/luxfi/finality/goodifier"
	"github.com/luxfi/finality/metrics"
	"github.com/luxfi/finality/notary"
	"github.com/luxfi/finality/params"
	"github.com/luxfi/finality/pool"
	"github.com/luxfi/finality/processor"
	"github.com/luxfi/finality/timesource"
	"github.com/luxfi/finality/validator"
)

// Re-exported so callers depend only on this package for the core's
// external configuration surface, mirroring the teacher's root-package
// type-alias convention.
type (
	// SubnetParams is params.SubnetParams.
	SubnetParams = params.SubnetParams
	// ReplicaID is artifact.ReplicaID.
	ReplicaID = artifact.ReplicaID
	// PayloadSource is blockmaker.PayloadSource.
	PayloadSource = blockmaker.PayloadSource
)

// NotarizationUnitDelay and TickInterval are the protocol's two fixed
// timing constants, re-exported from params for convenience.
const (
	NotarizationUnitDelay = params.NotarizationUnitDelay
	TickInterval          = params.TickInterval
)

// Replica assembles the pool, the seven consensus subcomponents, the
// driver, and the processor manager into one constructible consensus
// core for a single replica — the Go equivalent of the source's
// ConsensusProcessor bootstrap (original_source/src/consensus_layer.rs),
// generalized to both finalization rules and wired to an injectable
// TimeSource and PayloadSource.
type Replica struct {
	Pool      *pool.Pool
	Processor *processor.Manager
	Heights   *metrics.HeightMetricsMap

	// Metrics is the Prometheus registry backing Heights' fp/dk latency
	// Averagers, fresh per Replica so names never collide across
	// multiple replicas in the same process (e.g. a multi-replica test
	// harness). An embedder that runs a /metrics endpoint gathers from
	// this directly.
	Metrics *prometheus.Registry
}

// NewReplica constructs a Replica for self under p, using payload as the
// block-maker's content source, ts as its time source, and logger for
// structured logging across every subcomponent. egressBuffer sizes the
// outbound broadcast channel (spec §4.12, §5).
func NewReplica(self ReplicaID, p SubnetParams, payload PayloadSource, ts timesource.TimeSource, logger log.Logger, egressBuffer int) *Replica {
	consensusPool := pool.New()
	promReg := prometheus.NewRegistry()
	heights := metrics.NewHeightMetricsMap(promReg)

	stages := []driver.Subcomponent{
		notary.New(self, p, logger),
		aggregator.New(p, logger),
		acknowledgerOrNil(p, logger),
		goodifierOrNil(p, logger),
		finalizer.New(self, p, logger),
		validator.New(p, logger),
		blockmaker.New(self, p, payload, logger),
	}

	d := driver.New(stages, logger)
	proc := processor.New(consensusPool, d, ts, logger, egressBuffer, heights)

	return &Replica{Pool: consensusPool, Processor: proc, Heights: heights, Metrics: promReg}
}

// acknowledgerOrNil and goodifierOrNil return a no-op stage under ICC
// configuration instead of constructing the real CoD-only subcomponent,
// since both panic if invoked outside Consensus-on-Demand (spec §7,
// error kind 4) and the driver always schedules every stage.
func acknowledgerOrNil(p params.SubnetParams, logger log.Logger) driver.Subcomponent {
	if !p.ConsensusOnDemand {
		return noopStage{"acknowledger"}
	}
	return acknowledger.New(p, logger)
}

func goodifierOrNil(p params.SubnetParams, logger log.Logger) driver.Subcomponent {
	if !p.ConsensusOnDemand {
		return noopStage{"goodifier"}
	}
	return goodifier.New(p, logger)
}

// noopStage stands in for a CoD-only subcomponent when the replica runs
// under the classical ICC rule.
type noopStage struct{ name string }

func (n noopStage) Name() string { return n.name }
func (n noopStage) Run(*pool.Reader, timesource.TimeSource) pool.ChangeSet { return nil }

// Run starts the replica's worker goroutine; it blocks until ctx is
// cancelled.
func (r *Replica) Run(ctx context.Context) { r.Processor.Run(ctx) }

// OnArtifact feeds an inbound artifact to the replica (spec §4.12
// external API).
func (r *Replica) OnArtifact(a artifact.Message) { r.Processor.OnArtifact(a) }

// Egress is the channel the broadcast layer drains locally-produced
// artifacts from.
func (r *Replica) Egress() <-chan artifact.Message { return r.Processor.Egress() }

// Reader returns a fresh read-only view over the replica's current pool
// state, for callers (tests, RPC handlers) that want to inspect progress
// without reaching into the pool directly.
func (r *Replica) Reader() *pool.Reader { return pool.NewReader(r.Pool) }
