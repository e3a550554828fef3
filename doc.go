// Copyright (C) 2019-2025, Lux Partners Limited All rights reserved.
// See the file LICENSE for licensing terms.

// Package finality implements the core consensus engine of a replicated
// state machine: a Byzantine-fault-tolerant block-notarization protocol
// with two interchangeable finalization rules — classical
// notarize-then-finalize (ICC) and Consensus-on-Demand (CoD), which
// finalizes directly off an acknowledgement quorum when the network
// agrees fast enough to skip the round trip.
//
// The subpackages implement one concern each: artifact (the wire data
// model), pool (content-addressed storage and derived queries),
// timesource (the driver's only notion of wall time), blockmaker,
// notary, aggregator, acknowledger, goodifier, finalizer, and validator
// (the seven subcomponents the driver round-robins over), driver (the
// round-robin itself), processor (the per-replica worker goroutine), and
// metrics (finalization-latency recording). Replica, in this package,
// assembles all of them into one constructible replica instance, the
// way a deployment's bootstrap code would.
package finality
