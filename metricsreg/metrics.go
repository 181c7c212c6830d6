// Copyright 2015 The go-DATx Authors
// This file is part of the go-DATx library.
//
// The go-DATx library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-DATx library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-DATx library. If not, see <http://www.gnu.org/licenses/>.

// Package metricsreg registers per-command traffic meters and a chain-length
// gauge, named the way "vlnode/msg/<command>/in" etc. reads on a metrics
// dashboard.
package metricsreg

import (
	"fmt"

	"github.com/rcrowley/go-metrics"

	"github.com/kuba00739/blockchain/chain"
)

// allCommands enumerates every chain.Command so the meter maps below can be
// fully populated up front: MessageIn/MessageOut are called concurrently
// from the Dispatcher goroutine and the Miner Worker's broadcast callback,
// and a plain map tolerates concurrent reads but not a concurrent
// read-and-lazy-write, so meterFor must never mutate these maps after init.
var allCommands = []chain.Command{
	chain.NewBlock, chain.Accepted, chain.Rejected, chain.DataToBlock,
	chain.PrintChain, chain.Broadcast, chain.Blockchain, chain.EndMining,
	chain.CalcContract,
}

var (
	chainLengthGauge = metrics.NewRegisteredGauge("vlnode/chain/length", metrics.DefaultRegistry)
	minerHashrate    = metrics.NewRegisteredMeter("vlnode/miner/hashrate", metrics.DefaultRegistry)

	inMeters  = map[chain.Command]metrics.Meter{}
	outMeters = map[chain.Command]metrics.Meter{}

	unknownIn  = metrics.NewRegisteredMeter("vlnode/msg/unknown/in", metrics.DefaultRegistry)
	unknownOut = metrics.NewRegisteredMeter("vlnode/msg/unknown/out", metrics.DefaultRegistry)
)

func registerMeters(registry map[chain.Command]metrics.Meter, dir string) {
	for _, cmd := range allCommands {
		name := fmt.Sprintf("vlnode/msg/%s/%s", cmd, dir)
		registry[cmd] = metrics.NewRegisteredMeter(name, metrics.DefaultRegistry)
	}
}

// meterFor looks up a command's meter in an already-fully-populated
// registry. cmd values off the wire may not be one of allCommands (an
// unrecognized command tag), in which case it falls back to a shared
// "unknown" meter rather than indexing a map that must stay read-only.
func meterFor(registry map[chain.Command]metrics.Meter, cmd chain.Command, fallback metrics.Meter) metrics.Meter {
	if m, ok := registry[cmd]; ok {
		return m
	}
	return fallback
}

// MessageIn marks one inbound Message handled by the dispatcher.
func MessageIn(cmd chain.Command) { meterFor(inMeters, cmd, unknownIn).Mark(1) }

// MessageOut marks one outbound Message published to the multicast group.
func MessageOut(cmd chain.Command) { meterFor(outMeters, cmd, unknownOut).Mark(1) }

// ChainLength updates the chain-length gauge after an append or replacement.
func ChainLength(n int) { chainLengthGauge.Update(int64(n)) }

// HashAttempt marks one proof-of-work hash attempt, for an operator-visible
// hashrate meter.
func HashAttempt() { minerHashrate.Mark(1) }

func init() {
	registerMeters(inMeters, "in")
	registerMeters(outMeters, "out")
	metrics.RegisterRuntimeMemStats(metrics.DefaultRegistry)
}

// CaptureRuntimeStats samples the Go runtime's memory and GC counters into
// the registry. Called periodically by the node's broadcast ticker so an
// operator scraping the registry also sees process health, not just protocol
// traffic.
func CaptureRuntimeStats() { metrics.CaptureRuntimeMemStatsOnce(metrics.DefaultRegistry) }
