// Copyright 2016 The go-DATx Authors
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

// Package dispatch implements the single-consumer event loop that owns the
// Chain and the miner-control channel. It is the only place the Chain is
// mutated, and it is the only place a Miner Worker is spawned or cancelled.
package dispatch

import (
	"fmt"

	"github.com/inconshreveable/log15"

	"github.com/kuba00739/blockchain/chain"
	"github.com/kuba00739/blockchain/contract"
	"github.com/kuba00739/blockchain/metricsreg"
	"github.com/kuba00739/blockchain/miner"
	"github.com/kuba00739/blockchain/wire"
)

var log = log15.New("pkg", "dispatch")

// Sender publishes an already-encoded Message to the multicast group. It is
// the Dispatcher's only outbound network dependency, kept as an interface so
// the event loop is testable without a real socket.
type Sender interface {
	Send(payload []byte) error
}

// Dispatcher is the single-threaded owner of the Chain and the miner
// control channel. All exported methods except Run/Inbound are meant to be
// called only from the Run goroutine; Inbound is the one thread-safe
// entrypoint other components may use.
type Dispatcher struct {
	name   string // mined_by label
	sender Sender

	inbound chan chain.Message

	chain        chain.Chain
	minerRunning bool
	minerDone    chan struct{}
	cancel       chan chain.Command
}

// New constructs a Dispatcher with an empty chain. name is the node's
// mined_by label, derived from the hostname by the caller.
func New(name string, sender Sender) *Dispatcher {
	return &Dispatcher{
		name:    name,
		sender:  sender,
		inbound: make(chan chain.Message, 64),
		cancel:  make(chan chain.Command, 1),
	}
}

// Inbound returns the send side of the MPSC channel shared by the Listener,
// the Broadcast Ticker, the Miner Worker's loopback, and the CalcContract
// handler's own loopback injection.
func (d *Dispatcher) Inbound() chan<- chain.Message { return d.inbound }

// Chain returns a copy of the current chain, safe to call from other
// goroutines only via a channel round-trip in production use; exposed
// directly here for tests that run the loop synchronously.
func (d *Dispatcher) Chain() chain.Chain { return append(chain.Chain(nil), d.chain...) }

// Run is the event loop: it processes inbound Messages strictly in arrival
// order until stop is closed.
func (d *Dispatcher) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case msg := <-d.inbound:
			d.handle(msg)
		}
	}
}

// Step processes exactly one inbound Message; used by tests that want
// deterministic control over ordering.
func (d *Dispatcher) Step() {
	d.handle(<-d.inbound)
}

func (d *Dispatcher) handle(msg chain.Message) {
	metricsreg.MessageIn(msg.Command)
	switch msg.Command {
	case chain.DataToBlock:
		d.handleDataToBlock(msg)
	case chain.NewBlock:
		d.handleNewBlock(msg)
	case chain.Blockchain:
		d.handleBlockchain(msg)
	case chain.PrintChain:
		d.handlePrintChain()
	case chain.Broadcast:
		d.handleBroadcast()
	case chain.CalcContract:
		d.handleCalcContract(msg)
	case chain.Accepted, chain.Rejected, chain.EndMining:
		// Ignored by the dispatcher; EndMining is only meaningful on the
		// miner-control channel, and quorum-by-Accepted-count is explicitly
		// not a mechanism this design implements.
	default:
		log.Warn("dropping message with unknown command", "command", msg.Command)
	}
}

func (d *Dispatcher) handleDataToBlock(msg chain.Message) {
	if d.minerRunning {
		select {
		case <-d.minerDone:
			d.minerRunning = false
		default:
			log.Debug("miner still running, dropping DataToBlock request")
			return
		}
	}

	d.cancel = make(chan chain.Command, 1)
	last := d.lastOrSentinel()
	done := make(chan struct{})
	cancel := d.cancel
	go func() {
		defer close(done)
		miner.Spawn(msg.Data, last, d.name, cancel, d.inbound, d.multicastMessage)
	}()
	d.minerDone = done
	d.minerRunning = true
}

func (d *Dispatcher) lastOrSentinel() chain.Block {
	if len(d.chain) == 0 {
		return chain.EmptyBlock()
	}
	return d.chain[len(d.chain)-1]
}

func (d *Dispatcher) handleNewBlock(msg chain.Message) {
	block, err := wire.DecodeBlock(msg.Data)
	if err != nil {
		log.Warn("dropping malformed NewBlock", "err", fmt.Errorf("%w: %v", chain.ErrDecode, err))
		return
	}
	if block.ID != uint32(len(d.chain)) {
		// Stale or future broadcast; neither error nor accept.
		return
	}
	if err := chain.VerifyNewBlock(block, d.chain, wire.HashPreimage); err != nil {
		log.Debug("new block verification failed", "err", err)
		return
	}

	d.multicastMessage(chain.Message{Command: chain.Accepted, Data: wire.EncodeBlock(block)})
	d.stopMiner()
	d.chain = append(d.chain, block)
	metricsreg.ChainLength(len(d.chain))
}

func (d *Dispatcher) handleBlockchain(msg chain.Message) {
	candidate, err := wire.DecodeChain(msg.Data)
	if err != nil {
		log.Warn("dropping malformed Blockchain", "err", fmt.Errorf("%w: %v", chain.ErrDecode, err))
		return
	}
	if len(candidate) <= len(d.chain) {
		log.Debug("incoming chain not strictly longer", "err", chain.ErrShorterChain, "incoming", len(candidate), "current", len(d.chain))
		return
	}
	for i, block := range candidate {
		if block.ID != uint32(i) {
			log.Debug("incoming chain has id gap", "index", i, "id", block.ID)
			return
		}
		if err := chain.VerifyBroadcastedBlock(block, candidate, wire.HashPreimage); err != nil {
			log.Debug("incoming chain verification failed", "index", i, "err", err)
			return
		}
	}

	d.stopMiner()
	d.chain = candidate
	metricsreg.ChainLength(len(d.chain))
	log.Info("adopted longer chain", "length", len(d.chain))
}

// stopMiner sends EndMining on the current control channel. The channel is
// buffered so this never blocks regardless of whether a worker is still
// reading it, giving at-least-once cancellation semantics.
func (d *Dispatcher) stopMiner() {
	if !d.minerRunning {
		return
	}
	select {
	case d.cancel <- chain.EndMining:
	default:
	}
}

func (d *Dispatcher) handlePrintChain() {
	log.Info("chain dump", "chain", d.chain.String())
}

func (d *Dispatcher) handleBroadcast() {
	d.multicastMessage(chain.Message{Command: chain.Blockchain, Data: wire.EncodeChain(d.chain)})
}

func (d *Dispatcher) handleCalcContract(msg chain.Message) {
	args, err := wire.DecodeFloat64Slice(msg.Data)
	if err != nil {
		log.Warn("dropping malformed CalcContract", "err", fmt.Errorf("%w: %v", chain.ErrDecode, err))
		return
	}
	if len(args) == 0 {
		log.Warn("CalcContract with no block id argument")
		return
	}
	blockID := uint32(args[len(args)-1])
	callArgs := args[:len(args)-1]

	if blockID >= uint32(len(d.chain)) {
		log.Warn("CalcContract references out-of-range block", "blockID", blockID, "err", chain.ErrBlockRef)
		return
	}
	ref := d.chain[blockID]
	if ref.Data.Kind != chain.BlockDataContract {
		log.Warn("CalcContract references non-contract block", "blockID", blockID, "err", chain.ErrBlockRef)
		return
	}

	result, err := contract.Eval(ref.Data.Contract, callArgs)
	if err != nil {
		log.Warn("contract evaluation failed", "err", err)
		return
	}

	resultData := chain.ContractResultData(chain.ContractResult{
		BlockID: blockID,
		Result:  result,
		Args:    callArgs,
	})
	d.handleDataToBlock(chain.Message{Command: chain.DataToBlock, Data: wire.EncodeBlockData(resultData)})
}

func (d *Dispatcher) multicastMessage(msg chain.Message) {
	metricsreg.MessageOut(msg.Command)
	if err := d.sender.Send(wire.EncodeMessage(msg)); err != nil {
		log.Warn("multicast send failed", "err", err)
	}
}
