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

// Package miner implements the transient, cancellable proof-of-work worker.
// Exactly one worker is ever alive at a time; it is spawned by the
// dispatcher for a single job and either succeeds or observes cancellation.
// The dispatcher recreates the cancel channel on every spawn so a signal
// meant for a finished job can never cancel the next one.
package miner

import (
	"fmt"

	"github.com/inconshreveable/log15"

	"github.com/kuba00739/blockchain/chain"
	"github.com/kuba00739/blockchain/metricsreg"
	"github.com/kuba00739/blockchain/wire"
)

var log = log15.New("pkg", "miner")

// Spawn decodes payload into a BlockData, builds a candidate block atop
// last, and searches for a nonce satisfying the difficulty predicate,
// polling cancel non-blockingly between attempts. On success it sends one
// NewBlock Message to out (the dispatcher's loopback) and one to broadcast
// (the multicast group). On cancellation, or on a malformed payload, it
// returns without sending anything.
//
// Spawn runs synchronously in the calling goroutine; the dispatcher calls it
// from a goroutine of its own, which closes a done channel when Spawn returns.
func Spawn(payload []byte, last chain.Block, minerName string, cancel <-chan chain.Command, out chan<- chain.Message, broadcast func(chain.Message)) {
	data, err := wire.DecodeBlockData(payload)
	if err != nil {
		log.Warn("dropping malformed mining payload", "err", fmt.Errorf("%w: %v", chain.ErrDecode, err))
		return
	}
	candidate := buildCandidate(data, last, minerName)

	nonce, hash, err := mine(candidate, cancel)
	if err != nil {
		log.Debug("mining stopped", "err", err)
		return
	}
	candidate.Nonce = nonce
	candidate.Hash = hash

	msg := chain.Message{Command: chain.NewBlock, Data: wire.EncodeBlock(candidate)}
	out <- msg
	broadcast(msg)
	log.Info("mined block", "id", candidate.ID, "hash", hash)
}

// buildCandidate fills in prev_hash/id: when the chain is empty, last is the
// zero sentinel block and both its prev_hash and id collapse to the genesis
// values.
func buildCandidate(data chain.BlockData, last chain.Block, minerName string) chain.Block {
	var zero [chain.HashLen]byte
	b := chain.Block{
		PrevHash: last.Hash,
		Data:     data,
		MinedBy:  minerName,
	}
	if last.Hash == zero {
		b.ID = 0
	} else {
		b.ID = last.ID + 1
	}
	return b
}

// mine searches nonces from zero, checking cancel before each hash attempt.
func mine(candidate chain.Block, cancel <-chan chain.Command) (uint32, [chain.HashLen]byte, error) {
	for nonce := uint32(0); ; nonce++ {
		select {
		case <-cancel:
			return 0, [chain.HashLen]byte{}, chain.ErrMinerCancel
		default:
		}

		metricsreg.HashAttempt()
		hash := chain.ComputeHash(chain.Block{
			ID:       candidate.ID,
			PrevHash: candidate.PrevHash,
			Data:     candidate.Data,
			MinedBy:  candidate.MinedBy,
			Nonce:    nonce,
		}, wire.HashPreimage)

		if chain.MeetsDifficulty(hash) {
			return nonce, hash, nil
		}

		if nonce == ^uint32(0) {
			// Nonce space exhausted without success; restart the search.
			// In practice this is unreachable at this difficulty.
			nonce = 0
		}
	}
}
