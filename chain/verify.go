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

package chain

import (
	"crypto/sha256"
	"fmt"
)

// ComputeHash recomputes the canonical digest of a block's other fields. It
// does not look at b.Hash itself.
func ComputeHash(b Block, preimage func(id uint32, prevHash [HashLen]byte, data BlockData, minedBy string, nonce uint32) []byte) [HashLen]byte {
	sum := sha256.Sum256(preimage(b.ID, b.PrevHash, b.Data, b.MinedBy, b.Nonce))
	return sum
}

// MeetsDifficulty is the difficulty predicate: the first three bytes of the
// digest must be zero and the fourth must be at most 128 (25 leading zero
// bits).
func MeetsDifficulty(hash [HashLen]byte) bool {
	return hash[0] == 0 && hash[1] == 0 && hash[2] == 0 && hash[3] <= 128
}

// Preimage is the function used to build a block's hash preimage; injected
// so this package has no import-cycle dependency on the wire codec.
type Preimage func(id uint32, prevHash [HashLen]byte, data BlockData, minedBy string, nonce uint32) []byte

// VerifyBlock recomputes b's hash and checks it both matches the stored
// hash and satisfies the difficulty predicate.
func VerifyBlock(b Block, preimage Preimage) error {
	got := ComputeHash(b, preimage)
	if got != b.Hash {
		return fmt.Errorf("%w: stored hash does not match recomputed hash", ErrVerification)
	}
	if !MeetsDifficulty(got) {
		return fmt.Errorf("%w: hash does not meet difficulty", ErrVerification)
	}
	return nil
}

// VerifyNewBlock additionally requires b to extend the given chain exactly
// at its tip.
func VerifyNewBlock(b Block, c Chain, preimage Preimage) error {
	if b.ID != uint32(len(c)) {
		return fmt.Errorf("%w: block id %d does not match chain length %d", ErrVerification, b.ID, len(c))
	}
	if b.PrevHash != c.LastHash() {
		return fmt.Errorf("%w: prev hash does not match chain tip", ErrVerification)
	}
	return VerifyBlock(b, preimage)
}

// VerifyBroadcastedBlock checks b's linkage against the candidate chain it
// arrived with (not the node's current chain), then verifies the block.
func VerifyBroadcastedBlock(b Block, candidate Chain, preimage Preimage) error {
	var wantPrev [HashLen]byte
	if b.ID != 0 {
		idx := int(b.ID) - 1
		if idx < 0 || idx >= len(candidate) {
			return fmt.Errorf("%w: no predecessor at index %d", ErrVerification, idx)
		}
		wantPrev = candidate[idx].Hash
	}
	if b.PrevHash != wantPrev {
		return fmt.Errorf("%w: prev hash does not match candidate predecessor", ErrVerification)
	}
	return VerifyBlock(b, preimage)
}
