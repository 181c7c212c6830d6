package chain_test

import (
	"encoding/hex"
	"testing"

	"github.com/kuba00739/blockchain/chain"
	"github.com/kuba00739/blockchain/wire"
)

func mustHash(t *testing.T, hexStr string) [chain.HashLen]byte {
	t.Helper()
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		t.Fatalf("bad test hash literal: %v", err)
	}
	var h [chain.HashLen]byte
	copy(h[:], b)
	return h
}

// block0 is a real, fully-mined genesis Car block, verified offline against
// the exact wire encoding this package uses.
func block0(t *testing.T) chain.Block {
	return chain.Block{
		Hash:     mustHash(t, "0000007eb844a9b1f8eadb6cd5da095738850672410fc61c5a79e50c1714f885"),
		ID:       0,
		PrevHash: [chain.HashLen]byte{},
		Nonce:    20343032,
		Data:     chain.CarData(chain.Car{OwnerName: "Max", OwnerSurname: "Bravo", DistanceTraveled: 42}),
		MinedBy:  "n1",
	}
}

func block1(t *testing.T) chain.Block {
	return chain.Block{
		Hash:     mustHash(t, "00000032f7a8b867ffff8f96d392cd36a2cb372048443b5aee64c1d8c699b7da"),
		ID:       1,
		PrevHash: block0(t).Hash,
		Nonce:    5283313,
		Data:     chain.CarData(chain.Car{OwnerName: "John", OwnerSurname: "Doe", DistanceTraveled: 100}),
		MinedBy:  "n2",
	}
}

func TestVerifyBlock_Valid(t *testing.T) {
	if err := chain.VerifyBlock(block0(t), wire.HashPreimage); err != nil {
		t.Fatalf("VerifyBlock(block0) = %v, want nil", err)
	}
}

func TestVerifyBlock_WrongNonceFailsDifficulty(t *testing.T) {
	b := block0(t)
	b.Nonce++ // the next nonce does not satisfy the difficulty predicate
	// Store the matching hash so only the difficulty check can fail.
	b.Hash = chain.ComputeHash(b, wire.HashPreimage)
	if err := chain.VerifyBlock(b, wire.HashPreimage); err == nil {
		t.Fatal("VerifyBlock with wrong nonce = nil error, want failure")
	}
}

func TestVerifyBlock_TamperedHashFails(t *testing.T) {
	b := block0(t)
	b.Hash[0] ^= 0xFF
	if err := chain.VerifyBlock(b, wire.HashPreimage); err == nil {
		t.Fatal("VerifyBlock with tampered hash = nil error, want failure")
	}
}

func TestVerifyNewBlock_ExtendsChain(t *testing.T) {
	c := chain.Chain{block0(t)}
	if err := chain.VerifyNewBlock(block1(t), c, wire.HashPreimage); err != nil {
		t.Fatalf("VerifyNewBlock(block1, [block0]) = %v, want nil", err)
	}
}

func TestVerifyNewBlock_WrongIDRejected(t *testing.T) {
	c := chain.Chain{} // empty: only id 0 is acceptable
	b := block1(t)      // id 1
	if err := chain.VerifyNewBlock(b, c, wire.HashPreimage); err == nil {
		t.Fatal("VerifyNewBlock with id gap = nil error, want failure")
	}
}

func TestVerifyNewBlock_WrongPrevHashRejected(t *testing.T) {
	c := chain.Chain{} // empty: genesis must link to zeros
	b := block0(t)
	b.PrevHash[0] = 1 // prev-hash check trips before the hash is ever recomputed
	if err := chain.VerifyNewBlock(b, c, wire.HashPreimage); err == nil {
		t.Fatal("VerifyNewBlock with wrong prev hash = nil error, want failure")
	}
}

func TestVerifyBroadcastedBlock_Genesis(t *testing.T) {
	candidate := chain.Chain{block0(t)}
	if err := chain.VerifyBroadcastedBlock(block0(t), candidate, wire.HashPreimage); err != nil {
		t.Fatalf("VerifyBroadcastedBlock(genesis) = %v, want nil", err)
	}
}

func TestVerifyBroadcastedBlock_Second(t *testing.T) {
	candidate := chain.Chain{block0(t), block1(t)}
	if err := chain.VerifyBroadcastedBlock(block1(t), candidate, wire.HashPreimage); err != nil {
		t.Fatalf("VerifyBroadcastedBlock(block1) = %v, want nil", err)
	}
}

func TestMeetsDifficulty(t *testing.T) {
	tests := []struct {
		name string
		hash [chain.HashLen]byte
		want bool
	}{
		{"all zero prefix and low 4th byte", [chain.HashLen]byte{0, 0, 0, 128}, true},
		{"4th byte over limit", [chain.HashLen]byte{0, 0, 0, 129}, false},
		{"nonzero first byte", [chain.HashLen]byte{1, 0, 0, 0}, false},
		{"nonzero third byte", [chain.HashLen]byte{0, 0, 1, 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chain.MeetsDifficulty(tt.hash); got != tt.want {
				t.Errorf("MeetsDifficulty(%v) = %v, want %v", tt.hash, got, tt.want)
			}
		})
	}
}

func TestBlockEqual(t *testing.T) {
	a := block0(t)
	b := block0(t)
	if !a.Equal(b) {
		t.Fatal("identical blocks should be Equal")
	}
	b.MinedBy = "someone-else"
	if a.Equal(b) {
		t.Fatal("blocks differing by mined_by should not be Equal")
	}
}
