package wire_test

import (
	"testing"

	"github.com/kuba00739/blockchain/chain"
	"github.com/kuba00739/blockchain/wire"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := chain.Message{Command: chain.CalcContract, Data: []byte{1, 2, 3, 4}}
	got, err := wire.DecodeMessage(wire.EncodeMessage(msg))
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if got.Command != msg.Command || string(got.Data) != string(msg.Data) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, msg)
	}
}

func TestBlockRoundTrip_CarData(t *testing.T) {
	b := chain.Block{
		ID:      7,
		Nonce:   99,
		Data:    chain.CarData(chain.Car{OwnerName: "Ann", OwnerSurname: "Lee", DistanceTraveled: 12345, Vin: chain.Vin{WMI: "1HG", VDS: "CM826", VIS: "3A004352"}}),
		MinedBy: "node-a",
	}
	b.Hash[0] = 0xAB
	b.PrevHash[3] = 0xCD

	got, err := wire.DecodeBlock(wire.EncodeBlock(b))
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if !got.Equal(b) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, b)
	}
}

func TestBlockRoundTrip_ContractAndContractResult(t *testing.T) {
	contractBlock := chain.Block{
		ID:      0,
		Data:    chain.ContractData(chain.Contract{chain.Operation('+'), chain.Number(0), chain.Number(1)}),
		MinedBy: "n1",
	}
	got, err := wire.DecodeBlock(wire.EncodeBlock(contractBlock))
	if err != nil {
		t.Fatalf("DecodeBlock(contract): %v", err)
	}
	if !got.Equal(contractBlock) {
		t.Fatalf("contract round trip mismatch: got %+v, want %+v", got, contractBlock)
	}

	resultBlock := chain.Block{
		ID:      1,
		Data:    chain.ContractResultData(chain.ContractResult{BlockID: 0, Result: 1.0, Args: []float64{3, 5}}),
		MinedBy: "n1",
	}
	got2, err := wire.DecodeBlock(wire.EncodeBlock(resultBlock))
	if err != nil {
		t.Fatalf("DecodeBlock(result): %v", err)
	}
	if !got2.Equal(resultBlock) {
		t.Fatalf("result round trip mismatch: got %+v, want %+v", got2, resultBlock)
	}
}

func TestChainRoundTrip(t *testing.T) {
	c := chain.Chain{
		{ID: 0, MinedBy: "a", Data: chain.CarData(chain.Car{OwnerName: "X"})},
		{ID: 1, MinedBy: "b", Data: chain.CarData(chain.Car{OwnerName: "Y"})},
	}
	got, err := wire.DecodeChain(wire.EncodeChain(c))
	if err != nil {
		t.Fatalf("DecodeChain: %v", err)
	}
	if len(got) != len(c) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(c))
	}
	for i := range c {
		if !got[i].Equal(c[i]) {
			t.Fatalf("block %d mismatch: got %+v, want %+v", i, got[i], c[i])
		}
	}
}

func TestFloat64SliceRoundTrip(t *testing.T) {
	fs := []float64{1.5, -2.25, 0, 3}
	got, err := wire.DecodeFloat64Slice(wire.EncodeFloat64Slice(fs))
	if err != nil {
		t.Fatalf("DecodeFloat64Slice: %v", err)
	}
	if len(got) != len(fs) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(fs))
	}
	for i := range fs {
		if got[i] != fs[i] {
			t.Fatalf("index %d: got %v, want %v", i, got[i], fs[i])
		}
	}
}

func TestDecodeBlock_TruncatedInputErrors(t *testing.T) {
	full := wire.EncodeBlock(chain.Block{MinedBy: "n"})
	if _, err := wire.DecodeBlock(full[:len(full)-5]); err == nil {
		t.Fatal("DecodeBlock on truncated input = nil error, want failure")
	}
}

func TestDecodeBlockData_UnknownKindErrors(t *testing.T) {
	// Hand-craft a BlockData tag the decoder does not recognize.
	data := append([]byte{99, 0, 0, 0}, []byte{0, 0, 0, 0}...)
	if _, err := wire.NewDecoder(data).BlockData(); err == nil {
		t.Fatal("BlockData with unknown kind = nil error, want failure")
	}
}

func TestHashPreimageDeterministic(t *testing.T) {
	data := chain.CarData(chain.Car{OwnerName: "Max", OwnerSurname: "Bravo", DistanceTraveled: 42})
	var zero [chain.HashLen]byte
	p1 := wire.HashPreimage(0, zero, data, "n1", 20343032)
	p2 := wire.HashPreimage(0, zero, data, "n1", 20343032)
	if string(p1) != string(p2) {
		t.Fatal("HashPreimage is not deterministic for identical inputs")
	}
}
