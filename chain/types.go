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

// Package chain holds the vehicle-ledger data model: Vin/Car/Contract value
// objects, the tagged Block/BlockData/RevPolish unions, and the append-only
// Chain that the dispatcher owns exclusively.
package chain

import "fmt"

// HashLen is the width of a block hash and of the zero prev-hash sentinel.
const HashLen = 32

// Vin is a free-form vehicle identification number, split the way the source
// registration documents split it.
type Vin struct {
	WMI string
	VDS string
	VIS string
}

// Car is a vehicle-registration record embedded in a Block.
type Car struct {
	OwnerName        string
	OwnerSurname     string
	DistanceTraveled uint32
	Vin              Vin
}

// RevPolishKind tags the variant carried by a RevPolish item.
type RevPolishKind uint8

const (
	RevPolishNumber RevPolishKind = iota
	RevPolishOperation
	RevPolishArg
)

// RevPolish is one token of a postfix (reverse-Polish) arithmetic expression.
// Only the field matching Kind is meaningful.
type RevPolish struct {
	Kind      RevPolishKind
	Number    float64
	Operation byte
}

func Number(n float64) RevPolish  { return RevPolish{Kind: RevPolishNumber, Number: n} }
func Operation(op byte) RevPolish { return RevPolish{Kind: RevPolishOperation, Operation: op} }
func Arg() RevPolish              { return RevPolish{Kind: RevPolishArg} }

// Contract is an ordered postfix expression stored on-chain.
type Contract []RevPolish

// ContractResult records the outcome of evaluating a prior Contract block
// with specific arguments.
type ContractResult struct {
	BlockID uint32
	Result  float64
	Args    []float64
}

// BlockDataKind tags the variant carried by BlockData.
type BlockDataKind uint8

const (
	BlockDataContract BlockDataKind = iota
	BlockDataCar
	BlockDataContractResult
)

// BlockData is the tagged payload a Block carries. Only the field matching
// Kind is meaningful.
type BlockData struct {
	Kind           BlockDataKind
	Contract       Contract
	Car            Car
	ContractResult ContractResult
}

func CarData(c Car) BlockData                       { return BlockData{Kind: BlockDataCar, Car: c} }
func ContractData(c Contract) BlockData             { return BlockData{Kind: BlockDataContract, Contract: c} }
func ContractResultData(r ContractResult) BlockData {
	return BlockData{Kind: BlockDataContractResult, ContractResult: r}
}

// Block is an immutable, once-constructed record linking to its predecessor
// by hash and carrying a proof-of-work nonce.
type Block struct {
	Hash     [HashLen]byte
	ID       uint32
	PrevHash [HashLen]byte
	Nonce    uint32
	Data     BlockData
	MinedBy  string
}

// EmptyBlock is the sentinel handed to a Miner Worker when the chain is
// empty: both its id and prev-hash branches collapse to the genesis values.
func EmptyBlock() Block {
	return Block{}
}

// Equal reports field-wise equality, matching the source's derived Eq.
func (b Block) Equal(o Block) bool {
	return b.Hash == o.Hash && b.ID == o.ID && b.PrevHash == o.PrevHash &&
		b.Nonce == o.Nonce && b.MinedBy == o.MinedBy && b.Data.equal(o.Data)
}

func (d BlockData) equal(o BlockData) bool {
	if d.Kind != o.Kind {
		return false
	}
	switch d.Kind {
	case BlockDataCar:
		return d.Car == o.Car
	case BlockDataContract:
		if len(d.Contract) != len(o.Contract) {
			return false
		}
		for i := range d.Contract {
			if d.Contract[i] != o.Contract[i] {
				return false
			}
		}
		return true
	case BlockDataContractResult:
		if d.ContractResult.BlockID != o.ContractResult.BlockID || d.ContractResult.Result != o.ContractResult.Result {
			return false
		}
		if len(d.ContractResult.Args) != len(o.ContractResult.Args) {
			return false
		}
		for i := range d.ContractResult.Args {
			if d.ContractResult.Args[i] != o.ContractResult.Args[i] {
				return false
			}
		}
		return true
	}
	return false
}

func formatHash(h [HashLen]byte) string {
	return fmt.Sprintf("%x...", h[:8])
}

// String renders a one-line operator-facing summary, in the spirit of the
// source's Display impl for Block.
func (b Block) String() string {
	return fmt.Sprintf("Block [ID: %d Hash: %s Prev: %s Miner: %s Data: %s]",
		b.ID, formatHash(b.Hash), formatHash(b.PrevHash), b.MinedBy, b.Data.describe())
}

func (d BlockData) describe() string {
	switch d.Kind {
	case BlockDataCar:
		return fmt.Sprintf("Car{%s %s, %dkm}", d.Car.OwnerName, d.Car.OwnerSurname, d.Car.DistanceTraveled)
	case BlockDataContract:
		return fmt.Sprintf("Contract[%d ops]", len(d.Contract))
	case BlockDataContractResult:
		return fmt.Sprintf("ContractResult{block=%d result=%g}", d.ContractResult.BlockID, d.ContractResult.Result)
	default:
		return "?"
	}
}

// Chain is the node's ordered, append-only sequence of Blocks.
type Chain []Block

// LastHash returns the hash of the last block, or the zero sentinel when the
// chain is empty.
func (c Chain) LastHash() [HashLen]byte {
	if len(c) == 0 {
		return [HashLen]byte{}
	}
	return c[len(c)-1].Hash
}

// String dumps the chain one block per line, for PrintChain.
func (c Chain) String() string {
	s := fmt.Sprintf("Chain (%d blocks):\n", len(c))
	for _, b := range c {
		s += "  " + b.String() + "\n"
	}
	return s
}
