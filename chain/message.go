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

// Command tags the payload carried by a Message. Values are fixed by the
// wire protocol and must not be renumbered.
type Command uint32

const (
	NewBlock Command = iota
	Accepted
	Rejected
	DataToBlock
	PrintChain
	Broadcast
	Blockchain
	EndMining
	CalcContract
)

func (c Command) String() string {
	switch c {
	case NewBlock:
		return "NewBlock"
	case Accepted:
		return "Accepted"
	case Rejected:
		return "Rejected"
	case DataToBlock:
		return "DataToBlock"
	case PrintChain:
		return "PrintChain"
	case Broadcast:
		return "Broadcast"
	case Blockchain:
		return "Blockchain"
	case EndMining:
		return "EndMining"
	case CalcContract:
		return "CalcContract"
	default:
		return "Unknown"
	}
}

// Message is the single datagram-sized unit exchanged over the multicast
// group and passed between the Listener/Ticker/Miner and the Dispatcher.
type Message struct {
	Command Command
	Data    []byte
}
