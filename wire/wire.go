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

// Package wire implements the deterministic binary codec used both on the
// multicast wire and as block-hash preimage input. It intentionally does not
// reuse an RLP-style recursive encoding: the protocol fixes little-endian
// fixed-width integers, length-prefixed strings/slices and 32-bit variant
// tags, which a general-purpose encoder would not reproduce byte-for-byte.
package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/kuba00739/blockchain/chain"
)

// Encoder accumulates a deterministic byte stream.
type Encoder struct {
	buf bytes.Buffer
}

func NewEncoder() *Encoder { return &Encoder{} }

func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

func (e *Encoder) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) f64(v float64) { e.u64(math.Float64bits(v)) }

func (e *Encoder) bytesRaw(b []byte) { e.buf.Write(b) }

func (e *Encoder) bytesLP(b []byte) {
	e.u32(uint32(len(b)))
	e.buf.Write(b)
}

func (e *Encoder) stringLP(s string) { e.bytesLP([]byte(s)) }

// Decoder consumes a deterministic byte stream produced by Encoder.
type Decoder struct {
	r *bytes.Reader
}

func NewDecoder(b []byte) *Decoder { return &Decoder{r: bytes.NewReader(b)} }

func (d *Decoder) u32() (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, fmt.Errorf("wire: read u32: %w", err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (d *Decoder) u64() (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(d.r, b[:]); err != nil {
		return 0, fmt.Errorf("wire: read u64: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func (d *Decoder) f64() (float64, error) {
	u, err := d.u64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

func (d *Decoder) bytesRaw(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		return nil, fmt.Errorf("wire: read %d raw bytes: %w", n, err)
	}
	return b, nil
}

// maxLenPrefix guards against a corrupt length prefix driving an enormous
// allocation from a 4KB datagram.
const maxLenPrefix = 1 << 20

func (d *Decoder) bytesLP() ([]byte, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	if n > maxLenPrefix {
		return nil, fmt.Errorf("wire: length prefix %d exceeds sane maximum", n)
	}
	return d.bytesRaw(int(n))
}

func (d *Decoder) stringLP() (string, error) {
	b, err := d.bytesLP()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// --- Vin / Car ---

func (e *Encoder) Vin(v chain.Vin) {
	e.stringLP(v.WMI)
	e.stringLP(v.VDS)
	e.stringLP(v.VIS)
}

func (d *Decoder) Vin() (chain.Vin, error) {
	var v chain.Vin
	var err error
	if v.WMI, err = d.stringLP(); err != nil {
		return v, err
	}
	if v.VDS, err = d.stringLP(); err != nil {
		return v, err
	}
	if v.VIS, err = d.stringLP(); err != nil {
		return v, err
	}
	return v, nil
}

func (e *Encoder) Car(c chain.Car) {
	e.stringLP(c.OwnerName)
	e.stringLP(c.OwnerSurname)
	e.u32(c.DistanceTraveled)
	e.Vin(c.Vin)
}

func (d *Decoder) Car() (chain.Car, error) {
	var c chain.Car
	var err error
	if c.OwnerName, err = d.stringLP(); err != nil {
		return c, err
	}
	if c.OwnerSurname, err = d.stringLP(); err != nil {
		return c, err
	}
	if c.DistanceTraveled, err = d.u32(); err != nil {
		return c, err
	}
	if c.Vin, err = d.Vin(); err != nil {
		return c, err
	}
	return c, nil
}

// --- RevPolish / Contract ---

func (e *Encoder) RevPolish(r chain.RevPolish) {
	e.u32(uint32(r.Kind))
	switch r.Kind {
	case chain.RevPolishNumber:
		e.f64(r.Number)
	case chain.RevPolishOperation:
		e.buf.WriteByte(r.Operation)
	case chain.RevPolishArg:
		// no payload
	}
}

func (d *Decoder) RevPolish() (chain.RevPolish, error) {
	kind, err := d.u32()
	if err != nil {
		return chain.RevPolish{}, err
	}
	r := chain.RevPolish{Kind: chain.RevPolishKind(kind)}
	switch r.Kind {
	case chain.RevPolishNumber:
		if r.Number, err = d.f64(); err != nil {
			return r, err
		}
	case chain.RevPolishOperation:
		b, err := d.bytesRaw(1)
		if err != nil {
			return r, err
		}
		r.Operation = b[0]
	case chain.RevPolishArg:
		// no payload
	default:
		return r, fmt.Errorf("wire: unknown RevPolish kind %d", kind)
	}
	return r, nil
}

func (e *Encoder) Contract(c chain.Contract) {
	e.u32(uint32(len(c)))
	for _, item := range c {
		e.RevPolish(item)
	}
}

func (d *Decoder) Contract() (chain.Contract, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	if n > maxLenPrefix {
		return nil, fmt.Errorf("wire: contract length %d exceeds sane maximum", n)
	}
	c := make(chain.Contract, 0, n)
	for i := uint32(0); i < n; i++ {
		item, err := d.RevPolish()
		if err != nil {
			return nil, err
		}
		c = append(c, item)
	}
	return c, nil
}

// --- ContractResult ---

func (e *Encoder) ContractResult(r chain.ContractResult) {
	e.u32(r.BlockID)
	e.f64(r.Result)
	e.Float64Slice(r.Args)
}

func (d *Decoder) ContractResult() (chain.ContractResult, error) {
	var r chain.ContractResult
	var err error
	if r.BlockID, err = d.u32(); err != nil {
		return r, err
	}
	if r.Result, err = d.f64(); err != nil {
		return r, err
	}
	if r.Args, err = d.Float64Slice(); err != nil {
		return r, err
	}
	return r, nil
}

// --- []float64, used by CalcContract payloads and ContractResult.Args ---

func (e *Encoder) Float64Slice(fs []float64) {
	e.u32(uint32(len(fs)))
	for _, f := range fs {
		e.f64(f)
	}
}

func (d *Decoder) Float64Slice() ([]float64, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	if n > maxLenPrefix {
		return nil, fmt.Errorf("wire: float slice length %d exceeds sane maximum", n)
	}
	fs := make([]float64, 0, n)
	for i := uint32(0); i < n; i++ {
		f, err := d.f64()
		if err != nil {
			return nil, err
		}
		fs = append(fs, f)
	}
	return fs, nil
}

// --- BlockData ---

func (e *Encoder) BlockData(d chain.BlockData) {
	e.u32(uint32(d.Kind))
	switch d.Kind {
	case chain.BlockDataContract:
		e.Contract(d.Contract)
	case chain.BlockDataCar:
		e.Car(d.Car)
	case chain.BlockDataContractResult:
		e.ContractResult(d.ContractResult)
	}
}

func (d *Decoder) BlockData() (chain.BlockData, error) {
	kind, err := d.u32()
	if err != nil {
		return chain.BlockData{}, err
	}
	bd := chain.BlockData{Kind: chain.BlockDataKind(kind)}
	switch bd.Kind {
	case chain.BlockDataContract:
		if bd.Contract, err = d.Contract(); err != nil {
			return bd, err
		}
	case chain.BlockDataCar:
		if bd.Car, err = d.Car(); err != nil {
			return bd, err
		}
	case chain.BlockDataContractResult:
		if bd.ContractResult, err = d.ContractResult(); err != nil {
			return bd, err
		}
	default:
		return bd, fmt.Errorf("wire: unknown BlockData kind %d", kind)
	}
	return bd, nil
}

// --- Block ---

func (e *Encoder) Block(b chain.Block) {
	e.bytesRaw(b.Hash[:])
	e.u32(b.ID)
	e.bytesRaw(b.PrevHash[:])
	e.u32(b.Nonce)
	e.BlockData(b.Data)
	e.stringLP(b.MinedBy)
}

func (d *Decoder) Block() (chain.Block, error) {
	var b chain.Block
	h, err := d.bytesRaw(chain.HashLen)
	if err != nil {
		return b, err
	}
	copy(b.Hash[:], h)
	if b.ID, err = d.u32(); err != nil {
		return b, err
	}
	ph, err := d.bytesRaw(chain.HashLen)
	if err != nil {
		return b, err
	}
	copy(b.PrevHash[:], ph)
	if b.Nonce, err = d.u32(); err != nil {
		return b, err
	}
	if b.Data, err = d.BlockData(); err != nil {
		return b, err
	}
	if b.MinedBy, err = d.stringLP(); err != nil {
		return b, err
	}
	return b, nil
}

// --- Chain (sequence of blocks) ---

func (e *Encoder) Chain(c chain.Chain) {
	e.u32(uint32(len(c)))
	for _, b := range c {
		e.Block(b)
	}
}

func (d *Decoder) ChainBlocks() (chain.Chain, error) {
	n, err := d.u32()
	if err != nil {
		return nil, err
	}
	if n > maxLenPrefix {
		return nil, fmt.Errorf("wire: chain length %d exceeds sane maximum", n)
	}
	c := make(chain.Chain, 0, n)
	for i := uint32(0); i < n; i++ {
		b, err := d.Block()
		if err != nil {
			return nil, err
		}
		c = append(c, b)
	}
	return c, nil
}

// --- Message ---

func (e *Encoder) Message(m chain.Message) {
	e.u32(uint32(m.Command))
	e.bytesLP(m.Data)
}

func (d *Decoder) Message() (chain.Message, error) {
	var m chain.Message
	cmd, err := d.u32()
	if err != nil {
		return m, err
	}
	m.Command = chain.Command(cmd)
	if m.Data, err = d.bytesLP(); err != nil {
		return m, err
	}
	return m, nil
}

// --- package-level convenience wrappers ---

func EncodeMessage(m chain.Message) []byte {
	e := NewEncoder()
	e.Message(m)
	return e.Bytes()
}

func DecodeMessage(b []byte) (chain.Message, error) {
	return NewDecoder(b).Message()
}

func EncodeBlock(b chain.Block) []byte {
	e := NewEncoder()
	e.Block(b)
	return e.Bytes()
}

func DecodeBlock(b []byte) (chain.Block, error) {
	return NewDecoder(b).Block()
}

func EncodeBlockData(d chain.BlockData) []byte {
	e := NewEncoder()
	e.BlockData(d)
	return e.Bytes()
}

func DecodeBlockData(b []byte) (chain.BlockData, error) {
	return NewDecoder(b).BlockData()
}

func EncodeChain(c chain.Chain) []byte {
	e := NewEncoder()
	e.Chain(c)
	return e.Bytes()
}

func DecodeChain(b []byte) (chain.Chain, error) {
	return NewDecoder(b).ChainBlocks()
}

func EncodeFloat64Slice(fs []float64) []byte {
	e := NewEncoder()
	e.Float64Slice(fs)
	return e.Bytes()
}

func DecodeFloat64Slice(b []byte) ([]float64, error) {
	return NewDecoder(b).Float64Slice()
}

// HashPreimage builds the big-endian id/nonce canonical preimage that is
// hashed to produce a Block's Hash. It deliberately does not reuse the
// little-endian Block encoding above: the source computes the digest over
// big-endian id/nonce specifically, independent of the wire's endianness.
func HashPreimage(id uint32, prevHash [chain.HashLen]byte, data chain.BlockData, minedBy string, nonce uint32) []byte {
	var buf bytes.Buffer
	var idBE [4]byte
	binary.BigEndian.PutUint32(idBE[:], id)
	buf.Write(idBE[:])
	buf.Write(prevHash[:])
	buf.Write(EncodeBlockData(data))
	e := NewEncoder()
	e.stringLP(minedBy)
	buf.Write(e.Bytes())
	var nonceBE [4]byte
	binary.BigEndian.PutUint32(nonceBE[:], nonce)
	buf.Write(nonceBE[:])
	return buf.Bytes()
}
