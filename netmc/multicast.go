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

// Package netmc wraps the IPv4 multicast transport: a receive socket bound
// to the group on the unspecified interface, and a send socket that
// publishes datagrams to it. It is the node's only dependency on the
// network stack — everything above it speaks chain.Message.
package netmc

import (
	"fmt"
	"net"

	"github.com/inconshreveable/log15"
)

// Group and Port are the protocol's hard-coded transport constants.
const (
	Group        = "239.0.0.1"
	Port         = 9000
	SendPort     = 8000
	ReadBufBytes = 4096
)

var log = log15.New("pkg", "netmc")

// Conn bundles the receive and send sockets for the multicast group.
type Conn struct {
	recv *net.UDPConn
	send *net.UDPConn
	dst  *net.UDPAddr
}

// Dial joins the multicast group for receiving and opens a send socket.
// Bind failure here is a fatal startup condition.
func Dial() (*Conn, error) {
	groupAddr := &net.UDPAddr{IP: net.ParseIP(Group), Port: Port}

	recv, err := net.ListenMulticastUDP("udp4", nil, groupAddr)
	if err != nil {
		return nil, fmt.Errorf("netmc: join multicast group: %w", err)
	}
	recv.SetReadBuffer(ReadBufBytes)

	send, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: SendPort})
	if err != nil {
		recv.Close()
		return nil, fmt.Errorf("netmc: open send socket: %w", err)
	}

	return &Conn{recv: recv, send: send, dst: groupAddr}, nil
}

// DialSend opens only the send socket, for stateless clients (cmd/vlclient)
// that publish one Message and exit without joining the group.
func DialSend() (*Conn, error) {
	send, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("netmc: open send socket: %w", err)
	}
	return &Conn{send: send, dst: &net.UDPAddr{IP: net.ParseIP(Group), Port: Port}}, nil
}

// Close releases whichever sockets are open.
func (c *Conn) Close() error {
	sendErr := c.send.Close()
	if c.recv == nil {
		return sendErr
	}
	recvErr := c.recv.Close()
	if sendErr != nil {
		return sendErr
	}
	return recvErr
}

// Send publishes a raw datagram to the multicast group. Best-effort: no
// retransmission or delivery guarantee.
func (c *Conn) Send(payload []byte) error {
	_, err := c.send.WriteToUDP(payload, c.dst)
	if err != nil {
		return fmt.Errorf("netmc: send: %w", err)
	}
	return nil
}

// Receive reads one datagram, blocking until one arrives. The Listener
// never times out; receive blocks indefinitely.
func (c *Conn) Receive() ([]byte, error) {
	buf := make([]byte, ReadBufBytes)
	n, _, err := c.recv.ReadFromUDP(buf)
	if err != nil {
		return nil, fmt.Errorf("netmc: receive: %w", err)
	}
	return buf[:n], nil
}

// Listen runs the Listener loop: receive a datagram, decode it with decode,
// and pass the result to forward. Decode failures are logged and
// dropped. forward is called inline, so the loop waits for as long as
// forward blocks (for the node, until its buffered inbound channel has room).
func Listen(conn *Conn, decode func([]byte) (interface{}, error), forward func(interface{}), stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		raw, err := conn.Receive()
		if err != nil {
			select {
			case <-stop:
				return
			default:
			}
			log.Warn("datagram receive failed", "err", err)
			continue
		}
		msg, err := decode(raw)
		if err != nil {
			log.Warn("dropping malformed datagram", "err", err)
			continue
		}
		forward(msg)
	}
}
