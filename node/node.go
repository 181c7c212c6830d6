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

// Package node wires the Listener, Broadcast Ticker and Dispatcher into one
// long-lived process with a Start/Stop service lifecycle.
package node

import (
	"fmt"
	"sync"
	"time"

	"github.com/inconshreveable/log15"

	"github.com/kuba00739/blockchain/chain"
	"github.com/kuba00739/blockchain/dispatch"
	"github.com/kuba00739/blockchain/metricsreg"
	"github.com/kuba00739/blockchain/netmc"
	"github.com/kuba00739/blockchain/wire"
)

var log = log15.New("pkg", "node")

// Node owns the three long-lived goroutines: Listener, Broadcast Ticker, and
// Dispatcher.
type Node struct {
	conn *netmc.Conn
	disp *dispatch.Dispatcher

	stop chan struct{}
	wg   sync.WaitGroup
}

// New joins the multicast group and builds the Dispatcher. cfg.Name
// defaults to the host name when empty.
func New(cfg Config) (*Node, error) {
	name := cfg.Name
	if name == "" {
		hostname, err := DefaultName()
		if err != nil {
			return nil, fmt.Errorf("node: resolve host name: %w", err)
		}
		name = hostname
	}

	conn, err := netmc.Dial()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrTransport, err)
	}

	return &Node{
		conn: conn,
		disp: dispatch.New(name, conn),
		stop: make(chan struct{}),
	}, nil
}

// Start launches the Listener, Broadcast Ticker and Dispatcher goroutines
// and returns immediately.
func (n *Node) Start() {
	n.wg.Add(3)
	go n.runListener()
	go n.runTicker()
	go n.runDispatcher()
	log.Info("node started")
}

func (n *Node) runDispatcher() {
	defer n.wg.Done()
	n.disp.Run(n.stop)
}

func (n *Node) runListener() {
	defer n.wg.Done()
	netmc.Listen(n.conn, decodeMessage, n.forwardInbound, n.stop)
}

func (n *Node) runTicker() {
	defer n.wg.Done()
	ticker := time.NewTicker(BroadcastInterval)
	defer ticker.Stop()
	for {
		select {
		case <-n.stop:
			return
		case <-ticker.C:
			n.forwardInbound(chain.Message{Command: chain.Broadcast})
			metricsreg.CaptureRuntimeStats()
		}
	}
}

func decodeMessage(raw []byte) (interface{}, error) {
	msg, err := wire.DecodeMessage(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", chain.ErrDecode, err)
	}
	return msg, nil
}

func (n *Node) forwardInbound(v interface{}) {
	msg, ok := v.(chain.Message)
	if !ok {
		return
	}
	select {
	case n.disp.Inbound() <- msg:
	case <-n.stop:
	}
}

// Stop terminates all three goroutines and releases the multicast sockets.
func (n *Node) Stop() error {
	close(n.stop)
	err := n.conn.Close()
	n.wg.Wait()
	log.Info("node stopped")
	return err
}

// Dispatcher exposes the underlying Dispatcher, for clients (e.g. tests)
// that want direct access to the chain.
func (n *Node) Dispatcher() *dispatch.Dispatcher { return n.disp }
