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

// vlclient is the stateless command sender: it composes one Message,
// publishes it to the multicast group, and exits.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/kuba00739/blockchain/chain"
	"github.com/kuba00739/blockchain/contract"
	"github.com/kuba00739/blockchain/netmc"
	"github.com/kuba00739/blockchain/wire"
)

// ownerNames/ownerSurnames are the fixed name pool the CAR command samples
// from: owner name and surname chosen from a fixed name pool.
var (
	ownerNames    = []string{"Jakub", "Max", "Anna", "Piotr", "Ewa", "Tomasz"}
	ownerSurnames = []string{"Niezabitowski", "Bravo", "Kowalski", "Nowak", "Zielinski"}
)

func main() {
	app := &cli.App{
		Name:                   "vlclient",
		Usage:                  "send one command to the vehicle-ledger multicast group",
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			{Name: "DUMP", Usage: "request a chain dump", Action: runDump},
			{Name: "CAR", Usage: "register a random car", Action: runCar},
			{Name: "CONT", Usage: "CONT op1 op2 ... — mine a contract", Action: runCont},
			{Name: "CALC", Usage: "CALC arg1 ... block_id — evaluate a contract", Action: runCalc},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func send(msg chain.Message) error {
	conn, err := netmc.DialSend()
	if err != nil {
		return err
	}
	defer conn.Close()
	return conn.Send(wire.EncodeMessage(msg))
}

func runDump(c *cli.Context) error {
	return send(chain.Message{Command: chain.PrintChain})
}

func runCar(c *cli.Context) error {
	car := chain.Car{
		OwnerName:        ownerNames[rand.Intn(len(ownerNames))],
		OwnerSurname:     ownerSurnames[rand.Intn(len(ownerSurnames))],
		DistanceTraveled: uint32(rand.Intn(1_000_000)),
	}
	return send(chain.Message{
		Command: chain.DataToBlock,
		Data:    wire.EncodeBlockData(chain.CarData(car)),
	})
}

func runCont(c *cli.Context) error {
	var items chain.Contract
	for _, tok := range c.Args().Slice() {
		item, err := contract.ClassifyToken(tok)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	return send(chain.Message{
		Command: chain.DataToBlock,
		Data:    wire.EncodeBlockData(chain.ContractData(items)),
	})
}

func runCalc(c *cli.Context) error {
	toks := c.Args().Slice()
	if len(toks) == 0 {
		return fmt.Errorf("CALC requires at least a block id")
	}
	args := make([]float64, 0, len(toks))
	for _, tok := range toks {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("CALC: %q is not a number: %w", tok, err)
		}
		args = append(args, f)
	}
	return send(chain.Message{
		Command: chain.CalcContract,
		Data:    wire.EncodeFloat64Slice(args),
	})
}
