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

// vlnode is the long-lived peer process: it joins the multicast group,
// mines, and replicates the chain with its peers.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/inconshreveable/log15"
	"github.com/urfave/cli/v2"

	"github.com/kuba00739/blockchain/node"
)

var log = log15.New("pkg", "main")

// fileConfig is the optional on-disk override, read when -config is given.
// Entirely optional: an empty name falls back to the host name.
type fileConfig struct {
	Name string `toml:"name"`
}

func main() {
	app := &cli.App{
		Name:  "vlnode",
		Usage: "vehicle-ledger peer node",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "mined_by label (default: host name)"},
			&cli.StringFlag{Name: "config", Usage: "optional TOML config file"},
			&cli.StringFlag{Name: "verbosity", Value: "info", Usage: "log level: crit,error,warn,info,debug"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	setupLogging(c.String("verbosity"))

	cfg := node.DefaultConfig
	if path := c.String("config"); path != "" {
		var fc fileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return fmt.Errorf("vlnode: reading config %s: %w", path, err)
		}
		cfg.Name = fc.Name
	}
	if name := c.String("name"); name != "" {
		cfg.Name = name
	}

	n, err := node.New(cfg)
	if err != nil {
		return err
	}
	n.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	return n.Stop()
}

func setupLogging(level string) {
	lvl, err := log15.LvlFromString(level)
	if err != nil {
		lvl = log15.LvlInfo
	}
	log15.Root().SetHandler(log15.LvlFilterHandler(lvl, log15.StreamHandler(os.Stderr, log15.TerminalFormat())))
}
