// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command duskminer is the standalone devtool half of component 4.I,
// mirroring the teacher's split between its full node and its separate
// mining/benchmark binaries. Since duskd has no P2P transport or RPC
// surface to submit blocks through, duskminer mines directly against the
// same on-disk store a duskd process uses, so it must be pointed at a data
// directory that isn't concurrently open elsewhere (goleveldb holds an
// exclusive lock on the directory).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/dusklabs/duskd/blockdag"
	"github.com/dusklabs/duskd/chaincfg"
	"github.com/dusklabs/duskd/database"
	"github.com/dusklabs/duskd/internal/version"
	"github.com/dusklabs/duskd/mining"
)

type minerConfig struct {
	DataDir string `long:"datadir" description:"Path to the network's block store directory"`
	RegNet  bool   `long:"regnet" description:"Use the regression test network"`
	SimNet  bool   `long:"simnet" description:"Use the simulation test network"`
	TestNet bool   `long:"testnet" description:"Use the test network"`
	Mainnet bool   `long:"mainnet" description:"Use the main network"`
	Workers int    `long:"workers" description:"Number of CPU mining workers (0 = GOMAXPROCS)"`
	Count   int    `long:"count" description:"Number of blocks to mine before exiting (0 = unbounded)"`
}

func (c *minerConfig) netParams() *chaincfg.Params {
	switch {
	case c.Mainnet:
		return chaincfg.MainNetParams()
	case c.TestNet:
		return chaincfg.TestNetParams()
	case c.SimNet:
		return chaincfg.SimNetParams()
	default:
		return chaincfg.RegNetParams()
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var cfg minerConfig
	if _, err := flags.Parse(&cfg); err != nil {
		return err
	}
	params := cfg.netParams()

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(".", "duskminer-data", params.Name)
	}
	driver, err := database.OpenLevelDB(dataDir)
	if err != nil {
		return fmt.Errorf("opening block store at %s: %w", dataDir, err)
	}
	defer driver.Close()

	dag, err := blockdag.NewDAG(params, driver)
	if err != nil {
		return err
	}

	fmt.Printf("duskminer %s mining on %s (%d workers)\n", version.String(), params.Name, cfg.Workers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		cancel()
	}()

	solver := mining.NewCPUSolver(cfg.Workers)
	mined := 0
	for ctx.Err() == nil {
		if cfg.Count > 0 && mined >= cfg.Count {
			break
		}

		tmpl, err := mining.NewBlockTemplate(dag, params)
		if err != nil {
			return fmt.Errorf("building block template: %w", err)
		}

		result, ok := solver.Solve(tmpl, params.PoW, ctx.Done())
		if !ok {
			break
		}

		b := tmpl.AsBlock(result.Hash, result.Nonce, time.Now().UnixMilli())
		gd, err := dag.ImportBlock(b)
		if err != nil {
			fmt.Fprintf(os.Stderr, "importing mined block %s: %v\n", b.Hash, err)
			continue
		}

		mined++
		fmt.Printf("mined block %s (blue_score=%d, height=%d)\n", b.Hash, gd.BlueScore, tmpl.Height)
	}

	fmt.Printf("mined %d block(s)\n", mined)
	return nil
}
