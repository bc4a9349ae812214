// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command duskd runs the duskd consensus core as a standalone process: it
// opens (or creates) a block store for the selected network, brings up the
// DAG, and — unlike the teacher's full node — stops there, since P2P
// transport, RPC, and the wallet are all explicit non-goals of this
// project. It exists so the mining and DAG packages have a real process to
// run inside, and so cmd/duskminer has a store to mine against.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dusklabs/duskd/blockdag"
	"github.com/dusklabs/duskd/chaincfg"
	"github.com/dusklabs/duskd/database"
	"github.com/dusklabs/duskd/internal/version"
	"github.com/dusklabs/duskd/mining"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, params, err := loadConfig()
	if err != nil {
		return err
	}

	if err := initLogRotator(cfg.logFilePath()); err != nil {
		return err
	}
	if err := setLogLevels(cfg.LogLevel); err != nil {
		return err
	}

	dbLog.Infof("opening block store at %s", cfg.dbPath())
	driver, err := database.OpenLevelDB(cfg.dbPath())
	if err != nil {
		return err
	}
	defer driver.Close()

	dagLog.Infof("duskd %s starting on %s", version.String(), params.Name)
	dag, err := blockdag.NewDAG(params, driver)
	if err != nil {
		return err
	}

	tip, ok := dag.VirtualTip()
	if ok {
		dagLog.Infof("virtual tip is %s", tip)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		cancel()
	}()

	if cfg.MineBlocks {
		go runMiner(ctx, dag, params, cfg.Workers)
	}

	<-ctx.Done()
	dagLog.Info("received shutdown signal, exiting")
	return nil
}

// runMiner repeatedly builds a template against the DAG's current tips,
// solves it, and imports the result locally — a solo-mining loop suitable
// for regnet/simnet since there is no transport to announce blocks over.
// It stops as soon as ctx is canceled, mid-solve.
func runMiner(ctx context.Context, dag *blockdag.DAG, params *chaincfg.Params, workers int) {
	solver := mining.NewCPUSolver(workers)

	for ctx.Err() == nil {
		tmpl, err := mining.NewBlockTemplate(dag, params)
		if err != nil {
			mnLog.Errorf("building block template: %v", err)
			return
		}

		result, ok := solver.Solve(tmpl, params.PoW, ctx.Done())
		if !ok {
			return
		}

		b := tmpl.AsBlock(result.Hash, result.Nonce, time.Now().UnixMilli())
		if _, err := dag.ImportBlock(b); err != nil {
			mnLog.Errorf("importing mined block %s: %v", b.Hash, err)
			continue
		}
		mnLog.Infof("mined and imported block %s at height %d", b.Hash, tmpl.Height)
	}
}
