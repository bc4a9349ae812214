// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dusklabs/duskd/chaincfg"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultDataDirname = "data"
	defaultLogFilename = "duskd.log"
	defaultLogLevel    = "info"
	defaultWorkers     = 0 // 0 means GOMAXPROCS, matching mining.NewCPUSolver
)

// config defines the command-line and config-file options duskd accepts,
// following the same tagged-struct shape the teacher feeds to go-flags.
type config struct {
	DataDir    string `long:"datadir" description:"Directory to store block data"`
	LogDir     string `long:"logdir" description:"Directory to log output"`
	LogLevel   string `long:"loglevel" description:"Logging level {trace, debug, info, warn, error, critical, off}"`
	Mainnet    bool   `long:"mainnet" description:"Use the main network"`
	TestNet    bool   `long:"testnet" description:"Use the test network"`
	SimNet     bool   `long:"simnet" description:"Use the simulation test network"`
	RegNet     bool   `long:"regnet" description:"Use the regression test network"`
	MineBlocks bool   `long:"mine" description:"Run the built-in miner loop against the local DAG"`
	Workers    int    `long:"miningworkers" description:"Number of CPU mining workers (0 = GOMAXPROCS)"`
}

// netParams selects the active chaincfg.Params from the mutually exclusive
// network flags, defaulting to regnet — a solo/local-testing default since
// duskd carries no P2P transport to discover mainnet peers with.
func (c *config) netParams() (*chaincfg.Params, error) {
	set := 0
	var params *chaincfg.Params
	if c.Mainnet {
		set++
		params = chaincfg.MainNetParams()
	}
	if c.TestNet {
		set++
		params = chaincfg.TestNetParams()
	}
	if c.SimNet {
		set++
		params = chaincfg.SimNetParams()
	}
	if c.RegNet {
		set++
		params = chaincfg.RegNetParams()
	}
	if set > 1 {
		return nil, fmt.Errorf("only one of --mainnet, --testnet, --simnet, --regnet may be specified")
	}
	if set == 0 {
		params = chaincfg.RegNetParams()
	}
	return params, nil
}

// netName returns the directory name to use for a network's data and log
// files. It is the teacher's own netName helper (params.go), generalized
// from exccd's wire.TestNet special case to duskd's four named networks.
func netName(params *chaincfg.Params) string {
	return params.Name
}

func defaultHomeDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, ".duskd")
}

// loadConfig parses command-line flags into a config, filling in defaults
// and resolving the active network's data/log directories.
func loadConfig() (*config, *chaincfg.Params, error) {
	cfg := config{
		DataDir:  filepath.Join(defaultHomeDir(), defaultDataDirname),
		LogDir:   defaultHomeDir(),
		LogLevel: defaultLogLevel,
		Workers:  defaultWorkers,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		return nil, nil, err
	}

	params, err := cfg.netParams()
	if err != nil {
		return nil, nil, err
	}

	netDir := netName(params)
	cfg.DataDir = filepath.Join(cfg.DataDir, netDir)
	cfg.LogDir = filepath.Join(cfg.LogDir, netDir)

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
		return nil, nil, err
	}

	return &cfg, params, nil
}

func (c *config) logFilePath() string {
	return filepath.Join(c.LogDir, defaultLogFilename)
}

func (c *config) dbPath() string {
	return filepath.Join(c.DataDir, "blocks.ldb")
}
