// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the consensus parameters for the networks duskd
// understands: the constants from spec.md §6 (K, MAX_PARENTS,
// TARGET_BLOCK_TIME_MS, HALF_LIFE_MS, MIN/MAX_DIFFICULTY, MIN/MAX_SOLVE_MS,
// N, D) plus the genesis block and the PoW cache/dataset sizing that must be
// identical on every node for a given network.
//
// For main packages, a (typically global) var is assigned the address of one
// of the standard Params vars to use as the application's active network.
//
//	var net = flag.String("net", "mainnet", "network to operate on")
//
//	var activeNetParams = chaincfg.MainNetParams()
//
//	func main() {
//	        flag.Parse()
//	        if *net == "testnet" {
//	                activeNetParams = chaincfg.TestNetParams()
//	        }
//	}
package chaincfg
