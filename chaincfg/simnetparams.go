// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "time"

// SimNetParams returns the consensus parameters for the simulation test
// network, intended for integration tests between independently started
// duskd instances. Unlike RegNetParams, this network uses full-size PoW
// cache/dataset sizing so multi-node mining behaves like mainnet.
func SimNetParams() *Params {
	params := MainNetParams()
	params.Name = "simnet"
	params.Net = 0xd05c5121
	params.DefaultPort = "19556"
	params.DNSSeeds = nil
	params.GenesisHash = newHashFromStr("0000000000000000000000000000000000000000000000000000000005121")
	params.GenesisTimestamp = time.Unix(1700000002, 0)
	params.SeedEpoch = 2016
	params.SeedActivationDelay = 144
	return params
}
