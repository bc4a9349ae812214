// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "time"

// TestNetParams returns the consensus parameters for the public duskd test
// network. Its seed epoch is shortened relative to mainnet so seed rotation
// can be exercised without waiting on mainnet's full 103,680-block epoch.
func TestNetParams() *Params {
	params := MainNetParams()
	params.Name = "testnet"
	params.Net = 0xd05c7e57
	params.DefaultPort = "19433"
	params.DNSSeeds = []DNSSeed{
		{"testnet-seed.duskd.org", true},
	}
	params.GenesisHash = newHashFromStr("000000000000000000000000000000000000000000000000000000000711e")
	params.GenesisTimestamp = time.Unix(1700000001, 0)
	params.SeedEpoch = 4032
	params.SeedActivationDelay = 288
	return params
}
