// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "time"

// RegNetParams returns the consensus parameters for the regression test
// network. This should not be confused with the public test network or the
// simulation test network: its purpose is unit and RPC-server tests, so its
// PoW cache/dataset is intentionally tiny and its seed epoch is short enough
// to hit a rotation boundary within a few dozen blocks. Since this network is
// only for unit testing, its values are subject to change even if doing so
// would be a hard fork on a real network.
func RegNetParams() *Params {
	params := MainNetParams()
	params.Name = "regnet"
	params.Net = 0xd05c9e9e
	params.DefaultPort = "19557"
	params.DNSSeeds = nil
	params.GenesisHash = newHashFromStr("0000000000000000000000000000000000000000000000000000000009e9e")
	params.GenesisTimestamp = time.Unix(1700000003, 0)
	params.MinDifficulty = bigDifficulty(1)
	params.MaxDifficulty = bigDifficulty(1 << 62)
	params.TargetBlockTimeMS = 100
	params.HalfLifeMS = 8800
	params.MinSolveMS = 1
	params.MaxSolveMS = 1000
	params.SeedEpoch = 16
	params.SeedActivationDelay = 4

	params.PoW = PoWParams{
		CacheSizeWords:     1 << 10,
		DatasetSizeWords:   1 << 14,
		DatasetItemParents: 16,
		MixRounds:          4,
	}
	return params
}
