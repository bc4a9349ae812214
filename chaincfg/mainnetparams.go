// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/decred/dcrd/math/uint256"
)

// MainNetParams returns the consensus parameters for the main duskd network.
func MainNetParams() *Params {
	return &Params{
		Name:        "mainnet",
		Net:         0xd05cface,
		DefaultPort: "9433",
		DNSSeeds: []DNSSeed{
			{"seed.duskd.org", true},
			{"dnsseed.duskchain.io", true},
		},

		GenesisHash:      newHashFromStr("000000000000000000000000000000000000000000000000000000000d05c"),
		GenesisTimestamp: time.Unix(1700000000, 0),

		K:                 18,
		MaxParents:        10,
		TargetBlockTimeMS: 1000,
		HalfLifeMS:        88000,
		MinDifficulty:     bigDifficulty(1),
		MaxDifficulty:     maxUint256(),
		MinSolveMS:        1,
		MaxSolveMS:        10 * 1000,

		SeedEpoch:           103680,
		SeedActivationDelay: 2880,

		PoW: PoWParams{
			CacheSizeWords:     1 << 21, // 64 MiB light cache (32-byte items)
			DatasetSizeWords:   1 << 27, // 4 GiB dataset (32-byte items)
			DatasetItemParents: 256,
			MixRounds:          64,
		},
	}
}

// maxUint256 returns 2^256 - 1, the ceiling every network's MaxDifficulty is
// measured against before being tightened for non-production use.
func maxUint256() uint256.Uint256 {
	var allOnes [32]byte
	for i := range allOnes {
		allOnes[i] = 0xff
	}
	var u uint256.Uint256
	u.SetBytes(&allOnes)
	return u
}
