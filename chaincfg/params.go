// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
)

// DNSSeed identifies a DNS seed.
type DNSSeed struct {
	// Host is the host of the DNS seed.
	Host string

	// HasFiltering indicates whether the seed supports filtering by
	// service flags (wire.ServiceFlag).
	HasFiltering bool
}

// PoWParams pins the memory-hard hash primitive's parameter set (component
// 4.A). It must be identical on every node for a given network; changing it
// is a hard fork.
type PoWParams struct {
	// CacheSizeWords is the number of 8-word (32 byte) items in the light
	// cache.
	CacheSizeWords uint32

	// DatasetSizeWords is the number of 8-word items in the full dataset
	// used by fast-mode hashing. It is a fixed multiple of CacheSizeWords.
	DatasetSizeWords uint32

	// DatasetItemParents is the number of pseudo-random cache items mixed
	// together to produce one dataset (or light-mode) item.
	DatasetItemParents uint32

	// MixRounds is the number of mixing rounds applied per hash.
	MixRounds uint32
}

// Params defines a duskd network by its consensus constants, PoW parameters,
// and genesis block. Every constant enumerated in spec.md §6 appears here.
type Params struct {
	// Name is the identifier for the network, e.g. "mainnet".
	Name string

	// Net is the magic number identifying this network on the wire.
	Net uint32

	// DefaultPort is the default TCP port for this network's transport.
	DefaultPort string

	// DNSSeeds is the list of seeds used to discover initial peers.
	DNSSeeds []DNSSeed

	// GenesisHash is the hash of the genesis block.
	GenesisHash chainhash.Hash

	// GenesisTimestamp is the wall-clock time recorded in the genesis
	// block; it is never validated against PoW.
	GenesisTimestamp time.Time

	// K is the GHOSTDAG k-cluster parameter (spec.md §4.G).
	K uint64

	// MaxParents bounds the number of parents a single block may name.
	MaxParents int

	// TargetBlockTimeMS is the ASERT controller's target inter-block time.
	TargetBlockTimeMS int64

	// HalfLifeMS is the ASERT controller's exponential half-life.
	HalfLifeMS int64

	// MinDifficulty and MaxDifficulty bound every computed difficulty.
	MinDifficulty uint256.Uint256
	MaxDifficulty uint256.Uint256

	// MinSolveMS and MaxSolveMS bound the clamped per-block solve time fed
	// into the ASERT controller.
	MinSolveMS int64
	MaxSolveMS int64

	// SeedEpoch (N) is the number of blocks between PoW seed changes.
	SeedEpoch uint64

	// SeedActivationDelay (D) is how many blocks after a seed change the
	// new seed actually activates; D must be strictly less than N.
	SeedActivationDelay uint64

	// PoW is the hash primitive's parameter set.
	PoW PoWParams
}

// bigDifficulty is a convenience constructor for a uint256.Uint256 from a
// uint64, used throughout the Params tables below.
func bigDifficulty(v uint64) uint256.Uint256 {
	var u uint256.Uint256
	u.SetUint64(v)
	return u
}

// newHashFromStr converts the passed big-endian hex string into a
// chainhash.Hash, panicking on error. It must only be called with hardcoded,
// and therefore known good, strings.
func newHashFromStr(hexStr string) chainhash.Hash {
	hash, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic("chaincfg: invalid hash in source file: " + hexStr)
	}
	return *hash
}
