// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"encoding/binary"

	"github.com/dusklabs/duskd/chaincfg"
	blake2b "github.com/minio/blake2b-simd"
)

// Item is one 32-byte element of the light cache or the full dataset.
type Item [32]byte

// blake2b256 hashes data with an unkeyed, 32-byte-output blake2b, the same
// hash family the teacher's equihash package already depended on
// (github.com/minio/blake2b-simd).
func blake2b256(data []byte) Item {
	sum := blake2b.Sum256(data)
	return Item(sum)
}

func xor(a, b Item) Item {
	var out Item
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// GenerateCache derives the light cache deterministically from seed. It
// first fills the cache with a hash chain, then runs a small number of
// mixing passes that XOR each item against a pseudo-randomly chosen sibling
// before rehashing, so that no item can be produced without having touched a
// large, scattered fraction of the cache — the property "light" mode trades
// time for (component A's memory-hardness), and the same property "fast"
// mode trades space to avoid paying at every hash.
func GenerateCache(seed [32]byte, params chaincfg.PoWParams) []Item {
	n := params.CacheSizeWords
	cache := make([]Item, n)

	cache[0] = blake2b256(seed[:])
	for i := uint32(1); i < n; i++ {
		cache[i] = blake2b256(cache[i-1][:])
	}

	const mixPasses = 3
	for pass := 0; pass < mixPasses; pass++ {
		for i := uint32(0); i < n; i++ {
			prev := cache[(i+n-1)%n]
			siblingIdx := binary.LittleEndian.Uint32(cache[i][:4]) % n
			mixed := xor(prev, cache[siblingIdx])
			cache[i] = blake2b256(mixed[:])
		}
	}
	return cache
}

// GenerateDataset expands cache into the full dataset used by fast-mode
// hashing: DatasetSizeWords items, each produced by calcItem. It is the only
// place in duskd that materializes the whole dataset in memory; verifiers
// never call it.
func GenerateDataset(cache []Item, params chaincfg.PoWParams) []Item {
	dataset := make([]Item, params.DatasetSizeWords)
	for i := range dataset {
		dataset[i] = calcItem(cache, uint32(i), params)
	}
	return dataset
}

// fnvPrime is the 32-bit FNV-1 prime, used to combine indices the same way
// memory-hard hash functions in this family traditionally do: cheap,
// non-cryptographic, and good enough to scatter parent selection.
const fnvPrime = 0x01000193

func fnvMix(a, b uint32) uint32 {
	return (a * fnvPrime) ^ b
}

// calcItem computes dataset (or light-mode) item index from cache. Both
// LightHash and FastHash route through this function for every item they
// touch, so the two modes are bit-for-bit identical regardless of whether
// the caller recomputes the item every time or looks it up from a
// precomputed dataset slice.
func calcItem(cache []Item, index uint32, params chaincfg.PoWParams) Item {
	n := uint32(len(cache))
	var buf [36]byte
	base := cache[index%n]
	copy(buf[:32], base[:])
	binary.LittleEndian.PutUint32(buf[32:], index)
	mix := blake2b256(buf[:])

	for j := uint32(0); j < params.DatasetItemParents; j++ {
		word := binary.LittleEndian.Uint32(mix[(j%8)*4 : (j%8)*4+4])
		parentIdx := fnvMix(index^j, word) % n
		mix = xor(mix, cache[parentIdx])
		mix = blake2b256(mix[:])
	}
	return mix
}
