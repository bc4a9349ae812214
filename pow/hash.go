// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pow

import (
	"encoding/binary"

	"github.com/dusklabs/duskd/chaincfg"
)

// itemSource abstracts over where a dataset item comes from, so LightHash
// and FastHash can share one mixing loop and stay bit-for-bit identical.
type itemSource interface {
	item(index uint32) Item
}

// cacheSource recomputes each dataset item from the light cache on demand.
// This is what verifiers use: slow, but needs only the cache in memory.
type cacheSource struct {
	cache  []Item
	params chaincfg.PoWParams
}

func (c cacheSource) item(index uint32) Item {
	return calcItem(c.cache, index, c.params)
}

// datasetSource looks up a precomputed item. This is what miners use once
// GenerateDataset has run.
type datasetSource struct {
	dataset []Item
}

func (d datasetSource) item(index uint32) Item {
	return d.dataset[index%uint32(len(d.dataset))]
}

// deriveIndex picks the next item to mix in, folding the current mix state
// together with the round number so consecutive rounds don't repeat.
func deriveIndex(mix Item, round, datasetSize uint32) uint32 {
	offset := (round * 4) % 28
	v := binary.LittleEndian.Uint32(mix[offset:offset+4]) ^ round
	return v % datasetSize
}

// mix runs the shared hashing core: seed the mix state from the 64-byte
// header‖nonce input, then fold in MixRounds items from src, rehashing after
// each. This is the function both LightHash and FastHash delegate to.
func mix(input [64]byte, src itemSource, datasetSize, mixRounds uint32) Item {
	state := blake2b256(input[:])
	var buf [64]byte
	for round := uint32(0); round < mixRounds; round++ {
		idx := deriveIndex(state, round, datasetSize)
		it := src.item(idx)
		copy(buf[:32], state[:])
		copy(buf[32:], it[:])
		state = blake2b256(buf[:])
	}
	return state
}

// LightHash computes H(header_hash‖nonce) using only the light cache,
// recomputing each dataset item it needs on the fly. It is bit-for-bit
// identical to FastHash given the cache GenerateDataset(cache, params) was
// derived from.
func LightHash(input [64]byte, cache []Item, params chaincfg.PoWParams) [32]byte {
	return mix(input, cacheSource{cache, params}, params.DatasetSizeWords, params.MixRounds)
}

// FastHash computes H(header_hash‖nonce) using a precomputed dataset. It is
// the mode miners use, since dataset lookups are far cheaper than
// recomputing calcItem for every mixing round.
func FastHash(input [64]byte, dataset []Item, params chaincfg.PoWParams) [32]byte {
	return mix(input, datasetSource{dataset}, params.DatasetSizeWords, params.MixRounds)
}

// HeaderInput packs a block's header hash and a candidate nonce into the
// 64-byte input the hash primitive consumes.
func HeaderInput(headerHash [32]byte, nonce [32]byte) [64]byte {
	var in [64]byte
	copy(in[:32], headerHash[:])
	copy(in[32:], nonce[:])
	return in
}
