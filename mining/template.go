// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mining implements component 4.I: turning the DAG's current tip
// set into a minable header and searching for a nonce that satisfies the
// active PoW target. Grounded on the teacher's split between a template
// builder and a solver (mining/mining.go's NewBlockTemplate shape in the
// daglabs-btcd reference files) and on a plain worker-pool PoW search
// (_examples/other_examples/66d0c491_hc172808-gyd-chain__gydschain's cpu.go)
// reimplemented against duskd's 32-byte nonce and memory-hard hash.
package mining

import (
	"errors"
	"sort"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/dusklabs/duskd/blockdag"
	"github.com/dusklabs/duskd/chaincfg"
	"github.com/dusklabs/duskd/pow"
	"github.com/dusklabs/duskd/pow/seed"
)

// ErrNoTips is returned by NewBlockTemplate when the DAG has no tips to
// build on, which should only happen before genesis is inserted.
var ErrNoTips = errors.New("mining: DAG has no tips")

// Template is everything a miner needs to search for a valid seal: the
// parent set a new block will commit to, the header digest that seal search
// hashes against, the seed that picks the light cache, and the difficulty
// the resulting hash must beat.
type Template struct {
	Parents    []chainhash.Hash
	HeaderHash chainhash.Hash
	Height     uint64
	Difficulty uint256.Uint256
	SeedHash   chainhash.Hash
}

// chainReader is the subset of *blockdag.DAG the template builder needs. It
// exists so tests can substitute a fake without standing up a full DAG.
type chainReader interface {
	Tips() ([]chainhash.Hash, error)
	VirtualTip() (chainhash.Hash, bool)
	Ghostdag(hash chainhash.Hash) (*blockdag.GhostdagData, error)
	CurrentDifficulty() uint256.Uint256
	HashAtHeight(height uint64) (chainhash.Hash, bool)
}

// NewBlockTemplate builds a Template committing to up to params.MaxParents
// of dag's current tips, selected by descending blue_work. The header
// digest is the hash of that parent list — duskd carries no transaction set
// (per spec.md's explicit non-goal), so the parent commitment is the entire
// header content subject to the seal.
func NewBlockTemplate(dag chainReader, params *chaincfg.Params) (*Template, error) {
	tips, err := dag.Tips()
	if err != nil {
		return nil, err
	}
	if len(tips) == 0 {
		return nil, ErrNoTips
	}

	parents, err := selectParents(dag, tips, params.MaxParents)
	if err != nil {
		return nil, err
	}

	virtualTip, ok := dag.VirtualTip()
	if !ok {
		return nil, ErrNoTips
	}
	tipData, err := dag.Ghostdag(virtualTip)
	if err != nil {
		return nil, err
	}
	if tipData == nil {
		return nil, ErrNoTips
	}
	height := tipData.BlueScore + 1

	seedHash, ok := seed.Seed(height, params.SeedEpoch, params.SeedActivationDelay, dag)
	if !ok {
		return nil, errors.New("mining: seed unavailable for height")
	}

	return &Template{
		Parents:    parents,
		HeaderHash: headerDigest(parents),
		Height:     height,
		Difficulty: dag.CurrentDifficulty(),
		SeedHash:   seedHash,
	}, nil
}

// selectParents picks up to maxParents of tips, ordered by descending
// blue_work with ties broken by the smaller hash, per the GHOSTDAG
// selected-parent rule: the first entry of the result is the selected
// parent. Capping here is what keeps the miner's own output from being
// rejected by the structure check once live tips outnumber maxParents.
func selectParents(dag chainReader, tips []chainhash.Hash, maxParents int) ([]chainhash.Hash, error) {
	type candidate struct {
		hash     chainhash.Hash
		blueWork uint256.Uint256
	}

	candidates := make([]candidate, 0, len(tips))
	for _, tip := range tips {
		data, err := dag.Ghostdag(tip)
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, ErrNoTips
		}
		candidates = append(candidates, candidate{hash: tip, blueWork: data.BlueWork})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i].blueWork, candidates[j].blueWork
		if a.Eq(&b) {
			return hashLess(candidates[i].hash, candidates[j].hash)
		}
		return a.Gt(&b)
	})

	if maxParents > 0 && len(candidates) > maxParents {
		candidates = candidates[:maxParents]
	}

	parents := make([]chainhash.Hash, len(candidates))
	for i, c := range candidates {
		parents[i] = c.hash
	}
	return parents, nil
}

// headerDigest commits to the parent set in selectParents' order (descending
// blue_work, ascending-hash tiebreak) — consensus state every node agrees
// on, so the digest doesn't depend on tip discovery order.
func headerDigest(parents []chainhash.Hash) chainhash.Hash {
	buf := make([]byte, 0, len(parents)*chainhash.HashSize)
	for _, p := range parents {
		buf = append(buf, p[:]...)
	}
	return chainhash.HashH(buf)
}

func hashLess(a, b chainhash.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// AsBlock finishes a Template into a blockdag.Block once a seal (nonce,
// resulting hash, arrival time) has been found for it.
func (t *Template) AsBlock(resultHash chainhash.Hash, nonce [32]byte, timeMS int64) blockdag.Block {
	return blockdag.Block{
		Hash:       resultHash,
		Parents:    t.Parents,
		Nonce:      nonce,
		HeaderHash: t.HeaderHash,
		TimeMS:     timeMS,
	}
}

// datasetFor materializes the fast-mode dataset a solver needs for
// template's seed. Exposed as a function (not a Template method) so solving
// can cache datasets across templates that share a seed epoch.
func datasetFor(t *Template, params chaincfg.PoWParams) []pow.Item {
	cache := pow.GenerateCache([32]byte(t.SeedHash), params)
	return pow.GenerateDataset(cache, params)
}
