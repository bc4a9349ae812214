// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockdag implements spec.md §4.E-§4.J: the persistent block DAG,
// its reachability queries, the GHOSTDAG blue/red partition, topological
// ordering, reorg-path computation, and the import pipeline that ties them
// together. It is grounded on kaspad's blockNode/blockdag split (see
// blocknode.go) adapted to the teacher's store-and-capability idiom.
package blockdag

import (
	"sync"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/dusklabs/duskd/blockchain/standalone"
	"github.com/dusklabs/duskd/chaincfg"
	"github.com/dusklabs/duskd/database"
	"github.com/dusklabs/duskd/difficulty"
	"github.com/dusklabs/duskd/pow"
	"github.com/dusklabs/duskd/pow/seed"
)

// BlockFetcher is the block-transport capability spec.md §6 names as an
// external collaborator. duskd's consensus core depends only on this
// interface; no transport is implemented here, per spec.md §1's explicit
// non-goal.
type BlockFetcher interface {
	RequestBlocks(peer string, hashes []chainhash.Hash) ([]Block, error)
}

// Block is the wire-level shape the import pipeline consumes: a candidate
// block's identity, its parents, and the seal spec.md §3 defines as
// (nonce, work).
type Block struct {
	Hash       chainhash.Hash
	Parents    []chainhash.Hash
	Nonce      [32]byte
	HeaderHash chainhash.Hash // header digest without the seal, per spec.md §4.J step 2
	TimeMS     int64          // wall-clock arrival time, fed to the ASERT controller
}

// DAG is the consensus core's single store handle: spec.md §9's resolution
// of the GHOSTDAG/reachability/miner cyclic-dependency problem is to route
// every component through one owner instead of letting them reference each
// other directly.
type DAG struct {
	params *chaincfg.Params

	store *store
	arena *arena
	reach *reachability
	eng   *engine
	diff  *difficulty.Controller

	importMu sync.Mutex // the "single logical writer" of spec.md §5

	cacheMu   sync.Mutex
	seedCache map[chainhash.Hash][]pow.Item
}

// NewDAG constructs a DAG backed by driver, writing the network's genesis
// block if the store is empty.
func NewDAG(params *chaincfg.Params, driver database.Driver) (*DAG, error) {
	st := newStore(driver)
	ar := newArena(st)
	re := newReachability(ar)
	eng := newEngine(ar, re, params.K)

	d := &DAG{
		params:    params,
		store:     st,
		arena:     ar,
		reach:     re,
		eng:       eng,
		diff:      difficulty.NewController(params, params.MinDifficulty),
		seedCache: make(map[chainhash.Hash][]pow.Item),
	}

	has, err := st.hasBlock(params.GenesisHash)
	if err != nil {
		return nil, err
	}
	if !has {
		if err := d.insertGenesis(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *DAG) insertGenesis() error {
	hash := d.params.GenesisHash
	snap, err := d.store.insertRelations(hash, nil)
	if err != nil {
		return err
	}

	gd, err := d.eng.compute(hash, nil, d.params.MinDifficulty)
	if err != nil {
		_ = d.store.rollback(snap)
		return err
	}
	if err := d.store.putGhostdag(hash, gd); err != nil {
		_ = d.store.rollback(snap)
		return err
	}

	d.arena.put(&node{hash: hash, parents: nil, work: d.params.MinDifficulty, ghostdag: *gd})
	return nil
}

// ImportBlock runs spec.md §4.J's pipeline in full: structure check, seal
// verification, relation insert, GHOSTDAG compute, and the ASERT update.
// A duplicate import (the block is already in the store) is a no-op
// success that returns the existing record.
func (d *DAG) ImportBlock(b Block) (*GhostdagData, error) {
	d.importMu.Lock()
	defer d.importMu.Unlock()

	if existing, err := d.store.ghostdag(b.Hash); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	if err := d.checkStructure(b); err != nil {
		return nil, err
	}

	for _, p := range b.Parents {
		has, err := d.store.hasBlock(p)
		if err != nil {
			return nil, err
		}
		if !has {
			return nil, ruleError(ErrUnknownParent, "parent "+p.String()+" of block "+b.Hash.String(), nil)
		}
	}

	spNode, err := d.eng.selectedParent(b.Parents)
	if err != nil {
		return nil, err
	}
	height := spNode.blueScore() + 1

	currentDifficulty := d.diff.CurrentDifficulty()
	if err := d.verifySeal(b, height, currentDifficulty); err != nil {
		return nil, err
	}

	snap, err := d.store.insertRelations(b.Hash, b.Parents)
	if err != nil {
		return nil, err
	}

	ownWork := standalone.CalcWork(currentDifficulty)
	gd, err := d.eng.compute(b.Hash, b.Parents, ownWork)
	if err != nil {
		if rbErr := d.store.rollback(snap); rbErr != nil {
			return nil, rbErr
		}
		return nil, err
	}

	if err := d.store.putGhostdag(b.Hash, gd); err != nil {
		if rbErr := d.store.rollback(snap); rbErr != nil {
			return nil, rbErr
		}
		return nil, err
	}

	d.arena.put(&node{hash: b.Hash, parents: b.Parents, work: ownWork, ghostdag: *gd})
	d.reach.invalidate(b.Hash)

	// ASERT advances once per accepted import, in arrival order, per
	// spec.md §9's Open Question resolution: a single, sequential
	// effective-time series rather than a per-branch recomputation.
	d.diff.Next(b.TimeMS, height)

	return gd, nil
}

func (d *DAG) checkStructure(b Block) error {
	if len(b.Parents) == 0 {
		return ruleError(ErrMalformedBlock, "non-genesis block "+b.Hash.String()+" has no parents", nil)
	}
	if len(b.Parents) > d.params.MaxParents {
		return ruleError(ErrMalformedBlock, "block "+b.Hash.String()+" exceeds MaxParents", nil)
	}
	seen := make(map[chainhash.Hash]struct{}, len(b.Parents))
	for _, p := range b.Parents {
		if _, dup := seen[p]; dup {
			return ruleError(ErrMalformedBlock, "block "+b.Hash.String()+" has duplicate parent "+p.String(), nil)
		}
		seen[p] = struct{}{}
	}
	return nil
}

// verifySeal implements spec.md §4.J step 2: recompute the seed for the
// declared height, recompute the PoW hash over header_hash‖nonce, and
// compare it both against the block's declared hash and the target implied
// by the difficulty active at the parent state.
func (d *DAG) verifySeal(b Block, height uint64, currentDifficulty uint256.Uint256) error {
	seedHash, ok := seed.Seed(height, d.params.SeedEpoch, d.params.SeedActivationDelay, d)
	if !ok {
		return ruleError(ErrStoreIO, "seed unavailable for height", nil)
	}

	cache := d.cacheForSeed(seedHash)
	input := pow.HeaderInput([32]byte(b.HeaderHash), b.Nonce)
	computed := pow.LightHash(input, cache, d.params.PoW)
	computedHash := chainhash.Hash(computed)

	if computedHash != b.Hash {
		return ruleError(ErrMalformedBlock, "declared hash does not match recomputed PoW hash for "+b.Hash.String(), nil)
	}
	if !standalone.CheckProofOfWork(&computedHash, currentDifficulty) {
		return ruleError(ErrInvalidPoW, "hash exceeds target for block "+b.Hash.String(), nil)
	}
	return nil
}

// HashAtHeight implements seed.ChainReader by resolving the canonical hash
// at the given blue_score along the current virtual tip's selected-parent
// chain — this package's stand-in for "height" in a block DAG, per the
// same reasoning kaspad's SelectedAncestor/RelativeAncestor helpers use.
func (d *DAG) HashAtHeight(height uint64) (chainhash.Hash, bool) {
	tip, ok := d.virtualTip()
	if !ok {
		return chainhash.Hash{}, false
	}
	return selectedAncestorByBlueScore(d.arena, tip, height)
}

func (d *DAG) cacheForSeed(s chainhash.Hash) []pow.Item {
	d.cacheMu.Lock()
	defer d.cacheMu.Unlock()
	if c, ok := d.seedCache[s]; ok {
		return c
	}
	c := pow.GenerateCache([32]byte(s), d.params.PoW)
	d.seedCache[s] = c
	return c
}

// Tips returns the current tips set.
func (d *DAG) Tips() ([]chainhash.Hash, error) {
	return d.store.tips()
}

func (d *DAG) virtualTip() (chainhash.Hash, bool) {
	tips, err := d.store.tips()
	if err != nil || len(tips) == 0 {
		return chainhash.Hash{}, false
	}
	var best *node
	for _, t := range tips {
		n, ok := d.arena.get(t)
		if !ok {
			continue
		}
		if best == nil || greaterForSelection(n, best) {
			best = n
		}
	}
	if best == nil {
		return chainhash.Hash{}, false
	}
	return best.hash, true
}

// VirtualTip returns the synthetic best tip: argmax blue_work among tips,
// ties broken by smaller hash, per spec.md §4.G.
func (d *DAG) VirtualTip() (chainhash.Hash, bool) {
	return d.virtualTip()
}

// SelectedChainTo returns the selected-parent chain from genesis to tip.
func (d *DAG) SelectedChainTo(tip chainhash.Hash) ([]chainhash.Hash, error) {
	return selectedParentChain(d.arena, tip)
}

// TopologicalOrderTo returns the post-order topological sort of
// past(tip) ∪ {tip}, per spec.md §4.H.
func (d *DAG) TopologicalOrderTo(tip chainhash.Hash) ([]chainhash.Hash, error) {
	return topologicalOrder(d.arena, tip)
}

// ReorgPath computes the revert/apply sequence between two tips' selected
// chains, per spec.md §4.H.
func (d *DAG) ReorgPath(oldTip, newTip chainhash.Hash) (revert, apply []chainhash.Hash, err error) {
	return reorgPath(d.arena, oldTip, newTip)
}

// Ghostdag returns the stored GhostdagData for hash, or nil if unknown.
func (d *DAG) Ghostdag(hash chainhash.Hash) (*GhostdagData, error) {
	return d.store.ghostdag(hash)
}

// Parents returns the stored parent list for hash, or nil if unknown.
func (d *DAG) Parents(hash chainhash.Hash) ([]chainhash.Hash, error) {
	return d.store.parents(hash)
}

// Confirmations returns the virtual tip's blue_score minus hash's, per
// spec.md §6.
func (d *DAG) Confirmations(hash chainhash.Hash) (uint64, error) {
	gd, err := d.store.ghostdag(hash)
	if err != nil {
		return 0, err
	}
	if gd == nil {
		return 0, ruleError(ErrMissingGhostdagData, "confirmations for unknown block "+hash.String(), nil)
	}
	tip, ok := d.virtualTip()
	if !ok {
		return 0, nil
	}
	tipNode, ok := d.arena.get(tip)
	if !ok {
		return 0, nil
	}
	return tipNode.blueScore() - gd.BlueScore, nil
}

// CurrentDifficulty returns the ASERT controller's current difficulty.
func (d *DAG) CurrentDifficulty() uint256.Uint256 {
	return d.diff.CurrentDifficulty()
}

// selectedAncestorByBlueScore walks tip's selected-parent chain backward
// until it finds the ancestor at exactly blueScore, mirroring kaspad's
// blockNode.SelectedAncestor.
func selectedAncestorByBlueScore(a *arena, tip chainhash.Hash, blueScore uint64) (chainhash.Hash, bool) {
	cur, ok := a.get(tip)
	if !ok || blueScore > cur.blueScore() {
		return chainhash.Hash{}, false
	}
	for cur != nil && cur.blueScore() > blueScore {
		if cur.ghostdag.SelectedParent == zeroHash {
			return chainhash.Hash{}, false
		}
		next, ok := a.get(cur.ghostdag.SelectedParent)
		if !ok {
			return chainhash.Hash{}, false
		}
		cur = next
	}
	if cur == nil || cur.blueScore() != blueScore {
		return chainhash.Hash{}, false
	}
	return cur.hash, true
}

var _ seed.ChainReader = (*DAG)(nil)
