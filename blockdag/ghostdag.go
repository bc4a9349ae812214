// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdag

import (
	"container/heap"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/dusklabs/duskd/blockchain/standalone"
)

// priorityQueue extracts nodes in strictly (blue_work DESC, hash ASC)
// order via container/heap, per spec.md §9's requirement that heap
// extraction and a stable sort by the same key produce byte-identical
// output — ghostdag_test.go pins this against a sort.SliceStable reference.
type priorityQueue []*node

func (q priorityQueue) Len() int            { return len(q) }
func (q priorityQueue) Less(i, j int) bool  { return greaterForSelection(q[i], q[j]) }
func (q priorityQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *priorityQueue) Push(x interface{}) { *q = append(*q, x.(*node)) }
func (q *priorityQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// engine computes GhostdagData for newly-arrived blocks, per spec.md §4.G.
type engine struct {
	arena *arena
	reach *reachability
	k     uint64
}

func newEngine(a *arena, r *reachability, k uint64) *engine {
	return &engine{arena: a, reach: r, k: k}
}

// selectedParent implements spec.md §4.G step 1: the parent with the
// greatest blue_work, ties broken by smaller hash.
func (e *engine) selectedParent(parents []chainhash.Hash) (*node, error) {
	var best *node
	for _, p := range parents {
		n, ok := e.arena.get(p)
		if !ok {
			return nil, ruleError(ErrMissingGhostdagData, "selected parent candidate "+p.String(), nil)
		}
		if best == nil || greaterForSelection(n, best) {
			best = n
		}
	}
	return best, nil
}

// mergeset implements spec.md §4.G step 2: everything in the past of any
// non-selected parent that isn't already in the past of the selected
// parent (or the selected parent itself).
func (e *engine) mergeset(parents []chainhash.Hash, sp chainhash.Hash) map[chainhash.Hash]struct{} {
	pastSP := e.reach.past(sp)
	result := make(map[chainhash.Hash]struct{})

	for _, p := range parents {
		if p == sp {
			continue
		}
		if _, ok := pastSP[p]; !ok && p != sp {
			result[p] = struct{}{}
		}
		for h := range e.reach.past(p) {
			if _, ok := pastSP[h]; !ok {
				result[h] = struct{}{}
			}
		}
	}
	delete(result, sp)
	return result
}

// anticoneSize counts c in candidateBlues such that c is neither an
// ancestor nor a descendant of m, per spec.md §4.G step 4's
// anticone_size(m, C).
func (e *engine) anticoneSize(m chainhash.Hash, candidateBlues []chainhash.Hash) uint64 {
	var count uint64
	for _, c := range candidateBlues {
		if e.reach.isInPast(c, m) || e.reach.isInPast(m, c) {
			continue
		}
		count++
	}
	return count
}

// compute implements spec.md §4.G in full: given a new block's hash,
// parents, and its own PoW work, it returns the persisted GhostdagData.
// Every referenced parent (and every block in its mergeset) must already
// have GhostdagData; a missing one is an invariant violation.
func (e *engine) compute(hash chainhash.Hash, parents []chainhash.Hash, ownWork uint256.Uint256) (*GhostdagData, error) {
	if len(parents) == 0 {
		// Genesis: spec.md §4.G's explicit base case.
		return &GhostdagData{
			BlueScore:          0,
			BlueWork:           ownWork,
			SelectedParent:     zeroHash,
			MergesetBlues:      nil,
			MergesetReds:       nil,
			BluesAnticoneSizes: map[chainhash.Hash]uint64{},
			OwnWork:            ownWork,
		}, nil
	}

	spNode, err := e.selectedParent(parents)
	if err != nil {
		return nil, err
	}
	sp := spNode.hash

	mergesetSet := e.mergeset(parents, sp)

	queue := make(priorityQueue, 0, len(mergesetSet))
	for h := range mergesetSet {
		n, ok := e.arena.get(h)
		if !ok {
			return nil, ruleError(ErrMissingGhostdagData, "mergeset member "+h.String(), nil)
		}
		queue = append(queue, n)
	}
	heap.Init(&queue)

	// Candidate blue set seed: sp plus sp's own inherited blues.
	candidateBlues := append([]chainhash.Hash{sp}, spNode.ghostdag.MergesetBlues...)

	var blues, reds []chainhash.Hash
	anticoneSizes := make(map[chainhash.Hash]uint64)

	for queue.Len() > 0 {
		m := heap.Pop(&queue).(*node)
		a := e.anticoneSize(m.hash, candidateBlues)
		if a <= e.k {
			blues = append(blues, m.hash)
			anticoneSizes[m.hash] = a
			candidateBlues = append(candidateBlues, m.hash)
		} else {
			reds = append(reds, m.hash)
		}
	}

	blueWork := standalone.AddWork(spNode.blueWork(), ownWork)
	for _, b := range blues {
		n, ok := e.arena.get(b)
		if !ok {
			return nil, ruleError(ErrMissingGhostdagData, "blue mergeset member "+b.String(), nil)
		}
		blueWork = standalone.AddWork(blueWork, n.work)
	}

	return &GhostdagData{
		BlueScore:          spNode.blueScore() + 1 + uint64(len(blues)),
		BlueWork:           blueWork,
		SelectedParent:     sp,
		MergesetBlues:      blues,
		MergesetReds:       reds,
		BluesAnticoneSizes: anticoneSizes,
		OwnWork:            ownWork,
	}, nil
}
