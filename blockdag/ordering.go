// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdag

import (
	"sort"

	"github.com/decred/dcrd/chaincfg/chainhash"
)

// selectedParentChain walks selectedParent pointers from tip down to the
// sentinel zero hash and returns them genesis-first, per spec.md §4.H.
func selectedParentChain(a *arena, tip chainhash.Hash) ([]chainhash.Hash, error) {
	var chain []chainhash.Hash
	cur := tip
	for cur != zeroHash {
		n, ok := a.get(cur)
		if !ok {
			return nil, ruleError(ErrMissingGhostdagData, "selected parent chain at "+cur.String(), nil)
		}
		chain = append(chain, cur)
		cur = n.ghostdag.SelectedParent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// topologicalOrder produces a post-order traversal rooted at tip: selected
// parent first, then mergeset_blues ascending by hash, then mergeset_reds
// ascending by hash, then the block itself — spec.md §4.H. The result is a
// topological sort of past(tip) ∪ {tip}.
func topologicalOrder(a *arena, tip chainhash.Hash) ([]chainhash.Hash, error) {
	visited := make(map[chainhash.Hash]struct{})
	var order []chainhash.Hash

	var visit func(h chainhash.Hash) error
	visit = func(h chainhash.Hash) error {
		if h == zeroHash {
			return nil
		}
		if _, ok := visited[h]; ok {
			return nil
		}
		visited[h] = struct{}{}

		n, ok := a.get(h)
		if !ok {
			return ruleError(ErrMissingGhostdagData, "topological order at "+h.String(), nil)
		}

		if err := visit(n.ghostdag.SelectedParent); err != nil {
			return err
		}

		blues := append([]chainhash.Hash(nil), n.ghostdag.MergesetBlues...)
		sort.Slice(blues, func(i, j int) bool { return lessHash(blues[i], blues[j]) })
		for _, b := range blues {
			if err := visit(b); err != nil {
				return err
			}
		}

		reds := append([]chainhash.Hash(nil), n.ghostdag.MergesetReds...)
		sort.Slice(reds, func(i, j int) bool { return lessHash(reds[i], reds[j]) })
		for _, r := range reds {
			if err := visit(r); err != nil {
				return err
			}
		}

		order = append(order, h)
		return nil
	}

	if err := visit(tip); err != nil {
		return nil, err
	}
	return order, nil
}

// reorgPath computes the revert/apply sequence spec.md §4.H defines: the
// deepest common ancestor of oldTip's and newTip's selected-parent chains,
// then the old chain above it (to revert, old-tip-first) and the new chain
// above it (to apply, ancestor-first).
func reorgPath(a *arena, oldTip, newTip chainhash.Hash) (revert, apply []chainhash.Hash, err error) {
	oldChain, err := selectedParentChain(a, oldTip)
	if err != nil {
		return nil, nil, err
	}
	newChain, err := selectedParentChain(a, newTip)
	if err != nil {
		return nil, nil, err
	}

	oldIndex := make(map[chainhash.Hash]int, len(oldChain))
	for i, h := range oldChain {
		oldIndex[h] = i
	}

	// Walk newChain from its tip backward to find the deepest hash also
	// present on oldChain; that is the common ancestor.
	ancestorOldIdx := -1
	ancestorNewIdx := -1
	for i := len(newChain) - 1; i >= 0; i-- {
		if oi, ok := oldIndex[newChain[i]]; ok {
			ancestorOldIdx = oi
			ancestorNewIdx = i
			break
		}
	}
	if ancestorOldIdx == -1 {
		// Chains share only the implicit zero-hash root; genesis is always
		// common since every chain starts there, so this should not occur
		// once genesis is inserted.
		return nil, nil, ruleError(ErrMissingGhostdagData, "no common ancestor between selected chains", nil)
	}

	for i := len(oldChain) - 1; i > ancestorOldIdx; i-- {
		revert = append(revert, oldChain[i])
	}
	for i := ancestorNewIdx + 1; i < len(newChain); i++ {
		apply = append(apply, newChain[i])
	}
	return revert, apply, nil
}
