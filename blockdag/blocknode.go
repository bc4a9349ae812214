// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdag

import (
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
)

// node is the in-memory representation of a block within the DAG, grounded
// on kaspad's blockNode: a hash, its parents, its selected parent, and the
// GHOSTDAG record that scores it. Unlike kaspad's node, duskd's node holds
// no pointers to other nodes — every relation is a hash looked up through
// the store — so the arena stays a flat, GC-friendly map keyed by hash.
type node struct {
	hash    chainhash.Hash
	parents []chainhash.Hash
	work    uint256.Uint256

	ghostdag GhostdagData
}

// blueScore returns the node's blue_score, 0 for a zero-value node.
func (n *node) blueScore() uint64 {
	return n.ghostdag.BlueScore
}

// blueWork returns the node's blue_work.
func (n *node) blueWork() uint256.Uint256 {
	return n.ghostdag.BlueWork
}

// less implements the DAG-wide tie-break: smaller (blue_work, hash) sorts
// first for ascending orders, descending (blue_work, hash) for the virtual
// tip and GHOSTDAG heap. It mirrors kaspad blockNode.less, generalized from
// blue_score to blue_work because spec.md's fork-choice metric is
// accumulated work, not block count.
func less(a, b *node) bool {
	aWork, bWork := a.blueWork(), b.blueWork()
	if aWork.Eq(&bWork) {
		return lessHash(a.hash, b.hash)
	}
	return aWork.Lt(&bWork)
}

// greaterForSelection orders two candidates by the GHOSTDAG/virtual-tip
// selection rule: larger blue_work wins; ties broken by the smaller hash.
// It is the strict inverse of "less" except for the hash tie-break, which
// spec.md pins in the same direction (smaller hash wins) for both orders.
func greaterForSelection(a, b *node) bool {
	aWork, bWork := a.blueWork(), b.blueWork()
	if aWork.Eq(&bWork) {
		return lessHash(a.hash, b.hash)
	}
	return aWork.Gt(&bWork)
}
