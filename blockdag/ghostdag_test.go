// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdag

import (
	"container/heap"
	"sort"
	"testing"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/dusklabs/duskd/chaincfg"
	"github.com/dusklabs/duskd/database"
)

// TestPriorityQueueMatchesStableSort pins spec.md §9's requirement that heap
// extraction order and a stable sort by the same (blue_work DESC, hash ASC)
// key agree exactly.
func TestPriorityQueueMatchesStableSort(t *testing.T) {
	nodes := []*node{
		{hash: labelHash("a"), ghostdag: GhostdagData{BlueWork: u256(10)}},
		{hash: labelHash("b"), ghostdag: GhostdagData{BlueWork: u256(30)}},
		{hash: labelHash("c"), ghostdag: GhostdagData{BlueWork: u256(30)}},
		{hash: labelHash("d"), ghostdag: GhostdagData{BlueWork: u256(5)}},
		{hash: labelHash("e"), ghostdag: GhostdagData{BlueWork: u256(30)}},
	}

	sorted := append([]*node(nil), nodes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return greaterForSelection(sorted[i], sorted[j])
	})

	q := make(priorityQueue, len(nodes))
	copy(q, nodes)
	heap.Init(&q)

	var popped []*node
	for q.Len() > 0 {
		popped = append(popped, heap.Pop(&q).(*node))
	}

	if len(popped) != len(sorted) {
		t.Fatalf("popped %d nodes, want %d", len(popped), len(sorted))
	}
	for i := range sorted {
		if popped[i].hash != sorted[i].hash {
			t.Fatalf("position %d: heap gave %s, sort gave %s", i, popped[i].hash, sorted[i].hash)
		}
	}
}

// TestAnticoneSizeExcludesAncestorsAndDescendants is P2: anticone_size must
// not count blocks that are in an ancestor/descendant relationship with m.
func TestAnticoneSizeExcludesAncestorsAndDescendants(t *testing.T) {
	dag, g, a, b, c := buildDiamond(t)
	eng := dag.eng

	// Relative to C: genesis is an ancestor of both A and C, so it must
	// never count in anyone's anticone size.
	size := eng.anticoneSize(a, []chainhash.Hash{g, b})
	if size != 1 {
		t.Fatalf("anticoneSize(A, {G,B}) = %d, want 1 (only B, not ancestor G)", size)
	}
	_ = c
}

// TestMergesetIsDisjointUnion is P3: mergeset_blues and mergeset_reds must
// partition the full mergeset with no overlap.
func TestMergesetIsDisjointUnion(t *testing.T) {
	params := chaincfg.RegNetParams()
	params.K = 1
	dag, err := NewDAG(params, database.NewMemory())
	if err != nil {
		t.Fatalf("NewDAG: %v", err)
	}
	genesis := params.GenesisHash

	x := labelHash("X")
	y := labelHash("Y")
	z := labelHash("Z")
	importTestBlock(t, dag, x, []chainhash.Hash{genesis}, u256(10))
	importTestBlock(t, dag, y, []chainhash.Hash{genesis}, u256(10))
	importTestBlock(t, dag, z, []chainhash.Hash{genesis}, u256(10))

	n := labelHash("N")
	gd := importTestBlock(t, dag, n, []chainhash.Hash{x, y, z}, u256(10))

	seen := make(map[chainhash.Hash]bool)
	for _, h := range gd.MergesetBlues {
		if seen[h] {
			t.Fatalf("duplicate %s across mergeset", h)
		}
		seen[h] = true
	}
	for _, h := range gd.MergesetReds {
		if seen[h] {
			t.Fatalf("%s appears in both blues and reds", h)
		}
		seen[h] = true
	}
	if len(seen) != 2 {
		t.Fatalf("mergeset has %d members, want 2 (Y and Z, X is selected parent)", len(seen))
	}
}
