// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdag

import (
	"testing"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/dusklabs/duskd/chaincfg"
	"github.com/dusklabs/duskd/database"
	"github.com/dusklabs/duskd/pow"
)

func newTestDAG(t *testing.T) (*DAG, *chaincfg.Params) {
	t.Helper()
	params := chaincfg.RegNetParams()
	dag, err := NewDAG(params, database.NewMemory())
	if err != nil {
		t.Fatalf("NewDAG: %v", err)
	}
	return dag, params
}

func labelHash(label string) chainhash.Hash {
	return chainhash.HashH([]byte(label))
}

func u256(v uint64) uint256.Uint256 {
	var u uint256.Uint256
	u.SetUint64(v)
	return u
}

// mine constructs a Block that will pass PoW verification against dag's
// current difficulty, by actually computing the light hash over the given
// header and a zero nonce. timeMS should advance by far more than the
// network's TargetBlockTimeMS so the ASERT controller stays clamped at
// MinDifficulty (1 in regnet), keeping the target at its maximum and the
// zero nonce always sufficient.
func mine(t *testing.T, params *chaincfg.Params, label string, parents []chainhash.Hash, seedHash chainhash.Hash, timeMS int64) Block {
	t.Helper()
	cache := pow.GenerateCache([32]byte(seedHash), params.PoW)
	var nonce [32]byte
	headerHash := labelHash(label)
	input := pow.HeaderInput([32]byte(headerHash), nonce)
	hashBytes := pow.LightHash(input, cache, params.PoW)
	return Block{
		Hash:       chainhash.Hash(hashBytes),
		Parents:    parents,
		Nonce:      nonce,
		HeaderHash: headerHash,
		TimeMS:     timeMS,
	}
}

// importTestBlock bypasses seal verification and the ASERT update to let
// GHOSTDAG/fork-choice logic be tested with an explicit own-work value,
// independent of PoW timing. It performs exactly the relation-insert and
// GHOSTDAG-compute steps ImportBlock does.
func importTestBlock(t *testing.T, dag *DAG, hash chainhash.Hash, parents []chainhash.Hash, work uint256.Uint256) *GhostdagData {
	t.Helper()
	snap, err := dag.store.insertRelations(hash, parents)
	if err != nil {
		t.Fatalf("insertRelations(%s): %v", hash, err)
	}
	gd, err := dag.eng.compute(hash, parents, work)
	if err != nil {
		_ = dag.store.rollback(snap)
		t.Fatalf("compute(%s): %v", hash, err)
	}
	if err := dag.store.putGhostdag(hash, gd); err != nil {
		_ = dag.store.rollback(snap)
		t.Fatalf("putGhostdag(%s): %v", hash, err)
	}
	dag.arena.put(&node{hash: hash, parents: parents, work: work, ghostdag: *gd})
	return gd
}

// TestLinearChainEndToEnd is concrete scenario 1, driven through the full
// ImportBlock pipeline (including PoW seal verification).
func TestLinearChainEndToEnd(t *testing.T) {
	dag, params := newTestDAG(t)
	genesis := params.GenesisHash

	now := int64(0)
	step := func() int64 { now += 10_000_000; return now }

	a := mine(t, params, "A", []chainhash.Hash{genesis}, genesis, step())
	if _, err := dag.ImportBlock(a); err != nil {
		t.Fatalf("import A: %v", err)
	}
	b := mine(t, params, "B", []chainhash.Hash{a.Hash}, genesis, step())
	if _, err := dag.ImportBlock(b); err != nil {
		t.Fatalf("import B: %v", err)
	}
	c := mine(t, params, "C", []chainhash.Hash{b.Hash}, genesis, step())
	gd, err := dag.ImportBlock(c)
	if err != nil {
		t.Fatalf("import C: %v", err)
	}

	if gd.BlueScore != 3 {
		t.Fatalf("blue_score(C) = %d, want 3", gd.BlueScore)
	}

	tip, ok := dag.VirtualTip()
	if !ok || tip != c.Hash {
		t.Fatalf("virtual tip = %v (ok=%v), want C", tip, ok)
	}

	chain, err := dag.SelectedChainTo(c.Hash)
	if err != nil {
		t.Fatalf("SelectedChainTo: %v", err)
	}
	want := []chainhash.Hash{genesis, a.Hash, b.Hash, c.Hash}
	if len(chain) != len(want) {
		t.Fatalf("selected chain = %v, want %v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("selected chain[%d] = %s, want %s", i, chain[i], want[i])
		}
	}
}

// TestImportBlockDuplicateIsNoOp checks the round-trip/idempotence property
// from spec.md §8: importing a block twice is equivalent to once.
func TestImportBlockDuplicateIsNoOp(t *testing.T) {
	dag, params := newTestDAG(t)
	genesis := params.GenesisHash

	a := mine(t, params, "A", []chainhash.Hash{genesis}, genesis, 10_000_000)
	first, err := dag.ImportBlock(a)
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	second, err := dag.ImportBlock(a)
	if err != nil {
		t.Fatalf("duplicate import returned error instead of no-op: %v", err)
	}
	if first.BlueScore != second.BlueScore || first.BlueWork != second.BlueWork {
		t.Fatalf("duplicate import changed the record: %+v vs %+v", first, second)
	}
}

// TestImportBlockRejectsUnknownParent exercises the ErrUnknownParent path.
func TestImportBlockRejectsUnknownParent(t *testing.T) {
	dag, params := newTestDAG(t)
	ghost := labelHash("never-imported")

	a := mine(t, params, "A", []chainhash.Hash{ghost}, params.GenesisHash, 10_000_000)
	_, err := dag.ImportBlock(a)
	var rerr RuleError
	if err == nil {
		t.Fatalf("expected ErrUnknownParent, got nil")
	}
	if !asRuleError(err, &rerr) || rerr.Kind != ErrUnknownParent {
		t.Fatalf("expected ErrUnknownParent, got %v", err)
	}
}

func asRuleError(err error, target *RuleError) bool {
	re, ok := err.(RuleError)
	if ok {
		*target = re
	}
	return ok
}

// TestSimpleForkReorg is concrete scenario 2: a heavier sibling B' causes
// the virtual tip to move, and reorg_path reports the expected revert/apply.
func TestSimpleForkReorg(t *testing.T) {
	dag, _ := newTestDAG(t)
	genesis := chaincfg.RegNetParams().GenesisHash

	aHash := labelHash("A")
	bHash := labelHash("B")
	bPrimeHash := labelHash("B-prime")

	importTestBlock(t, dag, aHash, []chainhash.Hash{genesis}, u256(10))
	importTestBlock(t, dag, bHash, []chainhash.Hash{aHash}, u256(10))
	importTestBlock(t, dag, bPrimeHash, []chainhash.Hash{aHash}, u256(50))

	tip, ok := dag.VirtualTip()
	if !ok || tip != bPrimeHash {
		t.Fatalf("virtual tip = %v, want B-prime", tip)
	}

	revert, apply, err := dag.ReorgPath(bHash, bPrimeHash)
	if err != nil {
		t.Fatalf("ReorgPath: %v", err)
	}
	if len(revert) != 1 || revert[0] != bHash {
		t.Fatalf("revert = %v, want [B]", revert)
	}
	if len(apply) != 1 || apply[0] != bPrimeHash {
		t.Fatalf("apply = %v, want [B-prime]", apply)
	}
}

// TestKClusterInclusion is concrete scenario 3 (K=3): both non-selected
// siblings fit inside the k-cluster and end up blue.
func TestKClusterInclusion(t *testing.T) {
	params := chaincfg.RegNetParams()
	params.K = 3
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

	// blue_score(sp) = 1, plus 1 for sp itself, plus 2 mergeset blues.
	if gd.BlueScore != 4 {
		t.Fatalf("blue_score(N) = %d, want 4", gd.BlueScore)
	}
	if len(gd.MergesetReds) != 0 {
		t.Fatalf("mergeset_reds(N) = %v, want empty", gd.MergesetReds)
	}
	if len(gd.MergesetBlues) != 2 {
		t.Fatalf("mergeset_blues(N) = %v, want 2 entries", gd.MergesetBlues)
	}
}

// TestKClusterExclusion is concrete scenario 4 (K=1): the worst-ranked
// sibling is pushed into the anticone and becomes red.
func TestKClusterExclusion(t *testing.T) {
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

	if gd.BlueScore != 3 {
		t.Fatalf("blue_score(N) = %d, want 3", gd.BlueScore)
	}
	if len(gd.MergesetReds) != 1 {
		t.Fatalf("mergeset_reds(N) = %v, want exactly 1 entry", gd.MergesetReds)
	}
}

// TestConfirmationsAdvance checks Confirmations tracks the virtual tip's
// lead over an older block.
func TestConfirmationsAdvance(t *testing.T) {
	dag, _ := newTestDAG(t)
	genesis := chaincfg.RegNetParams().GenesisHash

	aHash := labelHash("A")
	bHash := labelHash("B")
	importTestBlock(t, dag, aHash, []chainhash.Hash{genesis}, u256(10))
	importTestBlock(t, dag, bHash, []chainhash.Hash{aHash}, u256(10))

	confs, err := dag.Confirmations(aHash)
	if err != nil {
		t.Fatalf("Confirmations: %v", err)
	}
	if confs != 1 {
		t.Fatalf("Confirmations(A) = %d, want 1", confs)
	}
}
