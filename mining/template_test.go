// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"fmt"
	"testing"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
	"github.com/dusklabs/duskd/blockdag"
	"github.com/dusklabs/duskd/chaincfg"
	"github.com/dusklabs/duskd/database"
)

func newTestDAG(t *testing.T) (*blockdag.DAG, *chaincfg.Params) {
	t.Helper()
	params := chaincfg.RegNetParams()
	dag, err := blockdag.NewDAG(params, database.NewMemory())
	if err != nil {
		t.Fatalf("NewDAG: %v", err)
	}
	return dag, params
}

func TestNewBlockTemplateOverGenesisTip(t *testing.T) {
	dag, params := newTestDAG(t)

	tmpl, err := NewBlockTemplate(dag, params)
	if err != nil {
		t.Fatalf("NewBlockTemplate: %v", err)
	}
	if len(tmpl.Parents) != 1 || tmpl.Parents[0] != params.GenesisHash {
		t.Fatalf("Parents = %v, want [genesis]", tmpl.Parents)
	}
	if tmpl.Height != 1 {
		t.Fatalf("Height = %d, want 1", tmpl.Height)
	}
}

func TestNewBlockTemplateNoTipsSurfacesErrNoTips(t *testing.T) {
	// A live *blockdag.DAG always has a genesis tip, so this asserts the
	// template builder's own defensive check against a fake reader that
	// reports an empty tip set (e.g. a store wiped between calls).
	_, err := NewBlockTemplate(emptyChainReader{}, chaincfg.RegNetParams())
	if err != ErrNoTips {
		t.Fatalf("err = %v, want ErrNoTips", err)
	}
}

type emptyChainReader struct{}

func (emptyChainReader) Tips() ([]chainhash.Hash, error)              { return nil, nil }
func (emptyChainReader) VirtualTip() (chainhash.Hash, bool)           { return chainhash.Hash{}, false }
func (emptyChainReader) Ghostdag(chainhash.Hash) (*blockdag.GhostdagData, error) {
	return nil, nil
}
func (emptyChainReader) CurrentDifficulty() uint256.Uint256 { return uint256.Uint256{} }
func (emptyChainReader) HashAtHeight(uint64) (chainhash.Hash, bool) {
	return chainhash.Hash{}, false
}

func labelHash(label string) chainhash.Hash {
	return chainhash.HashH([]byte(label))
}

func u256(v uint64) uint256.Uint256 {
	var u uint256.Uint256
	u.SetUint64(v)
	return u
}

// fakeChainReader stands in for a *blockdag.DAG with a hand-picked tip set,
// so tests can exercise parent selection without growing a DAG past
// MaxParents tips block by block.
type fakeChainReader struct {
	tips       []chainhash.Hash
	ghostdag   map[chainhash.Hash]*blockdag.GhostdagData
	virtualTip chainhash.Hash
	heights    map[uint64]chainhash.Hash
}

func (f fakeChainReader) Tips() ([]chainhash.Hash, error)    { return f.tips, nil }
func (f fakeChainReader) VirtualTip() (chainhash.Hash, bool) { return f.virtualTip, true }
func (f fakeChainReader) Ghostdag(h chainhash.Hash) (*blockdag.GhostdagData, error) {
	return f.ghostdag[h], nil
}
func (f fakeChainReader) CurrentDifficulty() uint256.Uint256 { return uint256.Uint256{} }
func (f fakeChainReader) HashAtHeight(height uint64) (chainhash.Hash, bool) {
	h, ok := f.heights[height]
	return h, ok
}

// TestNewBlockTemplateCapsAtMaxParentsByBlueWork pins the fix for a tip set
// larger than params.MaxParents: the template must keep only the
// MaxParents tips with the greatest blue_work (ties broken by the smaller
// hash), or the miner would solve a template dag.ImportBlock later rejects
// for having too many parents.
func TestNewBlockTemplateCapsAtMaxParentsByBlueWork(t *testing.T) {
	params := chaincfg.RegNetParams()
	const tipCount = 15

	ghostdag := make(map[chainhash.Hash]*blockdag.GhostdagData, tipCount)
	tips := make([]chainhash.Hash, 0, tipCount)
	var best chainhash.Hash
	var bestWork uint256.Uint256
	for i := 0; i < tipCount; i++ {
		h := labelHash(fmt.Sprintf("tip-%d", i))
		// Two tips share blue_work 5 so the hash tiebreak is exercised too.
		work := uint64(i)
		if i == tipCount-1 {
			work = 5
		}
		gd := &blockdag.GhostdagData{BlueScore: uint64(i), BlueWork: u256(work)}
		ghostdag[h] = gd
		tips = append(tips, h)
		if gd.BlueWork.Gt(&bestWork) || i == 0 {
			bestWork = gd.BlueWork
			best = h
		}
	}

	dag := fakeChainReader{
		tips:       tips,
		ghostdag:   ghostdag,
		virtualTip: best,
		heights:    map[uint64]chainhash.Hash{0: labelHash("seed-0")},
	}

	tmpl, err := NewBlockTemplate(dag, params)
	if err != nil {
		t.Fatalf("NewBlockTemplate: %v", err)
	}
	if len(tmpl.Parents) != params.MaxParents {
		t.Fatalf("len(Parents) = %d, want %d", len(tmpl.Parents), params.MaxParents)
	}

	// Parents must be strictly descending by blue_work, hash ascending on
	// ties, and every included tip must have blue_work >= every excluded
	// tip's (the top MaxParents by that order).
	var prevWork uint256.Uint256
	prevWork.SetUint64(^uint64(0))
	for i, p := range tmpl.Parents {
		gd := ghostdag[p]
		if gd.BlueWork.Gt(&prevWork) {
			t.Fatalf("Parents[%d] blue_work %v exceeds previous %v: not descending", i, gd.BlueWork, prevWork)
		}
		prevWork = gd.BlueWork
	}
	threshold := ghostdag[tmpl.Parents[len(tmpl.Parents)-1]].BlueWork
	for h, gd := range ghostdag {
		included := false
		for _, p := range tmpl.Parents {
			if p == h {
				included = true
				break
			}
		}
		if !included && gd.BlueWork.Gt(&threshold) {
			t.Fatalf("tip %s has blue_work %v > cutoff %v but was excluded", h, gd.BlueWork, threshold)
		}
	}
}
