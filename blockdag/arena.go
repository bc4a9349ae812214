// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdag

import (
	"sync"

	"github.com/decred/dcrd/chaincfg/chainhash"
)

// arena is the in-memory node index spec.md §9 calls for: "an arena-of-
// blocks keyed by hash is sufficient; no back-references need to be
// materialised." It is a read-through cache over the store — every node it
// serves either was inserted this session or was lazily hydrated from a
// persisted parents/ghostdag record — so a process restart loses nothing
// but re-pays the hydration cost on first touch.
type arena struct {
	mu    sync.RWMutex
	nodes map[chainhash.Hash]*node
	store *store
}

func newArena(s *store) *arena {
	return &arena{
		nodes: make(map[chainhash.Hash]*node),
		store: s,
	}
}

// get returns the node for hash, hydrating it from the store on a cache
// miss. It returns false if the store has no record of hash or if a store
// read fails.
func (a *arena) get(hash chainhash.Hash) (*node, bool) {
	a.mu.RLock()
	n, ok := a.nodes[hash]
	a.mu.RUnlock()
	if ok {
		return n, true
	}

	parents, err := a.store.parents(hash)
	if err != nil {
		return nil, false
	}
	has, err := a.store.hasBlock(hash)
	if err != nil || !has {
		return nil, false
	}
	gd, err := a.store.ghostdag(hash)
	if err != nil {
		return nil, false
	}

	n = &node{hash: hash, parents: parents}
	if gd != nil {
		n.ghostdag = *gd
		n.work = gd.OwnWork
	}

	a.mu.Lock()
	a.nodes[hash] = n
	a.mu.Unlock()
	return n, true
}

// put inserts or overwrites a node in the arena. Called by the import
// pipeline once a block's relations (and later its GhostdagData) are
// durably written.
func (a *arena) put(n *node) {
	a.mu.Lock()
	a.nodes[n.hash] = n
	a.mu.Unlock()
}
