// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package orphanpool is a reference implementation of the external
// orphan-pool collaborator spec.md §6 defines: a holding area for blocks
// whose parents haven't arrived yet. When a parent is imported, the pool
// releases any now-ready children, in the order they originally arrived,
// and a child with several missing parents is only released once all of
// them have landed.
//
// It mirrors the teacher's use of an age-partitioned Bloom filter
// (container/apbf) to cheaply reject hashes the pool has already seen
// before falling back to the exact pending-parent bookkeeping below.
package orphanpool

import (
	"sync"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/container/apbf"
	"github.com/dusklabs/duskd/blockdag"
)

// defaultMaxOrphans bounds how many orphans the exact map is willing to
// hold before evicting the oldest arrival; it exists so a burst of blocks
// with permanently missing parents can't grow the pool without limit.
const defaultMaxOrphans = 4096

// filterFalsePositiveRate matches the teacher's own apbf.NewFilter calls
// for hash-sized keys (mempool/orphan dedup), trading a small, bounded
// false-positive rate for O(1) "definitely not seen" rejection.
const filterFalsePositiveRate = 0.0001

// entry is one pending orphan: its block plus the parents still missing.
type entry struct {
	block        blockdag.Block
	missing      map[chainhash.Hash]struct{}
	arrivalOrder uint64
}

// Pool holds blocks awaiting parents. It is safe for concurrent use.
type Pool struct {
	mu sync.Mutex

	seen *apbf.Filter

	orphans  map[chainhash.Hash]*entry
	byParent map[chainhash.Hash]map[chainhash.Hash]struct{} // missing parent -> waiting children
	order    []chainhash.Hash                               // arrival order, oldest first
	nextSeq  uint64

	maxOrphans int
}

// New creates an empty Pool. maxOrphans <= 0 uses defaultMaxOrphans.
func New(maxOrphans int) *Pool {
	if maxOrphans <= 0 {
		maxOrphans = defaultMaxOrphans
	}
	return &Pool{
		seen:       apbf.NewFilter(uint32(maxOrphans), filterFalsePositiveRate),
		orphans:    make(map[chainhash.Hash]*entry),
		byParent:   make(map[chainhash.Hash]map[chainhash.Hash]struct{}),
		maxOrphans: maxOrphans,
	}
}

// Add registers b as waiting on the given missing parent hashes. If b is
// already pending (by hash), Add is a no-op. It returns false if the pool
// had to evict the oldest orphan to make room.
func (p *Pool) Add(b blockdag.Block, missingParents []chainhash.Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := b.Hash[:]
	if p.seen.Contains(key) {
		if _, ok := p.orphans[b.Hash]; ok {
			return true
		}
	}
	p.seen.Add(key)

	missing := make(map[chainhash.Hash]struct{}, len(missingParents))
	for _, parent := range missingParents {
		missing[parent] = struct{}{}
		if p.byParent[parent] == nil {
			p.byParent[parent] = make(map[chainhash.Hash]struct{})
		}
		p.byParent[parent][b.Hash] = struct{}{}
	}

	p.orphans[b.Hash] = &entry{block: b, missing: missing, arrivalOrder: p.nextSeq}
	p.nextSeq++
	p.order = append(p.order, b.Hash)

	evicted := false
	for len(p.orphans) > p.maxOrphans && len(p.order) > 0 {
		oldest := p.order[0]
		p.order = p.order[1:]
		p.removeLocked(oldest)
		evicted = true
	}
	return !evicted
}

// Resolve reports that parent has been successfully imported, and returns
// every orphan that is now fully satisfied (all of its declared parents
// have resolved), in the order they originally arrived. Resolved orphans
// are removed from the pool; the caller is expected to import them next,
// and re-Add any that turn out to still be missing other parents the pool
// didn't know about.
func (p *Pool) Resolve(parent chainhash.Hash) []blockdag.Block {
	p.mu.Lock()
	defer p.mu.Unlock()

	waiting, ok := p.byParent[parent]
	if !ok {
		return nil
	}
	delete(p.byParent, parent)

	var ready []*entry
	for child := range waiting {
		e, ok := p.orphans[child]
		if !ok {
			continue
		}
		delete(e.missing, parent)
		if len(e.missing) == 0 {
			ready = append(ready, e)
		}
	}

	// Sort by arrival order so releases preserve the contract in spec.md
	// §6, matching the order blocks were originally handed to the pool.
	for i := 1; i < len(ready); i++ {
		for j := i; j > 0 && ready[j-1].arrivalOrder > ready[j].arrivalOrder; j-- {
			ready[j-1], ready[j] = ready[j], ready[j-1]
		}
	}

	blocks := make([]blockdag.Block, 0, len(ready))
	for _, e := range ready {
		blocks = append(blocks, e.block)
		p.removeLocked(e.block.Hash)
	}
	return blocks
}

// removeLocked deletes hash from every index. Caller must hold p.mu.
func (p *Pool) removeLocked(hash chainhash.Hash) {
	e, ok := p.orphans[hash]
	if !ok {
		return
	}
	delete(p.orphans, hash)
	for parent := range e.missing {
		siblings := p.byParent[parent]
		delete(siblings, hash)
		if len(siblings) == 0 {
			delete(p.byParent, parent)
		}
	}
	for i, h := range p.order {
		if h == hash {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of blocks currently pending.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.orphans)
}

// Contains reports whether hash is currently pending in the pool's exact
// bookkeeping. It does not consult the Bloom filter, since that can only
// answer "maybe seen," never "definitely pending now."
func (p *Pool) Contains(hash chainhash.Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.orphans[hash]
	return ok
}
