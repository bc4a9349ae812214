// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdag

import (
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/lru"
)

// reachabilityCacheLimit bounds the positive-answer cache so long-running
// nodes don't grow it without bound; ancestry queries are re-derived by BFS
// on a miss.
const reachabilityCacheLimit = 1 << 16

// reachability answers ancestor/descendant queries over the in-memory
// arena, per spec.md §4.F. It caches only positive is_in_past answers,
// since those are immutable for the lifetime of the DAG (an ancestor
// relationship never becomes false once true) while negative answers can
// flip true the moment a new block links the two.
type reachability struct {
	arena *arena
	cache *lru.Cache
}

func newReachability(a *arena) *reachability {
	return &reachability{
		arena: a,
		cache: lru.New(reachabilityCacheLimit),
	}
}

func reachKey(ancestor, descendant chainhash.Hash) string {
	return string(ancestor[:]) + string(descendant[:])
}

// invalidate drops any cache entries that could reference newly-linked
// hash. Since entries are only ever added once true and ancestry is
// monotonic, the only thing a new block can invalidate is a prior *miss*,
// which was never cached — so invalidation here is a no-op kept for
// documentation of the invariant spec.md §4.F calls out, and as a seam for
// a future negative-answer cache.
func (r *reachability) invalidate(hash chainhash.Hash) {}

// isInPast reports whether ancestor is in the past of descendant, or equal
// to it, per spec.md §4.F's is_in_past(a, d).
func (r *reachability) isInPast(ancestor, descendant chainhash.Hash) bool {
	if ancestor == descendant {
		return true
	}
	if r.cache.Contains(reachKey(ancestor, descendant)) {
		return true
	}

	visited := make(map[chainhash.Hash]struct{})
	queue := []chainhash.Hash{descendant}
	visited[descendant] = struct{}{}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		n, ok := r.arena.get(cur)
		if !ok {
			continue
		}
		for _, p := range n.parents {
			if p == ancestor {
				r.cache.Add(reachKey(ancestor, descendant))
				return true
			}
			if _, seen := visited[p]; !seen {
				visited[p] = struct{}{}
				queue = append(queue, p)
			}
		}
	}
	return false
}

// past returns the set of strict ancestors of b: past(b) = {x :
// is_in_past(x, b)} \ {b}.
func (r *reachability) past(b chainhash.Hash) map[chainhash.Hash]struct{} {
	result := make(map[chainhash.Hash]struct{})
	queue := []chainhash.Hash{b}
	visited := map[chainhash.Hash]struct{}{b: {}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		n, ok := r.arena.get(cur)
		if !ok {
			continue
		}
		for _, p := range n.parents {
			result[p] = struct{}{}
			if _, seen := visited[p]; !seen {
				visited[p] = struct{}{}
				queue = append(queue, p)
			}
		}
	}
	return result
}

// anticone computes anticone(b, r) = past(b) \ past(r) \ {r}, per spec.md
// §4.F.
func (r *reachability) anticone(b, ref chainhash.Hash) map[chainhash.Hash]struct{} {
	pastB := r.past(b)
	pastR := r.past(ref)

	result := make(map[chainhash.Hash]struct{}, len(pastB))
	for h := range pastB {
		if h == ref {
			continue
		}
		if _, inPastR := pastR[h]; inPastR {
			continue
		}
		result[h] = struct{}{}
	}
	return result
}

// mergeset computes mergeset(b, sp) = past(b) \ past(sp), per spec.md §4.F,
// where sp is b's selected parent. sp itself is excluded explicitly: past is
// strict, so sp is in past(b) but not in past(sp).
func (r *reachability) mergeset(b, sp chainhash.Hash) map[chainhash.Hash]struct{} {
	pastB := r.past(b)
	pastSP := r.past(sp)

	result := make(map[chainhash.Hash]struct{}, len(pastB))
	for h := range pastB {
		if h == sp {
			continue
		}
		if _, inPastSP := pastSP[h]; !inPastSP {
			result[h] = struct{}{}
		}
	}
	return result
}
