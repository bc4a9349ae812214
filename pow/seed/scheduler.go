// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package seed implements spec.md §4.B: mapping an evaluation height to the
// height of the block whose hash supplies the PoW seed at that height. The
// scheme is deliberately the same shape as the teacher's per-height
// AlgorithmSpec activation table (wire/algorithmspec.go in
// _examples/EXCCoin-exccd) — a sorted table of height thresholds consulted
// by height — except the rule here is a pure arithmetic function of (N, D)
// rather than a lookup table, since spec.md defines it that way.
package seed

import (
	"github.com/decred/dcrd/chaincfg/chainhash"
)

// Height returns the seed-height for evaluation height h: the height of the
// block whose hash is the PoW seed active at h, per spec.md §4.B.
//
//	0                     if h < D
//	floor((h-D)/N) * N    otherwise
func Height(h, epoch, delay uint64) uint64 {
	if h < delay {
		return 0
	}
	return ((h - delay) / epoch) * epoch
}

// ChangesAt reports whether a seed change occurs at height h, i.e. whether h
// is an activation point: h mod N == D.
func ChangesAt(h, epoch, delay uint64) bool {
	return h%epoch == delay
}

// ChainReader resolves the canonical hash at a given height. It is the
// capability this package needs from the DAG store (spec.md §6's
// "Chain-head reader"); blockdag.DAG implements it without either package
// importing the other.
type ChainReader interface {
	HashAtHeight(height uint64) (chainhash.Hash, bool)
}

// Seed resolves the PoW seed active at evaluation height h by asking reader
// for the canonical hash at seed_height(h). It returns false if that height
// is not yet known to reader (e.g. querying ahead of the synced tip).
func Seed(h, epoch, delay uint64, reader ChainReader) (chainhash.Hash, bool) {
	return reader.HashAtHeight(Height(h, epoch, delay))
}
