// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pow implements the memory-hard hash primitive of spec.md §4.A: a
// cache derived from a 32-byte seed, an optional full dataset precomputed
// from that cache, and a hash function that is bit-for-bit identical
// whether it consults the cache directly ("light" mode, used by verifiers)
// or a precomputed dataset ("fast" mode, used by miners).
//
// The seed itself, and the rule for which block supplies it at a given
// height, lives in the sibling pow/seed package (spec.md §4.B).
package pow
