// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package standalone houses the target-arithmetic primitives of spec.md
// §4.C: converting a difficulty into the 256-bit target it implies, checking
// whether a hash satisfies that target, and computing the PoW work a block
// mined at a given difficulty is credited with. Everything here is a pure
// function of its arguments so it can be called without a chain handle,
// mirroring the teacher's blockchain/standalone split between chain-state
// logic (kept in blockchain proper) and standalone target math.
package standalone

import (
	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
)

// one is the Uint256 representation of 1, used as the difficulty floor and
// as the dividend's implicit +1 correction.
var one = func() uint256.Uint256 {
	var u uint256.Uint256
	u.SetUint64(1)
	return u
}()

// maxTarget is 2^256 - 1, the ceiling every computed target is clamped to.
var maxTarget = func() uint256.Uint256 {
	var allOnes [32]byte
	for i := range allOnes {
		allOnes[i] = 0xff
	}
	var u uint256.Uint256
	u.SetBytes(&allOnes)
	return u
}()

// TargetFromDifficulty implements spec.md §4.C:
//
//	target(d) = floor((2^256 - 1) / max(1, d)), clamped to [1, 2^256 - 1].
func TargetFromDifficulty(difficulty uint256.Uint256) uint256.Uint256 {
	d := difficulty
	if d.IsZero() {
		d = one
	}

	target := maxTarget
	target.Div(&d)
	if target.IsZero() {
		return one
	}
	return target
}

// HashToUint256 interprets a 32-byte hash as a big-endian unsigned integer
// for target comparison, per spec.md §4.A.
func HashToUint256(hash *chainhash.Hash) uint256.Uint256 {
	raw := [32]byte(*hash)
	var u uint256.Uint256
	u.SetBytes(&raw)
	return u
}

// CheckProofOfWork reports whether hash satisfies the target implied by
// difficulty, i.e. hash <= target(difficulty) under big-endian unsigned
// comparison.
func CheckProofOfWork(hash *chainhash.Hash, difficulty uint256.Uint256) bool {
	target := TargetFromDifficulty(difficulty)
	hashInt := HashToUint256(hash)
	return hashInt.Lt(&target) || hashInt.Eq(&target)
}

// CalcWork returns the PoW work attributed to a block mined at the given
// difficulty. Per spec.md §3 and §9's Open Question, work is difficulty by
// definition; there is no separate work metric to derive.
func CalcWork(difficulty uint256.Uint256) uint256.Uint256 {
	return difficulty
}

// AddWork saturates at 2^256 - 1 instead of wrapping, per spec.md §4.C's
// "cumulative work uses saturating addition."
func AddWork(a, b uint256.Uint256) uint256.Uint256 {
	sum := a
	sum.Add(&b)
	if sum.Lt(&a) {
		return maxTarget
	}
	return sum
}

// ClampDifficulty clamps next to the inclusive range [min, max], the final
// step of every ASERT retarget (spec.md §4.D step 8).
func ClampDifficulty(next, min, max uint256.Uint256) uint256.Uint256 {
	if next.Lt(&min) {
		return min
	}
	if next.Gt(&max) {
		return max
	}
	return next
}
