// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package difficulty implements the ASERT controller of spec.md §4.D: a
// per-block, anchored, fixed-point exponential retarget. It is grounded on
// the shape of the teacher's blockchain/difficulty.go — a struct holding the
// chain's difficulty cursor, a retarget function returning the next
// required value, and saturating clamps instead of panics on extreme
// inputs — generalized from Decred's windowed-average algorithm to the
// aserti3-2d cubic approximation spec.md names.
package difficulty

import (
	"github.com/decred/dcrd/math/uint256"
	"github.com/dusklabs/duskd/blockchain/standalone"
	"github.com/dusklabs/duskd/chaincfg"
)

// aserti3-2d cubic approximation constants, pinned bit-for-bit per spec.md
// §4.D step 6. Do not change these without a hard fork.
const (
	cubicA = 195_766_423_245_049
	cubicB = 971_821_376
	cubicC = 5_127
)

// Anchor is spec.md §3's ASERT Anchor: the fixed reference point the
// controller measures every subsequent block's drift against. It is set
// exactly once, at the first post-genesis block evaluated, and never
// mutated afterward.
type Anchor struct {
	Height       uint64
	ParentTimeMS int64
	Difficulty   uint256.Uint256
}

// Controller holds the ASERT retarget state for one sequence of blocks. It
// is a pure function of the sequence of Next calls it receives and does not
// itself follow any branch of the DAG: blockdag.DAG advances it once per
// accepted import, in arrival order, not along the virtual tip's
// selected-parent chain.
type Controller struct {
	params *chaincfg.Params

	initialized         bool
	lastEffectiveTimeMS int64
	anchor              *Anchor
	current             uint256.Uint256
}

// NewController creates an ASERT controller seeded with the network's
// genesis difficulty. No Anchor exists until the first call to Next.
func NewController(params *chaincfg.Params, genesisDifficulty uint256.Uint256) *Controller {
	return &Controller{
		params:  params,
		current: genesisDifficulty,
	}
}

// CurrentDifficulty returns the most recently computed difficulty, or the
// genesis difficulty if Next has never been called.
func (c *Controller) CurrentDifficulty() uint256.Uint256 {
	return c.current
}

// Anchor returns the controller's anchor, or nil if none has been set yet.
func (c *Controller) Anchor() *Anchor {
	return c.anchor
}

func clampInt64(v, min, max int64) int64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// floorDivMod performs Euclidean-style flooring division so the remainder
// is always non-negative, which spec.md §4.D step 5's "frac ∈ [0, 2^16)"
// requires even when the dividend (exp_q16) is negative.
func floorDivMod(a, b int64) (q, r int64) {
	q = a / b
	r = a % b
	if r != 0 && (r < 0) != (b < 0) {
		q--
		r += b
	}
	return q, r
}

// cubicFactor computes spec.md §4.D step 6's fixed-point cubic, entirely in
// unsigned 64-bit integer arithmetic so the result is identical on every
// platform — floating point is forbidden on this path by spec.md §9.
func cubicFactor(frac int64) uint64 {
	f := uint64(frac)
	term := cubicA*f + cubicB*f*f + cubicC*f*f*f
	return ((term + (1 << 47)) >> 48) + (1 << 16)
}

// applyFactor computes anchorDifficulty * factorQ16, shifted by `shifts`
// half-lives, then corrected for factorQ16's own 2^16 fixed-point scale —
// spec.md §4.D step 7. The shift magnitude is clamped to [0, 128) before
// being applied in either direction, since a magnitude beyond that either
// saturates uint256 to zero or overflows it regardless of sign.
func applyFactor(anchorDifficulty uint256.Uint256, factorQ16 uint64, shifts int64) uint256.Uint256 {
	next := anchorDifficulty
	next.MulUint64(factorQ16)

	magnitude := shifts
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude >= 128 {
		magnitude = 127
	}

	if shifts < 0 {
		next.Rsh(uint32(magnitude))
	} else {
		next.Lsh(uint32(magnitude))
	}
	next.Rsh(16)
	return next
}

// Next computes the difficulty for the block at height with wall-clock
// timestamp nowMS, implementing spec.md §4.D steps 1-8 in order.
func (c *Controller) Next(nowMS int64, height uint64) uint256.Uint256 {
	if !c.initialized {
		c.lastEffectiveTimeMS = nowMS - c.params.TargetBlockTimeMS
		c.initialized = true
	}

	solveMS := clampInt64(nowMS-c.lastEffectiveTimeMS, c.params.MinSolveMS, c.params.MaxSolveMS)
	effectiveNow := c.lastEffectiveTimeMS + solveMS
	c.lastEffectiveTimeMS = effectiveNow

	if c.anchor == nil {
		c.anchor = &Anchor{
			Height:       height,
			ParentTimeMS: nowMS - c.params.TargetBlockTimeMS,
			Difficulty:   c.current,
		}
	}

	deltaH := int64(height - c.anchor.Height)
	ideal := c.params.TargetBlockTimeMS * (deltaH + 1)
	real := effectiveNow - c.anchor.ParentTimeMS
	expQ16 := ((ideal - real) << 16) / c.params.HalfLifeMS

	shifts, frac := floorDivMod(expQ16, 1<<16)
	factorQ16 := cubicFactor(frac)

	next := applyFactor(c.anchor.Difficulty, factorQ16, shifts)
	next = standalone.ClampDifficulty(next, c.params.MinDifficulty, c.params.MaxDifficulty)
	c.current = next
	return next
}
