// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdag

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/math/uint256"
)

// Key tags, per spec.md §6: "keys are prefix ‖ tag ‖ block_hash". storePrefix
// namespaces every key this package writes within a shared database.Driver.
const storePrefix = "dusk"

const (
	tagParents byte = iota
	tagChildren
	tagGhostdag
	tagTips
)

// zeroHash is the sentinel both genesis's selected_parent and the tips key's
// suffix use.
var zeroHash chainhash.Hash

func buildKey(tag byte, hash chainhash.Hash) []byte {
	key := make([]byte, 0, len(storePrefix)+1+chainhash.HashSize)
	key = append(key, storePrefix...)
	key = append(key, tag)
	key = append(key, hash[:]...)
	return key
}

func keyParents(hash chainhash.Hash) []byte  { return buildKey(tagParents, hash) }
func keyChildren(hash chainhash.Hash) []byte { return buildKey(tagChildren, hash) }
func keyGhostdag(hash chainhash.Hash) []byte { return buildKey(tagGhostdag, hash) }
func keyTips() []byte                        { return buildKey(tagTips, zeroHash) }

// Every encoded value starts with a version byte so the format can evolve
// without breaking a running node mid-upgrade.
const encodingVersionV1 = 1

func encodeHashList(hashes []chainhash.Hash) []byte {
	buf := make([]byte, 1+4+len(hashes)*chainhash.HashSize)
	buf[0] = encodingVersionV1
	binary.LittleEndian.PutUint32(buf[1:5], uint32(len(hashes)))
	off := 5
	for _, h := range hashes {
		copy(buf[off:off+chainhash.HashSize], h[:])
		off += chainhash.HashSize
	}
	return buf
}

func decodeHashList(data []byte) ([]chainhash.Hash, error) {
	if len(data) < 5 {
		return nil, fmt.Errorf("blockdag: hash list too short: %d bytes", len(data))
	}
	if data[0] != encodingVersionV1 {
		return nil, fmt.Errorf("blockdag: unsupported hash list encoding version %d", data[0])
	}
	count := binary.LittleEndian.Uint32(data[1:5])
	want := 5 + int(count)*chainhash.HashSize
	if len(data) != want {
		return nil, fmt.Errorf("blockdag: hash list length mismatch: got %d bytes, want %d", len(data), want)
	}
	hashes := make([]chainhash.Hash, count)
	off := 5
	for i := range hashes {
		copy(hashes[i][:], data[off:off+chainhash.HashSize])
		off += chainhash.HashSize
	}
	return hashes, nil
}

// GhostdagData is the per-block GHOSTDAG record of spec.md §3.
type GhostdagData struct {
	BlueScore          uint64
	BlueWork           uint256.Uint256
	SelectedParent     chainhash.Hash
	MergesetBlues      []chainhash.Hash
	MergesetReds       []chainhash.Hash
	BluesAnticoneSizes map[chainhash.Hash]uint64

	// OwnWork is the PoW work this specific block was mined at (w(B) in
	// spec.md §4.G's scoring formulas). It is not part of spec.md §3's
	// GhostdagData shape but is carried alongside it so a rehydrated node
	// can recompute blue_work for its own future children without the
	// store replaying the whole import pipeline.
	OwnWork uint256.Uint256
}

func encodeGhostdagData(g *GhostdagData) []byte {
	blueWork := g.BlueWork.Bytes()
	ownWork := g.OwnWork.Bytes()

	// anticone sizes are sorted by hash for a deterministic encoding,
	// matching the deterministic iteration order the rest of the package
	// requires.
	entries := make([]chainhash.Hash, 0, len(g.BluesAnticoneSizes))
	for h := range g.BluesAnticoneSizes {
		entries = append(entries, h)
	}
	sort.Slice(entries, func(i, j int) bool {
		return lessHash(entries[i], entries[j])
	})

	size := 1 + 8 + len(blueWork) + len(ownWork) + chainhash.HashSize
	size += 4 + len(g.MergesetBlues)*chainhash.HashSize
	size += 4 + len(g.MergesetReds)*chainhash.HashSize
	size += 4 + len(entries)*(chainhash.HashSize+8)

	buf := make([]byte, size)
	off := 0
	buf[off] = encodingVersionV1
	off++
	binary.LittleEndian.PutUint64(buf[off:off+8], g.BlueScore)
	off += 8
	copy(buf[off:off+len(blueWork)], blueWork[:])
	off += len(blueWork)
	copy(buf[off:off+len(ownWork)], ownWork[:])
	off += len(ownWork)
	copy(buf[off:off+chainhash.HashSize], g.SelectedParent[:])
	off += chainhash.HashSize

	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(g.MergesetBlues)))
	off += 4
	for _, h := range g.MergesetBlues {
		copy(buf[off:off+chainhash.HashSize], h[:])
		off += chainhash.HashSize
	}

	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(g.MergesetReds)))
	off += 4
	for _, h := range g.MergesetReds {
		copy(buf[off:off+chainhash.HashSize], h[:])
		off += chainhash.HashSize
	}

	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(entries)))
	off += 4
	for _, h := range entries {
		copy(buf[off:off+chainhash.HashSize], h[:])
		off += chainhash.HashSize
		binary.LittleEndian.PutUint64(buf[off:off+8], g.BluesAnticoneSizes[h])
		off += 8
	}

	return buf
}

func decodeGhostdagData(data []byte) (*GhostdagData, error) {
	const blueWorkSize = 32
	minLen := 1 + 8 + 2*blueWorkSize + chainhash.HashSize + 4 + 4 + 4
	if len(data) < minLen {
		return nil, fmt.Errorf("blockdag: ghostdag record too short: %d bytes", len(data))
	}
	if data[0] != encodingVersionV1 {
		return nil, fmt.Errorf("blockdag: unsupported ghostdag encoding version %d", data[0])
	}

	g := &GhostdagData{BluesAnticoneSizes: make(map[chainhash.Hash]uint64)}
	off := 1
	g.BlueScore = binary.LittleEndian.Uint64(data[off : off+8])
	off += 8

	var blueWorkBytes [blueWorkSize]byte
	copy(blueWorkBytes[:], data[off:off+blueWorkSize])
	g.BlueWork.SetBytes(&blueWorkBytes)
	off += blueWorkSize

	var ownWorkBytes [blueWorkSize]byte
	copy(ownWorkBytes[:], data[off:off+blueWorkSize])
	g.OwnWork.SetBytes(&ownWorkBytes)
	off += blueWorkSize

	copy(g.SelectedParent[:], data[off:off+chainhash.HashSize])
	off += chainhash.HashSize

	readList := func() ([]chainhash.Hash, error) {
		if off+4 > len(data) {
			return nil, fmt.Errorf("blockdag: truncated ghostdag record")
		}
		count := binary.LittleEndian.Uint32(data[off : off+4])
		off += 4
		need := int(count) * chainhash.HashSize
		if off+need > len(data) {
			return nil, fmt.Errorf("blockdag: truncated ghostdag record hash list")
		}
		out := make([]chainhash.Hash, count)
		for i := range out {
			copy(out[i][:], data[off:off+chainhash.HashSize])
			off += chainhash.HashSize
		}
		return out, nil
	}

	blues, err := readList()
	if err != nil {
		return nil, err
	}
	g.MergesetBlues = blues

	reds, err := readList()
	if err != nil {
		return nil, err
	}
	g.MergesetReds = reds

	if off+4 > len(data) {
		return nil, fmt.Errorf("blockdag: truncated ghostdag record anticone map")
	}
	count := binary.LittleEndian.Uint32(data[off : off+4])
	off += 4
	for i := uint32(0); i < count; i++ {
		if off+chainhash.HashSize+8 > len(data) {
			return nil, fmt.Errorf("blockdag: truncated ghostdag record anticone entry")
		}
		var h chainhash.Hash
		copy(h[:], data[off:off+chainhash.HashSize])
		off += chainhash.HashSize
		g.BluesAnticoneSizes[h] = binary.LittleEndian.Uint64(data[off : off+8])
		off += 8
	}

	return g, nil
}

// lessHash is the canonical tie-break this package uses everywhere spec.md
// requires "smaller hash wins": byte-wise unsigned comparison of the raw
// hash bytes.
func lessHash(a, b chainhash.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
