// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdag

import (
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/dcrd/chaincfg/chainhash"
)

func TestGhostdagDataRoundTrip(t *testing.T) {
	h1 := labelHash("blue-1")
	h2 := labelHash("blue-2")
	r1 := labelHash("red-1")
	sp := labelHash("selected-parent")

	want := &GhostdagData{
		BlueScore:      42,
		BlueWork:       u256(123456789),
		SelectedParent: sp,
		MergesetBlues:  []chainhash.Hash{h1, h2},
		MergesetReds:   []chainhash.Hash{r1},
		BluesAnticoneSizes: map[chainhash.Hash]uint64{
			h1: 0,
			h2: 1,
		},
		OwnWork: u256(9000),
	}

	encoded := encodeGhostdagData(want)
	got, err := decodeGhostdagData(encoded)
	if err != nil {
		t.Fatalf("decodeGhostdagData: %v", err)
	}

	// GhostdagData mixes fixed-width uint256 fields, a map, and two hash
	// slices, so a field-by-field diff is more useful on failure than a
	// single reflect.DeepEqual bool; spew.Sdump renders both sides the same
	// way the teacher's genesis_test.go dumps mismatched byte slices.
	if !got.BlueWork.Eq(&want.BlueWork) || !got.OwnWork.Eq(&want.OwnWork) ||
		!reflect.DeepEqual(got.MergesetBlues, want.MergesetBlues) ||
		!reflect.DeepEqual(got.MergesetReds, want.MergesetReds) ||
		!reflect.DeepEqual(got.BluesAnticoneSizes, want.BluesAnticoneSizes) ||
		got.BlueScore != want.BlueScore || got.SelectedParent != want.SelectedParent {
		t.Fatalf("decoded GhostdagData does not round-trip - got %v, want %v",
			spew.Sdump(got), spew.Sdump(want))
	}
}

func TestHashListRoundTrip(t *testing.T) {
	hashes := []chainhash.Hash{labelHash("a"), labelHash("b"), labelHash("c")}
	encoded := encodeHashList(hashes)
	got, err := decodeHashList(encoded)
	if err != nil {
		t.Fatalf("decodeHashList: %v", err)
	}
	if len(got) != len(hashes) {
		t.Fatalf("got %d hashes, want %d", len(got), len(hashes))
	}
	for i := range hashes {
		if got[i] != hashes[i] {
			t.Fatalf("hash %d mismatch: got %s, want %s", i, got[i], hashes[i])
		}
	}
}

func TestHashListEmpty(t *testing.T) {
	encoded := encodeHashList(nil)
	got, err := decodeHashList(encoded)
	if err != nil {
		t.Fatalf("decodeHashList: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d hashes, want 0", len(got))
	}
}
