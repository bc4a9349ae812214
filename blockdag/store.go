// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdag

import (
	"errors"
	"sync"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/dusklabs/duskd/database"
)

// store is the persistence layer of spec.md §4.E: parents, children, tips,
// and per-block GhostdagData, all addressed through a database.Driver. It
// owns every key this package writes, per spec.md §3's "the DAG store owns
// all persistent entities."
type store struct {
	driver database.Driver

	// mu serializes writes, matching spec.md §5's single-logical-writer
	// model. Reads go straight to the driver and need no lock of their own
	// because every write here is a single PutMany/DeleteMany batch.
	mu sync.Mutex
}

func newStore(driver database.Driver) *store {
	return &store{driver: driver}
}

// hasBlock reports whether hash has a parents record, i.e. has already been
// inserted (spec.md §4.E's "duplicate insert is a no-op success" check).
func (s *store) hasBlock(hash chainhash.Hash) (bool, error) {
	_, err := s.driver.Get(keyParents(hash))
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, ruleError(ErrStoreIO, "hasBlock", err)
	}
	return true, nil
}

// parents returns the stored parent list for hash.
func (s *store) parents(hash chainhash.Hash) ([]chainhash.Hash, error) {
	raw, err := s.driver.Get(keyParents(hash))
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ruleError(ErrStoreIO, "parents", err)
	}
	hashes, err := decodeHashList(raw)
	if err != nil {
		return nil, ruleError(ErrStoreIO, "parents decode", err)
	}
	return hashes, nil
}

// children returns the stored child list for hash.
func (s *store) children(hash chainhash.Hash) ([]chainhash.Hash, error) {
	raw, err := s.driver.Get(keyChildren(hash))
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ruleError(ErrStoreIO, "children", err)
	}
	hashes, err := decodeHashList(raw)
	if err != nil {
		return nil, ruleError(ErrStoreIO, "children decode", err)
	}
	return hashes, nil
}

// tips returns the current tips set.
func (s *store) tips() ([]chainhash.Hash, error) {
	raw, err := s.driver.Get(keyTips())
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ruleError(ErrStoreIO, "tips", err)
	}
	hashes, err := decodeHashList(raw)
	if err != nil {
		return nil, ruleError(ErrStoreIO, "tips decode", err)
	}
	return hashes, nil
}

// ghostdag returns the stored GhostdagData for hash, or nil if none exists.
func (s *store) ghostdag(hash chainhash.Hash) (*GhostdagData, error) {
	raw, err := s.driver.Get(keyGhostdag(hash))
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ruleError(ErrStoreIO, "ghostdag", err)
	}
	data, err := decodeGhostdagData(raw)
	if err != nil {
		return nil, ruleError(ErrStoreIO, "ghostdag decode", err)
	}
	return data, nil
}

func removeHash(hashes []chainhash.Hash, target chainhash.Hash) []chainhash.Hash {
	out := make([]chainhash.Hash, 0, len(hashes))
	for _, h := range hashes {
		if h != target {
			out = append(out, h)
		}
	}
	return out
}

func containsHash(hashes []chainhash.Hash, target chainhash.Hash) bool {
	for _, h := range hashes {
		if h == target {
			return true
		}
	}
	return false
}

// insertSnapshot captures the pre-insert tips and children records
// insertRelations touched, so a failed GHOSTDAG computation can be rolled
// back without the store ever exposing a half-written block (spec.md §7).
type insertSnapshot struct {
	hash         chainhash.Hash
	prevTips     []chainhash.Hash
	prevChildren map[chainhash.Hash][]chainhash.Hash
}

// insertRelations writes hash's parent list, updates each parent's children
// list, and recomputes the tips set, all in a single atomic batch. It
// returns the pre-write state so the caller can roll back if a later step
// (GHOSTDAG computation) fails.
func (s *store) insertRelations(hash chainhash.Hash, parents []chainhash.Hash) (*insertSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevTips, err := s.tips()
	if err != nil {
		return nil, err
	}

	snap := &insertSnapshot{
		hash:         hash,
		prevTips:     append([]chainhash.Hash(nil), prevTips...),
		prevChildren: make(map[chainhash.Hash][]chainhash.Hash, len(parents)),
	}

	puts := make(map[string][]byte)
	newTips := append([]chainhash.Hash(nil), prevTips...)

	for _, p := range parents {
		kids, err := s.children(p)
		if err != nil {
			return nil, err
		}
		snap.prevChildren[p] = append([]chainhash.Hash(nil), kids...)

		if !containsHash(kids, hash) {
			kids = append(kids, hash)
		}
		puts[string(keyChildren(p))] = encodeHashList(kids)

		newTips = removeHash(newTips, p)
	}

	if !containsHash(newTips, hash) {
		newTips = append(newTips, hash)
	}

	puts[string(keyParents(hash))] = encodeHashList(parents)
	puts[string(keyTips())] = encodeHashList(newTips)

	if err := s.driver.PutMany(puts); err != nil {
		return nil, ruleError(ErrStoreIO, "insertRelations", err)
	}
	return snap, nil
}

// rollback undoes a prior insertRelations call: it restores the pre-insert
// children lists and tips set, and removes the parents record so the block
// is once again unknown to the store.
func (s *store) rollback(snap *insertSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	puts := make(map[string][]byte)
	var deletes [][]byte

	for parent, kids := range snap.prevChildren {
		if len(kids) == 0 {
			deletes = append(deletes, keyChildren(parent))
		} else {
			puts[string(keyChildren(parent))] = encodeHashList(kids)
		}
	}
	puts[string(keyTips())] = encodeHashList(snap.prevTips)
	deletes = append(deletes, keyParents(snap.hash))

	if err := s.driver.PutMany(puts); err != nil {
		return ruleError(ErrStoreIO, "rollback puts", err)
	}
	if err := s.driver.DeleteMany(deletes); err != nil {
		return ruleError(ErrStoreIO, "rollback deletes", err)
	}
	return nil
}

// putGhostdag persists the GHOSTDAG record for hash. It is a separate batch
// from insertRelations because spec.md §4.J computes it only after
// relations are already written.
func (s *store) putGhostdag(hash chainhash.Hash, data *GhostdagData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.driver.PutMany(map[string][]byte{
		string(keyGhostdag(hash)): encodeGhostdagData(data),
	})
	if err != nil {
		return ruleError(ErrStoreIO, "putGhostdag", err)
	}
	return nil
}
