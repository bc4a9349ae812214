// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package database provides the storage capability spec.md §9 asks the
// consensus core to depend on instead of a concrete store: get/put/put-many
// over opaque byte keys. blockdag is the only consumer; it owns all key
// construction and value encoding (spec.md §3's "the DAG store owns all
// persistent entities").
package database

import "errors"

// ErrNotFound is returned by Driver.Get when the key does not exist. It is
// not an I/O failure and callers should not retry it.
var ErrNotFound = errors.New("database: key not found")

// Driver is the capability the consensus core depends on, per spec.md §9's
// "polymorphism over storage" design note: any type satisfying this
// interface — in-memory for tests, goleveldb for a real node — can back the
// DAG store without the core knowing which.
type Driver interface {
	// Get returns the value for key, or ErrNotFound if it does not exist.
	Get(key []byte) ([]byte, error)

	// Put writes a single key/value pair.
	Put(key, value []byte) error

	// PutMany writes every pair atomically: either all of them are visible
	// to subsequent Get calls, or none are. This backs spec.md §4.E's
	// requirement that a block insertion's relation/children/tips updates
	// are atomic at the granularity of one block.
	PutMany(pairs map[string][]byte) error

	// DeleteMany removes every listed key atomically. It backs the rollback
	// half of spec.md §7's transactional import: undoing a relation/tips
	// write when GHOSTDAG computation fails partway through.
	DeleteMany(keys [][]byte) error
}
