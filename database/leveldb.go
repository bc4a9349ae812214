// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
)

// LevelDB is the production Driver: a goleveldb instance on disk. It is the
// concrete persistent key-value store spec.md §6 names as an external
// collaborator, backed by the same library the teacher's go.mod already
// depended on for its chain database.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if necessary) a goleveldb database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

// Close releases the underlying goleveldb handle.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Get implements Driver.
func (l *LevelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if err == errors.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}

// Put implements Driver.
func (l *LevelDB) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

// PutMany implements Driver using a goleveldb batch, which commits
// atomically: either every pair lands, or none do, satisfying spec.md
// §4.E's per-block atomicity requirement.
func (l *LevelDB) PutMany(pairs map[string][]byte) error {
	batch := new(leveldb.Batch)
	for k, v := range pairs {
		batch.Put([]byte(k), v)
	}
	return l.db.Write(batch, nil)
}

// DeleteMany implements Driver using a goleveldb batch, for the same
// all-or-nothing guarantee as PutMany.
func (l *LevelDB) DeleteMany(keys [][]byte) error {
	batch := new(leveldb.Batch)
	for _, k := range keys {
		batch.Delete(k)
	}
	return l.db.Write(batch, nil)
}
