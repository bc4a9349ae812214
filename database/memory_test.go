// Copyright (c) 2024 The duskd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"errors"
	"testing"
)

func TestMemoryGetPut(t *testing.T) {
	m := NewMemory()
	if _, err := m.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) = %v, want ErrNotFound", err)
	}

	if err := m.Put([]byte("k"), []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := m.Get([]byte("k"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("Get = %q, want %q", got, "v1")
	}
}

func TestMemoryPutManyAtomic(t *testing.T) {
	m := NewMemory()
	err := m.PutMany(map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	})
	if err != nil {
		t.Fatalf("PutMany: %v", err)
	}
	for k, want := range map[string]string{"a": "1", "b": "2"} {
		got, err := m.Get([]byte(k))
		if err != nil || string(got) != want {
			t.Fatalf("Get(%q) = (%q, %v), want (%q, nil)", k, got, err, want)
		}
	}
}

func TestMemoryDeleteMany(t *testing.T) {
	m := NewMemory()
	if err := m.PutMany(map[string][]byte{"a": []byte("1"), "b": []byte("2")}); err != nil {
		t.Fatalf("PutMany: %v", err)
	}
	if err := m.DeleteMany([][]byte{[]byte("a")}); err != nil {
		t.Fatalf("DeleteMany: %v", err)
	}
	if _, err := m.Get([]byte("a")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(a) after delete = %v, want ErrNotFound", err)
	}
	if got, err := m.Get([]byte("b")); err != nil || string(got) != "2" {
		t.Fatalf("Get(b) = (%q, %v), want (2, nil)", got, err)
	}
}

// TestMemoryGetIsolatesCaller ensures mutating a returned slice doesn't
// corrupt the stored value — the store must own its bytes.
func TestMemoryGetIsolatesCaller(t *testing.T) {
	m := NewMemory()
	if err := m.Put([]byte("k"), []byte("hello")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _ := m.Get([]byte("k"))
	got[0] = 'X'

	got2, _ := m.Get([]byte("k"))
	if string(got2) != "hello" {
		t.Fatalf("stored value mutated via returned slice: %q", got2)
	}
}
