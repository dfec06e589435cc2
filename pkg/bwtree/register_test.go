// pkg/bwtree/register_test.go
package bwtree

import (
	"bytes"
	"testing"

	"peloton/pkg/tree"
)

func TestBwTreeWrapperSatisfiesTreeInterface(t *testing.T) {
	var _ tree.Tree = (*bwTreeWrapper)(nil)
	var _ tree.ExtendedTree = (*bwTreeWrapper)(nil)
	var _ tree.SnapshotableTree = (*bwTreeWrapper)(nil)
	var _ tree.TreeWithStats = (*bwTreeWrapper)(nil)
}

func TestBwTreeWrapperBasicOperations(t *testing.T) {
	w, err := createBwTreeWrapper()
	if err != nil {
		t.Fatalf("createBwTreeWrapper: %v", err)
	}

	if err := w.Insert([]byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := w.Get([]byte("k1"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("v1")) {
		t.Fatalf("Get = %q, want v1", got)
	}

	if err := w.Insert([]byte("k1"), []byte("v2")); err != nil {
		t.Fatalf("Insert (update): %v", err)
	}
	got, err = w.Get([]byte("k1"))
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if !bytes.Equal(got, []byte("v2")) {
		t.Fatalf("Get after update = %q, want v2 (single-valued map semantics)", got)
	}

	if err := w.Delete([]byte("k1")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := w.Get([]byte("k1")); err != ErrKeyNotFound {
		t.Fatalf("Get after delete: got %v, want ErrKeyNotFound", err)
	}
}

func TestBwTreeWrapperCursor(t *testing.T) {
	w, err := createBwTreeWrapper()
	if err != nil {
		t.Fatalf("createBwTreeWrapper: %v", err)
	}

	keys := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	for _, k := range keys {
		if err := w.Insert(k, k); err != nil {
			t.Fatalf("Insert %q: %v", k, err)
		}
	}

	c := w.Cursor()
	defer c.Close()
	c.First()

	var got [][]byte
	for c.Valid() {
		got = append(got, append([]byte(nil), c.Key()...))
		c.Next()
	}
	if len(got) != len(keys) {
		t.Fatalf("cursor visited %d keys, want %d", len(got), len(keys))
	}
	for i, k := range got {
		if !bytes.Equal(k, keys[i]) {
			t.Fatalf("key %d = %q, want %q", i, k, keys[i])
		}
	}
}

func TestBwTreeFactoryRegistration(t *testing.T) {
	f := tree.NewFactory(nil, tree.TreeTypeBw)
	tr, err := f.Create()
	if err != nil {
		t.Fatalf("Factory.Create with TreeTypeBw: %v", err)
	}
	if err := tr.Insert([]byte("x"), []byte("y")); err != nil {
		t.Fatalf("Insert through factory-created tree: %v", err)
	}
	got, err := tr.Get([]byte("x"))
	if err != nil || !bytes.Equal(got, []byte("y")) {
		t.Fatalf("Get through factory-created tree = (%q, %v), want (y, nil)", got, err)
	}
}
