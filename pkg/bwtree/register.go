// pkg/bwtree/register.go
package bwtree

import (
	"bytes"

	"peloton/pkg/tree"
)

func init() {
	tree.RegisterBwTreeCreator(createBwTreeWrapper)
}

// bwTreeWrapper adapts BwTree[[]byte, []byte] to tree.ExtendedTree, the
// same shape pkg/cowbtree's register.go adapts CowBTree to (see
// cowTreeWrapper). Unlike the page-based backends it owns no pages, so
// RootPage/Depth/CollectPages report zero values rather than anything
// meaningful: a reader should not use this backend where the caller needs
// to learn about physical page layout.
//
// tree.Tree's Insert/Get/Delete are single-valued, so the wrapper builds
// its BwTree with AllowDuplicates false: every key holds at most one
// binding, exactly like btree.BTree and cowbtree.CowBTree.
type bwTreeWrapper struct {
	t *BwTree[[]byte, []byte]
}

func createBwTreeWrapper() (tree.ExtendedTree, error) {
	t, err := New[[]byte, []byte](bytes.Compare, bytes.Equal, bytes.Equal, Config{
		MaxChainLen:     DefaultConfig().MaxChainLen,
		MaxNodeSize:     DefaultConfig().MaxNodeSize,
		MinNodeSize:     DefaultConfig().MinNodeSize,
		AllowDuplicates: false,
	})
	if err != nil {
		return nil, err
	}
	return &bwTreeWrapper{t: t}, nil
}

func (w *bwTreeWrapper) Insert(key, value []byte) error {
	_, err := w.t.Insert(key, value)
	return err
}

func (w *bwTreeWrapper) Get(key []byte) ([]byte, error) {
	values, err := w.t.SearchKey(key)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrKeyNotFound
	}
	return values[0], nil
}

func (w *bwTreeWrapper) Delete(key []byte) error {
	_, err := w.t.DeleteKey(key)
	return err
}

func (w *bwTreeWrapper) Cursor() tree.Cursor {
	return &bwCursorWrapper{t: w.t}
}

func (w *bwTreeWrapper) RootPage() uint32      { return 0 }
func (w *bwTreeWrapper) Depth() int            { return -1 }
func (w *bwTreeWrapper) CollectPages() []uint32 { return nil }

// KeyCount implements tree.TreeWithStats.
func (w *bwTreeWrapper) KeyCount() int64 {
	values, err := w.t.SearchAll()
	if err != nil {
		return 0
	}
	return int64(len(values))
}

// Snapshot implements tree.SnapshotableTree. A Bw-tree has no single
// consistent root to pin the way cowbtree does; instead the snapshot is
// simply a cursor-backed point-in-time Get, valid for as long as the
// epoch guard opened underneath it remains held.
func (w *bwTreeWrapper) Snapshot() tree.TreeSnapshot {
	return &bwSnapshot{t: w.t}
}

type bwSnapshot struct {
	t *BwTree[[]byte, []byte]
}

func (s *bwSnapshot) Get(key []byte) ([]byte, error) {
	values, err := s.t.SearchKey(key)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrKeyNotFound
	}
	return values[0], nil
}

func (s *bwSnapshot) Release() {}

// bwCursorWrapper adapts *Cursor[[]byte, []byte] to tree.Cursor. Last/Prev
// have no Bw-tree equivalent (Cursor is forward-only, see cursor.go); they
// are implemented as no-ops/false, matching the interface's contract of
// simply reporting an invalid cursor rather than panicking.
type bwCursorWrapper struct {
	t *BwTree[[]byte, []byte]
	c *Cursor[[]byte, []byte]
}

func (w *bwCursorWrapper) First() {
	w.reopen(nil, false, nil, false)
}

func (w *bwCursorWrapper) Last() {
	// Not supported by a forward-only cursor; leave invalid.
	w.closeCurrent()
	w.c = nil
}

func (w *bwCursorWrapper) Seek(key []byte) {
	w.reopen(key, true, nil, false)
}

func (w *bwCursorWrapper) Next() {
	if w.c == nil {
		return
	}
	w.c.Next()
}

func (w *bwCursorWrapper) Prev() {
	// Not supported by a forward-only cursor.
}

func (w *bwCursorWrapper) Valid() bool {
	return w.c != nil && w.c.Valid()
}

func (w *bwCursorWrapper) Key() []byte {
	if !w.Valid() {
		return nil
	}
	return w.c.Key()
}

func (w *bwCursorWrapper) Value() []byte {
	if !w.Valid() {
		return nil
	}
	return w.c.Value()
}

func (w *bwCursorWrapper) Close() {
	w.closeCurrent()
}

func (w *bwCursorWrapper) closeCurrent() {
	if w.c != nil {
		w.c.Close()
	}
}

func (w *bwCursorWrapper) reopen(lo []byte, hasLo bool, hi []byte, hasHi bool) {
	w.closeCurrent()
	c, err := w.t.Cursor(lo, hasLo, hi, hasHi)
	if err != nil {
		w.c = nil
		return
	}
	w.c = c
}
