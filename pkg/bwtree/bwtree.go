// pkg/bwtree/bwtree.go
package bwtree

import (
	"fmt"
	"sync/atomic"
)

// KV is one resolved (key, value) pair returned by a range scan.
type KV[K, V any] struct {
	Key   K
	Value V
}

// Stats is a point-in-time snapshot of a tree's activity counters,
// following pkg/cowbtree's CowBTreeStats convention: no logging library
// anywhere in this codebase, only cheap atomic counters a caller can poll
// (see DESIGN.md, AMBIENT STACK).
type Stats struct {
	Inserts       uint64
	Deletes       uint64
	Gets          uint64
	RangeScans    uint64
	Splits        uint64
	Merges        uint64
	Consolidations uint64
	Reclaimed     uint64
	ActiveReaders int
	PendingGC     int
}

type treeStats struct {
	insertCount      atomic.Uint64
	deleteCount      atomic.Uint64
	getCount         atomic.Uint64
	rangeCount       atomic.Uint64
	splitCount       atomic.Uint64
	mergeCount       atomic.Uint64
	consolidateCount atomic.Uint64
	reclaimedCount   atomic.Uint64
}

// BwTree is a latch-free, ordered, multi-valued index built from delta
// chains stacked atop base nodes. It is the in-memory sibling of
// pkg/cowbtree's copy-on-write B+-tree: where cowbtree commits a mutation
// by path-copying the spine and swapping the root pointer, BwTree commits
// by prepending a small delta record and swapping a single mapping-table
// slot, leaving most of the tree completely untouched by every write.
type BwTree[K, V any] struct {
	root    atomic.Uint64 // NodeID of the current root; swung on root split
	mapping *mappingTable[K, V]
	epoch   *epochManager[K, V]

	cmp    CompareFunc[K]
	keyEq  KeyEqFunc[K]
	valEq  ValueEqFunc[V]
	config Config

	stats  treeStats
	closed atomic.Bool
}

// New builds an empty BwTree. cmp orders keys; keyEq and valEq decide
// equality for keys and values respectively (independent of cmp so a
// caller may use a cheaper equality check than a full ordering comparison).
// config is validated and defaulted via DefaultConfig's shape.
func New[K, V any](cmp CompareFunc[K], keyEq KeyEqFunc[K], valEq ValueEqFunc[V], config Config) (*BwTree[K, V], error) {
	if cmp == nil || keyEq == nil || valEq == nil {
		return nil, fmt.Errorf("bwtree: cmp, keyEq and valEq must all be non-nil: %w", ErrInvalidConfig)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	t := &BwTree[K, V]{
		mapping: newMappingTable[K, V](),
		epoch:   newEpochManager[K, V](),
		cmp:     cmp,
		keyEq:   keyEq,
		valEq:   valEq,
		config:  config,
	}

	rootID := t.mapping.allocateID()
	base := newLeafBase[K, V](nil, negInfBound[K](), posInfBound[K](), zeroNodeID)
	t.mapping.publish(rootID, base)
	t.root.Store(uint64(rootID))

	return t, nil
}

func (t *BwTree[K, V]) rootID() NodeID {
	return NodeID(t.root.Load())
}

// SearchKey returns every value currently bound to key, in no particular
// order among duplicates.
func (t *BwTree[K, V]) SearchKey(key K) ([]V, error) {
	if t.closed.Load() {
		return nil, ErrTreeClosed
	}
	guard := t.epoch.enter()
	defer guard.leave()

	t.stats.getCount.Add(1)
	return t.searchKeyLocked(key), nil
}

// SearchRange returns every (key, value) pair with lo <= key < hi, ordered
// by key and, within a key, in no particular order among duplicates.
func (t *BwTree[K, V]) SearchRange(lo, hi K) ([]KV[K, V], error) {
	if t.closed.Load() {
		return nil, ErrTreeClosed
	}
	guard := t.epoch.enter()
	defer guard.leave()

	t.stats.rangeCount.Add(1)
	return t.searchRangeLocked(lo, true, hi, true), nil
}

// SearchAll returns every value in the tree in ascending key order.
func (t *BwTree[K, V]) SearchAll() ([]V, error) {
	if t.closed.Load() {
		return nil, ErrTreeClosed
	}
	guard := t.epoch.enter()
	defer guard.leave()

	t.stats.rangeCount.Add(1)
	var zero K
	pairs := t.searchRangeLocked(zero, false, zero, false)
	out := make([]V, len(pairs))
	for i, p := range pairs {
		out[i] = p.Value
	}
	return out, nil
}

// Stats returns a snapshot of this tree's activity counters.
func (t *BwTree[K, V]) Stats() Stats {
	return Stats{
		Inserts:        t.stats.insertCount.Load(),
		Deletes:        t.stats.deleteCount.Load(),
		Gets:           t.stats.getCount.Load(),
		RangeScans:     t.stats.rangeCount.Load(),
		Splits:         t.stats.splitCount.Load(),
		Merges:         t.stats.mergeCount.Load(),
		Consolidations: t.stats.consolidateCount.Load(),
		Reclaimed:      t.stats.reclaimedCount.Load(),
		ActiveReaders:  t.epoch.activeReaderCount(),
		PendingGC:      t.epoch.pendingCount(),
	}
}

// DeleteKey removes every pair currently bound to key, regardless of
// value, reporting whether anything was removed. It is the single-valued
// convenience built on Delete, for callers (such as the tree.Tree adapter
// in pkg/bwtree/register.go) that have no particular value to match.
func (t *BwTree[K, V]) DeleteKey(key K) (bool, error) {
	values, err := t.SearchKey(key)
	if err != nil {
		return false, err
	}
	removedAny := false
	for _, v := range values {
		removed, err := t.Delete(key, v)
		if err != nil {
			return removedAny, err
		}
		removedAny = removedAny || removed
	}
	return removedAny, nil
}

// Reclaim advances the epoch and frees any retired chain no longer
// reachable by an active reader, returning the number of records freed.
// A caller with no background sweeper can call this periodically (or
// after bursts of deletes/consolidations) to bound memory growth; it is
// always safe to call and always safe to never call.
func (t *BwTree[K, V]) Reclaim() int {
	t.epoch.advance()
	n := t.epoch.tryReclaim()
	t.stats.reclaimedCount.Add(uint64(n))
	return n
}

// Close marks the tree closed; subsequent operations return ErrTreeClosed.
// It does not block on in-flight readers finishing — callers that need
// that guarantee should stop issuing new operations and then call
// Reclaim once they know no reader remains active.
func (t *BwTree[K, V]) Close() error {
	t.closed.Store(true)
	return nil
}
