// pkg/bwtree/search.go
package bwtree

// pathEntry records one level of a descent: the NodeID visited and the
// exact chain head observed there, so a later mutation can CAS against
// precisely what was read.
type pathEntry[K, V any] struct {
	id   NodeID
	head *record[K, V]
}

type descentPath[K, V any] []pathEntry[K, V]

func (p descentPath[K, V]) leaf() pathEntry[K, V] {
	return p[len(p)-1]
}

// parent returns the entry immediately above the leaf, if any (false at
// the root).
func (p descentPath[K, V]) parent() (pathEntry[K, V], bool) {
	if len(p) < 2 {
		var zero pathEntry[K, V]
		return zero, false
	}
	return p[len(p)-2], true
}

// maxRedescends bounds how many times a single public operation will
// restart its descent from the root before giving up the current attempt
// and retrying from the top of the calling loop. It exists only to keep a
// single call from spinning forever under a pathological adversarial
// interleaving; forward progress is still guaranteed because every retry
// happens after a CAS someone else won.
const maxRedescends = 64

// descend walks from the root to the leaf that should contain key,
// resolving Remove/Merge/Split deltas and assisting incomplete structural
// modifications along the way. It returns the full path (root..leaf).
func (t *BwTree[K, V]) descend(key K) descentPath[K, V] {
	for attempt := 0; attempt < maxRedescends; attempt++ {
		path := make(descentPath[K, V], 0, 8)
		curID := t.rootID()
		ok := true

		for {
			head := t.mapping.get(curID)
			if head == nil {
				// Structural inconsistency transient to a root-split in
				// progress elsewhere; restart the whole descent.
				ok = false
				break
			}

			if headRemoved(head) {
				t.helpCompleteMerge(curID, path)
				ok = false
				break
			}

			if splitKey, sibling, has := pendingSplit(head); has && t.cmp(key, splitKey) >= 0 {
				t.helpCompleteSplitIndex(curID, head, path)
				curID = sibling
				continue
			}

			path = append(path, pathEntry[K, V]{id: curID, head: head})

			if head.isLeaf {
				break
			}

			f := t.foldInternal(head)
			idx := childIndex(f.entries, key, t.cmp)
			curID = childAt(f.leftmost, f.entries, idx)
		}

		if ok {
			return path
		}
	}
	// Exhausted retries under sustained contention; return whatever we
	// most recently had so the caller can still make progress on a stale
	// (but self-consistent at read time) view rather than hang forever.
	path := make(descentPath[K, V], 0, 1)
	rootID := t.rootID()
	head := t.mapping.get(rootID)
	if head != nil {
		path = append(path, pathEntry[K, V]{id: rootID, head: head})
	}
	return path
}

// searchKeyLocked returns every value currently bound to key, assuming the
// caller already holds an epoch guard.
func (t *BwTree[K, V]) searchKeyLocked(key K) []V {
	path := t.descend(key)
	if len(path) == 0 {
		return nil
	}
	f := t.foldLeaf(path.leaf().head)

	lo := lowerBoundLeaf(f.entries, key, t.cmp)
	hi := upperBoundLeaf(f.entries, key, t.cmp)
	if lo >= hi {
		return nil
	}
	out := make([]V, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, f.entries[i].value)
	}
	return out
}

// leftmostLeaf descends to the leaf that would contain lowKey (or the
// tree's first leaf if lowKey has no lower bound), for range/full scans.
func (t *BwTree[K, V]) leftmostLeafHead(lowKey K, hasLow bool) (NodeID, *record[K, V]) {
	key := lowKey
	if !hasLow {
		var zero K
		key = zero
	}
	path := t.descend(key)
	if len(path) == 0 {
		return zeroNodeID, nil
	}
	leaf := path.leaf()
	return leaf.id, leaf.head
}

// searchRangeLocked returns every (k, v) pair with lo <= k < hi, in
// non-decreasing key order, walking sibling links across leaves. A
// nil/zero-value lo or hi bound (hasLo/hasHi false) means unbounded on
// that side, which is how SearchAll is built from the same walk.
func (t *BwTree[K, V]) searchRangeLocked(lo K, hasLo bool, hi K, hasHi bool) []KV[K, V] {
	startKey := lo
	if !hasLo {
		var zero K
		startKey = zero
	}
	id, head := t.leftmostLeafHead(startKey, hasLo)
	if head == nil {
		return nil
	}

	var out []KV[K, V]
	for id != zeroNodeID {
		head := t.mapping.get(id)
		if head == nil {
			break
		}
		if headRemoved(head) {
			// The node was merged away. Its entries now live in whatever
			// absorbed it, reachable by the survivor's own sibling chain —
			// not through this node any longer. A reader does not need to
			// assist the merge to keep scanning: the retired base beneath
			// the Remove delta is still valid memory under this guard's
			// epoch and still carries the physical right-link the node had
			// before it was removed, so just hop over it.
			id = chainBase(head).sibling
			continue
		}
		f := t.foldLeaf(head)
		for _, e := range f.entries {
			if hasLo && t.cmp(e.key, lo) < 0 {
				continue
			}
			if hasHi && t.cmp(e.key, hi) >= 0 {
				return out
			}
			out = append(out, KV[K, V]{Key: e.key, Value: e.value})
		}
		if hasHi && !f.high.pos && t.cmp(f.high.key, hi) >= 0 {
			return out
		}
		id = f.sibling
	}
	return out
}
