// pkg/bwtree/mutate.go
package bwtree

// Insert binds value to key. If the tree was built with AllowDuplicates
// false and key already has a binding, that binding's value is replaced
// and Insert reports false (no new pair was added). Otherwise Insert
// appends a new (key, value) pair and reports true, unless that exact
// pair is already present, in which case it reports false without
// modifying the tree.
func (t *BwTree[K, V]) Insert(key K, value V) (bool, error) {
	if t.closed.Load() {
		return false, ErrTreeClosed
	}
	guard := t.epoch.enter()
	defer guard.leave()

	for attempt := 0; attempt < maxRedescends; attempt++ {
		path := t.descend(key)
		if len(path) == 0 {
			continue
		}
		leaf := path.leaf()
		f := t.foldLeaf(leaf.head)
		lo := lowerBoundLeaf(f.entries, key, t.cmp)

		if !t.config.AllowDuplicates {
			if lo < len(f.entries) && t.keyEq(f.entries[lo].key, key) {
				delta := prepend(leaf.head, kindUpdate)
				delta.key = key
				delta.value = value
				if !t.mapping.install(leaf.id, leaf.head, delta) {
					continue
				}
				t.stats.insertCount.Add(1)
				t.afterWrite(leaf.id, delta, path[:len(path)-1])
				return false, nil
			}
		} else {
			hi := upperBoundLeaf(f.entries, key, t.cmp)
			for i := lo; i < hi; i++ {
				if t.valEq(f.entries[i].value, value) {
					return false, nil
				}
			}
		}

		delta := prepend(leaf.head, kindInsert)
		delta.key = key
		delta.value = value
		if !t.mapping.install(leaf.id, leaf.head, delta) {
			continue
		}
		t.stats.insertCount.Add(1)
		t.afterWrite(leaf.id, delta, path[:len(path)-1])
		return true, nil
	}
	return false, errCASFailed
}

// Delete removes the (key, value) pair if present, reporting whether it
// was found. A multimap may hold several values under key; only the pair
// matching value is removed.
func (t *BwTree[K, V]) Delete(key K, value V) (bool, error) {
	if t.closed.Load() {
		return false, ErrTreeClosed
	}
	guard := t.epoch.enter()
	defer guard.leave()

	for attempt := 0; attempt < maxRedescends; attempt++ {
		path := t.descend(key)
		if len(path) == 0 {
			continue
		}
		leaf := path.leaf()
		f := t.foldLeaf(leaf.head)

		lo := lowerBoundLeaf(f.entries, key, t.cmp)
		hi := upperBoundLeaf(f.entries, key, t.cmp)
		found := false
		for i := lo; i < hi; i++ {
			if t.valEq(f.entries[i].value, value) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}

		delta := prepend(leaf.head, kindDelete)
		delta.key = key
		delta.value = value
		if !t.mapping.install(leaf.id, leaf.head, delta) {
			continue
		}
		t.stats.deleteCount.Add(1)
		t.afterDelete(leaf.id, delta, path[:len(path)-1])
		return true, nil
	}
	return false, errCASFailed
}

// afterWrite applies the post-mutation maintenance common to every
// successful Insert: consolidate the chain if it has grown too long, then
// split the node if it has grown too large. Both are triggered
// opportunistically by whichever operation happens to cross the relevant
// threshold, never by a background thread.
func (t *BwTree[K, V]) afterWrite(id NodeID, head *record[K, V], parentPath descentPath[K, V]) {
	if fresh, did := t.maybeConsolidate(id, head); did {
		head = fresh
	}
	if head.isLeaf {
		t.triggerSplitLeaf(id, head, parentPath)
	} else {
		t.triggerSplitInternal(id, head, parentPath)
	}
}

// afterDelete mirrors afterWrite for the shrinking direction: consolidate,
// then merge the node into a neighbor if it has become under-full.
func (t *BwTree[K, V]) afterDelete(id NodeID, head *record[K, V], parentPath descentPath[K, V]) {
	if fresh, did := t.maybeConsolidate(id, head); did {
		head = fresh
	}
	if head.isLeaf {
		t.triggerMergeLeaf(id, head, parentPath)
	} else {
		t.triggerMergeInternal(id, head, parentPath)
	}
}
