// pkg/bwtree/smo.go
package bwtree

// Structural modifications: splitting an over-full node and merging an
// under-full one. Both follow the same two-phase shape: post a delta on
// the node itself first, then post a second delta linking the change into
// the parent. A reader or writer that crosses the first delta before the
// second exists helps complete it rather than blocking — that is what
// makes the tree latch-free.

// triggerSplitLeaf splits an over-full leaf at id once its folded view
// exceeds MaxNodeSize. It installs the Split delta on id and, if that wins
// the race, immediately attempts the second phase (linking the new sibling
// into the parent, or growing a new root).
func (t *BwTree[K, V]) triggerSplitLeaf(id NodeID, head *record[K, V], path descentPath[K, V]) {
	f := t.foldLeaf(head)
	if len(f.entries) < t.config.MaxNodeSize {
		return
	}
	mid := len(f.entries) / 2
	// A split point must fall on a key boundary: if duplicates straddle the
	// midpoint, sliding it forward keeps every pair for a given key on the
	// same side, so the Split delta's cut (by key, not by index) agrees
	// exactly with where the sibling's entries actually start.
	for mid < len(f.entries) && t.keyEq(f.entries[mid].key, f.entries[mid-1].key) {
		mid++
	}
	if mid >= len(f.entries) {
		// Every entry shares one key (more duplicates than MaxNodeSize
		// allows under one key); there is no boundary to split on.
		return
	}
	splitKey := f.entries[mid].key

	siblingID := t.mapping.allocateID()
	siblingEntries := append([]leafEntry[K, V](nil), f.entries[mid:]...)
	siblingBase := newLeafBase[K, V](siblingEntries, finiteBound(splitKey), f.high, f.sibling)
	t.mapping.publish(siblingID, siblingBase)

	delta := prepend(head, kindSplit)
	delta.splitKey = splitKey
	delta.siblingID = siblingID

	if !t.mapping.install(id, head, delta) {
		// Lost the race; the sibling id is simply abandoned, unreferenced
		// by any chain. Another thread's own split (or none at all, if it
		// lost too) will be tried again on the next operation that visits
		// this node with a freshly-read head.
		return
	}
	t.stats.splitCount.Add(1)
	t.linkSplitIntoParent(id, splitKey, siblingID, path)
}

// triggerSplitInternal mirrors triggerSplitLeaf for internal nodes.
func (t *BwTree[K, V]) triggerSplitInternal(id NodeID, head *record[K, V], path descentPath[K, V]) {
	f := t.foldInternal(head)
	if len(f.entries) < t.config.MaxNodeSize {
		return
	}
	mid := len(f.entries) / 2
	splitKey := f.entries[mid].sep

	siblingID := t.mapping.allocateID()
	siblingEntries := append([]childEntry[K](nil), f.entries[mid+1:]...)
	siblingBase := newInternalBase[K, V](f.entries[mid].child, siblingEntries, finiteBound(splitKey), f.high, f.sibling)
	t.mapping.publish(siblingID, siblingBase)

	delta := prepend(head, kindSplit)
	delta.splitKey = splitKey
	delta.siblingID = siblingID

	if !t.mapping.install(id, head, delta) {
		return
	}
	t.stats.splitCount.Add(1)
	t.linkSplitIntoParent(id, splitKey, siblingID, path)
}

// linkSplitIntoParent posts the SplitIndex delta that makes a completed
// Split reachable from the parent's own children (phase 2), or grows a new
// root if id had no parent. path is the descent path that reached id,
// i.e. it does not include id itself.
func (t *BwTree[K, V]) linkSplitIntoParent(id NodeID, splitKey K, siblingID NodeID, path descentPath[K, V]) {
	if len(path) == 0 {
		t.growRoot(id, splitKey, siblingID)
		return
	}
	parent := path[len(path)-1]
	t.installSplitIndex(parent.id, splitKey, siblingID)
}

// installSplitIndex re-reads the parent's live head (the one captured
// during descent may already be stale) and attempts to CAS in a SplitIndex
// delta. A lost race is left for a later help-along pass; the split is
// already safely reachable via the sibling pointer regardless.
func (t *BwTree[K, V]) installSplitIndex(parentID NodeID, splitKey K, siblingID NodeID) {
	head := t.mapping.get(parentID)
	if head == nil {
		return
	}
	if splitIndexAlreadyLinked(head, splitKey, siblingID, t.cmp) {
		return
	}
	delta := prepend(head, kindSplitIndex)
	delta.splitKey = splitKey
	delta.newChildID = siblingID
	t.mapping.install(parentID, head, delta)
}

// splitIndexAlreadyLinked reports whether a chain already carries a
// SplitIndex for this exact (splitKey, siblingID) pair, so help-along never
// double-links the same split.
func splitIndexAlreadyLinked[K, V any](head *record[K, V], splitKey K, siblingID NodeID, cmp CompareFunc[K]) bool {
	for cur := head; !cur.isBase(); cur = cur.next {
		if cur.kind == kindSplitIndex && cur.newChildID == siblingID && cmp(cur.splitKey, splitKey) == 0 {
			return true
		}
	}
	return false
}

// growRoot handles the special case of splitting the current root: the
// root's NodeID is fixed (BwTree.root), so a new internal base is
// allocated under a fresh id and t.root is swung to point at it, with the
// old root content (now just another node) as its leftmost child.
func (t *BwTree[K, V]) growRoot(oldRootID NodeID, splitKey K, siblingID NodeID) {
	if NodeID(t.root.Load()) != oldRootID {
		// Someone else already grew a new root over this split.
		return
	}
	newRootBase := newInternalBase[K, V](
		oldRootID,
		[]childEntry[K]{{sep: splitKey, child: siblingID}},
		negInfBound[K](), posInfBound[K](), zeroNodeID,
	)
	newRootID := t.mapping.allocateID()
	t.mapping.publish(newRootID, newRootBase)
	t.root.CompareAndSwap(uint64(oldRootID), uint64(newRootID))
}

// helpCompleteSplitIndex is called by a descent that found a pending Split
// on curID before a matching SplitIndex exists on the parent (or before a
// new root exists, if curID is currently the root). It is best-effort: the
// caller does not need it to succeed, since the sibling pointer alone is
// enough to route the caller's own operation correctly.
func (t *BwTree[K, V]) helpCompleteSplitIndex(curID NodeID, head *record[K, V], path descentPath[K, V]) {
	splitKey, siblingID, ok := pendingSplit(head)
	if !ok {
		return
	}
	if len(path) == 0 {
		t.growRoot(curID, splitKey, siblingID)
		return
	}
	parent := path[len(path)-1]
	t.installSplitIndex(parent.id, splitKey, siblingID)
}

// findChildPos locates id's position among an internal node's children:
// 0 means id is the leftmost child, i>0 means id == entries[i-1].child.
func findChildPos[K any](leftmost NodeID, entries []childEntry[K], id NodeID) (pos int, ok bool) {
	if leftmost == id {
		return 0, true
	}
	for i, e := range entries {
		if e.child == id {
			return i + 1, true
		}
	}
	return 0, false
}

// triggerMergeLeaf considers merging an under-full leaf at id into a
// neighbor. It is a no-op if id is the root (roots never merge), has no
// neighbor to merge with, or is no longer under-full by the time it runs.
func (t *BwTree[K, V]) triggerMergeLeaf(id NodeID, head *record[K, V], path descentPath[K, V]) {
	f := t.foldLeaf(head)
	if len(f.entries) >= t.config.MinNodeSize || len(path) == 0 {
		return
	}
	parent := path[len(path)-1]
	parentHead := t.mapping.get(parent.id)
	if parentHead == nil {
		return
	}
	pf := t.foldInternal(parentHead)
	pos, ok := findChildPos(pf.leftmost, pf.entries, id)
	if !ok {
		return
	}

	if pos > 0 {
		// id has a left sibling: fold id away into it.
		leftID := childAt(pf.leftmost, pf.entries, pos-1)
		mergeKey := pf.entries[pos-1].sep
		t.mergeLeafPair(leftID, id, mergeKey, parent.id)
		return
	}
	// id is the leftmost child: fold its right sibling into id instead, so
	// the parent's leftmost pointer (which cannot be removed by a delta)
	// never needs to change.
	if len(pf.entries) == 0 {
		return
	}
	rightID := pf.entries[0].child
	mergeKey := pf.entries[0].sep
	t.mergeLeafPair(id, rightID, mergeKey, parent.id)
}

// mergeLeafPair removes rightID by folding it into leftID, then retracts
// the separator between them from the parent.
func (t *BwTree[K, V]) mergeLeafPair(leftID, rightID NodeID, mergeKey K, parentID NodeID) {
	rightHead := t.mapping.get(rightID)
	if rightHead == nil || headRemoved(rightHead) {
		return
	}
	removeDelta := prepend(rightHead, kindRemove)
	if !t.mapping.install(rightID, rightHead, removeDelta) {
		return
	}

	leftHead := t.mapping.get(leftID)
	if leftHead == nil {
		return
	}
	mergeDelta := prepend(leftHead, kindMerge)
	mergeDelta.mergeKey = mergeKey
	mergeDelta.foreignChain = rightHead
	if !t.mapping.install(leftID, leftHead, mergeDelta) {
		// The Remove on rightID stands regardless; a later help-along pass
		// (on whichever thread next descends through leftID) will retry
		// linking the merge once it re-reads leftID's then-current head.
		return
	}
	t.stats.mergeCount.Add(1)
	if t.installRemoveIndex(parentID, mergeKey) {
		t.retireNode(rightID, rightHead)
	}
}

// triggerMergeInternal mirrors triggerMergeLeaf for internal nodes.
func (t *BwTree[K, V]) triggerMergeInternal(id NodeID, head *record[K, V], path descentPath[K, V]) {
	f := t.foldInternal(head)
	if len(f.entries) >= t.config.MinNodeSize || len(path) == 0 {
		return
	}
	parent := path[len(path)-1]
	parentHead := t.mapping.get(parent.id)
	if parentHead == nil {
		return
	}
	pf := t.foldInternal(parentHead)
	pos, ok := findChildPos(pf.leftmost, pf.entries, id)
	if !ok {
		return
	}

	if pos > 0 {
		leftID := childAt(pf.leftmost, pf.entries, pos-1)
		mergeKey := pf.entries[pos-1].sep
		t.mergeInternalPair(leftID, id, mergeKey, parent.id)
		return
	}
	if len(pf.entries) == 0 {
		return
	}
	rightID := pf.entries[0].child
	mergeKey := pf.entries[0].sep
	t.mergeInternalPair(id, rightID, mergeKey, parent.id)
}

func (t *BwTree[K, V]) mergeInternalPair(leftID, rightID NodeID, mergeKey K, parentID NodeID) {
	rightHead := t.mapping.get(rightID)
	if rightHead == nil || headRemoved(rightHead) {
		return
	}
	removeDelta := prepend(rightHead, kindRemove)
	if !t.mapping.install(rightID, rightHead, removeDelta) {
		return
	}

	leftHead := t.mapping.get(leftID)
	if leftHead == nil {
		return
	}
	mergeDelta := prepend(leftHead, kindMerge)
	mergeDelta.mergeKey = mergeKey
	mergeDelta.foreignChain = rightHead
	if !t.mapping.install(leftID, leftHead, mergeDelta) {
		return
	}
	t.stats.mergeCount.Add(1)
	if t.installRemoveIndex(parentID, mergeKey) {
		t.retireNode(rightID, rightHead)
	}
}

// installRemoveIndex retracts the separator for a now-absorbed child from
// the parent, reporting whether the parent reflects the retraction by the
// time it returns — either because this call performed the CAS or because
// another thread's help-along pass already had. A false result is a lost
// race (parent's head moved, or was momentarily unreadable); the next
// thread to cross the Remove delta retries via help-along.
func (t *BwTree[K, V]) installRemoveIndex(parentID NodeID, mergeKey K) bool {
	head := t.mapping.get(parentID)
	if head == nil {
		return false
	}
	if removeIndexAlreadyLinked(head, mergeKey, t.cmp) {
		return true
	}
	delta := prepend(head, kindRemoveIndex)
	delta.mergeKey = mergeKey
	delta.deletedKey = mergeKey
	return t.mapping.install(parentID, head, delta)
}

// retireNode finalizes a completed merge: rightID's separator has already
// been retracted from its parent, so no descent can route into it again.
// Its full chain — base entries and all — is replaced by a lightweight
// tombstone that still reports removed and still carries the node's
// original physical sibling, so a scan that reaches it via a sibling
// pointer captured before the merge can still hop over it correctly (see
// searchRangeLocked). The superseded chain is then handed to the epoch
// reclaimer. Safe to call from every thread that observes the parent's
// retraction — only the CAS winner retires the chain, so a second caller
// racing the first is a harmless no-op.
func (t *BwTree[K, V]) retireNode(id NodeID, head *record[K, V]) {
	base := chainBase(head)
	tombstoneBase := &record[K, V]{kind: base.kind, isLeaf: base.isLeaf, sibling: base.sibling, chainLen: 1}
	tombstone := prepend(tombstoneBase, kindRemove)
	if t.mapping.install(id, head, tombstone) {
		t.epoch.retireChain(head)
	}
}

func removeIndexAlreadyLinked[K, V any](head *record[K, V], mergeKey K, cmp CompareFunc[K]) bool {
	for cur := head; !cur.isBase(); cur = cur.next {
		if cur.kind == kindRemoveIndex && cmp(cur.mergeKey, mergeKey) == 0 {
			return true
		}
		if cur.kind == kindMerge && cmp(cur.mergeKey, mergeKey) == 0 {
			// Already folded away on this side; nothing left to retract.
			return true
		}
	}
	return false
}

// helpCompleteMerge is called by a descent that found curID already
// retired by a Remove delta. It locates curID's survivor through the
// parent recorded in path and finishes linking the RemoveIndex, so later
// descents stop routing through curID's old parent slot at all. The
// calling descent itself does not wait on this: it restarts from the root,
// which will no longer route through curID once the parent's separator
// (or, at worst, curID's own sibling pointer) takes over.
func (t *BwTree[K, V]) helpCompleteMerge(curID NodeID, path descentPath[K, V]) {
	if len(path) == 0 {
		return
	}
	parent := path[len(path)-1]
	parentHead := t.mapping.get(parent.id)
	if parentHead == nil {
		return
	}
	pf := t.foldInternal(parentHead)
	pos, ok := findChildPos(pf.leftmost, pf.entries, curID)
	if !ok {
		// The parent has already dropped this separator; nothing to help.
		return
	}
	if pos == 0 {
		// curID is recorded as leftmost but was removed; this can only
		// happen if it was absorbed as the right side of a leftmost merge,
		// which this implementation never produces (see triggerMergeLeaf),
		// so there is nothing consistent to link here.
		return
	}
	mergeKey := pf.entries[pos-1].sep
	if t.installRemoveIndex(parent.id, mergeKey) {
		if head := t.mapping.get(curID); head != nil {
			t.retireNode(curID, head)
		}
	}
}
