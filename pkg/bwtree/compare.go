// pkg/bwtree/compare.go
package bwtree

// CompareFunc orders two keys: negative if a < b, zero if equal, positive
// if a > b. Callers must never supply a comparator with hidden mutable
// state shared across trees.
type CompareFunc[K any] func(a, b K) int

// KeyEqFunc reports whether two keys are equal. For most callers this is
// simply `cmp(a, b) == 0`, but it is supplied independently so a caller can
// use a cheaper equality check than a full order comparison.
type KeyEqFunc[K any] func(a, b K) bool

// ValueEqFunc reports whether two values are equal, used to disambiguate
// which of several values bound to the same key a Delete should remove.
type ValueEqFunc[V any] func(a, b V) bool

// lowerBound returns the index of the first entry whose key is >= key.
func lowerBoundLeaf[K, V any](entries []leafEntry[K, V], key K, cmp CompareFunc[K]) int {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(entries[mid].key, key) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// upperBound returns the index of the first entry whose key is > key.
func upperBoundLeaf[K, V any](entries []leafEntry[K, V], key K, cmp CompareFunc[K]) int {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(entries[mid].key, key) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// childIndex finds which child covers key in an internal node's entries,
// given its leftmost child. Separator equality at a boundary goes to the
// right child: ranges are half-open [low, high).
func childIndex[K any](entries []childEntry[K], key K, cmp CompareFunc[K]) int {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if cmp(entries[mid].sep, key) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo // 0 means leftmost child; i>0 means entries[i-1].child
}

// childAt resolves an index produced by childIndex to an actual NodeID.
func childAt[K any](leftmost NodeID, entries []childEntry[K], idx int) NodeID {
	if idx == 0 {
		return leftmost
	}
	return entries[idx-1].child
}

func inRange[K any](low, high bound[K], key K, cmp CompareFunc[K]) bool {
	if !low.neg && cmp(key, low.key) < 0 {
		return false
	}
	if !high.pos && cmp(key, high.key) >= 0 {
		return false
	}
	return true
}
