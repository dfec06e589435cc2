// pkg/bwtree/node.go
package bwtree

// NodeID is an opaque logical node identifier. It never addresses memory
// directly — every dereference goes through the mapping table (mapping.go).
// zeroNodeID is reserved to mean "no node" (e.g. an absent sibling).
type NodeID uint64

const zeroNodeID NodeID = 0

// kind tags every chain record, base or delta. A single struct carries the
// union of every kind's payload: a discriminated record with an inline
// payload outperforms a virtual-dispatch hierarchy for a structure that is
// frequently allocated and inspected in tight loops.
type kind uint8

const (
	kindLeafBase kind = iota
	kindInternalBase
	kindInsert
	kindDelete
	kindUpdate
	kindSplit
	kindSplitIndex
	kindRemove
	kindMerge
	kindRemoveIndex
)

func (k kind) String() string {
	switch k {
	case kindLeafBase:
		return "LeafBase"
	case kindInternalBase:
		return "InternalBase"
	case kindInsert:
		return "Insert"
	case kindDelete:
		return "Delete"
	case kindUpdate:
		return "Update"
	case kindSplit:
		return "Split"
	case kindSplitIndex:
		return "SplitIndex"
	case kindRemove:
		return "Remove"
	case kindMerge:
		return "Merge"
	case kindRemoveIndex:
		return "RemoveIndex"
	default:
		return "Unknown"
	}
}

// bound represents one side of a node's half-open key range [low, high).
// A zero-value bound with neg/pos set represents an unbounded side.
type bound[K any] struct {
	key K
	neg bool // low == -infinity
	pos bool // high == +infinity
}

func negInfBound[K any]() bound[K] { return bound[K]{neg: true} }
func posInfBound[K any]() bound[K] { return bound[K]{pos: true} }
func finiteBound[K any](k K) bound[K] { return bound[K]{key: k} }

// leafEntry is one (key, value) pair stored in a leaf base node.
type leafEntry[K, V any] struct {
	key   K
	value V
}

// childEntry is one (separator, child) pair in an internal base node.
// The child owns the half-open range [previous separator, this separator).
type childEntry[K any] struct {
	sep   K
	child NodeID
}

// record is both a base node and a delta record. isBase() distinguishes the
// two; delta records additionally chain via next to the record they extend.
//
// Only the fields relevant to a record's kind are populated; the rest sit
// at their zero value. This wastes some memory per allocation in exchange
// for avoiding a virtual-dispatch hierarchy for a structure built and torn
// down constantly on the hot path.
type record[K, V any] struct {
	kind kind
	next *record[K, V] // nil at the base
	// chainLen is the number of records from this one down to (and
	// including) the base. A base record has chainLen == 1.
	chainLen int

	isLeaf bool // which algebra (leaf vs internal) this chain belongs to

	// --- base payload ---
	leafEntries  []leafEntry[K, V]  // leaf base only, sorted by key
	leftmost     NodeID             // internal base only
	childEntries []childEntry[K]    // internal base only, sorted by sep
	low, high    bound[K]
	sibling      NodeID

	// --- delta payload (fields are reused across kinds) ---
	key          K // Insert/Delete/Update: the key
	value        V // Insert/Delete/Update: the value
	splitKey     K // Split/SplitIndex: the separator introduced by a split
	siblingID    NodeID         // Split: the new right sibling created by the split
	newChildID   NodeID         // SplitIndex: the new right child's id
	mergeKey     K              // Merge/RemoveIndex: the separator being retracted
	foreignChain *record[K, V] // Merge: snapshot of the removed node's chain
	deletedKey   K             // RemoveIndex: same as mergeKey, kept for clarity at call sites
}

func newLeafBase[K, V any](entries []leafEntry[K, V], low, high bound[K], sibling NodeID) *record[K, V] {
	return &record[K, V]{
		kind:        kindLeafBase,
		isLeaf:      true,
		leafEntries: entries,
		low:         low,
		high:        high,
		sibling:     sibling,
		chainLen:    1,
	}
}

func newInternalBase[K any, V any](leftmost NodeID, entries []childEntry[K], low, high bound[K], sibling NodeID) *record[K, V] {
	return &record[K, V]{
		kind:         kindInternalBase,
		isLeaf:       false,
		leftmost:     leftmost,
		childEntries: entries,
		low:          low,
		high:         high,
		sibling:      sibling,
		chainLen:     1,
	}
}

// prepend builds a new delta of the given kind pointing at head, with the
// chain length incremented. Kind-specific fields are set by the caller.
func prepend[K, V any](head *record[K, V], k kind) *record[K, V] {
	return &record[K, V]{
		kind:     k,
		next:     head,
		isLeaf:   head.isLeaf,
		chainLen: head.chainLen + 1,
	}
}

func (r *record[K, V]) isBase() bool {
	return r.kind == kindLeafBase || r.kind == kindInternalBase
}

// effectiveRange walks down from head and returns the node's current
// [low, high) range, applying the nearest (topmost) Split delta found,
// since a Split narrows the node's high bound before any base rebuild
// makes that permanent. Split never changes a node's low bound, only
// (and always shrinks) its high bound.
func effectiveRange[K, V any](head *record[K, V]) (low, high bound[K]) {
	var narrowed bool
	var splitKey K
	for cur := head; ; cur = cur.next {
		if cur.kind == kindSplit && !narrowed {
			splitKey = cur.splitKey
			narrowed = true
		}
		if cur.isBase() {
			low = cur.low
			if narrowed {
				high = finiteBound(splitKey)
			} else {
				high = cur.high
			}
			return low, high
		}
	}
}

// pendingSplit reports the nearest (topmost) Split delta in the chain, if
// any, together with whether the chain already carries a matching
// SplitIndex-completing record is NOT tracked here — that is a parent-side
// concern handled in smo.go.
func pendingSplit[K, V any](head *record[K, V]) (splitKey K, sibling NodeID, ok bool) {
	for cur := head; ; cur = cur.next {
		if cur.kind == kindSplit {
			return cur.splitKey, cur.siblingID, true
		}
		if cur.isBase() {
			var zero K
			return zero, zeroNodeID, false
		}
	}
}

// headRemoved reports whether the chain head is a Remove delta (the node
// is retired and must be assisted rather than read).
func headRemoved[K, V any](head *record[K, V]) bool {
	return head.kind == kindRemove
}

// chainBase walks down from head to the base record terminating the
// chain. The base is always reachable and safe to read through any head
// seen under an active epoch guard, even a Remove head: retirement only
// ever unlinks a chain from the mapping table, it never mutates a chain
// a reader might still be walking.
func chainBase[K, V any](head *record[K, V]) *record[K, V] {
	cur := head
	for !cur.isBase() {
		cur = cur.next
	}
	return cur
}
