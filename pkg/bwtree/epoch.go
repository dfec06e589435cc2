// pkg/bwtree/epoch.go
package bwtree

import (
	"sync"
	"sync/atomic"
)

// epochManager provides epoch-based safe memory reclamation (component G).
// Readers "enter" an epoch before walking any chain and "leave" when done;
// writers advance the global epoch after retiring a chain; a retired chain
// is only freed once no reader that could have observed it remains active.
//
// Grounded on pkg/cowbtree's EpochManager, generalized from *CowNode to
// *record[K, V] and extended with retireChain, which walks an entire
// superseded delta chain (not just its head) into the garbage list exactly
// once: a chain is owned by the mapping-table slot it was installed under,
// so retirement enqueues the old head and walks it down to its base a
// single time, rather than relying on each record's destructor to chase
// its own next pointer into memory another thread might still be reading.
type epochManager[K, V any] struct {
	globalEpoch atomic.Uint64

	readers sync.Map // readerID -> *readerState

	retiredMu sync.Mutex
	retired   map[uint64][]*record[K, V]

	nextReaderID atomic.Uint64
}

type readerState struct {
	epoch  uint64
	active atomic.Bool
}

// readerGuard represents one reader's active epoch membership. Every
// public operation holds exactly one guard for its duration: enter on
// entry, leave on return.
type readerGuard[K, V any] struct {
	mgr      *epochManager[K, V]
	state    *readerState
	readerID uint64
}

func newEpochManager[K, V any]() *epochManager[K, V] {
	e := &epochManager[K, V]{
		retired: make(map[uint64][]*record[K, V]),
	}
	e.globalEpoch.Store(1) // epoch 0 means "unset"
	return e
}

func (e *epochManager[K, V]) enter() *readerGuard[K, V] {
	readerID := e.nextReaderID.Add(1)
	state := &readerState{epoch: e.globalEpoch.Load()}
	state.active.Store(true)
	e.readers.Store(readerID, state)

	return &readerGuard[K, V]{mgr: e, state: state, readerID: readerID}
}

func (g *readerGuard[K, V]) leave() {
	if g == nil || g.state == nil {
		return
	}
	g.state.active.Store(false)
	g.mgr.readers.Delete(g.readerID)
}

// advance increments the global epoch, called by writers after a chain-head
// CAS makes a new state visible.
func (e *epochManager[K, V]) advance() uint64 {
	return e.globalEpoch.Add(1)
}

// retireChain walks an entire superseded chain (every delta down to, and
// including, its base) and enqueues each record into the current epoch's
// garbage list. Walking the whole chain once here, at retirement time,
// avoids a recursive destructor that might otherwise chase a `next`
// pointer into memory another thread is still using.
func (e *epochManager[K, V]) retireChain(head *record[K, V]) {
	if head == nil {
		return
	}
	epoch := e.globalEpoch.Load()

	e.retiredMu.Lock()
	defer e.retiredMu.Unlock()
	for cur := head; cur != nil; {
		next := cur.next
		e.retired[epoch] = append(e.retired[epoch], cur)
		if cur.isBase() {
			break
		}
		cur = next
	}
}

// tryReclaim frees (drops the last reference to) every chain retired
// before the oldest epoch any reader is still active in. Returns the
// number of records reclaimed.
func (e *epochManager[K, V]) tryReclaim() int {
	minEpoch := e.minActiveEpoch()

	e.retiredMu.Lock()
	defer e.retiredMu.Unlock()

	reclaimed := 0
	for epoch, recs := range e.retired {
		if epoch < minEpoch {
			reclaimed += len(recs)
			delete(e.retired, epoch)
		}
	}
	return reclaimed
}

func (e *epochManager[K, V]) minActiveEpoch() uint64 {
	minEpoch := e.globalEpoch.Load()
	e.readers.Range(func(_, value any) bool {
		st := value.(*readerState)
		if st.active.Load() && st.epoch < minEpoch {
			minEpoch = st.epoch
		}
		return true
	})
	return minEpoch
}

func (e *epochManager[K, V]) activeReaderCount() int {
	count := 0
	e.readers.Range(func(_, value any) bool {
		if value.(*readerState).active.Load() {
			count++
		}
		return true
	})
	return count
}

func (e *epochManager[K, V]) pendingCount() int {
	e.retiredMu.Lock()
	defer e.retiredMu.Unlock()
	n := 0
	for _, recs := range e.retired {
		n += len(recs)
	}
	return n
}
