package replicate

import "sync"

// setupState is the engine-owned idempotency state for one setup.
//
// placed and cancelled grow monotonically for the process lifetime; an
// id enters each set at most once. childOrders maps a master order id
// to the child order ids produced by its placement pass and is only
// consulted when a cancellation fans out.
type setupState struct {
	mu          sync.Mutex
	placed      map[string]struct{}
	cancelled   map[string]struct{}
	childOrders map[string]map[string]string // master id -> child user id -> child order id
}

func newSetupState() *setupState {
	return &setupState{
		placed:      make(map[string]struct{}),
		cancelled:   make(map[string]struct{}),
		childOrders: make(map[string]map[string]string),
	}
}

func (st *setupState) hasPlaced(masterID string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.placed[masterID]
	return ok
}

func (st *setupState) markPlaced(masterID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.placed[masterID] = struct{}{}
}

func (st *setupState) hasCancelled(masterID string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.cancelled[masterID]
	return ok
}

func (st *setupState) markCancelled(masterID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cancelled[masterID] = struct{}{}
}

func (st *setupState) recordChildOrder(masterID, childUserID, childOrderID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	children, ok := st.childOrders[masterID]
	if !ok {
		children = make(map[string]string)
		st.childOrders[masterID] = children
	}
	children[childUserID] = childOrderID
}

// childOrdersFor returns a copy of the recorded child order ids for a
// master order, or nil when its placement never recorded any.
func (st *setupState) childOrdersFor(masterID string) map[string]string {
	st.mu.Lock()
	defer st.mu.Unlock()
	children, ok := st.childOrders[masterID]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(children))
	for uid, oid := range children {
		out[uid] = oid
	}
	return out
}
