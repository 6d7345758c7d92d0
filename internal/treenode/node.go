// Package treenode implements the per-node synchronization monitor
// that the tree package composes across a traversal. Each Node
// arbitrates four roles — reader, writer, cleaner, and the one-shot
// "to delete" marker — on its own mutex and three condition
// variables, using a ticketed hand-off: whichever call releases the
// node chooses the next admitted class and wakes exactly one waiter
// of that class, which enters without re-checking starvation
// conditions. See SPEC_FULL.md §1 for the full contract.
package treenode

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// change values: the ticket naming which waiter class may proceed next.
const (
	noChange     = -1
	admitWriter  = 0
	admitReader  = 1
	admitCleaner = 2
)

// Node is a single folder in the tree: a synchronization monitor plus
// a child table keyed by name (a Go map, so it has no fixed iteration
// order). The zero Node is not usable; build one with New.
type Node struct {
	mu          sync.Mutex
	readersCond *sync.Cond
	writersCond *sync.Cond
	cleanerCond *sync.Cond

	rcount, wcount       int
	rwait, wwait, cwait  int
	rToLetIn             int
	change               int
	toDelete             bool

	children map[string]*Node

	freed  bool
	onFree func(*Node) // test instrumentation, optional
}

// New returns a fresh, empty Node ready for use as a folder.
func New() *Node {
	n := &Node{
		rToLetIn: -1,
		change:   noChange,
		children: make(map[string]*Node),
	}
	n.readersCond = sync.NewCond(&n.mu)
	n.writersCond = sync.NewCond(&n.mu)
	n.cleanerCond = sync.NewCond(&n.mu)
	return n
}

// SetOnFree registers a callback invoked exactly once, when this node
// is actually reclaimed (the last reader leaving after to-delete was
// set, or recursive teardown). It exists for tests that assert the
// "freed exactly once" invariant (spec.md §8); production callers
// never need it.
func (n *Node) SetOnFree(f func(*Node)) {
	n.mu.Lock()
	n.onFree = f
	n.mu.Unlock()
}

// StartReading blocks until the caller may read this node's children,
// then admits it. Writers have priority: a reader may not sneak in
// while any writer is active or waiting, unless it was explicitly
// handed the ticket (change == admitReader) by the previous occupant.
func (n *Node) StartReading() {
	n.mu.Lock()
	for n.wcount+n.wwait > 0 && n.change != admitReader {
		n.rwait++
		n.readersCond.Wait()
		n.rwait--
	}

	n.rcount++

	// Extend the reader cascade: let in every reader that was already
	// waiting when this batch started, but no more, so a steady stream
	// of new arrivals can never starve a waiting writer.
	if n.rwait > 0 && n.rToLetIn != 0 {
		if n.rToLetIn == -1 {
			n.rToLetIn = n.rwait
		}
		n.rToLetIn--
		n.change = admitReader
		n.readersCond.Signal()
	} else {
		n.change = noChange
	}
	n.mu.Unlock()
}

// FinishReading releases a reading session started with StartReading.
// The last reader out picks the next admitted class, or — if this
// node was marked to-delete — reclaims it.
func (n *Node) FinishReading() {
	n.mu.Lock()
	n.rcount--
	if n.rcount > 0 {
		n.mu.Unlock()
		return
	}

	n.rToLetIn = -1

	if n.toDelete {
		if n.rwait > 0 {
			// Defensive: spec.md §3 makes this unreachable, since the
			// name is unlinked from the parent before to_delete is set,
			// so no new reader can arrive afterward. Handle it anyway
			// rather than silently dropping a waiter.
			n.change = admitReader
			n.readersCond.Signal()
			n.mu.Unlock()
			return
		}
		n.mu.Unlock()
		n.Destroy()
		return
	}

	switch {
	case n.wwait > 0:
		n.change = admitWriter
		n.writersCond.Signal()
	case n.rwait > 0:
		n.change = admitReader
		n.readersCond.Signal()
	case n.cwait > 0:
		n.change = admitCleaner
		n.cleanerCond.Signal()
	}
	n.mu.Unlock()
}

// StartWriting blocks until the caller may exclusively mutate this
// node's children, then admits it.
func (n *Node) StartWriting() {
	n.mu.Lock()
	for n.wcount+n.rcount+n.rwait > 0 && n.change != admitWriter {
		n.wwait++
		n.writersCond.Wait()
		n.wwait--
	}
	n.change = noChange
	n.wcount++
	n.mu.Unlock()
}

// FinishWriting releases a writing session started with StartWriting.
// Writers always hand off to readers first, so a batch of readers
// gets re-enabled for the next round instead of being starved by
// back-to-back writers.
func (n *Node) FinishWriting() {
	n.mu.Lock()
	n.wcount--
	switch {
	case n.rwait > 0:
		n.change = admitReader
		n.readersCond.Signal()
	case n.wwait > 0:
		n.change = admitWriter
		n.writersCond.Signal()
	case n.cwait > 0:
		n.change = admitCleaner
		n.cleanerCond.Signal()
	}
	n.mu.Unlock()
}

// StartCleaning blocks until every reader and writer — active or
// waiting — has left this node, then returns with the node quiesced.
// There is no matching FinishCleaning: the cleaner's exclusion is a
// one-shot barrier used by move to drain a subtree before it is
// reattached under a new parent (see tree.Move).
func (n *Node) StartCleaning() {
	n.mu.Lock()
	for n.wcount+n.wwait+n.rcount+n.rwait > 0 && n.change != admitCleaner {
		n.cwait++
		if n.cwait > 1 {
			n.mu.Unlock()
			fatal("node: a second cleaner arrived while one was already waiting")
		}
		n.cleanerCond.Wait()
		n.cwait--
	}
	n.change = noChange
	n.mu.Unlock()
}

// SetToDelete marks the node to be reclaimed once its last reader
// leaves. Callers must have already unlinked the node from its parent
// and must be holding it as a reader (see tree.Remove); once set, no
// new traversal can reach the node, so this is set-once in practice.
func (n *Node) SetToDelete() {
	n.mu.Lock()
	n.toDelete = true
	n.mu.Unlock()
}

// WaitingWriters reports the number of writers currently blocked on
// this node. tree.Remove uses it, alongside the child count, to
// decide whether the node is really empty: a writer already admitted
// by reach_node toward a grandchild must not have its parent vanish
// underneath it.
func (n *Node) WaitingWriters() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.wwait
}

// Destroy reclaims the node. It is called automatically by the last
// reader of a to-delete node (see FinishReading); the tree package
// also calls it directly, once per node, while recursively tearing
// down a Tree that no other goroutine can still be observing.
func (n *Node) Destroy() {
	n.mu.Lock()
	if n.freed {
		n.mu.Unlock()
		fatal("node: reclaimed twice")
	}
	n.freed = true
	hook := n.onFree
	n.mu.Unlock()

	if hook != nil {
		hook(n)
	}
}

// fatal mirrors spec.md §4.1's "failure semantics": synchronization
// primitives are assumed infallible, and only a monitor invariant
// violation — which the tree layer is supposed to make impossible —
// ever reaches here. There is no user-visible error path for it.
func fatal(format string, args ...interface{}) {
	logrus.Fatalf(format, args...)
}
