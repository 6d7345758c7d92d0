// Package tree implements the four public folder-tree operations —
// List, Create, Remove, Move — on top of the per-node monitor in
// internal/treenode and the path helpers in internal/treepath. See
// SPEC_FULL.md §1 for the design this package composes.
package tree

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hanwen/go-treefs/internal/treenode"
	"github.com/hanwen/go-treefs/internal/treepath"
)

// accessMode selects how reachNode/reachNodeFrom leave the target node
// held: as a reader or as a writer.
type accessMode int

const (
	asReader accessMode = iota
	asWriter
)

// Tree is a concurrent, in-memory folder hierarchy rooted at "/". The
// zero value is not usable; create one with New. A *Tree is safe for
// concurrent use by multiple goroutines.
type Tree struct {
	root *treenode.Node

	// Log receives one structured entry per completed mutating
	// operation. It defaults to logrus.StandardLogger() and may be
	// swapped by callers that want the tree's activity folded into
	// their own logging pipeline (see cmd/treefs).
	Log logrus.FieldLogger

	// teardownOnce guards Close against being run more than once, so
	// that the root and every live descendant is reclaimed exactly
	// once, matching the per-node destroy-once invariant.
	teardownOnce sync.Once
}

// New returns an empty Tree containing only the root folder "/".
func New() *Tree {
	return &Tree{
		root: treenode.New(),
		Log:  logrus.StandardLogger(),
	}
}

// Close recursively reclaims every node in the tree. It must only be
// called once no other goroutine can still be operating on the tree
// (spec.md §5: "Node memory is freed exactly once... by
// node_recursive_free at tree teardown").
func (t *Tree) Close() {
	t.teardownOnce.Do(func() {
		destroyRecursive(t.root)
	})
}

func destroyRecursive(n *treenode.Node) {
	n.Range(func(_ string, child *treenode.Node) bool {
		destroyRecursive(child)
		return true
	})
	n.Destroy()
}

// reachNode walks monitors hand-over-hand from the root to path,
// leaving the target held in mode and releasing every intermediate
// node along the way. It returns nil if any prefix of path does not
// exist, having already released everything it acquired.
//
// Acquisition rule: the root is taken as a writer iff mode == asWriter
// and path == "/", otherwise as a reader; every intermediate node on
// the way down is taken as a reader, and the final segment is taken
// directly in mode.
func reachNode(root *treenode.Node, path string, mode accessMode) *treenode.Node {
	current := root
	if mode == asWriter && path == treepath.Root {
		current.StartWriting()
	} else {
		current.StartReading()
	}

	subpath := path
	for {
		name, rest, ok := treepath.Split(subpath)
		if !ok {
			break
		}
		next := current.Get(name)
		if next == nil {
			current.FinishReading()
			return nil
		}

		if mode == asWriter && rest == treepath.Root {
			next.StartWriting()
		} else {
			next.StartReading()
		}

		// Hand-over-hand: release the parent only after the child is
		// held, so a concurrent remove of an ancestor can never leave
		// us holding a dangling node.
		current.FinishReading()
		current = next
		subpath = rest
	}
	return current
}

// reachNodeFrom is reachNode's counterpart for a node already held by
// the caller in write mode — the LCA case in Move. start is never
// released; on failure every node acquired past start is released and
// nil is returned, with start still held.
func reachNodeFrom(start *treenode.Node, relativePath string, mode accessMode) *treenode.Node {
	current := start
	subpath := relativePath
	for {
		name, rest, ok := treepath.Split(subpath)
		if !ok {
			break
		}
		next := current.Get(name)
		if next == nil {
			if current != start {
				current.FinishReading()
			}
			return nil
		}

		if mode == asWriter && rest == treepath.Root {
			next.StartWriting()
		} else {
			next.StartReading()
		}

		if current != start {
			current.FinishReading()
		}
		current = next
		subpath = rest
	}
	return current
}

// finishNode releases node, which was left held in mode by reachNode
// or reachNodeFrom.
func finishNode(node *treenode.Node, mode accessMode) {
	if mode == asWriter {
		node.FinishWriting()
	} else {
		node.FinishReading()
	}
}

// List returns the names of path's children, joined with ",", in the
// iteration order of the underlying child map (unspecified beyond
// "some order" — see spec.md §6). It returns ErrInvalidPath or
// ErrNotFound as appropriate.
func (t *Tree) List(path string) (string, error) {
	if !treepath.Valid(path) {
		return "", ErrInvalidPath
	}

	node := reachNode(t.root, path, asReader)
	if node == nil {
		return "", ErrNotFound
	}
	names := node.Names()
	node.FinishReading()

	return strings.Join(names, ","), nil
}

// Create makes an empty folder at path, which must not already exist.
// Creation is not recursive: every prefix of path but the last
// segment must already exist.
func (t *Tree) Create(path string) error {
	if !treepath.Valid(path) {
		return ErrInvalidPath
	}
	if path == treepath.Root {
		return ErrExists
	}

	parentPath, leaf := treepath.ToParent(path)
	parent := reachNode(t.root, parentPath, asWriter)
	if parent == nil {
		return ErrNotFound
	}

	if parent.Get(leaf) != nil {
		finishNode(parent, asWriter)
		return ErrExists
	}

	parent.Insert(leaf, treenode.New())
	finishNode(parent, asWriter)

	t.Log.WithField("path", path).Debug("tree: created folder")
	return nil
}

// Remove deletes the empty folder at path. Removal is not recursive:
// a folder with children, or with a writer currently waiting to
// create one, returns ErrNotEmpty.
func (t *Tree) Remove(path string) error {
	if !treepath.Valid(path) {
		return ErrInvalidPath
	}
	if path == treepath.Root {
		return ErrBusy
	}

	parentPath, leaf := treepath.ToParent(path)
	parent := reachNode(t.root, parentPath, asWriter)
	if parent == nil {
		return ErrNotFound
	}

	child := parent.Get(leaf)
	if child == nil {
		finishNode(parent, asWriter)
		return ErrNotFound
	}

	// Take the child as a reader: this is the critical step. It
	// guarantees any writer that was already admitted toward one of
	// child's own children (a concurrent Create underneath it) has
	// finished, so the child count we observe next is final.
	child.StartReading()
	if child.Len()+child.WaitingWriters() > 0 {
		child.FinishReading()
		finishNode(parent, asWriter)
		return ErrNotEmpty
	}

	parent.Remove(leaf)
	child.SetToDelete()
	child.FinishReading()
	finishNode(parent, asWriter)

	t.Log.WithField("path", path).Debug("tree: removed folder")
	return nil
}

// Move relocates the subtree at source to target, which must not
// already exist (except for the idempotent Move(p, p) case, which
// succeeds without changing anything). Both paths are re-validated,
// and moving a folder into its own subtree is rejected.
func (t *Tree) Move(source, target string) error {
	if !treepath.Valid(source) || !treepath.Valid(target) {
		return ErrInvalidPath
	}
	if source == treepath.Root {
		return ErrBusy
	}
	if target == treepath.Root {
		return ErrExists
	}
	if treepath.HasStrictPrefix(target, source) {
		return ErrMoveIntoOwnSubtree
	}

	sourceParentPath, sourceLeaf := treepath.ToParent(source)
	targetParentPath, targetLeaf := treepath.ToParent(target)
	lcaPath := treepath.LCA(sourceParentPath, targetParentPath)

	lca := reachNode(t.root, lcaPath, asWriter)
	if lca == nil {
		return ErrNotFound
	}

	sourceParent := reachNodeFrom(lca, treepath.Relative(sourceParentPath, lcaPath), asWriter)
	if sourceParent == nil {
		finishNode(lca, asWriter)
		return ErrNotFound
	}

	targetParent := reachNodeFrom(lca, treepath.Relative(targetParentPath, lcaPath), asWriter)
	if targetParent == nil {
		finishNode(lca, asWriter)
		if sourceParent != lca {
			finishNode(sourceParent, asWriter)
		}
		return ErrNotFound
	}

	release := func() {
		if targetParent != lca && targetParent != sourceParent {
			finishNode(targetParent, asWriter)
		}
		if sourceParent != lca {
			finishNode(sourceParent, asWriter)
		}
		finishNode(lca, asWriter)
	}

	src := sourceParent.Get(sourceLeaf)
	if src == nil {
		release()
		return ErrNotFound
	}

	if targetParent.Get(targetLeaf) != nil {
		release()
		if source == target {
			return nil
		}
		return ErrExists
	}

	// Quiescence barrier: force every operation anywhere in src's
	// subtree to drain before the edge is switched, so no in-flight
	// List racing the move can observe src under both the old and the
	// new parent at once.
	finishOperationsInSubtree(src)

	// Insert before remove, so the subtree is never transiently
	// unreachable from both names at once.
	targetParent.Insert(targetLeaf, src)
	sourceParent.Remove(sourceLeaf)

	release()

	t.Log.WithFields(logrus.Fields{"source": source, "target": target}).Debug("tree: moved folder")
	return nil
}

// finishOperationsInSubtree runs StartCleaning over node and every
// descendant, pre-order, so that on return no operation is active or
// waiting anywhere in the subtree. No matching FinishCleaning exists:
// the cleaner's exclusion is conveyed structurally, because the
// subtree is reattached under a fresh parent and future traversals
// only ever reach it through the new edge.
func finishOperationsInSubtree(node *treenode.Node) {
	node.StartCleaning()
	node.Range(func(_ string, child *treenode.Node) bool {
		finishOperationsInSubtree(child)
		return true
	})
}
