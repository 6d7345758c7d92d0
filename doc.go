// Package treefs (module github.com/hanwen/go-treefs) implements a
// concurrent, in-memory hierarchical folder tree: an ordered forest
// rooted at "/" whose interior nodes carry no data beyond their name
// and their children.
//
// The public API lives in the tree subpackage. internal/treenode holds
// the per-node synchronization monitor; internal/treepath holds the
// path grammar and the path-algebra helpers the tree package composes
// during traversal. cmd/treefs is a small CLI driver over tree.Tree.
package treefs
