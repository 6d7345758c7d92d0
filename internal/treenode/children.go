package treenode

// Child table access. A node's children map is mutated only while the
// caller holds the node as a writer, and read only while the caller
// holds it as a reader or writer — the monitor above is what makes
// that safe without a second lock around the map itself, the same way
// fs.inodeChildren in go-fuse relies on its tree-wide lock rather than
// a per-map one.

// Get returns the child named name, or nil if there is none.
func (n *Node) Get(name string) *Node {
	return n.children[name]
}

// Insert adds child under name. The caller must be holding n as a
// writer and must have already checked name is free.
func (n *Node) Insert(name string, child *Node) {
	n.children[name] = child
}

// Remove drops name from the child table, if present.
func (n *Node) Remove(name string) {
	delete(n.children, name)
}

// Len returns the number of children.
func (n *Node) Len() int {
	return len(n.children)
}

// Names returns the child names. Go map iteration order is
// randomized per run, which is exactly the "iteration order of the
// underlying map" spec.md's tree_list leaves unspecified.
func (n *Node) Names() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	return names
}

// Range calls f for every child, in map iteration order, stopping
// early if f returns false.
func (n *Node) Range(f func(name string, child *Node) bool) {
	for name, child := range n.children {
		if !f(name, child) {
			return
		}
	}
}
