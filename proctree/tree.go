package proctree

import (
	"github.com/7c/goproc/proc"
)

// Node is one process in the forest. Children are ordered the way the
// enumeration pass produced them; Parent is a non-owning back-link and
// nil for roots.
type Node struct {
	Process  *proc.Process
	Parent   *Node
	Children []*Node
}

// PID is a shorthand for the pid of the node's process.
func (n *Node) PID() int { return n.Process.PID() }

// Tree is an immutable snapshot of the process hierarchy, built from one
// enumeration pass. It does not follow the live process table; build a
// new one when a fresh view is needed.
type Tree struct {
	roots []*Node
	nodes map[int]*Node
}

// Build folds a slice of handles into a forest. Pass one maps pid to
// node, pass two links each node to its parent in input order; nodes
// whose parent is not in the input (the parent exited, or pid 1 itself)
// become roots. An empty input yields a valid empty tree.
func Build(procs []*proc.Process) *Tree {
	t := &Tree{nodes: make(map[int]*Node, len(procs))}
	for _, p := range procs {
		t.nodes[p.PID()] = &Node{Process: p}
	}
	for _, p := range procs {
		node := t.nodes[p.PID()]
		if node.Process != p {
			continue // duplicate pid in input; the later handle won pass one
		}
		if parent, ok := t.nodes[p.PPID()]; ok && parent != node {
			node.Parent = parent
			parent.Children = append(parent.Children, node)
		} else {
			t.roots = append(t.roots, node)
		}
	}
	return t
}

// BuildFrom runs one enumeration pass on e and builds the forest.
func BuildFrom(e *proc.Enumerator) (*Tree, error) {
	procs, err := e.Enumerate()
	if err != nil {
		return nil, err
	}
	return Build(procs), nil
}

// Roots returns the parentless nodes, conceptually pid 1 plus orphans.
func (t *Tree) Roots() []*Node { return t.roots }

// Len returns the number of nodes in the forest.
func (t *Tree) Len() int { return len(t.nodes) }

// Find returns the node for pid, or nil. Non-recursive looks at roots
// only; recursive searches the whole forest.
func (t *Tree) Find(pid int, recursive bool) *Node {
	if recursive {
		return t.nodes[pid]
	}
	for _, r := range t.roots {
		if r.PID() == pid {
			return r
		}
	}
	return nil
}

// Walk visits every node depth-first in root order. Returning false
// from visit stops the walk.
func (t *Tree) Walk(visit func(*Node) bool) {
	for _, r := range t.roots {
		if !r.walk(visit) {
			return
		}
	}
}

// Find searches the node's descendants for pid, direct children first.
// The node itself is not a candidate.
func (n *Node) Find(pid int, recursive bool) *Node {
	for _, c := range n.Children {
		if c.PID() == pid {
			return c
		}
	}
	if recursive {
		for _, c := range n.Children {
			if found := c.Find(pid, recursive); found != nil {
				return found
			}
		}
	}
	return nil
}

// Grandchildren flattens the children's children. It is derived from the
// current child lists on every call, never cached.
func (n *Node) Grandchildren() []*Node {
	var grandchildren []*Node
	for _, c := range n.Children {
		grandchildren = append(grandchildren, c.Children...)
	}
	return grandchildren
}

// Descendants returns every node below this one, depth-first.
func (n *Node) Descendants() []*Node {
	var out []*Node
	for _, c := range n.Children {
		out = append(out, c)
		out = append(out, c.Descendants()...)
	}
	return out
}

// Walk visits the node and its descendants depth-first. Returning false
// from visit stops the walk.
func (n *Node) Walk(visit func(*Node) bool) {
	n.walk(visit)
}

func (n *Node) walk(visit func(*Node) bool) bool {
	if !visit(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.walk(visit) {
			return false
		}
	}
	return true
}
