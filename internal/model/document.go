package model

import (
	"errors"
	"fmt"
)

// RootName is the descriptive name of every document's root container.
const RootName = "Program"

var (
	ErrSelfEdge     = errors.New("node cannot depend on itself")
	ErrNotSibling   = errors.New("dependencies only link siblings")
	ErrBackwardEdge = errors.New("dependency target must precede its source")
)

// Document is the arena holding one program's node tree together with the
// dependency overlay between siblings. Nodes are never deleted; restructuring
// moves handles between parents.
type Document struct {
	nodes []*Node
	root  NodeID
}

// NewDocument creates a document holding only its root container.
func NewDocument() *Document {
	d := &Document{}
	d.root = d.NewContainer(RootName)
	return d
}

// Root returns the handle of the root container.
func (d *Document) Root() NodeID { return d.root }

// Len returns the number of nodes ever created.
func (d *Document) Len() int { return len(d.nodes) }

// Node returns the node for id, or nil for an invalid handle.
func (d *Document) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(d.nodes) {
		return nil
	}
	return d.nodes[id]
}

func (d *Document) alloc(kind Kind) *Node {
	n := &Node{
		ID:     NodeID(len(d.nodes)),
		Kind:   kind,
		Seq:    len(d.nodes),
		Parent: NoNode,
		Bounds: EmptyBounds(),
	}
	d.nodes = append(d.nodes, n)
	return n
}

// NewRaw creates a detached raw node holding one text line.
func (d *Document) NewRaw(text string) NodeID {
	n := d.alloc(KindRaw)
	n.RawText = text
	return n.ID
}

// NewContainer creates a detached container with the given descriptive name.
func (d *Document) NewContainer(name string) NodeID {
	n := d.alloc(KindContainer)
	n.Name = name
	return n.ID
}

// Append attaches child as the last child of parent.
func (d *Document) Append(parent, child NodeID) {
	p := d.nodes[parent]
	p.Children = append(p.Children, child)
	c := d.nodes[child]
	c.Parent = parent
	c.Index = len(p.Children) - 1
}

// AppendRaw creates a raw node and attaches it to parent.
func (d *Document) AppendRaw(parent NodeID, text string) NodeID {
	id := d.NewRaw(text)
	d.Append(parent, id)
	return id
}

// Replace moves the children of parent at indices [from, to] into container
// and puts container at index from. The new child list is built first and
// swapped in, so callers scanning by index see a consistent slice.
func (d *Document) Replace(parent NodeID, from, to int, container NodeID) error {
	p := d.nodes[parent]
	if from < 0 || to >= len(p.Children) || from > to {
		return fmt.Errorf("invalid child range [%d,%d] for %d children", from, to, len(p.Children))
	}
	c := d.nodes[container]

	moved := make([]NodeID, 0, to-from+1)
	moved = append(moved, p.Children[from:to+1]...)

	next := make([]NodeID, 0, len(p.Children)-len(moved)+1)
	next = append(next, p.Children[:from]...)
	next = append(next, container)
	next = append(next, p.Children[to+1:]...)

	c.Children = append(c.Children, moved...)
	for i, id := range c.Children {
		d.nodes[id].Parent = container
		d.nodes[id].Index = i
	}
	c.Parent = parent
	p.Children = next
	for i, id := range next {
		d.nodes[id].Index = i
	}
	return nil
}

// DependOn records that a must be emitted after b. Both must be siblings and
// b must come before a in the parent's child order, which keeps the graph
// acyclic. Duplicate edges are ignored.
func (d *Document) DependOn(a, b NodeID) error {
	if a == b {
		return ErrSelfEdge
	}
	na, nb := d.nodes[a], d.nodes[b]
	if na.Parent == NoNode || na.Parent != nb.Parent {
		return fmt.Errorf("%w: %d and %d", ErrNotSibling, a, b)
	}
	if nb.Index >= na.Index {
		return fmt.Errorf("%w: %d -> %d", ErrBackwardEdge, a, b)
	}
	for _, existing := range na.DependsOn {
		if existing == b {
			return nil
		}
	}
	na.DependsOn = append(na.DependsOn, b)
	nb.Dependents = append(nb.Dependents, a)
	if !nb.Emitted {
		na.Pending++
	}
	return nil
}

// MarkEmitted flags id as emitted and releases one pending dependency on
// each of its dependents.
func (d *Document) MarkEmitted(id NodeID) {
	n := d.nodes[id]
	if n.Emitted {
		return
	}
	n.Emitted = true
	for _, dep := range n.Dependents {
		d.nodes[dep].Pending--
	}
}

// Walk visits id and its descendants in document order (pre-order).
// Returning false from fn skips the node's children.
func (d *Document) Walk(id NodeID, fn func(n *Node) bool) {
	n := d.nodes[id]
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		d.Walk(c, fn)
	}
}

// Movements returns all movement descendants of id in document order.
func (d *Document) Movements(id NodeID) []*Node {
	var moves []*Node
	d.Walk(id, func(n *Node) bool {
		if n.IsMovement() {
			moves = append(moves, n)
		}
		return true
	})
	return moves
}

// Motions returns the movements and raw lines with a known target below id,
// in document order.
func (d *Document) Motions(id NodeID) []*Node {
	var moves []*Node
	d.Walk(id, func(n *Node) bool {
		if n.MovesTool() {
			moves = append(moves, n)
		}
		return true
	})
	return moves
}

// FirstMovement returns the first movement in the subtree rooted at id,
// or nil when there is none.
func (d *Document) FirstMovement(id NodeID) *Node {
	var first *Node
	d.Walk(id, func(n *Node) bool {
		if first != nil {
			return false
		}
		if n.IsMovement() {
			first = n
			return false
		}
		return true
	})
	return first
}

// EdgeCount returns the number of dependency edges in the document.
func (d *Document) EdgeCount() int {
	total := 0
	for _, n := range d.nodes {
		total += len(n.DependsOn)
	}
	return total
}

// Label returns a short human-readable description of a node for
// diagnostics.
func (d *Document) Label(id NodeID) string {
	n := d.Node(id)
	if n == nil {
		return fmt.Sprintf("#%d (invalid)", id)
	}
	switch n.Kind {
	case KindContainer:
		return fmt.Sprintf("#%d %q", n.Seq, n.Name)
	default:
		return fmt.Sprintf("#%d %s %q", n.Seq, n.Kind, n.RawText)
	}
}
