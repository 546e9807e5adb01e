package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/piwi3910/PathOrder/internal/model"
)

// ErrOutOfOrder is returned when a node below the top level is reached
// before one of its dependencies has been emitted.
var ErrOutOfOrder = errors.New("node reached before its dependencies")

// Sink receives nodes in emission order.
type Sink interface {
	// Emit writes a raw or movement node. Containers are announced too, before
	// their children.
	Emit(doc *model.Document, id model.NodeID) error
	// Close is called after the last child of a container.
	Close(doc *model.Document, id model.NodeID) error
}

// StarvationError reports top-level nodes that could never become eligible.
type StarvationError struct {
	Stuck []string
}

func (e *StarvationError) Error() string {
	return fmt.Sprintf("scheduler starved with %d nodes blocked: %s",
		len(e.Stuck), strings.Join(e.Stuck, "; "))
}

// Plan is the emission order produced by Schedule.
type Plan struct {
	TopLevel []model.NodeID // Root children in the order they were chosen
	Order    []model.NodeID // Every node in emission order, containers included
}

// Movements returns the emitted movements in output order, together with
// raw lines whose target is known.
func (p *Plan) Movements(doc *model.Document) []*model.Node {
	var moves []*model.Node
	for _, id := range p.Order {
		if n := doc.Node(id); n.MovesTool() {
			moves = append(moves, n)
		}
	}
	return moves
}

// Reordered returns how many top-level units left their original position.
func (p *Plan) Reordered(doc *model.Document) int {
	original := doc.Node(doc.Root()).Children
	moved := 0
	for i, id := range p.TopLevel {
		if i < len(original) && original[i] != id {
			moved++
		}
	}
	return moved
}

// Scheduler emits a document, greedily choosing the closest eligible unit
// among the root's children and keeping document order below that.
type Scheduler struct {
	doc  *model.Document
	sink Sink
	pos  model.Point3
	plan *Plan
}

// NewScheduler creates a scheduler with the tool at the origin.
func NewScheduler(doc *model.Document, sink Sink) *Scheduler {
	return &Scheduler{doc: doc, sink: sink, plan: &Plan{}}
}

// Schedule emits the whole document to sink and returns the chosen order.
func Schedule(doc *model.Document, sink Sink) (*Plan, error) {
	s := NewScheduler(doc, sink)
	if err := s.Run(); err != nil {
		return s.plan, err
	}
	return s.plan, nil
}

// Run emits from the root.
func (s *Scheduler) Run() error {
	return s.emit(s.doc.Root(), 0)
}

// Position returns the tool position after the last emitted movement.
func (s *Scheduler) Position() model.Point3 { return s.pos }

func (s *Scheduler) emit(id model.NodeID, level int) error {
	n := s.doc.Node(id)
	if n.Emitted {
		return nil
	}
	if n.Pending > 0 {
		return fmt.Errorf("%w: %s has %d pending", ErrOutOfOrder, s.doc.Label(id), n.Pending)
	}
	if err := s.sink.Emit(s.doc, id); err != nil {
		return err
	}
	s.plan.Order = append(s.plan.Order, id)
	if n.MovesTool() {
		s.pos = n.End
	}

	if n.IsContainer() {
		var err error
		if level == 0 {
			err = s.emitTopLevel(n)
		} else {
			err = s.emitInOrder(n, level)
		}
		if err != nil {
			return err
		}
		if err := s.sink.Close(s.doc, id); err != nil {
			return err
		}
	}

	s.doc.MarkEmitted(id)
	return nil
}

func (s *Scheduler) emitInOrder(n *model.Node, level int) error {
	for _, cid := range n.Children {
		if err := s.emit(cid, level+1); err != nil {
			return err
		}
	}
	return nil
}

// emitTopLevel repeatedly emits the eligible child whose entry point is
// closest to the tool, breaking ties by creation order.
func (s *Scheduler) emitTopLevel(n *model.Node) error {
	for {
		best := model.NoNode
		bestDist := 0.0
		remaining := 0
		for _, cid := range n.Children {
			c := s.doc.Node(cid)
			if c.Emitted {
				continue
			}
			remaining++
			if c.Pending > 0 {
				continue
			}
			d := s.distanceTo(c)
			if best == model.NoNode || d < bestDist ||
				(d == bestDist && c.Seq < s.doc.Node(best).Seq) {
				best, bestDist = cid, d
			}
		}
		if remaining == 0 {
			return nil
		}
		if best == model.NoNode {
			return s.starved(n)
		}
		s.plan.TopLevel = append(s.plan.TopLevel, best)
		if err := s.emit(best, 1); err != nil {
			return err
		}
	}
}

func (s *Scheduler) distanceTo(n *model.Node) float64 {
	entry, ok := EntryPoint(s.doc, n)
	if !ok {
		return 0
	}
	return s.pos.Dist(entry)
}

func (s *Scheduler) starved(n *model.Node) error {
	var stuck []string
	for _, cid := range n.Children {
		c := s.doc.Node(cid)
		if c.Emitted {
			continue
		}
		stuck = append(stuck, fmt.Sprintf("%s waits on %d", s.doc.Label(cid), c.Pending))
	}
	return &StarvationError{Stuck: stuck}
}
