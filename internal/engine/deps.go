package engine

import (
	"fmt"
	"log/slog"

	"github.com/piwi3910/PathOrder/internal/model"
)

// DefaultMaxSiblings bounds the pairwise analysis of one container.
const DefaultMaxSiblings = 5000

// BuildDependencies installs must-emit-before edges between the children of
// every container in the subtree rooted at id and returns the number of
// edges added.
//
// Two movable cut paths are ordered when their tool envelopes overlap in XY.
// Any other child is a fence: nothing after it may move ahead of it, and it
// may not move ahead of anything before it. A cut path that is entered by
// feeding on from the previous line, or that leaves the tool down, is
// therefore pinned in place. Containers with more than
// maxSiblings children are chained in document order instead of analysed.
func BuildDependencies(doc *model.Document, id model.NodeID, maxSiblings int, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if maxSiblings <= 0 {
		maxSiblings = DefaultMaxSiblings
	}
	b := &depBuilder{doc: doc, maxSiblings: maxSiblings, logger: logger}
	if err := b.build(id); err != nil {
		return b.added, err
	}
	return b.added, nil
}

type depBuilder struct {
	doc         *model.Document
	maxSiblings int
	logger      *slog.Logger
	added       int
}

func (b *depBuilder) build(id model.NodeID) error {
	n := b.doc.Node(id)
	if !n.IsContainer() {
		return nil
	}

	if len(n.Children) > b.maxSiblings {
		b.logger.Warn("sibling ceiling exceeded, keeping document order",
			"container", b.doc.Label(id),
			"children", len(n.Children),
			"max_siblings", b.maxSiblings)
		if err := b.chain(n.Children); err != nil {
			return err
		}
	} else if err := b.pairs(n.Children); err != nil {
		return err
	}

	for _, cid := range n.Children {
		if err := b.build(cid); err != nil {
			return err
		}
	}
	return nil
}

// pairs runs the barrier-pruned pairwise scan over one sibling list.
func (b *depBuilder) pairs(children []model.NodeID) error {
	for i, firstID := range children {
		first := b.doc.Node(firstID)
		fence := isFence(first)
		for _, secondID := range children[i+1:] {
			second := b.doc.Node(secondID)
			if isFence(second) {
				if err := b.depend(secondID, firstID); err != nil {
					return err
				}
				break
			}
			if fence || first.Bounds.Intersects2D(second.Bounds) {
				if err := b.depend(secondID, firstID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// chain orders every child after its predecessor.
func (b *depBuilder) chain(children []model.NodeID) error {
	for i := 1; i < len(children); i++ {
		if err := b.depend(children[i], children[i-1]); err != nil {
			return err
		}
	}
	return nil
}

func (b *depBuilder) depend(a, on model.NodeID) error {
	before := len(b.doc.Node(a).DependsOn)
	if err := b.doc.DependOn(a, on); err != nil {
		return fmt.Errorf("failed to order %s after %s: %w", b.doc.Label(a), b.doc.Label(on), err)
	}
	if len(b.doc.Node(a).DependsOn) > before {
		b.added++
	}
	return nil
}

// isFence reports whether a child pins the relative order of its siblings:
// barriers, everything that is not a grouping container, and containers
// that do not start from and return to a safe height.
func isFence(n *model.Node) bool {
	return n.Barrier || !n.IsContainer() || !n.Movable
}
