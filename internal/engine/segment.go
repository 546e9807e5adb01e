package engine

import (
	"fmt"

	"github.com/piwi3910/PathOrder/internal/model"
)

// cutRun is a contiguous range of children [start, end] forming one
// plunge-cut-retract cycle.
type cutRun struct {
	start, end int
}

// Segmenter groups contiguous runs of motion into "Cut path N" containers.
type Segmenter struct {
	created int
}

// Created returns the number of cut-path containers made so far.
func (s *Segmenter) Created() int { return s.created }

// SplitCuts segments id and its descendants, returning the number of cut
// paths created.
func SplitCuts(doc *model.Document, id model.NodeID) (int, error) {
	s := &Segmenter{}
	if err := s.Split(doc, id); err != nil {
		return s.created, err
	}
	return s.created, nil
}

// Split segments the children of id, then recurses into every child that
// is not a cut path it just produced.
//
// A run opens at a positioning move, or at any movement while idle. It
// closes before a non-movement child, at a retract (inclusive) and at the
// end of the children. Runs holding only positioning travel stay loose.
func (s *Segmenter) Split(doc *model.Document, id model.NodeID) error {
	n := doc.Node(id)
	if !n.IsContainer() {
		return nil
	}

	var runs []cutRun
	inCut := false
	start := 0
	for i, cid := range n.Children {
		c := doc.Node(cid)
		if !c.IsMovement() {
			if inCut {
				runs = append(runs, cutRun{start, i - 1})
				inCut = false
			}
			continue
		}
		if !inCut {
			inCut = true
			start = i
		}
		if c.Retract {
			runs = append(runs, cutRun{start, i})
			inCut = false
		}
	}
	if inCut {
		runs = append(runs, cutRun{start, len(n.Children) - 1})
	}

	// Containers are created in document order so their sequence numbers
	// follow the program; splicing runs back to front keeps indices valid.
	var kept []cutRun
	var groups []model.NodeID
	for _, r := range runs {
		if !s.hasCut(doc, n.Children[r.start:r.end+1]) {
			continue
		}
		s.created++
		group := doc.NewContainer(fmt.Sprintf("Cut path %d", s.created))
		doc.Node(group).SplitAlready = true
		kept = append(kept, r)
		groups = append(groups, group)
	}
	fresh := make(map[model.NodeID]bool, len(groups))
	for i := len(kept) - 1; i >= 0; i-- {
		if err := doc.Replace(id, kept[i].start, kept[i].end, groups[i]); err != nil {
			return fmt.Errorf("failed to group children of %s: %w", doc.Label(id), err)
		}
		fresh[groups[i]] = true
	}

	for _, cid := range n.Children {
		if fresh[cid] || doc.Node(cid).SplitAlready {
			continue
		}
		if err := s.Split(doc, cid); err != nil {
			return err
		}
	}
	return nil
}

// hasCut reports whether a run contains at least one non-positioning move.
func (s *Segmenter) hasCut(doc *model.Document, ids []model.NodeID) bool {
	for _, id := range ids {
		if !doc.Node(id).Positioning {
			return true
		}
	}
	return false
}
