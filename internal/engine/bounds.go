package engine

import "github.com/piwi3910/PathOrder/internal/model"

// AggregateBounds recomputes bounds and path length for id and its
// subtree, children first.
//
// A container folds in every child except positioning moves: those are
// travel, not cutting, so instead of widening the working envelope they
// define the container's entry point. A container is movable when it opens
// with a positioning move and closes with a retract.
func AggregateBounds(doc *model.Document, id model.NodeID) {
	n := doc.Node(id)
	switch n.Kind {
	case model.KindMovement:
		n.Bounds = model.EmptyBounds().
			Include(n.Start).
			Include(n.End).
			Expand2D(n.ToolDiameter / 2.0)
		n.PathLength = n.Start.Dist(n.End)

	case model.KindContainer:
		n.Bounds = model.EmptyBounds()
		n.PathLength = 0
		n.HasEntry = false
		n.Movable = false
		for _, cid := range n.Children {
			AggregateBounds(doc, cid)
			c := doc.Node(cid)
			if c.Positioning {
				if !n.HasEntry {
					n.Start = c.End
					n.HasEntry = true
				}
				continue
			}
			n.Bounds = n.Bounds.Union(c.Bounds)
			n.PathLength += c.PathLength
		}
		if k := len(n.Children); k > 0 {
			first, last := doc.Node(n.Children[0]), doc.Node(n.Children[k-1])
			n.Movable = first.IsMovement() && first.Positioning &&
				last.IsMovement() && last.Retract
		}

	default:
		n.Bounds = model.EmptyBounds()
		n.PathLength = 0
	}
}

// ResolveSafeElevation replaces the Z of every safe-height endpoint below
// id with the retract height.
func ResolveSafeElevation(doc *model.Document, id model.NodeID, retractHeight float64) int {
	resolved := 0
	doc.Walk(id, func(n *model.Node) bool {
		if !n.IsMovement() {
			return true
		}
		if n.StartElev == model.ElevationSafe {
			n.Start.Z = retractHeight
			resolved++
		}
		if n.EndElev == model.ElevationSafe {
			n.End.Z = retractHeight
			resolved++
		}
		return true
	})
	return resolved
}

// EntryPoint returns where the tool goes first when n is emitted: a
// container's positioning target, else the start of its first movement.
// ok is false when n holds no geometry.
func EntryPoint(doc *model.Document, n *model.Node) (model.Point3, bool) {
	switch n.Kind {
	case model.KindMovement:
		return n.Start, true
	case model.KindContainer:
		if n.HasEntry {
			return n.Start, true
		}
		if first := doc.FirstMovement(n.ID); first != nil {
			return first.Start, true
		}
	}
	return model.Point3{}, false
}
