package engine

import (
	"math"

	"github.com/piwi3910/PathOrder/internal/model"
)

// coordEpsilon is the tolerance for comparing parsed coordinates.
const coordEpsilon = 1e-9

// ClassifyVertical recomputes the vertical and retract flags of every
// movement below id. A retract is an upward vertical move that ends at or
// above retractHeight.
func ClassifyVertical(doc *model.Document, id model.NodeID, retractHeight float64) {
	doc.Walk(id, func(n *model.Node) bool {
		if !n.IsMovement() {
			return true
		}
		n.Vertical = math.Abs(n.End.X-n.Start.X) <= coordEpsilon &&
			math.Abs(n.End.Y-n.Start.Y) <= coordEpsilon
		n.Retract = n.Vertical &&
			n.End.Z > n.Start.Z+coordEpsilon &&
			n.End.Z >= retractHeight-coordEpsilon
		return true
	})
}

// ClassifyPositioning marks a movement as positioning when its immediately
// preceding sibling is a retract. Flags are only ever set, so running the
// pass again, even after segmentation, changes nothing.
func ClassifyPositioning(doc *model.Document, id model.NodeID) {
	n := doc.Node(id)
	prevRetract := false
	for _, cid := range n.Children {
		c := doc.Node(cid)
		if c.IsMovement() && prevRetract {
			c.Positioning = true
		}
		prevRetract = c.IsMovement() && c.Retract
		if c.IsContainer() {
			ClassifyPositioning(doc, cid)
		}
	}
}

// Classify runs both motion classification passes.
func Classify(doc *model.Document, id model.NodeID, retractHeight float64) {
	ClassifyVertical(doc, id, retractHeight)
	ClassifyPositioning(doc, id)
}
