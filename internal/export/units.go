// Package export writes compile results to report formats: a PDF plan, an
// XLSX schedule and a DXF toolpath.
package export

import (
	"github.com/piwi3910/PathOrder/internal/engine"
	"github.com/piwi3910/PathOrder/internal/model"
)

// UnitInfo describes one top-level unit in emission order.
type UnitInfo struct {
	Order      int          `json:"order"` // 1-based emission position
	Name       string       `json:"name"`
	Kind       string       `json:"kind"`
	Seq        int          `json:"seq"`
	Entry      model.Point3 `json:"entry"`
	HasEntry   bool         `json:"has_entry"`
	Bounds     model.Bounds `json:"bounds"`
	PathLength float64      `json:"path_length"`
	Moves      int          `json:"moves"`
	DependsOn  []string     `json:"depends_on,omitempty"`
}

// CollectUnits extracts the top-level units of a plan for reporting.
func CollectUnits(doc *model.Document, plan *engine.Plan) []UnitInfo {
	if plan == nil {
		return nil
	}
	units := make([]UnitInfo, 0, len(plan.TopLevel))
	for i, id := range plan.TopLevel {
		n := doc.Node(id)
		name := n.Name
		if !n.IsContainer() {
			name = n.RawText
		}
		entry, ok := engine.EntryPoint(doc, n)
		info := UnitInfo{
			Order:      i + 1,
			Name:       name,
			Kind:       n.Kind.String(),
			Seq:        n.Seq,
			Entry:      entry,
			HasEntry:   ok,
			Bounds:     n.Bounds,
			PathLength: n.PathLength,
			Moves:      len(doc.Movements(id)),
		}
		for _, dep := range n.DependsOn {
			info.DependsOn = append(info.DependsOn, doc.Label(dep))
		}
		units = append(units, info)
	}
	return units
}

// toolpathSegment is one straight tool motion in emitted order.
type toolpathSegment struct {
	from, to model.Point3
	travel   bool
}

// collectToolpath follows the emitted motion from the origin. A feed move
// that starts away from where it started in the program is drawn as travel.
func collectToolpath(doc *model.Document, plan *engine.Plan) []toolpathSegment {
	var segs []toolpathSegment
	var pos model.Point3
	for _, m := range plan.Movements(doc) {
		detached := m.IsMovement() && pos.Dist(m.Start) > 1e-9
		segs = append(segs, toolpathSegment{
			from:   pos,
			to:     m.End,
			travel: m.GLevel == 0 || m.Positioning || detached,
		})
		pos = m.End
	}
	return segs
}
