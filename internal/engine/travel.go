package engine

import "github.com/piwi3910/PathOrder/internal/model"

// Travel is the non-cutting motion of one run through a program.
type Travel struct {
	Distance   float64
	Rapids     int // Rapids and positioning moves
	Connectors int // Feed moves that start away from their recorded start
}

// MeasureTravel sums the non-cutting distance covered when moves are run in
// the given order from start, measured from wherever the previous move
// actually left the tool. Rapids and positioning moves count as travel. So
// does a feed move entered from somewhere other than its recorded start,
// since the controller then cuts a path the program never described.
func MeasureTravel(moves []*model.Node, start model.Point3) Travel {
	var t Travel
	pos := start
	for _, m := range moves {
		switch {
		case m.GLevel == 0 || m.Positioning:
			t.Distance += pos.Dist(m.End)
			t.Rapids++
		case m.IsMovement() && pos.Dist(m.Start) > coordEpsilon:
			t.Distance += pos.Dist(m.End)
			t.Connectors++
		}
		pos = m.End
	}
	return t
}

// CompareTravel measures the program's travel in document order against the
// order recorded in plan.
func CompareTravel(doc *model.Document, plan *Plan) model.TravelComparison {
	before := MeasureTravel(doc.Motions(doc.Root()), model.Point3{})
	after := MeasureTravel(plan.Movements(doc), model.Point3{})
	return model.TravelComparison{
		Before:          before.Distance,
		After:           after.Distance,
		RapidsAfter:     after.Rapids,
		ConnectorsAfter: after.Connectors,
	}
}
