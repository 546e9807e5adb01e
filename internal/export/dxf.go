package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/piwi3910/PathOrder/internal/engine"
	"github.com/piwi3910/PathOrder/internal/model"
)

// DXF layer names for the exported toolpath.
const (
	LayerCut    = "CUT"
	LayerTravel = "TRAVEL"
)

// ExportDXF writes the emitted toolpath as 3D LINE entities, cutting moves
// on the CUT layer and rapids and repositioning on the TRAVEL layer.
func ExportDXF(path string, doc *model.Document, plan *engine.Plan) error {
	if plan == nil {
		return fmt.Errorf("no plan to export")
	}
	segs := collectToolpath(doc, plan)
	if len(segs) == 0 {
		return fmt.Errorf("no toolpath to export")
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(LayerCut, color.Blue, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerCut, err)
	}
	if _, err := d.AddLayer(LayerTravel, color.Red, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("failed to add layer %s: %w", LayerTravel, err)
	}

	current := ""
	for _, s := range segs {
		layer := LayerCut
		if s.travel {
			layer = LayerTravel
		}
		if layer != current {
			if err := d.ChangeLayer(layer); err != nil {
				return fmt.Errorf("failed to select layer %s: %w", layer, err)
			}
			current = layer
		}
		if _, err := d.Line(s.from.X, s.from.Y, s.from.Z, s.to.X, s.to.Y, s.to.Z); err != nil {
			return fmt.Errorf("failed to add line: %w", err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}
