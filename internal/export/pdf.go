package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/PathOrder/internal/engine"
	"github.com/piwi3910/PathOrder/internal/model"
)

// unitColor represents an RGB color for a top-level unit.
type unitColor struct {
	R, G, B int
}

var unitColors = []unitColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	qrSize       = 35.0
	rowHeight    = 6.0
)

// ExportPlanPDF writes a PDF with a plan view of the emitted toolpath,
// numbered in emission order, followed by a summary page.
func ExportPlanPDF(path string, doc *model.Document, plan *engine.Plan, stats model.Stats) error {
	if plan == nil || len(plan.TopLevel) == 0 {
		return fmt.Errorf("no units to export")
	}
	units := CollectUnits(doc, plan)

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderPlanPage(pdf, units, collectToolpath(doc, plan), stats)

	pdf.AddPage()
	if err := renderSummaryPage(pdf, units, stats); err != nil {
		return err
	}

	return pdf.OutputFileAndClose(path)
}

// planView maps program XY coordinates onto the page, Y up.
type planView struct {
	extent           model.Bounds
	scale            float64
	offsetX, offsetY float64
}

func (v planView) x(x float64) float64 { return v.offsetX + (x-v.extent.MinX)*v.scale }
func (v planView) y(y float64) float64 { return v.offsetY + (v.extent.MaxY-y)*v.scale }

func newPlanView(extent model.Bounds) planView {
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	w := math.Max(extent.Width(), 1)
	h := math.Max(extent.Height(), 1)
	scale := math.Min(drawWidth/w, drawHeight/h)

	return planView{
		extent:  extent,
		scale:   scale,
		offsetX: marginLeft + (drawWidth-w*scale)/2,
		offsetY: drawAreaTop,
	}
}

// renderPlanPage draws the toolpath and the unit envelopes.
func renderPlanPage(pdf *fpdf.Fpdf, units []UnitInfo, segs []toolpathSegment, stats model.Stats) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Toolpath plan: %d units, run %s", len(units), stats.RunID)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	line := fmt.Sprintf("Travel: %.1f mm before | %.1f mm after | saved %.1f%% | Cut paths: %d | Dependencies: %d",
		stats.TravelBefore, stats.TravelAfter, stats.TravelSavedPercent(), stats.CutPaths, stats.Dependencies)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, line, "", 0, "L", false, 0, "")

	extent := model.EmptyBounds()
	for _, s := range segs {
		extent = extent.Include(s.from).Include(s.to)
	}
	if extent.IsEmpty() {
		pdf.SetXY(marginLeft, drawAreaTop)
		pdf.CellFormat(100, 6, "No motion in program", "", 0, "L", false, 0, "")
		return
	}
	view := newPlanView(extent)

	// Unit envelopes
	for i, u := range units {
		if u.Bounds.IsEmpty() {
			continue
		}
		col := unitColors[i%len(unitColors)]
		pdf.SetDrawColor(col.R, col.G, col.B)
		pdf.SetLineWidth(0.4)
		x, y := view.x(u.Bounds.MinX), view.y(u.Bounds.MaxY)
		w := math.Max(u.Bounds.Width()*view.scale, 0.5)
		h := math.Max(u.Bounds.Height()*view.scale, 0.5)
		pdf.Rect(x, y, w, h, "D")

		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetTextColor(col.R, col.G, col.B)
		pdf.SetXY(x, y-4)
		pdf.CellFormat(10, 4, fmt.Sprintf("%d", u.Order), "", 0, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)

	// Toolpath
	for _, s := range segs {
		if s.travel {
			pdf.SetDrawColor(220, 60, 60)
			pdf.SetLineWidth(0.15)
			pdf.SetDashPattern([]float64{1, 1}, 0)
		} else {
			pdf.SetDrawColor(30, 30, 30)
			pdf.SetLineWidth(0.25)
			pdf.SetDashPattern([]float64{}, 0)
		}
		pdf.Line(view.x(s.from.X), view.y(s.from.Y), view.x(s.to.X), view.y(s.to.Y))
	}
	pdf.SetDashPattern([]float64{}, 0)

	drawExtentAnnotations(pdf, extent, view)
	drawUnitsLegend(pdf, units, pageHeight-marginBottom-legendHeight+2)
}

// drawExtentAnnotations labels the program's XY extent below the drawing.
func drawExtentAnnotations(pdf *fpdf.Fpdf, extent model.Bounds, view planView) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	label := fmt.Sprintf("X %.1f .. %.1f mm, Y %.1f .. %.1f mm",
		extent.MinX, extent.MaxX, extent.MinY, extent.MaxY)
	labelW := pdf.GetStringWidth(label)
	pdf.SetXY(view.x(extent.MinX), view.y(extent.MinY)+1)
	pdf.CellFormat(labelW, 4, label, "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// drawUnitsLegend renders a compact legend of units in emission order.
func drawUnitsLegend(pdf *fpdf.Fpdf, units []UnitInfo, startY float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Emission order:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, u := range units {
		if u.Kind != model.KindContainer.String() {
			continue
		}
		col := unitColors[i%len(unitColors)]
		label := fmt.Sprintf("%d %s", u.Order, u.Name)
		labelW := pdf.GetStringWidth(label) + 6
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
			if startY > pageHeight-marginBottom {
				return
			}
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}
}

// renderSummaryPage draws run statistics, the run QR code and the unit table.
func renderSummaryPage(pdf *fpdf.Fpdf, units []UnitInfo, stats model.Stats) error {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Toolpath Plan Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	if err := placeRunQR(pdf, pageWidth-marginRight-qrSize, marginTop+16, qrSize, NewRunInfo(stats)); err != nil {
		return err
	}

	y := marginTop + 18
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Lines Read", fmt.Sprintf("%d", stats.LinesRead)},
		{"Movements", fmt.Sprintf("%d", stats.MovementsParsed)},
		{"Machine Lifts", fmt.Sprintf("%d", stats.SafeLifts)},
		{"Cut Paths", fmt.Sprintf("%d", stats.CutPaths)},
		{"Dependencies", fmt.Sprintf("%d", stats.Dependencies)},
		{"Retract Height", fmt.Sprintf("%.3f mm", stats.RetractHeight)},
		{"Units Reordered", fmt.Sprintf("%d of %d", stats.ReorderedUnits, stats.TopLevelUnits)},
		{"Travel Saved", fmt.Sprintf("%.1f mm (%.1f%%)", stats.TravelSaved(), stats.TravelSavedPercent())},
		{"Feed Connectors", fmt.Sprintf("%d", stats.FeedConnectors)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	if stats.VerifyViolations > 0 {
		y += 3
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, fmt.Sprintf("WARNING: %d ordering violations", stats.VerifyViolations), "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		y += 8
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Emission Order", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{15, 70, 20, 55, 55, 30, 22}
	headers := []string{"#", "Unit", "Seq", "Entry", "Extent", "Length", "Deps"}
	drawTableHeader(pdf, colWidths, headers, y)
	y += rowHeight

	pdf.SetFont("Helvetica", "", 9)
	for i, u := range units {
		if y+rowHeight > pageHeight-marginBottom-5 {
			pdf.AddPage()
			y = marginTop
			drawTableHeader(pdf, colWidths, headers, y)
			y += rowHeight
			pdf.SetFont("Helvetica", "", 9)
		}

		entry := "-"
		if u.HasEntry {
			entry = fmt.Sprintf("%.1f, %.1f, %.1f", u.Entry.X, u.Entry.Y, u.Entry.Z)
		}
		extent := "-"
		if !u.Bounds.IsEmpty() {
			extent = fmt.Sprintf("%.1f x %.1f mm", u.Bounds.Width(), u.Bounds.Height())
		}
		rowData := []string{
			fmt.Sprintf("%d", u.Order),
			truncate(pdf, u.Name, colWidths[1]-2),
			fmt.Sprintf("%d", u.Seq),
			entry,
			extent,
			fmt.Sprintf("%.1f", u.PathLength),
			fmt.Sprintf("%d", len(u.DependsOn)),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		xPos := marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], rowHeight, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += rowHeight
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by PathOrder - G-code toolpath reordering", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

func drawTableHeader(pdf *fpdf.Fpdf, colWidths []float64, headers []string, y float64) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], rowHeight, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
}

// truncate shortens s with an ellipsis until it fits width.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
