package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/PathOrder/internal/model"
)

const (
	scheduleSheet = "Schedule"
	summarySheet  = "Summary"
)

var scheduleHeaders = []interface{}{
	"Order", "Unit", "Kind", "Seq",
	"Entry X", "Entry Y", "Entry Z",
	"Min X", "Min Y", "Max X", "Max Y",
	"Path Length", "Moves", "Depends On",
}

// ExportScheduleXLSX writes the emission order to a workbook with a
// Schedule sheet (one row per top-level unit) and a Summary sheet.
func ExportScheduleXLSX(path string, units []UnitInfo, stats model.Stats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scheduleSheet); err != nil {
		return fmt.Errorf("failed to name schedule sheet: %w", err)
	}
	if err := f.SetSheetRow(scheduleSheet, "A1", &scheduleHeaders); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(scheduleHeaders), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(scheduleSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, u := range units {
		row := []interface{}{u.Order, u.Name, u.Kind, u.Seq}
		if u.HasEntry {
			row = append(row, u.Entry.X, u.Entry.Y, u.Entry.Z)
		} else {
			row = append(row, "", "", "")
		}
		if u.Bounds.IsEmpty() {
			row = append(row, "", "", "", "")
		} else {
			row = append(row, u.Bounds.MinX, u.Bounds.MinY, u.Bounds.MaxX, u.Bounds.MaxY)
		}
		row = append(row, u.PathLength, u.Moves, strings.Join(u.DependsOn, "; "))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(scheduleSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(scheduleSheet, "B", "B", 24); err != nil {
		return err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Run", stats.RunID},
		{"Lines Read", stats.LinesRead},
		{"Movements", stats.MovementsParsed},
		{"Machine Lifts", stats.SafeLifts},
		{"Barriers", stats.Barriers},
		{"Cut Paths", stats.CutPaths},
		{"Dependencies", stats.Dependencies},
		{"Retract Height", stats.RetractHeight},
		{"Travel Before", stats.TravelBefore},
		{"Travel After", stats.TravelAfter},
		{"Feed Connectors", stats.FeedConnectors},
		{"Units Reordered", stats.ReorderedUnits},
		{"Violations", stats.VerifyViolations},
	}
	for i, kv := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &kv); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 18); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
