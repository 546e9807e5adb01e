package export

import (
	"path/filepath"
	"testing"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/PathOrder/internal/engine"
	"github.com/piwi3910/PathOrder/internal/model"
)

func TestExportDXF(t *testing.T) {
	doc, plan, _ := buildTestPlan(t)
	path := filepath.Join(t.TempDir(), "toolpath.dxf")

	if err := ExportDXF(path, doc, plan); err != nil {
		t.Fatalf("ExportDXF returned error: %v", err)
	}

	drawing, err := dxf.Open(path)
	if err != nil {
		t.Fatalf("cannot reopen DXF: %v", err)
	}
	lines := 0
	for _, ent := range drawing.Entities() {
		if _, ok := ent.(*entity.Line); ok {
			lines++
		}
	}
	if lines != 15 {
		t.Errorf("expected 15 LINE entities, got %d", lines)
	}
}

func TestExportDXF_NoToolpath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dxf")
	if err := ExportDXF(path, model.NewDocument(), &engine.Plan{}); err == nil {
		t.Fatal("expected error for empty toolpath, got nil")
	}
	if err := ExportDXF(path, model.NewDocument(), nil); err == nil {
		t.Fatal("expected error for nil plan, got nil")
	}
}
