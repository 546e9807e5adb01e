package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/PathOrder/internal/model"
)

// RunInfo holds the data encoded into a plan's QR code, so a printed plan
// can be matched to the run that produced it.
type RunInfo struct {
	RunID        string  `json:"run"`
	Lines        int     `json:"lines"`
	CutPaths     int     `json:"cut_paths"`
	Dependencies int     `json:"deps"`
	Reordered    int     `json:"reordered"`
	TravelBefore float64 `json:"travel_before_mm"`
	TravelAfter  float64 `json:"travel_after_mm"`
}

// NewRunInfo extracts the QR payload from run stats.
func NewRunInfo(stats model.Stats) RunInfo {
	return RunInfo{
		RunID:        stats.RunID,
		Lines:        stats.LinesRead,
		CutPaths:     stats.CutPaths,
		Dependencies: stats.Dependencies,
		Reordered:    stats.ReorderedUnits,
		TravelBefore: stats.TravelBefore,
		TravelAfter:  stats.TravelAfter,
	}
}

// runQRCode renders info as a PNG QR code.
func runQRCode(info RunInfo) ([]byte, error) {
	data, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal run info: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// placeRunQR draws the run QR code with its top-left corner at (x, y).
func placeRunQR(pdf *fpdf.Fpdf, x, y, size float64, info RunInfo) error {
	png, err := runQRCode(info)
	if err != nil {
		return err
	}
	imgName := "qr_run_" + info.RunID
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x, y, size, size, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(x, y+size)
	pdf.CellFormat(size, 4, "Run "+info.RunID, "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}
