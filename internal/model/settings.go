package model

import "github.com/google/uuid"

// Settings holds the compiler configuration for one run.
type Settings struct {
	// Interpretation
	ToolDiameter  float64  `json:"tool_diameter"`            // Used until a (TOOL/MILL,...) comment is seen
	RetractHeight *float64 `json:"retract_height,omitempty"` // nil = derive from the highest Z in the program

	// Dependency analysis
	MaxSiblings int `json:"max_siblings"` // Above this, siblings are chained in order; <= 0 uses the default of 5000

	// Output
	Profile          OutputProfile `json:"profile"`
	ContainerMarkers bool          `json:"container_markers"` // Emit a closing comment after each container
}

// Float returns a pointer to v, for optional settings.
func Float(v float64) *float64 { return &v }

// DefaultSettings returns the settings used when no configuration is given.
func DefaultSettings() Settings {
	return Settings{
		ToolDiameter:     0,
		MaxSiblings:      5000,
		Profile:          GetProfile("Generic"),
		ContainerMarkers: true,
	}
}

// Stats carries the diagnostic counters of one compilation run.
type Stats struct {
	RunID            string  `json:"run_id"`
	LinesRead        int     `json:"lines_read"`
	MovementsParsed  int     `json:"movements_parsed"` // Raw lines promoted to movements
	SafeLifts        int     `json:"safe_lifts"`       // Machine-coordinate lifts converted
	Barriers         int     `json:"barriers"`
	CutPaths         int     `json:"cut_paths"`
	Dependencies     int     `json:"dependencies"`
	RetractHeight    float64 `json:"retract_height"`
	TravelBefore     float64 `json:"travel_before"`   // Non-cutting travel in original order
	TravelAfter      float64 `json:"travel_after"`    // Non-cutting travel in emitted order
	FeedConnectors   int     `json:"feed_connectors"` // Feed moves entered from somewhere other than their original start
	TopLevelUnits    int     `json:"top_level_units"`
	ReorderedUnits   int     `json:"reordered_units"` // Top-level units emitted out of original position
	VerifyViolations int     `json:"verify_violations"`
}

// NewStats returns empty stats stamped with a fresh short run ID.
func NewStats() Stats {
	return Stats{RunID: uuid.New().String()[:8]}
}

// TravelSaved returns the reduction in non-cutting travel.
func (s Stats) TravelSaved() float64 {
	return s.TravelBefore - s.TravelAfter
}

// TravelSavedPercent returns the travel reduction as a percentage of the
// original travel.
func (s Stats) TravelSavedPercent() float64 {
	if s.TravelBefore == 0 {
		return 0
	}
	return (s.TravelSaved() / s.TravelBefore) * 100.0
}
