package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default compiler settings applied to every run
	DefaultProfile      string   `json:"default_profile"`
	DefaultToolDiameter float64  `json:"default_tool_diameter"`
	RetractHeight       *float64 `json:"retract_height,omitempty"` // nil = derive from program
	MaxSiblings         int      `json:"max_siblings"`
	ContainerMarkers    bool     `json:"container_markers"`

	// Application preferences
	LogLevel    string   `json:"log_level"` // "debug", "info", "warn", "error"
	RecentFiles []string `json:"recent_files"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching the values from DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultProfile:      defaults.Profile.Name,
		DefaultToolDiameter: defaults.ToolDiameter,
		RetractHeight:       defaults.RetractHeight,
		MaxSiblings:         defaults.MaxSiblings,
		ContainerMarkers:    defaults.ContainerMarkers,
		LogLevel:            "info",
		RecentFiles:         []string{},
	}
}

// ApplyToSettings copies the default values from AppConfig into a Settings struct.
// Profiles not found among the built-ins or custom leave s.Profile unchanged.
func (c AppConfig) ApplyToSettings(s *Settings, custom []OutputProfile) {
	if p, ok := FindProfile(c.DefaultProfile, custom); ok {
		s.Profile = p
	}
	s.ToolDiameter = c.DefaultToolDiameter
	s.RetractHeight = c.RetractHeight
	s.MaxSiblings = c.MaxSiblings
	s.ContainerMarkers = c.ContainerMarkers
}

const maxRecentFiles = 10

// AddRecentFile moves path to the front of the recent list, keeping it short.
func (c *AppConfig) AddRecentFile(path string) {
	files := []string{path}
	for _, f := range c.RecentFiles {
		if f != path {
			files = append(files, f)
		}
	}
	if len(files) > maxRecentFiles {
		files = files[:maxRecentFiles]
	}
	c.RecentFiles = files
}
