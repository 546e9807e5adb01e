package model

// OutputProfile defines how re-emitted movements and markers are written for
// different CNC controllers.
type OutputProfile struct {
	Name        string `json:"name"`        // Profile name
	Description string `json:"description"` // Profile description

	// Comment style
	CommentPrefix string `json:"comment_prefix"` // Comment start (e.g., "(" or ";")
	CommentSuffix string `json:"comment_suffix"` // Comment end (if needed, e.g., ")")

	// Number formatting
	DecimalPlaces int    `json:"decimal_places"` // Maximum decimal places for coordinates
	WordSeparator string `json:"word_separator"` // Between words on one line ("" packs "G1X1Y2")

	IsBuiltIn bool `json:"is_built_in"`
}

// Built-in output profiles
var OutputProfiles = []OutputProfile{
	{
		Name:          "Grbl",
		Description:   "Standard Grbl configuration (Arduino CNC shields)",
		CommentPrefix: ";",
		CommentSuffix: "",
		DecimalPlaces: 3,
		WordSeparator: " ",
		IsBuiltIn:     true,
	},
	{
		Name:          "Mach3",
		Description:   "Mach3 CNC control software",
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
		WordSeparator: " ",
		IsBuiltIn:     true,
	},
	{
		Name:          "LinuxCNC",
		Description:   "LinuxCNC (formerly EMC2)",
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
		WordSeparator: " ",
		IsBuiltIn:     true,
	},
	{
		Name:          "Generic",
		Description:   "Generic standard GCode, compact words",
		CommentPrefix: "(",
		CommentSuffix: ")",
		DecimalPlaces: 4,
		WordSeparator: "",
		IsBuiltIn:     true,
	},
}

// GetProfile returns an output profile by name, or the Generic profile if not found.
func GetProfile(name string) OutputProfile {
	for _, p := range OutputProfiles {
		if p.Name == name {
			return p
		}
	}
	return OutputProfiles[len(OutputProfiles)-1] // Return Generic (last one)
}

// FindProfile looks name up in the built-in profiles first, then in custom.
func FindProfile(name string, custom []OutputProfile) (OutputProfile, bool) {
	for _, p := range OutputProfiles {
		if p.Name == name {
			return p, true
		}
	}
	for _, p := range custom {
		if p.Name == name {
			return p, true
		}
	}
	return OutputProfile{}, false
}

// GetProfileNames returns the built-in profile names followed by the custom ones.
func GetProfileNames(custom ...OutputProfile) []string {
	var names []string
	for _, p := range OutputProfiles {
		names = append(names, p.Name)
	}
	for _, p := range custom {
		names = append(names, p.Name)
	}
	return names
}

// NewCustomProfile creates a custom profile initialized from Generic.
func NewCustomProfile(name string) OutputProfile {
	p := GetProfile("Generic")
	p.Name = name
	p.Description = "Custom profile"
	p.IsBuiltIn = false
	return p
}
