package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/PathOrder/internal/model"
)

// DefaultProfilesPath returns the default file path for custom output profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.OutputProfile) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadCustomProfiles loads custom profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.OutputProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.OutputProfile{}, nil
		}
		return nil, err
	}

	var profiles []model.OutputProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles %s: %w", path, err)
	}

	for i := range profiles {
		profiles[i].IsBuiltIn = false
	}
	return profiles, nil
}

// ExportProfile exports a single profile to a JSON file (for sharing).
func ExportProfile(path string, profile model.OutputProfile) error {
	profile.IsBuiltIn = false
	data, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (model.OutputProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.OutputProfile{}, err
	}

	var profile model.OutputProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.OutputProfile{}, err
	}

	profile.IsBuiltIn = false
	if profile.Name == "" {
		return model.OutputProfile{}, errors.New("imported profile has no name")
	}
	if profile.DecimalPlaces < 0 {
		return model.OutputProfile{}, fmt.Errorf("profile %q has negative decimal places", profile.Name)
	}
	return profile, nil
}

// MergeProfile adds profile to profiles, replacing a custom profile with the
// same name. Built-in names cannot be overridden.
func MergeProfile(profiles []model.OutputProfile, profile model.OutputProfile) ([]model.OutputProfile, error) {
	for _, b := range model.OutputProfiles {
		if b.Name == profile.Name {
			return profiles, fmt.Errorf("profile %q is built in", profile.Name)
		}
	}
	for i, p := range profiles {
		if p.Name == profile.Name {
			profiles[i] = profile
			return profiles, nil
		}
	}
	return append(profiles, profile), nil
}
