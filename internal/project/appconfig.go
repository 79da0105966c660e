package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/PhotoBOM/internal/export"
	"github.com/piwi3910/PhotoBOM/internal/model"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.photobom/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".photobom")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
// Fields absent from the file keep their default values. A file that names
// an unknown export format or out-of-range thresholds is rejected.
func LoadAppConfig(path string) (model.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultAppConfig(), nil
		}
		return model.AppConfig{}, err
	}
	config := model.DefaultAppConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, err
	}
	// Ensure ExportFormats is never nil
	if config.ExportFormats == nil {
		config.ExportFormats = []string{}
	}
	if err := ValidateAppConfig(config); err != nil {
		return model.AppConfig{}, err
	}
	return config, nil
}

// ValidateAppConfig checks export format names and threshold ranges.
// All problems are reported in one error.
func ValidateAppConfig(config model.AppConfig) error {
	var problems []string

	if _, err := export.ParseFormats(config.ExportFormats); err != nil {
		problems = append(problems, err.Error())
	}

	c := config.Classifier
	unit := []struct {
		name  string
		value float64
	}{
		{"metal_max_saturation", c.MetalMaxSaturation},
		{"metal_min_value", c.MetalMinValue},
		{"wood_min_saturation", c.WoodMinSaturation},
		{"wood_min_value", c.WoodMinValue},
	}
	for _, u := range unit {
		if u.value < 0 || u.value > 1 {
			problems = append(problems, fmt.Sprintf("classifier.%s %g outside [0, 1]", u.name, u.value))
		}
	}
	if c.WoodMinHue < 0 || c.WoodMaxHue > 360 || c.WoodMinHue > c.WoodMaxHue {
		problems = append(problems, fmt.Sprintf("classifier wood hue band [%g, %g] invalid", c.WoodMinHue, c.WoodMaxHue))
	}
	if c.DuplicateDistance < 0 {
		problems = append(problems, "classifier.duplicate_distance must not be negative")
	}

	v := config.Validation
	if v.MinAssemblies < 0 || v.MinItemsPerAssembly < 0 {
		problems = append(problems, "validation minimums must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}
