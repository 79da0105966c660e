package model

// ClassifierConfig holds the hand-tuned HSV thresholds used to label photos.
type ClassifierConfig struct {
	// Metallic: low saturation, not too dark
	MetalMaxSaturation float64 `json:"metal_max_saturation"`
	MetalMinValue      float64 `json:"metal_min_value"`

	// Wood: warm hue band with some saturation
	WoodMinHue        float64 `json:"wood_min_hue"` // degrees
	WoodMaxHue        float64 `json:"wood_max_hue"` // degrees
	WoodMinSaturation float64 `json:"wood_min_saturation"`
	WoodMinValue      float64 `json:"wood_min_value"`

	// Perceptual hash distance below which two photos count as duplicates;
	// 0 disables the check.
	DuplicateDistance int `json:"duplicate_distance"`
}

// DefaultClassifierConfig returns the stock thresholds.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		MetalMaxSaturation: 0.3,
		MetalMinValue:      0.3,
		WoodMinHue:         15,
		WoodMaxHue:         45,
		WoodMinSaturation:  0.2,
		WoodMinValue:       0.2,
		DuplicateDistance:  10,
	}
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	Level       string `json:"level"`  // debug, info, warn, error
	Format      string `json:"format"` // console or json
	Development bool   `json:"development"`
}

// S3Config describes the bucket exported reports are uploaded to.
// Bucket empty means uploads are disabled.
type S3Config struct {
	Bucket          string `json:"bucket"`
	Prefix          string `json:"prefix"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"` // custom endpoint for S3-compatible stores
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	UsePathStyle    bool   `json:"use_path_style"`
}

// Enabled reports whether uploads are configured.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	Classifier ClassifierConfig `json:"classifier"`
	Validation ValidationPolicy `json:"validation"`

	// Input / output locations
	InputDir       string   `json:"input_dir"`
	OutputDir      string   `json:"output_dir"`
	ReportBaseName string   `json:"report_base_name"`
	ExportFormats  []string `json:"export_formats"` // csv, xlsx, pdf, labels

	// History database; empty disables run recording
	DBPath string `json:"db_path"`

	// Prometheus textfile written after each run; empty disables it
	MetricsFile string `json:"metrics_file"`

	Log LogConfig `json:"log"`
	S3  S3Config  `json:"s3"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Classifier:     DefaultClassifierConfig(),
		Validation:     DefaultValidationPolicy(),
		InputDir:       "input_images",
		OutputDir:      "output",
		ReportBaseName: "bom_report",
		ExportFormats:  []string{},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}
