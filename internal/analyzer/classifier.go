package analyzer

import (
	"image"

	"github.com/piwi3910/PhotoBOM/internal/model"
)

// Thresholds are the HSV bounds for the metallic and wood tests.
type Thresholds struct {
	MetalMaxSaturation float64
	MetalMinValue      float64
	WoodMinHue         float64
	WoodMaxHue         float64
	WoodMinSaturation  float64
	WoodMinValue       float64
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return ThresholdsFromConfig(model.DefaultClassifierConfig())
}

// ThresholdsFromConfig copies the classifier section of the app config.
func ThresholdsFromConfig(c model.ClassifierConfig) Thresholds {
	return Thresholds{
		MetalMaxSaturation: c.MetalMaxSaturation,
		MetalMinValue:      c.MetalMinValue,
		WoodMinHue:         c.WoodMinHue,
		WoodMaxHue:         c.WoodMaxHue,
		WoodMinSaturation:  c.WoodMinSaturation,
		WoodMinValue:       c.WoodMinValue,
	}
}

// IsMetallic reports whether hsv passes the metallic test.
func (t Thresholds) IsMetallic(hsv HSV) bool {
	return hsv.S <= t.MetalMaxSaturation && hsv.V >= t.MetalMinValue
}

// IsWood reports whether hsv passes the wood test.
func (t Thresholds) IsWood(hsv HSV) bool {
	return hsv.H >= t.WoodMinHue && hsv.H <= t.WoodMaxHue &&
		hsv.S >= t.WoodMinSaturation && hsv.V >= t.WoodMinValue
}

// Categorize labels a color. The metallic test runs first, so a color
// passing both tests is mechanical.
func (t Thresholds) Categorize(hsv HSV) model.Category {
	switch {
	case t.IsMetallic(hsv):
		return model.CategoryMechanical
	case t.IsWood(hsv):
		return model.CategoryWood
	default:
		return model.CategoryUnknown
	}
}

// Analysis is the outcome of classifying one image.
type Analysis struct {
	Mean        RGB            `json:"mean"`
	HSV         HSV            `json:"hsv"`
	Category    model.Category `json:"category"`
	Downsampled bool           `json:"downsampled"`
}

// Classifier labels images from their mean color. It holds no mutable
// state and may be shared between goroutines.
type Classifier struct {
	Thresholds Thresholds
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{Thresholds: t}
}

// Classify downsamples img if needed, takes its mean color and applies the
// thresholds.
func (c *Classifier) Classify(img image.Image) (Analysis, error) {
	small, resized := downsample(img)
	mean, err := MeanColor(small)
	if err != nil {
		return Analysis{}, err
	}
	hsv := RGBToHSV(mean)
	return Analysis{
		Mean:        mean,
		HSV:         hsv,
		Category:    c.Thresholds.Categorize(hsv),
		Downsampled: resized,
	}, nil
}
