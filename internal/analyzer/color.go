package analyzer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/stat"
)

const (
	// MaxPixels is the pixel count above which images are downsampled
	// before the mean is taken.
	MaxPixels = 1_000_000

	// TargetWidth is the width of a downsampled image.
	TargetWidth = 800
)

// RGB is a mean color with channels in [0,255].
type RGB struct {
	R, G, B float64
}

// HSV has H in [0,360) degrees and S, V in [0,1].
type HSV struct {
	H, S, V float64
}

// Downsample scales images larger than MaxPixels to TargetWidth, keeping the
// aspect ratio. Smaller images, and images the resize would not shrink, are
// returned unchanged.
func Downsample(img image.Image) image.Image {
	out, _ := downsample(img)
	return out
}

func downsample(img image.Image) (image.Image, bool) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || w*h <= MaxPixels {
		return img, false
	}

	nh := int(math.Round(float64(TargetWidth) * float64(h) / float64(w)))
	if nh < 1 {
		nh = 1
	}
	if TargetWidth*nh >= w*h {
		return img, false
	}

	dst := image.NewRGBA(image.Rect(0, 0, TargetWidth, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, true
}

// MeanColor averages each channel over every pixel of img. Colors are read
// non-premultiplied.
func MeanColor(img image.Image) (RGB, error) {
	b := img.Bounds()
	if b.Empty() {
		return RGB{}, &EmptyImageError{}
	}

	// Every row has the same width, so the mean of row means is the image mean.
	w, h := b.Dx(), b.Dy()
	rowR := make([]float64, w)
	rowG := make([]float64, w)
	rowB := make([]float64, w)
	meanR := make([]float64, h)
	meanG := make([]float64, h)
	meanB := make([]float64, h)

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			i := x - b.Min.X
			rowR[i] = float64(c.R)
			rowG[i] = float64(c.G)
			rowB[i] = float64(c.B)
		}
		j := y - b.Min.Y
		meanR[j] = stat.Mean(rowR, nil)
		meanG[j] = stat.Mean(rowG, nil)
		meanB[j] = stat.Mean(rowB, nil)
	}

	return RGB{
		R: stat.Mean(meanR, nil),
		G: stat.Mean(meanG, nil),
		B: stat.Mean(meanB, nil),
	}, nil
}

// RGBToHSV converts a [0,255] color to HSV. Hue is 0 for achromatic colors.
func RGBToHSV(c RGB) HSV {
	r, g, b := c.R/255, c.G/255, c.B/255
	mx := math.Max(r, math.Max(g, b))
	mn := math.Min(r, math.Min(g, b))
	df := mx - mn

	var h float64
	switch {
	case df == 0:
		h = 0
	case mx == r:
		h = math.Mod(60*((g-b)/df)+360, 360)
	case mx == g:
		h = 60*((b-r)/df) + 120
	default:
		h = 60*((r-g)/df) + 240
	}

	var s float64
	if mx != 0 {
		s = df / mx
	}
	return HSV{H: h, S: s, V: mx}
}
