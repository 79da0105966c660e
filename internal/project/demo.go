package project

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

// Demo image file names written by GenerateDemoSet.
const (
	DemoTableName = "demo_table.png"
	DemoChairName = "demo_chair.jpg"
	DemoShelfName = "demo_shelf.jpg"
)

const (
	demoWidth  = 800
	demoHeight = 600
)

var (
	demoBackground = color.RGBA{210, 180, 140, 255}
	demoTop        = color.RGBA{170, 130, 90, 255}
	demoLeg        = color.RGBA{120, 80, 50, 255}
	demoChair      = color.RGBA{200, 160, 120, 255}
	demoShelf      = color.RGBA{190, 150, 110, 255}
)

// demoLegs are the x ranges of the four table legs.
var demoLegs = [][2]int{{140, 170}, {630, 660}, {330, 360}, {440, 470}}

func fill(img *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

// DemoTableImage draws a wood-toned table silhouette.
func DemoTableImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, demoWidth, demoHeight))
	fill(img, img.Bounds(), demoBackground)
	fill(img, image.Rect(100, 150, 700, 250), demoTop)
	for _, leg := range demoLegs {
		fill(img, image.Rect(leg[0], 250, leg[1], 500), demoLeg)
	}
	return img
}

func solidImage(c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, demoWidth, demoHeight))
	fill(img, img.Bounds(), c)
	return img
}

func writeImage(path string, img image.Image, encode func(*os.File, image.Image) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create demo directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create demo image: %w", err)
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

func encodePNG(f *os.File, img image.Image) error { return png.Encode(f, img) }

func encodeJPEG(f *os.File, img image.Image) error {
	return jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
}

// GenerateDemoTable writes the demo table PNG to path.
func GenerateDemoTable(path string) error {
	return writeImage(path, DemoTableImage(), encodePNG)
}

// GenerateDemoSet writes a table PNG plus chair and shelf JPEGs into dir and
// returns their paths in that order.
func GenerateDemoSet(dir string) ([]string, error) {
	paths := []string{
		filepath.Join(dir, DemoTableName),
		filepath.Join(dir, DemoChairName),
		filepath.Join(dir, DemoShelfName),
	}
	if err := GenerateDemoTable(paths[0]); err != nil {
		return nil, err
	}
	if err := writeImage(paths[1], solidImage(demoChair), encodeJPEG); err != nil {
		return nil, err
	}
	if err := writeImage(paths[2], solidImage(demoShelf), encodeJPEG); err != nil {
		return nil, err
	}
	return paths, nil
}
