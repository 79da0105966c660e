// Package analyzer decodes component photos and labels them wood, mechanical
// or unknown from their mean color.
package analyzer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/piwi3910/PhotoBOM/internal/model"

	// Registered so these containers are recognised and rejected by name.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Accepted container formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// Photo is a decoded input image. It is not modified after Decode.
type Photo struct {
	Name   string
	Format string
	Size   int // raw byte size
	Image  image.Image
	Meta   *model.PhotoMeta
}

// Width returns the pixel width.
func (p *Photo) Width() int { return p.Image.Bounds().Dx() }

// Height returns the pixel height.
func (p *Photo) Height() int { return p.Image.Bounds().Dy() }

// Decode validates the container and decodes data. Only PNG and JPEG are
// accepted. EXIF fields are captured when present.
func Decode(name string, data []byte) (*Photo, error) {
	if len(data) == 0 {
		return nil, &EmptyImageError{Name: name}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, &UnsupportedFormatError{Name: name, Format: "unknown"}
		}
		return nil, &DecodeError{Name: name, Err: err}
	}
	if format != FormatPNG && format != FormatJPEG {
		return nil, &UnsupportedFormatError{Name: name, Format: format}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &EmptyImageError{Name: name}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Name: name, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &EmptyImageError{Name: name}
	}

	return &Photo{
		Name:   name,
		Format: format,
		Size:   len(data),
		Image:  img,
		Meta:   ExtractMeta(data, format),
	}, nil
}

// Load reads and decodes the image at path. The photo is named by its base name.
func Load(path string) (*Photo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return Decode(filepath.Base(path), data)
}
