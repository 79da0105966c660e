package analyzer

import (
	"bytes"
	"fmt"

	"github.com/bep/imagemeta"

	"github.com/piwi3910/PhotoBOM/internal/model"
)

// exifTags are the EXIF fields copied into PhotoMeta.
var exifTags = map[string]bool{
	"Make":             true,
	"Model":            true,
	"DateTimeOriginal": true,
	"Artist":           true,
	"Software":         true,
}

// metaFormats maps accepted container names to imagemeta formats.
var metaFormats = map[string]imagemeta.ImageFormat{
	FormatJPEG: imagemeta.JPEG,
	FormatPNG:  imagemeta.PNG,
}

// ExtractMeta reads camera EXIF fields from raw image bytes in the given
// container format ("jpeg" or "png", as reported by Decode).
// Returns nil if the data carries none or cannot be parsed; never fails.
func ExtractMeta(data []byte, format string) *model.PhotoMeta {
	imageFormat, ok := metaFormats[format]
	if len(data) == 0 || !ok {
		return nil
	}

	meta := &model.PhotoMeta{}
	found := false

	_, err := imagemeta.Decode(imagemeta.Options{
		R:           bytes.NewReader(data),
		ImageFormat: imageFormat,
		Sources:     imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Source == imagemeta.EXIF && exifTags[ti.Tag]
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			s := tagString(ti.Value)
			if s == "" {
				return nil
			}
			switch ti.Tag {
			case "Make":
				meta.Make = s
			case "Model":
				meta.Model = s
			case "DateTimeOriginal":
				meta.TakenAt = s
			case "Artist":
				meta.Artist = s
			case "Software":
				meta.Software = s
			default:
				return nil
			}
			found = true
			return nil
		},
	})
	if err != nil || !found {
		return nil
	}
	return meta
}

func tagString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
		return ""
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}
