package analyzer

import "fmt"

// UnsupportedFormatError is returned for any container other than PNG or JPEG.
// Format is the detected container name, or "unknown".
type UnsupportedFormatError struct {
	Name   string
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("unsupported image format %q (want png or jpeg)", e.Format)
	}
	return fmt.Sprintf("%s: unsupported image format %q (want png or jpeg)", e.Name, e.Format)
}

// DecodeError wraps a codec failure on corrupt or truncated data.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("failed to decode image: %v", e.Err)
	}
	return fmt.Sprintf("%s: failed to decode image: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EmptyImageError is returned for images with no pixels.
type EmptyImageError struct {
	Name string
}

func (e *EmptyImageError) Error() string {
	if e.Name == "" {
		return "image has no pixels"
	}
	return e.Name + ": image has no pixels"
}
