package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
)

// Format is an output encoding for rendered images.
type Format string

const (
	// FormatJPEG encodes with baseline JPEG at a configurable quality.
	FormatJPEG Format = "jpeg"
	// FormatPNG encodes losslessly.
	FormatPNG Format = "png"
)

// DefaultJPEGQuality is used when a quality outside 1-100 is requested.
const DefaultJPEGQuality = 90

// ParseFormat accepts "jpeg", "jpg", or "png" (case-insensitive). An empty
// string selects JPEG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q", ErrInvalidParameter, s)
	}
}

// MimeType returns the MIME type for the format.
func (f Format) MimeType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/jpeg"
}

// EncodeBase64 encodes img in the given format and returns it as standard
// base64 text.
func EncodeBase64(img image.Image, format Format, quality int) (string, error) {
	var encoder imgio.Encoder
	switch format {
	case FormatPNG:
		encoder = imgio.PNGEncoder()
	case FormatJPEG, "":
		if quality < 1 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		encoder = imgio.JPEGEncoder(quality)
	default:
		return "", fmt.Errorf("%w: unknown output format %q", ErrInvalidParameter, format)
	}

	var buf bytes.Buffer
	if err := encoder(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
