package pipeline

import (
	"fmt"
	"image"

	"github.com/ironsheep/corner-tools-mcp/internal/imaging"
)

// Response is the wire form of a Result: nine independently encoded images
// as base64 strings. Either all nine are present or Encode returns an
// error.
type Response struct {
	Original        string `json:"original"`
	Grayscale       string `json:"grayscale"`
	Smooth          string `json:"smooth"`
	Gradient        string `json:"gradient"`
	Harris          string `json:"harris"`
	Angle           string `json:"angle"`
	HarrisCorners   string `json:"harris_corners"`
	GFTTCorners     string `json:"gftt_corners"`
	CombinedCorners string `json:"combined_corners"`
}

// EncodeOptions selects the image encoding for Encode.
type EncodeOptions struct {
	// Format is imaging.FormatJPEG (default) or imaging.FormatPNG.
	Format imaging.Format
	// Quality is the JPEG quality, 1-100. Out-of-range values use
	// imaging.DefaultJPEGQuality.
	Quality int
}

// Encode renders every image of r with the chosen format.
func Encode(r *Result, opts EncodeOptions) (*Response, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil result", ErrInternalComputation)
	}
	if opts.Format == "" {
		opts.Format = imaging.FormatJPEG
	}

	resp := &Response{}
	stages := []struct {
		name string
		img  image.Image
		dst  *string
	}{
		{"original", r.Original, &resp.Original},
		{"grayscale", r.Grayscale, &resp.Grayscale},
		{"smooth", r.Smooth, &resp.Smooth},
		{"gradient", r.Gradient, &resp.Gradient},
		{"harris", r.Harris, &resp.Harris},
		{"angle", r.Angle, &resp.Angle},
		{"harris_corners", r.HarrisCorners, &resp.HarrisCorners},
		{"gftt_corners", r.GFTTCorners, &resp.GFTTCorners},
		{"combined_corners", r.CombinedCorners, &resp.CombinedCorners},
	}

	for _, s := range stages {
		if s.img == nil {
			return nil, fmt.Errorf("%w: missing %s image", ErrInternalComputation, s.name)
		}
		encoded, err := imaging.EncodeBase64(s.img, opts.Format, opts.Quality)
		if err != nil {
			return nil, classify("encode "+s.name, err)
		}
		*s.dst = encoded
	}
	return resp, nil
}
