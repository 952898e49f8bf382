package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/corner-tools-mcp/internal/detection"
	"github.com/ironsheep/corner-tools-mcp/internal/imaging"
)

// Result holds every artifact of one Process call. It is built once and
// never modified afterwards; nothing in it is shared with other calls.
type Result struct {
	// Rendered stages, in display order.
	Original        image.Image
	Grayscale       image.Image
	Smooth          image.Image
	Gradient        image.Image
	Harris          image.Image
	Angle           image.Image
	HarrisCorners   image.Image
	GFTTCorners     image.Image
	CombinedCorners image.Image

	// Numeric artifacts behind the renderings.
	SmoothField    *imaging.ScalarField
	Gradients      imaging.GradientPair
	HarrisResponse *imaging.ScalarField
	GFTTResponse   *imaging.ScalarField
	HarrisPoints   []detection.CornerPoint
	GFTTPoints     []detection.CornerPoint
}

// Width returns the processed image width.
func (r *Result) Width() int { return r.Original.Bounds().Dx() }

// Height returns the processed image height.
func (r *Result) Height() int { return r.Original.Bounds().Dy() }

// Detections is the output of Detect: corner sets without renderings.
type Detections struct {
	Width  int
	Height int
	Harris []detection.CornerPoint
	GFTT   []detection.CornerPoint
}

// analysis carries the numeric stages shared by Process and Detect.
type analysis struct {
	raster    *imaging.Raster
	gray      *imaging.Raster
	smooth    *imaging.ScalarField
	grads     imaging.GradientPair
	magnitude *imaging.ScalarField
	angle     *imaging.ScalarField
	harris    *detection.Detection
	gftt      *detection.Detection
}

// Process runs the corner detection pipeline on img:
//
//	input -> grayscale -> smoothed -> {gx, gy} -> {magnitude, angle}
//	      -> structure tensor -> {harris, gftt} responses -> corners -> overlays
//
// Parameters are validated before any work is done. Process is a pure
// function of its arguments: it reads no global state, and the caller's
// image is never modified. ctx is checked between stages; on cancellation
// the context error is returned and no result is produced.
//
// # Errors
//
//   - ErrUnsupportedParameters: p fails Validate
//   - ErrInvalidInput: nil, zero-area, or unconvertible image
//   - ErrInternalComputation: non-finite values in a response field
//
// A flat image is not an error; it yields empty corner sets.
func Process(ctx context.Context, img image.Image, p Params) (*Result, error) {
	a, err := analyze(ctx, img, p)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	original := a.raster.Image()
	harrisMarkers := imaging.MarkerSet{Points: detection.Points(a.harris.Corners), Color: p.HarrisColor}
	gfttMarkers := imaging.MarkerSet{Points: detection.Points(a.gftt.Corners), Color: p.GFTTColor}

	var angleImage image.Image
	if p.AngleColormap == ColormapHSV {
		angleImage = imaging.RenderAngleHSV(a.angle, a.magnitude)
	} else {
		angleImage = imaging.RenderAngle(a.angle)
	}

	return &Result{
		Original:        original,
		Grayscale:       a.gray.Image(),
		Smooth:          a.smooth.Gray(),
		Gradient:        imaging.RenderMagnitude(a.magnitude),
		Harris:          imaging.RescaleMinMax(a.harris.Response),
		Angle:           angleImage,
		HarrisCorners:   imaging.Overlay(original, p.MarkerRadius, harrisMarkers),
		GFTTCorners:     imaging.Overlay(original, p.MarkerRadius, gfttMarkers),
		CombinedCorners: imaging.Overlay(original, p.MarkerRadius, harrisMarkers, gfttMarkers),

		SmoothField:    a.smooth,
		Gradients:      a.grads,
		HarrisResponse: a.harris.Response,
		GFTTResponse:   a.gftt.Response,
		HarrisPoints:   a.harris.Corners,
		GFTTPoints:     a.gftt.Corners,
	}, nil
}

// Detect runs the pipeline up to corner extraction and skips rendering. The
// corners are identical to those of Process with the same arguments.
func Detect(ctx context.Context, img image.Image, p Params) (*Detections, error) {
	a, err := analyze(ctx, img, p)
	if err != nil {
		return nil, err
	}
	return &Detections{
		Width:  a.raster.Width,
		Height: a.raster.Height,
		Harris: a.harris.Corners,
		GFTT:   a.gftt.Corners,
	}, nil
}

func analyze(ctx context.Context, img image.Image, p Params) (*analysis, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: no image provided", ErrInvalidInput)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: zero-area image %dx%d", ErrInvalidInput, b.Dx(), b.Dy())
	}
	workers := p.workers()

	if p.ResizeWidth > 0 && p.ResizeHeight > 0 {
		resized, err := imaging.Resize(img, p.ResizeWidth, p.ResizeHeight)
		if err != nil {
			return nil, classify("resize", err)
		}
		img = resized
	}

	a := &analysis{}
	var err error
	if a.raster, err = imaging.RasterFromImage(img); err != nil {
		return nil, classify("load", err)
	}
	if a.gray, err = imaging.Grayscale(a.raster); err != nil {
		return nil, classify("grayscale", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.smooth, err = imaging.Smooth(a.gray, p.SmoothKernelSize, p.SmoothSigma, workers); err != nil {
		return nil, classify("smooth", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.grads = imaging.Sobel(a.smooth, workers)
	a.magnitude = a.grads.Magnitude()
	a.angle = a.grads.Angle()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tensor, err := detection.ComputeStructureTensor(a.grads, p.TensorWindow, p.TensorSigma, workers)
	if err != nil {
		return nil, classify("structure tensor", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.harris, err = detection.NewHarris(p.HarrisK, p.Harris).Detect(tensor); err != nil {
		return nil, classify("harris", err)
	}
	if a.gftt, err = detection.NewShiTomasi(p.GFTT).Detect(tensor); err != nil {
		return nil, classify("gftt", err)
	}
	return a, nil
}
