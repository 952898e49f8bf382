package pipeline

import (
	"fmt"
	"image/color"
	"math"
	"runtime"

	"github.com/ironsheep/corner-tools-mcp/internal/detection"
)

// Angle map renderings.
const (
	// ColormapGray maps direction linearly onto gray levels.
	ColormapGray = "gray"
	// ColormapHSV encodes direction as hue and gradient strength as value.
	ColormapHSV = "hsv"
)

// Params configures one Process call. Start from DefaultParams and override
// individual fields.
type Params struct {
	// SmoothKernelSize is the Gaussian kernel size (odd).
	SmoothKernelSize int
	// SmoothSigma is the Gaussian standard deviation.
	SmoothSigma float64

	// TensorWindow is the structure tensor aggregation window (odd, >= 3).
	TensorWindow int
	// TensorSigma weights the window; 0 means uniform weights.
	TensorSigma float64

	// HarrisK is the Harris sensitivity constant.
	HarrisK float64
	// Harris configures extraction from the Harris response.
	Harris detection.Extractor
	// GFTT configures extraction from the minimum-eigenvalue response.
	GFTT detection.Extractor

	// MarkerRadius is the radius of the filled circle drawn per corner.
	MarkerRadius float64
	// HarrisColor and GFTTColor are the marker colors. In the combined
	// overlay Harris markers are drawn first and GFTT markers on top.
	HarrisColor color.RGBA
	GFTTColor   color.RGBA
	// AngleColormap is ColormapGray or ColormapHSV.
	AngleColormap string

	// ResizeWidth and ResizeHeight rescale the input before processing when
	// both are positive. Zero leaves the input size unchanged.
	ResizeWidth  int
	ResizeHeight int

	// Workers bounds row-band parallelism inside a stage. Zero uses
	// GOMAXPROCS; 1 runs sequentially. Results are identical either way.
	Workers int
}

// DefaultParams returns the default configuration: 5x5 Gaussian with
// sigma 1.4, a 5x5 Gaussian-weighted tensor window, Harris k = 0.04 with a
// 10% threshold, GFTT with a 1% quality level and at most 1000 corners, and
// red/green markers of radius 5.
func DefaultParams() Params {
	return Params{
		SmoothKernelSize: 5,
		SmoothSigma:      1.4,
		TensorWindow:     5,
		TensorSigma:      1.0,
		HarrisK:          0.04,
		Harris: detection.Extractor{
			Threshold:   0.1,
			MinDistance: 5,
		},
		GFTT: detection.Extractor{
			Threshold:   0.01,
			MinDistance: 5,
			MaxCorners:  1000,
		},
		MarkerRadius:  5,
		HarrisColor:   color.RGBA{R: 255, A: 255},
		GFTTColor:     color.RGBA{G: 255, A: 255},
		AngleColormap: ColormapGray,
	}
}

// Validate reports the first unsupported setting, wrapped in
// ErrUnsupportedParameters.
func (p Params) Validate() error {
	bad := func(format string, args ...interface{}) error {
		return fmt.Errorf("%w: %s", ErrUnsupportedParameters, fmt.Sprintf(format, args...))
	}

	if p.SmoothKernelSize <= 0 || p.SmoothKernelSize%2 == 0 {
		return bad("smooth kernel size %d must be a positive odd integer", p.SmoothKernelSize)
	}
	if !(p.SmoothSigma > 0) || math.IsInf(p.SmoothSigma, 0) {
		return bad("smooth sigma %g must be positive", p.SmoothSigma)
	}
	if p.TensorWindow < 3 || p.TensorWindow%2 == 0 {
		return bad("tensor window %d must be an odd integer >= 3", p.TensorWindow)
	}
	if p.TensorSigma < 0 || math.IsNaN(p.TensorSigma) || math.IsInf(p.TensorSigma, 0) {
		return bad("tensor sigma %g must be zero or positive", p.TensorSigma)
	}
	if !(p.HarrisK > 0 && p.HarrisK < 0.25) {
		return bad("harris k %g must be within (0, 0.25)", p.HarrisK)
	}
	if err := p.Harris.Validate(); err != nil {
		return bad("harris: %v", err)
	}
	if err := p.GFTT.Validate(); err != nil {
		return bad("gftt: %v", err)
	}
	if !(p.MarkerRadius >= 1) || math.IsInf(p.MarkerRadius, 0) {
		return bad("marker radius %g must be at least 1", p.MarkerRadius)
	}
	if p.AngleColormap != ColormapGray && p.AngleColormap != ColormapHSV {
		return bad("angle colormap %q must be %q or %q", p.AngleColormap, ColormapGray, ColormapHSV)
	}
	if p.ResizeWidth < 0 || p.ResizeHeight < 0 || (p.ResizeWidth > 0) != (p.ResizeHeight > 0) {
		return bad("resize %dx%d must be both zero or both positive", p.ResizeWidth, p.ResizeHeight)
	}
	if p.Workers < 0 {
		return bad("workers %d must not be negative", p.Workers)
	}
	return nil
}

func (p Params) workers() int {
	if p.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return p.Workers
}
