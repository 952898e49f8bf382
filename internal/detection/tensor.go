package detection

import (
	"fmt"

	"github.com/ironsheep/corner-tools-mcp/internal/imaging"
)

// StructureTensor holds the per-pixel sums of gradient products over a local
// window:
//
//	Sxx = Σ gx²,  Syy = Σ gy²,  Sxy = Σ gx·gy
//
// which form the 2x2 second-moment matrix M = [[Sxx, Sxy], [Sxy, Syy]].
// Pixels closer than Border to any image edge cannot aggregate a full window
// and are left at zero.
type StructureTensor struct {
	Width  int
	Height int
	Border int
	Sxx    []float64
	Syy    []float64
	Sxy    []float64
}

// ComputeStructureTensor aggregates gradient products over a window x window
// neighborhood of every pixel.
//
// Parameters:
//   - g: Horizontal and vertical derivatives of the smoothed image.
//   - window: Odd neighborhood size, e.g. 3 or 5.
//   - sigma: Gaussian weighting of the window. Zero selects uniform (box)
//     weights.
//   - workers: Maximum number of row bands processed concurrently.
func ComputeStructureTensor(g imaging.GradientPair, window int, sigma float64, workers int) (*StructureTensor, error) {
	if g.X == nil || g.Y == nil || g.X.Width != g.Y.Width || g.X.Height != g.Y.Height {
		return nil, fmt.Errorf("%w: gradient fields must share dimensions", imaging.ErrInvalidRaster)
	}

	var kernel []float64
	var err error
	if sigma == 0 {
		kernel, err = imaging.BoxKernel(window)
	} else {
		kernel, err = imaging.GaussianKernel(window, sigma)
	}
	if err != nil {
		return nil, fmt.Errorf("structure tensor window: %w", err)
	}

	width, height := g.X.Width, g.X.Height
	xx := imaging.NewScalarField(width, height)
	yy := imaging.NewScalarField(width, height)
	xy := imaging.NewScalarField(width, height)
	for i := range xx.Data {
		gx, gy := g.X.Data[i], g.Y.Data[i]
		xx.Data[i] = gx * gx
		yy.Data[i] = gy * gy
		xy.Data[i] = gx * gy
	}

	t := &StructureTensor{
		Width:  width,
		Height: height,
		Border: window / 2,
		Sxx:    imaging.ConvolveSeparable(xx, kernel, workers).Data,
		Syy:    imaging.ConvolveSeparable(yy, kernel, workers).Data,
		Sxy:    imaging.ConvolveSeparable(xy, kernel, workers).Data,
	}
	t.zeroBorder()
	return t, nil
}

// Inside reports whether (x, y) lies outside the unreliable border band.
func (t *StructureTensor) Inside(x, y int) bool {
	return x >= t.Border && y >= t.Border && x < t.Width-t.Border && y < t.Height-t.Border
}

func (t *StructureTensor) zeroBorder() {
	for y := 0; y < t.Height; y++ {
		for x := 0; x < t.Width; x++ {
			if t.Inside(x, y) {
				continue
			}
			i := y*t.Width + x
			t.Sxx[i], t.Syy[i], t.Sxy[i] = 0, 0, 0
		}
	}
}
