package imaging

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidParameter is returned for kernel sizes, sigmas, and similar
// numeric settings outside their supported range.
var ErrInvalidParameter = errors.New("invalid parameter")

// GaussianKernel builds a normalized 1D Gaussian kernel.
//
// Parameters:
//   - size: Number of taps. Must be odd and positive.
//   - sigma: Standard deviation in pixels. Must be positive.
//
// The taps sum to 1 so that convolving a constant field returns the same
// constant.
func GaussianKernel(size int, sigma float64) ([]float64, error) {
	if size <= 0 || size%2 == 0 {
		return nil, fmt.Errorf("%w: kernel size %d must be a positive odd integer", ErrInvalidParameter, size)
	}
	if sigma <= 0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("%w: sigma %g must be positive", ErrInvalidParameter, sigma)
	}

	kernel := make([]float64, size)
	half := size / 2
	var sum float64
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-(d * d) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel, nil
}

// BoxKernel builds a uniform kernel of the given odd size whose taps sum to 1.
func BoxKernel(size int) ([]float64, error) {
	if size <= 0 || size%2 == 0 {
		return nil, fmt.Errorf("%w: kernel size %d must be a positive odd integer", ErrInvalidParameter, size)
	}
	kernel := make([]float64, size)
	for i := range kernel {
		kernel[i] = 1 / float64(size)
	}
	return kernel, nil
}

// ConvolveSeparable applies a symmetric 1D kernel horizontally and then
// vertically.
//
// Border pixels use clamped (replicated) edge values, the same policy as
// Sobel. Each output pixel is summed in a fixed tap order, so the result does
// not depend on the number of workers.
func ConvolveSeparable(src *ScalarField, kernel []float64, workers int) *ScalarField {
	width, height := src.Width, src.Height
	half := len(kernel) / 2

	tmp := NewScalarField(width, height)
	parallelRows(height, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := src.Data[y*width : (y+1)*width]
			for x := 0; x < width; x++ {
				var sum float64
				for k, w := range kernel {
					sum += w * row[clamp(x+k-half, 0, width-1)]
				}
				tmp.Data[y*width+x] = sum
			}
		}
	})

	out := NewScalarField(width, height)
	parallelRows(height, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				var sum float64
				for k, w := range kernel {
					sum += w * tmp.Data[clamp(y+k-half, 0, height-1)*width+x]
				}
				out.Data[y*width+x] = sum
			}
		}
	})
	return out
}

// parallelRows splits [0, height) into contiguous bands and runs fn on each
// band, at most workers at a time. Bands never overlap, so fn may write its
// rows of a shared output buffer without locking.
func parallelRows(height, workers int, fn func(y0, y1 int)) {
	if workers <= 1 || height < 2*workers {
		fn(0, height)
		return
	}

	band := (height + workers - 1) / workers
	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < height; y0 += band {
		y0 := y0
		y1 := min(y0+band, height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	// Band funcs never fail; Wait only joins them.
	_ = g.Wait()
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
