package imaging

import "fmt"

// Smooth applies a separable Gaussian blur to a grayscale raster.
//
// Parameters:
//   - gray: Single-channel source raster.
//   - size: Kernel size in pixels (odd, e.g. 5).
//   - sigma: Gaussian standard deviation (e.g. 1.4).
//   - workers: Maximum number of row bands processed concurrently.
//
// Returns the blurred image as a float field in [0,255]. Use ScalarField.Gray
// for a displayable raster; later stages read the float values.
//
// Border pixels use clamped (replicated) edge values, which affects the first
// and last size/2 rows and columns.
func Smooth(gray *Raster, size int, sigma float64, workers int) (*ScalarField, error) {
	if gray == nil || gray.Channels != 1 {
		return nil, fmt.Errorf("%w: smoothing requires a single-channel raster", ErrInvalidRaster)
	}
	kernel, err := GaussianKernel(size, sigma)
	if err != nil {
		return nil, err
	}
	return ConvolveSeparable(gray.Field(), kernel, workers), nil
}
