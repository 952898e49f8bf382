// Package imaging provides the raster and filter stages of the corner
// pipeline, plus image loading and encoding for the MCP server.
//
// The stages work on two buffer types:
//   - Raster: 8-bit pixels, one (gray) or three (RGB) interleaved channels
//   - ScalarField: one float64 per pixel, used for every intermediate result
//
// Processing order is Grayscale, Smooth, Sobel, and then the renderers
// (Rescale, RenderMagnitude, RenderAngle, Overlay) that turn fields back into
// displayable images.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// Rasters and fields always have their origin at (0,0), whatever the bounds
// of the decoded source image.
//
// # Border Handling
//
// Convolutions (Smooth, Sobel, ConvolveSeparable) read clamped edge pixels
// outside the image, so a constant image stays constant after smoothing and
// has exactly zero gradient everywhere.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Every other function
// allocates its output and never modifies its inputs. The workers argument
// splits a convolution into row bands; the result is bit-identical for any
// worker count.
//
// # Error Handling
//
// Functions return errors wrapping one of two sentinels:
//   - ErrInvalidRaster: unreadable files, corrupt payloads, zero-area or
//     unsupported channel layouts
//   - ErrInvalidParameter: kernel sizes, sigmas, colors, or formats out of
//     range
package imaging
