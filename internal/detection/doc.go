// Package detection implements structure-tensor corner detectors.
//
// Both detectors in this package share one pipeline and differ only in how
// they score the local structure tensor:
//
//  1. Structure tensor: Sum the gradient products gx², gy², gx·gy over a
//     (optionally Gaussian-weighted) window around each pixel
//  2. Scoring: Reduce each 2x2 tensor to a scalar with a Scorer
//     (HarrisScorer or ShiTomasiScorer)
//  3. Extraction: Keep pixels above a fraction of the maximum response and
//     apply non-maximum suppression within a minimum distance
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward (column)
//   - Y increases downward (row)
//
// # Border Handling
//
// Pixels closer than half the tensor window to the image edge cannot
// aggregate a full window. Their tensor entries, and therefore both
// responses, are exactly zero, so they never become corners.
//
// # Determinism
//
// Extraction scans in row-major order and resolves equal responses in favor
// of the earlier pixel. The same field always yields the same corners in the
// same order.
package detection
