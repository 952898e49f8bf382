package detection

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ironsheep/corner-tools-mcp/internal/imaging"
)

// ErrNonFinite is returned when a response field contains NaN or Inf.
var ErrNonFinite = errors.New("non-finite response")

// CornerPoint is a detected corner. X is the column and Y the row, both
// 0-based from the top-left; Score is the response value that qualified it.
type CornerPoint struct {
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Score float64 `json:"score"`
}

// Point returns the corner location as an image.Point.
func (c CornerPoint) Point() image.Point { return image.Point{X: c.X, Y: c.Y} }

// Extractor selects corners from a response field by relative thresholding
// and non-maximum suppression.
type Extractor struct {
	// Threshold is the fraction of the field maximum a pixel must reach to
	// be a candidate, in [0,1].
	Threshold float64

	// MinDistance is the suppression radius in pixels. No two returned
	// corners lie within this Euclidean distance of each other.
	MinDistance int

	// MaxCorners caps the result to the strongest corners. Zero means no
	// cap.
	MaxCorners int
}

// Validate checks that the extractor settings are usable.
func (e Extractor) Validate() error {
	if math.IsNaN(e.Threshold) || e.Threshold < 0 || e.Threshold > 1 {
		return fmt.Errorf("%w: threshold %g must be within [0,1]", imaging.ErrInvalidParameter, e.Threshold)
	}
	if e.MinDistance < 1 {
		return fmt.Errorf("%w: min distance %d must be at least 1", imaging.ErrInvalidParameter, e.MinDistance)
	}
	if e.MaxCorners < 0 {
		return fmt.Errorf("%w: max corners %d must not be negative", imaging.ErrInvalidParameter, e.MaxCorners)
	}
	return nil
}

// Extract returns the corners of field in row-major scan order.
//
// # Algorithm
//
//  1. Find the global maximum response. If it is not positive the field has
//     no corners and an empty slice is returned.
//  2. Candidates are pixels whose response is positive and at least
//     Threshold × max.
//  3. A candidate survives if its response is strictly greater than every
//     other candidate within MinDistance. Equal responses are resolved in
//     favor of the candidate that comes first in row-major order.
//  4. If MaxCorners is set and exceeded, only the strongest survivors are
//     kept (ties again by scan order), still reported in scan order.
//
// Raising Threshold never increases the number of corners returned.
func (e Extractor) Extract(field *imaging.ScalarField) ([]CornerPoint, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	corners := make([]CornerPoint, 0)
	maxVal := field.Max()
	if !(maxVal > 0) {
		return corners, nil
	}
	cut := e.Threshold * maxVal

	width, height := field.Width, field.Height
	candidate := func(v float64) bool { return v > 0 && v >= cut }

	r := e.MinDistance
	r2 := r * r
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := field.Data[y*width+x]
			if !candidate(v) {
				continue
			}
			if e.dominated(field, x, y, v, r, r2, candidate) {
				continue
			}
			corners = append(corners, CornerPoint{X: x, Y: y, Score: v})
		}
	}

	if e.MaxCorners > 0 && len(corners) > e.MaxCorners {
		corners = strongest(corners, e.MaxCorners)
	}
	return corners, nil
}

// dominated reports whether another candidate within radius r of (x, y)
// beats the value v, either by being larger or by being equal and earlier
// in scan order.
func (e Extractor) dominated(field *imaging.ScalarField, x, y int, v float64, r, r2 int, candidate func(float64) bool) bool {
	width, height := field.Width, field.Height
	for dy := -r; dy <= r; dy++ {
		ny := y + dy
		if ny < 0 || ny >= height {
			continue
		}
		for dx := -r; dx <= r; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if dx*dx+dy*dy > r2 {
				continue
			}
			nx := x + dx
			if nx < 0 || nx >= width {
				continue
			}
			q := field.Data[ny*width+nx]
			if !candidate(q) {
				continue
			}
			if q > v {
				return true
			}
			// Equal responses: the earlier pixel in row-major order wins.
			if q == v && (dy < 0 || (dy == 0 && dx < 0)) {
				return true
			}
		}
	}
	return false
}

// strongest keeps the n highest-scoring corners and returns them in their
// original order.
func strongest(corners []CornerPoint, n int) []CornerPoint {
	idx := make([]int, len(corners))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return corners[idx[a]].Score > corners[idx[b]].Score
	})
	idx = idx[:n]
	sort.Ints(idx)

	out := make([]CornerPoint, n)
	for i, j := range idx {
		out[i] = corners[j]
	}
	return out
}
