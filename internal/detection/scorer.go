package detection

import (
	"fmt"
	"math"

	"github.com/ironsheep/corner-tools-mcp/internal/imaging"
)

// Scorer turns a local structure tensor into a scalar corner response.
// Larger values mean a stronger corner.
type Scorer interface {
	// Name identifies the scoring function in results and logs.
	Name() string

	// Score evaluates the response for M = [[sxx, sxy], [sxy, syy]].
	Score(sxx, syy, sxy float64) float64
}

// HarrisScorer computes R = det(M) - K·trace(M)².
//
// R is large and positive at corners, negative along edges, and near zero in
// flat regions.
type HarrisScorer struct {
	K float64
}

// Name returns "harris".
func (HarrisScorer) Name() string { return "harris" }

// Score implements Scorer.
func (h HarrisScorer) Score(sxx, syy, sxy float64) float64 {
	det := sxx*syy - sxy*sxy
	trace := sxx + syy
	return det - h.K*trace*trace
}

// ShiTomasiScorer scores by the smaller eigenvalue of M, the criterion used
// by "Good Features to Track". It only rewards pixels where both eigenvalues
// are large.
type ShiTomasiScorer struct{}

// Name returns "gftt".
func (ShiTomasiScorer) Name() string { return "gftt" }

// Score implements Scorer.
func (ShiTomasiScorer) Score(sxx, syy, sxy float64) float64 {
	d := sxx - syy
	return ((sxx + syy) - math.Sqrt(d*d+4*sxy*sxy)) / 2
}

// Response evaluates s at every pixel of t. Pixels in the tensor's border
// band are exactly zero.
//
// Returns an error if any score is NaN or infinite, which indicates
// non-finite gradients upstream.
func Response(t *StructureTensor, s Scorer) (*imaging.ScalarField, error) {
	out := imaging.NewScalarField(t.Width, t.Height)
	for y := t.Border; y < t.Height-t.Border; y++ {
		for x := t.Border; x < t.Width-t.Border; x++ {
			i := y*t.Width + x
			out.Data[i] = s.Score(t.Sxx[i], t.Syy[i], t.Sxy[i])
		}
	}
	if !out.Finite() {
		return nil, fmt.Errorf("%w: %s response contains non-finite values", ErrNonFinite, s.Name())
	}
	return out, nil
}
