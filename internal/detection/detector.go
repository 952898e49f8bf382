package detection

import (
	"fmt"
	"image"

	"github.com/ironsheep/corner-tools-mcp/internal/imaging"
)

// Detector pairs a scoring function with an extractor. Harris and
// Shi-Tomasi detection are two Detectors that differ only in their Scorer.
type Detector struct {
	Scorer    Scorer
	Extractor Extractor
}

// Detection is the output of one Detector run.
type Detection struct {
	// Name is the scorer's name ("harris" or "gftt").
	Name string

	// Response is the full per-pixel score field.
	Response *imaging.ScalarField

	// Corners are the extracted corners in scan order.
	Corners []CornerPoint
}

// NewHarris returns a Harris detector with sensitivity k.
func NewHarris(k float64, e Extractor) Detector {
	return Detector{Scorer: HarrisScorer{K: k}, Extractor: e}
}

// NewShiTomasi returns a minimum-eigenvalue (GFTT) detector.
func NewShiTomasi(e Extractor) Detector {
	return Detector{Scorer: ShiTomasiScorer{}, Extractor: e}
}

// Detect scores every pixel of t and extracts corners from the result.
func (d Detector) Detect(t *StructureTensor) (*Detection, error) {
	if d.Scorer == nil {
		return nil, fmt.Errorf("%w: detector has no scorer", imaging.ErrInvalidParameter)
	}
	response, err := Response(t, d.Scorer)
	if err != nil {
		return nil, err
	}
	corners, err := d.Extractor.Extract(response)
	if err != nil {
		return nil, fmt.Errorf("%s extraction: %w", d.Scorer.Name(), err)
	}
	return &Detection{
		Name:     d.Scorer.Name(),
		Response: response,
		Corners:  corners,
	}, nil
}

// Points converts corners to image points for drawing.
func Points(corners []CornerPoint) []image.Point {
	pts := make([]image.Point, len(corners))
	for i, c := range corners {
		pts[i] = c.Point()
	}
	return pts
}
