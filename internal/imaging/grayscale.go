package imaging

import (
	"fmt"
	"math"
)

// Grayscale reduces an RGB raster to a single luminance channel using the
// ITU-R BT.601 weights:
//
//	gray = round(0.299*R + 0.587*G + 0.114*B)
//
// A single-channel raster is returned as a copy. Any other channel count is
// rejected with ErrInvalidRaster.
func Grayscale(src *Raster) (*Raster, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil raster", ErrInvalidRaster)
	}
	out, err := NewRaster(src.Width, src.Height, 1)
	if err != nil {
		return nil, err
	}

	switch src.Channels {
	case 1:
		copy(out.Pix, src.Pix)
	case 3:
		for i, j := 0, 0; j < len(out.Pix); i, j = i+3, j+1 {
			r := float64(src.Pix[i])
			g := float64(src.Pix[i+1])
			b := float64(src.Pix[i+2])
			out.Pix[j] = quantize(math.Round(0.299*r + 0.587*g + 0.114*b))
		}
	default:
		return nil, fmt.Errorf("%w: cannot convert %d channels to grayscale", ErrInvalidRaster, src.Channels)
	}
	return out, nil
}

// Field widens a single-channel raster into a ScalarField without scaling,
// so values stay in [0,255].
func (r *Raster) Field() *ScalarField {
	f := NewScalarField(r.Width, r.Height)
	for i := range f.Data {
		f.Data[i] = float64(r.Pix[i*r.Channels])
	}
	return f
}
