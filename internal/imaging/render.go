package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
)

// Rescale maps field values linearly so that lo becomes 0 and hi becomes
// 255, then rounds and clamps into an 8-bit grayscale image.
//
// If hi <= lo the mapping is degenerate and every pixel is 0.
func Rescale(f *ScalarField, lo, hi float64) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	if hi <= lo {
		return g
	}
	scale := 255 / (hi - lo)
	for i, v := range f.Data {
		g.Pix[i] = quantize((v - lo) * scale)
	}
	return g
}

// RescaleMinMax stretches the field's own value range onto [0,255]. A
// constant field renders as all zero.
func RescaleMinMax(f *ScalarField) *image.Gray {
	if len(f.Data) == 0 {
		return image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	}
	return Rescale(f, floats.Min(f.Data), floats.Max(f.Data))
}

// RenderMagnitude renders gradient magnitude saturated to [0,255]. Values
// above 255 (strong Sobel responses) clip to white.
func RenderMagnitude(mag *ScalarField) *image.Gray {
	return Rescale(mag, 0, 255)
}

// RenderAngle maps an angle field in degrees from the fixed range
// [-180,180] onto [0,255]. Flat pixels (atan2(0,0) = 0) render mid-gray.
func RenderAngle(angle *ScalarField) *image.Gray {
	return Rescale(angle, -180, 180)
}

// RenderAngleHSV renders gradient direction as hue and gradient strength as
// value. Magnitude is normalized by its maximum; flat regions render black.
func RenderAngleHSV(angle, mag *ScalarField) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, angle.Width, angle.Height))
	maxMag := mag.Max()
	for i, deg := range angle.Data {
		hue := deg
		if hue < 0 {
			hue += 360
		}
		var v float64
		if maxMag > 0 {
			v = mag.Data[i] / maxMag
		}
		r, g, b := colorful.Hsv(hue, 1, v).Clamped().RGB255()
		out.Pix[i*4] = r
		out.Pix[i*4+1] = g
		out.Pix[i*4+2] = b
		out.Pix[i*4+3] = 0xff
	}
	return out
}

// ParseColor parses a hex color such as "#FF0000" or "#f00" into an opaque
// RGBA color.
func ParseColor(hex string) (color.RGBA, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("%w: empty color string", ErrInvalidParameter)
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: color %q: %v", ErrInvalidParameter, hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}
