package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// ErrInvalidRaster is returned when a raster cannot be built from the given
// dimensions, channel layout, or source image.
var ErrInvalidRaster = errors.New("invalid raster")

// Raster is an in-memory 8-bit pixel buffer.
//
// Pixels are stored row-major with Channels interleaved values per pixel, so
// the value of channel c at (x, y) is Pix[(y*Width+x)*Channels+c]. A Raster
// has either one channel (grayscale) or three (R, G, B). Dimensions never
// change after creation.
type Raster struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// NewRaster allocates a zeroed raster.
//
// Returns an error wrapping ErrInvalidRaster if either dimension is not
// positive or channels is not 1 or 3.
func NewRaster(width, height, channels int) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: zero-area image %dx%d", ErrInvalidRaster, width, height)
	}
	if channels != 1 && channels != 3 {
		return nil, fmt.Errorf("%w: unsupported channel count %d", ErrInvalidRaster, channels)
	}
	return &Raster{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}, nil
}

// RasterFromImage copies a decoded image into a Raster.
//
// Gray and Gray16 images become single-channel rasters; every other color
// model is reduced to 8-bit RGB with alpha discarded. The image origin is
// normalized to (0,0).
func RasterFromImage(img image.Image) (*Raster, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidRaster)
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		r, err := NewRaster(width, height, 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < height; y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(r.Pix[y*width:(y+1)*width], src.Pix[off:off+width])
		}
		return r, nil
	case *image.Gray16:
		r, err := NewRaster(width, height, 1)
		if err != nil {
			return nil, err
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r.Pix[y*width+x] = uint8(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y >> 8)
			}
		}
		return r, nil
	}

	r, err := NewRaster(width, height, 3)
	if err != nil {
		return nil, err
	}

	// Color values are taken unpremultiplied, so translucent pixels keep
	// their stored RGB instead of fading toward black.
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < height; y++ {
			row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
			for x := 0; x < width; x++ {
				copy(r.Pix[(y*width+x)*3:][:3], row[x*4:x*4+3])
			}
		}
		return r, nil
	}

	i := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			r.Pix[i] = c.R
			r.Pix[i+1] = c.G
			r.Pix[i+2] = c.B
			i += 3
		}
	}
	return r, nil
}

// Image returns the raster as a standard library image: *image.Gray for one
// channel, *image.RGBA (fully opaque) for three.
func (r *Raster) Image() image.Image {
	rect := image.Rect(0, 0, r.Width, r.Height)
	if r.Channels == 1 {
		g := image.NewGray(rect)
		copy(g.Pix, r.Pix)
		return g
	}
	out := image.NewRGBA(rect)
	for i, j := 0, 0; i < len(r.Pix); i, j = i+3, j+4 {
		out.Pix[j] = r.Pix[i]
		out.Pix[j+1] = r.Pix[i+1]
		out.Pix[j+2] = r.Pix[i+2]
		out.Pix[j+3] = 0xff
	}
	return out
}

// ScalarField holds one float64 value per pixel, row-major.
type ScalarField struct {
	Width  int
	Height int
	Data   []float64
}

// NewScalarField allocates a zeroed field.
func NewScalarField(width, height int) *ScalarField {
	return &ScalarField{
		Width:  width,
		Height: height,
		Data:   make([]float64, width*height),
	}
}

// At returns the value at column x, row y. No bounds checking is performed.
func (f *ScalarField) At(x, y int) float64 {
	return f.Data[y*f.Width+x]
}

// Max returns the largest value in the field. An empty field returns 0.
func (f *ScalarField) Max() float64 {
	if len(f.Data) == 0 {
		return 0
	}
	m := f.Data[0]
	for _, v := range f.Data[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Finite reports whether the field contains no NaN or infinite values.
func (f *ScalarField) Finite() bool {
	for _, v := range f.Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Gray quantizes the field into an 8-bit grayscale image by rounding and
// clamping each value to [0,255].
func (f *ScalarField) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for i, v := range f.Data {
		g.Pix[i] = quantize(v)
	}
	return g
}

// GradientPair is the horizontal (X) and vertical (Y) derivative of an
// image. Both fields share the same dimensions.
type GradientPair struct {
	X *ScalarField
	Y *ScalarField
}

// Magnitude returns sqrt(gx² + gy²) per pixel.
func (g GradientPair) Magnitude() *ScalarField {
	out := NewScalarField(g.X.Width, g.X.Height)
	for i := range out.Data {
		gx, gy := g.X.Data[i], g.Y.Data[i]
		out.Data[i] = math.Sqrt(gx*gx + gy*gy)
	}
	return out
}

// Angle returns atan2(gy, gx) per pixel in degrees, in the range
// [-180, 180].
func (g GradientPair) Angle() *ScalarField {
	out := NewScalarField(g.X.Width, g.X.Height)
	for i := range out.Data {
		out.Data[i] = math.Atan2(g.Y.Data[i], g.X.Data[i]) * 180 / math.Pi
	}
	return out
}

// quantize rounds v to the nearest integer and clamps it to [0,255].
func quantize(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}
