package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Resize scales img to exactly width x height using bilinear filtering.
//
// Aspect ratio is not preserved. Both dimensions must be positive. An image
// that already has the target size is returned as is.
func Resize(img image.Image, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: resize target %dx%d must be positive", ErrInvalidParameter, width, height)
	}
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img, nil
	}
	return imaging.Resize(img, width, height, imaging.Linear), nil
}
