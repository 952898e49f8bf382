package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
	"github.com/fogleman/gg"
)

// MarkerSet is a group of pixel locations drawn in one color.
type MarkerSet struct {
	Points []image.Point
	Color  color.Color
}

// Overlay draws filled circular markers onto a copy of base.
//
// Sets are drawn in the order given, so where markers coincide the last set
// is the one visible on top. The base image is never modified and is
// expected to have its origin at (0,0). A radius below 1 is treated as 1.
func Overlay(base image.Image, radius float64, sets ...MarkerSet) *image.RGBA {
	out := clone.AsRGBA(base)
	if radius < 1 {
		radius = 1
	}

	dc := gg.NewContextForRGBA(out)
	for _, set := range sets {
		if len(set.Points) == 0 {
			continue
		}
		dc.SetColor(set.Color)
		for _, p := range set.Points {
			// Pixel centers sit at +0.5 in gg's continuous coordinates.
			dc.DrawCircle(float64(p.X)+0.5, float64(p.Y)+0.5, radius)
		}
		dc.Fill()
	}
	return out
}
