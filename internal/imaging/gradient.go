package imaging

// Sobel estimates the horizontal and vertical derivatives of a field with
// the 3x3 Sobel operators:
//
//	Gx = [-1 0 1; -2 0 2; -1 0 1]
//	Gy = [-1 -2 -1; 0 0 0; 1 2 1]
//
// Positive Gx means intensity increases to the right, positive Gy means it
// increases downward. Border pixels use clamped edge values, matching
// Smooth.
//
// Each operator is evaluated as a weighted sum of differences, so a constant
// field yields exactly zero everywhere.
func Sobel(src *ScalarField, workers int) GradientPair {
	width, height := src.Width, src.Height
	gx := NewScalarField(width, height)
	gy := NewScalarField(width, height)

	parallelRows(height, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			up := src.Data[clamp(y-1, 0, height-1)*width:][:width]
			mid := src.Data[y*width:][:width]
			down := src.Data[clamp(y+1, 0, height-1)*width:][:width]
			for x := 0; x < width; x++ {
				l := clamp(x-1, 0, width-1)
				r := clamp(x+1, 0, width-1)

				gx.Data[y*width+x] = (up[r] - up[l]) + 2*(mid[r]-mid[l]) + (down[r] - down[l])
				gy.Data[y*width+x] = (down[l] - up[l]) + 2*(down[x]-up[x]) + (down[r] - up[r])
			}
		}
	})

	return GradientPair{X: gx, Y: gy}
}
