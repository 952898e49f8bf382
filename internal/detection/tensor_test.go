package detection

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/corner-tools-mcp/internal/imaging"
)

func randomGradients(width, height int, seed int64) imaging.GradientPair {
	rng := rand.New(rand.NewSource(seed))
	g := imaging.GradientPair{
		X: imaging.NewScalarField(width, height),
		Y: imaging.NewScalarField(width, height),
	}
	for i := range g.X.Data {
		g.X.Data[i] = rng.Float64()*200 - 100
		g.Y.Data[i] = rng.Float64()*200 - 100
	}
	return g
}

func TestComputeStructureTensor_BorderIsZero(t *testing.T) {
	g := randomGradients(20, 15, 1)

	for _, window := range []int{3, 5, 7} {
		tensor, err := ComputeStructureTensor(g, window, 1.0, 1)
		require.NoError(t, err)
		require.Equal(t, window/2, tensor.Border)

		for y := 0; y < tensor.Height; y++ {
			for x := 0; x < tensor.Width; x++ {
				i := y*tensor.Width + x
				if tensor.Inside(x, y) {
					assert.Greater(t, tensor.Sxx[i], 0.0, "window %d: Sxx(%d,%d)", window, x, y)
					continue
				}
				assert.Zero(t, tensor.Sxx[i], "window %d: Sxx(%d,%d)", window, x, y)
				assert.Zero(t, tensor.Syy[i], "window %d: Syy(%d,%d)", window, x, y)
				assert.Zero(t, tensor.Sxy[i], "window %d: Sxy(%d,%d)", window, x, y)
			}
		}
	}
}

func TestComputeStructureTensor_BoxWindow(t *testing.T) {
	g := imaging.GradientPair{
		X: imaging.NewScalarField(9, 9),
		Y: imaging.NewScalarField(9, 9),
	}
	for i := range g.X.Data {
		g.X.Data[i] = 2
		g.Y.Data[i] = -3
	}

	tensor, err := ComputeStructureTensor(g, 3, 0, 1)
	require.NoError(t, err)

	i := 4*9 + 4
	assert.InDelta(t, 4.0, tensor.Sxx[i], 1e-12)
	assert.InDelta(t, 9.0, tensor.Syy[i], 1e-12)
	assert.InDelta(t, -6.0, tensor.Sxy[i], 1e-12)
}

func TestComputeStructureTensor_Invalid(t *testing.T) {
	g := randomGradients(8, 8, 2)

	_, err := ComputeStructureTensor(g, 4, 1.0, 1)
	assert.ErrorIs(t, err, imaging.ErrInvalidParameter)

	mismatched := imaging.GradientPair{X: g.X, Y: imaging.NewScalarField(7, 8)}
	_, err = ComputeStructureTensor(mismatched, 3, 1.0, 1)
	assert.ErrorIs(t, err, imaging.ErrInvalidRaster)
}

func TestComputeStructureTensor_WorkersDeterministic(t *testing.T) {
	g := randomGradients(33, 47, 3)

	seq, err := ComputeStructureTensor(g, 5, 1.0, 1)
	require.NoError(t, err)
	par, err := ComputeStructureTensor(g, 5, 1.0, 6)
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}
