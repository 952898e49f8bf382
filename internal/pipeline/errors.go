package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ironsheep/corner-tools-mcp/internal/detection"
	"github.com/ironsheep/corner-tools-mcp/internal/imaging"
)

// Error kinds returned by Process. Use errors.Is to test for them.
var (
	// ErrInvalidInput covers unreadable or corrupt images, unsupported
	// channel layouts, and zero-area images.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedParameters covers out-of-range settings such as an even
	// kernel size or a threshold outside [0,1].
	ErrUnsupportedParameters = errors.New("unsupported parameters")

	// ErrInternalComputation indicates a numeric domain violation, such as
	// NaN propagating into a response field. It does not occur for valid
	// input in correct code.
	ErrInternalComputation = errors.New("internal computation error")
)

// classify maps a stage error onto one of the pipeline error kinds. Context
// cancellation is passed through unchanged.
func classify(stage string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnsupportedParameters), errors.Is(err, ErrInternalComputation):
		return err
	case errors.Is(err, imaging.ErrInvalidRaster):
		return fmt.Errorf("%w: %s: %v", ErrInvalidInput, stage, err)
	case errors.Is(err, imaging.ErrInvalidParameter):
		return fmt.Errorf("%w: %s: %v", ErrUnsupportedParameters, stage, err)
	case errors.Is(err, detection.ErrNonFinite):
		return fmt.Errorf("%w: %s: %v", ErrInternalComputation, stage, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrInternalComputation, stage, err)
	}
}

// IsClientError reports whether err was caused by the caller's image or
// parameters rather than by the pipeline.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrUnsupportedParameters)
}
