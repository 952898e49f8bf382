package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/corner-tools-mcp/internal/imaging"
	"github.com/ironsheep/corner-tools-mcp/internal/pipeline"
)

// EnvConfigPath names the environment variable holding the tuning file path.
const EnvConfigPath = "CORNER_MCP_CONFIG"

// maxFileSize bounds the tuning file size.
const maxFileSize = 1 * 1024 * 1024

// TuningConfig is the on-disk form of the pipeline settings. Every field is
// optional; omitted fields keep the pipeline defaults, so partial files are
// safe.
type TuningConfig struct {
	// Smoothing
	SmoothKernelSize *int     `json:"smooth_kernel_size,omitempty"`
	SmoothSigma      *float64 `json:"smooth_sigma,omitempty"`

	// Structure tensor
	TensorWindow *int     `json:"tensor_window,omitempty"`
	TensorSigma  *float64 `json:"tensor_sigma,omitempty"`

	// Harris
	HarrisK           *float64 `json:"harris_k,omitempty"`
	HarrisThreshold   *float64 `json:"harris_threshold,omitempty"`
	HarrisMinDistance *int     `json:"harris_min_distance,omitempty"`
	HarrisMaxCorners  *int     `json:"harris_max_corners,omitempty"`

	// Good Features to Track
	GFTTThreshold   *float64 `json:"gftt_threshold,omitempty"`
	GFTTMinDistance *int     `json:"gftt_min_distance,omitempty"`
	GFTTMaxCorners  *int     `json:"gftt_max_corners,omitempty"`

	// Rendering
	MarkerRadius  *float64 `json:"marker_radius,omitempty"`
	HarrisColor   *string  `json:"harris_color,omitempty"` // hex like "#FF0000"
	GFTTColor     *string  `json:"gftt_color,omitempty"`
	AngleColormap *string  `json:"angle_colormap,omitempty"` // "gray" or "hsv"

	// Input and output
	ResizeWidth  *int    `json:"resize_width,omitempty"`
	ResizeHeight *int    `json:"resize_height,omitempty"`
	OutputFormat *string `json:"output_format,omitempty"` // "jpeg" or "png"
	JPEGQuality  *int    `json:"jpeg_quality,omitempty"`

	// Execution
	Workers *int `json:"workers,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with every field unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig reads and validates a JSON tuning file.
//
// The path must have a .json extension and the file must not exceed 1 MiB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromEnv loads the file named by CORNER_MCP_CONFIG, or returns an empty
// config when the variable is unset.
func LoadFromEnv() (*TuningConfig, error) {
	path := os.Getenv(EnvConfigPath)
	if path == "" {
		return EmptyTuningConfig(), nil
	}
	return LoadTuningConfig(path)
}

// Validate checks every set field by building the pipeline parameters and
// encode options from it.
func (c *TuningConfig) Validate() error {
	p, err := c.Params()
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := c.EncodeOptions(); err != nil {
		return err
	}
	return nil
}

// Params overlays the set fields onto pipeline.DefaultParams. The result is
// not validated; call Params.Validate or TuningConfig.Validate.
func (c *TuningConfig) Params() (pipeline.Params, error) {
	p := pipeline.DefaultParams()

	setInt(&p.SmoothKernelSize, c.SmoothKernelSize)
	setFloat(&p.SmoothSigma, c.SmoothSigma)
	setInt(&p.TensorWindow, c.TensorWindow)
	setFloat(&p.TensorSigma, c.TensorSigma)

	setFloat(&p.HarrisK, c.HarrisK)
	setFloat(&p.Harris.Threshold, c.HarrisThreshold)
	setInt(&p.Harris.MinDistance, c.HarrisMinDistance)
	setInt(&p.Harris.MaxCorners, c.HarrisMaxCorners)

	setFloat(&p.GFTT.Threshold, c.GFTTThreshold)
	setInt(&p.GFTT.MinDistance, c.GFTTMinDistance)
	setInt(&p.GFTT.MaxCorners, c.GFTTMaxCorners)

	setFloat(&p.MarkerRadius, c.MarkerRadius)
	if c.HarrisColor != nil {
		col, err := imaging.ParseColor(*c.HarrisColor)
		if err != nil {
			return p, fmt.Errorf("harris_color: %w", err)
		}
		p.HarrisColor = col
	}
	if c.GFTTColor != nil {
		col, err := imaging.ParseColor(*c.GFTTColor)
		if err != nil {
			return p, fmt.Errorf("gftt_color: %w", err)
		}
		p.GFTTColor = col
	}
	if c.AngleColormap != nil {
		p.AngleColormap = *c.AngleColormap
	}

	setInt(&p.ResizeWidth, c.ResizeWidth)
	setInt(&p.ResizeHeight, c.ResizeHeight)
	setInt(&p.Workers, c.Workers)
	return p, nil
}

// EncodeOptions returns the configured output encoding, JPEG at quality 90
// by default.
func (c *TuningConfig) EncodeOptions() (pipeline.EncodeOptions, error) {
	opts := pipeline.EncodeOptions{Format: imaging.FormatJPEG, Quality: imaging.DefaultJPEGQuality}
	if c.OutputFormat != nil {
		f, err := imaging.ParseFormat(*c.OutputFormat)
		if err != nil {
			return opts, fmt.Errorf("output_format: %w", err)
		}
		opts.Format = f
	}
	if c.JPEGQuality != nil {
		if *c.JPEGQuality < 1 || *c.JPEGQuality > 100 {
			return opts, fmt.Errorf("jpeg_quality must be between 1 and 100, got %d", *c.JPEGQuality)
		}
		opts.Quality = *c.JPEGQuality
	}
	return opts, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
