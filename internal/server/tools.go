package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// imageInputProperties are shared by the corner tools: the image comes from
// a file path or an inline base64 payload.
func imageInputProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the image file. Either path or image_base64 is required.",
		},
		"image_base64": map[string]interface{}{
			"type":        "string",
			"description": "Inline PNG, JPEG, or GIF image as base64 or a data URL.",
		},
	}
}

// detectorProperties are the detector overrides accepted by both corner
// tools. Unset fields fall back to the server configuration.
func detectorProperties() map[string]interface{} {
	return map[string]interface{}{
		"smooth_kernel_size": map[string]interface{}{
			"type":        "integer",
			"description": "Gaussian smoothing kernel size, positive and odd. Default 5",
		},
		"smooth_sigma": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian smoothing sigma. Default 1.4",
		},
		"harris_k": map[string]interface{}{
			"type":        "number",
			"description": "Harris sensitivity constant in (0, 0.25). Default 0.04",
		},
		"harris_threshold": map[string]interface{}{
			"type":        "number",
			"description": "Harris corners must reach this fraction of the maximum response. Default 0.1",
		},
		"gftt_threshold": map[string]interface{}{
			"type":        "number",
			"description": "Shi-Tomasi quality level as a fraction of the maximum response. Default 0.01",
		},
		"min_distance": map[string]interface{}{
			"type":        "integer",
			"description": "Minimum pixel distance between reported corners, both detectors. Default 5",
		},
		"max_corners": map[string]interface{}{
			"type":        "integer",
			"description": "Keep at most this many Shi-Tomasi corners (0 = unlimited). Default 1000",
		},
	}
}

func pathOnlySchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Absolute path to the image file",
			},
		},
		"required": []string{"path"},
	}
}

func merge(maps ...map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format, and channel layout. The decoded image is cached for subsequent corner tools.",
			InputSchema: pathOnlySchema(),
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: pathOnlySchema(),
		},

		{
			Name:        "image_unload",
			Description: "Drop a cached image so the next call re-reads the file. Without a path, the whole cache is cleared.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Path used when the image was loaded. Omit to clear every cached image.",
					},
				},
			},
		},

		// Corner Detection
		{
			Name: "corners_process",
			Description: "Run the full corner detection pipeline and return nine base64 images: original, grayscale, smooth, " +
				"gradient, harris, angle, harris_corners, gftt_corners, and combined_corners, plus the corner counts. " +
				"Harris corners are drawn in red and Shi-Tomasi corners in green; the combined view draws green on top.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(imageInputProperties(), detectorProperties(), map[string]interface{}{
					"marker_radius": map[string]interface{}{
						"type":        "number",
						"description": "Radius of the filled corner markers in pixels. Default 5",
					},
					"angle_colormap": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"gray", "hsv"},
						"description": "Rendering of the gradient direction map. Default gray",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"jpeg", "png"},
						"description": "Encoding of the returned images. Default jpeg",
					},
				}),
			},
		},
		{
			Name:        "corners_detect",
			Description: "Detect corners and return their pixel coordinates and response scores without rendering images.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(imageInputProperties(), detectorProperties(), map[string]interface{}{
					"detector": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"harris", "gftt", "both"},
						"description": "Which detector to report. Default both",
						"default":     "both",
					},
				}),
			},
		},
	}
}

func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return resultResponse(req.ID, map[string]interface{}{"tools": GetToolDefinitions()})
}
