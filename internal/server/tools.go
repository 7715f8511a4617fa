package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is shared by every tool.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file (PNG, JPEG, GIF, TIFF or BMP)",
}

// regionProperty restricts detection to part of the frame.
var regionProperty = map[string]interface{}{
	"type":        "object",
	"description": "Optional region of interest. Star coordinates are still reported in full-image pixels.",
	"properties": map[string]interface{}{
		"x1": map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"},
		"y1": map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
		"x2": map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
		"y2": map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
	},
	"required": []string{"x1", "y1", "x2", "y2"},
}

var cutoffProperty = map[string]interface{}{
	"type":        "integer",
	"minimum":     0,
	"maximum":     255,
	"description": "8-bit binarization cutoff. Samples strictly above it (scaled to the image's range) are foreground.",
}

// detectorProperties returns the per-call overrides of the detector
// configuration, merged with extra tool-specific properties.
func detectorProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path":   pathProperty,
		"region": regionProperty,
		"min_star_count": map[string]interface{}{
			"type":        "integer",
			"description": "Lower the cutoff until at least this many stars are found. Default 1000",
		},
		"min_star_radius": map[string]interface{}{
			"type":        "integer",
			"description": "Smallest accepted star radius in pixels, inclusive. Default 1",
		},
		"max_star_radius": map[string]interface{}{
			"type":        "integer",
			"description": "Largest accepted star radius in pixels, inclusive. Default 24",
		},
		"max_decomposition_levels": map[string]interface{}{
			"type":        "integer",
			"description": "Cap on multiscale levels. Default 20",
		},
		"kernel": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"linear", "b3spline"},
			"description": "Multiscale smoothing kernel. Default linear",
		},
		"count_strategy": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"consensus", "luminance"},
			"description": "How the cutoff search counts stars: on all three channels, or once on luminance. Default consensus",
		},
		"workers": map[string]interface{}{
			"type":        "integer",
			"description": "Extraction worker pool size. 0 uses all CPUs",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and the pixel depth and channel count detection will use.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Star Detection
		{
			Name:        "stars_detect",
			Description: "Detect stars. Removes background with a multiscale filter, then lowers the binarization cutoff from 255 until min_star_count stars are found on all color channels. Returns integer centers and radii sorted by row.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": detectorProperties(map[string]interface{}{
					"compute_quads": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return quad descriptors for each star. Default false",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "stars_extract",
			Description: "Extract stars at a fixed binarization cutoff, skipping the cutoff search. Useful to inspect how the count changes with the cutoff.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": detectorProperties(map[string]interface{}{
					"cutoff": cutoffProperty,
				}),
				"required": []string{"path", "cutoff"},
			},
		},
		{
			Name:        "stars_binarize",
			Description: "Render the binary mask at a cutoff as base64 PNG. By default the multiscale-filtered image is thresholded, which is what detection sees.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty,
					"cutoff": cutoffProperty,
					"raw": map[string]interface{}{
						"type":        "boolean",
						"description": "Threshold the unfiltered image instead. Default false",
					},
					"max_width": map[string]interface{}{
						"type":        "integer",
						"description": "Downscale the preview to at most this width. 0 keeps full size",
					},
				},
				"required": []string{"path", "cutoff"},
			},
		},

		// Star Analysis
		{
			Name:        "stars_quads",
			Description: "Detect stars and compute a quad descriptor per star: distances to its three nearest neighbors and between them, divided by the largest. Descriptors are invariant to scale, rotation and translation. Needs at least 4 stars.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detectorProperties(nil),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "stars_colors",
			Description: "Detect stars and report the mean color, peak luminance and blue/red index inside each star's radius.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": detectorProperties(nil),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "stars_annotate",
			Description: "Detect stars and draw a circle around each on a copy of the image. Returns base64 PNG and optionally writes the full-size result to disk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": detectorProperties(map[string]interface{}{
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Marker color as hex (e.g., '#00FF00'). Default assigns each star its own hue",
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Gap in pixels between a star's radius and its marker. Default 2",
						"default":     2,
					},
					"labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw each star's index next to its marker. Default false",
					},
					"max_width": map[string]interface{}{
						"type":        "integer",
						"description": "Downscale the returned preview to at most this width. 0 keeps full size",
					},
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to write the full-size annotated PNG",
					},
				}),
				"required": []string{"path"},
			},
		},

		// Cache Management
		{
			Name:        "image_evict",
			Description: "Drop an image from the server's cache so the next call re-reads it from disk. Omit path to clear the whole cache.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
