package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// datasetProperties returns the schema properties shared by every tool that
// operates on a generated dataset.
func datasetProperties() map[string]interface{} {
	return map[string]interface{}{
		"num": map[string]interface{}{
			"type":        "integer",
			"description": "Number of samples. Default 10",
			"default":     defaultNum,
		},
		"width": map[string]interface{}{
			"type":        "integer",
			"description": "Image width in cells (at least 5). Default 14",
			"default":     defaultSide,
		},
		"height": map[string]interface{}{
			"type":        "integer",
			"description": "Image height in cells (at least 5). Default 14",
			"default":     defaultSide,
		},
		"seed": map[string]interface{}{
			"type":        "integer",
			"description": "Random seed. The same seed always yields the same dataset. Default 0",
			"default":     0,
		},
		"max_attempts": map[string]interface{}{
			"type":        "integer",
			"description": "Attempts per sample before generation gives up on drawing a non-square rectangle. Default 1000",
			"default":     1000,
		},
		"parallel": map[string]interface{}{
			"type":        "boolean",
			"description": "Generate with one random stream per sample on all CPUs. Produces a different dataset than sequential generation for the same seed. Default false",
			"default":     false,
		},
	}
}

// withDatasetProperties merges extra properties into the dataset schema.
func withDatasetProperties(extra map[string]interface{}) map[string]interface{} {
	props := datasetProperties()
	for k, v := range extra {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Dataset Generation
		{
			Name:        "rectangles_generate",
			Description: "Generate a rectangles dataset: binary images each containing one unfilled rectangle outline, labelled 1 when taller than wide and 0 when wider than tall. Returns labels, rectangle corners and class balance.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withDatasetProperties(map[string]interface{}{
					"float32": map[string]interface{}{
						"type":        "boolean",
						"description": "Round features through float32. Default false",
					},
					"include_pixels": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the flattened row-major feature vectors. Default false",
					},
				}),
			},
		},

		// Visualization
		{
			Name:        "rectangles_render",
			Description: "Render one sample of a generated dataset as a base64-encoded PNG (outline white on black).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withDatasetProperties(map[string]interface{}{
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Sample index (0-based). Default 0",
					},
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Integer enlargement factor. Default 8",
						"default":     defaultRenderScale,
					},
				}),
			},
		},
		{
			Name:        "rectangles_montage",
			Description: "Tile the samples of a generated dataset into one base64-encoded PNG, tinting tall and wide outlines in different colors.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withDatasetProperties(map[string]interface{}{
					"columns": map[string]interface{}{
						"type":        "integer",
						"description": "Tiles per row. Default min(num, 8)",
					},
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Integer enlargement of each tile. Default 4",
					},
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of samples drawn. Default all",
					},
					"show_indices": map[string]interface{}{
						"type":        "boolean",
						"description": "Print each sample index in its tile. Default false",
					},
					"tall_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color for tall outlines. Default #E4572E",
					},
					"wide_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color for wide outlines. Default #17BEBB",
					},
				}),
			},
		},

		// Analysis
		{
			Name:        "rectangles_detect",
			Description: "Recover rectangle outlines from the pixels of one generated sample and compare them with the stamped rectangle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withDatasetProperties(map[string]interface{}{
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Sample index (0-based). Default 0",
					},
					"min_pixels": map[string]interface{}{
						"type":        "integer",
						"description": "Ignore components with fewer cells. Default 1",
					},
				}),
			},
		},
		{
			Name:        "rectangles_patches",
			Description: "Extract every sliding-window patch from a generated dataset and return the distinct patches, which seed the inducing patches of a convolutional model.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withDatasetProperties(map[string]interface{}{
					"patch_height": map[string]interface{}{
						"type":        "integer",
						"description": "Patch height. Default 3",
						"default":     defaultPatchSide,
					},
					"patch_width": map[string]interface{}{
						"type":        "integer",
						"description": "Patch width. Default 3",
						"default":     defaultPatchSide,
					},
					"include_patches": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the distinct patches themselves. Default false",
					},
				}),
			},
		},

		// Model Evaluation
		{
			Name:        "rectangles_evaluate",
			Description: "Run the tall/wide outline classifier experiment: generate train and test splits for a run profile, optionally train with L-BFGS, and report log likelihoods and accuracies.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"profile": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"full", "fast"},
						"description": "Run profile. Default fast",
					},
					"seed": map[string]interface{}{
						"type":        "integer",
						"description": "Seed of the training split; the test split uses seed+1. Default 0",
					},
					"train": map[string]interface{}{
						"type":        "boolean",
						"description": "Optimize the classifier before scoring. Default true",
					},
					"max_iterations": map[string]interface{}{
						"type":        "integer",
						"description": "Override the profile's iteration limit",
					},
				},
			},
		},
		{
			Name:        "rectangles_classify_file",
			Description: "Load an image file, binarize it, find the largest outline and classify it as tall or wide.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Luminance (0-255) at or above which a pixel is part of the outline. Default 128",
						"default":     128,
					},
					"scale": map[string]interface{}{
						"type":        "integer",
						"description": "Scale the image was rendered at; blocks of this size are reduced to one cell. Default 1",
						"default":     1,
					},
				},
				"required": []string{"path"},
			},
		},

		// Housekeeping
		{
			Name:        "rectangles_cache_clear",
			Description: "Drop cached datasets and loaded masks. With a path, only masks loaded from that file are dropped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Only evict masks loaded from this file",
					},
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
