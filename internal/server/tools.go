package server

import (
	"github.com/ironsheep/docscan-mcp/internal/filter"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Tool names.
const (
	ToolLoad    = "document_load"
	ToolDetect  = "document_detect"
	ToolRectify = "document_rectify"
	ToolPreview = "document_preview"
	ToolEdges   = "document_edges"
)

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

// quadSchema describes the eight-field normalized quadrilateral.
func quadSchema(description string) map[string]interface{} {
	props := make(map[string]interface{}, len(geometry.FieldNames))
	for _, name := range geometry.FieldNames {
		props[name] = map[string]interface{}{
			"type":    "number",
			"minimum": 0,
			"maximum": 1,
		}
	}
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties":  props,
		"required":    geometry.FieldNames,
	}
}

func filterModeNames() []string {
	names := make([]string, len(filter.Modes))
	for i, m := range filter.Modes {
		names[i] = string(m)
	}
	return names
}

// GetToolDefinitions returns all available tools. The searchable option of
// document_rectify is only advertised when OCR is available.
func GetToolDefinitions(searchable bool) []Tool {
	rectifyProps := map[string]interface{}{
		"path": pathProperty,
		"quad": quadSchema("Document corners in normalized coordinates (0-1, origin top-left, Y down), usually taken from document_detect"),
		"filter": map[string]interface{}{
			"type":        "string",
			"enum":        filterModeNames(),
			"description": "Tone filter applied after rectification. Default none",
			"default":     string(filter.ModeNone),
		},
		"brightness": map[string]interface{}{
			"type":        "number",
			"description": "custom filter only: added after contrast, 200 spans the full range. Default 0",
		},
		"contrast": map[string]interface{}{
			"type":        "number",
			"minimum":     0,
			"description": "custom filter only: intensity multiplier. Default 1",
		},
		"threshold": map[string]interface{}{
			"type":        "number",
			"minimum":     0,
			"maximum":     1,
			"description": "custom filter only: binarize at this level when set",
		},
		"format": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"jpeg", "pdf"},
			"description": "Output container. Default jpeg",
			"default":     "jpeg",
		},
		"quality": map[string]interface{}{
			"type":        "integer",
			"minimum":     1,
			"maximum":     100,
			"description": "JPEG quality (also used for the image inside a PDF). Default from server configuration",
		},
	}
	if searchable {
		rectifyProps["searchable"] = map[string]interface{}{
			"type":        "boolean",
			"description": "pdf only: add an invisible OCR text layer so the page can be searched",
			"default":     false,
		}
	}

	return []Tool{
		{
			Name:        ToolLoad,
			Description: "Load a photo and return its upright dimensions, format and file size. EXIF orientation is applied.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolDetect,
			Description: "Find the most prominent document in a photo. Returns the eight corner fields in normalized coordinates plus found, backend and confidence. When nothing is found the full frame is returned with found=false.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolRectify,
			Description: "Warp the quadrilateral region of a photo to an upright rectangle, apply a tone filter and write the result as JPEG or single-page PDF. Returns the output path, dimensions and size.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": rectifyProps,
				"required":   []string{"path", "quad"},
			},
		},
		{
			Name:        ToolPreview,
			Description: "Draw a quadrilateral over the photo and return it as base64 PNG so the corners can be checked before rectifying. Detects the document when quad is omitted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"quad": quadSchema("Corners to draw; detected when omitted"),
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline colour as #RRGGBB. Default #00FF00",
						"default":     "#00FF00",
					},
					"thickness": map[string]interface{}{
						"type":        "integer",
						"minimum":     1,
						"description": "Outline width in pixels. Default 3",
						"default":     3,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolEdges,
			Description: "Return the edge map the contour detector works on, as base64 PNG at the detector's working resolution. Useful to see why a document was or was not found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
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
			"tools": GetToolDefinitions(s.scanner.Searchable()),
		},
	}
}
