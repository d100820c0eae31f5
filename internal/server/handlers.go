package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/apperr"
	"github.com/ironsheep/docscan-mcp/internal/codec"
	"github.com/ironsheep/docscan-mcp/internal/filter"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logger"
	"github.com/ironsheep/docscan-mcp/internal/pipeline"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "document_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// ErrorData is the data member of a failed tool call.
type ErrorData struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Failures carry {"code", "message"} in the error data. INVALID_ARGUMENTS
// maps to JSON-RPC -32602; every other code maps to -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.toolError(req.ID, apperr.InvalidArguments("invalid params: "+err.Error(), err))
	}

	result, err := s.executeTool(context.Background(), params.Name, params.Arguments)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"tool": params.Name,
			"code": apperr.CodeOf(err),
		}).WithError(err).Warn("Tool call failed")
		return s.toolError(req.ID, err)
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case ToolLoad:
		return s.handleDocumentLoad(args)
	case ToolDetect:
		return s.handleDocumentDetect(ctx, args)
	case ToolRectify:
		return s.handleDocumentRectify(ctx, args)
	case ToolPreview:
		return s.handleDocumentPreview(ctx, args)
	case ToolEdges:
		return s.handleDocumentEdges(args)
	default:
		return nil, apperr.InvalidArgumentsf("unknown tool: %s", name)
	}
}

// toolError builds the JSON-RPC error for a failed tool call.
func (s *Server) toolError(id interface{}, err error) *MCPResponse {
	code := apperr.CodeOf(err)
	rpcCode := codeToolFailed
	if code == apperr.CodeInvalidArguments {
		rpcCode = codeInvalidParams
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    rpcCode,
			Message: "Tool execution failed",
			Data:    ErrorData{Code: code, Message: apperr.Message(err)},
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, reporting malformed JSON and a
// missing path as INVALID_ARGUMENTS.
func decodeArgs(args json.RawMessage, v interface{}, path func() string) error {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return apperr.InvalidArguments("invalid arguments: "+err.Error(), err)
	}
	if strings.TrimSpace(path()) == "" {
		return apperr.InvalidArguments("path is required", nil)
	}
	return nil
}

// === document_load ===

type pathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleDocumentLoad(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === document_detect ===

func (s *Server) handleDocumentDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	resp, err := s.detect(ctx, a.Path)
	if err != nil {
		return nil, err
	}

	// The eight corner fields sit at the top level next to the metadata.
	result := make(map[string]interface{}, 13)
	for k, v := range resp.Quad.Fields() {
		result[k] = v
	}
	result["found"] = resp.Found
	result["backend"] = resp.Backend
	result["confidence"] = resp.Confidence
	result["width"] = resp.Width
	result["height"] = resp.Height
	return result, nil
}

func (s *Server) detect(ctx context.Context, path string) (*pipeline.DetectResponse, error) {
	d, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	return s.scanner.Detect(ctx, pipeline.DetectRequest{Image: d.Image})
}

// === document_rectify ===

type rectifyArgs struct {
	Path       string          `json:"path"`
	Quad       json.RawMessage `json:"quad"`
	Filter     string          `json:"filter"`
	Brightness *float64        `json:"brightness"`
	Contrast   *float64        `json:"contrast"`
	Threshold  *float64        `json:"threshold"`
	Format     string          `json:"format"`
	Quality    int             `json:"quality"`
	Searchable bool            `json:"searchable"`
}

func (s *Server) handleDocumentRectify(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a rectifyArgs
	if err := decodeArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	if len(a.Quad) == 0 || string(a.Quad) == "null" {
		return nil, apperr.InvalidArguments("quad is required", nil)
	}
	quad, err := parseQuad(a.Quad)
	if err != nil {
		return nil, err
	}

	mode, err := filter.ParseMode(a.Filter)
	if err != nil {
		return nil, err
	}
	format, err := codec.ParseFormat(a.Format)
	if err != nil {
		return nil, err
	}

	d, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	return s.scanner.RectifyAndFilter(ctx, pipeline.RectifyRequest{
		Image: d.Image,
		Quad:  quad,
		Filter: filter.Spec{
			Mode:       mode,
			Brightness: a.Brightness,
			Contrast:   a.Contrast,
			Threshold:  a.Threshold,
		},
		Format:     format,
		Quality:    a.Quality,
		Searchable: a.Searchable,
		WriteFile:  true,
	})
}

// parseQuad decodes the eight-field quad object.
func parseQuad(raw json.RawMessage) (geometry.Quad, error) {
	var q geometry.Quad
	if err := json.Unmarshal(raw, &q); err != nil {
		var appErr *apperr.AppError
		if errors.As(err, &appErr) {
			return geometry.Quad{}, err
		}
		return geometry.Quad{}, apperr.InvalidArguments(err.Error(), err)
	}
	return q, nil
}

// === document_preview ===

type previewArgs struct {
	Path      string          `json:"path"`
	Quad      json.RawMessage `json:"quad"`
	Color     string          `json:"color"`
	Thickness int             `json:"thickness"`
}

func (s *Server) handleDocumentPreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := decodeArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = imaging.DefaultOutlineColor
	}
	if a.Thickness == 0 {
		a.Thickness = 3
	}

	d, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	var quad geometry.Quad
	if len(a.Quad) == 0 || string(a.Quad) == "null" {
		resp, err := s.scanner.Detect(ctx, pipeline.DetectRequest{Image: d.Image})
		if err != nil {
			return nil, err
		}
		quad = resp.Quad
	} else if quad, err = parseQuad(a.Quad); err != nil {
		return nil, err
	}

	b := d.Image.Bounds()
	corners := quad.Denormalize(b.Dx(), b.Dy()).Corners()
	preview, err := imaging.QuadOverlay(d.Image, corners, a.Color, a.Thickness)
	if err != nil {
		return nil, apperr.Encode("failed to render preview", err)
	}
	return preview, nil
}

// === document_edges ===

func (s *Server) handleDocumentEdges(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a, func() string { return a.Path }); err != nil {
		return nil, err
	}
	d, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	preview, err := imaging.EdgePreview(d.Image, s.edgeOptions)
	if err != nil {
		return nil, apperr.Encode("failed to render edge map", err)
	}
	return preview, nil
}
