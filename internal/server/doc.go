// Package server implements the MCP (Model Context Protocol) server for
// document scanning.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// tools/call requests run on a fixed worker pool, so several photos can be
// processed at once. Responses are written by a single encoder under a lock
// and may come back in a different order than the requests.
//
// # Available Tools
//
//   - document_load: Decode a photo and report its upright size and format
//   - document_detect: Find the document quadrilateral (normalized corners)
//   - document_rectify: Warp, filter and write the page as JPEG or PDF
//   - document_preview: Draw a quadrilateral over the photo (base64 PNG)
//   - document_edges: Show the detector's edge map (base64 PNG)
//
// Coordinates are normalized to [0,1] with the origin at the top-left and Y
// growing downwards. A quad is passed as an object with the eight fields
// topLeftX, topLeftY, topRightX, topRightY, bottomLeftX, bottomLeftY,
// bottomRightX and bottomRightY, exactly as document_detect returns them.
//
// # Image Caching
//
// Decoded photos are cached by path, so the usual detect, preview and
// rectify sequence decodes each file once. The cache lives as long as the
// process.
//
// # Error Handling
//
// Failed tool calls return a JSON-RPC error whose data is
// {"code": "<CODE>", "message": "..."} with one of DECODE_ERROR,
// INVALID_ARGUMENTS, DEGENERATE_QUADRILATERAL, ENCODE_ERROR or
// INTERNAL_ERROR. INVALID_ARGUMENTS uses JSON-RPC code -32602; the others
// use -32000.
//
// # Usage
//
//	srv := server.New(server.Options{Scanner: scanner, Workers: 4})
//	defer srv.Close()
//	if err := srv.Run(); err != nil {
//	    logger.WithError(err).Fatal("Server error")
//	}
package server
