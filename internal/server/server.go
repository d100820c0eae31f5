package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logger"
	"github.com/ironsheep/docscan-mcp/internal/pipeline"
)

// ServerName and ProtocolVersion are reported by initialize.
const (
	ServerName      = "docscan-mcp"
	ProtocolVersion = "2024-11-05"
)

// Server handles MCP protocol communication
type Server struct {
	cache       *imaging.ImageCache
	scanner     *pipeline.Scanner
	pool        *pipeline.WorkerPool
	edgeOptions imaging.EdgeOptions
	version     string

	// writeMu serializes responses from concurrent workers.
	writeMu sync.Mutex
}

// Options configures a Server.
type Options struct {
	// Scanner runs the document pipeline. Nil uses contour detection with
	// default settings.
	Scanner *pipeline.Scanner

	// Workers bounds concurrent tool calls; <= 0 means one per CPU.
	Workers int

	// EdgeOptions configures document_edges previews. Zero uses
	// imaging.DefaultEdgeOptions.
	EdgeOptions imaging.EdgeOptions

	// Version is reported in serverInfo.
	Version string
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON-RPC error codes used by the server.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolFailed     = -32000
)

// New creates a new MCP server instance
func New(opts Options) *Server {
	scanner := opts.Scanner
	if scanner == nil {
		scanner = pipeline.NewScanner(pipeline.Options{})
	}
	edgeOpts := opts.EdgeOptions
	if edgeOpts == (imaging.EdgeOptions{}) {
		edgeOpts = imaging.DefaultEdgeOptions()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	return &Server{
		cache:       imaging.NewImageCache(),
		scanner:     scanner,
		pool:        pipeline.NewWorkerPool(opts.Workers),
		edgeOptions: edgeOpts,
		version:     version,
	}
}

// Run serves MCP over stdin and stdout until stdin is closed.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to
// w. Tool calls run on the worker pool, so their responses may arrive out
// of order; clients match them by ID. Serve returns after the input ends
// and every in-flight call has answered.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			logger.WithError(err).Warn("Failed to parse request")
			s.write(encoder, &MCPResponse{
				JSONRPC: "2.0",
				Error:   &MCPError{Code: codeParseError, Message: "Parse error"},
			})
			continue
		}

		if req.Method == "tools/call" {
			submitted := s.pool.Submit(func() {
				s.write(encoder, s.handleRequest(&req))
			})
			if submitted {
				continue
			}
		}
		s.write(encoder, s.handleRequest(&req))
	}

	s.pool.Wait()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// Close stops the worker pool. Calls already queued still complete.
func (s *Server) Close() {
	s.pool.Close()
}

func (s *Server) write(encoder *json.Encoder, resp *MCPResponse) {
	if resp == nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := encoder.Encode(resp); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	logger.WithFields(logrus.Fields{
		"method": req.Method,
		"id":     req.ID,
	}).Debug("Handling request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    codeMethodNotFound,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": ProtocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": s.version,
			},
		},
	}
}
