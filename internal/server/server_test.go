package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/logger"
)

func init() {
	logger.SetOutput(io.Discard)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := New(Options{Workers: 2, Version: "test"})
	t.Cleanup(s.Close)
	return s
}

func TestNew(t *testing.T) {
	s := newTestServer(t)
	if s.cache == nil || s.scanner == nil || s.pool == nil {
		t.Fatal("New() left a collaborator nil")
	}
	if s.edgeOptions != imaging.DefaultEdgeOptions() {
		t.Errorf("edge options: got %+v, want defaults", s.edgeOptions)
	}
	if New(Options{}).version != "dev" {
		t.Error("empty version should default to dev")
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{"string id", `{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`, "test-1", "tools/list"},
		{"number id", `{"jsonrpc":"2.0","id":42,"method":"ping"}`, float64(42), "ping"},
		{"null id", `{"jsonrpc":"2.0","id":null,"method":"initialize"}`, nil, "initialize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	result := resp.Result.(map[string]interface{})
	if result["protocolVersion"] != ProtocolVersion {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != ServerName || info["version"] != "test" {
		t.Errorf("serverInfo: got %v", info)
	}
}

func TestHandleRequest_Ping(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: "ping-1", Method: "ping"})
	if resp == nil || resp.Error != nil || resp.ID != "ping-1" {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestHandleRequest_NotificationsInitialized(t *testing.T) {
	s := newTestServer(t)
	if resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", Method: "notifications/initialized"}); resp != nil {
		t.Error("notifications/initialized should return nil response")
	}
}

func TestHandleRequest_MethodNotFound(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "nonexistent/method"})
	if resp == nil || resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("Error code: got %d, want -32601", resp.Error.Code)
	}
}

func TestHandleRequest_ToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})
	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response %+v", resp)
	}
	tools, ok := resp.Result.(map[string]interface{})["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(tools) != 5 {
		t.Errorf("expected 5 tools, got %d", len(tools))
	}
}

// readResponses decodes every line of out as an MCPResponse keyed by ID.
func readResponses(t *testing.T, out *bytes.Buffer) map[string]MCPResponse {
	t.Helper()
	responses := make(map[string]MCPResponse)
	sc := bufio.NewScanner(out)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		var resp MCPResponse
		if err := json.Unmarshal(sc.Bytes(), &resp); err != nil {
			t.Fatalf("response is not JSON: %v: %s", err, sc.Text())
		}
		responses[fmt.Sprint(resp.ID)] = resp
	}
	return responses
}

func TestServe_EndToEnd(t *testing.T) {
	s := newTestServer(t)
	imgPath := createTestImageFile(t, 64, 48)

	var in strings.Builder
	in.WriteString(`{"jsonrpc":"2.0","id":1,"method":"initialize"}` + "\n")
	in.WriteString(`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n")
	in.WriteString("\n")
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&in, `{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":{"name":"document_load","arguments":{"path":%q}}}`+"\n", 10+i, imgPath)
	}
	in.WriteString(`{"jsonrpc":"2.0","id":99,"method":"ping"}` + "\n")

	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(in.String()), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	responses := readResponses(t, &out)
	if len(responses) != 8 {
		t.Fatalf("expected 8 responses (notification gets none), got %d", len(responses))
	}
	for i := 0; i < 6; i++ {
		resp, ok := responses[fmt.Sprint(10+i)]
		if !ok {
			t.Errorf("missing response for id %d", 10+i)
			continue
		}
		if resp.Error != nil {
			t.Errorf("id %d: unexpected error %+v", 10+i, resp.Error)
		}
	}
}

func TestServe_ParseError(t *testing.T) {
	s := newTestServer(t)
	var out bytes.Buffer
	if err := s.Serve(strings.NewReader("{not json}\n"), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	var resp MCPResponse
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != -32700 {
		t.Errorf("expected parse error, got %+v", resp)
	}
}

func TestServe_AfterCloseStillAnswers(t *testing.T) {
	s := New(Options{Workers: 1})
	s.Close()

	var out bytes.Buffer
	req := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"nope","arguments":{}}}` + "\n"
	if err := s.Serve(strings.NewReader(req), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}
	if _, ok := readResponses(t, &out)["7"]; !ok {
		t.Error("tool call should be answered inline once the pool is closed")
	}
}
