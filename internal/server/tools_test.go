package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions(false)

	expected := []string{ToolLoad, ToolDetect, ToolRectify, ToolPreview, ToolEdges}
	if len(tools) != len(expected) {
		t.Fatalf("expected %d tools, got %d", len(expected), len(tools))
	}
	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}
	for _, name := range expected {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions(true) {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("InputSchema required should be []string")
			}
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required property %s is not defined", r)
				}
			}
			if _, ok := props["path"]; !ok {
				t.Error("every tool takes a path")
			}
		})
	}
}

func TestToolDefinitions_Searchable(t *testing.T) {
	find := func(tools []Tool) map[string]interface{} {
		for _, tool := range tools {
			if tool.Name == ToolRectify {
				return tool.InputSchema["properties"].(map[string]interface{})
			}
		}
		t.Fatal("document_rectify not found")
		return nil
	}

	if _, ok := find(GetToolDefinitions(false))["searchable"]; ok {
		t.Error("searchable should be hidden without OCR")
	}
	if _, ok := find(GetToolDefinitions(true))["searchable"]; !ok {
		t.Error("searchable should be advertised with OCR")
	}
}

func TestQuadSchema(t *testing.T) {
	schema := quadSchema("corners")
	props := schema["properties"].(map[string]interface{})
	if len(props) != 8 {
		t.Errorf("expected 8 quad fields, got %d", len(props))
	}
	for _, name := range []string{"topLeftX", "bottomRightY"} {
		if _, ok := props[name]; !ok {
			t.Errorf("missing field %s", name)
		}
	}
}
