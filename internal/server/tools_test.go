package server

import (
	"testing"
)

func toolsByName() map[string]Tool {
	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}
	return toolMap
}

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"image_evict",
		"stars_detect",
		"stars_extract",
		"stars_binarize",
		"stars_quads",
		"stars_colors",
		"stars_annotate",
	}

	if len(tools) != len(expectedTools) {
		t.Errorf("got %d tools, want %d", len(tools), len(expectedTools))
	}

	toolMap := toolsByName()
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
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

			// every required parameter must be declared
			if required, ok := tool.InputSchema["required"].([]string); ok {
				for _, r := range required {
					if _, ok := props[r]; !ok {
						t.Errorf("required parameter %q has no property", r)
					}
				}
			}
		})
	}
}

func TestToolDefinitions_RequiredParams(t *testing.T) {
	tests := map[string][]string{
		"image_load":       {"path"},
		"image_dimensions": {"path"},
		"stars_detect":     {"path"},
		"stars_extract":    {"path", "cutoff"},
		"stars_binarize":   {"path", "cutoff"},
		"stars_quads":      {"path"},
		"stars_colors":     {"path"},
		"stars_annotate":   {"path"},
	}

	toolMap := toolsByName()
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			required, ok := toolMap[name].InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			if len(required) != len(want) {
				t.Fatalf("required: got %v, want %v", required, want)
			}
			for i := range want {
				if required[i] != want[i] {
					t.Errorf("required[%d]: got %s, want %s", i, required[i], want[i])
				}
			}
		})
	}

	if _, ok := toolMap["image_evict"].InputSchema["required"]; ok {
		t.Error("image_evict should not require path")
	}
}

func TestToolDefinitions_DetectorOverrides(t *testing.T) {
	overrides := []string{
		"region",
		"min_star_count",
		"min_star_radius",
		"max_star_radius",
		"max_decomposition_levels",
		"kernel",
		"count_strategy",
		"workers",
	}

	toolMap := toolsByName()
	for _, name := range []string{"stars_detect", "stars_extract", "stars_quads", "stars_colors", "stars_annotate"} {
		props := toolMap[name].InputSchema["properties"].(map[string]interface{})
		for _, o := range overrides {
			if _, ok := props[o]; !ok {
				t.Errorf("%s: missing override %s", name, o)
			}
		}
	}

	// extras stay with their own tool
	detect := toolMap["stars_detect"].InputSchema["properties"].(map[string]interface{})
	if _, ok := detect["cutoff"]; ok {
		t.Error("stars_detect should not take a cutoff")
	}
	if _, ok := detect["compute_quads"]; !ok {
		t.Error("stars_detect should take compute_quads")
	}
}

func TestToolDefinitions_Enums(t *testing.T) {
	props := toolsByName()["stars_detect"].InputSchema["properties"].(map[string]interface{})

	tests := map[string][]string{
		"kernel":         {"linear", "b3spline"},
		"count_strategy": {"consensus", "luminance"},
	}
	for name, want := range tests {
		prop := props[name].(map[string]interface{})
		enum, ok := prop["enum"].([]string)
		if !ok {
			t.Fatalf("%s should have enum", name)
		}
		if len(enum) != len(want) || enum[0] != want[0] || enum[1] != want[1] {
			t.Errorf("%s enum: got %v, want %v", name, enum, want)
		}
	}
}

func TestToolDefinitions_CutoffRange(t *testing.T) {
	props := toolsByName()["stars_extract"].InputSchema["properties"].(map[string]interface{})
	cutoff := props["cutoff"].(map[string]interface{})

	if cutoff["minimum"] != 0 || cutoff["maximum"] != 255 {
		t.Errorf("cutoff range: got [%v, %v]", cutoff["minimum"], cutoff["maximum"])
	}
}

func TestToolDefinitions_AnnotateDefaults(t *testing.T) {
	props := toolsByName()["stars_annotate"].InputSchema["properties"].(map[string]interface{})
	padding := props["padding"].(map[string]interface{})

	if padding["default"] != 2 {
		t.Errorf("padding default: got %v, want 2", padding["default"])
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsList(&MCPRequest{JSONRPC: "2.0", ID: 1})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(toolsList) != len(GetToolDefinitions()) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(GetToolDefinitions()))
	}
}
