package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// squareImage is a 50x50 black image with a white square covering
// [20,30) on both axes. Each detector finds its four corners.
func squareImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if x >= 20 && x < 30 && y >= 20 && y < 30 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

// createTestImageFile writes img as a PNG into the test's temp dir.
func createTestImageFile(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-image.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return path
}

func encodeBase64PNG(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// callTool sends a tools/call request and returns the response.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()
	argsJSON, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("Failed to marshal args: %v", err)
	}
	params, err := json.Marshal(ToolCallParams{Name: name, Arguments: argsJSON})
	if err != nil {
		t.Fatalf("Failed to marshal params: %v", err)
	}
	resp := s.handleToolsCall(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})
	if resp == nil {
		t.Fatal("handleToolsCall returned nil")
	}
	return resp
}

// decodeToolResult unwraps the MCP content envelope into v.
func decodeToolResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %d %s (%v)", resp.Error.Code, resp.Error.Message, resp.Error.Data)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content should hold one entry, got %v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}
	text, ok := content[0]["text"].(string)
	if !ok {
		t.Fatal("content text should be a string")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("Failed to parse tool result: %v", err)
	}
}

func TestHandleImageLoad(t *testing.T) {
	s := New()
	path := createTestImageFile(t, squareImage())

	var info map[string]interface{}
	decodeToolResult(t, callTool(t, s, "image_load", map[string]interface{}{"path": path}), &info)

	if info["width"] != float64(50) || info["height"] != float64(50) {
		t.Errorf("dimensions: got %vx%v, want 50x50", info["width"], info["height"])
	}
	if info["format"] != "png" {
		t.Errorf("format: got %v, want png", info["format"])
	}
	if s.cache.Len() != 1 {
		t.Errorf("image was not cached: %d entries", s.cache.Len())
	}
}

func TestHandleImageDimensions(t *testing.T) {
	s := New()
	path := createTestImageFile(t, image.NewGray(image.Rect(0, 0, 64, 32)))

	var dims map[string]interface{}
	decodeToolResult(t, callTool(t, s, "image_dimensions", map[string]interface{}{"path": path}), &dims)

	if dims["width"] != float64(64) || dims["height"] != float64(32) {
		t.Errorf("got %vx%v, want 64x32", dims["width"], dims["height"])
	}
}

func TestHandleImageUnload(t *testing.T) {
	s := New()
	a := createTestImageFile(t, squareImage())
	b := createTestImageFile(t, image.NewGray(image.Rect(0, 0, 8, 8)))
	for _, p := range []string{a, b} {
		if resp := callTool(t, s, "image_load", map[string]interface{}{"path": p}); resp.Error != nil {
			t.Fatalf("image_load failed: %v", resp.Error.Data)
		}
	}

	tests := []struct {
		name        string
		args        map[string]interface{}
		wantEvicted int
		wantCached  int
	}{
		{"one path", map[string]interface{}{"path": a}, 1, 1},
		{"same path again", map[string]interface{}{"path": a}, 0, 1},
		{"unknown path", map[string]interface{}{"path": "/nonexistent/image.png"}, 0, 1},
		{"everything", map[string]interface{}{}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result ImageUnloadResult
			decodeToolResult(t, callTool(t, s, "image_unload", tt.args), &result)
			if result.Evicted != tt.wantEvicted || result.Cached != tt.wantCached {
				t.Errorf("got evicted=%d cached=%d, want evicted=%d cached=%d",
					result.Evicted, result.Cached, tt.wantEvicted, tt.wantCached)
			}
			if s.cache.Len() != tt.wantCached {
				t.Errorf("cache holds %d images, want %d", s.cache.Len(), tt.wantCached)
			}
		})
	}
}

func TestHandleImageUnload_ReloadsFromDisk(t *testing.T) {
	s := New()
	path := createTestImageFile(t, image.NewGray(image.Rect(0, 0, 8, 8)))

	var dims map[string]interface{}
	decodeToolResult(t, callTool(t, s, "image_dimensions", map[string]interface{}{"path": path}), &dims)

	// Replace the file; the cached decode still answers until it is unloaded.
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to rewrite file: %v", err)
	}
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 16, 4))); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	f.Close()

	decodeToolResult(t, callTool(t, s, "image_dimensions", map[string]interface{}{"path": path}), &dims)
	if dims["width"] != float64(8) {
		t.Fatalf("expected cached width 8, got %v", dims["width"])
	}

	var unload ImageUnloadResult
	decodeToolResult(t, callTool(t, s, "image_unload", map[string]interface{}{"path": path}), &unload)

	decodeToolResult(t, callTool(t, s, "image_dimensions", map[string]interface{}{"path": path}), &dims)
	if dims["width"] != float64(16) || dims["height"] != float64(4) {
		t.Errorf("after unload: got %vx%v, want 16x4", dims["width"], dims["height"])
	}
}

func TestHandleCornersProcess(t *testing.T) {
	s := New()
	img := squareImage()

	tests := []struct {
		name string
		args map[string]interface{}
		mime string
	}{
		{"path", map[string]interface{}{"path": createTestImageFile(t, img)}, "image/jpeg"},
		{"base64", map[string]interface{}{"image_base64": encodeBase64PNG(t, img)}, "image/jpeg"},
		{"png output", map[string]interface{}{"image_base64": encodeBase64PNG(t, img), "format": "png"}, "image/png"},
		{"hsv angle", map[string]interface{}{"image_base64": encodeBase64PNG(t, img), "angle_colormap": "hsv"}, "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result CornersProcessResult
			decodeToolResult(t, callTool(t, s, "corners_process", tt.args), &result)

			if result.MimeType != tt.mime {
				t.Errorf("mime_type: got %s, want %s", result.MimeType, tt.mime)
			}
			if result.Width != 50 || result.Height != 50 {
				t.Errorf("dimensions: got %dx%d, want 50x50", result.Width, result.Height)
			}
			if result.HarrisCount != 4 {
				t.Errorf("harris_count: got %d, want 4", result.HarrisCount)
			}
			if result.GFTTCount != 4 {
				t.Errorf("gftt_count: got %d, want 4", result.GFTTCount)
			}

			stages := map[string]string{
				"original":         result.Original,
				"grayscale":        result.Grayscale,
				"smooth":           result.Smooth,
				"gradient":         result.Gradient,
				"harris":           result.Harris,
				"angle":            result.Angle,
				"harris_corners":   result.HarrisCorners,
				"gftt_corners":     result.GFTTCorners,
				"combined_corners": result.CombinedCorners,
			}
			for name, data := range stages {
				raw, err := base64.StdEncoding.DecodeString(data)
				if err != nil {
					t.Errorf("%s: not base64: %v", name, err)
					continue
				}
				decoded, _, err := image.Decode(bytes.NewReader(raw))
				if err != nil {
					t.Errorf("%s: not an image: %v", name, err)
					continue
				}
				if b := decoded.Bounds(); b.Dx() != 50 || b.Dy() != 50 {
					t.Errorf("%s: got %dx%d, want 50x50", name, b.Dx(), b.Dy())
				}
			}
		})
	}
}

func TestHandleCornersProcess_ResultFields(t *testing.T) {
	s := New()
	resp := callTool(t, s, "corners_process", map[string]interface{}{"image_base64": encodeBase64PNG(t, squareImage())})

	var raw map[string]interface{}
	decodeToolResult(t, resp, &raw)

	for _, key := range []string{
		"original", "grayscale", "smooth", "gradient", "harris", "angle",
		"harris_corners", "gftt_corners", "combined_corners",
		"format", "mime_type", "width", "height", "harris_count", "gftt_count",
	} {
		if _, ok := raw[key]; !ok {
			t.Errorf("result missing %s", key)
		}
	}
}

func TestHandleCornersDetect(t *testing.T) {
	s := New()
	path := createTestImageFile(t, squareImage())

	tests := []struct {
		detector   string
		wantHarris bool
		wantGFTT   bool
	}{
		{"", true, true},
		{"both", true, true},
		{"harris", true, false},
		{"gftt", false, true},
	}

	for _, tt := range tests {
		t.Run("detector="+tt.detector, func(t *testing.T) {
			args := map[string]interface{}{"path": path}
			if tt.detector != "" {
				args["detector"] = tt.detector
			}
			var raw map[string]json.RawMessage
			decodeToolResult(t, callTool(t, s, "corners_detect", args), &raw)

			var result CornersDetectResult
			decodeToolResult(t, callTool(t, s, "corners_detect", args), &result)

			if result.Width != 50 || result.Height != 50 {
				t.Errorf("dimensions: got %dx%d, want 50x50", result.Width, result.Height)
			}

			if tt.wantHarris {
				if len(result.Harris) != 4 || result.HarrisCount != 4 {
					t.Errorf("harris: got %d points, count %d, want 4", len(result.Harris), result.HarrisCount)
				}
			} else if string(raw["harris"]) != "null" {
				t.Errorf("harris should be null when not requested, got %s", raw["harris"])
			}

			if tt.wantGFTT {
				if len(result.GFTT) != 4 || result.GFTTCount != 4 {
					t.Errorf("gftt: got %d points, count %d, want 4", len(result.GFTT), result.GFTTCount)
				}
			} else if string(raw["gftt"]) != "null" {
				t.Errorf("gftt should be null when not requested, got %s", raw["gftt"])
			}

			for _, p := range append(result.Harris, result.GFTT...) {
				if p.X < 18 || p.X > 31 || p.Y < 18 || p.Y > 31 {
					t.Errorf("corner (%d,%d) is far from the square", p.X, p.Y)
				}
				if p.Score <= 0 {
					t.Errorf("corner (%d,%d) has score %g", p.X, p.Y, p.Score)
				}
			}
		})
	}
}

func TestHandleCornersDetect_EmptyImage(t *testing.T) {
	s := New()
	black := image.NewGray(image.Rect(0, 0, 20, 20))

	var raw map[string]json.RawMessage
	decodeToolResult(t, callTool(t, s, "corners_detect", map[string]interface{}{"image_base64": encodeBase64PNG(t, black)}), &raw)

	// Requested but empty lists are [] rather than null.
	if string(raw["harris"]) != "[]" || string(raw["gftt"]) != "[]" {
		t.Errorf("got harris=%s gftt=%s, want empty lists", raw["harris"], raw["gftt"])
	}
}

func TestHandleCornersDetect_Overrides(t *testing.T) {
	s := New()
	path := createTestImageFile(t, squareImage())

	var result CornersDetectResult
	decodeToolResult(t, callTool(t, s, "corners_detect", map[string]interface{}{
		"path":        path,
		"detector":    "gftt",
		"max_corners": 2,
	}), &result)

	if result.GFTTCount != 2 {
		t.Errorf("gftt_count: got %d, want 2", result.GFTTCount)
	}
}

func TestToolErrors(t *testing.T) {
	s := New()
	path := createTestImageFile(t, squareImage())
	b64 := encodeBase64PNG(t, squareImage())

	tests := []struct {
		name string
		tool string
		args map[string]interface{}
	}{
		{"load without path", "image_load", map[string]interface{}{}},
		{"dimensions without path", "image_dimensions", map[string]interface{}{}},
		{"load missing file", "image_load", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"process without image", "corners_process", map[string]interface{}{}},
		{"process with both sources", "corners_process", map[string]interface{}{"path": path, "image_base64": b64}},
		{"process missing file", "corners_process", map[string]interface{}{"path": "/nonexistent/image.png"}},
		{"process bad base64", "corners_process", map[string]interface{}{"image_base64": "%%%"}},
		{"process even kernel", "corners_process", map[string]interface{}{"path": path, "smooth_kernel_size": 4}},
		{"process bad harris k", "corners_process", map[string]interface{}{"path": path, "harris_k": 0.5}},
		{"process bad format", "corners_process", map[string]interface{}{"path": path, "format": "bmp"}},
		{"process bad colormap", "corners_process", map[string]interface{}{"path": path, "angle_colormap": "jet"}},
		{"detect bad detector", "corners_detect", map[string]interface{}{"path": path, "detector": "sift"}},
		{"detect negative threshold", "corners_detect", map[string]interface{}{"path": path, "gftt_threshold": -1}},
		{"unknown tool", "corners_magic", map[string]interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			if resp.Error == nil {
				t.Fatal("Expected error response")
			}
			if resp.Error.Code != -32602 {
				t.Errorf("Error code: got %d, want -32602 (%v)", resp.Error.Code, resp.Error.Data)
			}
			if resp.Result != nil {
				t.Error("error response carries a result")
			}
		})
	}
}

func TestToolErrors_ParametersCheckedBeforeImage(t *testing.T) {
	s := New()
	resp := callTool(t, s, "corners_process", map[string]interface{}{
		"path":               "/nonexistent/image.png",
		"smooth_kernel_size": 4,
	})
	if resp.Error == nil {
		t.Fatal("Expected error response")
	}
	data, _ := resp.Error.Data.(string)
	if !strings.Contains(data, "unsupported") {
		t.Errorf("expected the parameter error first, got %q", data)
	}
	if s.cache.Len() != 0 {
		t.Error("image was loaded despite invalid parameters")
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()
	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  json.RawMessage(`{invalid json}`),
	})

	if resp.Error == nil {
		t.Fatal("Expected error for invalid JSON params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidArguments(t *testing.T) {
	s := New()
	params, _ := json.Marshal(map[string]interface{}{
		"name":      "corners_detect",
		"arguments": json.RawMessage(`{"path": 12}`),
	})
	resp := s.handleToolsCall(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params})

	if resp.Error == nil {
		t.Fatal("Expected error for mistyped arguments")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}
