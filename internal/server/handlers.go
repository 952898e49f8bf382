package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/corner-tools-mcp/internal/detection"
	"github.com/ironsheep/corner-tools-mcp/internal/imaging"
	"github.com/ironsheep/corner-tools-mcp/internal/pipeline"
)

// errInvalidArgs marks malformed or missing tool arguments.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "corners_process").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Errors caused by the caller's image or arguments return code -32602;
// all other failures return -32000. No partial result is ever sent.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	requestID := uuid.NewString()
	log := s.log.With().Str("tool", params.Name).Str("request_id", requestID).Logger()
	start := time.Now()

	result, err := s.executeTool(context.Background(), params.Name, params.Arguments)
	elapsed := time.Since(start)
	if err != nil {
		code := errorCode(err)
		log.Warn().Err(err).Int("code", code).Dur("duration", elapsed).Msg("tool call failed")
		if code == codeInvalidParams {
			return s.errorResponse(req.ID, code, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, code, "Tool execution failed", err.Error())
	}

	event := log.Info().Dur("duration", elapsed)
	if c, ok := result.(cornerCounter); ok {
		h, g := c.cornerCounts()
		event = event.Int("harris_count", h).Int("gftt_count", g)
	}
	event.Msg("tool call")

	return resultResponse(req.ID, map[string]interface{}{
		"content": []map[string]interface{}{
			{"type": "text", "text": mustMarshalJSON(result)},
		},
	})
}

// errorCode maps an error onto a JSON-RPC code.
func errorCode(err error) int {
	if pipeline.IsClientError(err) ||
		errors.Is(err, errInvalidArgs) ||
		errors.Is(err, imaging.ErrInvalidRaster) ||
		errors.Is(err, imaging.ErrInvalidParameter) {
		return codeInvalidParams
	}
	return codeToolFailed
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Layers argument overrides on the server tuning
//  3. Loads the image from cache or inline data
//  4. Runs the pipeline
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_unload":
		return s.handleImageUnload(args)

	// Corner Detection
	case "corners_process":
		return s.handleCornersProcess(ctx, args)
	case "corners_detect":
		return s.handleCornersDetect(ctx, args)

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArgs, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
// An empty data string is omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{
		Code:    code,
		Message: message,
	}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   e,
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, treating a missing object as empty.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// ImageUnloadResult reports how many images were dropped and how many
// remain cached.
type ImageUnloadResult struct {
	Evicted int `json:"evicted"`
	Cached  int `json:"cached"`
}

func (s *Server) handleImageUnload(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	result := &ImageUnloadResult{}
	if a.Path == "" {
		result.Evicted = s.cache.Clear()
	} else if s.cache.Evict(a.Path) {
		result.Evicted = 1
	}
	result.Cached = s.cache.Len()
	s.log.Debug().Str("path", a.Path).Int("evicted", result.Evicted).Int("cached", result.Cached).Msg("cache unload")
	return result, nil
}

// === Corner Detection Handlers ===

// imageSource names the input image of a corner tool.
type imageSource struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
}

// load returns the image from the cache or the inline payload. Exactly one
// source must be given.
func (src imageSource) load(cache *imaging.ImageCache) (image.Image, error) {
	switch {
	case src.Path != "" && src.ImageBase64 != "":
		return nil, fmt.Errorf("%w: give either path or image_base64, not both", errInvalidArgs)
	case src.Path != "":
		return cache.Load(src.Path)
	case src.ImageBase64 != "":
		img, _, err := imaging.DecodeBase64(src.ImageBase64)
		return img, err
	default:
		return nil, fmt.Errorf("%w: no image provided (path or image_base64)", pipeline.ErrInvalidInput)
	}
}

// detectorOverrides are the per-call parameter overrides. Nil fields keep
// the server configuration.
type detectorOverrides struct {
	SmoothKernelSize *int     `json:"smooth_kernel_size"`
	SmoothSigma      *float64 `json:"smooth_sigma"`
	HarrisK          *float64 `json:"harris_k"`
	HarrisThreshold  *float64 `json:"harris_threshold"`
	GFTTThreshold    *float64 `json:"gftt_threshold"`
	MinDistance      *int     `json:"min_distance"`
	MaxCorners       *int     `json:"max_corners"`
}

func (o detectorOverrides) apply(p *pipeline.Params) {
	if o.SmoothKernelSize != nil {
		p.SmoothKernelSize = *o.SmoothKernelSize
	}
	if o.SmoothSigma != nil {
		p.SmoothSigma = *o.SmoothSigma
	}
	if o.HarrisK != nil {
		p.HarrisK = *o.HarrisK
	}
	if o.HarrisThreshold != nil {
		p.Harris.Threshold = *o.HarrisThreshold
	}
	if o.GFTTThreshold != nil {
		p.GFTT.Threshold = *o.GFTTThreshold
	}
	if o.MinDistance != nil {
		p.Harris.MinDistance = *o.MinDistance
		p.GFTT.MinDistance = *o.MinDistance
	}
	if o.MaxCorners != nil {
		p.GFTT.MaxCorners = *o.MaxCorners
	}
}

// baseParams returns the server tuning as pipeline parameters.
func (s *Server) baseParams() (pipeline.Params, error) {
	p, err := s.tuning.Params()
	if err != nil {
		return p, fmt.Errorf("%w: %v", pipeline.ErrUnsupportedParameters, err)
	}
	return p, nil
}

type cornersProcessArgs struct {
	imageSource
	detectorOverrides
	MarkerRadius  *float64 `json:"marker_radius"`
	AngleColormap *string  `json:"angle_colormap"`
	Format        *string  `json:"format"`
}

// CornersProcessResult is the corners_process payload: the nine encoded
// stages plus summary fields.
type CornersProcessResult struct {
	pipeline.Response
	Format      string `json:"format"`
	MimeType    string `json:"mime_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	HarrisCount int    `json:"harris_count"`
	GFTTCount   int    `json:"gftt_count"`
}

func (r *CornersProcessResult) cornerCounts() (int, int) { return r.HarrisCount, r.GFTTCount }

func (s *Server) handleCornersProcess(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a cornersProcessArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	p, err := s.baseParams()
	if err != nil {
		return nil, err
	}
	a.detectorOverrides.apply(&p)
	if a.MarkerRadius != nil {
		p.MarkerRadius = *a.MarkerRadius
	}
	if a.AngleColormap != nil {
		p.AngleColormap = *a.AngleColormap
	}

	opts, err := s.tuning.EncodeOptions()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrUnsupportedParameters, err)
	}
	if a.Format != nil {
		f, err := imaging.ParseFormat(*a.Format)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", pipeline.ErrUnsupportedParameters, err)
		}
		opts.Format = f
	}

	// Parameters are checked before the image is read.
	if err := p.Validate(); err != nil {
		return nil, err
	}
	img, err := a.imageSource.load(s.cache)
	if err != nil {
		return nil, err
	}

	res, err := pipeline.Process(ctx, img, p)
	if err != nil {
		return nil, err
	}
	resp, err := pipeline.Encode(res, opts)
	if err != nil {
		return nil, err
	}

	return &CornersProcessResult{
		Response:    *resp,
		Format:      string(opts.Format),
		MimeType:    opts.Format.MimeType(),
		Width:       res.Width(),
		Height:      res.Height(),
		HarrisCount: len(res.HarrisPoints),
		GFTTCount:   len(res.GFTTPoints),
	}, nil
}

type cornersDetectArgs struct {
	imageSource
	detectorOverrides
	Detector string `json:"detector"`
}

// CornersDetectResult is the corners_detect payload. A list is null when
// its detector was not requested.
type CornersDetectResult struct {
	Width       int                     `json:"width"`
	Height      int                     `json:"height"`
	Harris      []detection.CornerPoint `json:"harris"`
	GFTT        []detection.CornerPoint `json:"gftt"`
	HarrisCount int                     `json:"harris_count"`
	GFTTCount   int                     `json:"gftt_count"`
}

func (r *CornersDetectResult) cornerCounts() (int, int) { return r.HarrisCount, r.GFTTCount }

func (s *Server) handleCornersDetect(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a cornersDetectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Detector == "" {
		a.Detector = "both"
	}
	wantHarris := a.Detector == "harris" || a.Detector == "both"
	wantGFTT := a.Detector == "gftt" || a.Detector == "both"
	if !wantHarris && !wantGFTT {
		return nil, fmt.Errorf("%w: detector %q must be harris, gftt, or both", pipeline.ErrUnsupportedParameters, a.Detector)
	}

	p, err := s.baseParams()
	if err != nil {
		return nil, err
	}
	a.detectorOverrides.apply(&p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	img, err := a.imageSource.load(s.cache)
	if err != nil {
		return nil, err
	}

	d, err := pipeline.Detect(ctx, img, p)
	if err != nil {
		return nil, err
	}

	result := &CornersDetectResult{Width: d.Width, Height: d.Height}
	if wantHarris {
		result.Harris = nonNil(d.Harris)
		result.HarrisCount = len(d.Harris)
	}
	if wantGFTT {
		result.GFTT = nonNil(d.GFTT)
		result.GFTTCount = len(d.GFTT)
	}
	return result, nil
}

// cornerCounter is implemented by results that carry corner counts for the
// call log.
type cornerCounter interface {
	cornerCounts() (harris, gftt int)
}

func nonNil(c []detection.CornerPoint) []detection.CornerPoint {
	if c == nil {
		return []detection.CornerPoint{}
	}
	return c
}
