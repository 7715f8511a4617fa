package server

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/anshap1719/stardetect/internal/detection"
	"github.com/anshap1719/stardetect/internal/imaging"
	"github.com/anshap1719/stardetect/internal/pipeline"
	"github.com/anshap1719/stardetect/internal/quad"
	"github.com/anshap1719/stardetect/internal/raster"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "stars_detect").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if s.debug {
		log.Printf("tool %s finished in %s (err=%v)", params.Name, time.Since(start).Round(time.Millisecond), err)
	}
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
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
//
// Each star tool:
//  1. Unmarshals arguments from JSON
//  2. Layers per-call overrides on the server's detector configuration
//  3. Loads the image from cache and crops the optional region
//  4. Runs detection and maps stars back to full-image coordinates
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_evict":
		return s.handleImageEvict(args)

	// Star Detection
	case "stars_detect":
		return s.handleStarsDetect(args)
	case "stars_extract":
		return s.handleStarsExtract(args)
	case "stars_binarize":
		return s.handleStarsBinarize(args)

	// Star Analysis
	case "stars_quads":
		return s.handleStarsQuads(args)
	case "stars_colors":
		return s.handleStarsColors(args)
	case "stars_annotate":
		return s.handleStarsAnnotate(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type evictResult struct {
	Evicted string `json:"evicted,omitempty"`
	Cached  int    `json:"cached"`
}

func (s *Server) handleImageEvict(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, err
		}
	}
	if a.Path == "" {
		s.cache.Clear()
		return &evictResult{Evicted: "all"}, nil
	}
	s.cache.Evict(a.Path)
	return &evictResult{Evicted: a.Path, Cached: s.cache.Len()}, nil
}

// === Detection Handlers ===

// configOverrides are the detector settings a tool call may change. Unset
// fields keep the server's value.
type configOverrides struct {
	MinStarCount           *int    `json:"min_star_count"`
	MinStarRadius          *int    `json:"min_star_radius"`
	MaxStarRadius          *int    `json:"max_star_radius"`
	MaxDecompositionLevels *int    `json:"max_decomposition_levels"`
	Kernel                 *string `json:"kernel"`
	CountStrategy          *string `json:"count_strategy"`
	Workers                *int    `json:"workers"`
}

func (o configOverrides) apply(cfg pipeline.Config) pipeline.Config {
	if o.MinStarCount != nil {
		cfg.MinStarCount = *o.MinStarCount
	}
	if o.MinStarRadius != nil {
		cfg.MinStarRadius = *o.MinStarRadius
	}
	if o.MaxStarRadius != nil {
		cfg.MaxStarRadius = *o.MaxStarRadius
	}
	if o.MaxDecompositionLevels != nil {
		cfg.MaxDecompositionLevels = *o.MaxDecompositionLevels
	}
	if o.Kernel != nil {
		cfg.Kernel = *o.Kernel
	}
	if o.CountStrategy != nil {
		cfg.CountStrategy = *o.CountStrategy
	}
	if o.Workers != nil {
		cfg.Workers = *o.Workers
	}
	return cfg
}

type detectArgs struct {
	configOverrides
	Path         string          `json:"path"`
	Region       *imaging.Region `json:"region"`
	ComputeQuads bool            `json:"compute_quads"`
}

// detectOutput is the JSON shape of stars_detect and stars_extract.
type detectOutput struct {
	*pipeline.Result
	Count     int    `json:"count"`
	QuadError string `json:"quad_error,omitempty"`
}

func newDetectOutput(res *pipeline.Result) *detectOutput {
	out := &detectOutput{Result: res, Count: len(res.Stars)}
	if res.QuadError != nil {
		out.QuadError = res.QuadError.Error()
	}
	return out
}

// runDetect loads the image, crops the region and detects stars. A nil
// cutoff searches for one. The returned stars are in full-image coordinates
// while Width and Height describe the analyzed region. The full image is
// returned for rendering.
func (s *Server) runDetect(a detectArgs, cutoff *uint8) (*pipeline.Result, image.Image, error) {
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, err
	}

	cfg := a.apply(s.cfg)
	cfg.ComputeQuads = false
	d, err := pipeline.New(cfg)
	if err != nil {
		return nil, nil, err
	}

	src := img
	var offset image.Point
	if a.Region != nil {
		src, offset, err = imaging.CropRegion(img, *a.Region)
		if err != nil {
			return nil, nil, err
		}
	}

	var res *pipeline.Result
	if cutoff != nil {
		res, err = d.Extract(src, *cutoff)
	} else {
		res, err = d.Detect(src)
	}
	if err != nil {
		return nil, nil, err
	}

	if offset != (image.Point{}) {
		for i := range res.Stars {
			res.Stars[i].Coord = res.Stars[i].Coord.Add(offset)
		}
	}
	if a.ComputeQuads {
		res.Quads, res.QuadError = d.Hash(res.Stars)
	}
	return res, img, nil
}

func (s *Server) handleStarsDetect(args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.cfg.ComputeQuads {
		a.ComputeQuads = true
	}
	res, _, err := s.runDetect(a, nil)
	if err != nil {
		return nil, err
	}
	return newDetectOutput(res), nil
}

type extractArgs struct {
	detectArgs
	Cutoff *int `json:"cutoff"`
}

// parseCutoff validates an 8-bit cutoff argument.
func parseCutoff(c *int) (uint8, error) {
	if c == nil {
		return 0, fmt.Errorf("cutoff is required")
	}
	if *c < 0 || *c > 255 {
		return 0, fmt.Errorf("cutoff must be between 0 and 255, got %d", *c)
	}
	return uint8(*c), nil
}

func (s *Server) handleStarsExtract(args json.RawMessage) (interface{}, error) {
	var a extractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cutoff, err := parseCutoff(a.Cutoff)
	if err != nil {
		return nil, err
	}
	res, _, err := s.runDetect(a.detectArgs, &cutoff)
	if err != nil {
		return nil, err
	}
	return newDetectOutput(res), nil
}

type binarizeArgs struct {
	Path     string `json:"path"`
	Cutoff   *int   `json:"cutoff"`
	Raw      bool   `json:"raw"`
	MaxWidth int    `json:"max_width"`
}

type binarizeResult struct {
	imaging.ImageResult
	Cutoff   uint8 `json:"cutoff"`
	Filtered bool  `json:"filtered"`
	Levels   int   `json:"levels,omitempty"`
}

func (s *Server) handleStarsBinarize(args json.RawMessage) (interface{}, error) {
	var a binarizeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cutoff, err := parseCutoff(a.Cutoff)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	buf, err := raster.FromImage(img)
	if err != nil {
		return nil, err
	}
	levels := 0
	if !a.Raw {
		d, err := pipeline.New(s.cfg)
		if err != nil {
			return nil, err
		}
		if buf, levels, err = d.Filter(buf); err != nil {
			return nil, err
		}
	}
	if err := raster.Threshold(buf, cutoff); err != nil {
		return nil, err
	}
	// thresholding binarizes alpha too; keep the preview visible
	if err := buf.Opaque(); err != nil {
		return nil, err
	}

	mask, err := buf.ToImage()
	if err != nil {
		return nil, err
	}
	preview, err := imaging.EncodePNG(mask, a.MaxWidth)
	if err != nil {
		return nil, err
	}
	return &binarizeResult{
		ImageResult: *preview,
		Cutoff:      cutoff,
		Filtered:    !a.Raw,
		Levels:      levels,
	}, nil
}

// === Analysis Handlers ===

type quadsResult struct {
	Count  int               `json:"count"`
	Cutoff uint8             `json:"cutoff"`
	Quads  []quad.Descriptor `json:"quads"`
}

func (s *Server) handleStarsQuads(args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	a.ComputeQuads = true
	res, _, err := s.runDetect(a, nil)
	if err != nil {
		return nil, err
	}
	if res.QuadError != nil {
		return nil, res.QuadError
	}
	return &quadsResult{Count: len(res.Quads), Cutoff: res.Cutoff, Quads: res.Quads}, nil
}

type colorsResult struct {
	Count  int                 `json:"count"`
	Cutoff uint8               `json:"cutoff"`
	Stars  []imaging.StarColor `json:"stars"`
}

func (s *Server) handleStarsColors(args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	a.ComputeQuads = false
	res, img, err := s.runDetect(a, nil)
	if err != nil {
		return nil, err
	}
	colors, err := imaging.StarColors(img, res.Stars)
	if err != nil {
		return nil, err
	}
	return &colorsResult{Count: len(colors), Cutoff: res.Cutoff, Stars: colors}, nil
}

type annotateArgs struct {
	detectArgs
	Color      string `json:"color"`
	Padding    *int   `json:"padding"`
	Labels     bool   `json:"labels"`
	MaxWidth   int    `json:"max_width"`
	OutputPath string `json:"output_path"`
}

type annotateResult struct {
	*imaging.AnnotateResult
	Cutoff uint8                  `json:"cutoff"`
	Detail []detection.StarCenter `json:"detections"`
}

func (s *Server) handleStarsAnnotate(args json.RawMessage) (interface{}, error) {
	var a annotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	padding := 2
	if a.Padding != nil {
		padding = *a.Padding
	}
	a.ComputeQuads = false

	res, img, err := s.runDetect(a.detectArgs, nil)
	if err != nil {
		return nil, err
	}
	out, err := imaging.Annotate(img, res.Stars, imaging.AnnotateOptions{
		Color:      a.Color,
		Padding:    padding,
		Labels:     a.Labels,
		MaxWidth:   a.MaxWidth,
		OutputPath: a.OutputPath,
	})
	if err != nil {
		return nil, err
	}
	return &annotateResult{AnnotateResult: out, Cutoff: res.Cutoff, Detail: res.Stars}, nil
}
