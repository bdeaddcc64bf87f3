package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ironsheep/rectangles-mcp/internal/config"
	"github.com/ironsheep/rectangles-mcp/internal/dataset"
	"github.com/ironsheep/rectangles-mcp/internal/detection"
	"github.com/ironsheep/rectangles-mcp/internal/imaging"
	"github.com/ironsheep/rectangles-mcp/internal/model"
	"github.com/ironsheep/rectangles-mcp/internal/patches"
)

// Defaults applied to omitted tool arguments.
const (
	defaultNum         = 10
	defaultSide        = 14
	defaultRenderScale = 8
	defaultPatchSide   = 3
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "rectangles_generate").
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

	result, err := s.executeTool(params.Name, params.Arguments)
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
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads datasets or masks from cache as needed
//  4. Calls the appropriate dataset/imaging/detection/model function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Dataset Generation
	case "rectangles_generate":
		return s.handleGenerate(args)

	// Visualization
	case "rectangles_render":
		return s.handleRender(args)
	case "rectangles_montage":
		return s.handleMontage(args)

	// Analysis
	case "rectangles_detect":
		return s.handleDetect(args)
	case "rectangles_patches":
		return s.handlePatches(args)

	// Model Evaluation
	case "rectangles_evaluate":
		return s.handleEvaluate(args)
	case "rectangles_classify_file":
		return s.handleClassifyFile(args)

	// Housekeeping
	case "rectangles_cache_clear":
		return s.handleCacheClear(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	resp := &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
		},
	}
	if data != "" {
		resp.Error.Data = data
	}
	return resp
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments, treating missing arguments as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Dataset Arguments ===

// datasetArgs identifies a generated dataset. It is embedded in the argument
// struct of every tool that works on one.
type datasetArgs struct {
	Num         int    `json:"num"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Seed        uint64 `json:"seed"`
	MaxAttempts int    `json:"max_attempts"`
	Parallel    bool   `json:"parallel"`
	Float32     bool   `json:"float32"`
}

func (a *datasetArgs) applyDefaults() {
	if a.Num == 0 {
		a.Num = defaultNum
	}
	if a.Width == 0 {
		a.Width = defaultSide
	}
	if a.Height == 0 {
		a.Height = defaultSide
	}
}

// loadDataset returns the cached dataset described by a, generating it if needed.
func (s *Server) loadDataset(a datasetArgs) (*dataset.Dataset, error) {
	a.applyDefaults()
	opts := dataset.Options{
		Num:         a.Num,
		Width:       a.Width,
		Height:      a.Height,
		MaxAttempts: a.MaxAttempts,
		Float32:     a.Float32,
	}
	return s.datasets.Get(context.Background(), opts, a.Seed, a.Parallel)
}

// sample returns image index of the dataset described by a.
func (s *Server) sample(a datasetArgs, index int) (*dataset.Dataset, dataset.Image, error) {
	ds, err := s.loadDataset(a)
	if err != nil {
		return nil, dataset.Image{}, err
	}
	if index < 0 || index >= ds.Len() {
		return nil, dataset.Image{}, fmt.Errorf("index %d out of range [0, %d)", index, ds.Len())
	}
	return ds, ds.Images[index], nil
}

// === Dataset Generation Handlers ===

type generateArgs struct {
	datasetArgs
	IncludePixels bool `json:"include_pixels"`
}

// GenerateResult summarizes a generated dataset.
type GenerateResult struct {
	Num        int                 `json:"num"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Seed       uint64              `json:"seed"`
	Tall       int                 `json:"tall"`
	Wide       int                 `json:"wide"`
	Labels     []float64           `json:"labels"`
	Rectangles []dataset.Rectangle `json:"rectangles"`
	Features   [][]float64         `json:"features,omitempty"`
}

func (s *Server) handleGenerate(args json.RawMessage) (interface{}, error) {
	var a generateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	ds, err := s.loadDataset(a.datasetArgs)
	if err != nil {
		return nil, err
	}

	tall, wide := ds.ClassCounts()
	result := &GenerateResult{
		Num:        ds.Len(),
		Width:      ds.Width,
		Height:     ds.Height,
		Seed:       a.Seed,
		Tall:       tall,
		Wide:       wide,
		Labels:     ds.Labels,
		Rectangles: ds.Rectangles,
	}
	if a.IncludePixels {
		result.Features = ds.Features()
	}
	return result, nil
}

// === Visualization Handlers ===

type renderArgs struct {
	datasetArgs
	Index int `json:"index"`
	Scale int `json:"scale"`
}

// SampleRender is one rendered sample with its ground truth.
type SampleRender struct {
	Index     int               `json:"index"`
	Rectangle dataset.Rectangle `json:"rectangle"`
	Label     float64           `json:"label"`
	*imaging.RenderResult
}

func (s *Server) handleRender(args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = defaultRenderScale
	}
	ds, img, err := s.sample(a.datasetArgs, a.Index)
	if err != nil {
		return nil, err
	}
	rendered, err := imaging.Render(img, a.Scale)
	if err != nil {
		return nil, err
	}
	return &SampleRender{
		Index:        a.Index,
		Rectangle:    ds.Rectangles[a.Index],
		Label:        ds.Labels[a.Index],
		RenderResult: rendered,
	}, nil
}

type montageArgs struct {
	datasetArgs
	Columns     int    `json:"columns"`
	Scale       int    `json:"scale"`
	Limit       int    `json:"limit"`
	ShowIndices bool   `json:"show_indices"`
	TallColor   string `json:"tall_color"`
	WideColor   string `json:"wide_color"`
}

// MontageResult is a rendered montage with the class balance of its dataset.
type MontageResult struct {
	Samples int `json:"samples"`
	Tall    int `json:"tall"`
	Wide    int `json:"wide"`
	*imaging.RenderResult
}

func (s *Server) handleMontage(args json.RawMessage) (interface{}, error) {
	var a montageArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	ds, err := s.loadDataset(a.datasetArgs)
	if err != nil {
		return nil, err
	}
	rendered, err := imaging.Montage(ds, imaging.MontageOptions{
		Columns:     a.Columns,
		Scale:       a.Scale,
		Limit:       a.Limit,
		ShowIndices: a.ShowIndices,
		TallColor:   a.TallColor,
		WideColor:   a.WideColor,
	})
	if err != nil {
		return nil, err
	}

	samples := ds.Len()
	if a.Limit > 0 && a.Limit < samples {
		samples = a.Limit
	}
	tall, wide := ds.ClassCounts()
	return &MontageResult{Samples: samples, Tall: tall, Wide: wide, RenderResult: rendered}, nil
}

// === Analysis Handlers ===

type detectArgs struct {
	datasetArgs
	Index     int `json:"index"`
	MinPixels int `json:"min_pixels"`
}

// DetectResult compares detected outlines with the stamped rectangle.
type DetectResult struct {
	Index     int                 `json:"index"`
	Rectangle dataset.Rectangle   `json:"rectangle"`
	Outlines  []detection.Outline `json:"outlines"`
	Count     int                 `json:"count"`

	// Match reports whether the largest outline has exactly the stamped corners.
	Match bool `json:"match"`
}

func (s *Server) handleDetect(args json.RawMessage) (interface{}, error) {
	var a detectArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.MinPixels == 0 {
		a.MinPixels = 1
	}
	ds, img, err := s.sample(a.datasetArgs, a.Index)
	if err != nil {
		return nil, err
	}

	outlines := detection.FindOutlines(img, a.MinPixels)
	result := &DetectResult{
		Index:     a.Index,
		Rectangle: ds.Rectangles[a.Index],
		Outlines:  outlines,
		Count:     len(outlines),
	}
	if len(outlines) > 0 {
		result.Match = outlines[0].Rectangle() == result.Rectangle
	}
	return result, nil
}

type patchesArgs struct {
	datasetArgs
	PatchHeight    int  `json:"patch_height"`
	PatchWidth     int  `json:"patch_width"`
	IncludePatches bool `json:"include_patches"`
}

// PatchesResult describes the distinct patches of a dataset.
type PatchesResult struct {
	PatchHeight int         `json:"patch_height"`
	PatchWidth  int         `json:"patch_width"`
	Total       int         `json:"total"`
	Unique      int         `json:"unique"`
	Patches     [][]float64 `json:"patches,omitempty"`
}

func (s *Server) handlePatches(args json.RawMessage) (interface{}, error) {
	var a patchesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.PatchHeight == 0 {
		a.PatchHeight = defaultPatchSide
	}
	if a.PatchWidth == 0 {
		a.PatchWidth = defaultPatchSide
	}
	ds, err := s.loadDataset(a.datasetArgs)
	if err != nil {
		return nil, err
	}

	z, err := patches.InducingPatches(ds, a.PatchHeight, a.PatchWidth)
	if err != nil {
		return nil, err
	}
	rows, _ := z.Dims()
	result := &PatchesResult{
		PatchHeight: a.PatchHeight,
		PatchWidth:  a.PatchWidth,
		Total:       ds.Len() * (ds.Height - a.PatchHeight + 1) * (ds.Width - a.PatchWidth + 1),
		Unique:      rows,
	}
	if a.IncludePatches {
		result.Patches = make([][]float64, rows)
		for i := range result.Patches {
			result.Patches[i] = append([]float64(nil), z.RawRowView(i)...)
		}
	}
	return result, nil
}

// === Model Evaluation Handlers ===

type evaluateArgs struct {
	Profile       string `json:"profile"`
	Seed          uint64 `json:"seed"`
	Train         *bool  `json:"train"`
	MaxIterations int    `json:"max_iterations"`
}

func (s *Server) handleEvaluate(args json.RawMessage) (interface{}, error) {
	var a evaluateArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Profile == "" {
		a.Profile = config.Fast.String()
	}
	profile, err := config.ParseProfile(a.Profile)
	if err != nil {
		return nil, err
	}
	train := true
	if a.Train != nil {
		train = *a.Train
	}

	cfg := config.ForProfile(profile)
	cfg.Seed = a.Seed
	if a.MaxIterations != 0 {
		cfg.MaxIterations = a.MaxIterations
	}

	classifier, err := model.NewOutlineClassifier(cfg.Jitter)
	if err != nil {
		return nil, err
	}
	exp := model.NewExperiment(cfg)
	exp.Logger = s.logger

	report, err := exp.Run(context.Background(), classifier, train)
	if err != nil {
		return nil, err
	}
	report.Profile = profile.String()
	return report, nil
}

type classifyFileArgs struct {
	Path      string `json:"path"`
	Threshold *int   `json:"threshold"`
	Scale     int    `json:"scale"`
}

// ClassifyResult is the classification of a loaded image.
type ClassifyResult struct {
	Path            string            `json:"path"`
	Width           int               `json:"width"`
	Height          int               `json:"height"`
	Outline         detection.Outline `json:"outline"`
	ProbabilityTall float64           `json:"probability_tall"`
	Label           float64           `json:"label"`
	Orientation     string            `json:"orientation"`
}

func (s *Server) handleClassifyFile(args json.RawMessage) (interface{}, error) {
	var a classifyFileArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	threshold := int(imaging.DefaultThreshold)
	if a.Threshold != nil {
		threshold = *a.Threshold
	}
	if threshold < 0 || threshold > 255 {
		return nil, fmt.Errorf("threshold must be in [0, 255], got %d", threshold)
	}
	if a.Scale == 0 {
		a.Scale = 1
	}

	mask, err := s.masks.Load(a.Path, uint8(threshold))
	if err != nil {
		return nil, err
	}
	if a.Scale > 1 {
		if mask, err = imaging.Downscale(mask, a.Scale); err != nil {
			return nil, err
		}
	}

	outlines := detection.FindOutlines(mask, 1)
	if len(outlines) == 0 {
		return nil, fmt.Errorf("no outline found in %s", a.Path)
	}

	classifier, err := model.NewOutlineClassifier(config.ForProfile(config.Full).Jitter)
	if err != nil {
		return nil, err
	}
	p, err := classifier.PredictImage(mask)
	if err != nil {
		return nil, err
	}

	result := &ClassifyResult{
		Path:            a.Path,
		Width:           mask.Width,
		Height:          mask.Height,
		Outline:         outlines[0],
		ProbabilityTall: p,
		Orientation:     "wide",
	}
	if p > 0.5 {
		result.Label = 1
		result.Orientation = "tall"
	}
	return result, nil
}

// === Housekeeping Handlers ===

type cacheClearArgs struct {
	Path string `json:"path"`
}

// CacheClearResult reports how many entries were dropped.
type CacheClearResult struct {
	Datasets int `json:"datasets"`
	Masks    int `json:"masks"`
}

func (s *Server) handleCacheClear(args json.RawMessage) (interface{}, error) {
	var a cacheClearArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	masksBefore := s.masks.Len()
	if a.Path != "" {
		s.masks.Evict(a.Path)
		return &CacheClearResult{Masks: masksBefore - s.masks.Len()}, nil
	}

	datasets := s.datasets.Len()
	s.datasets.Clear()
	s.masks.Clear()
	return &CacheClearResult{Datasets: datasets, Masks: masksBefore}, nil
}
