// Package server implements the MCP (Model Context Protocol) server for the
// synthetic rectangles dataset.
//
// This package provides a JSON-RPC 2.0 server that exposes dataset generation,
// rendering, outline detection and classifier evaluation through the MCP
// protocol.
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
// # Available Tools
//
// Dataset Generation:
//   - rectangles_generate: Labels, rectangle corners and class balance
//
// Visualization:
//   - rectangles_render: One sample as a PNG
//   - rectangles_montage: Labelled grid of samples as a PNG
//
// Analysis:
//   - rectangles_detect: Recover outlines from a sample's pixels
//   - rectangles_patches: Distinct sliding-window patches
//
// Model Evaluation:
//   - rectangles_evaluate: Train and score the outline classifier
//   - rectangles_classify_file: Classify an image file
//
// Housekeeping:
//   - rectangles_cache_clear: Drop cached datasets and masks
//
// # Caching
//
// Tools that operate on a dataset take num, width, height, seed,
// max_attempts and parallel arguments. Generation is deterministic, so the
// server builds each distinct combination once and reuses it across calls.
// Masks loaded from image files are cached by path and threshold.
// Both caches persist until rectangles_cache_clear is called.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
