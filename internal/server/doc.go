// Package server implements the MCP (Model Context Protocol) server for star
// detection.
//
// This package provides a JSON-RPC 2.0 server that exposes the detection
// pipeline through the MCP protocol, so that MCP clients can find stars in
// astronomical images, inspect the binarization the detector sees and
// compute quad descriptors for plate matching.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_evict: Drop one or all images from the cache
//
// Star Detection:
//   - stars_detect: Search for the cutoff and return stars
//   - stars_extract: Return stars at a fixed cutoff
//   - stars_binarize: Render the binary mask at a cutoff
//
// Star Analysis:
//   - stars_quads: Quad descriptors for every detected star
//   - stars_colors: Mean color and blue/red index per star
//   - stars_annotate: Draw markers around detected stars
//
// # Configuration
//
// The server is created with a base pipeline.Config. Every detection tool
// accepts the same field names as optional arguments and applies them to
// that call only.
//
// # Image Caching
//
// Images are cached by path and reused across tool calls. The cache lives
// until the process exits or image_evict is called.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv, err := server.New(pipeline.DefaultConfig(), false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
