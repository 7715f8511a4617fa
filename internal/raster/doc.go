// Package raster provides format-tagged pixel buffers for the star detector.
//
// Decoded images arrive in many concrete Go types. This package normalizes
// them once into a Buffer: a flat, interleaved sample slice tagged with a
// Depth (8-bit, 16-bit or 32-bit float) and a channel count (1-4). Every
// algorithm that touches pixels goes through the canonical accessor pair
// At/Set plus Max, the native full-scale value of the buffer's depth:
//
//	Uint8    0..255
//	Uint16   0..65535
//	Float32  0..1
//
// so thresholding and channel splitting are written once instead of once per
// pixel format.
//
// # Channel Layout
//
//   - 1 channel: luma
//   - 2 channels: luma, alpha
//   - 3 channels: red, green, blue
//   - 4 channels: red, green, blue, alpha
//
// # Ownership
//
// Buffers are not safe for concurrent mutation. Operations that rewrite
// samples (Threshold) work in place; callers that need to keep the original
// take a Clone first.
package raster
