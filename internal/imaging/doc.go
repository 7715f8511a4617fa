// Package imaging loads star field images and renders detection results.
//
// It sits between files on disk and the detector: decoding and caching
// frames, cropping regions of interest, sampling star colors and drawing
// markers over detections for visual inspection.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The other functions are
// stateless and never modify their input image.
//
// # Supported Formats
//
// PNG, JPEG, GIF, TIFF and BMP decode through the standard image registry.
// 16-bit PNG and TIFF frames keep their depth. Previews are always encoded
// as PNG.
package imaging
