// Package detection finds star centers in binarized images.
//
// The package works on binary masks produced by thresholding a raster. Any
// non-zero pixel is foreground.
//
// # Pipeline
//
// Star detection follows a fixed sequence:
//
//  1. Threshold: Binarize clones the image, applies a cutoff and splits the
//     result into per-channel masks
//  2. Contours: TraceContours follows the outer boundary of every
//     8-connected foreground region
//  3. Extraction: Extract reduces each contour to a center and radius and
//     drops candidates outside the size band
//  4. Consensus: a star survives only when all three channels report the
//     same center
//
// Optimizer wraps steps 1 to 4 in a downward search over cutoffs, stopping
// at the first cutoff whose count reaches the target.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// Masks that are sub-images report centers in the parent's coordinates.
//
// # Limitations
//
// Contour tracing follows outer boundaries only, so a ring yields one
// candidate and its hole is ignored. Stars that touch at the chosen cutoff
// merge into a single region; lowering the cutoff can therefore reduce the
// count.
package detection
