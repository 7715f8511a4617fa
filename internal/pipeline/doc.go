// Package pipeline wires the star detection stages into a single call.
//
// A Detector isolates small-scale structure with a multiscale filter,
// searches for the binarization cutoff that yields enough detections,
// extracts the stars every color channel agrees on and optionally hashes
// them into quads.
//
// Basic usage:
//
//	cfg := pipeline.DefaultConfig()
//	cfg.MinStarCount = 200
//	d, err := pipeline.New(cfg)
//	if err != nil {
//	    return err
//	}
//	res, err := d.Detect(img)
//
// Configuration can also be loaded from a JSON file with LoadConfig.
package pipeline
