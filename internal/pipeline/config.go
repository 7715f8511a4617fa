package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anshap1719/stardetect/internal/detection"
	"github.com/anshap1719/stardetect/internal/multiscale"
)

// ErrInvalidConfig wraps every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Counting strategies for the threshold search.
const (
	StrategyConsensus = "consensus"
	StrategyLuminance = "luminance"
)

// maxConfigSize caps the size of a config file.
const maxConfigSize = 1 * 1024 * 1024 // 1MB

// Config controls a Detector. The JSON form uses the same field names as the
// server's tool arguments.
type Config struct {
	// MinStarCount is the detection count the threshold search must reach.
	MinStarCount int `json:"min_star_count"`

	// MinStarRadius and MaxStarRadius bound accepted star radii, inclusive.
	MinStarRadius int `json:"min_star_radius"`
	MaxStarRadius int `json:"max_star_radius"`

	// MaxDecompositionLevels caps the number of multiscale levels.
	MaxDecompositionLevels int `json:"max_decomposition_levels"`

	// Kernel is "linear" or "b3spline".
	Kernel string `json:"kernel"`

	// CountStrategy is "consensus" or "luminance".
	CountStrategy string `json:"count_strategy"`

	// ComputeQuads enables quad hashing of the detected stars.
	ComputeQuads bool `json:"compute_quads"`

	// Workers bounds the extraction worker pool. Zero uses GOMAXPROCS.
	Workers int `json:"workers"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		MinStarCount:           1000,
		MinStarRadius:          1,
		MaxStarRadius:          24,
		MaxDecompositionLevels: 20,
		Kernel:                 multiscale.Linear.Name,
		CountStrategy:          StrategyConsensus,
	}
}

// Band returns the accepted radius range.
func (c Config) Band() detection.SizeBand {
	return detection.SizeBand{Min: c.MinStarRadius, Max: c.MaxStarRadius}
}

// Validate checks that the configuration values are usable.
func (c Config) Validate() error {
	if c.MinStarCount <= 0 {
		return fmt.Errorf("%w: min_star_count must be positive, got %d", ErrInvalidConfig, c.MinStarCount)
	}
	if err := c.Band().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.MaxDecompositionLevels < 1 {
		return fmt.Errorf("%w: max_decomposition_levels must be >= 1, got %d", ErrInvalidConfig, c.MaxDecompositionLevels)
	}
	if _, err := multiscale.KernelByName(c.Kernel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.CountStrategy {
	case "", StrategyConsensus, StrategyLuminance:
	default:
		return fmt.Errorf("%w: unknown count_strategy %q", ErrInvalidConfig, c.CountStrategy)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// LoadConfig reads a Config from a JSON file. The file must have a .json
// extension and be at most 1MB. Fields omitted from the file keep their
// default values.
func LoadConfig(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Config{}, fmt.Errorf("%w: config file must have .json extension, got %q", ErrInvalidConfig, ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return Config{}, fmt.Errorf("%w: config file too large: %d bytes (max %d)", ErrInvalidConfig, info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: failed to parse config JSON: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
