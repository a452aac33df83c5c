// Package config provides configuration loading and management for
// cryomatch. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// FeatureSpec describes one real-space Gaussian feature of the
// synthetic specimen.
type FeatureSpec struct {
	// Amp is the peak amplitude of the feature
	Amp float64 `yaml:"amp"`

	// Sigma is the spatial width in pixels
	Sigma float64 `yaml:"sigma"`

	// Center is the feature position in pixel coordinates
	Center [3]float64 `yaml:"center"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Scene parameters control the synthetic matching problem
	Scene struct {
		// Size is the real-space image edge length in pixels
		Size int `yaml:"size"`

		// MaxR is the resolution cutoff in frequency pixels
		MaxR int `yaml:"maxR"`

		// Mode selects the projection geometry: 2d, ref3d, or data3d
		Mode string `yaml:"mode"`

		// Features lists the specimen's Gaussian features
		Features []FeatureSpec `yaml:"features"`

		// Gridded serves the reference from a rasterized copy by
		// interpolation instead of evaluating it in closed form
		Gridded bool `yaml:"gridded"`

		// PsiSteps is the number of in-plane angles for 2d mode
		PsiSteps int `yaml:"psiSteps"`

		// RotSteps and TiltSteps extend the orientation grid for the
		// 3D modes
		RotSteps  int `yaml:"rotSteps"`
		TiltSteps int `yaml:"tiltSteps"`

		// ShiftHalf and ShiftStep define the translation grid:
		// candidates cover [-shiftHalf..shiftHalf] steps of shiftStep
		// pixels per axis
		ShiftHalf int     `yaml:"shiftHalf"`
		ShiftStep float64 `yaml:"shiftStep"`

		// Observations is how many images to fabricate and match
		Observations int `yaml:"observations"`

		// Noise is the standard deviation of the additive noise
		Noise float64 `yaml:"noise"`

		// Seed makes fabrication reproducible
		Seed uint64 `yaml:"seed"`

		// WeightEdge is the raised-cosine falloff width in shells
		WeightEdge int `yaml:"weightEdge"`
	} `yaml:"scene"`

	// Search parameters control the matching sweeps
	Search struct {
		// Metric selects the similarity kernel: diff2 or cc
		Metric string `yaml:"metric"`

		// Workers specifies how many goroutines score concurrently
		Workers int `yaml:"workers"`

		// FineFraction is the fraction of coarse pairs refined in the
		// fine pass
		FineFraction float64 `yaml:"fineFraction"`

		// Precision selects the kernel arithmetic: float32 or float64
		Precision string `yaml:"precision"`
	} `yaml:"search"`

	// Tuning parameters control kernel blocking and vectorization
	Tuning struct {
		// BlockSize is the pixel block length, zero for automatic
		BlockSize int `yaml:"blockSize"`

		// OrientBlock is the orientation batch size, zero for automatic
		OrientBlock int `yaml:"orientBlock"`

		// Vector selects the inner loops: auto, on, or off
		Vector string `yaml:"vector"`
	} `yaml:"tuning"`

	// Output parameters
	Output struct {
		// Dir is where reports and landscapes are written
		Dir string `yaml:"dir"`

		// SaveHeatmaps determines whether score landscapes are rendered
		SaveHeatmaps bool `yaml:"saveHeatmaps"`

		// HeatmapCell is the rendered size of one landscape cell in
		// pixels
		HeatmapCell int `yaml:"heatmapCell"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default scene parameters
	cfg.Scene.Size = 64
	cfg.Scene.MaxR = 24
	cfg.Scene.Mode = "2d"
	cfg.Scene.Features = []FeatureSpec{
		{Amp: 1.6, Sigma: 3.5, Center: [3]float64{38, 26, 32}},
		{Amp: 0.9, Sigma: 2.0, Center: [3]float64{22, 40, 32}},
		{Amp: 0.5, Sigma: 1.4, Center: [3]float64{30, 30, 32}},
	}
	cfg.Scene.Gridded = false
	cfg.Scene.PsiSteps = 48
	cfg.Scene.RotSteps = 8
	cfg.Scene.TiltSteps = 4
	cfg.Scene.ShiftHalf = 2
	cfg.Scene.ShiftStep = 1.0
	cfg.Scene.Observations = 4
	cfg.Scene.Noise = 0.01
	cfg.Scene.Seed = 1234
	cfg.Scene.WeightEdge = 3

	// Set default search parameters
	cfg.Search.Metric = "diff2"
	cfg.Search.Workers = runtime.NumCPU() // Use all available cores by default
	cfg.Search.FineFraction = 0.05
	cfg.Search.Precision = "float64"

	// Set default tuning parameters
	cfg.Tuning.BlockSize = 0
	cfg.Tuning.OrientBlock = 0
	cfg.Tuning.Vector = "auto"

	// Set default output parameters
	cfg.Output.Dir = "cryomatch_out"
	cfg.Output.SaveHeatmaps = true
	cfg.Output.HeatmapCell = 6
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the
// specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
