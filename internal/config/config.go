// Package config handles chutool configuration loading and management.
package config

// Config holds all chutool settings.
type Config struct {
	Chunker ChunkerConfig `yaml:"chunker"`
	Input   InputConfig   `yaml:"input"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// ChunkerConfig holds the chunk tree parameters.
type ChunkerConfig struct {
	TreeDepth          int     `yaml:"tree_depth"`
	BaseMaxError       float32 `yaml:"base_max_error"`
	VerticalScale      float32 `yaml:"vertical_scale"`       // meters per stored height unit
	InputVerticalScale float32 `yaml:"input_vertical_scale"` // meters per source sample unit
}

// InputConfig holds settings for reading heightmaps.
type InputConfig struct {
	SampleSpacing float64 `yaml:"sample_spacing"` // meters between bitmap samples
	HeightScale   float32 `yaml:"height_scale"`   // meters per gray level
	CacheDir      string  `yaml:"cache_dir"`      // download directory for remote inputs
}

// StorageConfig holds settings for the activation level buffer.
type StorageConfig struct {
	MmapThresholdMB int    `yaml:"mmap_threshold_mb"`
	TempDir         string `yaml:"temp_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Chunker: ChunkerConfig{
			TreeDepth:          6,
			BaseMaxError:       1.0,
			VerticalScale:      0.30518,
			InputVerticalScale: 1.0,
		},
		Input: InputConfig{
			SampleSpacing: 1.0,
			HeightScale:   1.0,
		},
		Storage: StorageConfig{
			MmapThresholdMB: 256,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// MmapThreshold returns the storage threshold in bytes. Zero or negative
// disables file-backed buffers.
func (s StorageConfig) MmapThreshold() int64 {
	if s.MmapThresholdMB <= 0 {
		return 0
	}
	return int64(s.MmapThresholdMB) << 20
}
