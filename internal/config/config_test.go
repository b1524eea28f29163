package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test chunker defaults
	if cfg.Chunker.TreeDepth != 6 {
		t.Errorf("expected tree depth 6, got %d", cfg.Chunker.TreeDepth)
	}
	if cfg.Chunker.BaseMaxError != 1.0 {
		t.Errorf("expected base max error 1.0, got %f", cfg.Chunker.BaseMaxError)
	}
	if cfg.Chunker.VerticalScale != 0.30518 {
		t.Errorf("expected vertical scale 0.30518, got %f", cfg.Chunker.VerticalScale)
	}
	if cfg.Chunker.InputVerticalScale != 1.0 {
		t.Errorf("expected input vertical scale 1.0, got %f", cfg.Chunker.InputVerticalScale)
	}

	// Test input defaults
	if cfg.Input.SampleSpacing != 1.0 {
		t.Errorf("expected sample spacing 1.0, got %f", cfg.Input.SampleSpacing)
	}
	if cfg.Input.CacheDir != "" {
		t.Errorf("expected empty cache dir, got %s", cfg.Input.CacheDir)
	}

	// Test storage defaults
	if cfg.Storage.MmapThresholdMB != 256 {
		t.Errorf("expected mmap threshold 256, got %d", cfg.Storage.MmapThresholdMB)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestMmapThreshold(t *testing.T) {
	tests := []struct {
		mb   int
		want int64
	}{
		{0, 0},
		{-5, 0},
		{1, 1 << 20},
		{256, 256 << 20},
	}

	for _, tt := range tests {
		s := StorageConfig{MmapThresholdMB: tt.mb}
		if got := s.MmapThreshold(); got != tt.want {
			t.Errorf("MmapThreshold(%d MB): expected %d, got %d", tt.mb, tt.want, got)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "chutool.yaml")

	yamlContent := `
chunker:
  tree_depth: 8
  base_max_error: 0.25
  vertical_scale: 0.5

input:
  sample_spacing: 30
  cache_dir: "/var/cache/chutool"

storage:
  mmap_threshold_mb: 64
  temp_dir: "/scratch"

logging:
  level: "debug"
  log_file: "chutool.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Chunker.TreeDepth != 8 {
		t.Errorf("expected tree depth 8, got %d", cfg.Chunker.TreeDepth)
	}
	if cfg.Chunker.BaseMaxError != 0.25 {
		t.Errorf("expected base max error 0.25, got %f", cfg.Chunker.BaseMaxError)
	}
	if cfg.Chunker.VerticalScale != 0.5 {
		t.Errorf("expected vertical scale 0.5, got %f", cfg.Chunker.VerticalScale)
	}
	// Keys missing from the file keep their defaults
	if cfg.Chunker.InputVerticalScale != 1.0 {
		t.Errorf("expected input vertical scale to stay 1.0, got %f", cfg.Chunker.InputVerticalScale)
	}
	if cfg.Input.HeightScale != 1.0 {
		t.Errorf("expected height scale to stay 1.0, got %f", cfg.Input.HeightScale)
	}

	if cfg.Input.SampleSpacing != 30 {
		t.Errorf("expected sample spacing 30, got %f", cfg.Input.SampleSpacing)
	}
	if cfg.Input.CacheDir != "/var/cache/chutool" {
		t.Errorf("expected cache dir /var/cache/chutool, got %s", cfg.Input.CacheDir)
	}

	if cfg.Storage.MmapThresholdMB != 64 {
		t.Errorf("expected mmap threshold 64, got %d", cfg.Storage.MmapThresholdMB)
	}
	if cfg.Storage.TempDir != "/scratch" {
		t.Errorf("expected temp dir /scratch, got %s", cfg.Storage.TempDir)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "chutool.log" {
		t.Errorf("expected log file 'chutool.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
chunker:
  tree_depth: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/chutool.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoad_ExplicitPathError(t *testing.T) {
	if _, err := Load("/nonexistent/path/chutool.yaml", nil); err == nil {
		t.Error("expected error for missing explicit config path")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it; point the config dir there too
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create chutool.yaml in current directory
	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("chunker:\n  tree_depth: 3\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Error("expected to find chutool.yaml in current directory")
	}

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Chunker.TreeDepth != 3 {
		t.Errorf("expected tree depth 3 from found file, got %d", cfg.Chunker.TreeDepth)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "chunker flags",
			args: []string{"-depth", "4", "-error", "0.5", "-vscale", "0.1"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Chunker.TreeDepth != 4 {
					t.Errorf("expected tree depth 4, got %d", cfg.Chunker.TreeDepth)
				}
				if cfg.Chunker.BaseMaxError != 0.5 {
					t.Errorf("expected base max error 0.5, got %f", cfg.Chunker.BaseMaxError)
				}
				if cfg.Chunker.VerticalScale != 0.1 {
					t.Errorf("expected vertical scale 0.1, got %f", cfg.Chunker.VerticalScale)
				}
			},
		},
		{
			name: "input flags",
			args: []string{"-spacing", "10", "-hscale", "2"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Input.SampleSpacing != 10 {
					t.Errorf("expected sample spacing 10, got %f", cfg.Input.SampleSpacing)
				}
				if cfg.Input.HeightScale != 2 {
					t.Errorf("expected height scale 2, got %f", cfg.Input.HeightScale)
				}
			},
		},
		{
			name: "log file flag",
			args: []string{"-log", "build.log"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.LogFile != "build.log" {
					t.Errorf("expected log file build.log, got %s", cfg.Logging.LogFile)
				}
			},
		},
		{
			name: "no flags keeps defaults",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if *cfg != *Default() {
					t.Errorf("expected defaults, got %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			flags := RegisterFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parse failed: %v", err)
			}

			cfg := Default()
			flags.apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestConfigPath(t *testing.T) {
	var nilFlags *Flags
	if nilFlags.ConfigPath() != "" {
		t.Error("expected empty path from nil flags")
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", "/etc/chutool.yaml"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := flags.ConfigPath(); got != "/etc/chutool.yaml" {
		t.Errorf("expected /etc/chutool.yaml, got %s", got)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Chunker.TreeDepth = 9
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("expected %+v, got %+v", cfg, loaded)
	}
}
