package config

import "flag"

// Flags holds command-line overrides registered on a subcommand's FlagSet.
// Zero values leave the loaded config untouched.
type Flags struct {
	Config        *string
	Debug         *bool
	LogFile       *string
	Depth         *int
	MaxError      *float64
	VerticalScale *float64
	Spacing       *float64
	HeightScale   *float64
}

// RegisterFlags adds the config override flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Config:        fs.String("config", "", "Path to config file"),
		Debug:         fs.Bool("debug", false, "Enable debug logging"),
		LogFile:       fs.String("log", "", "Also write logs to this file"),
		Depth:         fs.Int("depth", 0, "Chunk tree depth"),
		MaxError:      fs.Float64("error", 0, "Maximum geometric error at the finest level, in meters"),
		VerticalScale: fs.Float64("vscale", 0, "Meters per stored height unit"),
		Spacing:       fs.Float64("spacing", 0, "Meters between samples for bitmap heightmaps"),
		HeightScale:   fs.Float64("hscale", 0, "Meters per gray level for bitmap heightmaps"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil || f.Config == nil {
		return ""
	}
	return *f.Config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug != nil && *f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.LogFile != nil && *f.LogFile != "" {
		cfg.Logging.LogFile = *f.LogFile
	}
	if f.Depth != nil && *f.Depth > 0 {
		cfg.Chunker.TreeDepth = *f.Depth
	}
	if f.MaxError != nil && *f.MaxError > 0 {
		cfg.Chunker.BaseMaxError = float32(*f.MaxError)
	}
	if f.VerticalScale != nil && *f.VerticalScale > 0 {
		cfg.Chunker.VerticalScale = float32(*f.VerticalScale)
	}
	if f.Spacing != nil && *f.Spacing > 0 {
		cfg.Input.SampleSpacing = *f.Spacing
	}
	if f.HeightScale != nil && *f.HeightScale > 0 {
		cfg.Input.HeightScale = float32(*f.HeightScale)
	}
}
