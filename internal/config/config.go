// Package config loads, persists and publishes the daemon configuration.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tracklab/posefilter/internal/filter"
	"github.com/tracklab/posefilter/internal/types"
)

// Config is the full daemon configuration.
type Config struct {
	Filter  FilterConfig  `toml:"filter" json:"filter"`
	Input   InputConfig   `toml:"input" json:"input"`
	Output  OutputConfig  `toml:"output" json:"output"`
	Tracker TrackerConfig `toml:"tracker" json:"tracker"`
}

// FilterConfig tunes the adaptive pose filter. Durations are seconds.
type FilterConfig struct {
	DeltaTimeConstant      float64   `toml:"delta_time_constant" json:"delta_time_constant"`
	NoiseTimeConstant      float64   `toml:"noise_time_constant" json:"noise_time_constant"`
	SmoothingCurveExponent float64   `toml:"smoothing_curve_exponent" json:"smoothing_curve_exponent"`
	MinSmoothingSeconds    float64   `toml:"min_smoothing_seconds" json:"min_smoothing_seconds"`
	MaxSmoothingSeconds    float64   `toml:"max_smoothing_seconds" json:"max_smoothing_seconds"`
	AxisWeights            []float64 `toml:"axis_weights" json:"axis_weights"`
	ChangeEpsilon          []float64 `toml:"change_epsilon" json:"change_epsilon"`
}

// InputConfig describes where raw poses arrive.
type InputConfig struct {
	BindAddr string `toml:"bind_addr" json:"bind_addr"`
}

// OutputConfig describes where smoothed poses are sent.
type OutputConfig struct {
	Addr string `toml:"addr" json:"addr"`
}

// TrackerConfig controls the processing loop.
type TrackerConfig struct {
	PollInterval time.Duration `toml:"poll_interval" json:"poll_interval"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	s := filter.DefaultSettings()
	return &Config{
		Filter: FilterConfig{
			DeltaTimeConstant:      s.DeltaTimeConstant,
			NoiseTimeConstant:      s.NoiseTimeConstant,
			SmoothingCurveExponent: s.CurveExponent,
			MinSmoothingSeconds:    s.MinSmoothing,
			MaxSmoothingSeconds:    s.MaxSmoothing,
			AxisWeights:            s.AxisWeights[:],
			ChangeEpsilon:          s.ChangeEpsilon[:],
		},
		Input: InputConfig{
			BindAddr: "127.0.0.1:4243",
		},
		Output: OutputConfig{
			Addr: "127.0.0.1:4242",
		},
		Tracker: TrackerConfig{
			PollInterval: time.Second / 60,
		},
	}
}

// Settings converts the TOML section into a filter tuning snapshot.
// Missing or short axis arrays fall back to the stock values, so a
// hand-edited config file cannot leave the filter without weights.
func (c FilterConfig) Settings() filter.Settings {
	s := filter.DefaultSettings()
	s.DeltaTimeConstant = c.DeltaTimeConstant
	s.NoiseTimeConstant = c.NoiseTimeConstant
	s.CurveExponent = c.SmoothingCurveExponent
	s.MinSmoothing = c.MinSmoothingSeconds
	s.MaxSmoothing = c.MaxSmoothingSeconds
	for i := 0; i < types.NumAxes && i < len(c.AxisWeights); i++ {
		s.AxisWeights[i] = c.AxisWeights[i]
	}
	for i := 0; i < types.NumAxes && i < len(c.ChangeEpsilon); i++ {
		s.ChangeEpsilon[i] = c.ChangeEpsilon[i]
	}
	return s
}

// GetDefaultConfigDir returns the per-user configuration directory.
func GetDefaultConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "posefilter"), nil
}

// LoadConfig reads the configuration file. A missing file is not an
// error: the defaults are written back and returned.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return cfg, err
		}
		if err := SaveConfig(configPath, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SaveConfig writes the configuration as TOML.
func SaveConfig(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
