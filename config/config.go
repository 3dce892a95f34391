package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// ZoomPolicy parameterizes lens display-factor derivation and the macro
// switch recommendation. The telephoto factors and the macro threshold are
// hardware heuristics, so they live in configuration instead of code.
type ZoomPolicy struct {
	UltraWideFactor    float64  `json:"ultraWideFactor" mapstructure:"ultraWideFactor"`
	WideFactor         float64  `json:"wideFactor" mapstructure:"wideFactor"`
	TelephotoFactor    float64  `json:"telephotoFactor" mapstructure:"telephotoFactor"`
	TelephotoProFactor float64  `json:"telephotoProFactor" mapstructure:"telephotoProFactor"`
	ProModels          []string `json:"proModels" mapstructure:"proModels"`
	MacroImprovementMM float64  `json:"macroImprovementMM" mapstructure:"macroImprovementMM"`
}

// Config holds runtime configuration for the capture core and demo app.
// Values come from defaults overlaid by an optional JSON config file.
type Config struct {
	LogLevel string `json:"logLevel" mapstructure:"logLevel"`
	Debug    bool   `json:"debug" mapstructure:"debug"`

	// Backend selects the platform implementation: "sim" or "screen".
	Backend string `json:"backend" mapstructure:"backend"`

	// Pro mirrors the user entitlement flag supplied by the (external)
	// purchase layer.
	Pro bool `json:"pro" mapstructure:"pro"`

	// PreferredMode is the persisted capture mode (0 single item, 1 multi
	// item). Written back whenever a mode switch is applied.
	PreferredMode int `json:"preferredMode" mapstructure:"preferredMode"`

	// BatchLimit is the analysis batch ceiling used as the multi-item /
	// pro photo-count limit.
	BatchLimit int `json:"batchLimit" mapstructure:"batchLimit"`

	Zoom ZoomPolicy `json:"zoom" mapstructure:"zoom"`

	// OptimizeMaxDimension bounds the longest edge of processed photos.
	OptimizeMaxDimension int `json:"optimizeMaxDimension" mapstructure:"optimizeMaxDimension"`

	// PreviewAddr is the listen address of the HTTP preview server; empty
	// disables it.
	PreviewAddr string `json:"previewAddr" mapstructure:"previewAddr"`

	path string // file the config was loaded from; empty means defaults only
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      "info",
		Debug:         false,
		Backend:       "sim",
		Pro:           false,
		PreferredMode: 0,
		BatchLimit:    20,
		Zoom: ZoomPolicy{
			UltraWideFactor:    0.5,
			WideFactor:         1.0,
			TelephotoFactor:    3.0,
			TelephotoProFactor: 5.0,
			ProModels:          []string{"Phone16,1", "Phone16,2", "Phone17,1", "Phone17,2"},
			MacroImprovementMM: 50,
		},
		OptimizeMaxDimension: 2048,
		PreviewAddr:          "",
	}
}

// Validate clamps values to safe ranges.
func (c *Config) Validate() error {
	d := DefaultConfig()
	if c.BatchLimit < 1 {
		c.BatchLimit = d.BatchLimit
	}
	if c.OptimizeMaxDimension < 64 {
		c.OptimizeMaxDimension = d.OptimizeMaxDimension
	}
	if c.Zoom.UltraWideFactor <= 0 {
		c.Zoom.UltraWideFactor = d.Zoom.UltraWideFactor
	}
	if c.Zoom.WideFactor <= 0 {
		c.Zoom.WideFactor = d.Zoom.WideFactor
	}
	if c.Zoom.TelephotoFactor <= 0 {
		c.Zoom.TelephotoFactor = d.Zoom.TelephotoFactor
	}
	if c.Zoom.TelephotoProFactor <= 0 {
		c.Zoom.TelephotoProFactor = d.Zoom.TelephotoProFactor
	}
	if c.Zoom.MacroImprovementMM < 0 {
		c.Zoom.MacroImprovementMM = d.Zoom.MacroImprovementMM
	}
	if c.PreferredMode != 0 && c.PreferredMode != 1 {
		c.PreferredMode = 0
	}
	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	d := DefaultConfig()
	v.SetDefault("logLevel", d.LogLevel)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("pro", d.Pro)
	v.SetDefault("preferredMode", d.PreferredMode)
	v.SetDefault("batchLimit", d.BatchLimit)
	v.SetDefault("zoom.ultraWideFactor", d.Zoom.UltraWideFactor)
	v.SetDefault("zoom.wideFactor", d.Zoom.WideFactor)
	v.SetDefault("zoom.telephotoFactor", d.Zoom.TelephotoFactor)
	v.SetDefault("zoom.telephotoProFactor", d.Zoom.TelephotoProFactor)
	v.SetDefault("zoom.proModels", d.Zoom.ProModels)
	v.SetDefault("zoom.macroImprovementMM", d.Zoom.MacroImprovementMM)
	v.SetDefault("optimizeMaxDimension", d.OptimizeMaxDimension)
	v.SetDefault("previewAddr", d.PreviewAddr)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	return v
}

// Load reads configuration from the given JSON file path. A missing file
// yields defaults; a malformed one returns defaults along with the error.
func Load(path string) (*Config, error) {
	v := newViper(path)
	cfg := DefaultConfig()
	cfg.path = path
	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("decoding config file: %w", err)
	}
	cfg.path = path
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration back to the path it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config: no file path to save to")
	}
	return c.SaveTo(c.path)
}

// SaveTo writes the configuration to the given path in JSON format.
func (c *Config) SaveTo(path string) error {
	_ = c.Validate()
	v := newViper(path)
	v.Set("logLevel", c.LogLevel)
	v.Set("debug", c.Debug)
	v.Set("backend", c.Backend)
	v.Set("pro", c.Pro)
	v.Set("preferredMode", c.PreferredMode)
	v.Set("batchLimit", c.BatchLimit)
	v.Set("zoom.ultraWideFactor", c.Zoom.UltraWideFactor)
	v.Set("zoom.wideFactor", c.Zoom.WideFactor)
	v.Set("zoom.telephotoFactor", c.Zoom.TelephotoFactor)
	v.Set("zoom.telephotoProFactor", c.Zoom.TelephotoProFactor)
	v.Set("zoom.proModels", c.Zoom.ProModels)
	v.Set("zoom.macroImprovementMM", c.Zoom.MacroImprovementMM)
	v.Set("optimizeMaxDimension", c.OptimizeMaxDimension)
	v.Set("previewAddr", c.PreviewAddr)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	c.path = path
	return nil
}

// SetPreferredMode records and persists the chosen capture mode. Persistence
// failures are returned; callers log and continue, since losing a preference
// write is not worth interrupting a capture session.
func (c *Config) SetPreferredMode(mode int) error {
	c.PreferredMode = mode
	if c.path == "" {
		return nil
	}
	return c.Save()
}
