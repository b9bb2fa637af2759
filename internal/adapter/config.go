package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mmcdole/folio/internal/domain"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Showcase  ShowcaseConfig  `mapstructure:"showcase"`
	Preview   PreviewConfig   `mapstructure:"preview"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Viewer    ViewerConfig    `mapstructure:"viewer"`
	UI        UIConfig        `mapstructure:"ui"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ShowcaseConfig lists the projects shown on the page
type ShowcaseConfig struct {
	Projects []domain.Project `mapstructure:"projects"`
}

// PreviewConfig tunes visibility tracking and downloads
type PreviewConfig struct {
	QuietInterval time.Duration `mapstructure:"quiet_interval"` // Scroll debounce before a cancel is allowed
	FrameInterval time.Duration `mapstructure:"frame_interval"` // Geometry recomputation cadence
	Timeout       time.Duration `mapstructure:"timeout"`        // Per-transfer HTTP timeout
	MaxBytes      int64         `mapstructure:"max_bytes"`      // 0 = unlimited
}

// CacheConfig holds preview cache configuration
type CacheConfig struct {
	Dir     string `mapstructure:"dir"`     // Empty = default cache path
	Disable bool   `mapstructure:"disable"` // Keep previews in memory only
}

// ViewerConfig holds the external viewer used to open previews
type ViewerConfig struct {
	Command string   `mapstructure:"command"` // Empty = system default
	Args    []string `mapstructure:"args"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	CardHeight int `mapstructure:"card_height"`
	CardGap    int `mapstructure:"card_gap"`
}

// AnalyticsConfig holds analytics configuration
type AnalyticsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Preview: PreviewConfig{
			QuietInterval: 200 * time.Millisecond,
			FrameInterval: 16 * time.Millisecond,
			Timeout:       2 * time.Minute,
			MaxBytes:      50 << 20,
		},
		UI: UIConfig{
			CardHeight: 5,
			CardGap:    1,
		},
		Analytics: AnalyticsConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "folio", "folio.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "folio", "folio.log")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "folio")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "folio")
	}
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	v := viper.GetViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")
	return load(v)
}

// LoadConfigFile loads configuration from an explicit file
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

var envKeyReplacer = strings.NewReplacer(".", "_")

func load(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	// Environment variable overrides (FOLIO_PREVIEW_TIMEOUT=30s)
	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	bindEnv(v)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnv registers the scalar keys so AutomaticEnv applies to Unmarshal
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"preview.quiet_interval",
		"preview.frame_interval",
		"preview.timeout",
		"preview.max_bytes",
		"cache.dir",
		"cache.disable",
		"viewer.command",
		"analytics.enabled",
		"logging.file",
		"logging.level",
	} {
		v.BindEnv(key)
	}
}

// Validate rejects configurations the showcase cannot run with
func (c *Config) Validate() error {
	if c.Preview.QuietInterval <= 0 {
		return fmt.Errorf("preview.quiet_interval must be positive")
	}
	if c.Preview.FrameInterval <= 0 {
		return fmt.Errorf("preview.frame_interval must be positive")
	}
	if c.UI.CardHeight < 3 {
		return fmt.Errorf("ui.card_height must be at least 3")
	}
	seen := make(map[string]bool)
	for i, p := range c.Showcase.Projects {
		if p.ID == "" {
			return fmt.Errorf("showcase.projects[%d]: missing id", i)
		}
		if seen[p.ID] {
			return fmt.Errorf("showcase.projects[%d]: duplicate id %q", i, p.ID)
		}
		seen[p.ID] = true
	}
	return nil
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return SaveConfigFile(cfg, filepath.Join(configPath, "config.yaml"))
}

// SaveConfigFile writes cfg as YAML to path
func SaveConfigFile(cfg *Config, path string) error {
	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	projects := make([]map[string]any, len(cfg.Showcase.Projects))
	for i, p := range cfg.Showcase.Projects {
		projects[i] = map[string]any{
			"id":          p.ID,
			"title":       p.Title,
			"summary":     p.Summary,
			"tags":        p.Tags,
			"screenshot":  p.Screenshot,
			"preview_url": p.PreviewURL,
		}
	}
	v.Set("showcase.projects", projects)

	v.Set("preview.quiet_interval", cfg.Preview.QuietInterval.String())
	v.Set("preview.frame_interval", cfg.Preview.FrameInterval.String())
	v.Set("preview.timeout", cfg.Preview.Timeout.String())
	v.Set("preview.max_bytes", cfg.Preview.MaxBytes)

	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.disable", cfg.Cache.Disable)

	v.Set("viewer.command", cfg.Viewer.Command)
	v.Set("viewer.args", cfg.Viewer.Args)

	v.Set("ui.card_height", cfg.UI.CardHeight)
	v.Set("ui.card_gap", cfg.UI.CardGap)

	v.Set("analytics.enabled", cfg.Analytics.Enabled)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "folio", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "folio", "cache")
	}
}

// CacheDir returns the directory the preview store should use.
// Empty means memory-only.
func (c *Config) CacheDir() string {
	if c.Cache.Disable {
		return ""
	}
	if c.Cache.Dir != "" {
		return expandHome(c.Cache.Dir)
	}
	return defaultCachePath()
}

