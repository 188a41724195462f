package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmmcquay/chessbook/internal/board"
)

type Config struct {
	// Diagram rendering
	Render RenderConfig `json:"render"`

	// Opening dataset
	Openings OpeningsConfig `json:"openings"`

	// Batch conversion input and output
	Output OutputConfig `json:"output"`

	// Server configuration
	Server ServerConfig `json:"server"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `json:"rateLimit"`

	// Rendered document cache
	Cache CacheConfig `json:"cache"`
}

type RenderConfig struct {
	FontName       string  `json:"fontName"`
	FontPath       string  `json:"fontPath"`
	FontURL        string  `json:"fontURL"`
	FontSize       float64 `json:"fontSize"`
	CaptionFont    string  `json:"captionFont"`
	CaptionSize    float64 `json:"captionSize"`
	Format         string  `json:"format"`
	MovesPerPage   int     `json:"movesPerPage"`
	Unicode        bool    `json:"unicode"`
	CheckColor     string  `json:"checkColor"`
	FromBackground string  `json:"fromBackground"`
	ToBackground   string  `json:"toBackground"`
}

type OpeningsConfig struct {
	// Path to a CSV or ZIP dataset; empty uses the built-in one.
	Path string `json:"path"`
}

type OutputConfig struct {
	PGNDir    string `json:"pgnDir"`
	OutputDir string `json:"outputDir"`
}

type ServerConfig struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	HealthAddr  string `json:"healthAddr"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Prefix string `json:"prefix"`
	Format string `json:"format"`
}

type RateLimitConfig struct {
	Enabled        bool           `json:"enabled"`
	RequestsPerMin int            `json:"requestsPerMin"`
	BurstSize      int            `json:"burstSize"`
	PerToolLimits  map[string]int `json:"perToolLimits"`
}

type CacheConfig struct {
	Enabled      bool  `json:"enabled"`
	MaxItems     int   `json:"maxItems"`
	MaxSizeBytes int64 `json:"maxSizeBytes"`
	TTLSeconds   int   `json:"ttlSeconds"`
}

var formats = map[string]bool{"text": true, "html": true, "png": true}

func Load(configPath string) (*Config, error) {
	cfg := &Config{
		// Default values
		Render: RenderConfig{
			FontName:       board.DefaultFont,
			FontSize:       20,
			CaptionFont:    "Verdana",
			CaptionSize:    10,
			Format:         "text",
			MovesPerPage:   3,
			CheckColor:     "FF0000",
			FromBackground: "C0C0C0",
			ToBackground:   "808080",
		},
		Output: OutputConfig{
			PGNDir:    "PGN",
			OutputDir: "DOCS",
		},
		Server: ServerConfig{
			Name:        "chessbook-mcp",
			Version:     "0.1.0",
			Description: "Chess game diagram books for MCP",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Prefix: "[chessbook] ",
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 60,
			BurstSize:      10,
			PerToolLimits:  make(map[string]int),
		},
		Cache: CacheConfig{
			Enabled:      true,
			MaxItems:     200,
			MaxSizeBytes: 64 * 1024 * 1024,
			TTLSeconds:   3600,
		},
	}

	// Load from JSON file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	// Render settings
	if v := os.Getenv("CHESSBOOK_FONT_NAME"); v != "" {
		c.Render.FontName = v
	}
	if v := os.Getenv("CHESSBOOK_FONT_PATH"); v != "" {
		c.Render.FontPath = v
	}
	if v := os.Getenv("CHESSBOOK_FONT_URL"); v != "" {
		c.Render.FontURL = v
	}
	if v := os.Getenv("CHESSBOOK_FORMAT"); v != "" {
		c.Render.Format = strings.ToLower(v)
	}
	if v := os.Getenv("CHESSBOOK_MOVES_PER_PAGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Render.MovesPerPage = n
		}
	}
	if v := os.Getenv("CHESSBOOK_UNICODE"); v != "" {
		c.Render.Unicode = strings.ToLower(v) == "true"
	}

	// Input and output
	if v := os.Getenv("CHESSBOOK_OPENINGS_PATH"); v != "" {
		c.Openings.Path = v
	}
	if v := os.Getenv("CHESSBOOK_PGN_DIR"); v != "" {
		c.Output.PGNDir = v
	}
	if v := os.Getenv("CHESSBOOK_OUTPUT_DIR"); v != "" {
		c.Output.OutputDir = v
	}
	if v := os.Getenv("CHESSBOOK_HEALTH_ADDR"); v != "" {
		c.Server.HealthAddr = v
	}

	// Logging settings
	if v := os.Getenv("CHESSBOOK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CHESSBOOK_LOG_FORMAT"); v != "" {
		c.Logging.Format = strings.ToLower(v)
	}

	// Rate limit settings
	if v := os.Getenv("CHESSBOOK_RATE_LIMIT_ENABLED"); v != "" {
		c.RateLimit.Enabled = strings.ToLower(v) == "true"
	}

	// Cache settings
	if v := os.Getenv("CHESSBOOK_CACHE_ENABLED"); v != "" {
		c.Cache.Enabled = strings.ToLower(v) == "true"
	}
}

func (c *Config) validate() error {
	// Validate paths exist if they're absolute paths
	if c.Render.FontPath != "" && filepath.IsAbs(c.Render.FontPath) {
		if _, err := os.Stat(c.Render.FontPath); err != nil {
			return fmt.Errorf("diagram font not found at %s", c.Render.FontPath)
		}
	}
	if c.Openings.Path != "" && filepath.IsAbs(c.Openings.Path) {
		if _, err := os.Stat(c.Openings.Path); err != nil {
			return fmt.Errorf("opening dataset not found at %s", c.Openings.Path)
		}
	}

	if _, ok := board.Fonts[c.Render.FontName]; !ok && c.Render.FontPath == "" {
		return fmt.Errorf("unknown diagram font %q", c.Render.FontName)
	}
	if !formats[c.Render.Format] {
		return fmt.Errorf("unknown output format %q", c.Render.Format)
	}
	for name, v := range map[string]string{
		"checkColor":     c.Render.CheckColor,
		"fromBackground": c.Render.FromBackground,
		"toBackground":   c.Render.ToBackground,
	} {
		if !isHexColor(v) {
			return fmt.Errorf("%s %q is not an RRGGBB color", name, v)
		}
	}

	// Validate numeric ranges
	if c.Render.MovesPerPage < 1 {
		c.Render.MovesPerPage = 1
	}
	if c.Render.MovesPerPage > 20 {
		c.Render.MovesPerPage = 20
	}
	if c.Render.FontSize < 6 {
		c.Render.FontSize = 6
	}
	if c.Render.FontSize > 72 {
		c.Render.FontSize = 72
	}
	if c.Render.CaptionSize < 6 {
		c.Render.CaptionSize = 6
	}

	// Validate rate limits
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerMin < 1 {
			c.RateLimit.RequestsPerMin = 1
		}
		if c.RateLimit.BurstSize < 1 {
			c.RateLimit.BurstSize = 1
		}
	}

	if c.Cache.Enabled && c.Cache.MaxItems < 1 {
		c.Cache.MaxItems = 1
	}

	return nil
}

func isHexColor(s string) bool {
	if len(s) != 6 {
		return false
	}
	_, err := strconv.ParseUint(s, 16, 32)
	return err == nil
}

// GetHomeDir returns the directory searched for fonts and configuration.
func (c *Config) GetHomeDir() string {
	if home := os.Getenv("CHESSBOOK_HOME"); home != "" {
		return home
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(userHome, ".chessbook")
}

// FontFile returns the diagram font file: the configured path, or the
// font's TTF file name under the fonts directory of the home dir.
func (c *Config) FontFile() string {
	if c.Render.FontPath != "" {
		return c.Render.FontPath
	}
	file, ok := board.Fonts[c.Render.FontName]
	if !ok {
		return ""
	}
	home := c.GetHomeDir()
	if home == "" {
		return file
	}
	return filepath.Join(home, "fonts", file)
}

func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv("CHESSBOOK_CONFIG"); path != "" {
		return path
	}

	// Check current directory
	if _, err := os.Stat("config.json"); err == nil {
		return "config.json"
	}

	// Check home directory
	if home, err := os.UserHomeDir(); err == nil {
		configPath := filepath.Join(home, ".chessbook", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	return ""
}
