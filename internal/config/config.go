// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds the server and player configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Paths     PathsConfig     `toml:"paths"`
	Endpoints EndpointsConfig `toml:"endpoints"`
	Pacing    PacingConfig    `toml:"pacing"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Port      string `toml:"port"`
	DebugMode bool   `toml:"debug_mode"`
	LogLevel  string `toml:"log_level"`

	// PlayRateLimit caps play requests per client IP per minute.
	PlayRateLimit int `toml:"play_rate_limit"`
}

// PathsConfig contains data directories.
type PathsConfig struct {
	DataDir     string `toml:"data_dir"`
	ScenarioDir string `toml:"scenario_dir"`
	SnippetDir  string `toml:"snippet_dir"` // bundled snippets, seeded into UploadDir
	UploadDir   string `toml:"upload_dir"`
	LogDir      string `toml:"log_dir"`
}

// EndpointsConfig locates the scenario-detail and snippet collaborators.
type EndpointsConfig struct {
	BaseURL          string `toml:"base_url"`
	ScenarioTemplate string `toml:"scenario_template"` // contains {id}
	SnippetTemplate  string `toml:"snippet_template"`  // contains {path}
	CatalogPath      string `toml:"catalog_path"`
}

// PacingConfig holds animation timings in milliseconds.
type PacingConfig struct {
	CharDelayMS        int `toml:"char_delay_ms"`
	UserPerCharMS      int `toml:"user_per_char_ms"`
	UserMinMS          int `toml:"user_min_ms"`
	UserMaxMS          int `toml:"user_max_ms"`
	AssistantPerCharMS int `toml:"assistant_per_char_ms"`
	AssistantMinMS     int `toml:"assistant_min_ms"`
	AssistantMaxMS     int `toml:"assistant_max_ms"`
	ScrollDebounceMS   int `toml:"scroll_debounce_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          "8080",
			DebugMode:     true,
			LogLevel:      "info",
			PlayRateLimit: 60,
		},
		Paths: PathsConfig{
			DataDir:     "data",
			ScenarioDir: filepath.Join("data", "scenarios"),
			SnippetDir:  filepath.Join("data", "snippets"),
			UploadDir:   filepath.Join("instance", "uploads"),
			LogDir:      "logs",
		},
		Endpoints: EndpointsConfig{
			ScenarioTemplate: "/scenario/{id}",
			SnippetTemplate:  "/snippet/{path}",
			CatalogPath:      "/api/scenarios",
		},
		Pacing: PacingConfig{
			CharDelayMS:        18,
			UserPerCharMS:      15,
			UserMinMS:          300,
			UserMaxMS:          1200,
			AssistantPerCharMS: 12,
			AssistantMinMS:     700,
			AssistantMaxMS:     2400,
			ScrollDebounceMS:   16,
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file and
// the environment (including a .env file), in increasing precedence.
func Load() (*Config, error) {
	// .env is optional
	godotenv.Load()

	cfg := Default()

	path := getEnv("REFLEX_CONFIG", "reflex.toml")
	if _, err := os.Stat(path); err == nil {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	} else if os.Getenv("REFLEX_CONFIG") != "" {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Endpoints.BaseURL == "" {
		cfg.Endpoints.BaseURL = "http://127.0.0.1:" + cfg.Server.Port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a TOML file over cfg.
func LoadFile(path string, cfg *Config) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Server.DebugMode = getEnvBool("DEBUG_MODE", cfg.Server.DebugMode)
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", cfg.Server.LogLevel)
	cfg.Server.PlayRateLimit = getEnvInt("PLAY_RATE_LIMIT", cfg.Server.PlayRateLimit)

	cfg.Paths.DataDir = getEnv("DATA_DIR", cfg.Paths.DataDir)
	cfg.Paths.ScenarioDir = getEnv("SCENARIO_DIR", cfg.Paths.ScenarioDir)
	cfg.Paths.SnippetDir = getEnv("SNIPPET_DIR", cfg.Paths.SnippetDir)
	cfg.Paths.UploadDir = getEnv("UPLOAD_DIR", cfg.Paths.UploadDir)
	cfg.Paths.LogDir = getEnv("LOG_DIR", cfg.Paths.LogDir)

	cfg.Endpoints.BaseURL = getEnv("BASE_URL", cfg.Endpoints.BaseURL)
	cfg.Endpoints.ScenarioTemplate = getEnv("SCENARIO_ENDPOINT", cfg.Endpoints.ScenarioTemplate)
	cfg.Endpoints.SnippetTemplate = getEnv("SNIPPET_ENDPOINT", cfg.Endpoints.SnippetTemplate)

	cfg.Pacing.CharDelayMS = getEnvInt("CHAR_DELAY_MS", cfg.Pacing.CharDelayMS)
}

// Validate rejects configurations the player cannot run with.
func (c *Config) Validate() error {
	if !strings.Contains(c.Endpoints.ScenarioTemplate, "{id}") {
		return fmt.Errorf("scenario endpoint template %q must contain {id}", c.Endpoints.ScenarioTemplate)
	}
	if !strings.Contains(c.Endpoints.SnippetTemplate, "{path}") {
		return fmt.Errorf("snippet endpoint template %q must contain {path}", c.Endpoints.SnippetTemplate)
	}
	p := c.Pacing
	for name, v := range map[string]int{
		"char_delay_ms":         p.CharDelayMS,
		"user_per_char_ms":      p.UserPerCharMS,
		"user_min_ms":           p.UserMinMS,
		"assistant_per_char_ms": p.AssistantPerCharMS,
		"assistant_min_ms":      p.AssistantMinMS,
		"scroll_debounce_ms":    p.ScrollDebounceMS,
	} {
		if v < 0 {
			return fmt.Errorf("pacing %s must not be negative", name)
		}
	}
	if p.UserMaxMS < p.UserMinMS || p.AssistantMaxMS < p.AssistantMinMS {
		return fmt.Errorf("pacing max must not be below min")
	}
	return nil
}

// Millis converts a millisecond setting to a duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// EnsureDirectories creates the data directories the server writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.ScenarioDir, c.Paths.UploadDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// getEnv returns the environment value or defaultValue when unset.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
