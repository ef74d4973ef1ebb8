package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the top-level application configuration. It is loaded once
// at process start and treated as read-only afterwards.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Uploads     UploadsConfig     `yaml:"uploads"`
	Static      StaticConfig      `yaml:"static"`
	AzureOpenAI AzureOpenAIConfig `yaml:"azure_openai"`
	Frontend    FrontendConfig    `yaml:"frontend"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// UploadsConfig controls where uploads land and how large they may be.
type UploadsConfig struct {
	Dir      string `yaml:"dir"`
	MaxSize  int64  `yaml:"max_size"`  // bytes per file (default: 10MB)
	MaxFiles int    `yaml:"max_files"` // files per multi-upload request (default: 5)
}

// StaticConfig points at the built single-page frontend.
type StaticConfig struct {
	Dir string `yaml:"dir"`
}

// AzureOpenAIConfig identifies the chat deployment used by the file chat proxy.
type AzureOpenAIConfig struct {
	Endpoint       string `yaml:"endpoint"`
	APIKey         string `yaml:"api_key"`
	Deployment     string `yaml:"deployment"`
	APIVersion     string `yaml:"api_version"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// FrontendConfig is the non-secret configuration exposed to the browser.
type FrontendConfig struct {
	AzureEndpoint string `yaml:"azure_endpoint"`
	APIURL        string `yaml:"api_url"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Uploads: UploadsConfig{
			Dir:      "uploads",
			MaxSize:  10 << 20,
			MaxFiles: 5,
		},
		Static: StaticConfig{Dir: "build"},
		AzureOpenAI: AzureOpenAIConfig{
			TimeoutSeconds: 60,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads a YAML configuration file at path and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// LoadDefault tries to load "config.yaml" from the current directory, then
// pulls variables from ".env" (existing environment wins) and applies
// environment overrides. A missing config.yaml or .env is not an error.
func LoadDefault() (*Config, error) {
	cfg, err := Load("config.yaml")
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = defaults()
	}

	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables. The REACT_APP_* names are the
// variables the deployed frontend bundle already uses.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("HOST", &c.Server.Host)
	str("UPLOAD_DIR", &c.Uploads.Dir)
	str("STATIC_DIR", &c.Static.Dir)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("REACT_APP_AZURE_OPENAI_API_ENDPOINT", &c.AzureOpenAI.Endpoint)
	str("REACT_APP_AZURE_OPENAI_API_KEY", &c.AzureOpenAI.APIKey)
	str("REACT_APP_AZURE_OPENAI_DEPLOYMENT_NAME", &c.AzureOpenAI.Deployment)
	str("REACT_APP_AZURE_OPENAI_API_VERSION", &c.AzureOpenAI.APIVersion)
	str("REACT_APP_AZURE_OPENAI_ENDPOINT", &c.Frontend.AzureEndpoint)
	str("REACT_APP_API_URL", &c.Frontend.APIURL)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LogSummary reports the effective configuration without secret values.
func (c *Config) LogSummary(logger *slog.Logger) {
	logger.Info("configuration loaded",
		"addr", c.Addr(),
		"upload_dir", c.Uploads.Dir,
		"max_upload_bytes", c.Uploads.MaxSize,
		"static_dir", c.Static.Dir,
		"azure_endpoint", setOrNot(c.AzureOpenAI.Endpoint),
		"azure_api_key", redacted(c.AzureOpenAI.APIKey),
		"azure_deployment", c.AzureOpenAI.Deployment,
		"azure_api_version", c.AzureOpenAI.APIVersion,
	)
	if _, err := os.Stat(c.Static.Dir); err != nil {
		logger.Warn("static build directory missing", "dir", c.Static.Dir)
	}
}

func setOrNot(v string) string {
	if v == "" {
		return "not set"
	}
	return "set"
}

func redacted(v string) string {
	if v == "" {
		return "not set"
	}
	return "set (redacted)"
}
