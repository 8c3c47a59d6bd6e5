package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string
	GeminiAPIKey   string
	GeminiModel    string
	GeminiBaseURL  string
	MaxUploadBytes int64
}

// fileConfig mirrors the optional YAML configuration file. Every value it
// carries can be overridden from the environment.
type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Gemini struct {
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"gemini"`
	Limits struct {
		MaxUploadMB int64 `yaml:"max_upload_mb"`
	} `yaml:"limits"`
}

const (
	defaultPort        = "8080"
	defaultModel       = "gemini-1.5-flash"
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultMaxUploadMB = 25
)

// DefaultModel is the model used when none is configured.
func DefaultModel() string { return defaultModel }

// DefaultBaseURL is the Gemini API base used when none is configured.
func DefaultBaseURL() string { return defaultBaseURL }

func LoadConfig() (Config, error) {
	cfg := Config{
		Port:          defaultPort,
		GeminiModel:   defaultModel,
		GeminiBaseURL: defaultBaseURL,
	}
	maxUploadMB := int64(defaultMaxUploadMB)

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fc, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		if fc.Server.Port != "" {
			cfg.Port = fc.Server.Port
		}
		if fc.Gemini.Model != "" {
			cfg.GeminiModel = fc.Gemini.Model
		}
		if fc.Gemini.BaseURL != "" {
			cfg.GeminiBaseURL = fc.Gemini.BaseURL
		}
		if fc.Limits.MaxUploadMB != 0 {
			maxUploadMB = fc.Limits.MaxUploadMB
		}
	}

	cfg.Port = envOrDefault("PORT", cfg.Port)
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = envOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.GeminiBaseURL = envOrDefault("GEMINI_BASE_URL", cfg.GeminiBaseURL)

	maxUploadMB, err := parseIntEnv("MAX_UPLOAD_MB", maxUploadMB)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_UPLOAD_MB: %w", err)
	}
	cfg.MaxUploadBytes = maxUploadMB * 1024 * 1024

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535, got %q", c.Port)
	}

	if c.GeminiModel == "" {
		return fmt.Errorf("gemini model cannot be empty")
	}

	if _, err := url.ParseRequestURI(c.GeminiBaseURL); err != nil {
		return fmt.Errorf("invalid gemini base url %q: %w", c.GeminiBaseURL, err)
	}

	if c.MaxUploadBytes < 1 {
		return fmt.Errorf("max upload size must be positive, got %d bytes", c.MaxUploadBytes)
	}

	return nil
}

func loadFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	return fc, nil
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseIntEnv(key string, fallback int64) (int64, error) {
	value := envOrDefault(key, "")
	if value == "" {
		return fallback, nil
	}

	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}
