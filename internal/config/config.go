package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Storage    StorageConfig    `yaml:"storage"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Generation GenerationConfig `yaml:"generation"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	StaticDir      string   `yaml:"static_dir"`
	MaxUploadMB    int64    `yaml:"max_upload_mb"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StorageConfig struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	CacheSize int    `yaml:"cache_size"`
}

type ExtractionConfig struct {
	Workers      int      `yaml:"workers"`
	RenderScale  float64  `yaml:"render_scale"`
	OCREnabled   bool     `yaml:"ocr_enabled"`
	OCRLanguages []string `yaml:"ocr_languages"`
	PdftoppmPath string   `yaml:"pdftoppm_path"`
	TempDir      string   `yaml:"temp_dir"`
}

type GenerationConfig struct {
	Provider        string        `yaml:"provider"`
	Model           string        `yaml:"model"`
	MaxTokens       int           `yaml:"max_tokens"`
	Temperature     float32       `yaml:"temperature"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	RequestsPerMin  int           `yaml:"requests_per_minute"`
	OllamaURL       string        `yaml:"ollama_url"`
	AnthropicAPIKey string        `yaml:"-"`
	GeminiAPIKey    string        `yaml:"-"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           "8081",
			StaticDir:      "static",
			MaxUploadMB:    64,
			AllowedOrigins: []string{"*"},
		},
		Log:     LogConfig{Level: "info", Format: "json"},
		Storage: StorageConfig{Driver: "memory", Path: "data/mindmap.db", CacheSize: 128},
		Extraction: ExtractionConfig{
			Workers:      4,
			RenderScale:  2.0,
			OCRLanguages: []string{"eng"},
			PdftoppmPath: "pdftoppm",
			OCREnabled:   true,
		},
		Generation: GenerationConfig{
			Provider:    "claude",
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   4096,
			Temperature: 0.2,
			Timeout:     120 * time.Second,
			OllamaURL:   "http://localhost:11434",
		},
	}
}

// Load reads .env, then the YAML file at path (missing file is fine), then
// environment overrides. An empty path falls back to CONFIG_FILE or config.yaml.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = getenv("CONFIG_FILE", "config.yaml")
	}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Port = getenv("PORT", cfg.Server.Port)
	cfg.Server.StaticDir = getenv("STATIC_DIR", cfg.Server.StaticDir)
	cfg.Log.Level = getenv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenv("LOG_FORMAT", cfg.Log.Format)
	cfg.Storage.Driver = getenv("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.Path = getenv("DB_PATH", cfg.Storage.Path)
	cfg.Extraction.PdftoppmPath = getenv("PDFTOPPM_PATH", cfg.Extraction.PdftoppmPath)
	cfg.Generation.Provider = getenv("LLM_PROVIDER", cfg.Generation.Provider)
	cfg.Generation.Model = getenv("LLM_MODEL", cfg.Generation.Model)
	cfg.Generation.OllamaURL = getenv("OLLAMA_URL", cfg.Generation.OllamaURL)
	cfg.Generation.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.Generation.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	if v := os.Getenv("GENERATION_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GENERATION_TIMEOUT: %w", err)
		}
		cfg.Generation.Timeout = d
	}
	if v := os.Getenv("LLM_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LLM_MAX_RETRIES: %w", err)
		}
		cfg.Generation.MaxRetries = n
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
