// Package config provides configuration loading, validation, and management for the solver.
//
// Configuration is split three ways:
//
//   - Config: user-tunable settings (oracle model, web UI, puzzle directory)
//     loaded from .solver/config.json with environment overrides.
//   - Constants: hardcoded algorithm parameters (iteration cap, compression
//     interval, pacing, retry backoff). Users should not modify these; the
//     solving loop depends on them being stable.
//   - Secrets: API keys, resolved from the encrypted secrets file first and
//     environment variables second.
//
// A single global Config instance is maintained in memory, protected by a
// mutex. GetConfig() returns the config BY VALUE to prevent external
// mutation.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"solver/pkg/logx"
)

// Global config instance with mutex protection.
//
//nolint:gochecknoglobals // Intentional singleton pattern for config management
var (
	config     *Config
	projectDir string // Immutable after LoadConfig - set once at startup
	logger     *logx.Logger
	mu         sync.RWMutex
)

// getLogger returns the config logger, initializing it if needed.
func getLogger() *logx.Logger {
	if logger == nil {
		logger = logx.NewLogger("config")
	}
	return logger
}

// LogInfo logs an info message using the config logger.
func LogInfo(format string, args ...interface{}) {
	getLogger().Info(format, args...)
}

// Solving loop constants. These control solver behavior and are not
// user-configurable.
const (
	// MaxIterations is the hard cap on oracle iterations per session.
	MaxIterations = 50

	// CompressionInterval is how many iterations pass between transcript
	// compressions.
	CompressionInterval = 15

	// IterationDelay is the pause between consecutive iterations.
	IterationDelay = 500 * time.Millisecond

	// MaxOracleTokens is the completion token ceiling per oracle request.
	MaxOracleTokens = 4096

	// Rate-limit retry behavior. A rate-limited request is retried in place
	// and never consumes an iteration slot.
	MaxRateLimitRetries = 3

	// Project config constants.
	ProjectConfigFilename = "config.json"
	ProjectConfigDir      = ".solver"

	// Provider constants.
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"

	// Model name constants.
	ModelClaudeSonnet4 = "claude-sonnet-4-5"
	ModelClaudeOpus45  = "claude-opus-4-5"
	ModelGPT4o         = "gpt-4o"
	ModelOpenAIO3      = "o3"
	ModelGemini3Pro    = "gemini-3-pro-preview"
	DefaultOracleModel = ModelClaudeSonnet4

	// API key environment variable names.
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvGoogleAPIKey    = "GOOGLE_GENAI_API_KEY"
	EnvOllamaHost      = "OLLAMA_HOST"
)

// RateLimitBackoff returns the wait before rate-limit retry attempt n
// (1-based): 2s, 4s, 8s.
func RateLimitBackoff(attempt int) time.Duration {
	d := 2 * time.Second
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// ProviderPattern maps a model name prefix to its API provider.
type ProviderPattern struct {
	Prefix   string
	Provider string
}

// ProviderPatterns resolves unknown model names to providers by prefix.
//
//nolint:gochecknoglobals // Static lookup table
var ProviderPatterns = []ProviderPattern{
	{Prefix: "claude-", Provider: ProviderAnthropic},
	{Prefix: "gpt-", Provider: ProviderOpenAI},
	{Prefix: "o3", Provider: ProviderOpenAI},
	{Prefix: "o4", Provider: ProviderOpenAI},
	{Prefix: "gemini-", Provider: ProviderGoogle},
	{Prefix: "llama", Provider: ProviderOllama},
	{Prefix: "mistral", Provider: ProviderOllama},
	{Prefix: "qwen", Provider: ProviderOllama},
}

// GetModelProvider returns the API provider for a given model.
// Returns an error if the model cannot be mapped to a provider (FATAL).
func GetModelProvider(modelName string) (string, error) {
	for i := range ProviderPatterns {
		if strings.HasPrefix(modelName, ProviderPatterns[i].Prefix) {
			return ProviderPatterns[i].Provider, nil
		}
	}
	return "", fmt.Errorf("unknown model '%s': no provider pattern match - cannot determine API provider", modelName)
}

// WebUIConfig contains web UI server settings.
type WebUIConfig struct {
	Enabled bool   `json:"enabled"`
	Listen  string `json:"listen"` // host:port, default 127.0.0.1:8080
}

// Config contains user-tunable solver settings.
type Config struct {
	OracleModel string       `json:"oracle_model"` // Model name for the solving oracle
	PuzzleDir   string       `json:"puzzle_dir"`   // Directory scanned for puzzle files
	EventLogDir string       `json:"event_log_dir"`
	WebUI       *WebUIConfig `json:"webui,omitempty"`
}

func createDefaultConfig() *Config {
	return &Config{
		OracleModel: DefaultOracleModel,
		PuzzleDir:   "puzzles",
		EventLogDir: "logs/events",
		WebUI: &WebUIConfig{
			Enabled: true,
			Listen:  "127.0.0.1:8080",
		},
	}
}

func applyDefaults(cfg *Config) {
	def := createDefaultConfig()
	if cfg.OracleModel == "" {
		cfg.OracleModel = def.OracleModel
	}
	if cfg.PuzzleDir == "" {
		cfg.PuzzleDir = def.PuzzleDir
	}
	if cfg.EventLogDir == "" {
		cfg.EventLogDir = def.EventLogDir
	}
	if cfg.WebUI == nil {
		cfg.WebUI = def.WebUI
	}
	if cfg.WebUI.Listen == "" {
		cfg.WebUI.Listen = def.WebUI.Listen
	}
}

// applyEnvOverrides lets environment variables win over the config file.
func applyEnvOverrides(cfg *Config) {
	if model := os.Getenv("SOLVER_ORACLE_MODEL"); model != "" {
		cfg.OracleModel = model
	}
	if dir := os.Getenv("SOLVER_PUZZLE_DIR"); dir != "" {
		cfg.PuzzleDir = dir
	}
	if listen := os.Getenv("SOLVER_LISTEN"); listen != "" {
		cfg.WebUI.Listen = listen
	}
}

func validateConfig(cfg *Config) error {
	if _, err := GetModelProvider(cfg.OracleModel); err != nil {
		return fmt.Errorf("invalid oracle model: %w", err)
	}
	if cfg.WebUI != nil && cfg.WebUI.Enabled && cfg.WebUI.Listen == "" {
		return fmt.Errorf("webui enabled but no listen address configured")
	}
	return nil
}

// LoadConfig loads configuration from projectDir/.solver/config.json,
// falling back to defaults when the file does not exist. Environment
// overrides are applied after the file is read.
func LoadConfig(inputProjectDir string) error {
	mu.Lock()
	defer mu.Unlock()

	if inputProjectDir == "" {
		inputProjectDir = "."
	}

	cfg := createDefaultConfig()
	configPath := filepath.Join(inputProjectDir, ProjectConfigDir, ProjectConfigFilename)
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		cfg = &Config{}
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("failed to parse config %s: %w", configPath, jsonErr)
		}
		applyDefaults(cfg)
	case os.IsNotExist(err):
		getLogger().Debug("no config file at %s, using defaults", configPath)
	default:
		return fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	applyEnvOverrides(cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	config = cfg
	projectDir = inputProjectDir
	return nil
}

// GetConfig returns the current configuration by value.
func GetConfig() (Config, error) {
	mu.RLock()
	defer mu.RUnlock()
	if config == nil {
		return Config{}, fmt.Errorf("config not loaded - call LoadConfig first")
	}
	return *config, nil
}

// SetConfigForTesting installs a config directly, bypassing file loading.
func SetConfigForTesting(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	config = cfg
}

// GetProjectDir returns the project directory set during LoadConfig.
func GetProjectDir() string {
	mu.RLock()
	defer mu.RUnlock()
	if projectDir == "" {
		return "."
	}
	return projectDir
}

// GetAPIKey returns the API key for the given provider, checking the
// decrypted secrets file first and environment variables second. For
// Ollama it returns the host URL instead since no key is needed.
func GetAPIKey(provider string) (string, error) {
	var envVar string
	switch provider {
	case ProviderAnthropic:
		envVar = EnvAnthropicAPIKey
	case ProviderOpenAI:
		envVar = EnvOpenAIAPIKey
	case ProviderGoogle:
		envVar = EnvGoogleAPIKey
	case ProviderOllama:
		host := os.Getenv(EnvOllamaHost)
		if host == "" {
			host = "http://localhost:11434"
		}
		return host, nil
	default:
		return "", fmt.Errorf("unknown provider: %s", provider)
	}

	key, err := GetSecret(envVar)
	if err == nil && key != "" {
		return key, nil
	}
	return "", fmt.Errorf("API key not found: %s not found in secrets file or environment variables", envVar)
}
