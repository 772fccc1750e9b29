// Package config loads runtime configuration from the environment. A .env
// file in the working directory is honored when present. Missing provider
// credentials disable the matching adapter rather than failing startup.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server binary needs at startup.
type Config struct {
	Port string
	Env  string

	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string

	RouteTimeout    time.Duration
	ProviderTimeout time.Duration
	SandboxTimeout  time.Duration

	ProjectRoot   string
	CacheSize     int
	SelectorOrder []string
}

// Load reads the environment, applying defaults for everything optional.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8000"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	projectRoot := strings.TrimSpace(os.Getenv("PROJECT_ROOT"))
	if projectRoot == "" {
		projectRoot = "generated_projects"
	}

	return &Config{
		Port:            port,
		Env:             env,
		OpenAIAPIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		AnthropicAPIKey: strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY")),
		GeminiAPIKey:    strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		RouteTimeout:    durationEnv("ROUTE_TIMEOUT", 30*time.Second),
		ProviderTimeout: durationEnv("PROVIDER_TIMEOUT", 20*time.Second),
		SandboxTimeout:  durationEnv("SANDBOX_TIMEOUT", 30*time.Second),
		ProjectRoot:     projectRoot,
		CacheSize:       intEnv("RESPONSE_CACHE_SIZE", 128),
		SelectorOrder:   listEnv("PROVIDER_PRIORITY", []string{"openai", "anthropic", "gemini"}),
	}, nil
}

// HasAnyProvider reports whether at least one provider credential is set.
func (c *Config) HasAnyProvider() bool {
	return c.OpenAIAPIKey != "" || c.AnthropicAPIKey != "" || c.GeminiAPIKey != ""
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func listEnv(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
