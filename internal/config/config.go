// Package config loads chromapoem settings from the environment.
package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"

	"github.com/gensys/chromapoem/internal/poem"
	"github.com/gensys/chromapoem/internal/snapshot"
)

// EnvPrefix is prepended to every chromapoem environment variable.
const EnvPrefix = "CHROMAPOEM_"

// placeholderKey is the sample key shipped in example .env files.
const placeholderKey = "sk-ant-api03-YOUR-KEY-HERE"

// Provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderGenAI     = "genai"
)

// Store kinds.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// Config holds every runtime setting. Flags override the loaded values.
type Config struct {
	ListenAddr     string
	AllowedOrigins []string
	ProxyURL       string

	Provider      string
	Model         string
	ClaudeAPIKey  string
	GoogleAPIKey  string
	GenAIBackend  string
	GenAIProject  string
	GenAILocation string

	RequestTimeout time.Duration

	Store       string
	StorePath   string
	DatabaseURL string

	LogLevel string
	LogJSON  bool
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		ListenAddr:     ":3000",
		AllowedOrigins: []string{"*"},
		ProxyURL:       poem.DefaultProxyURL,
		Provider:       ProviderAnthropic,
		GenAIBackend:   "gemini-api",
		RequestTimeout: 60 * time.Second,
		Store:          StoreFile,
		LogLevel:       "info",
	}
}

// Load reads an optional .env file in the working directory and then the
// process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a configuration from getenv. Unprefixed PORT,
// CLAUDE_API_KEY, GOOGLE_API_KEY and DATABASE_URL are honoured when the
// prefixed variable is unset.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()
	env := func(key string, fallbacks ...string) string {
		if v := getenv(EnvPrefix + key); v != "" {
			return v
		}
		for _, f := range fallbacks {
			if v := getenv(f); v != "" {
				return v
			}
		}
		return ""
	}

	if v := env("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	} else if port := env("PORT", "PORT"); port != "" {
		c.ListenAddr = ":" + strings.TrimPrefix(port, ":")
	}
	if v := env("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := env("PROXY_URL"); v != "" {
		c.ProxyURL = v
	}

	c.ClaudeAPIKey = env("CLAUDE_API_KEY", "CLAUDE_API_KEY", "ANTHROPIC_API_KEY")
	if c.ClaudeAPIKey == placeholderKey {
		c.ClaudeAPIKey = ""
	}
	c.GoogleAPIKey = env("GOOGLE_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY")

	if v := env("PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	} else if c.ClaudeAPIKey == "" && c.GoogleAPIKey != "" {
		c.Provider = ProviderGenAI
	}
	c.Model = env("MODEL")
	if v := env("GENAI_BACKEND"); v != "" {
		c.GenAIBackend = v
	}
	c.GenAIProject = env("GENAI_PROJECT", "GOOGLE_CLOUD_PROJECT")
	c.GenAILocation = env("GENAI_LOCATION", "GOOGLE_CLOUD_LOCATION")

	if v := env("REQUEST_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return c, fmt.Errorf("invalid %sREQUEST_TIMEOUT: %w", EnvPrefix, err)
		}
		c.RequestTimeout = d
	}

	if v := env("STORE"); v != "" {
		c.Store = strings.ToLower(v)
	}
	c.StorePath = env("STORE_PATH")
	c.DatabaseURL = env("DATABASE_URL", "DATABASE_URL")

	if v := env("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := env("LOG_JSON"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return c, fmt.Errorf("invalid %sLOG_JSON: %w", EnvPrefix, err)
		}
		c.LogJSON = b
	}

	return c, c.Validate()
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderGenAI:
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderAnthropic, ProviderGenAI)
	}
	switch c.Store {
	case StoreFile:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("the postgres store requires %sDATABASE_URL", EnvPrefix)
		}
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreFile, StorePostgres)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %v", c.RequestTimeout)
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// Generator returns the configured poem backend. It returns
// poem.ErrNoGenerator when the provider has no credentials.
func (c Config) Generator(ctx context.Context) (poem.Generator, error) {
	switch c.Provider {
	case ProviderGenAI:
		if c.GenAIBackend != "vertex-ai" && c.GoogleAPIKey == "" {
			return nil, fmt.Errorf("%w: set GOOGLE_API_KEY", poem.ErrNoGenerator)
		}
		g, err := poem.NewGenAI(ctx, poem.GenAIConfig{
			Backend:  c.GenAIBackend,
			APIKey:   c.GoogleAPIKey,
			Project:  c.GenAIProject,
			Location: c.GenAILocation,
			Model:    c.Model,
		})
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		if c.ClaudeAPIKey == "" {
			return nil, fmt.Errorf("%w: set CLAUDE_API_KEY", poem.ErrNoGenerator)
		}
		a := poem.NewAnthropic(c.ClaudeAPIKey)
		if c.Model != "" {
			a.Model = c.Model
		}
		a.Timeout = c.RequestTimeout
		return a, nil
	}
}

// OpenStore opens the configured snapshot store.
func (c Config) OpenStore(ctx context.Context) (snapshot.Store, error) {
	if c.Store == StorePostgres {
		pg, err := snapshot.OpenPostgres(ctx, c.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	}
	fs, err := snapshot.NewFileStore(c.StorePath)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// Logger builds the root logger writing to out.
func (c Config) Logger(name string, out io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(c.LogLevel),
		Output:     out,
		JSONFormat: c.LogJSON,
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDuration accepts Go durations and plain seconds.
func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}
