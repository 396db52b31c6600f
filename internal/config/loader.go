package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// KnownProviderNames lists the implementations bundled with finvox,
// per provider kind. Unknown names are allowed but warned about so a
// typo does not fail silently at startup.
var KnownProviderNames = map[string][]string{
	"nlp":        {"openai", "ollama", "anthropic", "mistral"},
	"stt":        {"whisper"},
	"search":     {"websearch"},
	"embeddings": {"openai", "ollama"},
}

// Load reads, parses and validates the configuration file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader parses and validates YAML configuration from r.
// Unknown fields are rejected.
func LoadFromReader(r io.Reader) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate applies defaults, checks the configuration for hard errors
// and logs warnings for suspicious but workable settings.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = LogInfo
	}
	if !c.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is not one of debug, info, warn, error", c.Server.LogLevel))
	}

	warnUnknownProvider("nlp", c.Providers.NLP)
	warnUnknownProvider("stt", c.Providers.STT)
	warnUnknownProvider("search", c.Providers.Search)
	warnUnknownProvider("embeddings", c.Providers.Embeddings)

	if c.Providers.NLP.Name == "" {
		errs = append(errs, errors.New("providers.nlp.name is required"))
	}
	if c.FMP.APIKey == "" {
		slog.Warn("config: fmp.api_key is empty, financial API requests will fail and queries will rely on fallback tiers")
	}

	if c.Store.Driver == "" {
		c.Store.Driver = StoreSQLite
	}
	if !c.Store.Driver.IsValid() {
		errs = append(errs, fmt.Errorf("store.driver %q is not one of sqlite, postgres", c.Store.Driver))
	}
	if c.Store.Driver == StoreSQLite && c.Store.SQLitePath == "" {
		c.Store.SQLitePath = DefaultSQLitePath
	}
	if c.Store.Driver == StorePostgres && c.Store.PostgresDSN == "" {
		errs = append(errs, errors.New("store.postgres_dsn is required when store.driver is postgres"))
	}
	if c.Store.CSVPath == "" {
		c.Store.CSVPath = DefaultCSVPath
	}

	if c.Retriever.Enabled {
		if c.Retriever.PostgresDSN == "" {
			c.Retriever.PostgresDSN = c.Store.PostgresDSN
		}
		if c.Retriever.PostgresDSN == "" {
			errs = append(errs, errors.New("retriever.postgres_dsn is required when retriever.enabled is true"))
		}
		if c.Providers.Embeddings.Name == "" {
			errs = append(errs, errors.New("providers.embeddings.name is required when retriever.enabled is true"))
		}
	}

	return errors.Join(errs...)
}

// SlogLevel converts the configured level to its slog equivalent.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func warnUnknownProvider(kind string, p ProviderEntry) {
	if p.Name == "" {
		return
	}
	if !slices.Contains(KnownProviderNames[kind], p.Name) {
		slog.Warn("config: unknown provider name", "kind", kind, "name", p.Name)
	}
}
