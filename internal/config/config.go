// Package config provides the configuration schema and loader for the
// finvox server.
package config

// LogLevel controls log verbosity for the finvox server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// StoreDriver selects the backend for the local structured store.
type StoreDriver string

const (
	StoreSQLite   StoreDriver = "sqlite"
	StorePostgres StoreDriver = "postgres"
)

// IsValid reports whether d is a recognised store driver.
func (d StoreDriver) IsValid() bool {
	return d == StoreSQLite || d == StorePostgres
}

// Config is the root configuration structure for finvox. It is
// typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	FMP       FMPConfig       `yaml:"fmp"`
	Store     StoreConfig     `yaml:"store"`
	Retriever RetrieverConfig `yaml:"retriever"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig declares which provider implementation serves each
// external capability.
type ProvidersConfig struct {
	// NLP is the LLM backend used for zero-shot intent classification
	// and NER entity extraction.
	NLP ProviderEntry `yaml:"nlp"`

	// STT is the speech-to-text backend for the voice path.
	STT ProviderEntry `yaml:"stt"`

	// Search is the web-search backend for the last fallback tier.
	Search ProviderEntry `yaml:"search"`

	// Embeddings is the embedding backend for the semantic retriever.
	Embeddings ProviderEntry `yaml:"embeddings"`
}

// ProviderEntry is the common configuration block shared by all
// provider kinds.
type ProviderEntry struct {
	// Name selects the implementation (e.g., "openai", "whisper").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider.
	Model string `yaml:"model"`

	// Language is the transcription language for STT providers.
	Language string `yaml:"language"`
}

// FMPConfig configures the financial-data API client.
type FMPConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// StoreConfig configures the local structured store.
type StoreConfig struct {
	// Driver selects sqlite (default) or postgres.
	Driver StoreDriver `yaml:"driver"`

	// SQLitePath is the SQLite database file. Default: db/financial_data.db.
	SQLitePath string `yaml:"sqlite_path"`

	// PostgresDSN is the connection string when Driver is postgres.
	PostgresDSN string `yaml:"postgres_dsn"`

	// CSVPath is the dataset loaded into the store at startup.
	// Default: data/financial_data.csv.
	CSVPath string `yaml:"csv_path"`
}

// RetrieverConfig configures the optional semantic fallback tier.
type RetrieverConfig struct {
	// Enabled turns the pgvector tier on. Off by default.
	Enabled bool `yaml:"enabled"`

	// PostgresDSN is the pgvector database. Falls back to
	// store.postgres_dsn when empty.
	PostgresDSN string `yaml:"postgres_dsn"`
}

// Default values applied by Validate.
const (
	DefaultListenAddr = ":8080"
	DefaultSQLitePath = "db/financial_data.db"
	DefaultCSVPath    = "data/financial_data.csv"
)
