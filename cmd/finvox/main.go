// Command finvox is the main entry point for the finvox financial
// query server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/finvox/finvox/internal/config"
	"github.com/finvox/finvox/internal/handler"
	"github.com/finvox/finvox/internal/health"
	"github.com/finvox/finvox/internal/mcptool"
	"github.com/finvox/finvox/internal/observe"
	"github.com/finvox/finvox/internal/query"
	"github.com/finvox/finvox/internal/query/entities"
	"github.com/finvox/finvox/internal/query/fallback"
	"github.com/finvox/finvox/internal/query/intent"
	"github.com/finvox/finvox/internal/resilience"
	"github.com/finvox/finvox/internal/retriever"
	"github.com/finvox/finvox/internal/server"
	"github.com/finvox/finvox/internal/store"
	"github.com/finvox/finvox/pkg/fmp"
	"github.com/finvox/finvox/pkg/provider/embeddings"
	ollamaembed "github.com/finvox/finvox/pkg/provider/embeddings/ollama"
	oaembed "github.com/finvox/finvox/pkg/provider/embeddings/openai"
	"github.com/finvox/finvox/pkg/provider/nlp/anyllm"
	"github.com/finvox/finvox/pkg/provider/search"
	"github.com/finvox/finvox/pkg/provider/search/websearch"
	"github.com/finvox/finvox/pkg/provider/stt"
	"github.com/finvox/finvox/pkg/provider/stt/whisper"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	mcpMode := flag.Bool("mcp", false, "serve the query pipeline as an MCP tool over stdio instead of HTTP")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "finvox: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "finvox: %v\n", err)
		}
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Server.LogLevel.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("finvox starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownObs, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "finvox",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownObs(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Metric store ──────────────────────────────────────────────────────
	metrics, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open metric store", "err", err)
		return 1
	}
	defer metrics.Close()

	if _, err := os.Stat(cfg.Store.CSVPath); err == nil {
		n, err := metrics.LoadCSV(ctx, cfg.Store.CSVPath)
		if err != nil {
			slog.Error("failed to load dataset", "path", cfg.Store.CSVPath, "err", err)
			return 1
		}
		slog.Info("dataset loaded", "path", cfg.Store.CSVPath, "records", n)
	} else {
		slog.Warn("dataset not found, store lookups will miss", "path", cfg.Store.CSVPath)
	}

	// ── Providers ─────────────────────────────────────────────────────────
	nlpProvider, err := buildNLP(cfg.Providers.NLP)
	if err != nil {
		slog.Error("failed to build nlp provider", "err", err)
		return 1
	}

	var searcher search.Provider
	if cfg.Providers.Search.BaseURL != "" {
		searcher, err = websearch.New(cfg.Providers.Search.BaseURL, cfg.Providers.Search.APIKey)
		if err != nil {
			slog.Error("failed to build search provider", "err", err)
			return 1
		}
	} else {
		slog.Warn("no web search endpoint configured, the last fallback tier is disabled")
	}

	var transcriber stt.Provider
	if cfg.Providers.STT.BaseURL != "" {
		opts := []whisper.Option{}
		if cfg.Providers.STT.Language != "" {
			opts = append(opts, whisper.WithLanguage(cfg.Providers.STT.Language))
		}
		if cfg.Providers.STT.Model != "" {
			opts = append(opts, whisper.WithModel(cfg.Providers.STT.Model))
		}
		transcriber, err = whisper.New(cfg.Providers.STT.BaseURL, opts...)
		if err != nil {
			slog.Error("failed to build stt provider", "err", err)
			return 1
		}
	}

	fmpClient, err := fmp.New(cfg.FMP.APIKey, fmpOptions(cfg)...)
	if err != nil {
		slog.Error("failed to build financial API client", "err", err)
		return 1
	}

	// ── Optional semantic retriever ───────────────────────────────────────
	var semantic fallback.Retriever
	if cfg.Retriever.Enabled {
		embedder, err := buildEmbedder(cfg.Providers.Embeddings)
		if err != nil {
			slog.Error("failed to build embeddings provider", "err", err)
			return 1
		}
		index, err := retriever.Open(ctx, cfg.Retriever.PostgresDSN, embedder)
		if err != nil {
			slog.Error("failed to open retriever index", "err", err)
			return 1
		}
		defer index.Close()

		records, err := metrics.Records(ctx)
		if err != nil {
			slog.Error("failed to read dataset for indexing", "err", err)
			return 1
		}
		if err := index.BuildIndex(ctx, records); err != nil {
			slog.Error("failed to build retriever index", "err", err)
			return 1
		}
		semantic = index
		slog.Info("semantic retriever enabled", "embeddings", cfg.Providers.Embeddings.Name)
	}

	// ── Pipeline ──────────────────────────────────────────────────────────
	resolver := resilience.NewClassifierFallback(
		intent.NewResolver(nlpProvider),
		"classifier",
		resilience.FallbackConfig{CircuitBreaker: resilience.CircuitBreakerConfig{Name: "classifier"}},
	)
	resolver.AddFallback("keywords", intent.KeywordResolver{})

	normalizer := entities.New(nlpProvider, metrics)
	registry := handler.NewRegistry(fmpClient)

	chainOpts := []fallback.Option{}
	if semantic != nil {
		chainOpts = append(chainOpts, fallback.WithRetriever(semantic))
	}
	chain := fallback.New(metrics, searcher, chainOpts...)

	orchestrator := query.New(resolver, normalizer, registry, chain, nil)

	// ── Serve ─────────────────────────────────────────────────────────────
	if *mcpMode {
		if err := mcptool.Run(ctx, orchestrator); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("mcp serve error", "err", err)
			return 1
		}
		return 0
	}

	healthHandler := health.New(health.StoreChecker(metrics))

	srv, err := server.New(cfg.Server.ListenAddr, orchestrator,
		server.WithSTT(transcriber),
		server.WithHealth(healthHandler),
	)
	if err != nil {
		slog.Error("failed to build server", "err", err)
		return 1
	}

	slog.Info("server ready — press Ctrl+C to shut down")
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("serve error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// openStore opens the configured metric store backend.
func openStore(ctx context.Context, cfg *config.Config) (store.MetricStore, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		return store.OpenPostgres(ctx, cfg.Store.PostgresDSN)
	default:
		return store.OpenSQLite(cfg.Store.SQLitePath)
	}
}

// buildNLP constructs the LLM backend used for both intent
// classification and entity extraction.
func buildNLP(entry config.ProviderEntry) (*anyllm.Provider, error) {
	var opts []anyllmlib.Option
	if entry.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
	}
	if entry.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
	}
	return anyllm.New(entry.Name, entry.Model, opts...)
}

// buildEmbedder constructs the embeddings backend for the retriever.
func buildEmbedder(entry config.ProviderEntry) (embeddings.Provider, error) {
	switch entry.Name {
	case "ollama":
		return ollamaembed.New(entry.BaseURL, entry.Model)
	case "openai":
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	default:
		return nil, fmt.Errorf("unknown embeddings provider %q", entry.Name)
	}
}

func fmpOptions(cfg *config.Config) []fmp.Option {
	var opts []fmp.Option
	if cfg.FMP.BaseURL != "" {
		opts = append(opts, fmp.WithBaseURL(cfg.FMP.BaseURL))
	}
	return opts
}
