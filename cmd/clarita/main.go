// Command clarita is the entry point for the Clarita CLI.
// It wires driven adapters (config, storage, embedding, enhancement)
// into the core services and hands control to the cobra command tree.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/clarita-labs/clarita-cli/internal/adapters/driven/config/file"
	"github.com/clarita-labs/clarita-cli/internal/adapters/driven/embedding/hashing"
	"github.com/clarita-labs/clarita-cli/internal/adapters/driven/embedding/ollama"
	"github.com/clarita-labs/clarita-cli/internal/adapters/driven/embedding/openai"
	"github.com/clarita-labs/clarita-cli/internal/adapters/driven/enhancement/salience"
	"github.com/clarita-labs/clarita-cli/internal/adapters/driven/storage/sqlite"
	"github.com/clarita-labs/clarita-cli/internal/adapters/driving/cli"
	"github.com/clarita-labs/clarita-cli/internal/core/domain"
	"github.com/clarita-labs/clarita-cli/internal/core/ports/driven"
	"github.com/clarita-labs/clarita-cli/internal/core/services"
	"github.com/clarita-labs/clarita-cli/internal/logger"
)

func main() {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: loading config:", err)
		os.Exit(1)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: opening annotation store:", err)
		os.Exit(1)
	}
	defer store.Close()

	embedder := buildEmbedding(configStore)
	confidence := buildConfidence(configStore)

	// Hot-reload tunables when the config file changes on disk. The
	// alignment threshold is read per request, so a reload alone makes
	// it current; the blend delta has to be pushed into the engine.
	if err := configStore.Watch(context.Background(), func() {
		confidence.SetBlendDelta(configStore.GetFloat("enhancement.blend_delta"))
		logger.Info("Reloaded configuration from %s", configStore.Path())
	}); err != nil {
		logger.Warn("Configuration watch unavailable: %v", err)
	}

	pipeline := services.NewAnalysisPipeline(embedder, confidence)
	reconciler := services.NewAnnotationReconciler(
		store.SessionStore(),
		store.AnnotationStore(),
		services.WithActor(configStore.GetString("annotation.actor")),
	)

	cli.SetServices(&cli.Services{
		Analysis:   pipeline,
		Annotation: reconciler,
		Config:     configStore,
	})
	cli.Execute()
}

// buildEmbedding selects an embedding provider from configuration.
// The hashing embedder is the default: deterministic, offline and good
// enough for lexical-level alignment.
func buildEmbedding(cfg driven.ConfigStore) driven.EmbeddingService {
	switch cfg.GetString("embedding.provider") {
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})
	case "openai":
		service, err := openai.NewEmbeddingService(openai.Config{
			APIKey:  cfg.GetString("embedding.api_key"),
			BaseURL: cfg.GetString("embedding.base_url"),
			Model:   cfg.GetString("embedding.model"),
		})
		if err != nil {
			logger.Warn("OpenAI embedding unavailable (%v), falling back to feature hashing", err)
			return hashing.NewEmbeddingService()
		}
		return service
	default:
		return hashing.NewEmbeddingService()
	}
}

// buildConfidence assembles the confidence engine, optionally blending
// scores with the salience enhancement provider when one is configured.
func buildConfidence(cfg driven.ConfigStore) *services.ConfidenceEngine {
	cascade := services.NewEvidenceCascade(nil)

	var opts []services.ConfidenceOption
	if cfg.GetBool("enhancement.enabled") {
		provider := salience.NewProvider(salience.Config{
			BaseURL:           cfg.GetString("enhancement.base_url"),
			RequestsPerSecond: cfg.GetFloat("enhancement.requests_per_second"),
		})
		codes := []domain.StrategyCode{domain.CodeLexicalSimplification, domain.CodeCompression}
		if configured := cfg.GetStringSlice("enhancement.codes"); len(configured) > 0 {
			codes = codes[:0]
			for _, c := range configured {
				codes = append(codes, domain.StrategyCode(c))
			}
		}
		opts = append(opts, services.WithEnhancement(provider, codes...))
	}
	if delta := cfg.GetFloat("enhancement.blend_delta"); delta > 0 {
		opts = append(opts, services.WithBlendDelta(delta))
	}

	return services.NewConfidenceEngine(cascade, opts...)
}
