package llm

import (
	"fmt"

	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
)

// NewProviders builds the completion provider set in the configured priority
// order. Unknown names in the priority list are skipped with a warning so a
// typo degrades rather than aborts.
func NewProviders(cfg *common.Config) []interfaces.CompletionProvider {
	logger := common.GetLogger()

	available := map[string]interfaces.CompletionProvider{
		"claude": NewClaudeProvider(cfg),
		"gemini": NewGeminiProvider(cfg),
	}

	providers := make([]interfaces.CompletionProvider, 0, len(available))
	seen := make(map[string]bool)
	for _, name := range cfg.Reasoning.Priority {
		p, ok := available[name]
		if !ok {
			logger.Warn().Str("provider", name).Msg("Unknown provider in priority list, skipping")
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		providers = append(providers, p)
	}

	// providers left out of the priority list still participate in the
	// fan-out, they just never win a consensus tie
	for name, p := range available {
		if !seen[name] {
			providers = append(providers, p)
		}
	}
	return providers
}

// NewEmbedder selects the embedding implementation from config
func NewEmbedder(cfg *common.Config) (interfaces.EmbeddingService, error) {
	switch cfg.Embedding.Provider {
	case "gemini":
		return NewGeminiEmbedder(cfg), nil
	case "hash":
		return NewHashEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}
}
