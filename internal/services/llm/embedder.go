package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/galenhq/galen/internal/common"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"
)

// GeminiEmbedder implements interfaces.EmbeddingService using the Gemini
// embedding models
type GeminiEmbedder struct {
	apiKey    string
	model     string
	dimension int
	timeout   time.Duration
	logger    arbor.ILogger

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiEmbedder creates the cloud embedding gateway
func NewGeminiEmbedder(cfg *common.Config) *GeminiEmbedder {
	return &GeminiEmbedder{
		apiKey:    cfg.Gemini.APIKey,
		model:     cfg.Embedding.Model,
		dimension: cfg.Embedding.Dimension,
		timeout:   common.ParseTimeout(cfg.Embedding.Timeout, time.Minute),
		logger:    common.GetLogger(),
	}
}

// Dimension returns the configured vector dimension
func (e *GeminiEmbedder) Dimension() int { return e.dimension }

func (e *GeminiEmbedder) getClient(ctx context.Context) (*genai.Client, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return e.client, nil
	}
	if e.apiKey == "" {
		return nil, fmt.Errorf("gemini embedder has no API key configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  e.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	e.client = client
	return client, nil
}

// Embed generates a vector for text with the configured dimensionality
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	client, err := e.getClient(ctx)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	outputDim := int32(e.dimension)
	result, err := client.Models.EmbedContent(callCtx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &outputDim},
	)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	var embedding []float32
	if result != nil && len(result.Embeddings) > 0 {
		embedding = result.Embeddings[0].Values
	}
	if embedding == nil {
		return nil, fmt.Errorf("no embedding returned from API")
	}
	if len(embedding) != e.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: expected %d, got %d", e.dimension, len(embedding))
	}
	return embedding, nil
}
