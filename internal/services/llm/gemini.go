package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"
)

// GeminiProvider implements interfaces.CompletionProvider against the Google
// Gemini API. The genai client needs a context to construct, so it is
// created lazily on first use.
type GeminiProvider struct {
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
	retry       *RetryConfig
	logger      arbor.ILogger

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiProvider creates the Gemini provider. Without an API key the
// provider reports unavailable and the reasoner skips it.
func NewGeminiProvider(cfg *common.Config) *GeminiProvider {
	return &GeminiProvider{
		apiKey:      cfg.Gemini.APIKey,
		model:       cfg.Gemini.Model,
		temperature: cfg.Gemini.Temperature,
		maxTokens:   cfg.Gemini.MaxTokens,
		retry:       NewDefaultRetryConfig(),
		logger:      common.GetLogger(),
	}
}

func (p *GeminiProvider) Name() string  { return "gemini" }
func (p *GeminiProvider) Model() string { return p.model }

// Available reports whether credentials are configured
func (p *GeminiProvider) Available() bool { return p.apiKey != "" }

func (p *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	p.client = client
	return client, nil
}

// Complete issues one chat completion with retry on transient errors
func (p *GeminiProvider) Complete(ctx context.Context, messages []interfaces.Message, opts interfaces.CompletionOptions) (*interfaces.Completion, error) {
	if !p.Available() {
		return nil, fmt.Errorf("gemini provider has no API key configured")
	}

	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	contents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = p.model
	}
	temp := opts.Temperature
	if temp <= 0 {
		temp = p.temperature
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temp),
	}
	if maxTokens := opts.MaxTokens; maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	} else if p.maxTokens > 0 {
		config.MaxOutputTokens = int32(p.maxTokens)
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	start := time.Now()
	var resp *genai.GenerateContentResponse
	var apiErr error
	for attempt := 0; attempt <= p.retry.MaxRetries; attempt++ {
		resp, apiErr = client.Models.GenerateContent(ctx, model, contents, config)
		if apiErr == nil {
			break
		}
		if attempt == p.retry.MaxRetries {
			break
		}

		var backoff time.Duration
		if IsRateLimitError(apiErr) {
			backoff = p.retry.CalculateBackoff(attempt, ExtractRetryDelay(apiErr))
		} else {
			backoff = time.Duration(attempt+1) * 2 * time.Second
		}
		p.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Gemini API call")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	if apiErr != nil {
		return nil, fmt.Errorf("Gemini API call failed after %d retries: %w", p.retry.MaxRetries, apiErr)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini API")
	}
	responseText := resp.Text()
	if responseText == "" {
		return nil, fmt.Errorf("empty text in Gemini response")
	}

	completion := &interfaces.Completion{
		Content: responseText,
		Model:   model,
		Latency: time.Since(start),
	}
	if resp.Candidates[0].FinishReason != "" {
		completion.FinishReason = string(resp.Candidates[0].FinishReason)
	}
	if resp.UsageMetadata != nil {
		completion.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		completion.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return completion, nil
}
