package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// ClaudeProvider implements interfaces.CompletionProvider against the
// Anthropic Messages API
type ClaudeProvider struct {
	client      anthropic.Client
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
	retry       *RetryConfig
	logger      arbor.ILogger
}

// NewClaudeProvider creates the Claude provider. Without an API key the
// provider reports unavailable and the reasoner skips it.
func NewClaudeProvider(cfg *common.Config) *ClaudeProvider {
	p := &ClaudeProvider{
		apiKey:      cfg.Claude.APIKey,
		model:       cfg.Claude.Model,
		temperature: cfg.Claude.Temperature,
		maxTokens:   cfg.Claude.MaxTokens,
		retry:       NewDefaultRetryConfig(),
		logger:      common.GetLogger(),
	}
	if p.apiKey != "" {
		p.client = anthropic.NewClient(option.WithAPIKey(p.apiKey))
	}
	return p
}

func (p *ClaudeProvider) Name() string  { return "claude" }
func (p *ClaudeProvider) Model() string { return p.model }

// Available reports whether credentials are configured
func (p *ClaudeProvider) Available() bool { return p.apiKey != "" }

// Complete issues one chat completion with retry on transient errors
func (p *ClaudeProvider) Complete(ctx context.Context, messages []interfaces.Message, opts interfaces.CompletionOptions) (*interfaces.Completion, error) {
	if !p.Available() {
		return nil, fmt.Errorf("claude provider has no API key configured")
	}

	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = p.model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  claudeMessages,
	}
	temp := opts.Temperature
	if temp <= 0 {
		temp = p.temperature
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(float64(temp))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemText}}
	}

	start := time.Now()
	var resp *anthropic.Message
	var apiErr error
	for attempt := 0; attempt <= p.retry.MaxRetries; attempt++ {
		resp, apiErr = p.client.Messages.New(ctx, params)
		if apiErr == nil {
			break
		}
		if attempt == p.retry.MaxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * 2 * time.Second
		if IsRateLimitError(apiErr) {
			backoff = p.retry.CalculateBackoff(attempt, ExtractRetryDelay(apiErr))
		}
		p.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(apiErr).
			Msg("Retrying Claude API call")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
	if apiErr != nil {
		return nil, fmt.Errorf("Claude API call failed after %d retries: %w", p.retry.MaxRetries, apiErr)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from Claude API")
	}

	return &interfaces.Completion{
		Content:          text.String(),
		FinishReason:     string(resp.StopReason),
		Model:            model,
		PromptTokens:     int(resp.Usage.InputTokens),
		CompletionTokens: int(resp.Usage.OutputTokens),
		Latency:          time.Since(start),
	}, nil
}
