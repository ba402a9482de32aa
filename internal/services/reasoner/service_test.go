package reasoner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name      string
	model     string
	available bool
	content   string
	err       error
	delay     time.Duration
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Model() string   { return f.model }
func (f *fakeProvider) Available() bool { return f.available }

func (f *fakeProvider) Complete(ctx context.Context, _ []interfaces.Message, _ interfaces.CompletionOptions) (*interfaces.Completion, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &interfaces.Completion{
		Content:          f.content,
		FinishReason:     "stop",
		Model:            f.model,
		PromptTokens:     100,
		CompletionTokens: 200,
	}, nil
}

func newTestReasoner(priority []string, providers ...interfaces.CompletionProvider) interfaces.Reasoner {
	cfg := common.NewDefaultConfig()
	cfg.Reasoning.Timeout = "2s"
	return NewService(cfg, providers, NewPriorityStrategy(priority))
}

var testMessages = []interfaces.Message{{Role: "user", Content: "What causes migraines?"}}

func TestReasonFansOutToAllProviders(t *testing.T) {
	svc := newTestReasoner([]string{"claude", "gemini"},
		&fakeProvider{name: "claude", model: "claude-3-5-sonnet-latest", available: true, content: "claude answer"},
		&fakeProvider{name: "gemini", model: "gemini-2.0-flash", available: true, content: "gemini answer"},
	)

	result, err := svc.Reason(context.Background(), testMessages, interfaces.ReasonOptions{})
	require.NoError(t, err)
	require.Len(t, result.Responses, 2)

	assert.Equal(t, "claude", result.Chosen.Provider)
	assert.Equal(t, "claude answer", result.Chosen.Content)
	assert.InDelta(t, 0.85, result.Confidence, 0.0001)
	assert.Equal(t, MedicalDisclaimer, result.Disclaimer)

	// claude: 100*0.003/1k + 200*0.015/1k, gemini: 100*0.0001/1k + 200*0.0004/1k
	want := decimal.RequireFromString("0.0033").Add(decimal.RequireFromString("0.00009"))
	assert.True(t, result.TotalCost.Equal(want), "total cost %s", result.TotalCost)
}

func TestReasonPriorityOrderControlsChoice(t *testing.T) {
	svc := newTestReasoner([]string{"gemini", "claude"},
		&fakeProvider{name: "claude", model: "claude-3-5-sonnet-latest", available: true, content: "claude answer"},
		&fakeProvider{name: "gemini", model: "gemini-2.0-flash", available: true, content: "gemini answer"},
	)

	result, err := svc.Reason(context.Background(), testMessages, interfaces.ReasonOptions{})
	require.NoError(t, err)
	assert.Equal(t, "gemini", result.Chosen.Provider)
}

func TestReasonSurvivesSingleProviderFailure(t *testing.T) {
	svc := newTestReasoner([]string{"claude", "gemini"},
		&fakeProvider{name: "claude", model: "claude-3-5-sonnet-latest", available: true, err: errors.New("rate limited")},
		&fakeProvider{name: "gemini", model: "gemini-2.0-flash", available: true, content: "gemini answer"},
	)

	result, err := svc.Reason(context.Background(), testMessages, interfaces.ReasonOptions{})
	require.NoError(t, err)
	require.Len(t, result.Responses, 1)
	assert.Equal(t, "gemini", result.Chosen.Provider)
	assert.InDelta(t, 0.7, result.Confidence, 0.0001)
}

func TestReasonAllProvidersFail(t *testing.T) {
	svc := newTestReasoner([]string{"claude", "gemini"},
		&fakeProvider{name: "claude", model: "claude-3-5-sonnet-latest", available: true, err: errors.New("rate limited")},
		&fakeProvider{name: "gemini", model: "gemini-2.0-flash", available: true, err: errors.New("quota exceeded")},
	)

	_, err := svc.Reason(context.Background(), testMessages, interfaces.ReasonOptions{})
	assert.ErrorIs(t, err, ErrNoProviderAvailable)
}

func TestReasonExcludesUnavailableProviders(t *testing.T) {
	svc := newTestReasoner([]string{"claude", "gemini"},
		&fakeProvider{name: "claude", available: false},
		&fakeProvider{name: "gemini", model: "gemini-2.0-flash", available: true, content: "gemini answer"},
	)

	result, err := svc.Reason(context.Background(), testMessages, interfaces.ReasonOptions{})
	require.NoError(t, err)
	require.Len(t, result.Responses, 1)
	assert.Equal(t, "gemini", result.Responses[0].Provider)
}

func TestReasonNoProvidersAvailable(t *testing.T) {
	svc := newTestReasoner([]string{"claude"},
		&fakeProvider{name: "claude", available: false},
	)

	_, err := svc.Reason(context.Background(), testMessages, interfaces.ReasonOptions{})
	assert.ErrorIs(t, err, ErrNoProviderAvailable)
}

func TestReasonSlowProviderTimesOut(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Reasoning.Timeout = "50ms"
	svc := NewService(cfg, []interfaces.CompletionProvider{
		&fakeProvider{name: "claude", model: "claude-3-5-sonnet-latest", available: true, content: "slow answer", delay: time.Second},
		&fakeProvider{name: "gemini", model: "gemini-2.0-flash", available: true, content: "fast answer"},
	}, NewPriorityStrategy([]string{"claude", "gemini"}))

	result, err := svc.Reason(context.Background(), testMessages, interfaces.ReasonOptions{})
	require.NoError(t, err)
	require.Len(t, result.Responses, 1)
	assert.Equal(t, "gemini", result.Chosen.Provider)
}

func TestPriorityStrategyFallsBackToFirstResponse(t *testing.T) {
	strategy := NewPriorityStrategy([]string{"claude"})
	responses := []models.ProviderResponse{
		{Provider: "gemini", Content: "only answer"},
	}

	chosen, confidence := strategy.Choose(responses)
	require.NotNil(t, chosen)
	assert.Equal(t, "gemini", chosen.Provider)
	assert.InDelta(t, 0.7, confidence, 0.0001)
}

func TestRateTable(t *testing.T) {
	rt := NewRateTable()

	tests := []struct {
		model  string
		prompt int
		comp   int
		want   string
	}{
		{"claude-3-5-sonnet-latest", 1000, 1000, "0.018"},
		{"claude-3-haiku-20240307", 1000, 1000, "0.0015"},
		{"gemini-2.0-flash", 1000, 1000, "0.0005"},
		{"unknown-model", 1000, 1000, "0.003"},
		{"gemini-2.0-flash", 0, 0, "0"},
	}
	for _, tt := range tests {
		got := rt.Cost(tt.model, tt.prompt, tt.comp)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "model %s: got %s want %s", tt.model, got, tt.want)
	}
}
