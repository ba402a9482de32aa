package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/models"
	"github.com/galenhq/galen/internal/services/analyzer"
	"github.com/galenhq/galen/internal/services/reasoner"
	"github.com/galenhq/galen/internal/services/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetrieval struct {
	hits  []models.RetrievalHit
	err   error
	calls int
}

func (f *fakeRetrieval) Retrieve(_ context.Context, _ string, _ interfaces.RetrieveOptions) ([]models.RetrievalHit, error) {
	f.calls++
	return f.hits, f.err
}

type fakeReasoner struct {
	result   *models.ConsensusResult
	err      error
	messages []interfaces.Message
}

func (f *fakeReasoner) Reason(_ context.Context, messages []interfaces.Message, _ interfaces.ReasonOptions) (*models.ConsensusResult, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type recordingCosts struct {
	entries []models.CostEntry
}

func (r *recordingCosts) Record(_ context.Context, entry *models.CostEntry) string {
	r.entries = append(r.entries, *entry)
	return "cost_recorded"
}

func (r *recordingCosts) Summarize(context.Context, string, time.Time, time.Time) (*models.CostSummary, error) {
	return nil, nil
}

func healthyConsensus() *models.ConsensusResult {
	responses := []models.ProviderResponse{
		{
			Provider: "claude",
			Model:    "claude-3-5-sonnet-20241022",
			Content:  "Migraines have several common triggers. Consult your doctor about persistent symptoms.",
			Usage:    models.TokenUsage{Prompt: 120, Completion: 80, Total: 200},
			Cost:     decimal.RequireFromString("0.00156"),
		},
		{
			Provider: "gemini",
			Model:    "gemini-2.0-flash",
			Content:  "Common triggers include stress and sleep changes.",
			Usage:    models.TokenUsage{Prompt: 120, Completion: 60, Total: 180},
			Cost:     decimal.RequireFromString("0.000036"),
		},
	}
	return &models.ConsensusResult{
		Responses:  responses,
		Chosen:     &responses[0],
		Confidence: 0.85,
		Disclaimer: reasoner.MedicalDisclaimer,
		TotalCost:  decimal.RequireFromString("0.001596"),
	}
}

func knowledgeHits() []models.RetrievalHit {
	return []models.RetrievalHit{
		{ID: "kb_1", Score: 0.91, Content: strings.Repeat("Migraine triggers include stress. ", 10), Source: models.SourceGlobal, Title: "Migraine Overview"},
		{ID: "chunk_1", Score: 0.84, Content: "Patient reports light sensitivity.", Source: models.SourceSession, FileName: "notes.txt"},
	}
}

func newTestWorkflow(retrieval *fakeRetrieval, reason *fakeReasoner, costs *recordingCosts) interfaces.Workflow {
	return NewService(analyzer.NewService(), retrieval, reason, validator.NewService(), costs)
}

func TestRunCompletesWithCitationsAndCosts(t *testing.T) {
	retrieval := &fakeRetrieval{hits: knowledgeHits()}
	reason := &fakeReasoner{result: healthyConsensus()}
	costs := &recordingCosts{}
	wf := newTestWorkflow(retrieval, reason, costs)

	result, err := wf.Run(context.Background(), &models.WorkflowRequest{
		Query:  "What could cause chest pain for two days?",
		UserID: "user_1",
	})
	require.NoError(t, err)
	require.Equal(t, models.WorkflowCompleted, result.State)

	assert.Equal(t, models.IntentSymptomInquiry, result.Analyzed.Intent)
	assert.Equal(t, models.UrgencyHigh, result.Analyzed.Urgency)
	assert.Contains(t, result.Final.Content, "triggers")
	assert.True(t, result.Final.RequiresFollowUp)
	assert.True(t, result.TotalCost.Equal(decimal.RequireFromString("0.001596")))

	require.Len(t, result.Citations, 2)
	assert.Equal(t, "doc-1", result.Citations[0].ID)
	assert.Equal(t, "doc-2", result.Citations[1].ID)
	assert.Equal(t, "Migraine Overview", result.Citations[0].Title)
	assert.Equal(t, "notes.txt", result.Citations[1].Title)
	assert.LessOrEqual(t, len(result.Citations[0].Snippet), citationSnippetLength+3)

	require.Len(t, costs.entries, 2)
	assert.Equal(t, models.OperationChatCompletion, costs.entries[0].Operation)
	assert.Equal(t, "claude", costs.entries[0].Provider)
	assert.Equal(t, "user_1", costs.entries[0].UserID)
	assert.Equal(t, result.RequestID, costs.entries[0].RequestID)
}

func TestRunReasonerFailureProducesFallback(t *testing.T) {
	retrieval := &fakeRetrieval{hits: knowledgeHits()}
	reason := &fakeReasoner{err: reasoner.ErrNoProviderAvailable}
	costs := &recordingCosts{}
	wf := newTestWorkflow(retrieval, reason, costs)

	result, err := wf.Run(context.Background(), &models.WorkflowRequest{
		Query:  "What could cause chest pain for two days?",
		UserID: "user_1",
	})
	require.NoError(t, err)

	assert.Equal(t, models.WorkflowError, result.State)
	assert.Equal(t, FallbackMessage, result.Final.Content)
	assert.Equal(t, 0.1, result.Final.Confidence)
	assert.NotEmpty(t, result.Error)
	assert.True(t, result.TotalCost.Equal(decimal.RequireFromString("0.001")))

	// analysis completed before the failure, so its fields survive
	assert.Equal(t, models.UrgencyHigh, result.Final.Urgency)
	assert.True(t, result.Final.RequiresFollowUp)

	require.Len(t, costs.entries, 1)
	assert.Equal(t, models.OperationWorkflowError, costs.entries[0].Operation)
	assert.True(t, costs.entries[0].AmountUSD.Equal(decimal.RequireFromString("0.001")))
}

func TestRunRetrievalFailureDegrades(t *testing.T) {
	retrieval := &fakeRetrieval{err: errors.New("vector store down")}
	reason := &fakeReasoner{result: healthyConsensus()}
	wf := newTestWorkflow(retrieval, reason, &recordingCosts{})

	result, err := wf.Run(context.Background(), &models.WorkflowRequest{
		Query:  "What are common migraine symptoms?",
		UserID: "user_1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowCompleted, result.State)
	assert.Empty(t, result.RetrievalHits)
	assert.Empty(t, result.Citations)
}

func TestRunSkipsRetrievalForOffTopicQuery(t *testing.T) {
	retrieval := &fakeRetrieval{}
	reason := &fakeReasoner{result: healthyConsensus()}
	wf := newTestWorkflow(retrieval, reason, &recordingCosts{})

	_, err := wf.Run(context.Background(), &models.WorkflowRequest{
		Query:  "What is the weather tomorrow?",
		UserID: "user_1",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, retrieval.calls)
}

func TestRunSanitizesQueryBeforeProviders(t *testing.T) {
	retrieval := &fakeRetrieval{}
	reason := &fakeReasoner{result: healthyConsensus()}
	wf := newTestWorkflow(retrieval, reason, &recordingCosts{})

	_, err := wf.Run(context.Background(), &models.WorkflowRequest{
		Query:  "My doctor's email is jane@clinic.example.com, is my fever serious?",
		UserID: "user_1",
	})
	require.NoError(t, err)

	require.Len(t, reason.messages, 2)
	assert.NotContains(t, reason.messages[1].Content, "jane@clinic.example.com")
	assert.Contains(t, reason.messages[1].Content, "[REDACTED_EMAIL]")
}

func TestRunEmptyQueryFails(t *testing.T) {
	costs := &recordingCosts{}
	wf := newTestWorkflow(&fakeRetrieval{}, &fakeReasoner{result: healthyConsensus()}, costs)

	result, err := wf.Run(context.Background(), &models.WorkflowRequest{Query: ""})
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowError, result.State)
	assert.Equal(t, FallbackMessage, result.Final.Content)
	require.Len(t, costs.entries, 1)
	assert.Equal(t, models.OperationWorkflowError, costs.entries[0].Operation)
}

func TestBuildUserMessageOrdersContext(t *testing.T) {
	hits := []models.RetrievalHit{
		{ID: "kb_1", Score: 0.95, Content: "Knowledge entry content.", Source: models.SourceGlobal, Title: "Entry"},
		{ID: "inline_1", Score: 0.9, Content: "Inline document content.", Source: models.SourceInline, FileName: "upload.txt"},
	}

	msg := buildUserMessage("What does my report mean?", hits)
	inlineIdx := strings.Index(msg, "Referenced documents:")
	knowledgeIdx := strings.Index(msg, "Relevant medical knowledge:")
	questionIdx := strings.Index(msg, "Question: What does my report mean?")

	require.NotEqual(t, -1, inlineIdx)
	require.NotEqual(t, -1, knowledgeIdx)
	require.NotEqual(t, -1, questionIdx)
	assert.Less(t, inlineIdx, knowledgeIdx)
	assert.Less(t, knowledgeIdx, questionIdx)
	assert.Contains(t, msg, "upload.txt")
}

func TestBuildUserMessageTruncatesLongContext(t *testing.T) {
	hits := []models.RetrievalHit{
		{ID: "inline_1", Score: 0.9, Content: strings.Repeat("x", 5000), Source: models.SourceInline, FileName: "big.txt"},
		{ID: "kb_1", Score: 0.8, Content: strings.Repeat("y", 5000), Source: models.SourceGlobal, Title: "Long"},
	}

	msg := buildUserMessage("question", hits)
	assert.Contains(t, msg, strings.Repeat("x", maxInlineCharsPerDoc)+"...")
	assert.NotContains(t, msg, strings.Repeat("x", maxInlineCharsPerDoc+1))
	assert.Contains(t, msg, strings.Repeat("y", maxKnowledgeCharsEach)+"...")
	assert.NotContains(t, msg, strings.Repeat("y", maxKnowledgeCharsEach+1))
}

func TestBuildSystemMessageAddenda(t *testing.T) {
	base := buildSystemMessage(&models.AnalyzedQuery{Intent: models.IntentGeneralMedical, Urgency: models.UrgencyMedium}, nil)
	assert.NotContains(t, base, "provided medical documents")
	assert.NotContains(t, base, "immediate medical attention")

	docs := buildSystemMessage(&models.AnalyzedQuery{Intent: models.IntentDocumentAnalysis, Urgency: models.UrgencyMedium}, nil)
	assert.Contains(t, docs, "provided medical documents")

	emergency := buildSystemMessage(&models.AnalyzedQuery{Intent: models.IntentSymptomInquiry, Urgency: models.UrgencyEmergency}, nil)
	assert.Contains(t, emergency, "immediate medical attention")

	withContext := buildSystemMessage(&models.AnalyzedQuery{Intent: models.IntentGeneralMedical, Urgency: models.UrgencyMedium}, &models.MedicalContext{Summary: "conditions: diabetes"})
	assert.Contains(t, withContext, "Known patient context: conditions: diabetes")
}
