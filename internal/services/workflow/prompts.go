package workflow

import (
	"fmt"
	"strings"

	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/models"
)

const (
	maxInlineDocsInPrompt  = 3
	maxInlineCharsPerDoc   = 1000
	maxKnowledgeHits       = 5
	maxKnowledgeCharsEach  = 500
)

const baseSystemMessage = `You are a knowledgeable medical information assistant. Provide accurate, evidence-based health information in clear language.

Guidelines:
- Base answers on established medical knowledge and the provided context
- Be explicit about uncertainty and the limits of general information
- Never provide a definitive diagnosis
- Recommend consulting a healthcare professional for personal medical decisions`

const documentAnalysisAddendum = `
The user has provided medical documents. Ground your answer in their content, quote relevant values where useful, and say clearly when the documents do not contain the information needed.`

const emergencyAddendum = `
The query may describe an urgent situation. Advise seeking immediate medical attention before any other information.`

// buildMessages assembles the system and user messages for the provider
// fan-out. Referenced document content is placed ahead of retrieved
// knowledge so providers weight the user's own records higher.
func buildMessages(analyzed *models.AnalyzedQuery, hits []models.RetrievalHit, req *models.WorkflowRequest) []interfaces.Message {
	return []interfaces.Message{
		{Role: "system", Content: buildSystemMessage(analyzed, req.MedicalContext)},
		{Role: "user", Content: buildUserMessage(analyzed.Text, hits)},
	}
}

func buildSystemMessage(analyzed *models.AnalyzedQuery, mc *models.MedicalContext) string {
	var b strings.Builder
	b.WriteString(baseSystemMessage)

	if analyzed.Intent == models.IntentDocumentAnalysis {
		b.WriteString("\n")
		b.WriteString(documentAnalysisAddendum)
	}
	if analyzed.Urgency == models.UrgencyEmergency {
		b.WriteString("\n")
		b.WriteString(emergencyAddendum)
	}
	if mc != nil && mc.Summary != "" {
		b.WriteString("\n\nKnown patient context: ")
		b.WriteString(mc.Summary)
	}
	return b.String()
}

func buildUserMessage(query string, hits []models.RetrievalHit) string {
	var b strings.Builder

	inline, knowledge := partitionHits(hits)
	if len(inline) > 0 {
		b.WriteString("Referenced documents:\n")
		for i, hit := range inline {
			if i >= maxInlineDocsInPrompt {
				break
			}
			name := hit.FileName
			if name == "" {
				name = fmt.Sprintf("document %d", i+1)
			}
			b.WriteString(fmt.Sprintf("--- %s ---\n%s\n", name, truncate(hit.Content, maxInlineCharsPerDoc)))
		}
		b.WriteString("\n")
	}
	if len(knowledge) > 0 {
		b.WriteString("Relevant medical knowledge:\n")
		for i, hit := range knowledge {
			if i >= maxKnowledgeHits {
				break
			}
			b.WriteString(fmt.Sprintf("[%d] %s\n", i+1, truncate(hit.Content, maxKnowledgeCharsEach)))
		}
		b.WriteString("\n")
	}

	b.WriteString("Question: ")
	b.WriteString(query)
	return b.String()
}

// partitionHits separates the user's own documents from knowledge base hits,
// preserving rank order within each group
func partitionHits(hits []models.RetrievalHit) (inline, knowledge []models.RetrievalHit) {
	for _, hit := range hits {
		if hit.Source == models.SourceInline || hit.Source == models.SourceSession {
			inline = append(inline, hit)
		} else {
			knowledge = append(knowledge, hit)
		}
	}
	return inline, knowledge
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
