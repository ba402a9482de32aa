package analyzer

import (
	"strings"

	"github.com/galenhq/galen/internal/common"
	"github.com/galenhq/galen/internal/interfaces"
	"github.com/galenhq/galen/internal/models"
	"github.com/ternarybob/arbor"
)

// emergencyPhrases short-circuit everything else. These are unambiguous
// enough that a false positive is acceptable.
var emergencyPhrases = []string{
	"difficulty breathing",
	"can't breathe",
	"cannot breathe",
	"unconscious",
	"severe bleeding",
	"overdose",
	"anaphylaxis",
	"heart attack",
	"stroke symptoms",
}

// highUrgencyKeywords escalate to high but never to emergency
var highUrgencyKeywords = []string{
	"pain", "urgent", "severe", "acute", "worsening", "bleeding", "emergency",
}

// intentRule maps keywords to an intent. Rules are checked in order and the
// first match wins.
type intentRule struct {
	intent   models.Intent
	keywords []string
}

var intentRules = []intentRule{
	{models.IntentSymptomInquiry, []string{"symptom", "pain", "ache", "hurt", "fever", "cough", "nausea", "dizzy", "tired", "feel"}},
	{models.IntentMedicationQuestion, []string{"medication", "medicine", "drug", "pill", "dose", "dosage", "prescription", "side effect", "interaction"}},
	{models.IntentTreatmentOptions, []string{"treatment", "therapy", "cure", "manage", "remedy", "option"}},
	{models.IntentDocumentAnalysis, []string{"document", "report", "lab result", "my results", "uploaded", "attached", "file"}},
}

// citationKeywords force citations regardless of intent
var citationKeywords = []string{"research", "study", "studies", "evidence", "clinical trial"}

// Service classifies queries by keyword rules. No model call is involved, so
// analysis is deterministic and effectively free.
type Service struct {
	logger arbor.ILogger
}

// NewService creates the rule-based query analyzer
func NewService() interfaces.QueryAnalyzer {
	return &Service{logger: common.GetLogger()}
}

// Analyze classifies intent and urgency for a query. Emergency phrases are
// checked before anything else so they can never be masked by intent rules.
func (s *Service) Analyze(query string, medicalContext *models.MedicalContext) (*models.AnalyzedQuery, error) {
	lower := strings.ToLower(strings.TrimSpace(query))

	analyzed := &models.AnalyzedQuery{
		Text:       query,
		Intent:     models.IntentGeneralMedical,
		Urgency:    models.UrgencyMedium,
		Confidence: 0.5,
	}
	if lower == "" {
		return analyzed, nil
	}

	analyzed.Urgency = classifyUrgency(lower)

	for _, rule := range intentRules {
		matched := 0
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				matched++
			}
		}
		if matched > 0 {
			analyzed.Intent = rule.intent
			analyzed.Confidence = 0.6 + 0.1*float64(matched)
			if analyzed.Confidence > 0.95 {
				analyzed.Confidence = 0.95
			}
			break
		}
	}

	analyzed.RequiresCitation = requiresCitation(analyzed.Intent, lower)

	if medicalContext != nil && contextMentioned(lower, medicalContext) {
		analyzed.Confidence += 0.05
		if analyzed.Confidence > 0.95 {
			analyzed.Confidence = 0.95
		}
	}

	s.logger.Debug().
		Str("intent", string(analyzed.Intent)).
		Str("urgency", string(analyzed.Urgency)).
		Bool("requires_citation", analyzed.RequiresCitation).
		Msg("Query analyzed")

	return analyzed, nil
}

func classifyUrgency(lower string) models.Urgency {
	for _, phrase := range emergencyPhrases {
		if strings.Contains(lower, phrase) {
			return models.UrgencyEmergency
		}
	}
	for _, kw := range highUrgencyKeywords {
		if strings.Contains(lower, kw) {
			return models.UrgencyHigh
		}
	}
	return models.UrgencyMedium
}

func requiresCitation(intent models.Intent, lower string) bool {
	if intent == models.IntentTreatmentOptions || intent == models.IntentMedicationQuestion {
		return true
	}
	for _, kw := range citationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// contextMentioned reports whether the query references a condition or
// medication already present in the user's medical context
func contextMentioned(lower string, mc *models.MedicalContext) bool {
	for _, c := range mc.Conditions {
		if c != "" && strings.Contains(lower, strings.ToLower(c)) {
			return true
		}
	}
	for _, m := range mc.Medications {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
