package analyzer

import (
	"regexp"
	"strings"

	"github.com/galenhq/galen/internal/models"
)

var medicalIndicators = []string{
	"doctor", "hospital", "symptom", "diagnosis", "treatment", "medication",
	"medicine", "prescription", "pain", "fever", "blood", "disease",
	"condition", "health", "clinic", "surgery", "therapy", "allergy",
	"infection", "chronic", "vaccine", "dose", "pharmacy", "nurse",
}

// knownConditions and knownMedications are small curated dictionaries for
// entity extraction. Matching is substring based on the lowercased text.
var knownConditions = []string{
	"diabetes", "hypertension", "asthma", "arthritis", "migraine",
	"depression", "anxiety", "pneumonia", "bronchitis", "anemia",
	"hypothyroidism", "hyperthyroidism", "gerd", "eczema", "psoriasis",
	"high blood pressure", "high cholesterol",
}

var knownMedications = []string{
	"ibuprofen", "acetaminophen", "paracetamol", "aspirin", "metformin",
	"lisinopril", "atorvastatin", "amoxicillin", "omeprazole", "albuterol",
	"insulin", "prednisone", "warfarin", "levothyroxine", "sertraline",
}

var (
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	phonePattern = regexp.MustCompile(`\b(\+?1[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	mrnPattern   = regexp.MustCompile(`(?i)\b(mrn|medical record number)[:\s#]*\d{5,}\b`)
	dobPattern   = regexp.MustCompile(`(?i)\b(dob|date of birth|born)[:\s]+\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
)

// IsMedicalRelated reports whether free text plausibly concerns a medical
// topic. Used to gate retrieval for off-topic chatter.
func IsMedicalRelated(text string) bool {
	lower := strings.ToLower(text)
	for _, indicator := range medicalIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	for _, c := range knownConditions {
		if strings.Contains(lower, c) {
			return true
		}
	}
	for _, m := range knownMedications {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ExtractMedicalEntities pulls recognized conditions and medications out of
// free text into a context summary
func ExtractMedicalEntities(text string) *models.MedicalContext {
	lower := strings.ToLower(text)
	mc := &models.MedicalContext{}
	for _, c := range knownConditions {
		if strings.Contains(lower, c) {
			mc.Conditions = append(mc.Conditions, c)
		}
	}
	for _, m := range knownMedications {
		if strings.Contains(lower, m) {
			mc.Medications = append(mc.Medications, m)
		}
	}
	if len(mc.Conditions) > 0 || len(mc.Medications) > 0 {
		var parts []string
		if len(mc.Conditions) > 0 {
			parts = append(parts, "conditions: "+strings.Join(mc.Conditions, ", "))
		}
		if len(mc.Medications) > 0 {
			parts = append(parts, "medications: "+strings.Join(mc.Medications, ", "))
		}
		mc.Summary = strings.Join(parts, "; ")
	}
	return mc
}

// SanitizeText redacts common identifier formats before text leaves the
// process boundary. Order matters: SSNs would otherwise match the phone
// pattern.
func SanitizeText(text string) string {
	sanitized := ssnPattern.ReplaceAllString(text, "[REDACTED_SSN]")
	sanitized = mrnPattern.ReplaceAllString(sanitized, "[REDACTED_MRN]")
	sanitized = dobPattern.ReplaceAllString(sanitized, "[REDACTED_DOB]")
	sanitized = emailPattern.ReplaceAllString(sanitized, "[REDACTED_EMAIL]")
	sanitized = phonePattern.ReplaceAllString(sanitized, "[REDACTED_PHONE]")
	return sanitized
}
