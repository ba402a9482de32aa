package models

// Intent is the classified purpose of a user query
type Intent string

const (
	IntentSymptomInquiry     Intent = "symptom_inquiry"
	IntentMedicationQuestion Intent = "medication_question"
	IntentTreatmentOptions   Intent = "treatment_options"
	IntentDocumentAnalysis   Intent = "document_analysis"
	IntentGeneralMedical     Intent = "general_medical"
)

// Urgency is the assessed urgency level of a query
type Urgency string

const (
	UrgencyMedium    Urgency = "medium"
	UrgencyHigh      Urgency = "high"
	UrgencyEmergency Urgency = "emergency"
)

// AnalyzedQuery is the classification result for one user query, derived once
// per workflow execution.
type AnalyzedQuery struct {
	Text             string  `json:"text"`
	Intent           Intent  `json:"intent"`
	Urgency          Urgency `json:"urgency"`
	RequiresCitation bool    `json:"requires_citation"`
	Confidence       float64 `json:"confidence"`
}

// MedicalContext carries optional patient background supplied with a query
type MedicalContext struct {
	Summary     string   `json:"summary,omitempty"`
	Conditions  []string `json:"conditions,omitempty"`
	Medications []string `json:"medications,omitempty"`
}
