package chunker

import "strings"

// medicalKeywords signal clinically useful content. Each hit adds a small
// bonus, capped so keyword stuffing cannot dominate the score.
var medicalKeywords = []string{
	"diagnosis", "treatment", "symptom", "medication", "dosage",
	"patient", "clinical", "therapy", "prescription", "condition",
	"disease", "blood", "pressure", "glucose", "cholesterol",
	"allergy", "chronic", "acute", "mg", "ml",
}

// highValueSections carry the densest clinical signal per character
var highValueSections = map[string]bool{
	"assessment":      true,
	"lab_results":     true,
	"medications":     true,
	"recommendations": true,
	"chief_complaint": true,
}

// scoreQuality rates a chunk between 0 and 1. The baseline is 0.5 with
// adjustments for length, sentence completeness, keyword density, and
// section value.
func scoreQuality(text, sectionName string) float64 {
	score := 0.5

	length := len(text)
	switch {
	case length >= 200 && length <= 1500:
		score += 0.2
	case length < 50:
		score -= 0.3
	}

	terminators := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
	if terminators >= 2 {
		score += 0.1
	}

	lower := strings.ToLower(text)
	keywordBonus := 0.0
	for _, kw := range medicalKeywords {
		if strings.Contains(lower, kw) {
			keywordBonus += 0.05
		}
	}
	if keywordBonus > 0.2 {
		keywordBonus = 0.2
	}
	score += keywordBonus

	if highValueSections[sectionName] {
		score += 0.1
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
