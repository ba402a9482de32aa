package chunker

import (
	"regexp"
	"sort"
)

// section is a contiguous region of the normalized document with a semantic
// label. Start is the absolute offset of Content in the document.
type section struct {
	Name    string
	Content string
	Start   int
}

// sectionPattern maps a semantic section name to the heading patterns that
// open it in clinical documents
type sectionPattern struct {
	name    string
	pattern *regexp.Regexp
}

var labReportPatterns = []sectionPattern{
	{"patient_info", regexp.MustCompile(`(?im)^\s*(patient\s+(information|info|name|details)|demographics)\s*:?\s*$`)},
	{"lab_results", regexp.MustCompile(`(?im)^\s*(lab(oratory)?\s+(results?|values?|findings?)|test\s+results?|results?)\s*:?\s*$`)},
	{"assessment", regexp.MustCompile(`(?im)^\s*(assessment|impression|interpretation|diagnosis)\s*:?\s*$`)},
	{"recommendations", regexp.MustCompile(`(?im)^\s*(recommendations?|plan|follow[\s-]?up|next\s+steps?)\s*:?\s*$`)},
}

var medicalHistoryPatterns = []sectionPattern{
	{"patient_info", regexp.MustCompile(`(?im)^\s*(patient\s+(information|info|name|details)|demographics)\s*:?\s*$`)},
	{"chief_complaint", regexp.MustCompile(`(?im)^\s*(chief\s+complaint|cc|presenting\s+(complaint|problem))\s*:?\s*$`)},
	{"hpi", regexp.MustCompile(`(?im)^\s*(history\s+of\s+present(ing)?\s+illness|hpi)\s*:?\s*$`)},
	{"physical_exam", regexp.MustCompile(`(?im)^\s*(physical\s+exam(ination)?|pe|exam\s+findings?)\s*:?\s*$`)},
	{"assessment", regexp.MustCompile(`(?im)^\s*(assessment|impression|diagnosis)\s*:?\s*$`)},
	{"medications", regexp.MustCompile(`(?im)^\s*(medications?|current\s+medications?|prescriptions?|meds)\s*:?\s*$`)},
	{"recommendations", regexp.MustCompile(`(?im)^\s*(recommendations?|plan|treatment\s+plan)\s*:?\s*$`)},
}

// splitSections carves the document along recognized headings for the given
// doc type. Content before the first heading, or documents with no headings
// at all, land in a generic "content" section.
func splitSections(content, docType string) []section {
	var patterns []sectionPattern
	switch docType {
	case "lab_report":
		patterns = labReportPatterns
	case "medical_history":
		patterns = medicalHistoryPatterns
	default:
		return []section{{Name: "content", Content: content, Start: 0}}
	}

	type marker struct {
		name  string
		start int
		end   int
	}
	var markers []marker
	for _, sp := range patterns {
		for _, loc := range sp.pattern.FindAllStringIndex(content, -1) {
			markers = append(markers, marker{name: sp.name, start: loc[0], end: loc[1]})
		}
	}
	if len(markers) == 0 {
		return []section{{Name: "content", Content: content, Start: 0}}
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].start < markers[j].start })

	var sections []section
	if markers[0].start > 0 {
		sections = append(sections, section{Name: "content", Content: content[:markers[0].start], Start: 0})
	}
	for i, m := range markers {
		// the heading itself belongs to the section so chunks cover the
		// full document text
		bodyEnd := len(content)
		if i+1 < len(markers) {
			bodyEnd = markers[i+1].start
		}
		sections = append(sections, section{Name: m.name, Content: content[m.start:bodyEnd], Start: m.start})
	}
	return sections
}
