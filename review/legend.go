package review

import "strings"

// LegendKey identifies one of the known indicator legend lines.
type LegendKey string

const (
	// LegendCompliant defines the mark meaning compliant with the WHO guidelines.
	LegendCompliant LegendKey = "compliant"
	// LegendNoncompliant defines the mark meaning non-compliant.
	LegendNoncompliant LegendKey = "noncompliant"
	// LegendMultipleProducts defines the mark prefixed to additional product
	// names sharing one ARTG number.
	LegendMultipleProducts LegendKey = "multiple-products"
	// LegendProteinStudies defines the mark for variants tested only with
	// recombinant protein studies.
	LegendProteinStudies LegendKey = "protein-studies"
)

// legendText holds what was captured for one legend key.
type legendText struct {
	line string
	mark string
}

// Legend captures the document's indicator legend: for each known key, the
// literal line that defines it and the line's leading mark character. The
// first occurrence of each key wins; later duplicates are ignored. A Legend
// is owned by a single document build and never shared across documents.
type Legend struct {
	sentences map[LegendKey]string
	captured  map[LegendKey]legendText
}

// NewLegend creates a legend that recognizes the given sentence fragments
// by substring containment.
func NewLegend(sentences map[LegendKey]string) *Legend {
	copied := make(map[LegendKey]string, len(sentences))
	for key, sentence := range sentences {
		copied[key] = sentence
	}
	return &Legend{
		sentences: copied,
		captured:  make(map[LegendKey]legendText),
	}
}

// Match reports which legend key the line defines, if any.
func (l *Legend) Match(line string) (LegendKey, bool) {
	for _, key := range []LegendKey{LegendCompliant, LegendNoncompliant, LegendMultipleProducts, LegendProteinStudies} {
		sentence := l.sentences[key]
		if sentence != "" && strings.Contains(line, sentence) {
			return key, true
		}
	}
	return "", false
}

// Record captures the legend line for key unless the key was already
// captured. The line's first rune becomes the key's mark.
func (l *Legend) Record(key LegendKey, line string) {
	if _, ok := l.captured[key]; ok {
		return
	}
	mark := ""
	if runes := []rune(line); len(runes) > 0 {
		mark = string(runes[0])
	}
	l.captured[key] = legendText{line: line, mark: mark}
}

// Mark returns the captured leading mark for key, or "" when the key's
// legend line has not been seen.
func (l *Legend) Mark(key LegendKey) string {
	return l.captured[key].mark
}

// Line returns the captured full legend line for key, or "".
func (l *Legend) Line(key LegendKey) string {
	return l.captured[key].line
}
