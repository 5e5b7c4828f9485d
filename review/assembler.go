package review

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tgakit/ratreview/table"
)

// Well-known column names of the review table layout. Any other column in a
// sliced row is treated as a per-variant analytical sensitivity column.
const (
	ColumnARTG         = "artg"
	ColumnSponsor      = "sponsor"
	ColumnManufacturer = "manufacturer"
	ColumnName         = "name"
	ColumnBatch        = "batch"
	ColumnEvidence     = "provided"
)

// AmbiguousBatchOrderError reports an entry whose historical batches mix
// fully-compliant and not-fully-compliant results before the latest batch.
// The assembler assumes compliance changes at most once across a product's
// chronological batches; a mixed pattern is surfaced rather than guessed at.
type AmbiguousBatchOrderError struct {
	ARTG    string
	Batches int
}

func (e *AmbiguousBatchOrderError) Error() string {
	return fmt.Sprintf("entry %q: mixed compliance across %d historical batches", e.ARTG, e.Batches)
}

// Assembler folds the ordered stream of sliced rows into review entries,
// using the captured indicator legend to interpret compliance marks. An
// Assembler holds no cross-document state; create one per document build.
type Assembler struct {
	legend   *Legend
	variants []string
}

// NewAssembler creates an assembler for rows sliced with the given column
// order. Columns other than the well-known ones are taken, in order, as the
// variant columns of each batch.
func NewAssembler(legend *Legend, columns []string) *Assembler {
	known := map[string]bool{
		ColumnARTG:         true,
		ColumnSponsor:      true,
		ColumnManufacturer: true,
		ColumnName:         true,
		ColumnBatch:        true,
		ColumnEvidence:     true,
	}
	var variants []string
	for _, name := range columns {
		if !known[name] {
			variants = append(variants, name)
		}
	}
	return &Assembler{legend: legend, variants: variants}
}

// accumulator is the in-progress state of one entry.
type accumulator struct {
	started      bool
	artg         string
	comment      string
	sponsor      string
	manufacturer string
	names        []string
	batches      []*batchValues
	evidence     []string
}

// batchValues collects the raw text of one batch slot.
type batchValues struct {
	batch  string
	fields map[string]string
}

// Assemble folds rows into the ordered entry list. A row whose identifier
// cell holds a new numeric ARTG closes the open entry and starts a fresh
// one; non-numeric identifier text is kept as entry commentary instead.
// Product name, batch and evidence slots advance on their own per-row
// conditions, so a single line can continue several logical constructs at
// once. The final in-progress entry is closed at end of stream.
func (a *Assembler) Assemble(rows []table.Row) ([]Entry, error) {
	if len(rows) > 0 {
		for _, key := range []LegendKey{LegendCompliant, LegendNoncompliant, LegendMultipleProducts} {
			if a.legend.Mark(key) == "" {
				return nil, &table.FormatError{Reason: fmt.Sprintf("legend line for %q was not captured", key)}
			}
		}
	}
	marker := a.legend.Mark(LegendMultipleProducts)

	entries := []Entry{}
	state := &accumulator{}

	for _, row := range rows {
		artg := normalize(row.Values[ColumnARTG])
		comment := ""
		if artg != "" && !allDigits(artg) {
			comment, artg = artg, ""
		}

		if artg != "" && state.started {
			entry, err := a.buildEntry(state)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
			state = &accumulator{}
		}

		name := normalize(row.Values[ColumnName])
		newName := name != "" && marker != "" && strings.HasPrefix(name, marker)
		if name == "" || len(state.names) == 0 || newName {
			state.names = append(state.names, "")
		}

		batch := normalize(row.Values[ColumnBatch])
		variantValues := make([]string, len(a.variants))
		anyVariant := false
		for i, variant := range a.variants {
			variantValues[i] = normalize(row.Values[variant])
			if variantValues[i] != "" {
				anyVariant = true
			}
		}
		if batch != "" {
			state.batches = append(state.batches, &batchValues{fields: make(map[string]string)})
		} else if anyVariant && len(state.batches) == 0 {
			// Variant results without a batch number on the very first row of
			// an entry still need a slot to land in.
			state.batches = append(state.batches, &batchValues{fields: make(map[string]string)})
		}

		provided := normalize(row.Values[ColumnEvidence])
		if provided == "" || len(state.evidence) == 0 || strings.Contains(provided, ":") {
			state.evidence = append(state.evidence, "")
		}

		appendField(&state.artg, artg)
		appendField(&state.comment, comment)
		appendField(&state.sponsor, normalize(row.Values[ColumnSponsor]))
		appendField(&state.manufacturer, normalize(row.Values[ColumnManufacturer]))
		appendField(&state.names[len(state.names)-1], name)
		if len(state.batches) > 0 {
			current := state.batches[len(state.batches)-1]
			appendField(&current.batch, batch)
			for i, variant := range a.variants {
				value := current.fields[variant]
				appendField(&value, variantValues[i])
				current.fields[variant] = value
			}
		}
		appendField(&state.evidence[len(state.evidence)-1], provided)

		state.started = true
	}

	if state.started {
		entry, err := a.buildEntry(state)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// buildEntry finalizes one closed entry from its accumulator.
func (a *Assembler) buildEntry(state *accumulator) (Entry, error) {
	evidence, err := a.buildEvidence(state)
	if err != nil {
		return Entry{}, err
	}

	batches := make([]Batch, 0, len(state.batches))
	for _, values := range state.batches {
		sensitivities := make([]AnalyticalSensitivity, 0, len(a.variants))
		for _, variant := range a.variants {
			value := values.fields[variant]
			if value == "" {
				continue
			}
			sensitivities = append(sensitivities, a.sensitivity(variant, value))
		}
		batches = append(batches, Batch{Batch: values.batch, Sensitivities: sensitivities})
	}
	if len(batches) > 1 {
		first := batches[0].AllCompliant()
		for _, b := range batches[1 : len(batches)-1] {
			if b.AllCompliant() != first {
				return Entry{}, &AmbiguousBatchOrderError{ARTG: state.artg, Batches: len(batches)}
			}
		}
	}

	names := make([]string, 0, len(state.names))
	for _, name := range state.names {
		if name != "" {
			names = append(names, name)
		}
	}

	return Entry{
		ARTG:         state.artg,
		Comment:      state.comment,
		Sponsor:      state.sponsor,
		Manufacturer: state.manufacturer,
		ProductNames: names,
		Batches:      batches,
		Evidence:     evidence,
	}, nil
}

// buildEvidence parses the entry's evidence slots. A slot with exactly one
// colon starts a new "group: values" statement; a slot with no colon reuses
// the last-seen group label; more than one colon is a format violation.
func (a *Assembler) buildEvidence(state *accumulator) ([]ManufacturerEvidence, error) {
	evidence := []ManufacturerEvidence{}
	group := ""
	for _, slot := range state.evidence {
		if slot == "" {
			continue
		}
		values := slot
		switch strings.Count(slot, ":") {
		case 0:
		case 1:
			parts := strings.SplitN(slot, ":", 2)
			group = strings.TrimSpace(parts[0])
			values = parts[1]
		default:
			return nil, &table.FormatError{
				Column: ColumnEvidence,
				Reason: fmt.Sprintf("evidence statement %q has more than one group label", slot),
			}
		}
		for _, value := range strings.Split(values, ",") {
			name := strings.TrimSpace(value)
			if name == "" {
				continue
			}
			evidence = append(evidence, ManufacturerEvidence{Group: group, Name: name})
		}
	}
	return evidence, nil
}

// sensitivity interprets one variant cell against the captured legend.
// Cells matching the compliant or non-compliant legend, by mark or by full
// line text, reduce to a boolean; the tokens yes/no do the same; any other
// text means non-compliant with the text kept as comment.
func (a *Assembler) sensitivity(name, value string) AnalyticalSensitivity {
	switch value {
	case a.legend.Mark(LegendCompliant), a.legend.Line(LegendCompliant), "yes":
		return AnalyticalSensitivity{Name: name, Compliant: true}
	case a.legend.Mark(LegendNoncompliant), a.legend.Line(LegendNoncompliant), "no":
		return AnalyticalSensitivity{Name: name, Compliant: false}
	}
	return AnalyticalSensitivity{Name: name, Compliant: false, Comment: value}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// normalize collapses internal whitespace runs to single spaces and trims.
func normalize(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// appendField space-joins a non-empty value onto an accumulating field.
func appendField(field *string, value string) {
	if value == "" {
		return
	}
	if *field == "" {
		*field = value
		return
	}
	*field += " " + value
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
