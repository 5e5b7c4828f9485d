package review

import "time"

// ManufacturerEvidence is one evidence statement a manufacturer submitted,
// classified under a group label.
type ManufacturerEvidence struct {
	Group string `json:"group"`
	Name  string `json:"name"`
}

// AnalyticalSensitivity is one named compliance result for a batch, such as
// a viral variant test. Comment carries the cell text when compliance could
// not be reduced to yes/no.
type AnalyticalSensitivity struct {
	Name      string `json:"name"`
	Compliant bool   `json:"compliant"`
	Comment   string `json:"comment,omitempty"`
}

// Batch is one manufacturing lot with its per-variant test results.
type Batch struct {
	Batch         string                  `json:"batch"`
	Sensitivities []AnalyticalSensitivity `json:"analytical_sensitivities"`
}

// AllCompliant reports whether every sensitivity in the batch is compliant.
func (b Batch) AllCompliant() bool {
	for _, s := range b.Sensitivities {
		if !s.Compliant {
			return false
		}
	}
	return true
}

// Entry is one approved product in the review table. ARTG is empty when the
// identifier cell held non-numeric commentary; that text is kept in Comment.
type Entry struct {
	ARTG         string                 `json:"artg,omitempty"`
	Comment      string                 `json:"comment,omitempty"`
	Sponsor      string                 `json:"sponsor"`
	Manufacturer string                 `json:"manufacturer"`
	ProductNames []string               `json:"product_names"`
	Batches      []Batch                `json:"batches"`
	Evidence     []ManufacturerEvidence `json:"manufacturer_evidence"`
}

// Table is the reconstructed review document: the "results as at" date and
// the ordered product entries.
type Table struct {
	Date    time.Time `json:"date"`
	Entries []Entry   `json:"entries"`
}
