package table

// Range is the concrete character range of one column on a page, derived
// from where the column's header label fragments were found. Offsets are
// rune offsets within a line; End < 0 means the column extends to the end
// of the line.
type Range struct {
	Name        string
	Start       int
	End         int
	Align       Alignment
	StartAdjust int
}

// Geometry is the full per-page column geometry, in table order. It is
// derived once per page, after header detection completes, and frozen
// before any row is sliced.
type Geometry []Range

// fragmentMatch records where one header label fragment was found.
type fragmentMatch struct {
	column int
	start  int
	end    int
}

// Detector matches page text lines against the multi-line header template
// and accumulates the offsets needed to compute column geometry. Each page
// repeats its own header block, so a fresh Detector is used per page.
type Detector struct {
	layout  Layout
	lines   int
	matched map[int][]fragmentMatch
}

// NewDetector creates a detector for the given layout.
func NewDetector(layout Layout) *Detector {
	return &Detector{
		layout:  layout,
		lines:   layout.HeaderLines(),
		matched: make(map[int][]fragmentMatch),
	}
}

// AddHeaderLine attempts to match line against the header template. The
// candidate templates are tried top to bottom; a template matches when the
// line contains every non-empty fragment in column order, each search
// starting where the previous match ended, so repeated words in different
// columns resolve to distinct occurrences. Returns true when the line was
// consumed as a header line. Once detection is complete this is a no-op
// returning false.
func (d *Detector) AddHeaderLine(line string) bool {
	if d.Complete() {
		return false
	}
	runes := []rune(line)
	for rank := 0; rank < d.lines; rank++ {
		matches, ok := d.matchTemplate(rank, runes)
		if ok && len(matches) > 0 {
			d.matched[rank] = matches
			return true
		}
	}
	return false
}

// Complete reports whether every header line has been matched.
func (d *Detector) Complete() bool {
	return len(d.matched) == d.lines
}

// matchTemplate matches the line against the fragment set of one header
// line rank. It fails as soon as a non-empty fragment is missing from the
// remaining line suffix.
func (d *Detector) matchTemplate(rank int, runes []rune) ([]fragmentMatch, bool) {
	var matches []fragmentMatch
	cursor := 0
	for col, c := range d.layout.Columns {
		fragment := c.labelAt(rank)
		if fragment == "" {
			continue
		}
		start := indexFrom(runes, []rune(fragment), cursor)
		if start < 0 {
			return nil, false
		}
		end := start + len([]rune(fragment))
		matches = append(matches, fragmentMatch{column: col, start: start, end: end})
		cursor = end
	}
	return matches, true
}

// Geometry computes the final per-column ranges from the accumulated
// fragment matches. Each column's span is the union of its matched
// fragments; a column's end is then widened to the next column's start
// minus the separator width when the next column is left-aligned, the
// first column's start is forced to 0 and the last column is open-ended.
func (d *Detector) Geometry() (Geometry, error) {
	if !d.Complete() {
		return nil, &GeometryError{Reason: "header detection is not complete"}
	}

	type span struct {
		start, end int
		seen       bool
	}
	spans := make([]span, len(d.layout.Columns))
	for _, matches := range d.matched {
		for _, m := range matches {
			s := &spans[m.column]
			if !s.seen || m.start < s.start {
				s.start = m.start
			}
			if !s.seen || m.end > s.end {
				s.end = m.end
			}
			s.seen = true
		}
	}
	for i, s := range spans {
		if !s.seen {
			return nil, &GeometryError{Column: d.layout.Columns[i].Name, Reason: "no header fragment matched"}
		}
	}

	sepLen := len([]rune(d.layout.Separator))
	geometry := make(Geometry, len(d.layout.Columns))
	for i, c := range d.layout.Columns {
		start, end := spans[i].start, spans[i].end
		switch {
		case i == len(d.layout.Columns)-1:
			end = -1
		case d.layout.Columns[i+1].Align == AlignLeft:
			end = spans[i+1].start - sepLen
		}
		if i == 0 {
			start = 0
		}
		if start < 0 || (end >= 0 && start >= end) {
			return nil, &GeometryError{Column: c.Name, Start: start, End: end, Reason: "invalid range"}
		}
		geometry[i] = Range{
			Name:        c.Name,
			Start:       start,
			End:         end,
			Align:       c.Align,
			StartAdjust: c.StartAdjust,
		}
	}
	return geometry, nil
}

// indexFrom returns the rune offset of the first occurrence of fragment in
// runes at or after from, or -1.
func indexFrom(runes, fragment []rune, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(fragment) <= len(runes); i++ {
		found := true
		for j := range fragment {
			if runes[i+j] != fragment[j] {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}
	return -1
}
