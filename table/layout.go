package table

import "fmt"

// Alignment describes how values are positioned within a column.
type Alignment int

const (
	// AlignLeft columns start at a fixed offset and may overflow to the right.
	AlignLeft Alignment = iota
	// AlignCentered columns float within the span of their header labels.
	AlignCentered
)

// String returns the configuration name of the alignment.
func (a Alignment) String() string {
	if a == AlignCentered {
		return "centered"
	}
	return "left"
}

// Column describes one expected column of the fixed-width table.
type Column struct {
	// Name uniquely identifies the column in sliced rows.
	Name string

	// Labels holds the header label fragment for each header line, top to
	// bottom. An empty string means the column has no label on that line.
	Labels []string

	// Align is the value alignment within the column.
	Align Alignment

	// StartAdjust shifts the slicing start offset by a fixed amount. Used to
	// compensate for columns whose rendered width in the source text is
	// narrower than their values.
	StartAdjust int
}

// labelAt returns the column's label fragment on the given header line,
// or "" when the column has no label there.
func (c Column) labelAt(line int) string {
	if line < len(c.Labels) {
		return c.Labels[line]
	}
	return ""
}

// Layout is the static description of the expected table header: the ordered
// column set and the separator rendered between adjacent columns. A Layout is
// immutable once built.
type Layout struct {
	Columns   []Column
	Separator string
}

// HeaderLines returns the number of text lines the header spans.
func (l Layout) HeaderLines() int {
	lines := 0
	for _, c := range l.Columns {
		if len(c.Labels) > lines {
			lines = len(c.Labels)
		}
	}
	return lines
}

// ColumnNames returns the column names in table order.
func (l Layout) ColumnNames() []string {
	names := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		names[i] = c.Name
	}
	return names
}

// Validate checks the layout is usable for detection and slicing.
func (l Layout) Validate() error {
	if len(l.Columns) == 0 {
		return fmt.Errorf("layout has no columns")
	}
	if l.Separator == "" {
		return fmt.Errorf("layout separator cannot be empty")
	}
	seen := make(map[string]bool, len(l.Columns))
	for i, c := range l.Columns {
		if c.Name == "" {
			return fmt.Errorf("columns[%d]: name cannot be empty", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("columns[%d]: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true
		labeled := false
		for _, label := range c.Labels {
			if label != "" {
				labeled = true
				break
			}
		}
		if !labeled {
			return fmt.Errorf("columns[%d] (%s): at least one label fragment is required", i, c.Name)
		}
	}
	return nil
}
