package table

import "fmt"

// GeometryError reports header detection that produced an unusable column
// range. It is fatal for the whole document: a malformed header means the
// source layout changed and extracted data cannot be trusted.
type GeometryError struct {
	Column string
	Start  int
	End    int
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("column %q geometry [%d:%d): %s", e.Column, e.Start, e.End, e.Reason)
}

// FormatError reports source text that violates the expected table format,
// such as a data row breaking a column alignment invariant. Fatal for the
// whole document.
type FormatError struct {
	Column string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Column == "" {
		return e.Reason
	}
	return fmt.Sprintf("column %q: %s", e.Column, e.Reason)
}
