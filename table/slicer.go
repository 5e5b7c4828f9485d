package table

import (
	"strings"
	"unicode"
)

// Row is one sliced data line: column name to raw value, tagged with the
// 1-based page number it came from.
type Row struct {
	Page   int
	Values map[string]string
}

// Slicer cuts data lines into per-column raw values using a frozen page
// geometry.
type Slicer struct {
	geometry Geometry
	sep      []rune
}

// NewSlicer creates a slicer for the given geometry and column separator.
func NewSlicer(geometry Geometry, separator string) *Slicer {
	return &Slicer{geometry: geometry, sep: []rune(separator)}
}

// Slice extracts the raw value of every column from line. For left-aligned
// columns after the first it verifies the separator-width slice before the
// column is blank, guarding against geometry drift. Values that run past
// the nominal column width without a trailing space absorb further
// separator-width chunks to the right while those chunks are non-blank.
// The last column always takes the remainder of the line. The returned
// mapping is complete; on any violation a FormatError is returned instead.
func (s *Slicer) Slice(line string) (map[string]string, error) {
	runes := []rune(line)
	sepLen := len(s.sep)
	values := make(map[string]string, len(s.geometry))

	for i, col := range s.geometry {
		if col.Align == AlignLeft && i > 0 {
			before := sliceRunes(runes, col.Start-sepLen, col.Start)
			if strings.TrimSpace(before) != "" && before != string(s.sep) {
				return nil, &FormatError{Column: col.Name, Reason: "text crosses the column boundary"}
			}
		}

		if i == len(s.geometry)-1 {
			values[col.Name] = sliceRunes(runes, col.Start, len(runes))
			continue
		}

		value := sliceRunes(runes, col.Start+col.StartAdjust, col.End)
		if value != "" && !endsInSpace(value) {
			for chunk := 0; ; chunk++ {
				extra := sliceRunes(runes, col.End+sepLen*chunk, col.End+sepLen*(chunk+1))
				if strings.TrimSpace(extra) == "" {
					break
				}
				value += extra
			}
		}
		values[col.Name] = value
	}
	return values, nil
}

// sliceRunes returns runes[start:end] clamped to the slice bounds.
func sliceRunes(runes []rune, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

func endsInSpace(value string) bool {
	runes := []rune(value)
	return unicode.IsSpace(runes[len(runes)-1])
}
