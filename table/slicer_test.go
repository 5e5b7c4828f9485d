package table

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGeometry mirrors the geometry detected from the test layout header.
func testGeometry() Geometry {
	return Geometry{
		{Name: "id", Start: 0, End: 4, Align: AlignLeft},
		{Name: "name", Start: 6, End: 13, Align: AlignLeft},
		{Name: "status", Start: 19, End: 28, Align: AlignCentered},
		{Name: "notes", Start: 30, End: -1, Align: AlignLeft},
	}
}

// cell places text at a rune offset when building fixture lines.
type cell struct {
	at   int
	text string
}

// buildLine renders cells into a single fixed-width line.
func buildLine(cells ...cell) string {
	var b strings.Builder
	for _, c := range cells {
		for b.Len() < c.at {
			b.WriteByte(' ')
		}
		b.WriteString(c.text)
	}
	return b.String()
}

// TestSlicerBasicRow verifies each column value is cut at its range.
func TestSlicerBasicRow(t *testing.T) {
	s := NewSlicer(testGeometry(), "  ")
	line := buildLine(cell{0, "1001"}, cell{6, "Widget"}, cell{19, "approved"}, cell{30, "All good"})

	values, err := s.Slice(line)
	require.NoError(t, err)
	assert.Equal(t, "1001", values["id"])
	assert.Equal(t, "Widget ", values["name"])
	assert.Equal(t, "approved ", values["status"])
	assert.Equal(t, "All good", values["notes"])
}

// TestSlicerAlignmentGuard verifies text crossing into a left-aligned
// column's separator is a format violation.
func TestSlicerAlignmentGuard(t *testing.T) {
	s := NewSlicer(testGeometry(), "  ")
	// The id value runs through the separator before the name column.
	line := buildLine(cell{0, "100155"}, cell{6, "Widget"})

	_, err := s.Slice(line)
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, "name", formatErr.Column)
}

// TestSlicerAbsorbsOverflow verifies a value wider than its nominal column
// keeps absorbing separator-width chunks while they are non-blank.
func TestSlicerAbsorbsOverflow(t *testing.T) {
	s := NewSlicer(testGeometry(), "  ")
	line := buildLine(cell{0, "1001"}, cell{6, "Widgetized"}, cell{19, "approved"})

	values, err := s.Slice(line)
	require.NoError(t, err)
	assert.Equal(t, "Widgetized ", values["name"])
	assert.Equal(t, "approved", values["status"])
}

// TestSlicerAbsorptionStopsAtBlankChunk verifies absorption never reaches a
// later column separated by a blank chunk.
func TestSlicerAbsorptionStopsAtBlankChunk(t *testing.T) {
	s := NewSlicer(testGeometry(), "  ")
	// name occupies [6,17): the nominal slice ends at 13, absorption eats
	// the two chunks up to 17 and the blank chunk [17,19) stops it before
	// the status column.
	line := buildLine(cell{0, "1001"}, cell{6, "Widgetizers"}, cell{19, "approved"})

	values, err := s.Slice(line)
	require.NoError(t, err)
	assert.Equal(t, "Widgetizers", values["name"])
	assert.Equal(t, "approved", values["status"])
}

// TestSlicerStartAdjust verifies a negative start adjustment widens the
// extracted slice to the left.
func TestSlicerStartAdjust(t *testing.T) {
	geometry := testGeometry()
	geometry[2].StartAdjust = -3
	s := NewSlicer(geometry, "  ")
	line := buildLine(cell{0, "1001"}, cell{17, "compliant"})

	values, err := s.Slice(line)
	require.NoError(t, err)
	assert.Equal(t, " compliant", values["status"])
}

// TestSlicerLastColumnTakesRemainder verifies the final column ignores its
// computed end offset.
func TestSlicerLastColumnTakesRemainder(t *testing.T) {
	s := NewSlicer(testGeometry(), "  ")
	long := "Includes several notes, commas, and more text than the column is wide"
	line := buildLine(cell{0, "1001"}, cell{30, long})

	values, err := s.Slice(line)
	require.NoError(t, err)
	assert.Equal(t, long, values["notes"])
}

// TestSlicerShortLine verifies lines shorter than the geometry slice to
// empty values without error.
func TestSlicerShortLine(t *testing.T) {
	s := NewSlicer(testGeometry(), "  ")
	values, err := s.Slice("1001")
	require.NoError(t, err)
	assert.Equal(t, "1001", values["id"])
	assert.Equal(t, "", values["name"])
	assert.Equal(t, "", values["status"])
	assert.Equal(t, "", values["notes"])
}

// TestSlicerRoundTrip verifies re-joining the sliced values in column order
// reproduces the line's meaningful content.
func TestSlicerRoundTrip(t *testing.T) {
	geometry := testGeometry()
	s := NewSlicer(geometry, "  ")
	line := buildLine(cell{0, "1001"}, cell{6, "Widget"}, cell{19, "approved"}, cell{30, "All good"})

	values, err := s.Slice(line)
	require.NoError(t, err)

	parts := make([]string, 0, len(geometry))
	for _, col := range geometry {
		if v := strings.TrimSpace(values[col.Name]); v != "" {
			parts = append(parts, v)
		}
	}
	collapsed := regexp.MustCompile(`\s+`).ReplaceAllString(strings.TrimSpace(line), " ")
	assert.Equal(t, collapsed, strings.Join(parts, " "))
}
