package document

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tgakit/ratreview/config"
	"github.com/tgakit/ratreview/decode"
	"github.com/tgakit/ratreview/logger"
	"github.com/tgakit/ratreview/review"
	"github.com/tgakit/ratreview/table"
)

// dateLayout parses the textual day-month-year date of the results line.
const dateLayout = "2 January 2006"

var (
	resultsDatePattern = regexp.MustCompile(`^Results\s+as\s+at\s+(\d+\s+\S+\s+\d+).*http.*$`)
	pageFooterPattern  = regexp.MustCompile(`^Page\s+\d+\s+of\s+\d+$`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
)

// Reader reconstructs a review document from its per-page text lines. A
// Reader is reusable and safe for concurrent reads: all per-document state
// (header geometry, legend and date latches, assembler state) is owned by a
// single Read invocation.
type Reader struct {
	cfg    *config.Config
	layout table.Layout
	log    logger.Logger
}

// New creates a Reader with the given configuration, or the default TGA
// review configuration when cfg is nil.
func New(cfg *config.Config) (*Reader, error) {
	if cfg == nil {
		cfg = config.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	layout := layoutFromConfig(cfg)
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return &Reader{cfg: cfg, layout: layout, log: logger.Noop()}, nil
}

// WithLogger sets the logger for the reader.
func (r *Reader) WithLogger(log logger.Logger) *Reader {
	r.log = log
	return r
}

// ReadText reconstructs a document from decoded text containing form-feed
// page markers.
func (r *Reader) ReadText(text string) (*review.Table, error) {
	return r.Read(decode.Pages(text))
}

// Read reconstructs a document from its pages, each a sequence of decoded
// text lines. Per page it discards blank and boilerplate lines, captures
// the results date and legend lines (first occurrence wins), feeds lines to
// a fresh header detector until the page's header block is complete, then
// slices every further line into a row. The full row stream is folded into
// entries at the end.
func (r *Reader) Read(pages [][]string) (*review.Table, error) {
	legend := review.NewLegend(r.legendSentences())
	var date time.Time
	var rows []table.Row

	for pageIndex, lines := range pages {
		pageNum := pageIndex + 1
		detector := table.NewDetector(r.layout)
		var slicer *table.Slicer

		for _, line := range lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}

			if m := resultsDatePattern.FindStringSubmatch(trimmed); m != nil {
				if date.IsZero() {
					parsed, err := time.Parse(dateLayout, whitespaceRun.ReplaceAllString(m[1], " "))
					if err != nil {
						return nil, fmt.Errorf("page %d: failed to parse results date %q: %w", pageNum, m[1], err)
					}
					date = parsed
					r.log.Debug("results date captured", "page", pageNum, "date", date.Format(time.DateOnly))
				}
				continue
			}

			if pageFooterPattern.MatchString(trimmed) {
				continue
			}

			if key, ok := legend.Match(line); ok {
				legend.Record(key, line)
				r.log.Debug("legend line seen", "page", pageNum, "key", string(key), "mark", legend.Mark(key))
				continue
			}

			if detector.AddHeaderLine(line) {
				continue
			}
			if !detector.Complete() {
				continue
			}

			if slicer == nil {
				geometry, err := detector.Geometry()
				if err != nil {
					return nil, fmt.Errorf("page %d: %w", pageNum, err)
				}
				slicer = table.NewSlicer(geometry, r.cfg.GetSeparator())
				r.log.Debug("header block complete", "page", pageNum, "columns", len(geometry))
			}

			values, err := slicer.Slice(line)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", pageNum, err)
			}
			rows = append(rows, table.Row{Page: pageNum, Values: values})
		}
	}
	r.log.Debug("document sliced", "pages", len(pages), "rows", len(rows))

	assembler := review.NewAssembler(legend, r.layout.ColumnNames())
	entries, err := assembler.Assemble(rows)
	if err != nil {
		return nil, err
	}
	return &review.Table{Date: date, Entries: entries}, nil
}

// legendSentences maps the configured legend sentences to their keys.
func (r *Reader) legendSentences() map[review.LegendKey]string {
	return map[review.LegendKey]string{
		review.LegendCompliant:        r.cfg.Legend.Compliant,
		review.LegendNoncompliant:     r.cfg.Legend.Noncompliant,
		review.LegendMultipleProducts: r.cfg.Legend.MultipleProducts,
		review.LegendProteinStudies:   r.cfg.Legend.ProteinStudies,
	}
}

// layoutFromConfig converts the configured columns into a table layout.
func layoutFromConfig(cfg *config.Config) table.Layout {
	columns := make([]table.Column, len(cfg.Columns))
	for i, col := range cfg.Columns {
		align := table.AlignLeft
		if col.Align == config.AlignCentered {
			align = table.AlignCentered
		}
		columns[i] = table.Column{
			Name:        col.Name,
			Labels:      col.Labels,
			Align:       align,
			StartAdjust: col.StartAdjust,
		}
	}
	return table.Layout{Columns: columns, Separator: cfg.GetSeparator()}
}
