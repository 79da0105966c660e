package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/piwi3910/PhotoBOM/internal/model"
)

// Format is an export file type.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatPDF    Format = "pdf"
	FormatLabels Format = "labels"
)

// ParseFormats parses names such as "csv,xlsx" into formats, dropping
// blanks and duplicates.
func ParseFormats(names []string) ([]Format, error) {
	seen := map[Format]bool{}
	var out []Format
	for _, raw := range names {
		for _, part := range strings.Split(raw, ",") {
			name := Format(strings.ToLower(strings.TrimSpace(part)))
			if name == "" || seen[name] {
				continue
			}
			switch name {
			case FormatCSV, FormatXLSX, FormatPDF, FormatLabels:
			default:
				return nil, fmt.Errorf("unknown export format %q (want csv, xlsx, pdf or labels)", name)
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

// Exporter writes a run's results under Dir with a timestamped base name.
type Exporter struct {
	Dir  string
	Base string
	Now  func() time.Time
}

// BaseName returns the timestamped base name for this run.
func (e Exporter) BaseName() string {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return TimestampName(e.Base, now())
}

// assemblyFile names the per-assembly CSV/XLSX file. A single assembly uses
// the bare base name.
func assemblyFile(base string, idx, total int, r model.AssemblyResult, ext string) string {
	if total == 1 {
		return base + ext
	}
	return fmt.Sprintf("%s_%02d_%s%s", base, idx+1, r.Template, ext)
}

// Export writes every requested format and returns the paths written.
// summary is nil when the validation gate withheld it.
func (e Exporter) Export(formats []Format, results []model.AssemblyResult, summary *model.Summary, violations []string) ([]string, error) {
	if len(formats) == 0 || len(results) == 0 {
		return nil, nil
	}
	base := e.BaseName()
	var written []string

	for _, f := range formats {
		switch f {
		case FormatCSV, FormatXLSX:
			for i, r := range results {
				p := filepath.Join(e.Dir, assemblyFile(base, i, len(results), r, "."+string(f)))
				var err error
				if f == FormatCSV {
					err = ExportCSV(p, r.Items)
				} else {
					err = ExportXLSX(p, r.Items)
				}
				if err != nil {
					return written, fmt.Errorf("failed to export %s: %w", r.Name, err)
				}
				written = append(written, p)
			}
		case FormatPDF:
			p := filepath.Join(e.Dir, base+".pdf")
			if err := mkdirFor(p); err != nil {
				return written, err
			}
			if err := ExportPDF(p, results, summary, violations); err != nil {
				return written, fmt.Errorf("failed to export PDF: %w", err)
			}
			written = append(written, p)
		case FormatLabels:
			p := filepath.Join(e.Dir, base+"_labels.pdf")
			if err := mkdirFor(p); err != nil {
				return written, err
			}
			if err := ExportLabels(p, results); err != nil {
				return written, fmt.Errorf("failed to export labels: %w", err)
			}
			written = append(written, p)
		}
	}
	return written, nil
}
