package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// Formatter formats run reports for output.
type Formatter interface {
	Format(w io.Writer, r *Report) error
}

// TextFormatter writes one issue per line in grep-friendly form:
//
//	latest/quick-start.md:42: DanglingReference: target document "delta-batch.md" not found
type TextFormatter struct{}

// NewTextFormatter creates a text formatter.
func NewTextFormatter() *TextFormatter { return &TextFormatter{} }

// Format outputs every issue on its own line.
func (f *TextFormatter) Format(w io.Writer, r *Report) error {
	for _, issue := range r.Issues {
		if _, err := fmt.Fprintf(w, "%s:%d: %s: %s\n", issue.Doc, issue.Line, issue.Kind, issue.Message); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter writes the report as an indented JSON object.
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter.
func NewJSONFormatter() *JSONFormatter { return &JSONFormatter{} }

// JSONOutput represents the JSON output structure.
type JSONOutput struct {
	RunID        string  `json:"run_id,omitempty"`
	DocsTotal    int     `json:"docs_total"`
	ErrorCount   int     `json:"error_count"`
	WarningCount int     `json:"warning_count"`
	Issues       []Issue `json:"issues"`
}

// Format outputs the report in JSON format.
func (f *JSONFormatter) Format(w io.Writer, r *Report) error {
	out := JSONOutput{
		RunID:        r.RunID,
		DocsTotal:    r.DocsTotal,
		ErrorCount:   r.ErrorCount(),
		WarningCount: r.WarningCount(),
		Issues:       r.Issues,
	}
	if out.Issues == nil {
		out.Issues = []Issue{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	default:
		return NewTextFormatter()
	}
}
