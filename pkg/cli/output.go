package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is an aligned table (default).
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON.
	FormatJSON OutputFormat = "json"
	// FormatCSV is CSV with a header row.
	FormatCSV OutputFormat = "csv"
)

// ParseOutputFormat validates a --format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or csv)", s)
	}
}

// Table is tabular command output.
type Table interface {
	Header() []string
	Rows() [][]string
}

// Formatter writes command output.
type Formatter interface {
	FormatTo(w io.Writer, data Table) error
}

// TextFormatter writes an aligned table.
type TextFormatter struct{}

// FormatTo writes data as tab-aligned columns.
func (f *TextFormatter) FormatTo(w io.Writer, data Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(data.Header(), "\t")); err != nil {
		return err
	}
	for _, row := range data.Rows() {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// JSONFormatter writes the underlying value as JSON rather than its rows.
type JSONFormatter struct {
	Indent bool
}

// FormatTo encodes data. Tables that also implement json.Marshaler, or
// whose fields carry JSON tags, control their own shape.
func (f *JSONFormatter) FormatTo(w io.Writer, data Table) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// CSVFormatter writes a header row followed by data rows.
type CSVFormatter struct{}

// FormatTo writes data as CSV.
func (f *CSVFormatter) FormatTo(w io.Writer, data Table) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(data.Header()); err != nil {
		return err
	}
	if err := csvWriter.WriteAll(data.Rows()); err != nil {
		return err
	}
	return csvWriter.Error()
}

// NewFormatter creates a formatter for format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatCSV:
		return &CSVFormatter{}
	default:
		return &TextFormatter{}
	}
}
