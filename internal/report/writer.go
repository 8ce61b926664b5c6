package report

import (
	"fmt"
	"io"
)

// Writer defines the interface for report writers.
type Writer interface {
	// WriteDocument writes the complete session document
	WriteDocument(doc *Document) error

	// Flush flushes any buffered output
	Flush() error

	// Close closes the writer
	Close() error
}

// Config holds report output configuration.
type Config struct {
	Format string
	Pretty bool
}

// NewWriter creates a writer for the configured format. Unknown formats
// fall back to JSON so a typo never silently drops a report.
func NewWriter(w io.Writer, config Config) Writer {
	switch config.Format {
	case "csv":
		return NewCSVWriter(w)
	case "markdown", "md":
		return NewMarkdownWriter(w)
	case "json":
		return NewJSONWriter(w, config.Pretty)
	default:
		return NewJSONWriter(w, config.Pretty)
	}
}

// ValidFormats lists the accepted --format values.
func ValidFormats() []string {
	return []string{"json", "csv", "markdown"}
}

// ValidateFormat rejects formats NewWriter would silently map to JSON.
func ValidateFormat(format string) error {
	for _, f := range ValidFormats() {
		if format == f || (f == "markdown" && format == "md") {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (valid: json, csv, markdown)", format)
}
