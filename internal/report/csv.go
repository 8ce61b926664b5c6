package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"sync"
)

// csvHeader is the flattened column set. Forms carry no confidence or
// category, so those columns are empty for form rows.
var csvHeader = []string{"type", "method", "url", "category", "confidence", "origin", "detail"}

// CSVWriter writes the document as one flattened row per artifact.
type CSVWriter struct {
	mu     sync.Mutex
	out    io.Writer
	writer *csv.Writer
	closed bool
}

// NewCSVWriter creates a new CSV writer.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{
		out:    w,
		writer: csv.NewWriter(w),
	}
}

// WriteDocument writes the complete session document.
func (c *CSVWriter) WriteDocument(doc *Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	if err := c.writer.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range doc.AllScored() {
		row := []string{
			string(s.Kind),
			s.Method,
			s.URL,
			string(s.Category),
			strconv.FormatFloat(s.Confidence, 'f', 2, 64),
			string(s.Origin),
			s.RawContext,
		}
		if err := c.writer.Write(row); err != nil {
			return err
		}
	}

	for _, form := range doc.Forms {
		method := form.Method
		if method == "" {
			method = "GET"
		}
		row := []string{
			"form",
			method,
			form.Action,
			"",
			"",
			"markup",
			strconv.Itoa(len(form.Fields)) + " fields",
		}
		if err := c.writer.Write(row); err != nil {
			return err
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Flush flushes buffered rows.
func (c *CSVWriter) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writer.Flush()
	return c.writer.Error()
}

// Close closes the writer.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.writer.Flush()

	if closer, ok := c.out.(io.Closer); ok {
		return closer.Close()
	}
	return c.writer.Error()
}
