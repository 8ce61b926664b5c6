package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// MarkdownWriter renders the document as human-readable API
// documentation.
type MarkdownWriter struct {
	mu     sync.Mutex
	writer io.Writer
	closed bool
}

// NewMarkdownWriter creates a new Markdown writer.
func NewMarkdownWriter(w io.Writer) *MarkdownWriter {
	return &MarkdownWriter{writer: w}
}

// WriteDocument writes the complete session document.
func (m *MarkdownWriter) WriteDocument(doc *Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	_, err := io.WriteString(m.writer, RenderMarkdown(doc))
	return err
}

// Flush flushes the writer.
func (m *MarkdownWriter) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if flusher, ok := m.writer.(interface{ Flush() error }); ok {
		return flusher.Flush()
	}
	return nil
}

// Close closes the writer.
func (m *MarkdownWriter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	if closer, ok := m.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// RenderMarkdown builds the documentation text for a session document.
// One "###" heading per endpoint and per form, each section followed by
// a rule, so the output diffs cleanly across runs.
func RenderMarkdown(doc *Document) string {
	var lines []string

	lines = append(lines, "# API Documentation")
	lines = append(lines, "Generated from extracted API details")
	lines = append(lines, "")

	endpoints := doc.AllScored()
	if len(endpoints) > 0 {
		lines = append(lines, "## API Endpoints", "")
		for _, ep := range endpoints {
			method := ep.Method
			if method == "" {
				method = "GET"
			}
			url := ep.URL
			if url == "" {
				url = "N/A"
			}
			lines = append(lines, fmt.Sprintf("### %s %s", method, url), "")
			lines = append(lines, fmt.Sprintf("**Category:** %s", ep.Category))
			lines = append(lines, fmt.Sprintf("**Confidence:** %.2f", ep.Confidence))
			lines = append(lines, "")
			if ep.RawContext != "" {
				lines = append(lines, fmt.Sprintf("**Context:** %s", ep.RawContext), "")
			}
			lines = append(lines, "---", "")
		}
	}

	if len(doc.Forms) > 0 {
		lines = append(lines, "## Forms", "")
		for _, form := range doc.Forms {
			method := form.Method
			if method == "" {
				method = "GET"
			}
			action := form.Action
			if action == "" {
				action = "N/A"
			}
			lines = append(lines, fmt.Sprintf("### %s %s", method, action), "")
			if len(form.Fields) > 0 {
				lines = append(lines, "**Input Fields:**")
				for _, f := range form.Fields {
					name := f.Name
					if name == "" {
						name = "unnamed"
					}
					typ := f.Type
					if typ == "" {
						typ = "text"
					}
					required := ""
					if f.Required {
						required = " (required)"
					}
					lines = append(lines, fmt.Sprintf("- `%s`: %s%s", name, typ, required))
				}
				lines = append(lines, "")
			}
			lines = append(lines, "---", "")
		}
	}

	if doc.Analysis != nil && len(doc.Analysis.SecurityConcerns) > 0 {
		lines = append(lines, "## Security Concerns", "")
		for _, concern := range doc.Analysis.SecurityConcerns {
			lines = append(lines, fmt.Sprintf("- %s", concern))
		}
		lines = append(lines, "")
	}

	if doc.Analysis != nil && len(doc.Analysis.Recommendations) > 0 {
		lines = append(lines, "## Recommendations", "")
		for _, rec := range doc.Analysis.Recommendations {
			lines = append(lines, fmt.Sprintf("- %s", rec))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
