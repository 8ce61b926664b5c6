package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/apiscope/apiscope/internal/analyze"
	"github.com/apiscope/apiscope/internal/extract"
	"github.com/apiscope/apiscope/internal/patterns"
	"github.com/apiscope/apiscope/internal/score"
)

func sampleDocument() *Document {
	return &Document{
		Target:      "https://example.com",
		Source:      "https://example.com",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Endpoints: []score.Scored{
			{
				Candidate: extract.Candidate{
					Kind:       extract.KindEndpoint,
					URL:        "/api/v1/vehicles",
					Method:     "GET",
					RawContext: "Vehicles",
					Origin:     extract.OriginAnchorLink,
				},
				Confidence: 0.6,
				Category:   patterns.CategoryREST,
			},
		},
		ScriptCalls: []score.Scored{
			{
				Candidate: extract.Candidate{
					Kind:       extract.KindScriptCall,
					URL:        "/api/v1/search",
					Method:     "POST",
					RawContext: "fetch",
					Origin:     extract.OriginScriptFetch,
				},
				Confidence: 0.4,
				Category:   patterns.CategoryREST,
			},
		},
		Forms: []extract.FormDescriptor{
			{
				Action: "/api/v1/search",
				Method: "POST",
				Fields: []extract.FieldDescriptor{
					{Name: "query", Type: "text", Required: true},
					{Name: "limit", Type: "number"},
				},
			},
		},
		Analysis: &analyze.Report{
			SecurityConcerns: []string{"API keys found in client-side code - potential security risk"},
			Recommendations:  []string{"Consider adding API documentation (OpenAPI/Swagger)"},
		},
	}
}

// ============================================================
// Markdown
// ============================================================

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown(sampleDocument())

	wantLines := []string{
		"# API Documentation",
		"Generated from extracted API details",
		"## API Endpoints",
		"### GET /api/v1/vehicles",
		"**Category:** rest-api",
		"**Confidence:** 0.60",
		"**Context:** Vehicles",
		"### POST /api/v1/search",
		"## Forms",
		"**Input Fields:**",
		"- `query`: text (required)",
		"- `limit`: number",
		"## Security Concerns",
		"- API keys found in client-side code - potential security risk",
		"## Recommendations",
		"- Consider adding API documentation (OpenAPI/Swagger)",
		"---",
	}
	for _, want := range wantLines {
		if !strings.Contains(out, want) {
			t.Errorf("rendered markdown missing %q", want)
		}
	}
}

func TestRenderMarkdownEmptyDocument(t *testing.T) {
	out := RenderMarkdown(&Document{Target: "https://example.com"})

	if !strings.HasPrefix(out, "# API Documentation") {
		t.Errorf("output must start with the title, got %q", out[:40])
	}
	if strings.Contains(out, "## API Endpoints") {
		t.Error("empty document must not render an endpoint section")
	}
	if strings.Contains(out, "## Forms") {
		t.Error("empty document must not render a form section")
	}
}

func TestMarkdownWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewMarkdownWriter(&buf)

	if err := w.WriteDocument(sampleDocument()); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !strings.Contains(buf.String(), "### GET /api/v1/vehicles") {
		t.Error("written output missing endpoint heading")
	}
}

// ============================================================
// CSV
// ============================================================

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	if err := w.WriteDocument(sampleDocument()); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	// Header, one endpoint, one script call, one form.
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}

	header := strings.Join(rows[0], ",")
	if header != "type,method,url,category,confidence,origin,detail" {
		t.Errorf("header = %q", header)
	}

	endpoint := rows[1]
	if endpoint[0] != "endpoint" || endpoint[1] != "GET" || endpoint[2] != "/api/v1/vehicles" {
		t.Errorf("endpoint row = %v", endpoint)
	}
	if endpoint[4] != "0.60" {
		t.Errorf("confidence column = %q, want 0.60", endpoint[4])
	}

	form := rows[3]
	if form[0] != "form" || form[1] != "POST" || form[2] != "/api/v1/search" {
		t.Errorf("form row = %v", form)
	}
	if form[6] != "2 fields" {
		t.Errorf("form detail = %q, want \"2 fields\"", form[6])
	}
}

// ============================================================
// JSON
// ============================================================

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf, false)

	doc := sampleDocument()
	if err := w.WriteDocument(doc); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var decoded Document
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Target != doc.Target {
		t.Errorf("Target = %q", decoded.Target)
	}
	if len(decoded.Endpoints) != 1 || decoded.Endpoints[0].URL != "/api/v1/vehicles" {
		t.Errorf("Endpoints = %+v", decoded.Endpoints)
	}
	if len(decoded.Forms) != 1 || len(decoded.Forms[0].Fields) != 2 {
		t.Errorf("Forms = %+v", decoded.Forms)
	}
}

func TestJSONWriterPretty(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf, true)

	if err := w.WriteDocument(sampleDocument()); err != nil {
		t.Fatalf("WriteDocument: %v", err)
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("pretty output should be indented")
	}
}

// ============================================================
// Format selection
// ============================================================

func TestNewWriter(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"json", "*report.JSONWriter"},
		{"csv", "*report.CSVWriter"},
		{"markdown", "*report.MarkdownWriter"},
		{"md", "*report.MarkdownWriter"},
		{"bogus", "*report.JSONWriter"}, // unknown falls back to JSON
	}

	var buf bytes.Buffer
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			w := NewWriter(&buf, Config{Format: tt.format})
			switch tt.want {
			case "*report.JSONWriter":
				if _, ok := w.(*JSONWriter); !ok {
					t.Errorf("got %T", w)
				}
			case "*report.CSVWriter":
				if _, ok := w.(*CSVWriter); !ok {
					t.Errorf("got %T", w)
				}
			case "*report.MarkdownWriter":
				if _, ok := w.(*MarkdownWriter); !ok {
					t.Errorf("got %T", w)
				}
			}
		})
	}
}

func TestValidateFormat(t *testing.T) {
	for _, format := range []string{"json", "csv", "markdown", "md"} {
		if err := ValidateFormat(format); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", format, err)
		}
	}
	if err := ValidateFormat("xml"); err == nil {
		t.Error("ValidateFormat must reject unsupported formats")
	}
}

func TestDocumentAllScored(t *testing.T) {
	doc := sampleDocument()
	doc.NetworkRecords = []score.Scored{
		{Candidate: extract.Candidate{Kind: extract.KindNetworkRecord, URL: "/api/live"}},
	}

	all := doc.AllScored()
	if len(all) != 3 {
		t.Fatalf("got %d scored, want 3", len(all))
	}
	if all[0].URL != "/api/v1/vehicles" || all[1].URL != "/api/v1/search" || all[2].URL != "/api/live" {
		t.Errorf("order = %q %q %q", all[0].URL, all[1].URL, all[2].URL)
	}
}
