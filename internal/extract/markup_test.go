package extract

import (
	"testing"
)

// ============================================================
// Endpoint links
// ============================================================

func TestExtractEndpointLinks(t *testing.T) {
	html := `
	<html><body>
		<a href="/api/v1/vehicles">Vehicles API</a>
		<a href="/about">About Us</a>
		<a href="/rest/orders">Orders</a>
		<a href="https://other.example.com/graphql">GraphQL</a>
	</body></html>`

	e, err := NewMarkupExtractor("")
	if err != nil {
		t.Fatalf("NewMarkupExtractor: %v", err)
	}
	result, err := e.Extract(html, "test")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(result.Endpoints) != 3 {
		t.Fatalf("got %d endpoints, want 3", len(result.Endpoints))
	}

	first := result.Endpoints[0]
	if first.URL != "/api/v1/vehicles" {
		t.Errorf("URL = %q, want /api/v1/vehicles", first.URL)
	}
	if first.Method != "GET" {
		t.Errorf("Method = %q, want GET", first.Method)
	}
	if first.Kind != KindEndpoint {
		t.Errorf("Kind = %q, want %q", first.Kind, KindEndpoint)
	}
	if first.Origin != OriginAnchorLink {
		t.Errorf("Origin = %q, want %q", first.Origin, OriginAnchorLink)
	}
	if first.RawContext != "Vehicles API" {
		t.Errorf("RawContext = %q, want link text", first.RawContext)
	}
}

func TestExtractResolvesRelativeLinks(t *testing.T) {
	html := `<a href="/api/users">Users</a>`

	e, err := NewMarkupExtractor("https://example.com/app/")
	if err != nil {
		t.Fatalf("NewMarkupExtractor: %v", err)
	}
	result, err := e.Extract(html, "https://example.com/app/")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(result.Endpoints) != 1 {
		t.Fatalf("got %d endpoints, want 1", len(result.Endpoints))
	}
	if got := result.Endpoints[0].URL; got != "https://example.com/api/users" {
		t.Errorf("URL = %q, want resolved absolute URL", got)
	}
}

// ============================================================
// Forms
// ============================================================

func TestExtractForms(t *testing.T) {
	html := `
	<form action="/api/v1/search" method="post">
		<input type="text" name="query" placeholder="Search" required>
		<input type="hidden" name="csrf" value="abc">
		<select name="category"><option>a</option></select>
		<textarea name="notes"></textarea>
	</form>
	<form>
		<input name="q">
	</form>`

	e, _ := NewMarkupExtractor("")
	result, err := e.Extract(html, "test")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(result.Forms) != 2 {
		t.Fatalf("got %d forms, want 2", len(result.Forms))
	}

	form := result.Forms[0]
	if form.Action != "/api/v1/search" {
		t.Errorf("Action = %q, want /api/v1/search", form.Action)
	}
	if form.Method != "POST" {
		t.Errorf("Method = %q, want POST (uppercased)", form.Method)
	}
	if len(form.Fields) != 4 {
		t.Fatalf("got %d fields, want 4", len(form.Fields))
	}

	tests := []struct {
		name     string
		wantType string
		required bool
	}{
		{"query", "text", true},
		{"csrf", "hidden", false},
		{"category", "select", false},
		{"notes", "textarea", false},
	}
	for i, tt := range tests {
		f := form.Fields[i]
		if f.Name != tt.name {
			t.Errorf("field %d Name = %q, want %q", i, f.Name, tt.name)
		}
		if f.Type != tt.wantType {
			t.Errorf("field %q Type = %q, want %q", tt.name, f.Type, tt.wantType)
		}
		if f.Required != tt.required {
			t.Errorf("field %q Required = %v, want %v", tt.name, f.Required, tt.required)
		}
	}

	// A form with no method attribute defaults to GET, and an input with
	// no type attribute defaults to text.
	bare := result.Forms[1]
	if bare.Method != "GET" {
		t.Errorf("bare form Method = %q, want GET", bare.Method)
	}
	if len(bare.Fields) != 1 || bare.Fields[0].Type != "text" {
		t.Errorf("bare input should default to type text, got %+v", bare.Fields)
	}
}

// ============================================================
// data-api attributes
// ============================================================

func TestExtractDataAttrs(t *testing.T) {
	html := `
	<div data-api="/api/v1/stats" data-method="post">Stats</div>
	<span data-api="/api/v1/feed">Feed</span>
	<div data-api="">empty</div>`

	e, _ := NewMarkupExtractor("")
	result, err := e.Extract(html, "test")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(result.DataAttrs) != 2 {
		t.Fatalf("got %d data-attr candidates, want 2", len(result.DataAttrs))
	}

	div := result.DataAttrs[0]
	if div.URL != "/api/v1/stats" || div.Method != "POST" {
		t.Errorf("got %q %q, want POST /api/v1/stats", div.Method, div.URL)
	}
	if div.Kind != KindNetworkRecord {
		t.Errorf("Kind = %q, want %q", div.Kind, KindNetworkRecord)
	}
	if div.Origin != OriginDataAttribute {
		t.Errorf("Origin = %q, want %q", div.Origin, OriginDataAttribute)
	}
	if div.RawContext != "div" {
		t.Errorf("RawContext = %q, want element name", div.RawContext)
	}

	span := result.DataAttrs[1]
	if span.Method != "GET" {
		t.Errorf("data-api without data-method should default to GET, got %q", span.Method)
	}
}

// ============================================================
// Scripts
// ============================================================

func TestExtractScripts(t *testing.T) {
	html := `
	<script src="/static/app.js"></script>
	<script>
		fetch('/api/v1/vehicles');
		const apiKey = "sk_live_abcdef1234567890";
	</script>`

	e, _ := NewMarkupExtractor("https://example.com/")
	result, err := e.Extract(html, "https://example.com/")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(result.ExternalJS) != 1 || result.ExternalJS[0] != "https://example.com/static/app.js" {
		t.Errorf("ExternalJS = %v, want resolved /static/app.js", result.ExternalJS)
	}
	if len(result.ScriptCalls) != 1 {
		t.Fatalf("got %d script calls, want 1", len(result.ScriptCalls))
	}
	call := result.ScriptCalls[0]
	if call.URL != "https://example.com/api/v1/vehicles" {
		t.Errorf("call URL = %q, want resolved", call.URL)
	}
	if call.Origin != OriginScriptFetch {
		t.Errorf("Origin = %q, want %q", call.Origin, OriginScriptFetch)
	}
	if len(result.Secrets) != 1 {
		t.Fatalf("got %d secrets, want 1", len(result.Secrets))
	}
	if got := result.Secrets[0].MaskedValue; got != "sk_live_ab..." {
		t.Errorf("masked value = %q, want truncated form", got)
	}
}

// ============================================================
// Metadata
// ============================================================

func TestExtractMetadata(t *testing.T) {
	html := `
	<html><head>
		<title>  Fleet Portal  </title>
		<meta name="generator" content="FleetCMS 2.1">
		<meta property="og:title" content="Fleet Portal">
		<meta name="empty" content="">
	</head><body></body></html>`

	e, _ := NewMarkupExtractor("")
	result, err := e.Extract(html, "test")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if result.Metadata.Title != "Fleet Portal" {
		t.Errorf("Title = %q, want trimmed title", result.Metadata.Title)
	}
	if result.Metadata.Meta["generator"] != "FleetCMS 2.1" {
		t.Errorf("meta generator = %q", result.Metadata.Meta["generator"])
	}
	if result.Metadata.Meta["og:title"] != "Fleet Portal" {
		t.Errorf("meta og:title = %q", result.Metadata.Meta["og:title"])
	}
	if _, ok := result.Metadata.Meta["empty"]; ok {
		t.Error("meta tags without content must be skipped")
	}
}

func TestResultEmpty(t *testing.T) {
	e, _ := NewMarkupExtractor("")
	result, err := e.Extract("<html><body><p>hello</p></body></html>", "test")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !result.Empty() {
		t.Error("plain page should yield an empty result")
	}
	if got := len(result.AllCandidates()); got != 0 {
		t.Errorf("AllCandidates() returned %d entries, want 0", got)
	}
}
