package extract

// Kind tags what a candidate was detected as.
type Kind string

const (
	KindEndpoint      Kind = "endpoint"
	KindForm          Kind = "form"
	KindScriptCall    Kind = "script-call"
	KindNetworkRecord Kind = "network-record"
)

// Origin tags where a candidate was found.
type Origin string

const (
	OriginAnchorLink     Origin = "anchor-link"
	OriginScriptFetch    Origin = "script-fetch"
	OriginScriptAxios    Origin = "script-axios"
	OriginScriptAjax     Origin = "script-ajax"
	OriginScriptXHR      Origin = "script-xhr"
	OriginDataAttribute  Origin = "data-attribute"
	OriginNetworkCapture Origin = "network-capture"
)

// Candidate is a detected artifact prior to scoring. Immutable after
// creation; the scorer reads it and produces a new structure.
type Candidate struct {
	Kind       Kind   `json:"kind"`
	URL        string `json:"url"`
	Method     string `json:"method"`
	RawContext string `json:"raw_context,omitempty"`
	Origin     Origin `json:"origin"`
}

// FieldDescriptor describes one form field.
type FieldDescriptor struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	ID          string `json:"id,omitempty"`
	Required    bool   `json:"required"`
	Placeholder string `json:"placeholder,omitempty"`
	Value       string `json:"value,omitempty"`
}

// FormDescriptor describes a submitted form and its ordered fields.
type FormDescriptor struct {
	Action string            `json:"action"`
	Method string            `json:"method"`
	Fields []FieldDescriptor `json:"fields"`
}

// SecretMatch is an API-key-like literal found in script text. Value is
// always masked before it leaves the extractor; the full secret never
// crosses this boundary.
type SecretMatch struct {
	Type        string `json:"type"`
	MaskedValue string `json:"value"`
	Description string `json:"description"`
}

// PageMetadata carries page-level metadata from an extraction pass.
type PageMetadata struct {
	Title           string            `json:"title,omitempty"`
	Meta            map[string]string `json:"meta,omitempty"`
	StatusCode      int               `json:"status_code,omitempty"`
	ResponseHeaders map[string]string `json:"response_headers,omitempty"`
}

// Result is the full output of one extraction pass over a document.
type Result struct {
	Source      string          `json:"source"`
	Endpoints   []Candidate     `json:"endpoints"`
	Forms       []FormDescriptor `json:"forms"`
	ScriptCalls []Candidate     `json:"script_calls"`
	DataAttrs   []Candidate     `json:"data_attributes"`
	ExternalJS  []string        `json:"external_scripts,omitempty"`
	Secrets     []SecretMatch   `json:"api_keys,omitempty"`
	Metadata    PageMetadata    `json:"metadata"`
}

// AllCandidates returns endpoint, script-call and data-attribute
// candidates in encounter order.
func (r *Result) AllCandidates() []Candidate {
	out := make([]Candidate, 0, len(r.Endpoints)+len(r.ScriptCalls)+len(r.DataAttrs))
	out = append(out, r.Endpoints...)
	out = append(out, r.ScriptCalls...)
	out = append(out, r.DataAttrs...)
	return out
}

// Empty reports whether the pass found nothing at all.
func (r *Result) Empty() bool {
	return len(r.Endpoints) == 0 && len(r.Forms) == 0 &&
		len(r.ScriptCalls) == 0 && len(r.DataAttrs) == 0 && len(r.Secrets) == 0
}
