// Package report renders a discovery session into its export formats.
package report

import (
	"time"

	"github.com/apiscope/apiscope/internal/analyze"
	"github.com/apiscope/apiscope/internal/extract"
	"github.com/apiscope/apiscope/internal/score"
)

// Document is the complete serializable result of one discovery
// session: scored candidates, the aggregate analysis, and the access
// posture when a live fetch happened.
type Document struct {
	Target      string    `json:"target"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`

	Endpoints      []score.Scored           `json:"endpoints"`
	Forms          []extract.FormDescriptor `json:"forms"`
	ScriptCalls    []score.Scored           `json:"script_calls"`
	NetworkRecords []score.Scored           `json:"network_records,omitempty"`
	ExternalJS     []string                 `json:"external_scripts,omitempty"`
	Secrets        []extract.SecretMatch    `json:"api_keys,omitempty"`
	Metadata       extract.PageMetadata     `json:"metadata"`

	Analysis *analyze.Report          `json:"analysis,omitempty"`
	Access   *analyze.AccessAnalysis  `json:"access,omitempty"`
	Login    *analyze.LoginSuggestion `json:"login_suggestion,omitempty"`
}

// AllScored returns every scored candidate in the document: markup
// endpoints first, then script calls, then network records.
func (d *Document) AllScored() []score.Scored {
	out := make([]score.Scored, 0, len(d.Endpoints)+len(d.ScriptCalls)+len(d.NetworkRecords))
	out = append(out, d.Endpoints...)
	out = append(out, d.ScriptCalls...)
	out = append(out, d.NetworkRecords...)
	return out
}
