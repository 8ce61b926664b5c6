package apiscope

import (
	"time"

	"github.com/apiscope/apiscope/internal/analyze"
	"github.com/apiscope/apiscope/internal/browser"
	"github.com/apiscope/apiscope/internal/extract"
	"github.com/apiscope/apiscope/internal/netlog"
	"github.com/apiscope/apiscope/internal/report"
	"github.com/apiscope/apiscope/internal/score"
)

// Result is the complete outcome of one discovery run.
type Result struct {
	Target      string
	GeneratedAt time.Time

	Extraction *extract.Result

	Endpoints      []score.Scored
	Forms          []extract.FormDescriptor
	ScriptCalls    []score.Scored
	NetworkRecords []score.Scored
	Records        []netlog.Record
	AuthForms      []score.AuthForm

	Analysis *analyze.Report
	Access   *analyze.AccessAnalysis
	Login    *analyze.LoginSuggestion

	// Capture is set when the result came from a browser session.
	Capture *browser.CaptureResult
}

// Document converts the result into its serializable report form.
func (r *Result) Document() *report.Document {
	doc := &report.Document{
		Target:         r.Target,
		GeneratedAt:    r.GeneratedAt,
		Endpoints:      r.Endpoints,
		Forms:          r.Forms,
		ScriptCalls:    r.ScriptCalls,
		NetworkRecords: r.NetworkRecords,
		Analysis:       r.Analysis,
		Access:         r.Access,
		Login:          r.Login,
	}
	if r.Extraction != nil {
		doc.Source = r.Extraction.Source
		doc.ExternalJS = r.Extraction.ExternalJS
		doc.Secrets = r.Extraction.Secrets
		doc.Metadata = r.Extraction.Metadata
	}
	return doc
}

// Empty reports whether the run found no API signals at all.
func (r *Result) Empty() bool {
	return len(r.Endpoints) == 0 && len(r.Forms) == 0 &&
		len(r.ScriptCalls) == 0 && len(r.NetworkRecords) == 0
}
