// Package analyze aggregates scored candidates into page-level findings,
// recommendations, and security flags.
package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/apiscope/apiscope/internal/extract"
	"github.com/apiscope/apiscope/internal/patterns"
	"github.com/apiscope/apiscope/internal/score"
	"github.com/apiscope/apiscope/internal/state"
)

// Finding is an aggregate, page-level conclusion synthesized from scored
// candidates. Only this package produces findings; the scorer never does.
type Finding struct {
	PatternType string   `json:"type"`
	Confidence  float64  `json:"confidence"`
	Evidence    []string `json:"evidence"`
	Description string   `json:"description"`
}

// EndpointSummary summarizes endpoint candidates.
type EndpointSummary struct {
	Total       int            `json:"total_count"`
	Methods     map[string]int `json:"methods"`
	URLPatterns []string       `json:"url_patterns"`
}

// FormSummary summarizes form candidates.
type FormSummary struct {
	Total        int            `json:"total_count"`
	Methods      map[string]int `json:"methods"`
	InputTypes   map[string]int `json:"input_types"`
	CommonFields []string       `json:"common_fields"`
}

// ScriptSummary summarizes script-call candidates.
type ScriptSummary struct {
	Total     int            `json:"total_count"`
	CallTypes map[string]int `json:"call_types"`
	URLs      []string       `json:"urls"`
}

// Summary holds the per-section counts and histograms.
type Summary struct {
	Endpoints *EndpointSummary `json:"endpoints,omitempty"`
	Forms     *FormSummary     `json:"forms,omitempty"`
	Scripts   *ScriptSummary   `json:"javascript,omitempty"`
}

// Report is the top-level analysis container. Created once per
// extraction result and read-only thereafter.
type Report struct {
	Summary          Summary   `json:"summary"`
	Patterns         []Finding `json:"patterns"`
	Recommendations  []string  `json:"recommendations"`
	SecurityConcerns []string  `json:"security_concerns"`
}

// Input is the full set of scored candidates for one page or session.
type Input struct {
	Endpoints   []score.Scored
	Forms       []extract.FormDescriptor
	ScriptCalls []score.Scored
	Secrets     []extract.SecretMatch
}

const (
	restFindingConfidence    = 0.9
	graphqlFindingConfidence = 0.8
	oauthFindingConfidence   = 0.7

	restEvidenceLimit      = 5
	docRecommendationAbove = 5
)

// Analyze derives a report from the scored candidate set. Deterministic
// for a given input; the input structures are never mutated.
func Analyze(in Input) *Report {
	report := &Report{
		Patterns:         make([]Finding, 0),
		Recommendations:  make([]string, 0),
		SecurityConcerns: make([]string, 0),
	}

	if len(in.Endpoints) > 0 {
		report.Summary.Endpoints = summarizeEndpoints(in.Endpoints)
	}
	if len(in.Forms) > 0 {
		report.Summary.Forms = summarizeForms(in.Forms)
	}
	if len(in.ScriptCalls) > 0 {
		report.Summary.Scripts = summarizeScripts(in.ScriptCalls)
	}

	report.Patterns = detectPatterns(in.Endpoints)
	report.Recommendations = recommendations(in)
	report.SecurityConcerns = securityConcerns(in)

	return report
}

func summarizeEndpoints(endpoints []score.Scored) *EndpointSummary {
	s := &EndpointSummary{
		Total:       len(endpoints),
		Methods:     make(map[string]int),
		URLPatterns: make([]string, 0),
	}

	seen := state.NewDeduplicator(len(endpoints))
	for _, ep := range endpoints {
		method := ep.Method
		if method == "" {
			method = "GET"
		}
		s.Methods[method]++

		if ep.URL == "" {
			continue
		}
		pattern := patterns.NormalizeURLPattern(ep.URL)
		if !seen.Seen(pattern) {
			s.URLPatterns = append(s.URLPatterns, pattern)
		}
	}
	return s
}

func summarizeForms(forms []extract.FormDescriptor) *FormSummary {
	s := &FormSummary{
		Total:      len(forms),
		Methods:    make(map[string]int),
		InputTypes: make(map[string]int),
	}

	fieldCounts := make(map[string]int)
	fieldOrder := make([]string, 0)

	for _, form := range forms {
		method := form.Method
		if method == "" {
			method = "GET"
		}
		s.Methods[method]++

		for _, f := range form.Fields {
			typ := f.Type
			if typ == "" {
				typ = "text"
			}
			s.InputTypes[typ]++

			if f.Name != "" {
				if fieldCounts[f.Name] == 0 {
					fieldOrder = append(fieldOrder, f.Name)
				}
				fieldCounts[f.Name]++
			}
		}
	}

	// Most common field names first; encounter order breaks ties.
	sort.SliceStable(fieldOrder, func(i, j int) bool {
		return fieldCounts[fieldOrder[i]] > fieldCounts[fieldOrder[j]]
	})
	if len(fieldOrder) > 10 {
		fieldOrder = fieldOrder[:10]
	}
	s.CommonFields = fieldOrder

	return s
}

func summarizeScripts(calls []score.Scored) *ScriptSummary {
	s := &ScriptSummary{
		Total:     len(calls),
		CallTypes: make(map[string]int),
		URLs:      make([]string, 0),
	}

	seen := make(map[string]struct{})
	for _, call := range calls {
		s.CallTypes[call.RawContext]++
		if call.URL == "" {
			continue
		}
		if _, ok := seen[call.URL]; ok {
			continue
		}
		seen[call.URL] = struct{}{}
		s.URLs = append(s.URLs, call.URL)
	}
	return s
}

// detectPatterns emits the REST, GraphQL, and OAuth findings. Evidence
// keeps encounter order.
func detectPatterns(endpoints []score.Scored) []Finding {
	findings := make([]Finding, 0)

	restEvidence := make([]string, 0)
	graphqlEvidence := make([]string, 0)
	oauthEvidence := make([]string, 0)

	for _, ep := range endpoints {
		lower := strings.ToLower(ep.URL)
		if patterns.MatchesRESTURL(ep.URL) && len(restEvidence) < restEvidenceLimit {
			restEvidence = append(restEvidence, ep.URL)
		}
		if strings.Contains(lower, "graphql") {
			graphqlEvidence = append(graphqlEvidence, ep.URL)
		}
		if strings.Contains(lower, "oauth") {
			oauthEvidence = append(oauthEvidence, ep.URL)
		}
	}

	if len(restEvidence) > 0 {
		findings = append(findings, Finding{
			PatternType: "REST API",
			Confidence:  restFindingConfidence,
			Evidence:    restEvidence,
			Description: "Multiple REST API endpoints detected",
		})
	}
	if len(graphqlEvidence) > 0 {
		findings = append(findings, Finding{
			PatternType: "GraphQL",
			Confidence:  graphqlFindingConfidence,
			Evidence:    graphqlEvidence,
			Description: "GraphQL endpoint detected",
		})
	}
	if len(oauthEvidence) > 0 {
		findings = append(findings, Finding{
			PatternType: "OAuth",
			Confidence:  oauthFindingConfidence,
			Evidence:    oauthEvidence,
			Description: "OAuth authentication endpoints detected",
		})
	}

	return findings
}

// recommendations runs the independent recommendation checks; every
// applicable one fires.
func recommendations(in Input) []string {
	recs := make([]string, 0)

	if len(in.Endpoints) == 0 && len(in.Forms) == 0 && len(in.ScriptCalls) == 0 {
		recs = append(recs, "Site appears to be publicly accessible")
		return recs
	}

	if len(in.Endpoints) > 0 && len(in.Secrets) == 0 {
		recs = append(recs, "Consider implementing authentication for API endpoints")
	}

	if len(in.Forms) > 0 {
		methods := make(map[string]struct{})
		for _, form := range in.Forms {
			method := form.Method
			if method == "" {
				method = "GET"
			}
			methods[method] = struct{}{}
		}
		if len(methods) > 1 {
			recs = append(recs, "Standardize HTTP methods across forms for consistency")
		}
	}

	if len(in.Endpoints) > docRecommendationAbove {
		recs = append(recs, "Consider adding API documentation (OpenAPI/Swagger)")
	}

	return recs
}

// securityConcerns runs the independent concern checks; all matches are
// reported, not just the first.
func securityConcerns(in Input) []string {
	concerns := make([]string, 0)

	// Any number of exposed keys produces this concern exactly once.
	if len(in.Secrets) > 0 {
		concerns = append(concerns, "API keys found in client-side code - potential security risk")
	}

	for _, ep := range in.Endpoints {
		lower := strings.ToLower(ep.URL)
		for _, ind := range patterns.SensitiveURLIndicators {
			if strings.Contains(lower, ind) {
				concerns = append(concerns, fmt.Sprintf("Sensitive data in URL: %s", ep.URL))
				break
			}
		}
	}

	for _, form := range in.Forms {
		if form.Method == "" || strings.EqualFold(form.Method, "GET") {
			concerns = append(concerns, "Form using GET method may expose data in URL")
		}
	}

	return concerns
}
