// Package score assigns confidence scores and categories to detected
// candidates, and classifies authentication forms.
package score

import (
	"strings"

	"github.com/apiscope/apiscope/internal/extract"
	"github.com/apiscope/apiscope/internal/netlog"
	"github.com/apiscope/apiscope/internal/patterns"
)

// Signals is the common optional-field shape scored for every candidate
// kind. Markup candidates carry only a URL; network records also carry a
// content type and response status. Missing fields are zero-weight
// signals, not failures.
type Signals struct {
	URL            string
	ContentType    string
	ResponseStatus int // 0 means no response was observed
}

// Scored is a candidate with its confidence and category attached.
type Scored struct {
	extract.Candidate
	Confidence float64           `json:"confidence"`
	Category   patterns.Category `json:"category"`
}

// Score evaluates the weighted rule tables against the signals. Checks
// are independent and additive; the total is clamped to [0, 1]. The
// function holds no state: identical inputs always produce identical
// results.
func Score(sig Signals) (float64, patterns.Category) {
	confidence := 0.0
	lowerURL := strings.ToLower(sig.URL)
	restMatched := false

	for _, rule := range patterns.URLRules {
		if rule.Matches(lowerURL) {
			confidence += rule.Weight
			if rule.Category == patterns.CategoryREST {
				restMatched = true
			}
		}
	}

	lowerCT := strings.ToLower(sig.ContentType)
	if lowerCT != "" {
		for _, rule := range patterns.ContentTypeRules {
			if strings.Contains(lowerCT, rule.Substring) {
				confidence += rule.Weight
			}
		}
	}

	switch {
	case sig.ResponseStatus >= 200 && sig.ResponseStatus < 300:
		confidence += 0.2
	case sig.ResponseStatus == 401 || sig.ResponseStatus == 403:
		// Authentication required: still evidence of an API surface,
		// just a gated one.
		confidence += 0.1
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0.0 {
		confidence = 0.0
	}

	return confidence, categorize(lowerURL, restMatched)
}

// categorize walks the ordered category table; first match wins. REST
// applies when any REST URL rule matched; everything else is
// unclassified.
func categorize(lowerURL string, restMatched bool) patterns.Category {
	for _, rule := range patterns.CategoryRules {
		if strings.Contains(lowerURL, rule.Substring) {
			return rule.Category
		}
	}
	if restMatched {
		return patterns.CategoryREST
	}
	return patterns.CategoryUnclassified
}

// Candidate scores a markup- or script-derived candidate. These carry no
// response signals, only their URL.
func Candidate(c extract.Candidate) Scored {
	confidence, category := Score(Signals{URL: c.URL})
	return Scored{Candidate: c, Confidence: confidence, Category: category}
}

// Candidates scores a batch in encounter order.
func Candidates(cands []extract.Candidate) []Scored {
	out := make([]Scored, 0, len(cands))
	for _, c := range cands {
		out = append(out, Candidate(c))
	}
	return out
}

// Record scores a correlated network record, which carries the full
// signal set.
func Record(rec netlog.Record) Scored {
	confidence, category := Score(Signals{
		URL:            rec.URL,
		ContentType:    rec.ContentType(),
		ResponseStatus: rec.ResponseStatus,
	})
	return Scored{
		Candidate: extract.Candidate{
			Kind:       extract.KindNetworkRecord,
			URL:        rec.URL,
			Method:     rec.Method,
			RawContext: rec.ContentType(),
			Origin:     extract.OriginNetworkCapture,
		},
		Confidence: confidence,
		Category:   category,
	}
}

// Records scores a batch of network records in encounter order.
func Records(recs []netlog.Record) []Scored {
	out := make([]Scored, 0, len(recs))
	for _, rec := range recs {
		out = append(out, Record(rec))
	}
	return out
}
