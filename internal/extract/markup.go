// Package extract locates unscored API-surface candidates in HTML markup
// and raw script text.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/apiscope/apiscope/internal/patterns"
)

// MarkupExtractor scans parsed HTML for endpoint links, forms, inline and
// external scripts, and data-api attributes.
type MarkupExtractor struct {
	baseURL *url.URL
}

// NewMarkupExtractor creates an extractor that resolves relative URLs
// against baseURL. Pass an empty string for raw-content mode, in which
// URLs are kept exactly as written.
func NewMarkupExtractor(baseURL string) (*MarkupExtractor, error) {
	if baseURL == "" {
		return &MarkupExtractor{}, nil
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &MarkupExtractor{baseURL: u}, nil
}

// Extract runs a full pass over an HTML document. Malformed markup never
// errors: goquery builds a best-effort tree and extraction degrades to
// fewer candidates.
func (e *MarkupExtractor) Extract(html, source string) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	result := &Result{
		Source:      source,
		Endpoints:   make([]Candidate, 0),
		Forms:       make([]FormDescriptor, 0),
		ScriptCalls: make([]Candidate, 0),
		DataAttrs:   make([]Candidate, 0),
		Secrets:     make([]SecretMatch, 0),
	}

	e.extractEndpointLinks(doc, result)
	e.extractForms(doc, result)
	e.extractDataAttrs(doc, result)
	e.extractScripts(doc, result)
	e.extractMetadata(doc, result)

	return result, nil
}

// extractEndpointLinks collects anchors whose href matches an endpoint
// pattern.
func (e *MarkupExtractor) extractEndpointLinks(doc *goquery.Document, result *Result) {
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" || !patterns.MatchesEndpointHref(href) {
			return
		}
		result.Endpoints = append(result.Endpoints, Candidate{
			Kind:       KindEndpoint,
			URL:        e.resolveURL(href),
			Method:     "GET",
			RawContext: strings.TrimSpace(s.Text()),
			Origin:     OriginAnchorLink,
		})
	})
}

// extractForms captures every form with its input, select, and textarea
// children in document order.
func (e *MarkupExtractor) extractForms(doc *goquery.Document, result *Result) {
	doc.Find("form").Each(func(_ int, s *goquery.Selection) {
		form := FormDescriptor{
			Method: "GET",
			Fields: make([]FieldDescriptor, 0),
		}

		if action, ok := s.Attr("action"); ok {
			form.Action = e.resolveURL(action)
		}
		if method, ok := s.Attr("method"); ok && method != "" {
			form.Method = strings.ToUpper(method)
		}

		s.Find("input, select, textarea").Each(func(_ int, in *goquery.Selection) {
			form.Fields = append(form.Fields, parseField(in))
		})

		result.Forms = append(result.Forms, form)
	})
}

func parseField(s *goquery.Selection) FieldDescriptor {
	field := FieldDescriptor{}
	field.Name, _ = s.Attr("name")
	field.ID, _ = s.Attr("id")
	field.Placeholder, _ = s.Attr("placeholder")
	field.Value, _ = s.Attr("value")
	_, field.Required = s.Attr("required")

	switch {
	case s.Is("textarea"):
		field.Type = "textarea"
	case s.Is("select"):
		field.Type = "select"
	default:
		field.Type, _ = s.Attr("type")
		if field.Type == "" {
			field.Type = "text"
		}
	}
	return field
}

// extractDataAttrs collects elements carrying a data-api attribute. The
// method comes from a sibling data-method attribute, default GET.
func (e *MarkupExtractor) extractDataAttrs(doc *goquery.Document, result *Result) {
	doc.Find("[data-api]").Each(func(_ int, s *goquery.Selection) {
		api, _ := s.Attr("data-api")
		if api == "" {
			return
		}
		method := "GET"
		if m, ok := s.Attr("data-method"); ok && m != "" {
			method = strings.ToUpper(m)
		}
		result.DataAttrs = append(result.DataAttrs, Candidate{
			Kind:       KindNetworkRecord,
			URL:        api,
			Method:     method,
			RawContext: goquery.NodeName(s),
			Origin:     OriginDataAttribute,
		})
	})
}

// extractScripts runs the script-call extractor over every inline script
// block and records external script sources for later fetching.
func (e *MarkupExtractor) extractScripts(doc *goquery.Document, result *Result) {
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok && src != "" {
			result.ExternalJS = append(result.ExternalJS, e.resolveURL(src))
			return
		}
		body := s.Text()
		if body == "" {
			return
		}
		calls := ScanScriptCalls(body)
		for i := range calls {
			calls[i].URL = e.resolveURL(calls[i].URL)
		}
		result.ScriptCalls = append(result.ScriptCalls, calls...)
		result.Secrets = append(result.Secrets, ScanSecrets(body)...)
	})
}

func (e *MarkupExtractor) extractMetadata(doc *goquery.Document, result *Result) {
	meta := make(map[string]string)
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		if name == "" {
			name, _ = s.Attr("property")
		}
		content, _ := s.Attr("content")
		if name != "" && content != "" {
			meta[name] = content
		}
	})
	if len(meta) > 0 {
		result.Metadata.Meta = meta
	}
	result.Metadata.Title = strings.TrimSpace(doc.Find("title").First().Text())
}

// resolveURL resolves href against the base URL when one was supplied.
// In raw-content mode the href is returned verbatim.
func (e *MarkupExtractor) resolveURL(href string) string {
	if e.baseURL == nil || href == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return e.baseURL.ResolveReference(ref).String()
}
