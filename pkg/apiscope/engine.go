// Package apiscope is the public API-surface discovery engine. It
// extracts API signals from markup and scripts, correlates captured
// network traffic, scores and categorizes candidates, and aggregates
// everything into a report.
package apiscope

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apiscope/apiscope/internal/analyze"
	"github.com/apiscope/apiscope/internal/browser"
	"github.com/apiscope/apiscope/internal/config"
	"github.com/apiscope/apiscope/internal/extract"
	"github.com/apiscope/apiscope/internal/fetch"
	"github.com/apiscope/apiscope/internal/logger"
	"github.com/apiscope/apiscope/internal/netlog"
	"github.com/apiscope/apiscope/internal/score"
	"github.com/apiscope/apiscope/internal/state"
)

// Engine orchestrates the discovery pipeline.
type Engine struct {
	config *config.Config
	logger *logger.Logger
	client *fetch.Client
	store  *state.Store
}

// New creates an engine with the given options.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		config: config.DefaultConfig(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if e.logger == nil {
		logLevel := logger.InfoLevel
		if e.config.Debug {
			logLevel = logger.DebugLevel
		} else if !e.config.Verbose {
			logLevel = logger.WarnLevel
		}
		e.logger = logger.New(logger.Config{
			Level:     logLevel,
			Pretty:    true,
			Component: "engine",
		})
	}

	if e.client == nil {
		e.client = fetch.New(fetch.Config{
			Timeout:           e.config.Timeout,
			UserAgent:         e.config.UserAgent,
			RequestsPerSecond: e.config.RateLimit.RequestsPerSecond,
			Burst:             e.config.RateLimit.Burst,
			Headers:           e.config.CustomHeaders,
		})
	}

	if e.config.Store.Enabled && e.config.Store.Path != "" {
		store, err := state.Open(e.config.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open report store: %w", err)
		}
		e.store = store
	}

	return e, nil
}

// Close releases the engine's resources.
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// AnalyzeContent runs the pipeline over raw markup with no base URL:
// extracted URLs are reported verbatim, never resolved.
func (e *Engine) AnalyzeContent(content, source string) (*Result, error) {
	extractor, err := extract.NewMarkupExtractor("")
	if err != nil {
		return nil, err
	}
	extraction, err := extractor.Extract(content, source)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	return e.assemble(source, extraction, nil, nil), nil
}

// AnalyzeHTML runs the pipeline over markup with relative URLs resolved
// against the base URL.
func (e *Engine) AnalyzeHTML(content, baseURL string) (*Result, error) {
	extractor, err := extract.NewMarkupExtractor(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	extraction, err := extractor.Extract(content, baseURL)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	return e.assemble(baseURL, extraction, nil, nil), nil
}

// AnalyzeURL fetches a live page, runs the extraction pipeline on its
// body, and adds the access-posture analysis. Gated responses (401/403)
// are analyzed, not treated as failures.
func (e *Engine) AnalyzeURL(ctx context.Context, target string) (*Result, error) {
	e.logger.WithURL(target).Info("Fetching target")

	resp, err := e.client.Get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	extractor, err := extract.NewMarkupExtractor(resp.FinalURL)
	if err != nil {
		extractor, _ = extract.NewMarkupExtractor("")
	}
	extraction, err := extractor.Extract(string(resp.Body), target)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	extraction.Metadata.StatusCode = resp.StatusCode
	extraction.Metadata.ResponseHeaders = resp.Headers

	scan := fetch.Scan(resp.Body)
	links := make([]analyze.PageLink, 0, len(scan.Links))
	for _, l := range scan.Links {
		links = append(links, analyze.PageLink{URL: l.URL, Text: l.Text})
	}

	result := e.assemble(target, extraction, nil, nil)
	result.Access = analyze.AnalyzeAccess(
		target, resp.FinalURL, resp.StatusCode,
		visibleText(string(resp.Body)), links, result.AuthForms,
	)
	result.Login = analyze.SuggestLoginConfig(result.Access)
	return result, nil
}

// AnalyzeTrace normalizes and scores a raw network event stream with no
// accompanying markup.
func (e *Engine) AnalyzeTrace(events []netlog.Event, target string) *Result {
	records := netlog.Normalize(events)
	return e.assemble(target, &extract.Result{Source: target}, records, nil)
}

// AnalyzeCapture runs the full pipeline over a browser capture: rendered
// markup, the recorded network trace, and web storage secrets.
func (e *Engine) AnalyzeCapture(cap *browser.CaptureResult) (*Result, error) {
	extractor, err := extract.NewMarkupExtractor(cap.FinalURL)
	if err != nil {
		extractor, _ = extract.NewMarkupExtractor("")
	}
	extraction, err := extractor.Extract(cap.HTML, cap.URL)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	// Storage values can leak the same key material as inline scripts.
	for _, storage := range []map[string]string{cap.LocalStorage, cap.SessionStorage} {
		for _, value := range storage {
			extraction.Secrets = append(extraction.Secrets, extract.ScanSecrets(value)...)
		}
	}

	records := netlog.Normalize(cap.Events)
	return e.assemble(cap.URL, extraction, records, cap), nil
}

// CaptureURL launches a browser session, optionally logs in for gated
// targets, captures the target page, and analyzes the capture.
func (e *Engine) CaptureURL(ctx context.Context, target string) (*Result, error) {
	session, err := browser.New(browser.Config{
		Headless:        e.config.Capture.Headless,
		Timeout:         e.config.Capture.Timeout,
		SettleTime:      e.config.Capture.SettleTime,
		UserAgent:       e.config.UserAgent,
		ViewportWidth:   e.config.Capture.ViewportWidth,
		ViewportHeight:  e.config.Capture.ViewportHeight,
		IgnoreTLSErrors: e.config.Capture.IgnoreTLSErrors,
	})
	if err != nil {
		return nil, err
	}
	defer session.Close()

	login := e.config.ResolvedLogin()
	if login.Username != "" && login.LoginURL != "" {
		e.logger.WithURL(login.LoginURL).Info("Performing form login")
		if _, err := session.Login(ctx, login); err != nil {
			return nil, fmt.Errorf("login failed: %w", err)
		}
	}

	e.logger.WithURL(target).Info("Capturing page")
	capture, err := session.Capture(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("capture failed: %w", err)
	}
	e.logger.Infof("Captured %d network events in %v", len(capture.Events), capture.Duration)

	return e.AnalyzeCapture(capture)
}

// assemble scores the extraction output plus any network records and
// aggregates them into a Result.
func (e *Engine) assemble(target string, extraction *extract.Result, records []netlog.Record, cap *browser.CaptureResult) *Result {
	result := &Result{
		Target:      target,
		GeneratedAt: time.Now(),
		Extraction:  extraction,
		Endpoints:   score.Candidates(append(extraction.Endpoints, extraction.DataAttrs...)),
		Forms:       extraction.Forms,
		ScriptCalls: score.Candidates(extraction.ScriptCalls),
		Records:     records,
		Capture:     cap,
	}

	result.NetworkRecords = score.Records(records)
	result.AuthForms = score.DetectAuthForms(extraction.Forms)

	for _, ep := range result.Endpoints {
		e.logger.DiscoveryEvent(string(ep.Kind), ep.URL, string(ep.Origin))
	}
	for _, rec := range records {
		e.logger.CaptureEvent(rec.Method, rec.URL, rec.ResponseStatus)
	}

	analysisEndpoints := make([]score.Scored, 0, len(result.Endpoints)+len(result.NetworkRecords))
	analysisEndpoints = append(analysisEndpoints, result.Endpoints...)
	analysisEndpoints = append(analysisEndpoints, result.NetworkRecords...)

	result.Analysis = analyze.Analyze(analyze.Input{
		Endpoints:   analysisEndpoints,
		Forms:       extraction.Forms,
		ScriptCalls: result.ScriptCalls,
		Secrets:     extraction.Secrets,
	})

	return result
}

// Save persists a result in the report store. Returns the stored key.
func (e *Engine) Save(result *Result) (string, error) {
	if e.store == nil {
		return "", fmt.Errorf("report store is not enabled")
	}
	return e.store.SaveReport(result.Target, result.Document())
}

// SavedReports lists stored report metadata.
func (e *Engine) SavedReports() ([]state.ReportMeta, error) {
	if e.store == nil {
		return nil, fmt.Errorf("report store is not enabled")
	}
	return e.store.ListReports()
}

// visibleText strips tags crudely for indicator matching. Indicator
// checks are substring based, so leftover attribute noise is harmless.
func visibleText(html string) string {
	var b strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}
