// Package browser provides headless Chrome capture via Rod. A capture
// session loads a page, records its network traffic as raw events, and
// snapshots rendered markup and storage for the extraction pipeline.
package browser

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/apiscope/apiscope/internal/netlog"
)

// Config defines capture session configuration.
type Config struct {
	Headless        bool          `json:"headless"`
	Timeout         time.Duration `json:"timeout"`
	SettleTime      time.Duration `json:"settle_time"`
	UserAgent       string        `json:"user_agent"`
	ViewportWidth   int           `json:"viewport_width"`
	ViewportHeight  int           `json:"viewport_height"`
	IgnoreTLSErrors bool          `json:"ignore_tls_errors"`
}

// DefaultConfig returns default capture configuration.
func DefaultConfig() Config {
	return Config{
		Headless:        true,
		Timeout:         60 * time.Second,
		SettleTime:      5 * time.Second,
		ViewportWidth:   1920,
		ViewportHeight:  1080,
		IgnoreTLSErrors: true,
	}
}

// CaptureResult contains everything observed during one page capture.
type CaptureResult struct {
	URL            string
	FinalURL       string
	Title          string
	HTML           string
	Events         []netlog.Event
	Cookies        []*http.Cookie
	LocalStorage   map[string]string
	SessionStorage map[string]string
	Duration       time.Duration
}

// Session wraps a Rod browser instance for capture runs.
type Session struct {
	browser *rod.Browser
	config  Config
}

// New launches a browser and connects a capture session to it.
func New(config Config) (*Session, error) {
	l := launcher.New()

	if config.Headless {
		l = l.Headless(true)
	}
	if config.IgnoreTLSErrors {
		l = l.Set("ignore-certificate-errors", "true")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	browser = browser.Timeout(config.Timeout)

	return &Session{
		browser: browser,
		config:  config,
	}, nil
}

// Capture navigates to a URL, records network events until the page
// settles, and snapshots the rendered state. Navigation failures return
// an error; extraction misses inside a loaded page do not.
func (s *Session) Capture(ctx context.Context, url string) (*CaptureResult, error) {
	start := time.Now()
	result := &CaptureResult{
		URL:    url,
		Events: make([]netlog.Event, 0),
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer page.Close()

	page = page.Context(ctx)

	_ = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  s.config.ViewportWidth,
		Height: s.config.ViewportHeight,
	})

	if s.config.UserAgent != "" {
		_ = proto.NetworkSetUserAgentOverride{
			UserAgent: s.config.UserAgent,
		}.Call(page)
	}

	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		return nil, fmt.Errorf("failed to enable network events: %w", err)
	}

	var eventMu sync.Mutex
	events := make([]netlog.Event, 0)

	wait := page.EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			if e.Request == nil {
				return
			}
			ev := netlog.Event{
				Method: netlog.MethodRequestWillBeSent,
				Request: &netlog.RequestPayload{
					URL:     e.Request.URL,
					Method:  e.Request.Method,
					Headers: flattenHeaders(e.Request.Headers),
				},
			}
			if e.Timestamp != 0 {
				ev.Timestamp = float64(e.Timestamp)
			}
			eventMu.Lock()
			events = append(events, ev)
			eventMu.Unlock()
		},
		func(e *proto.NetworkResponseReceived) {
			if e.Response == nil {
				return
			}
			ev := netlog.Event{
				Method: netlog.MethodResponseReceived,
				Response: &netlog.ResponsePayload{
					URL:     e.Response.URL,
					Status:  e.Response.Status,
					Headers: flattenHeaders(e.Response.Headers),
				},
			}
			if e.Timestamp != 0 {
				ev.Timestamp = float64(e.Timestamp)
			}
			eventMu.Lock()
			events = append(events, ev)
			eventMu.Unlock()
		},
	)
	// Runs until the page closes; the handlers stop firing with it.
	go wait()

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}

	// Let XHR traffic fired after onload land in the trace.
	settle := s.config.SettleTime
	if settle <= 0 {
		settle = time.Second
	}
	select {
	case <-time.After(settle):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	info, err := page.Info()
	if err == nil && info != nil {
		result.FinalURL = info.URL
		result.Title = info.Title
	} else {
		result.FinalURL = url
	}

	if html, err := page.HTML(); err == nil {
		result.HTML = html
	}

	result.LocalStorage = s.snapshotStorage(page, "localStorage")
	result.SessionStorage = s.snapshotStorage(page, "sessionStorage")

	rodCookies, _ := page.Cookies(nil)
	for _, c := range rodCookies {
		result.Cookies = append(result.Cookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}

	eventMu.Lock()
	result.Events = events
	eventMu.Unlock()

	result.Duration = time.Since(start)
	return result, nil
}

// snapshotStorage copies one web storage area out of the page.
func (s *Session) snapshotStorage(page *rod.Page, area string) map[string]string {
	out := make(map[string]string)

	js := fmt.Sprintf(`() => {
		let items = {};
		try {
			for (let i = 0; i < %s.length; i++) {
				let key = %s.key(i);
				items[key] = %s.getItem(key);
			}
		} catch(e) {}
		return items;
	}`, area, area, area)

	result, err := page.Eval(js)
	if err != nil || result == nil {
		return out
	}
	return storageItems(result.Value)
}

// storageItems flattens an evaluated storage object into plain strings.
func storageItems(value gson.JSON) map[string]string {
	out := make(map[string]string)
	for key, val := range value.Map() {
		out[key] = val.Str()
	}
	return out
}

// flattenHeaders converts protocol headers to plain strings.
func flattenHeaders(headers proto.NetworkHeaders) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v.Str()
	}
	return out
}

// Close closes the browser.
func (s *Session) Close() error {
	return s.browser.Close()
}

// GetConfig returns the session configuration.
func (s *Session) GetConfig() Config {
	return s.config
}
